package authcore_test

import (
	"context"
	"testing"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/pkg/coresdk"
	"github.com/stretchr/testify/require"
)

// seedCorruptedEnrollment stores an undecryptable secret for uid, as if the
// vault key had rotated underneath an existing enrollment.
func seedCorruptedEnrollment(ctx context.Context, t *testing.T, st store.Store, uid string) {
	require.NoError(t, st.Users().CreateUser(ctx, domain.User{ID: uid, Email: uid + "@example.com"}))
	require.NoError(t, st.Users().SaveMFAEnrollment(ctx, uid, "deadbeef:deadbeef:deadbeef", nil))
	require.NoError(t, st.Users().EnableMFA(ctx, uid))
}

func TestCorruptedSecretPolicy(t *testing.T) {
	baseURL := setupContainer(t, containerOptions{
		seed: func(ctx context.Context, st store.Store) {
			seedTenantWithMember(ctx, t, st, "Ops", staffUID, domain.RoleAdmin)
			seedCorruptedEnrollment(ctx, t, st, staffUID)

			tenant := seedTenantWithMember(ctx, t, st, "Strict Co", "usr_member", domain.RoleEmployee)
			grantEntitlement(ctx, t, st, domain.OwnerTenant, tenant.ID, domain.EntitlementMFA, domain.BoolValue(true))
			seedCorruptedEnrollment(ctx, t, st, "usr_member")
		},
	})

	t.Run("regular user is blocked until support intervenes", func(t *testing.T) {
		session := memberSession(t, baseURL, "usr_member")

		_, err := session.TenantContext(t.Context())
		requireAPIError(t, err, coresdk.ErrorCodeMFARequired)

		err = session.MFAVerify(t.Context(), "000000")
		requireAPIError(t, err, coresdk.ErrorCodeMFASecretCorrupted)
	})

	t.Run("staff account auto-repairs instead of locking out", func(t *testing.T) {
		session := memberSession(t, baseURL, staffUID)

		tc, err := session.TenantContext(t.Context())
		require.NoError(t, err)
		require.Equal(t, "Ops", tc.TenantName)

		// The repair reset the enrollment entirely.
		me, err := session.Me(t.Context())
		require.NoError(t, err)
		require.False(t, me.MFAEnabled)
		require.Equal(t, "none", me.MFASetupState)
	})
}
