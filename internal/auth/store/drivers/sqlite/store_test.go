package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/internal/auth/store/drivers/sqlite"
	"github.com/crewplane/crewplane/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func strptr(s string) *string { return &s }

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := domain.User{ID: "uid-1", Email: "one@example.com"}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByID(ctx, "uid-1")
	require.NoError(t, err)
	require.Equal(t, "one@example.com", got.Email)
	require.Nil(t, got.DefaultTenantID)
	require.Equal(t, domain.MFASetupNone, got.MFASetupState)
	require.False(t, got.MFASessionVerified)
	require.False(t, got.CreatedAt.IsZero())

	_, err = s.Users().GetUserByID(ctx, "uid-missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Run("ensure user is idempotent", func(t *testing.T) {
		require.NoError(t, s.Users().EnsureUser(ctx, domain.User{ID: "uid-1", Email: "changed@example.com"}))

		got, err := s.Users().GetUserByID(ctx, "uid-1")
		require.NoError(t, err)
		require.Equal(t, "one@example.com", got.Email, "existing row must not be overwritten")

		require.NoError(t, s.Users().EnsureUser(ctx, domain.User{ID: "uid-2", Email: "two@example.com"}))
		got, err = s.Users().GetUserByID(ctx, "uid-2")
		require.NoError(t, err)
		require.Equal(t, "two@example.com", got.Email)
	})

	t.Run("default tenant pointer", func(t *testing.T) {
		require.NoError(t, s.Users().SetDefaultTenant(ctx, "uid-1", strptr("tenant-a")))
		got, err := s.Users().GetUserByID(ctx, "uid-1")
		require.NoError(t, err)
		require.NotNil(t, got.DefaultTenantID)
		require.Equal(t, "tenant-a", *got.DefaultTenantID)

		// Guarded clear with the wrong id leaves the pointer alone
		require.NoError(t, s.Users().ClearDefaultTenantIf(ctx, "uid-1", "tenant-b"))
		got, err = s.Users().GetUserByID(ctx, "uid-1")
		require.NoError(t, err)
		require.NotNil(t, got.DefaultTenantID)

		// Matching id clears it
		require.NoError(t, s.Users().ClearDefaultTenantIf(ctx, "uid-1", "tenant-a"))
		got, err = s.Users().GetUserByID(ctx, "uid-1")
		require.NoError(t, err)
		require.Nil(t, got.DefaultTenantID)

		// Unconditional set and clear
		require.NoError(t, s.Users().SetDefaultTenant(ctx, "uid-1", strptr("tenant-c")))
		require.NoError(t, s.Users().SetDefaultTenant(ctx, "uid-1", nil))
		got, err = s.Users().GetUserByID(ctx, "uid-1")
		require.NoError(t, err)
		require.Nil(t, got.DefaultTenantID)
	})
}

func TestClearStaleDefaultTenants(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tenant := domain.Tenant{ID: idx.New().String(), Name: "Acme Crews", CreatedBy: "uid-admin"}
	require.NoError(t, s.Tenants().CreateTenant(ctx, tenant))

	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID: "uid-live", Email: "live@example.com", DefaultTenantID: &tenant.ID,
	}))
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		TenantID: tenant.ID, UID: "uid-live", Email: "live@example.com", Role: domain.RoleEmployee,
	}))

	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID: "uid-stale", Email: "stale@example.com", DefaultTenantID: strptr("tenant-gone"),
	}))

	// Tenant still exists but the user's membership was removed; the
	// pointer is just as stale as one naming a deleted tenant.
	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID: "uid-kicked", Email: "kicked@example.com", DefaultTenantID: &tenant.ID,
	}))
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		TenantID: tenant.ID, UID: "uid-kicked", Email: "kicked@example.com", Role: domain.RoleEmployee,
	}))
	require.NoError(t, s.Memberships().DeleteMembership(ctx, tenant.ID, "uid-kicked"))

	cleared, err := s.Users().ClearStaleDefaultTenants(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, cleared)

	live, err := s.Users().GetUserByID(ctx, "uid-live")
	require.NoError(t, err)
	require.NotNil(t, live.DefaultTenantID)

	stale, err := s.Users().GetUserByID(ctx, "uid-stale")
	require.NoError(t, err)
	require.Nil(t, stale.DefaultTenantID)

	kicked, err := s.Users().GetUserByID(ctx, "uid-kicked")
	require.NoError(t, err)
	require.Nil(t, kicked.DefaultTenantID)
}

func TestMembershipScanOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// ULIDs sort by creation time, so these ids are ascending
	t1 := domain.Tenant{ID: idx.New().String(), Name: "First", CreatedBy: "uid-a"}
	t2 := domain.Tenant{ID: idx.New().String(), Name: "Second", CreatedBy: "uid-a"}
	t3 := domain.Tenant{ID: idx.New().String(), Name: "Third", CreatedBy: "uid-a"}
	for _, tn := range []domain.Tenant{t1, t2, t3} {
		require.NoError(t, s.Tenants().CreateTenant(ctx, tn))
	}

	// Insert out of order; the list must come back in tenant id order
	for _, tid := range []string{t3.ID, t1.ID, t2.ID} {
		require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
			TenantID: tid, UID: "uid-m", Email: "m@example.com", Role: domain.RoleEmployee,
		}))
	}

	got, err := s.Memberships().ListMembershipsByUser(ctx, "uid-m")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, t1.ID, got[0].TenantID)
	require.Equal(t, t2.ID, got[1].TenantID)
	require.Equal(t, t3.ID, got[2].TenantID)

	t.Run("point read", func(t *testing.T) {
		m, err := s.Memberships().GetMembership(ctx, t2.ID, "uid-m")
		require.NoError(t, err)
		require.Equal(t, domain.RoleEmployee, m.Role)

		_, err = s.Memberships().GetMembership(ctx, t2.ID, "uid-nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete membership", func(t *testing.T) {
		require.NoError(t, s.Memberships().DeleteMembership(ctx, t2.ID, "uid-m"))
		got, err := s.Memberships().ListMembershipsByUser(ctx, "uid-m")
		require.NoError(t, err)
		require.Len(t, got, 2)
	})
}

func TestEntitlementsRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	owner := idx.New().String()

	ents := []domain.Entitlement{
		{ID: idx.New().String(), OwnerKind: domain.OwnerTenant, OwnerID: owner, Key: "module.mfa", Value: domain.BoolValue(true)},
		{ID: idx.New().String(), OwnerKind: domain.OwnerTenant, OwnerID: owner, Key: "module.reports", Value: domain.NumberValue(0)},
		{ID: idx.New().String(), OwnerKind: domain.OwnerTenant, OwnerID: owner, Key: "module.roster", Value: domain.StringValue("trial")},
	}
	for _, e := range ents {
		require.NoError(t, s.Entitlements().CreateEntitlement(ctx, e))
	}

	t.Run("values survive the round trip", func(t *testing.T) {
		list, err := s.Entitlements().ListByOwner(ctx, domain.OwnerTenant, owner)
		require.NoError(t, err)
		require.Len(t, list, 3)

		// Ordered by key
		require.Equal(t, "module.mfa", list[0].Key)
		require.Equal(t, "module.reports", list[1].Key)
		require.Equal(t, "module.roster", list[2].Key)

		require.Equal(t, domain.KindBool, list[0].Value.Kind())
		require.True(t, list[0].Value.Granted())
		require.Equal(t, domain.KindNumber, list[1].Value.Kind())
		require.False(t, list[1].Value.Granted())
		require.Equal(t, domain.KindString, list[2].Value.Kind())
		require.True(t, list[2].Value.Granted())
	})

	t.Run("oldest duplicate wins", func(t *testing.T) {
		dup := domain.Entitlement{
			ID: idx.New().String(), OwnerKind: domain.OwnerTenant, OwnerID: owner,
			Key: "module.mfa", Value: domain.BoolValue(false),
		}
		require.NoError(t, s.Entitlements().CreateEntitlement(ctx, dup))

		found, err := s.Entitlements().FindByOwnerAndKey(ctx, domain.OwnerTenant, owner, "module.mfa")
		require.NoError(t, err)
		require.Equal(t, ents[0].ID, found.ID)
		require.True(t, found.Value.Granted())
	})

	t.Run("update value in place", func(t *testing.T) {
		require.NoError(t, s.Entitlements().UpdateValue(ctx, ents[1].ID, domain.NumberValue(25)))

		found, err := s.Entitlements().FindByOwnerAndKey(ctx, domain.OwnerTenant, owner, "module.reports")
		require.NoError(t, err)
		require.True(t, found.Value.Granted())
		n, ok := found.Value.Number()
		require.True(t, ok)
		require.Equal(t, float64(25), n)
	})

	t.Run("owner kinds are separate namespaces", func(t *testing.T) {
		_, err := s.Entitlements().FindByOwnerAndKey(ctx, domain.OwnerFreelancer, owner, "module.mfa")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Entitlements().DeleteEntitlement(ctx, ents[2].ID))
		_, err := s.Entitlements().FindByOwnerAndKey(ctx, domain.OwnerTenant, owner, "module.roster")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSaveMFAEnrollment(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, domain.User{ID: "uid-mfa", Email: "mfa@example.com"}))

	firstCodes := []domain.BackupCode{
		{ID: idx.New().String(), UserID: "uid-mfa", Ciphertext: "ct-1"},
		{ID: idx.New().String(), UserID: "uid-mfa", Ciphertext: "ct-2"},
	}
	require.NoError(t, s.Users().SaveMFAEnrollment(ctx, "uid-mfa", "secret-ct-1", firstCodes))

	u, err := s.Users().GetUserByID(ctx, "uid-mfa")
	require.NoError(t, err)
	require.Equal(t, domain.MFASetupPending, u.MFASetupState)
	require.NotNil(t, u.MFASecret)
	require.Equal(t, "secret-ct-1", *u.MFASecret)
	require.False(t, u.MFASessionVerified)

	t.Run("re-enrollment replaces codes", func(t *testing.T) {
		secondCodes := []domain.BackupCode{
			{ID: idx.New().String(), UserID: "uid-mfa", Ciphertext: "ct-3"},
			{ID: idx.New().String(), UserID: "uid-mfa", Ciphertext: "ct-4"},
			{ID: idx.New().String(), UserID: "uid-mfa", Ciphertext: "ct-5"},
		}
		require.NoError(t, s.Users().SaveMFAEnrollment(ctx, "uid-mfa", "secret-ct-2", secondCodes))

		codes, err := s.BackupCodes().ListBackupCodes(ctx, "uid-mfa")
		require.NoError(t, err)
		require.Len(t, codes, 3)
		require.Equal(t, "ct-3", codes[0].Ciphertext)

		count, err := s.BackupCodes().CountUserBackupCodes(ctx, "uid-mfa")
		require.NoError(t, err)
		require.Equal(t, 3, count)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := s.Users().SaveMFAEnrollment(ctx, "uid-nope", "ct", nil)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestMFAStateTransitions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, domain.User{ID: "uid-x", Email: "x@example.com"}))
	require.NoError(t, s.Users().SaveMFAEnrollment(ctx, "uid-x", "ct", nil))

	require.NoError(t, s.Users().EnableMFA(ctx, "uid-x"))
	u, err := s.Users().GetUserByID(ctx, "uid-x")
	require.NoError(t, err)
	require.Equal(t, domain.MFASetupConfirmed, u.MFASetupState)
	require.True(t, u.MFAEnabled())
	require.False(t, u.MFASessionVerified)

	when := time.Now().UTC()
	require.NoError(t, s.Users().MarkSessionVerified(ctx, "uid-x", when))
	u, err = s.Users().GetUserByID(ctx, "uid-x")
	require.NoError(t, err)
	require.True(t, u.MFASessionVerified)
	require.NotNil(t, u.MFAVerifiedAt)
	require.WithinDuration(t, when, *u.MFAVerifiedAt, time.Second)

	require.NoError(t, s.Users().ClearSessionVerified(ctx, "uid-x"))
	u, err = s.Users().GetUserByID(ctx, "uid-x")
	require.NoError(t, err)
	require.False(t, u.MFASessionVerified)
	require.NotNil(t, u.MFAVerifiedAt, "clearing the session flag keeps the last verification time")

	require.NoError(t, s.Users().DisableMFA(ctx, "uid-x"))
	u, err = s.Users().GetUserByID(ctx, "uid-x")
	require.NoError(t, err)
	require.Equal(t, domain.MFASetupNone, u.MFASetupState)
	require.Nil(t, u.MFASecret)
	require.Nil(t, u.MFAVerifiedAt)
	require.False(t, u.MFASessionVerified)
}

func TestDeleteTenantCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tenant := domain.Tenant{ID: idx.New().String(), Name: "Doomed", CreatedBy: "uid-a"}
	require.NoError(t, s.Tenants().CreateTenant(ctx, tenant))
	require.NoError(t, s.Memberships().CreateMembership(ctx, domain.Membership{
		TenantID: tenant.ID, UID: "uid-m", Email: "m@example.com", Role: domain.RoleAdmin,
	}))
	require.NoError(t, s.Entitlements().CreateEntitlement(ctx, domain.Entitlement{
		ID: idx.New().String(), OwnerKind: domain.OwnerTenant, OwnerID: tenant.ID,
		Key: "module.mfa", Value: domain.BoolValue(true),
	}))

	require.NoError(t, s.Tenants().DeleteTenant(ctx, tenant.ID))

	_, err := s.Tenants().GetTenantByID(ctx, tenant.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Memberships().GetMembership(ctx, tenant.ID, "uid-m")
	require.ErrorIs(t, err, store.ErrNotFound)

	ents, err := s.Entitlements().ListByOwner(ctx, domain.OwnerTenant, tenant.ID)
	require.NoError(t, err)
	require.Empty(t, ents)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	t.Run("rollback on error", func(t *testing.T) {
		sentinel := context.DeadlineExceeded
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Users().CreateUser(ctx, domain.User{ID: "uid-tx", Email: "tx@example.com"}); err != nil {
				return err
			}
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		_, err = s.Users().GetUserByID(ctx, "uid-tx")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Users().CreateUser(ctx, domain.User{ID: "uid-tx2", Email: "tx2@example.com"})
		})
		require.NoError(t, err)

		u, err := s.Users().GetUserByID(ctx, "uid-tx2")
		require.NoError(t, err)
		require.Equal(t, "tx2@example.com", u.Email)
	})
}
