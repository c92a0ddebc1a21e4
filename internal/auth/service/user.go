package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/store"
)

type UserService struct {
	Store store.Store
}

// EnsureUser creates the local user record on first authenticated contact.
// The identity provider owns the uid and email; this service only mirrors
// them. Safe to call on every request.
func (s *UserService) EnsureUser(ctx context.Context, uid, email string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return fmt.Errorf("ensure user: empty uid")
	}
	return s.Store.Users().EnsureUser(ctx, domain.User{ID: uid, Email: email})
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}
