package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/store"
)

// FreelancerService manages the parallel identity root for non-employee
// users. A freelancer's entitlements live under their own id and are
// evaluated with the same rule as tenant entitlements.
type FreelancerService struct {
	Store store.Store
}

// EnsureFreelancer registers uid as a freelancer if not already registered.
func (s *FreelancerService) EnsureFreelancer(ctx context.Context, uid, email, displayName string) (domain.Freelancer, error) {
	existing, err := s.Store.Freelancers().GetFreelancerByID(ctx, uid)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Freelancer{}, fmt.Errorf("failed to load freelancer: %w", err)
	}

	f := domain.Freelancer{
		ID:          uid,
		Email:       email,
		DisplayName: displayName,
	}
	if err := s.Store.Freelancers().CreateFreelancer(ctx, f); err != nil {
		return domain.Freelancer{}, fmt.Errorf("failed to create freelancer: %w", err)
	}
	return f, nil
}

// GetFreelancerByID fetches a freelancer by id.
func (s *FreelancerService) GetFreelancerByID(ctx context.Context, uid string) (domain.Freelancer, error) {
	return s.Store.Freelancers().GetFreelancerByID(ctx, uid)
}

// Entitlements returns the freelancer's effective entitlement map. A uid
// with no freelancer record simply has nothing granted.
func (s *FreelancerService) Entitlements(ctx context.Context, uid string) (domain.EntitlementMap, error) {
	return loadEntitlementMap(ctx, s.Store.Entitlements(), domain.OwnerFreelancer, uid)
}
