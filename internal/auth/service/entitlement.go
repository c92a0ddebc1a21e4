package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crewplane/crewplane/internal/auth/domain"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/pkg/idx"
)

var ErrInvalidEntitlementKey = errors.New("invalid_entitlement_key")

// EntitlementService manages feature grants for tenants and freelancers.
// There is no unique (owner, key) index backing the one-row-per-key rule,
// so every write goes search-then-update.
type EntitlementService struct {
	Store store.Store
}

// MapForOwner returns the owner's effective entitlement map.
func (s *EntitlementService) MapForOwner(
	ctx context.Context,
	kind domain.OwnerKind,
	ownerID string,
) (domain.EntitlementMap, error) {
	return loadEntitlementMap(ctx, s.Store.Entitlements(), kind, ownerID)
}

// Grant sets key to value for the owner, updating the existing row in place
// when one exists. Returns the row that now carries the grant.
func (s *EntitlementService) Grant(
	ctx context.Context,
	kind domain.OwnerKind,
	ownerID, key string,
	value domain.Value,
) (domain.Entitlement, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Entitlement{}, ErrInvalidEntitlementKey
	}

	var out domain.Entitlement
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Entitlements().FindByOwnerAndKey(ctx, kind, ownerID, key)
		switch {
		case err == nil:
			if err := tx.Entitlements().UpdateValue(ctx, existing.ID, value); err != nil {
				return fmt.Errorf("failed to update entitlement: %w", err)
			}
			existing.Value = value
			out = existing
			return nil

		case errors.Is(err, store.ErrNotFound):
			out = domain.Entitlement{
				ID:        idx.New().String(),
				OwnerKind: kind,
				OwnerID:   ownerID,
				Key:       key,
				Value:     value,
			}
			if err := tx.Entitlements().CreateEntitlement(ctx, out); err != nil {
				return fmt.Errorf("failed to create entitlement: %w", err)
			}
			return nil

		default:
			return fmt.Errorf("failed to search entitlements: %w", err)
		}
	})
	if err != nil {
		return domain.Entitlement{}, err
	}
	return out, nil
}

// Revoke removes every row carrying key for the owner. Deleting all matches
// rather than the effective one keeps a legacy duplicate from resurfacing
// the grant.
func (s *EntitlementService) Revoke(
	ctx context.Context,
	kind domain.OwnerKind,
	ownerID, key string,
) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidEntitlementKey
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		ents, err := tx.Entitlements().ListByOwner(ctx, kind, ownerID)
		if err != nil {
			return fmt.Errorf("failed to list entitlements: %w", err)
		}

		for _, e := range ents {
			if e.Key != key {
				continue
			}
			if err := tx.Entitlements().DeleteEntitlement(ctx, e.ID); err != nil {
				return fmt.Errorf("failed to delete entitlement: %w", err)
			}
		}
		return nil
	})
}

// ListEffective returns one row per key for the owner, oldest row winning
// when duplicates exist, in key order.
func (s *EntitlementService) ListEffective(
	ctx context.Context,
	kind domain.OwnerKind,
	ownerID string,
) ([]domain.Entitlement, error) {
	ents, err := s.Store.Entitlements().ListByOwner(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}

	out := ents[:0]
	seen := make(map[string]bool, len(ents))
	for _, e := range ents {
		if seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		out = append(out, e)
	}
	return out, nil
}
