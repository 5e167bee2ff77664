package service

import (
	"context"
	"errors"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/store"
)

// ScopeService derives the record-visibility boundary for a caller.
// Resolution is strict-priority over the user's roles and is computed
// fresh per request — scopes are never cached or persisted.
type ScopeService struct {
	Store store.Store
}

// Resolve walks the priority ladder: ADMIN is unrestricted; operator-class
// roles are bound to their profile's warehouse; CLIENT is bound to its
// client record; everyone else sees only their own rows. An operator or
// client whose scope-defining profile is missing is misprovisioned and
// gets a hard failure rather than a silently widened scope.
func (s *ScopeService) Resolve(ctx context.Context, userID string) (domain.Scope, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Scope{}, ErrUserNotFound
		}
		return domain.Scope{}, err
	}
	if user.Status == domain.UserStatusDisabled {
		return domain.Scope{}, ErrAccountDisabled
	}

	if user.HasRole(domain.RoleAdmin) {
		return domain.Scope{Kind: domain.ScopeAdmin}, nil
	}

	for _, role := range user.Roles {
		if !domain.IsOperatorClass(role.Name) {
			continue
		}
		profile, err := s.Store.Profiles().GetOperatorByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Scope{}, ErrProfileMissing
			}
			return domain.Scope{}, err
		}
		return domain.Scope{Kind: domain.ScopeWarehouse, BoundID: profile.WarehouseID}, nil
	}

	if user.HasRole(domain.RoleClient) {
		client, err := s.Store.Profiles().GetClientByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Scope{}, ErrProfileMissing
			}
			return domain.Scope{}, err
		}
		return domain.Scope{Kind: domain.ScopeClient, BoundID: client.ID}, nil
	}

	return domain.Scope{Kind: domain.ScopeSelf, BoundID: userID}, nil
}
