package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// PermissionService aggregates role→permission grants. Grants are loaded
// fresh from the store on every call — a role change takes effect on the
// next request, never later.
type PermissionService struct {
	Store store.Store
}

// GrantedCodes returns the union of permission codes across all the
// user's roles, sorted and de-duplicated.
func (s *PermissionService) GrantedCodes(ctx context.Context, userID string) ([]string, error) {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	set := map[string]struct{}{}
	for _, role := range user.Roles {
		for _, p := range role.Permissions {
			set[p.Code] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	sort.Strings(out)
	return out, nil
}

// Authorize fails unless the user holds every required code. With zero
// required codes it degrades to an account liveness check. The returned
// denial is deliberately generic — the missing codes go to the log, not
// the caller, so the catalog cannot be enumerated by probing.
func (s *PermissionService) Authorize(ctx context.Context, userID string, required ...string) error {
	user, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Status != domain.UserStatusActive {
		return ErrAccountDisabled
	}

	if len(required) == 0 {
		return nil
	}

	// A handler demanding a code the catalog has never seen is a seeding
	// defect, not a permission denial.
	for _, code := range required {
		if _, err := s.Store.Permissions().GetByCode(ctx, code); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				slogx.FromContext(ctx).Error("required permission code missing from catalog",
					slog.String("code", code),
				)
				return ErrCatalogCorrupt
			}
			return err
		}
	}

	granted, err := s.GrantedCodes(ctx, userID)
	if err != nil {
		return err
	}
	have := make(map[string]struct{}, len(granted))
	for _, code := range granted {
		have[code] = struct{}{}
	}

	var missing []string
	for _, code := range required {
		if _, ok := have[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		slogx.FromContext(ctx).Warn("permission denied",
			slog.String("user_id", userID),
			slog.Any("missing", missing),
		)
		return ErrPermissionDenied
	}
	return nil
}
