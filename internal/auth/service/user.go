package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/internal/obs"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// UserService covers the administrative account operations.
type UserService struct {
	Store store.Store
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.Users().List(ctx, limit, offset)
}

// Disable marks an account DISABLED and synchronously ends every active
// session it holds, in one transaction. The returned count is how many
// sessions were terminated. DISABLED is terminal: there is no re-enable.
func (s *UserService) Disable(ctx context.Context, userID string) (int64, error) {
	var ended int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetStatus(ctx, userID, domain.UserStatusDisabled); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var err error
		ended, err = tx.Sessions().DeactivateAllForUser(ctx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}

	if ended > 0 {
		obs.SessionsTerminatedTotal.WithLabelValues(ReasonDisable).Add(float64(ended))
	}
	slogx.FromContext(ctx).Info("user disabled",
		slog.String("user_id", userID),
		slog.Int64("sessions_ended", ended),
	)
	return ended, nil
}
