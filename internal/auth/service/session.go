package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/internal/obs"
	"github.com/crateworks/wmsauth/pkg/idx"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// DefaultInactivityWindow is how long a session may sit idle before it
// is considered expired. Expiry is detected lazily at read time; there
// is no background timer.
const DefaultInactivityWindow = 30 * time.Minute

// Session termination reasons, used as a metric label.
const (
	ReasonLogout     = "logout"
	ReasonReplay     = "replay"
	ReasonInactivity = "inactivity"
	ReasonDisable    = "disable"
)

// SessionRegistry owns the server-side session rows: device concurrency,
// inactivity expiry, refresh rotation, and revocation. Tokens say who a
// caller claims to be; the registry says whether that claim is still
// honoured.
type SessionRegistry struct {
	Store            store.Store
	InactivityWindow time.Duration
}

func (r *SessionRegistry) window() time.Duration {
	if r.InactivityWindow > 0 {
		return r.InactivityWindow
	}
	return DefaultInactivityWindow
}

// ActiveSessions returns the user's live sessions after flagging idle
// ones inactive.
func (r *SessionRegistry) ActiveSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	var out []domain.Session
	var swept int64
	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := r.expireIdle(ctx, tx, userID)
		if err != nil {
			return err
		}
		swept = n
		out, err = tx.Sessions().ListActiveByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	countTerminated(ReasonInactivity, swept)
	return out, nil
}

// BeginSession opens (or reuses) the session for a login. After idle
// sessions are swept, an active session on a different device is a
// conflict; an active session on the same device is reused with its
// refresh hash about to be overwritten. The whole decision runs in one
// transaction, and the partial unique index on active (user, device)
// rows backstops concurrent logins the transaction race could let
// through.
func (r *SessionRegistry) BeginSession(ctx context.Context, userID, deviceID, roleName string) (domain.Session, error) {
	var out domain.Session
	var swept int64
	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := r.expireIdle(ctx, tx, userID)
		if err != nil {
			return err
		}
		swept = n

		active, err := tx.Sessions().ListActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, s := range active {
			if s.DeviceID != deviceID {
				return ErrDeviceConflict
			}
		}

		now := time.Now().UTC()

		existing, err := tx.Sessions().FindActiveByUserDevice(ctx, userID, deviceID)
		switch {
		case err == nil:
			// Same device logging in again: same session id, the caller
			// overwrites the refresh hash next.
			if err := tx.Sessions().TouchLastSeen(ctx, existing.ID, now); err != nil {
				return err
			}
			existing.LastSeenAt = now
			out = existing
			return nil
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		out = domain.Session{
			ID:         idx.New().String(),
			UserID:     userID,
			DeviceID:   deviceID,
			RoleName:   roleName,
			CreatedAt:  now,
			LastSeenAt: now,
			IsActive:   true,
		}
		if err := tx.Sessions().Create(ctx, out); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				// Lost the race against a concurrent login on this device.
				return ErrDeviceConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}
	countTerminated(ReasonInactivity, swept)
	return out, nil
}

// BindRefresh stores the fingerprint of the newly issued refresh token
// on the session row. Called right after token issuance, since the
// refresh token embeds the session id and so cannot exist before the row
// does.
func (r *SessionRegistry) BindRefresh(ctx context.Context, sessionID, refreshHash string) error {
	err := r.Store.Sessions().UpdateRefreshHash(ctx, sessionID, refreshHash, time.Now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionInvalid
	}
	return err
}

// RotateRefresh atomically swaps the stored refresh fingerprint.
// The submitted fingerprint must match the stored one exactly; a
// mismatch means the token was already rotated, i.e. someone is
// replaying an old refresh token. On replay the whole session is revoked
// so neither the attacker nor the legitimate holder keeps access.
func (r *SessionRegistry) RotateRefresh(ctx context.Context, sessionID, userID, deviceID, submittedHash, newHash string) (domain.Session, error) {
	// A revocation written inside the transaction must survive the
	// rejection, so denial sentinels are carried out of the callback and
	// returned only after the transaction commits.
	var out domain.Session
	var denied error
	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		s, err := tx.Sessions().GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSessionInvalid
			}
			return err
		}

		now := time.Now().UTC()
		if !s.IsActive || s.UserID != userID || s.DeviceID != deviceID {
			return ErrSessionInvalid
		}
		if s.IdleSince(now, r.window()) {
			if err := tx.Sessions().Deactivate(ctx, s.ID); err != nil {
				return err
			}
			denied = ErrSessionInvalid
			return nil
		}

		if subtle.ConstantTimeCompare([]byte(s.RefreshTokenHash), []byte(submittedHash)) != 1 {
			if err := tx.Sessions().Deactivate(ctx, s.ID); err != nil {
				return err
			}
			denied = ErrRefreshReuse
			return nil
		}

		if err := tx.Sessions().UpdateRefreshHash(ctx, s.ID, newHash, now); err != nil {
			return err
		}

		s.RefreshTokenHash = newHash
		s.LastSeenAt = now
		out = s
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}

	switch {
	case errors.Is(denied, ErrRefreshReuse):
		obs.RefreshReplaysTotal.Inc()
		obs.SessionsTerminatedTotal.WithLabelValues(ReasonReplay).Inc()
		slogx.FromContext(ctx).Warn("refresh token replay detected, session revoked",
			slog.String("session_id", sessionID),
			slog.String("user_id", userID),
		)
		return domain.Session{}, denied
	case denied != nil:
		obs.SessionsTerminatedTotal.WithLabelValues(ReasonInactivity).Inc()
		return domain.Session{}, denied
	}

	obs.RefreshRotationsTotal.Inc()
	return out, nil
}

// ValidateOnRequest is the per-request liveness check: the row must
// exist, belong to the claimed user, be active, match the device, and be
// within the inactivity window. The last_seen bump is best-effort —
// losing it under contention must not fail the request.
func (r *SessionRegistry) ValidateOnRequest(ctx context.Context, sessionID, userID, deviceID string) error {
	s, err := r.Store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionInvalid
		}
		return err
	}

	if !s.IsActive || s.UserID != userID || s.DeviceID != deviceID {
		return ErrSessionInvalid
	}

	now := time.Now().UTC()
	if s.IdleSince(now, r.window()) {
		if err := r.Store.Sessions().Deactivate(ctx, s.ID); err == nil {
			obs.SessionsTerminatedTotal.WithLabelValues(ReasonInactivity).Inc()
		}
		return ErrSessionInvalid
	}

	if err := r.Store.Sessions().TouchLastSeen(ctx, s.ID, now); err != nil {
		slogx.FromContext(ctx).Warn("last_seen update failed",
			slog.String("session_id", s.ID),
			slog.Any("error", err),
		)
	}
	return nil
}

// EndSession terminates one session (logout path).
func (r *SessionRegistry) EndSession(ctx context.Context, sessionID, reason string) error {
	err := r.Store.Sessions().Deactivate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionInvalid
		}
		return err
	}
	obs.SessionsTerminatedTotal.WithLabelValues(reason).Inc()
	return nil
}

// EndAllSessions terminates every active session for a user and returns
// how many were ended. Used by administrative disable and forced logout.
func (r *SessionRegistry) EndAllSessions(ctx context.Context, userID, reason string) (int64, error) {
	n, err := r.Store.Sessions().DeactivateAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		obs.SessionsTerminatedTotal.WithLabelValues(reason).Add(float64(n))
	}
	return n, nil
}

// expireIdle flags the user's stale sessions inactive inside the
// caller's transaction. The caller counts the sweep after commit so a
// rollback never shows up in the metrics.
func (r *SessionRegistry) expireIdle(ctx context.Context, tx store.Tx, userID string) (int64, error) {
	cutoff := time.Now().UTC().Add(-r.window())
	return tx.Sessions().DeactivateIdleForUser(ctx, userID, cutoff)
}

func countTerminated(reason string, n int64) {
	if n > 0 {
		obs.SessionsTerminatedTotal.WithLabelValues(reason).Add(float64(n))
	}
}
