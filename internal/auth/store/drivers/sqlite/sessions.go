package sqlite

import (
	"context"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, user_id, device_id, role_name, refresh_token_hash, created_at, last_seen_at, is_active`

func (r *sessionsRepo) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) ListActiveByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM user_sessions
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) FindActiveByUserDevice(ctx context.Context, userID, deviceID string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM user_sessions
		WHERE user_id = ? AND device_id = ? AND is_active = 1`, userID, deviceID)
	s, err := scanSession(row)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) Create(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_sessions (id, user_id, device_id, role_name, refresh_token_hash, created_at, last_seen_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.DeviceID, s.RoleName, s.RefreshTokenHash, s.CreatedAt, s.LastSeenAt, s.IsActive)
	return mapConstraint(err)
}

func (r *sessionsRepo) UpdateRefreshHash(ctx context.Context, sessionID, hash string, seenAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_sessions
		SET refresh_token_hash = ?, last_seen_at = ?
		WHERE id = ? AND is_active = 1`,
		hash, seenAt, sessionID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sessionsRepo) TouchLastSeen(ctx context.Context, sessionID string, seenAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_sessions SET last_seen_at = ? WHERE id = ? AND is_active = 1`,
		seenAt, sessionID)
	return err
}

func (r *sessionsRepo) Deactivate(ctx context.Context, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_sessions SET is_active = 0 WHERE id = ? AND is_active = 1`,
		sessionID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sessionsRepo) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_sessions SET is_active = 0 WHERE user_id = ? AND is_active = 1`,
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeactivateIdleForUser(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_sessions
		SET is_active = 0
		WHERE user_id = ? AND is_active = 1 AND last_seen_at < ?`,
		userID, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM user_sessions WHERE is_active = 0 AND last_seen_at < ?`,
		cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSession(row rowScanner) (domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.DeviceID, &s.RoleName, &s.RefreshTokenHash,
		&s.CreatedAt, &s.LastSeenAt, &s.IsActive)
	if err != nil {
		return domain.Session{}, err
	}
	return s, nil
}
