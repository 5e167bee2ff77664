package sqlite

import (
	"context"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, email, invited_by, role_assigned, token, expires_at, status, created_at`

func (r *invitationsRepo) Create(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, email, invited_by, role_assigned, token, expires_at, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.InvitedBy, inv.RoleAssigned, inv.Token,
		inv.ExpiresAt, string(inv.Status), inv.CreatedAt)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetByToken(ctx context.Context, token string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = ?`, token)
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) FindPendingByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE email = ? AND status = 'PENDING'`, email)
	inv, err := scanInvitation(row)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

// SetStatus only moves rows out of PENDING; a row that already reached a
// terminal status is reported as not found so callers detect the race.
func (r *invitationsRepo) SetStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET status = ? WHERE id = ? AND status = 'PENDING'`,
		string(status), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *invitationsRepo) List(ctx context.Context, limit, offset int) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM invitations WHERE status != 'PENDING' AND created_at < ?`,
		cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var inv domain.Invitation
	var status string
	err := row.Scan(&inv.ID, &inv.Email, &inv.InvitedBy, &inv.RoleAssigned,
		&inv.Token, &inv.ExpiresAt, &status, &inv.CreatedAt)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.Status = domain.InvitationStatus(status)
	return inv, nil
}
