package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/mail"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/pkg/cryptox"
	"github.com/crateworks/wmsauth/pkg/idx"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// DefaultInviteTTL is how long an invitation stays redeemable.
const DefaultInviteTTL = 72 * time.Hour

// InviteService owns the invitation lifecycle: PENDING → ACCEPTED or
// EXPIRED, both terminal. The token is a bearer secret and is never
// logged.
type InviteService struct {
	Store  store.Store
	Mailer mail.Mailer
	TTL    time.Duration
}

func (s *InviteService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultInviteTTL
}

// Create issues an invitation for an email/role pair. An email that
// already maps to an ACTIVE or DISABLED account conflicts, as does a
// live PENDING invitation; a pending invitation past its deadline is
// flipped to EXPIRED and replaced. Mail dispatch failure surfaces to the
// caller — the row exists either way, and the admin can re-read the
// token from the response of a retry.
func (s *InviteService) Create(ctx context.Context, email, roleName, inviterID string) (domain.Invitation, error) {
	email = normalizeEmail(email)

	if _, err := s.Store.Roles().GetByName(ctx, roleName); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrRoleNotFound
		}
		return domain.Invitation{}, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize384)
	if err != nil {
		return domain.Invitation{}, err
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:           idx.New().String(),
		Email:        email,
		InvitedBy:    inviterID,
		RoleAssigned: roleName,
		Token:        token,
		ExpiresAt:    now.Add(s.ttl()),
		Status:       domain.InvitationStatusPending,
		CreatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetByEmail(ctx, email)
		switch {
		case err == nil:
			// DISABLED is terminal; an invitation is not a resurrection
			// path, so it conflicts the same way an active account does.
			if user.Status != domain.UserStatusInvited {
				return ErrDuplicateEmail
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		pending, err := tx.Invitations().FindPendingByEmail(ctx, email)
		switch {
		case err == nil:
			if !pending.Expired(now) {
				return ErrDuplicateInvite
			}
			if err := tx.Invitations().SetStatus(ctx, pending.ID, domain.InvitationStatusExpired); err != nil {
				return err
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		return tx.Invitations().Create(ctx, inv)
	})
	if err != nil {
		return domain.Invitation{}, err
	}

	if err := s.Mailer.SendInvitation(ctx, mail.Invitation{
		To:        inv.Email,
		Role:      inv.RoleAssigned,
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt,
	}); err != nil {
		return domain.Invitation{}, fmt.Errorf("dispatch invitation: %w", err)
	}

	slogx.FromContext(ctx).Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("role", inv.RoleAssigned),
	)
	return inv, nil
}

// AcceptInput carries everything invitation redemption needs.
// WarehouseID is required when the assigned role is operator-class.
type AcceptInput struct {
	Token       string
	Password    string
	FullName    string
	WarehouseID string
}

// Accept redeems an invitation: it activates (or creates) the account,
// sets the password, attaches the assigned role, and provisions the
// scope-defining profile the role demands. The whole redemption is one
// transaction; a failure anywhere leaves the invitation PENDING, except
// that a past-expiry invitation is flipped to EXPIRED for good.
func (s *InviteService) Accept(ctx context.Context, in AcceptInput) (domain.User, error) {
	if in.Password == "" {
		return domain.User{}, ErrPasswordRequired
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	var userID string
	var expired bool
	now := time.Now().UTC()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invitations().GetByToken(ctx, in.Token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}
		if inv.Status != domain.InvitationStatusPending {
			return ErrInviteNotFound
		}
		if inv.Expired(now) {
			// The PENDING→EXPIRED flip has to commit even though the
			// redemption fails, so the sentinel is returned after the
			// transaction instead of through it.
			if err := tx.Invitations().SetStatus(ctx, inv.ID, domain.InvitationStatusExpired); err != nil {
				return err
			}
			expired = true
			return nil
		}

		role, err := tx.Roles().GetByName(ctx, inv.RoleAssigned)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// The role vanished after the invitation was issued:
				// seeding defect.
				return ErrCatalogCorrupt
			}
			return err
		}

		user, err := tx.Users().GetByEmail(ctx, inv.Email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			user = domain.User{
				ID:           idx.New().String(),
				Email:        inv.Email,
				FullName:     in.FullName,
				PasswordHash: hash,
				Status:       domain.UserStatusActive,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Users().Create(ctx, user); err != nil {
				return err
			}
		case err != nil:
			return err
		case user.Status == domain.UserStatusDisabled:
			return ErrAccountDisabled
		case user.Status == domain.UserStatusActive:
			return ErrDuplicateEmail
		default: // INVITED placeholder row
			if err := tx.Users().Activate(ctx, user.ID, hash, in.FullName); err != nil {
				return err
			}
		}
		userID = user.ID

		if err := tx.Users().AttachRole(ctx, userID, role.ID); err != nil {
			return err
		}

		if err := s.provisionProfile(ctx, tx, userID, role.Name, in, now); err != nil {
			return err
		}

		return tx.Invitations().SetStatus(ctx, inv.ID, domain.InvitationStatusAccepted)
	})
	if err != nil {
		return domain.User{}, err
	}
	if expired {
		return domain.User{}, ErrInviteExpired
	}

	slogx.FromContext(ctx).Info("invitation accepted", slog.String("user_id", userID))
	return s.Store.Users().GetByID(ctx, userID)
}

// provisionProfile creates whatever record the role needs for scope
// resolution to succeed later.
func (s *InviteService) provisionProfile(ctx context.Context, tx store.Tx, userID, roleName string, in AcceptInput, now time.Time) error {
	switch {
	case domain.IsOperatorClass(roleName):
		if in.WarehouseID == "" {
			return ErrWarehouseRequired
		}
		if _, err := tx.Warehouses().GetByID(ctx, in.WarehouseID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrWarehouseNotFound
			}
			return err
		}
		_, err := tx.Profiles().GetOperatorByUserID(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return tx.Profiles().CreateOperator(ctx, domain.OperatorProfile{
				ID:          idx.New().String(),
				UserID:      userID,
				WarehouseID: in.WarehouseID,
				CreatedAt:   now,
			})
		}
		return err

	case roleName == domain.RoleClient:
		_, err := tx.Profiles().GetClientByUserID(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return tx.Profiles().CreateClient(ctx, domain.Client{
				ID:        idx.New().String(),
				UserID:    userID,
				Name:      in.FullName,
				CreatedAt: now,
			})
		}
		return err
	}
	return nil
}

// List returns invitations newest-first for the admin surface.
func (s *InviteService) List(ctx context.Context, limit, offset int) ([]domain.Invitation, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.Invitations().List(ctx, limit, offset)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
