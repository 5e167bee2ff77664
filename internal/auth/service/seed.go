package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crateworks/wmsauth/internal/auth/domain"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/pkg/cryptox"
	"github.com/crateworks/wmsauth/pkg/idx"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// Canonical permission catalog. Authorization compares against these
// codes and nothing else, so the catalog must be seeded before any role
// can reference it.
//
// Governance rule enforced by the role mapping below:
//   - OPERATOR / INVENTORY_MANAGER get inventory.* but never
//     billing.invoice.approve
//   - BILLING_MANAGER gets billing.* but never inventory mutations
//   - only ADMIN holds every permission
var permissionCatalog = []domain.Permission{
	// Inventory
	{Code: "inventory.inward.create", Description: "Create inward inventory entries"},
	{Code: "inventory.zone.allocate", Description: "Allocate inventory to a zone"},
	{Code: "inventory.move.internal", Description: "Move inventory between zones"},
	{Code: "inventory.dispatch.execute", Description: "Execute dispatch of inventory"},
	{Code: "inventory.view", Description: "View inventory data"},
	// Billing
	{Code: "billing.invoice.create", Description: "Create invoices"},
	{Code: "billing.invoice.approve", Description: "Approve invoices (governance-separated)"},
	{Code: "invoice.view", Description: "View invoices"},
	// User management
	{Code: "user.invite.operator", Description: "Invite an operator"},
	{Code: "user.invite.client", Description: "Invite a client"},
	// Warehouse
	{Code: "warehouse.create", Description: "Create a warehouse"},
	{Code: "warehouse.update", Description: "Update warehouse details"},
}

var rolePermissions = map[string][]string{
	domain.RoleAdmin: allCatalogCodes(),
	domain.RoleOperator: {
		"inventory.inward.create",
		"inventory.zone.allocate",
		"inventory.move.internal",
		"inventory.dispatch.execute",
		"inventory.view",
	},
	domain.RoleInventoryManager: {
		"inventory.inward.create",
		"inventory.zone.allocate",
		"inventory.move.internal",
		"inventory.dispatch.execute",
		"inventory.view",
	},
	domain.RoleBillingManager: {
		"billing.invoice.create",
		"billing.invoice.approve",
		"invoice.view",
	},
	domain.RoleClient: {
		"inventory.view",
		"invoice.view",
	},
}

func allCatalogCodes() []string {
	out := make([]string, 0, len(permissionCatalog))
	for _, p := range permissionCatalog {
		out = append(out, p.Code)
	}
	return out
}

// Seeder populates the permission catalog and default roles. Safe to run
// on every startup: existing rows are left alone.
type Seeder struct {
	Store store.Store
}

// Seed creates any missing permissions, roles, and role→permission
// links. Link attachment is repeated even for pre-existing roles so a
// catalog addition propagates on the next run.
func (s *Seeder) Seed(ctx context.Context) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()
		codeToID := map[string]string{}

		for _, p := range permissionCatalog {
			existing, err := tx.Permissions().GetByCode(ctx, p.Code)
			switch {
			case err == nil:
				codeToID[p.Code] = existing.ID
				continue
			case !errors.Is(err, store.ErrNotFound):
				return err
			}

			p.ID = idx.New().String()
			if err := tx.Permissions().Create(ctx, p); err != nil {
				return err
			}
			codeToID[p.Code] = p.ID
		}

		for name, codes := range rolePermissions {
			role, err := tx.Roles().GetByName(ctx, name)
			switch {
			case errors.Is(err, store.ErrNotFound):
				role = domain.Role{
					ID:          idx.New().String(),
					Name:        name,
					Description: fmt.Sprintf("Default %s role", name),
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := tx.Roles().Create(ctx, role); err != nil {
					return err
				}
			case err != nil:
				return err
			}

			for _, code := range codes {
				permID, ok := codeToID[code]
				if !ok {
					return fmt.Errorf("%w: role %s references unknown code %s", ErrCatalogCorrupt, name, code)
				}
				if err := tx.Roles().AttachPermission(ctx, role.ID, permID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// BootstrapAdmin creates the first ADMIN account on an empty install.
// A non-empty user table makes this a no-op, so leaving the bootstrap
// credentials configured is harmless after first start.
func (s *Seeder) BootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	var userID string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		role, err := tx.Roles().GetByName(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user := domain.User{
			ID:           idx.New().String(),
			Email:        normalizeEmail(email),
			FullName:     "Administrator",
			PasswordHash: hash,
			Status:       domain.UserStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		userID = user.ID
		return tx.Users().AttachRole(ctx, user.ID, role.ID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("bootstrap admin created", slog.String("user_id", userID))
	return nil
}
