package domain

import "time"

// Canonical role names. Roles are seeded data; these constants exist so
// scope resolution and invitation provisioning never compare against
// free-form strings.
const (
	RoleAdmin            = "ADMIN"
	RoleOperator         = "OPERATOR"
	RoleInventoryManager = "INVENTORY_MANAGER"
	RoleBillingManager   = "BILLING_MANAGER"
	RoleClient           = "CLIENT"
)

type Role struct {
	ID          string
	Name        string
	Description string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOperatorClass reports whether the role binds its holder to a
// warehouse via an operator profile.
func IsOperatorClass(name string) bool {
	return name == RoleOperator || name == RoleInventoryManager
}

// Permission is one discrete authorizable action. The code is immutable
// and is the only thing authorization checks ever compare against.
type Permission struct {
	ID          string
	Code        string
	Description string
}
