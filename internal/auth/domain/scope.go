package domain

// ScopeKind enumerates every record-visibility boundary. The set is
// closed: consumers switch over it and must handle all four arms, so a
// new boundary cannot slip through as "unscoped".
type ScopeKind int

const (
	// ScopeAdmin grants unrestricted visibility.
	ScopeAdmin ScopeKind = iota
	// ScopeWarehouse bounds queries to one warehouse.
	ScopeWarehouse
	// ScopeClient bounds queries to one client record.
	ScopeClient
	// ScopeSelf bounds queries to the caller's own rows.
	ScopeSelf
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeAdmin:
		return "admin"
	case ScopeWarehouse:
		return "warehouse"
	case ScopeClient:
		return "client"
	case ScopeSelf:
		return "self"
	default:
		return "unknown"
	}
}

// Scope is the derived record-visibility boundary for one request. It is
// computed fresh per request and never persisted or cached.
//
// BoundID is the warehouse id, client id, or user id depending on Kind;
// empty only for ScopeAdmin.
type Scope struct {
	Kind    ScopeKind
	BoundID string
}

// Unrestricted reports whether the scope imposes no filter.
func (s Scope) Unrestricted() bool { return s.Kind == ScopeAdmin }
