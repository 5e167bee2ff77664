package domain

import "time"

// Warehouse carries only what scoping needs; the full warehouse entity
// lives with the inventory system.
type Warehouse struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// OperatorProfile links an operator-class user to the one warehouse they
// may touch. Shift times travel with the profile because invitation
// acceptance provisions them.
type OperatorProfile struct {
	ID          string
	UserID      string
	WarehouseID string
	ShiftStart  string // "HH:MM", optional
	ShiftEnd    string // "HH:MM", optional
	CreatedAt   time.Time
}

// Client links a CLIENT-role user to their client record, the boundary
// of everything they may see.
type Client struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}
