package sqlite

import (
	"context"

	"github.com/crateworks/wmsauth/internal/auth/domain"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) GetOperatorByUserID(ctx context.Context, userID string) (domain.OperatorProfile, error) {
	var p domain.OperatorProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, warehouse_id, shift_start, shift_end, created_at
		FROM operator_profiles WHERE user_id = ?`, userID).
		Scan(&p.ID, &p.UserID, &p.WarehouseID, &p.ShiftStart, &p.ShiftEnd, &p.CreatedAt)
	if err != nil {
		return domain.OperatorProfile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) CreateOperator(ctx context.Context, p domain.OperatorProfile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO operator_profiles (id, user_id, warehouse_id, shift_start, shift_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.WarehouseID, p.ShiftStart, p.ShiftEnd, p.CreatedAt)
	return mapConstraint(err)
}

func (r *profilesRepo) GetClientByUserID(ctx context.Context, userID string) (domain.Client, error) {
	var c domain.Client
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM clients WHERE user_id = ?`, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *profilesRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.CreatedAt)
	return mapConstraint(err)
}

type warehousesRepo struct {
	db dbtx
}

func (r *warehousesRepo) GetByID(ctx context.Context, id string) (domain.Warehouse, error) {
	var w domain.Warehouse
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM warehouses WHERE id = ?`, id).
		Scan(&w.ID, &w.Name, &w.CreatedAt)
	if err != nil {
		return domain.Warehouse{}, mapNotFound(err)
	}
	return w, nil
}

func (r *warehousesRepo) Create(ctx context.Context, w domain.Warehouse) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO warehouses (id, name, created_at) VALUES (?, ?, ?)`,
		w.ID, w.Name, w.CreatedAt)
	return mapConstraint(err)
}

func (r *warehousesRepo) ListAll(ctx context.Context) ([]domain.Warehouse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Warehouse
	for rows.Next() {
		var w domain.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
