package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo persistencia de almacenes sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, name, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.CreatedAt, warehouse.UpdatedAt,
	)
	if err != nil {
		return mapStoreError("insert warehouse", err)
	}
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, name, location, created_at, updated_at
		FROM warehouses WHERE id = $1 AND deleted_at IS NULL`
	w := &entity.Warehouse{}
	err := r.q.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.Location, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, name, location, created_at, updated_at
		FROM warehouses WHERE deleted_at IS NULL ORDER BY name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var list []*entity.Warehouse
	for rows.Next() {
		w := &entity.Warehouse{}
		if err := rows.Scan(&w.ID, &w.Name, &w.Location, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

func (r *WarehouseRepo) Update(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		UPDATE warehouses
		SET name = $2, location = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(ctx, query, warehouse.ID, warehouse.Name, warehouse.Location, warehouse.UpdatedAt)
	if err != nil {
		return mapStoreError("update warehouse", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WarehouseRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE warehouses SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
