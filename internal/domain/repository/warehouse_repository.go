package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para almacenes.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	List(ctx context.Context) ([]*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	SoftDelete(ctx context.Context, id string) error
}
