package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductFilter filtros de listado/búsqueda de productos.
type ProductFilter struct {
	Search string // término ya normalizado (sin acentos, minúsculas)
	Limit  int
	Offset int
}

// ProductRepository define el puerto de persistencia para productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE). Es el
	// punto de serialización de la admisión: dos requests concurrentes sobre
	// el mismo producto o serial se ordenan en este lock.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int64, error)
	Update(ctx context.Context, product *entity.Product) error
	SoftDelete(ctx context.Context, id string) error
}
