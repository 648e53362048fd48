package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ProductUseCase administración del catálogo de productos. El alta sucede de
// forma implícita (al crear artículos o al recibir códigos nuevos en una
// transacción); aquí solo viven las correcciones de catálogo.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// GetByID devuelve un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// Update corrige nombre/descripción. Los productos creados como cascarón desde
// una transacción se completan por esta vía.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	if in.Name == "" && in.Description == "" {
		return nil, fmt.Errorf("%w: nada que actualizar", domain.ErrInvalidInput)
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete hace soft-delete; el historial del producto permanece en el ledger.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.SoftDelete(ctx, id)
}
