package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// WarehouseUseCase CRUD de almacenes.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create registra un almacén.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*entity.Warehouse, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Location:  in.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return warehouse, nil
}

// GetByID devuelve un almacén.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return warehouse, nil
}

// List devuelve todos los almacenes activos.
func (uc *WarehouseUseCase) List(ctx context.Context) ([]*entity.Warehouse, error) {
	return uc.repo.List(ctx)
}

// Delete hace soft-delete del almacén.
func (uc *WarehouseUseCase) Delete(ctx context.Context, id string) error {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return domain.ErrNotFound
	}
	return uc.repo.SoftDelete(ctx, id)
}
