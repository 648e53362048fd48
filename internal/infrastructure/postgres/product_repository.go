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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo persistencia de productos sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productSelect = `
	SELECT id, name, description, created_at, updated_at
	FROM products`

// Create persiste un producto nuevo.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return mapStoreError("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto activo. nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := productSelect + ` WHERE id = $1 AND deleted_at IS NULL`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get product")
}

// GetForUpdate bloquea la fila del producto dentro de la transacción actual.
// Sobre este lock se serializa toda la admisión del producto: lecturas de
// saldo y último movimiento posteriores al lock ven el estado consistente.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	query := productSelect + ` WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "lock product")
}

// List busca productos. Search viene ya plegado (minúsculas, sin acentos);
// las columnas se pliegan con unaccent() para que "Válvula" almacenado
// coincida con el término "valvula".
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	where := ` WHERE deleted_at IS NULL`
	args := []any{}
	pos := 1
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (unaccent(name) ILIKE $%d OR unaccent(description) ILIKE $%d)", pos, pos)
		args = append(args, "%"+filter.Search+"%")
		pos++
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := productSelect + where + fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p := &entity.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Update modifica nombre y descripción.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(ctx, query, product.ID, product.Name, product.Description, product.UpdatedAt)
	if err != nil {
		return mapStoreError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el producto como eliminado.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row, op string) (*entity.Product, error) {
	p := &entity.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
