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

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo persistencia de artículos sobre PostgreSQL (usable con pool o tx).
// Las lecturas pueblan el Product asociado.
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

const articleSelect = `
	SELECT a.id, a.product_id, a.warehouse_id, a.barcode, a.multiple, a.factor,
	       a.created_at, a.updated_at,
	       p.name, p.description
	FROM articles a
	JOIN products p ON p.id = a.product_id`

// Create persiste un artículo nuevo. Barcode duplicado -> domain.ErrDuplicate.
func (r *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	query := `
		INSERT INTO articles (id, product_id, warehouse_id, barcode, multiple, factor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	warehouseID := (*string)(nil)
	if article.WarehouseID != "" {
		warehouseID = &article.WarehouseID
	}
	_, err := r.q.Exec(ctx, query,
		article.ID, article.ProductID, warehouseID, article.Barcode,
		article.Multiple, article.Factor, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return mapStoreError("insert article", err)
	}
	return nil
}

// GetByID obtiene un artículo con su producto. nil si no existe.
func (r *ArticleRepo) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	query := articleSelect + ` WHERE a.id = $1 AND a.deleted_at IS NULL`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get article")
}

// GetByBarcode obtiene un artículo por código de barras. nil si no existe.
func (r *ArticleRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Article, error) {
	query := articleSelect + ` WHERE a.barcode = $1 AND a.deleted_at IS NULL`
	return r.scanOne(r.q.QueryRow(ctx, query, barcode), "get article by barcode")
}

// ListByProduct lista los artículos activos de un producto.
func (r *ArticleRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Article, error) {
	query := articleSelect + ` WHERE a.product_id = $1 AND a.deleted_at IS NULL ORDER BY a.barcode`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list articles by product: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// List busca artículos. El término Search viene ya plegado (minúsculas, sin
// acentos) y se compara contra barcode, multiple y nombre del producto; las
// columnas con texto libre se pliegan con unaccent() del lado SQL.
func (r *ArticleRepo) List(ctx context.Context, filter repository.ArticleFilter) ([]*entity.Article, int64, error) {
	where := ` WHERE a.deleted_at IS NULL`
	args := []any{}
	pos := 1
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (a.barcode ILIKE $%d OR unaccent(a.multiple) ILIKE $%d OR unaccent(p.name) ILIKE $%d)", pos, pos, pos)
		args = append(args, "%"+filter.Search+"%")
		pos++
	}
	if filter.Barcode != "" {
		where += fmt.Sprintf(" AND a.barcode ILIKE $%d", pos)
		args = append(args, "%"+filter.Barcode+"%")
		pos++
	}
	if filter.Multiple != "" {
		where += fmt.Sprintf(" AND a.multiple ILIKE $%d", pos)
		args = append(args, "%"+filter.Multiple+"%")
		pos++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM articles a JOIN products p ON p.id = a.product_id` + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	query := articleSelect + where + fmt.Sprintf(" ORDER BY a.barcode LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	list, err := r.scanAll(rows)
	return list, total, err
}

// Update modifica multiple, factor y almacén; el barcode es inmutable.
func (r *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	query := `
		UPDATE articles
		SET multiple = $2, factor = $3, warehouse_id = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL`
	warehouseID := (*string)(nil)
	if article.WarehouseID != "" {
		warehouseID = &article.WarehouseID
	}
	tag, err := r.q.Exec(ctx, query, article.ID, article.Multiple, article.Factor, warehouseID, article.UpdatedAt)
	if err != nil {
		return mapStoreError("update article", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el artículo como eliminado; su historial permanece.
func (r *ArticleRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE articles SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) scanOne(row pgx.Row, op string) (*entity.Article, error) {
	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (r *ArticleRepo) scanAll(rows pgx.Rows) ([]*entity.Article, error) {
	var list []*entity.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func scanArticle(row pgx.Row) (*entity.Article, error) {
	a := &entity.Article{Product: &entity.Product{}}
	var warehouseID *string
	if err := row.Scan(&a.ID, &a.ProductID, &warehouseID, &a.Barcode, &a.Multiple, &a.Factor,
		&a.CreatedAt, &a.UpdatedAt, &a.Product.Name, &a.Product.Description); err != nil {
		return nil, err
	}
	if warehouseID != nil {
		a.WarehouseID = *warehouseID
	}
	a.Product.ID = a.ProductID
	return a, nil
}
