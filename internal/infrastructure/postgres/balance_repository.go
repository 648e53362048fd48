package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo proyección materializada de balances por artículo sobre
// PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// GetForUpdate obtiene la fila del balance y la bloquea (SELECT FOR UPDATE).
// Si el artículo aún no tiene proyección devuelve una fila en ceros.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, articleID string) (*entity.ArticleBalance, error) {
	query := `
		SELECT article_id, total, total_available, total_outside_counting, updated_at
		FROM article_balances WHERE article_id = $1
		FOR UPDATE`
	var b entity.ArticleBalance
	err := r.q.QueryRow(ctx, query, articleID).Scan(
		&b.ArticleID, &b.Total, &b.TotalAvailable, &b.TotalOutsideCounting, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.ArticleBalance{
				ArticleID:            articleID,
				Total:                decimal.Zero,
				TotalAvailable:       decimal.Zero,
				TotalOutsideCounting: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return &b, nil
}

// Upsert inserta o actualiza la proyección del artículo.
func (r *BalanceRepo) Upsert(ctx context.Context, balance *entity.ArticleBalance) error {
	query := `
		INSERT INTO article_balances (article_id, total, total_available, total_outside_counting, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (article_id)
		DO UPDATE SET total = EXCLUDED.total,
		              total_available = EXCLUDED.total_available,
		              total_outside_counting = EXCLUDED.total_outside_counting,
		              updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		balance.ArticleID, balance.Total, balance.TotalAvailable, balance.TotalOutsideCounting,
	)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// SumByProduct agrega la proyección de todos los artículos del producto.
func (r *BalanceRepo) SumByProduct(ctx context.Context, productID string) (ledger.Balance, error) {
	query := `
		SELECT COALESCE(SUM(b.total), 0),
		       COALESCE(SUM(b.total_available), 0),
		       COALESCE(SUM(b.total_outside_counting), 0)
		FROM article_balances b
		JOIN articles a ON a.id = b.article_id
		WHERE a.product_id = $1`
	out := ledger.Zero()
	err := r.q.QueryRow(ctx, query, productID).Scan(&out.Total, &out.TotalAvailable, &out.TotalOutsideCounting)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Zero(), nil
		}
		return ledger.Zero(), fmt.Errorf("sum balances by product: %w", err)
	}
	return out, nil
}
