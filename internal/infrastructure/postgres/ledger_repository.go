package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo consultas derivadas sobre el historial de movimientos (solo
// lectura, usable con pool o tx). Todas las consultas excluyen transacciones
// con soft-delete.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// LastMovementBySerial devuelve el movimiento más reciente del serial o nil
// si no hay historial. El desempate por id solo estabiliza el orden de lectura;
// dos líneas del mismo serial nunca se confirman en un mismo request porque la
// admisión rechaza el serial duplicado.
func (r *LedgerRepo) LastMovementBySerial(ctx context.Context, serial string) (*ledger.LastMovement, error) {
	query := `
		SELECT t.transaction_type, td.afectation, t.folio_number
		FROM transaction_details td
		JOIN transactions t ON t.id = td.transaction_id
		WHERE td.serial_number = $1 AND t.deleted_at IS NULL
		ORDER BY td.created_at DESC, td.id DESC
		LIMIT 1`
	var m ledger.LastMovement
	err := r.q.QueryRow(ctx, query, serial).Scan(&m.Type, &m.Afectation, &m.FolioNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last movement by serial: %w", err)
	}
	return &m, nil
}

// ProductAvailable suma ENTRY - EXIT ponderado por factor sobre las líneas a
// granel de todos los artículos del producto, ignorando afectación.
func (r *LedgerRepo) ProductAvailable(ctx context.Context, productID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE
		        WHEN t.transaction_type = 'ENTRY' THEN td.quantity * a.factor
		        WHEN t.transaction_type = 'EXIT'  THEN -td.quantity * a.factor
		        ELSE 0
		    END), 0) AS total
		FROM transaction_details td
		JOIN transactions t ON t.id = td.transaction_id
		JOIN articles a ON a.id = td.article_id
		WHERE a.product_id = $1
		  AND td.serial_number IS NULL
		  AND t.deleted_at IS NULL`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("product available: %w", err)
	}
	return total, nil
}

// HasExcludedExit indica si el producto registra al menos una salida a granel
// sin afectación.
func (r *LedgerRepo) HasExcludedExit(ctx context.Context, productID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM transaction_details td
			JOIN transactions t ON t.id = td.transaction_id
			JOIN articles a ON a.id = td.article_id
			WHERE a.product_id = $1
			  AND td.serial_number IS NULL
			  AND td.afectation = FALSE
			  AND t.transaction_type = 'EXIT'
			  AND t.deleted_at IS NULL
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("has excluded exit: %w", err)
	}
	return exists, nil
}

// ProductOutsideCounting suma el acumulado fuera de conteo del producto:
// salidas sin afectación menos entradas sin afectación, ponderado por factor.
func (r *LedgerRepo) ProductOutsideCounting(ctx context.Context, productID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE
		        WHEN t.transaction_type = 'EXIT'  AND td.afectation = FALSE THEN td.quantity * a.factor
		        WHEN t.transaction_type = 'ENTRY' AND td.afectation = FALSE THEN -td.quantity * a.factor
		        ELSE 0
		    END), 0) AS total
		FROM transaction_details td
		JOIN transactions t ON t.id = td.transaction_id
		JOIN articles a ON a.id = td.article_id
		WHERE a.product_id = $1
		  AND td.serial_number IS NULL
		  AND t.deleted_at IS NULL`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("product outside counting: %w", err)
	}
	return total, nil
}

// Los tres totales del §balance en una sola pasada agregada. Sin filas
// coincidentes las sumas colapsan a cero vía COALESCE.
const balanceSelect = `
	SELECT
		COALESCE(SUM(CASE
		        WHEN t.transaction_type = 'ENTRY' AND td.afectation = TRUE  THEN td.quantity * a.factor
		        WHEN t.transaction_type = 'EXIT'  AND td.afectation = TRUE  THEN -td.quantity * a.factor
		        ELSE 0
		    END), 0) AS total,
		COALESCE(SUM(CASE
		        WHEN t.transaction_type = 'ENTRY' THEN td.quantity * a.factor
		        WHEN t.transaction_type = 'EXIT'  THEN -td.quantity * a.factor
		        ELSE 0
		    END), 0) AS total_available,
		COALESCE(SUM(CASE
		        WHEN t.transaction_type = 'EXIT'  AND td.afectation = FALSE THEN td.quantity * a.factor
		        WHEN t.transaction_type = 'ENTRY' AND td.afectation = FALSE THEN -td.quantity * a.factor
		        ELSE 0
		    END), 0) AS total_outside_counting
	FROM transaction_details td
	JOIN transactions t ON t.id = td.transaction_id
	JOIN articles a ON a.id = td.article_id`

// ProductBalance calcula los tres totales del producto plegando el historial
// completo; asOf filtra por fecha de negocio cuando no es nil.
func (r *LedgerRepo) ProductBalance(ctx context.Context, productID string, asOf *time.Time) (ledger.Balance, error) {
	query := balanceSelect + `
	WHERE a.product_id = $1 AND t.deleted_at IS NULL`
	args := []any{productID}
	if asOf != nil {
		query += ` AND t.transaction_date <= $2`
		args = append(args, *asOf)
	}
	return r.scanBalance(ctx, "product balance", query, args...)
}

// ArticleBalance calcula los tres totales de un artículo por código de barras.
func (r *LedgerRepo) ArticleBalance(ctx context.Context, barcode string, asOf *time.Time) (ledger.Balance, error) {
	query := balanceSelect + `
	WHERE a.barcode = $1 AND t.deleted_at IS NULL`
	args := []any{barcode}
	if asOf != nil {
		query += ` AND t.transaction_date <= $2`
		args = append(args, *asOf)
	}
	return r.scanBalance(ctx, "article balance", query, args...)
}

func (r *LedgerRepo) scanBalance(ctx context.Context, op, query string, args ...any) (ledger.Balance, error) {
	b := ledger.Zero()
	err := r.q.QueryRow(ctx, query, args...).Scan(&b.Total, &b.TotalAvailable, &b.TotalOutsideCounting)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Zero(), nil
		}
		return ledger.Zero(), fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// ArticleBreakdown devuelve el balance por artículo de un producto, agrupado
// por SKU. Artículos sin movimientos aparecen con totales en cero.
func (r *LedgerRepo) ArticleBreakdown(ctx context.Context, productID string) ([]repository.ArticleSnapshot, error) {
	query := `
		SELECT
			a.id, a.barcode, a.multiple, a.factor,
			COALESCE(SUM(CASE
			        WHEN t.transaction_type = 'ENTRY' AND td.afectation = TRUE  THEN td.quantity * a.factor
			        WHEN t.transaction_type = 'EXIT'  AND td.afectation = TRUE  THEN -td.quantity * a.factor
			        ELSE 0
			    END), 0) AS total,
			COALESCE(SUM(CASE
			        WHEN t.transaction_type = 'ENTRY' THEN td.quantity * a.factor
			        WHEN t.transaction_type = 'EXIT'  THEN -td.quantity * a.factor
			        ELSE 0
			    END), 0) AS total_available,
			COALESCE(SUM(CASE
			        WHEN t.transaction_type = 'EXIT'  AND td.afectation = FALSE THEN td.quantity * a.factor
			        WHEN t.transaction_type = 'ENTRY' AND td.afectation = FALSE THEN -td.quantity * a.factor
			        ELSE 0
			    END), 0) AS total_outside_counting
		FROM articles a
		LEFT JOIN transaction_details td ON td.article_id = a.id
		LEFT JOIN transactions t ON t.id = td.transaction_id AND t.deleted_at IS NULL
		WHERE a.product_id = $1 AND a.deleted_at IS NULL
		GROUP BY a.id, a.barcode, a.multiple, a.factor
		ORDER BY a.barcode`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("article breakdown: %w", err)
	}
	defer rows.Close()

	var snapshots []repository.ArticleSnapshot
	for rows.Next() {
		var s repository.ArticleSnapshot
		if err := rows.Scan(&s.ArticleID, &s.Barcode, &s.Multiple, &s.Factor,
			&s.Balance.Total, &s.Balance.TotalAvailable, &s.Balance.TotalOutsideCounting); err != nil {
			return nil, fmt.Errorf("scan article breakdown: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
