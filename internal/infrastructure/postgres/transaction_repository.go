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

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo persistencia append-only del ledger sobre PostgreSQL
// (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// CreateHeader inserta la cabecera. El folio es único: un duplicado se
// traduce a domain.ErrDuplicate.
func (r *TransactionRepo) CreateHeader(ctx context.Context, trx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, transaction_type, transaction_date, folio_number, person_name, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	userID := (*string)(nil)
	if trx.UserID != "" {
		userID = &trx.UserID
	}
	_, err := r.q.Exec(ctx, query,
		trx.ID, trx.Type, trx.TransactionDate, trx.FolioNumber, trx.PersonName, userID, trx.CreatedAt,
	)
	if err != nil {
		return mapStoreError("create transaction header", err)
	}
	return nil
}

// CreateDetail inserta una línea del ledger. serial_number vacío se persiste
// como NULL para que las agregaciones a granel lo excluyan por IS NULL.
func (r *TransactionRepo) CreateDetail(ctx context.Context, detail *entity.TransactionDetail) error {
	query := `
		INSERT INTO transaction_details (id, transaction_id, article_id, serial_number, quantity, afectation, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	serial := (*string)(nil)
	if detail.SerialNumber != "" {
		serial = &detail.SerialNumber
	}
	_, err := r.q.Exec(ctx, query,
		detail.ID, detail.TransactionID, detail.ArticleID, serial,
		detail.Quantity, detail.Afectation, detail.Price, detail.CreatedAt,
	)
	if err != nil {
		return mapStoreError("create transaction detail", err)
	}
	return nil
}

// GetByID obtiene una transacción con sus líneas, artículos y productos
// anidados. nil si no existe o fue soft-deleted.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `
		SELECT id, transaction_type, transaction_date, folio_number, person_name, user_id, created_at
		FROM transactions
		WHERE id = $1 AND deleted_at IS NULL`
	trx, err := r.scanHeader(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if err := r.loadDetails(ctx, trx); err != nil {
		return nil, err
	}
	return trx, nil
}

// List devuelve transacciones filtradas y el total sin paginar.
func (r *TransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, int64, error) {
	where := ` WHERE deleted_at IS NULL`
	args := []any{}
	pos := 1
	if filter.Folio != "" {
		where += fmt.Sprintf(" AND folio_number = $%d", pos)
		args = append(args, filter.Folio)
		pos++
	}
	if filter.Type != "" {
		where += fmt.Sprintf(" AND transaction_type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.PersonName != "" {
		where += fmt.Sprintf(" AND person_name ILIKE $%d", pos)
		args = append(args, "%"+filter.PersonName+"%")
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND transaction_date >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND transaction_date <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `
		SELECT id, transaction_type, transaction_date, folio_number, person_name, user_id, created_at
		FROM transactions` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	for rows.Next() {
		trx, err := r.scanHeader(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, trx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, trx := range list {
		if err := r.loadDetails(ctx, trx); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// ListByProduct devuelve las transacciones recientes que movieron artículos
// del producto, más nuevas primero.
func (r *TransactionRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.Transaction, error) {
	query := `
		SELECT DISTINCT t.id, t.transaction_type, t.transaction_date, t.folio_number, t.person_name, t.user_id, t.created_at
		FROM transactions t
		JOIN transaction_details td ON td.transaction_id = t.id
		JOIN articles a ON a.id = td.article_id
		WHERE a.product_id = $1 AND t.deleted_at IS NULL
		ORDER BY t.created_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions by product: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	for rows.Next() {
		trx, err := r.scanHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, trx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, trx := range list {
		if err := r.loadDetails(ctx, trx); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// SoftDelete marca la transacción como eliminada; sus líneas dejan de contar
// en los balances derivados.
func (r *TransactionRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE transactions SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) scanHeader(row pgx.Row) (*entity.Transaction, error) {
	var trx entity.Transaction
	var userID *string
	if err := row.Scan(&trx.ID, &trx.Type, &trx.TransactionDate, &trx.FolioNumber,
		&trx.PersonName, &userID, &trx.CreatedAt); err != nil {
		return nil, err
	}
	if userID != nil {
		trx.UserID = *userID
	}
	return &trx, nil
}

func (r *TransactionRepo) loadDetails(ctx context.Context, trx *entity.Transaction) error {
	query := `
		SELECT td.id, td.article_id, td.serial_number, td.quantity, td.afectation, td.price, td.created_at,
		       a.product_id, a.barcode, a.multiple, a.factor,
		       p.name, p.description
		FROM transaction_details td
		JOIN articles a ON a.id = td.article_id
		JOIN products p ON p.id = a.product_id
		WHERE td.transaction_id = $1
		ORDER BY td.created_at ASC, td.id ASC`
	rows, err := r.q.Query(ctx, query, trx.ID)
	if err != nil {
		return fmt.Errorf("load transaction details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d entity.TransactionDetail
		var serial *string
		article := &entity.Article{Product: &entity.Product{}}
		if err := rows.Scan(&d.ID, &d.ArticleID, &serial, &d.Quantity, &d.Afectation, &d.Price, &d.CreatedAt,
			&article.ProductID, &article.Barcode, &article.Multiple, &article.Factor,
			&article.Product.Name, &article.Product.Description); err != nil {
			return fmt.Errorf("scan transaction detail: %w", err)
		}
		if serial != nil {
			d.SerialNumber = *serial
		}
		article.ID = d.ArticleID
		article.Product.ID = article.ProductID
		d.TransactionID = trx.ID
		d.Article = article
		trx.Details = append(trx.Details, &d)
	}
	return rows.Err()
}
