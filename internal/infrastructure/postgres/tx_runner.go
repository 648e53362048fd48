package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-api/internal/application/transactions"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Ensure TxRunner implements transactions.TxRunner.
var _ transactions.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Las consultas del ledger dentro de fn ven las filas
// insertadas por fn mismo (sub-ledger secuencial del request) y nada queda
// visible para otros lectores hasta el Commit.
func (r *TxRunner) Run(ctx context.Context, fn func(
	trxRepo repository.TransactionRepository,
	ledgerRepo repository.LedgerRepository,
	balanceRepo repository.BalanceRepository,
	articleRepo repository.ArticleRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	trxRepo := NewTransactionRepository(tx)
	ledgerRepo := NewLedgerRepository(tx)
	balanceRepo := NewBalanceRepository(tx)
	articleRepo := NewArticleRepository(tx)
	productRepo := NewProductRepository(tx)

	if err := fn(trxRepo, ledgerRepo, balanceRepo, articleRepo, productRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
