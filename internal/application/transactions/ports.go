package transactions

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el orquestador:
// o se persisten la cabecera y todas las líneas, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		trxRepo repository.TransactionRepository,
		ledgerRepo repository.LedgerRepository,
		balanceRepo repository.BalanceRepository,
		articleRepo repository.ArticleRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// SnapshotInvalidator invalida snapshots cacheados de inventario tras un
// commit. La invalidación es best-effort: un fallo del cache no revierte la
// transacción ya confirmada.
type SnapshotInvalidator interface {
	InvalidateProduct(ctx context.Context, productID string)
}
