package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
)

// BalanceRepository define el puerto de la proyección materializada de
// balances por artículo, actualizada transaccionalmente junto a cada asiento.
// Usado dentro de transacciones para garantizar consistencia.
type BalanceRepository interface {
	// GetForUpdate bloquea la fila del balance (SELECT FOR UPDATE) y la
	// devuelve; si no existe aún, devuelve una fila en ceros sin bloquear.
	GetForUpdate(ctx context.Context, articleID string) (*entity.ArticleBalance, error)
	Upsert(ctx context.Context, balance *entity.ArticleBalance) error
	// SumByProduct agrega la proyección de todos los artículos del producto,
	// contraparte materializada del fold para la reconciliación.
	SumByProduct(ctx context.Context, productID string) (ledger.Balance, error)
}
