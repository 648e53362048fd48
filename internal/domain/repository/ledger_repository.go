package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/ledger"
)

// ArticleSnapshot es el balance de un artículo dentro del desglose por SKU de
// un producto.
type ArticleSnapshot struct {
	ArticleID string
	Barcode   string
	Multiple  string
	Factor    decimal.Decimal
	Balance   ledger.Balance
}

// LedgerRepository define las consultas derivadas sobre el historial de
// movimientos. Es de solo lectura; atado a la transacción del orquestador ve
// las líneas hermanas del mismo request aún no confirmadas.
//
// Las consultas de admisión a granel (ProductAvailable, HasExcludedExit,
// ProductOutsideCounting) excluyen líneas serializadas: los seriales se
// gobiernan por su máquina de estados, no por el pool a granel.
type LedgerRepository interface {
	// LastMovementBySerial devuelve el movimiento más reciente de un serial
	// (por fecha de creación descendente) o nil si no hay historial.
	LastMovementBySerial(ctx context.Context, serial string) (*ledger.LastMovement, error)

	// ProductAvailable suma ENTRY - EXIT ponderado por factor sobre las líneas
	// a granel de todos los artículos del producto, ignorando afectación.
	ProductAvailable(ctx context.Context, productID string) (decimal.Decimal, error)

	// HasExcludedExit indica si el producto registra al menos una salida a
	// granel sin afectación.
	HasExcludedExit(ctx context.Context, productID string) (bool, error)

	// ProductOutsideCounting suma el acumulado fuera de conteo del producto:
	// salidas sin afectación menos entradas sin afectación, ponderado por factor.
	ProductOutsideCounting(ctx context.Context, productID string) (decimal.Decimal, error)

	// ProductBalance calcula los tres totales del producto plegando el
	// historial completo; asOf (fecha de negocio) es opcional.
	ProductBalance(ctx context.Context, productID string, asOf *time.Time) (ledger.Balance, error)

	// ArticleBalance calcula los tres totales de un artículo por código de barras.
	ArticleBalance(ctx context.Context, barcode string, asOf *time.Time) (ledger.Balance, error)

	// ArticleBreakdown devuelve el balance por artículo de un producto.
	ArticleBreakdown(ctx context.Context, productID string) ([]ArticleSnapshot, error)
}
