package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// TransactionFilter filtros de listado de transacciones.
type TransactionFilter struct {
	Folio      string
	Type       string
	PersonName string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// TransactionRepository define el puerto de persistencia del ledger
// (append-only: cabeceras y líneas se insertan, nunca se editan).
// CreateHeader y CreateDetail se usan dentro de la transacción atómica del
// orquestador; el detalle se inserta línea a línea para que las validaciones
// posteriores del mismo request vean a sus hermanas no confirmadas.
type TransactionRepository interface {
	CreateHeader(ctx context.Context, trx *entity.Transaction) error
	CreateDetail(ctx context.Context, detail *entity.TransactionDetail) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, int64, error)
	ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.Transaction, error)
	SoftDelete(ctx context.Context, id string) error
}
