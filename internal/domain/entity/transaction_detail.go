package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDetail es una línea del ledger: un movimiento de un artículo.
// Se crea una sola vez al crear la transacción y nunca se edita; las
// correcciones se modelan como transacciones compensatorias nuevas.
//
// Invariante: SerialNumber presente ⟺ Quantity == 1. Para líneas serializadas
// la capa de entrada además fuerza Factor = 1 (unidad base); el núcleo del
// ledger confía en esa precondición y no la re-deriva.
type TransactionDetail struct {
	ID            string
	TransactionID string
	ArticleID     string
	Article       *Article // poblado en lecturas
	SerialNumber  string   // vacío = línea a granel
	Quantity      int64    // unidades de Multiple, >= 1
	Afectation    bool     // cuenta o no en el inventario primario
	Price         *decimal.Decimal
	CreatedAt     time.Time
}

// IsSerialized indica si la línea rastrea una unidad individual.
func (d *TransactionDetail) IsSerialized() bool {
	return d.SerialNumber != ""
}
