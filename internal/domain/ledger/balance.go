package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Movement es la porción de una línea del ledger que necesita el fold de
// balances: tipo de la transacción padre, afectación, cantidad y factor del
// artículo. La cantidad siempre se pondera por el factor, de modo que los
// totales quedan expresados en unidades base sin importar el empaque movido.
type Movement struct {
	Type       string // entity.TransactionTypeENTRY | entity.TransactionTypeEXIT
	Afectation bool
	Quantity   int64
	Factor     decimal.Decimal
}

// BaseUnits devuelve Quantity * Factor, la magnitud del movimiento en
// unidades base de inventario.
func (m Movement) BaseUnits() decimal.Decimal {
	return m.Factor.Mul(decimal.NewFromInt(m.Quantity))
}

// Balance son los tres totales derivados de un alcance (artículo o producto).
// El valor cero representa un ledger sin movimientos: todos los totales en 0,
// nunca nil.
type Balance struct {
	Total                decimal.Decimal // on-hand: solo líneas con afectación
	TotalAvailable       decimal.Decimal // suma con signo ignorando afectación
	TotalOutsideCounting decimal.Decimal // líneas sin afectación, con signo invertido
}

// Zero devuelve un balance vacío con los tres totales inicializados en 0.
func Zero() Balance {
	return Balance{
		Total:                decimal.Zero,
		TotalAvailable:       decimal.Zero,
		TotalOutsideCounting: decimal.Zero,
	}
}

// Apply pliega un movimiento sobre el balance y devuelve el resultado.
//
// Reglas de signo:
//   - Total: ENTRY suma, EXIT resta, solo cuando afectación = true.
//   - TotalAvailable: ENTRY suma, EXIT resta, siempre.
//   - TotalOutsideCounting: solo afectación = false, con signos invertidos —
//     un EXIT sin afectación incrementa el bucket (la unidad salió de custodia
//     sin descontarse del conteo) y un ENTRY sin afectación lo reduce.
func (b Balance) Apply(m Movement) Balance {
	base := m.BaseUnits()
	switch m.Type {
	case entity.TransactionTypeENTRY:
		b.TotalAvailable = b.TotalAvailable.Add(base)
		if m.Afectation {
			b.Total = b.Total.Add(base)
		} else {
			b.TotalOutsideCounting = b.TotalOutsideCounting.Sub(base)
		}
	case entity.TransactionTypeEXIT:
		b.TotalAvailable = b.TotalAvailable.Sub(base)
		if m.Afectation {
			b.Total = b.Total.Sub(base)
		} else {
			b.TotalOutsideCounting = b.TotalOutsideCounting.Add(base)
		}
	}
	return b
}

// Fold calcula el balance de una secuencia completa de movimientos.
// Es el camino de auditoría/reconciliación del cálculo SQL agregado.
func Fold(movements []Movement) Balance {
	b := Zero()
	for _, m := range movements {
		b = b.Apply(m)
	}
	return b
}
