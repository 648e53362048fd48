package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Reglas de admisión del ledger. Son puras: reciben el estado derivado del
// historial (último movimiento de un serial, balances acumulados) y deciden si
// el movimiento propuesto es legal. Las consultas que producen ese estado
// viven en la capa de persistencia.

// LastMovement describe el movimiento más reciente de un número de serie,
// ordenado por fecha de creación descendente. nil significa sin historial.
type LastMovement struct {
	Type        string // tipo de la transacción padre
	Afectation  bool
	FolioNumber string
}

// CheckSerialEntry valida la ENTRADA de una unidad serializada.
//
// Máquina de estados sobre {en inventario, fuera, fuera sin afectar conteo},
// determinada únicamente por el último movimiento del serial:
//   - último movimiento ENTRY -> la unidad ya está dentro: conflicto.
//   - último movimiento EXIT con afectación distinta a la propuesta ->
//     reingresar con otro régimen de conteo es inconsistente: conflicto.
//   - sin historial y afectación = false -> no se puede recibir "sin contar"
//     algo que nunca salió: no encontrado.
//   - sin historial y afectación = true -> primer ingreso, admitido.
func CheckSerialEntry(serial string, last *LastMovement, afectation bool) error {
	if last == nil {
		if !afectation {
			return fmt.Errorf("%w: el serial %s no está en el inventario", domain.ErrNotFound, serial)
		}
		return nil
	}
	if last.Type == entity.TransactionTypeENTRY {
		return fmt.Errorf("%w: el serial %s ya está en el inventario", domain.ErrConflict, serial)
	}
	if last.Type == entity.TransactionTypeEXIT && last.Afectation != afectation {
		return fmt.Errorf("%w: el serial %s salió con otro régimen de afectación (último folio %s)",
			domain.ErrConflict, serial, last.FolioNumber)
	}
	return nil
}

// CheckSerialExit valida la SALIDA de una unidad serializada: debe existir
// historial y el último movimiento no puede ser otra salida.
func CheckSerialExit(serial string, last *LastMovement) error {
	if last == nil {
		return fmt.Errorf("%w: el serial %s no está en el inventario", domain.ErrNotFound, serial)
	}
	if last.Type == entity.TransactionTypeEXIT {
		return fmt.Errorf("%w: el serial %s ya está fuera del inventario (último folio %s)",
			domain.ErrConflict, serial, last.FolioNumber)
	}
	return nil
}

// CheckBulkExit valida una salida a granel contra el disponible acumulado del
// producto (ponderado por factor, ignorando afectación). La igualdad exacta es
// admisible: la frontera es "al menos lo suficiente".
func CheckBulkExit(barcode string, available, requested decimal.Decimal) error {
	if available.LessThan(requested) {
		return fmt.Errorf("%w: el artículo %s no tiene inventario suficiente (disponible %s, solicitado %s)",
			domain.ErrInsufficientStock, barcode, available.String(), requested.String())
	}
	return nil
}

// CheckBulkReturn valida una entrada a granel sin afectación: modela la
// devolución de salidas previas excluidas del conteo. Dos compuertas
// independientes, ninguna se asume redundante con la otra:
//  1. debe existir al menos una salida previa sin afectación para el producto;
//  2. el acumulado fuera de conteo debe cubrir la cantidad devuelta.
func CheckBulkReturn(barcode string, hasExcludedExit bool, outside, requested decimal.Decimal) error {
	if !hasExcludedExit {
		return fmt.Errorf("%w: el artículo %s no tiene salidas previas sin afectación contra las cuales devolver",
			domain.ErrConflict, barcode)
	}
	if outside.LessThan(requested) {
		return fmt.Errorf("%w: el artículo %s no tiene suficiente acumulado fuera de conteo (fuera %s, solicitado %s)",
			domain.ErrConflict, barcode, outside.String(), requested.String())
	}
	return nil
}
