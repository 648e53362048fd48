package ledger

import "fmt"

// AdmissionError atribuye un rechazo de admisión a la línea que lo provocó.
// Envuelve el error de dominio subyacente (conflicto, no encontrado, stock
// insuficiente) para que errors.Is siga funcionando en los handlers.
type AdmissionError struct {
	Line    int // índice de la línea en el request, base 0
	Barcode string
	Serial  string
	Err     error
}

func (e *AdmissionError) Error() string {
	if e.Serial != "" {
		return fmt.Sprintf("línea %d (serial %s): %v", e.Line, e.Serial, e.Err)
	}
	return fmt.Sprintf("línea %d (código %s): %v", e.Line, e.Barcode, e.Err)
}

func (e *AdmissionError) Unwrap() error {
	return e.Err
}
