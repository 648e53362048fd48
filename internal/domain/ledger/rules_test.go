package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Entrada serializada
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckSerialEntry_PrimerIngresoConAfectacion(t *testing.T) {
	require.NoError(t, ledger.CheckSerialEntry("SN-1", nil, true))
}

func TestCheckSerialEntry_SinHistorialSinAfectacion_NoEncontrado(t *testing.T) {
	err := ledger.CheckSerialEntry("SN-1", nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckSerialEntry_YaDentro_Conflicto(t *testing.T) {
	last := &ledger.LastMovement{Type: entity.TransactionTypeENTRY, Afectation: true}
	err := ledger.CheckSerialEntry("SN-1", last, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCheckSerialEntry_ReingresoMismoRegimen(t *testing.T) {
	// Salió con afectación, vuelve con afectación: legal.
	last := &ledger.LastMovement{Type: entity.TransactionTypeEXIT, Afectation: true, FolioNumber: "F-1"}
	require.NoError(t, ledger.CheckSerialEntry("SN-1", last, true))

	// Salió sin afectación, vuelve sin afectación: legal.
	last = &ledger.LastMovement{Type: entity.TransactionTypeEXIT, Afectation: false, FolioNumber: "F-2"}
	require.NoError(t, ledger.CheckSerialEntry("SN-1", last, false))
}

func TestCheckSerialEntry_RegimenDistinto_Conflicto(t *testing.T) {
	last := &ledger.LastMovement{Type: entity.TransactionTypeEXIT, Afectation: false, FolioNumber: "F-9"}
	err := ledger.CheckSerialEntry("SN-1", last, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "F-9", "el mensaje debe citar el folio del último movimiento")
}

// ──────────────────────────────────────────────────────────────────────────────
// Salida serializada
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckSerialExit_SinHistorial_NoEncontrado(t *testing.T) {
	err := ledger.CheckSerialExit("SN-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckSerialExit_YaFuera_Conflicto(t *testing.T) {
	last := &ledger.LastMovement{Type: entity.TransactionTypeEXIT, Afectation: true, FolioNumber: "F-3"}
	err := ledger.CheckSerialExit("SN-1", last)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCheckSerialExit_DentroDelInventario(t *testing.T) {
	last := &ledger.LastMovement{Type: entity.TransactionTypeENTRY, Afectation: true}
	require.NoError(t, ledger.CheckSerialExit("SN-1", last))
}

func TestSerial_AlternanciaEntradaSalida(t *testing.T) {
	// Ciclo completo: ingreso, salida, reingreso, nueva salida.
	require.NoError(t, ledger.CheckSerialEntry("SN-1", nil, true))

	afterEntry := &ledger.LastMovement{Type: entity.TransactionTypeENTRY, Afectation: true}
	require.NoError(t, ledger.CheckSerialExit("SN-1", afterEntry))

	afterExit := &ledger.LastMovement{Type: entity.TransactionTypeEXIT, Afectation: true}
	require.NoError(t, ledger.CheckSerialEntry("SN-1", afterExit, true))
	require.Error(t, ledger.CheckSerialExit("SN-1", afterExit))
}

// ──────────────────────────────────────────────────────────────────────────────
// Salida a granel
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckBulkExit_DisponibleSuficiente(t *testing.T) {
	require.NoError(t, ledger.CheckBulkExit("750100", dec(10), dec(5)))
}

func TestCheckBulkExit_IgualdadExactaEsAdmisible(t *testing.T) {
	// Vaciar el inventario hasta cero exacto es legal.
	require.NoError(t, ledger.CheckBulkExit("750100", dec(10), dec(10)))
}

func TestCheckBulkExit_Insuficiente(t *testing.T) {
	err := ledger.CheckBulkExit("750100", dec(4), dec(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCheckBulkExit_SinHistorialDisponibleCero(t *testing.T) {
	err := ledger.CheckBulkExit("750100", dec(0), dec(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Devolución a granel (entrada sin afectación)
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckBulkReturn_Valida(t *testing.T) {
	require.NoError(t, ledger.CheckBulkReturn("750100", true, dec(5), dec(3)))
}

func TestCheckBulkReturn_IgualdadExacta(t *testing.T) {
	require.NoError(t, ledger.CheckBulkReturn("750100", true, dec(3), dec(3)))
}

func TestCheckBulkReturn_SinSalidaExcluidaPrevia_Conflicto(t *testing.T) {
	// Primera compuerta: sin salida previa excluida no hay nada que devolver,
	// aunque el acumulado fuera de conteo alcanzara.
	err := ledger.CheckBulkReturn("750100", false, dec(10), dec(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCheckBulkReturn_AcumuladoInsuficiente_Conflicto(t *testing.T) {
	// Segunda compuerta: existe salida excluida pero el acumulado no cubre.
	err := ledger.CheckBulkReturn("750100", true, dec(2), dec(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// AdmissionError
// ──────────────────────────────────────────────────────────────────────────────

func TestAdmissionError_PreservaElErrorDeDominio(t *testing.T) {
	inner := ledger.CheckBulkExit("750100", dec(0), dec(1))
	admErr := &ledger.AdmissionError{Line: 2, Barcode: "750100", Err: inner}

	assert.ErrorIs(t, admErr, domain.ErrInsufficientStock)
	assert.Contains(t, admErr.Error(), "línea 2")
}

func TestAdmissionError_MensajeConSerial(t *testing.T) {
	admErr := &ledger.AdmissionError{Line: 0, Serial: "SN-7", Err: domain.ErrConflict}
	assert.Contains(t, admErr.Error(), "SN-7")
}
