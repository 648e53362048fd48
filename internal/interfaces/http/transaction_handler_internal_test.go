package http

import (
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
)

// respondWith monta una ruta que siempre responde con writeLedgerError(err).
func respondWith(err error) *fiber.App {
	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return writeLedgerError(c, err)
	})
	return app
}

func decodeError(t *testing.T, app *fiber.App) (int, dto.ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/t", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestWriteLedgerError_AdmisionAtribuyeLinea(t *testing.T) {
	admErr := &ledger.AdmissionError{
		Line:    2,
		Barcode: "750100",
		Err:     fmt.Errorf("%w: sin inventario", domain.ErrInsufficientStock),
	}
	status, body := decodeError(t, respondWith(admErr))

	assert.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.NotNil(t, body.Line, "el rechazo de admisión debe incluir la línea")
	assert.Equal(t, 2, *body.Line)
}

func TestWriteLedgerError_MapeoDeSentinelas(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"conflicto de serial", fmt.Errorf("%w: serial dentro", domain.ErrConflict), nethttp.StatusConflict, "CONFLICT"},
		{"folio duplicado", fmt.Errorf("%w: folio F-1", domain.ErrDuplicate), nethttp.StatusConflict, "DUPLICATE"},
		{"serial sin historial", fmt.Errorf("%w: serial SN-1", domain.ErrNotFound), nethttp.StatusNotFound, "NOT_FOUND"},
		{"request inválido", fmt.Errorf("%w: folio requerido", domain.ErrInvalidInput), nethttp.StatusBadRequest, "VALIDATION"},
		{"error no mapeado", fmt.Errorf("se cayó la base"), nethttp.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := decodeError(t, respondWith(tc.err))
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
			assert.Nil(t, body.Line, "sin AdmissionError no se atribuye línea")
		})
	}
}
