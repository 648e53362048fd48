package transactions_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/transactions"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
)

const testUserID = "00000000-0000-0000-0000-000000000001"

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store *memStore
	uc    *transactions.UseCase
	cache *recordingInvalidator
}

func newFixture() *fixture {
	store := newMemStore()
	cache := &recordingInvalidator{}
	uc := transactions.NewUseCase(memTxRunner{store}, store, cache)
	return &fixture{store: store, uc: uc, cache: cache}
}

// seedArticle registra un producto con un artículo en el catálogo.
func (f *fixture) seedArticle(barcode, multiple string, factor int64) *entity.Article {
	now := time.Now()
	product := &entity.Product{ID: uuid.New().String(), Name: "Producto " + barcode, CreatedAt: now, UpdatedAt: now}
	f.store.products[product.ID] = product
	article := &entity.Article{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Product:   product,
		Barcode:   barcode,
		Multiple:  multiple,
		Factor:    decimal.NewFromInt(factor),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.store.articles[article.ID] = article
	return article
}

// seedMovement inserta directamente una transacción confirmada de una línea,
// para armar historial sin pasar por el orquestador.
func (f *fixture) seedMovement(trxType string, article *entity.Article, serial string, qty int64, afectation bool) {
	now := time.Now()
	trx := &entity.Transaction{
		ID:              uuid.New().String(),
		Type:            trxType,
		FolioNumber:     "SEED-" + uuid.New().String()[:8],
		PersonName:      "PROVEEDOR SEED",
		TransactionDate: now,
		CreatedAt:       now,
	}
	f.store.headers[trx.ID] = trx
	detail := &entity.TransactionDetail{
		ID:            uuid.New().String(),
		TransactionID: trx.ID,
		ArticleID:     article.ID,
		Article:       article,
		SerialNumber:  serial,
		Quantity:      qty,
		Afectation:    afectation,
		CreatedAt:     now,
	}
	f.store.details[detail.ID] = detail
	f.store.order = append(f.store.order, detail.ID)
}

func request(trxType, folio string, units ...dto.UnitRequest) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Type:            trxType,
		Folio:           folio,
		Emitter:         "Proveedor Núñez",
		TransactionDate: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Units:           units,
	}
}

func bulkUnit(barcode string, qty int64, afectation bool) dto.UnitRequest {
	return dto.UnitRequest{Barcode: barcode, Quantity: qty, Afectation: afectation}
}

func serialUnit(barcode, serial string, afectation bool) dto.UnitRequest {
	return dto.UnitRequest{Barcode: barcode, Serial: serial, Quantity: 1, Afectation: afectation}
}

// ──────────────────────────────────────────────────────────────────────────────
// Camino feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_EntradaSencilla(t *testing.T) {
	f := newFixture()
	article := f.seedArticle("750100", "PIEZA", 1)

	trx, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-001", bulkUnit("750100", 5, true),
	))
	require.NoError(t, err)
	require.Len(t, trx.Details, 1)
	assert.Equal(t, article.ID, trx.Details[0].ArticleID)
	assert.Equal(t, testUserID, trx.UserID)

	// Proyección materializada actualizada en la misma transacción.
	row := f.store.balances[article.ID]
	require.NotNil(t, row)
	assert.True(t, row.Total.Equal(decimal.NewFromInt(5)))
	assert.True(t, row.TotalAvailable.Equal(decimal.NewFromInt(5)))

	// El cache del producto tocado se invalida tras el commit.
	assert.Equal(t, []string{article.ProductID}, f.cache.productIDs)
}

func TestCreate_NormalizaContraparteAMayusculas(t *testing.T) {
	f := newFixture()
	f.seedArticle("750100", "PIEZA", 1)

	trx, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-001", bulkUnit("750100", 1, true),
	))
	require.NoError(t, err)
	assert.Equal(t, "PROVEEDOR NÚÑEZ", trx.PersonName)
}

func TestCreate_CodigoNuevoCreaShellDeProductoYArticulo(t *testing.T) {
	f := newFixture()

	trx, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-001",
		dto.UnitRequest{
			Barcode:     "750999",
			Multiple:    "caja",
			Factor:      decimal.NewFromInt(12),
			Quantity:    2,
			Afectation:  true,
			Name:        "Tornillo 1/4",
			Description: "Caja de 12",
		},
	))
	require.NoError(t, err)

	article := trx.Details[0].Article
	require.NotNil(t, article)
	assert.Equal(t, "CAJA", article.Multiple, "multiple se normaliza a mayúsculas")
	assert.Contains(t, f.store.articles, article.ID)
	assert.Contains(t, f.store.products, article.ProductID)

	// 2 cajas de 12 = 24 unidades base en la proyección.
	row := f.store.balances[article.ID]
	require.NotNil(t, row)
	assert.True(t, row.Total.Equal(decimal.NewFromInt(24)))
}

func TestCreate_SalidaConDisponibleExacto(t *testing.T) {
	f := newFixture()
	article := f.seedArticle("750100", "PIEZA", 1)
	f.seedMovement(entity.TransactionTypeENTRY, article, "", 10, true)

	// Vaciar el inventario hasta cero exacto es admisible.
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeEXIT, "F-002", bulkUnit("750100", 10, true),
	))
	require.NoError(t, err)

	available, err := f.store.ProductAvailable(context.Background(), article.ProductID)
	require.NoError(t, err)
	assert.True(t, available.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Sub-ledger secuencial: las líneas ven a sus hermanas anteriores
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_LineasPosterioresVenElConsumoDeLasAnteriores(t *testing.T) {
	f := newFixture()
	article := f.seedArticle("750100", "PIEZA", 1)
	f.seedMovement(entity.TransactionTypeENTRY, article, "", 5, true)

	// 2 + 3 = 5: la línea 1 ve que la línea 0 ya consumió 2.
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeEXIT, "F-010",
		bulkUnit("750100", 2, true),
		bulkUnit("750100", 3, true),
	))
	require.NoError(t, err)
}

func TestCreate_LineaPosteriorRechazadaPorConsumoDeHermana(t *testing.T) {
	f := newFixture()
	article := f.seedArticle("750100", "PIEZA", 1)
	f.seedMovement(entity.TransactionTypeENTRY, article, "", 5, true)

	// La línea 0 consume 3: a la línea 1 solo le quedan 2 de los 5.
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeEXIT, "F-011",
		bulkUnit("750100", 3, true),
		bulkUnit("750100", 3, true),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var admErr *ledger.AdmissionError
	require.ErrorAs(t, err, &admErr)
	assert.Equal(t, 1, admErr.Line, "el rechazo se atribuye a la línea que lo provocó")
}

func TestCreate_SerialDuplicadoEnElMismoRequest(t *testing.T) {
	f := newFixture()
	f.seedArticle("750200", "PIEZA", 1)

	// La línea 1 ve la ENTRY del mismo serial insertada por la línea 0.
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-012",
		serialUnit("750200", "SN-1", true),
		serialUnit("750200", "SN-1", true),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	var admErr *ledger.AdmissionError
	require.ErrorAs(t, err, &admErr)
	assert.Equal(t, 1, admErr.Line)
	assert.Equal(t, "SN-1", admErr.Serial)
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad: el primer rechazo revierte todo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_RechazoRevierteCabeceraLineasYShells(t *testing.T) {
	f := newFixture()
	article := f.seedArticle("750100", "PIEZA", 1)
	f.seedMovement(entity.TransactionTypeENTRY, article, "", 5, true)

	headersBefore := len(f.store.headers)
	detailsBefore := len(f.store.details)
	articlesBefore := len(f.store.articles)
	productsBefore := len(f.store.products)

	// La línea 0 introduce un shell nuevo y la línea 1 es rechazada:
	// nada debe sobrevivir, ni la cabecera ni el shell.
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-020",
		dto.UnitRequest{
			Barcode: "750888", Multiple: "PIEZA", Factor: decimal.NewFromInt(1),
			Quantity: 1, Afectation: true, Name: "Nuevo",
		},
		bulkUnit("750100", 99, false), // devolución sin salida previa excluida
	))
	require.Error(t, err)

	assert.Len(t, f.store.headers, headersBefore, "la cabecera no debe persistir")
	assert.Len(t, f.store.details, detailsBefore, "ninguna línea debe persistir")
	assert.Len(t, f.store.articles, articlesBefore, "el shell de artículo debe revertirse")
	assert.Len(t, f.store.products, productsBefore, "el shell de producto debe revertirse")
	assert.Empty(t, f.cache.productIDs, "sin commit no hay invalidación de cache")
}

func TestCreate_FolioDuplicadoEsConflicto(t *testing.T) {
	f := newFixture()
	f.seedArticle("750100", "PIEZA", 1)

	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-030", bulkUnit("750100", 1, true),
	))
	require.NoError(t, err)

	_, err = f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-030", bulkUnit("750100", 1, true),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ramas de admisión a través del orquestador
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_SalidaSerialSinHistorial_NoEncontrado(t *testing.T) {
	f := newFixture()
	f.seedArticle("750200", "PIEZA", 1)

	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeEXIT, "F-040", serialUnit("750200", "SN-X", true),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_CicloCompletoDeSerial(t *testing.T) {
	f := newFixture()
	article := f.seedArticle("750200", "PIEZA", 1)
	f.seedMovement(entity.TransactionTypeENTRY, article, "SN-1", 1, true)

	// Salida legal.
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeEXIT, "F-041", serialUnit("750200", "SN-1", true),
	))
	require.NoError(t, err)

	// Reingreso con el mismo régimen.
	_, err = f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-042", serialUnit("750200", "SN-1", true),
	))
	require.NoError(t, err)

	// Segunda entrada consecutiva: conflicto.
	_, err = f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-043", serialUnit("750200", "SN-1", true),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_DevolucionAGranel(t *testing.T) {
	f := newFixture()
	article := f.seedArticle("750100", "PIEZA", 1)
	f.seedMovement(entity.TransactionTypeENTRY, article, "", 10, true)
	f.seedMovement(entity.TransactionTypeEXIT, article, "", 4, false)

	// Devolver 3 de las 4 que salieron sin afectación: legal.
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-050", bulkUnit("750100", 3, false),
	))
	require.NoError(t, err)

	// El acumulado fuera de conteo quedó en 1: devolver 2 más es conflicto.
	_, err = f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-051", bulkUnit("750100", 2, false),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_DevolucionSobreShellNuevo_NoEncontrado(t *testing.T) {
	f := newFixture()

	// ENTRY sin afectación con código jamás visto: no hay nada que devolver.
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-052",
		dto.UnitRequest{
			Barcode: "750777", Multiple: "PIEZA", Factor: decimal.NewFromInt(1),
			Quantity: 1, Afectation: false, Name: "Fantasma",
		},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_SalidaPonderadaPorFactorEntreArticulosDelProducto(t *testing.T) {
	f := newFixture()
	caja := f.seedArticle("750300", "CAJA", 12)
	// El mismo producto con otra presentación.
	pieza := &entity.Article{
		ID:        uuid.New().String(),
		ProductID: caja.ProductID,
		Product:   caja.Product,
		Barcode:   "750301",
		Multiple:  "PIEZA",
		Factor:    decimal.NewFromInt(1),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.store.articles[pieza.ID] = pieza

	// Entran 2 cajas (24 unidades base); salen 20 piezas: legal porque el
	// disponible se calcula a nivel de producto ponderando por factor.
	f.seedMovement(entity.TransactionTypeENTRY, caja, "", 2, true)
	_, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeEXIT, "F-060", bulkUnit("750301", 20, true),
	))
	require.NoError(t, err)

	// Quedan 4 unidades base: una caja más (12) ya no cabe.
	_, err = f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeEXIT, "F-061", bulkUnit("750300", 1, true),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación de entrada
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ValidacionDeEntrada(t *testing.T) {
	f := newFixture()
	f.seedArticle("750100", "PIEZA", 1)
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.CreateTransactionRequest
	}{
		{"tipo inválido", request("TRANSFER", "F-1", bulkUnit("750100", 1, true))},
		{"sin folio", request(entity.TransactionTypeENTRY, "", bulkUnit("750100", 1, true))},
		{"sin líneas", request(entity.TransactionTypeENTRY, "F-1")},
		{"cantidad cero", request(entity.TransactionTypeENTRY, "F-1", bulkUnit("750100", 0, true))},
		{"línea sin código ni artículo", request(entity.TransactionTypeENTRY, "F-1",
			dto.UnitRequest{Quantity: 1, Afectation: true})},
		{"serial con cantidad mayor a 1", request(entity.TransactionTypeENTRY, "F-1",
			dto.UnitRequest{Barcode: "750100", Serial: "SN-1", Quantity: 2, Afectation: true})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, testUserID, tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	// Nada se persistió en ningún caso.
	assert.Empty(t, f.store.headers)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_RecalculaLaProyeccionMaterializada(t *testing.T) {
	f := newFixture()
	article := f.seedArticle("750100", "PIEZA", 1)

	trx, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-001", bulkUnit("750100", 5, true),
	))
	require.NoError(t, err)

	f.cache.productIDs = nil
	require.NoError(t, f.uc.Delete(context.Background(), trx.ID))

	// El fold deja de ver las líneas anuladas...
	fold, err := f.store.ProductBalance(context.Background(), article.ProductID, nil)
	require.NoError(t, err)
	assert.True(t, fold.Total.IsZero())

	// ...y la proyección materializada queda en sincronía con él: la
	// conciliación no debe registrar deriva tras una anulación.
	sum, err := f.store.SumByProduct(context.Background(), article.ProductID)
	require.NoError(t, err)
	assert.True(t, sum.Total.IsZero(), "la proyección materializada debe reflejar la anulación")
	assert.True(t, sum.TotalAvailable.IsZero())

	assert.Equal(t, []string{article.ProductID}, f.cache.productIDs,
		"el snapshot del producto se invalida tras el commit de la anulación")
}

func TestDelete_ReproyectaCadaArticuloDesdeElHistorialVigente(t *testing.T) {
	f := newFixture()
	caja := f.seedArticle("750100", "CAJA", 12)
	pieza := f.seedArticle("750200", "PIEZA", 1)

	// Historial previo de caja que sobrevive a la anulación.
	f.seedMovement(entity.TransactionTypeENTRY, caja, "", 1, true)

	trx, err := f.uc.Create(context.Background(), testUserID, request(
		entity.TransactionTypeENTRY, "F-002",
		bulkUnit("750100", 2, true),
		bulkUnit("750200", 3, true),
	))
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(context.Background(), trx.ID))

	// La reproyección recalcula desde el fold vigente, no resta deltas: la
	// fila de caja queda con el asiento sembrado (1 caja de 12) y la de
	// pieza en ceros.
	require.NotNil(t, f.store.balances[caja.ID])
	assert.True(t, f.store.balances[caja.ID].Total.Equal(decimal.NewFromInt(12)))
	require.NotNil(t, f.store.balances[pieza.ID])
	assert.True(t, f.store.balances[pieza.ID].Total.IsZero())
}

func TestDelete_TransaccionInexistente(t *testing.T) {
	f := newFixture()

	err := f.uc.Delete(context.Background(), "no-existe")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
