package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/transactions"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
)

// TransactionHandler maneja el registro y consulta de transacciones del ledger.
type TransactionHandler struct {
	uc *transactions.UseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *transactions.UseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar transacción (ENTRY o EXIT) con sus líneas
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "Transacción con sus unidades"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	trx, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeLedgerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(trx))
}

// GetByID godoc
// @Summary      Obtener transacción por ID
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	trx, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toTransactionResponse(trx))
}

// List godoc
// @Summary      Listar transacciones con filtros
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        folio   query  string  false  "Folio exacto"
// @Param        type    query  string  false  "ENTRY | EXIT"
// @Param        person  query  string  false  "Contraparte (parcial)"
// @Param        from    query  string  false  "Fecha desde (RFC3339 o YYYY-MM-DD)"
// @Param        to      query  string  false  "Fecha hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PagedResponse[dto.TransactionResponse]
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	q := dto.TransactionListQuery{
		Folio:      c.Query("folio"),
		Type:       c.Query("type"),
		PersonName: c.Query("person"),
		Limit:      c.QueryInt("limit", 20),
		Offset:     c.QueryInt("offset", 0),
	}
	var err error
	if q.From, err = parseDateQuery(c.Query("from")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from: fecha inválida"})
	}
	if q.To, err = parseDateQuery(c.Query("to")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to: fecha inválida"})
	}

	list, total, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.PagedResponse[dto.TransactionResponse]{Total: total, Items: []dto.TransactionResponse{}}
	for _, trx := range list {
		out.Items = append(out.Items, toTransactionResponse(trx))
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Anular transacción (soft-delete)
// @Tags         transactions
// @Security     Bearer
// @Param        id  path  string  true  "ID de la transacción"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// writeLedgerError traduce errores de admisión y validación a HTTP. Si el
// error es un AdmissionError, la respuesta atribuye la línea exacta.
func writeLedgerError(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Message: err.Error()}
	var admErr *ledger.AdmissionError
	if errors.As(err, &admErr) {
		line := admErr.Line
		resp.Line = &line
	}
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		resp.Code = "INSUFFICIENT_STOCK"
		return c.Status(fiber.StatusConflict).JSON(resp)
	case errors.Is(err, domain.ErrConflict):
		resp.Code = "CONFLICT"
		return c.Status(fiber.StatusConflict).JSON(resp)
	case errors.Is(err, domain.ErrDuplicate):
		resp.Code = "DUPLICATE"
		return c.Status(fiber.StatusConflict).JSON(resp)
	case errors.Is(err, domain.ErrNotFound):
		resp.Code = "NOT_FOUND"
		return c.Status(fiber.StatusNotFound).JSON(resp)
	case errors.Is(err, domain.ErrInvalidInput):
		resp.Code = "VALIDATION"
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	default:
		resp.Code = "INTERNAL"
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}
}

func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toTransactionResponse(trx *entity.Transaction) dto.TransactionResponse {
	out := dto.TransactionResponse{
		ID:              trx.ID,
		Type:            trx.Type,
		Folio:           trx.FolioNumber,
		PersonName:      trx.PersonName,
		TransactionDate: trx.TransactionDate,
		UserID:          trx.UserID,
		CreatedAt:       trx.CreatedAt,
		Details:         []dto.TransactionDetailResponse{},
	}
	for _, d := range trx.Details {
		detail := dto.TransactionDetailResponse{
			ID:           d.ID,
			SerialNumber: d.SerialNumber,
			Quantity:     d.Quantity,
			Afectation:   d.Afectation,
			Price:        d.Price,
			CreatedAt:    d.CreatedAt,
		}
		if d.Article != nil {
			detail.Barcode = d.Article.Barcode
			detail.Multiple = d.Article.Multiple
			detail.Factor = d.Article.Factor
			if d.Article.Product != nil {
				detail.ProductName = d.Article.Product.Name
			}
		}
		out.Details = append(out.Details, detail)
	}
	return out
}
