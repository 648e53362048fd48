package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// InventoryHandler expone las consultas de inventario derivadas del ledger.
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// GetProduct godoc
// @Summary      Inventario de un producto: tres totales, desglose por artículo y movimientos recientes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductInventorySnapshot
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id} [get]
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	out, err := h.uc.GetProductInventory(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetArticle godoc
// @Summary      Totales de un artículo por código de barras, opcionalmente a una fecha
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        barcode  path   string  true   "Código de barras"
// @Param        asOf     query  string  false  "Fecha de corte (RFC3339 o YYYY-MM-DD)"
// @Success      200  {object}  dto.ArticleInventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/articles/{barcode} [get]
func (h *InventoryHandler) GetArticle(c *fiber.Ctx) error {
	asOf, err := parseDateQuery(c.Query("asOf"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "asOf: fecha inválida"})
	}
	out, err := h.uc.GetArticleInventory(c.UserContext(), c.Params("barcode"), asOf)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ListProducts godoc
// @Summary      Listar/buscar productos (búsqueda insensible a acentos)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Término de búsqueda"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PagedResponse[dto.ProductListItem]
// @Router       /api/inventory/products [get]
func (h *InventoryHandler) ListProducts(c *fiber.Ctx) error {
	q := dto.ProductListQuery{
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	items, total, err := h.uc.ListProducts(c.UserContext(), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if items == nil {
		items = []dto.ProductListItem{}
	}
	return c.JSON(dto.PagedResponse[dto.ProductListItem]{Items: items, Total: total})
}

// Reconcile godoc
// @Summary      Comparar el fold del historial contra la proyección materializada
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.ReconcileProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
