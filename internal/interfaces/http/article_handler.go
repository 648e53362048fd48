package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ArticleHandler maneja el catálogo de artículos.
type ArticleHandler struct {
	uc *usecase.ArticleUseCase
}

// NewArticleHandler construye el handler.
func NewArticleHandler(uc *usecase.ArticleUseCase) *ArticleHandler {
	return &ArticleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar artículo (y producto si no existe)
// @Tags         articles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateArticleRequest  true  "Datos del artículo"
// @Success      201   {object}  dto.ArticleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/articles [post]
func (h *ArticleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateArticleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	article, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el código de barras ya existe"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toArticleResponse(article))
}

// GetByID godoc
// @Summary      Obtener artículo por ID
// @Tags         articles
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ArticleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{id} [get]
func (h *ArticleHandler) GetByID(c *fiber.Ctx) error {
	article, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toArticleResponse(article))
}

// List godoc
// @Summary      Listar/buscar artículos
// @Tags         articles
// @Security     Bearer
// @Produce      json
// @Param        search    query  string  false  "Búsqueda en barcode, multiple y producto"
// @Param        barcode   query  string  false  "Filtro por código de barras"
// @Param        multiple  query  string  false  "Filtro por unidad"
// @Param        limit     query  int     false  "Límite"  default(50)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PagedResponse[dto.ArticleResponse]
// @Router       /api/articles [get]
func (h *ArticleHandler) List(c *fiber.Ctx) error {
	q := dto.ArticleListQuery{
		Search:   c.Query("search"),
		Barcode:  c.Query("barcode"),
		Multiple: c.Query("multiple"),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	}
	list, total, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.PagedResponse[dto.ArticleResponse]{Total: total, Items: []dto.ArticleResponse{}}
	for _, a := range list {
		out.Items = append(out.Items, toArticleResponse(a))
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar artículo (el código de barras es inmutable)
// @Tags         articles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del artículo"
// @Param        body  body  dto.UpdateArticleRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ArticleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/articles/{id} [put]
func (h *ArticleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateArticleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	article, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toArticleResponse(article))
}

// Delete godoc
// @Summary      Dar de baja un artículo (soft-delete, su historial permanece)
// @Tags         articles
// @Security     Bearer
// @Param        id  path  string  true  "ID del artículo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{id} [delete]
func (h *ArticleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toArticleResponse(a *entity.Article) dto.ArticleResponse {
	out := dto.ArticleResponse{
		ID:          a.ID,
		Barcode:     a.Barcode,
		Multiple:    a.Multiple,
		Factor:      a.Factor,
		ProductID:   a.ProductID,
		WarehouseID: a.WarehouseID,
		CreatedAt:   a.CreatedAt,
	}
	if a.Product != nil {
		out.ProductName = a.Product.Name
	}
	return out
}
