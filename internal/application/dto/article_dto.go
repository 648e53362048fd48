package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateArticleRequest body para POST /api/articles.
type CreateArticleRequest struct {
	Barcode     string          `json:"barcode"`
	Multiple    string          `json:"multiple"`
	Factor      decimal.Decimal `json:"factor"`
	ProductID   string          `json:"productId,omitempty"`
	WarehouseID string          `json:"warehouseId,omitempty"`
	// Cuando no hay ProductID se crea el producto junto al artículo.
	ProductName        string `json:"productName,omitempty"`
	ProductDescription string `json:"productDescription,omitempty"`
}

// UpdateArticleRequest body para PUT /api/articles/:id.
type UpdateArticleRequest struct {
	Multiple    string           `json:"multiple,omitempty"`
	Factor      *decimal.Decimal `json:"factor,omitempty"`
	WarehouseID string           `json:"warehouseId,omitempty"`
}

// ArticleResponse representación de un artículo.
type ArticleResponse struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode"`
	Multiple    string          `json:"multiple"`
	Factor      decimal.Decimal `json:"factor"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	WarehouseID string          `json:"warehouseId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ArticleListQuery filtros de GET /api/articles.
type ArticleListQuery struct {
	Search   string `query:"search"`
	Barcode  string `query:"barcode"`
	Multiple string `query:"multiple"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}
