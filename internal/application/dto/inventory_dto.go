package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceDTO los tres totales derivados del ledger, en unidades base.
type BalanceDTO struct {
	Total                decimal.Decimal `json:"total"`
	TotalAvailable       decimal.Decimal `json:"totalAvailable"`
	TotalOutsideCounting decimal.Decimal `json:"totalOutsideCountingInventory"`
}

// ArticleSnapshotDTO balance de un artículo dentro del desglose por SKU.
type ArticleSnapshotDTO struct {
	ArticleID string          `json:"articleId"`
	Barcode   string          `json:"barcode"`
	Multiple  string          `json:"multiple"`
	Factor    decimal.Decimal `json:"factor"`
	Balance   BalanceDTO      `json:"balance"`
}

// ProductInventorySnapshot respuesta de GET /api/inventory/products/:id —
// los tres totales del producto más su desglose y transacciones recientes.
type ProductInventorySnapshot struct {
	ProductID    string                `json:"productId"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Balance      BalanceDTO            `json:"balance"`
	Articles     []ArticleSnapshotDTO  `json:"articles"`
	Transactions []TransactionResponse `json:"transactions"`
	ComputedAt   time.Time             `json:"computedAt"`
}

// ArticleInventoryResponse respuesta de GET /api/inventory/articles/:barcode.
type ArticleInventoryResponse struct {
	Barcode    string          `json:"barcode"`
	Multiple   string          `json:"multiple"`
	Factor     decimal.Decimal `json:"factor"`
	ProductID  string          `json:"productId"`
	Balance    BalanceDTO      `json:"balance"`
	AsOf       *time.Time      `json:"asOf,omitempty"`
	ComputedAt time.Time       `json:"computedAt"`
}

// ReconciliationResponse compara el fold autoritativo del historial contra la
// proyección materializada por artículo.
type ReconciliationResponse struct {
	ProductID    string     `json:"productId"`
	Ledger       BalanceDTO `json:"ledger"`       // fold del historial completo
	Materialized BalanceDTO `json:"materialized"` // suma de article_balances
	InSync       bool       `json:"inSync"`
	Drift        BalanceDTO `json:"drift"` // ledger - materialized
}

// ProductListQuery filtros de GET /api/inventory/products.
type ProductListQuery struct {
	Search string `query:"search"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ProductListItem elemento del listado de productos.
type ProductListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
