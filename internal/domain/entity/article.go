package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Article es una variante de empaque/unidad de un Product, identificada por un
// código de barras único. Factor convierte una unidad de Multiple a unidades
// base de inventario (ej. Multiple "CAJA", Factor 12 = 12 unidades por caja).
// Nunca se elimina físicamente, solo soft-delete.
type Article struct {
	ID          string
	ProductID   string
	Product     *Product
	WarehouseID string // opcional
	Barcode     string
	Multiple    string // etiqueta de unidad, siempre en mayúsculas
	Factor      decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Normalize aplica las reglas de formato del artículo antes de persistir.
func (a *Article) Normalize() {
	a.Multiple = strings.ToUpper(strings.TrimSpace(a.Multiple))
}
