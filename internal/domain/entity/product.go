package entity

import "time"

// Product es el bien conceptual del inventario. Sus variantes de empaque/unidad
// se modelan como Articles; el producto mismo no referencia a nadie.
type Product struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
