package entity

import "time"

// Warehouse representa un almacén físico al que pueden asociarse artículos.
type Warehouse struct {
	ID        string
	Name      string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
