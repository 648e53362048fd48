package entity

import "time"

// User es el usuario del sistema que registra transacciones. Solo se estampa en
// la cabecera como referencia; ningún cálculo del ledger depende de él.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
