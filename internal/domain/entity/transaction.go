package entity

import (
	"strings"
	"time"
)

// Tipos de transacción del ledger.
const (
	TransactionTypeENTRY = "ENTRY" // entrada
	TransactionTypeEXIT  = "EXIT"  // salida
)

// Transaction es la cabecera de un asiento del ledger. Inmutable una vez
// persistida salvo soft-delete; es dueña de sus TransactionDetails.
type Transaction struct {
	ID              string
	Type            string    // ENTRY | EXIT
	TransactionDate time.Time // fecha de negocio, distinta de CreatedAt
	FolioNumber     string    // referencia externa única
	PersonName      string    // contraparte, siempre en mayúsculas
	UserID          string    // usuario que registró la transacción
	Details         []*TransactionDetail
	CreatedAt       time.Time
	DeletedAt       *time.Time
}

// Normalize aplica las reglas de formato de la cabecera antes de persistir.
func (t *Transaction) Normalize() {
	t.PersonName = strings.ToUpper(strings.TrimSpace(t.PersonName))
}

// IsEntry indica si la transacción es una entrada.
func (t *Transaction) IsEntry() bool {
	return t.Type == TransactionTypeENTRY
}
