package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitRequest es una línea propuesta de la transacción. Puede referenciar un
// artículo existente (ArticleID o Barcode ya registrado) o introducir un SKU
// nuevo en el mismo request (Barcode + Multiple + Factor + Name/Description).
type UnitRequest struct {
	Barcode     string           `json:"barcode"`
	Multiple    string           `json:"multiple"`
	Factor      decimal.Decimal  `json:"factor"`
	ProductID   string           `json:"productId,omitempty"`
	ArticleID   string           `json:"articleId,omitempty"`
	Serial      string           `json:"serial,omitempty"`
	Quantity    int64            `json:"quantity"`
	Afectation  bool             `json:"afectation"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// CreateTransactionRequest body para POST /api/transactions.
type CreateTransactionRequest struct {
	Type            string        `json:"type"` // ENTRY | EXIT
	Folio           string        `json:"folio"`
	Emitter         string        `json:"emitter"` // contraparte (person_name)
	TransactionDate time.Time     `json:"transactionDate"`
	Units           []UnitRequest `json:"units"`
}

// TransactionDetailResponse una línea persistida del ledger.
type TransactionDetailResponse struct {
	ID           string           `json:"id"`
	Barcode      string           `json:"barcode"`
	Multiple     string           `json:"multiple"`
	Factor       decimal.Decimal  `json:"factor"`
	ProductName  string           `json:"productName,omitempty"`
	SerialNumber string           `json:"serialNumber,omitempty"`
	Quantity     int64            `json:"quantity"`
	Afectation   bool             `json:"afectation"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// TransactionResponse una transacción persistida con sus líneas.
type TransactionResponse struct {
	ID              string                      `json:"id"`
	Type            string                      `json:"type"`
	Folio           string                      `json:"folio"`
	PersonName      string                      `json:"personName"`
	TransactionDate time.Time                   `json:"transactionDate"`
	UserID          string                      `json:"userId,omitempty"`
	Details         []TransactionDetailResponse `json:"details"`
	CreatedAt       time.Time                   `json:"createdAt"`
}

// TransactionListQuery filtros de GET /api/transactions.
type TransactionListQuery struct {
	Folio      string     `query:"folio"`
	Type       string     `query:"type"`
	PersonName string     `query:"person"`
	From       *time.Time `query:"from"`
	To         *time.Time `query:"to"`
	Limit      int        `query:"limit"`
	Offset     int        `query:"offset"`
}
