package dto

// ErrorResponse cuerpo estándar de error de la API.
// Line se incluye solo en rechazos de admisión, atribuyendo la línea exacta
// (base 0) del request que provocó el rechazo.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    *int   `json:"line,omitempty"`
}

// PagedResponse envoltura genérica de listados paginados.
type PagedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
