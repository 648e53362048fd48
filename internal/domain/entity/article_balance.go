package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArticleBalance es la proyección materializada del balance de un artículo,
// mantenida transaccionalmente junto a cada asiento. El cálculo autoritativo
// sigue siendo el fold sobre el historial completo; esta tabla existe para
// snapshots rápidos y como contraparte de la reconciliación.
type ArticleBalance struct {
	ArticleID            string
	Total                decimal.Decimal // on-hand: solo líneas con afectación
	TotalAvailable       decimal.Decimal // suma bruta ignorando afectación
	TotalOutsideCounting decimal.Decimal // unidades fuera del conteo primario
	UpdatedAt            time.Time
}
