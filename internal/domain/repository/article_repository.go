package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ArticleFilter filtros de listado/búsqueda de artículos.
type ArticleFilter struct {
	Search   string // término ya normalizado (sin acentos, minúsculas)
	Barcode  string
	Multiple string
	Limit    int
	Offset   int
}

// ArticleRepository define el puerto de persistencia para artículos.
// Las lecturas pueblan el Product asociado.
type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	GetByID(ctx context.Context, id string) (*entity.Article, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Article, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]*entity.Article, int64, error)
	Update(ctx context.Context, article *entity.Article) error
	SoftDelete(ctx context.Context, id string) error
}
