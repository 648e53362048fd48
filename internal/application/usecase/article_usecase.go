package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/textnorm"
)

// ArticleUseCase administración explícita de artículos (la creación implícita
// vía transacciones vive en el orquestador).
type ArticleUseCase struct {
	articleRepo repository.ArticleRepository
	productRepo repository.ProductRepository
}

// NewArticleUseCase construye el caso de uso.
func NewArticleUseCase(articleRepo repository.ArticleRepository, productRepo repository.ProductRepository) *ArticleUseCase {
	return &ArticleUseCase{articleRepo: articleRepo, productRepo: productRepo}
}

// Create registra un artículo nuevo; crea el producto si no se referencia uno
// existente. El código de barras debe ser único.
func (uc *ArticleUseCase) Create(ctx context.Context, in dto.CreateArticleRequest) (*entity.Article, error) {
	if in.Barcode == "" || in.Multiple == "" {
		return nil, fmt.Errorf("%w: barcode y multiple son requeridos", domain.ErrInvalidInput)
	}
	if !in.Factor.IsPositive() {
		return nil, fmt.Errorf("%w: el factor debe ser positivo", domain.ErrInvalidInput)
	}
	existing, err := uc.articleRepo.GetByBarcode(ctx, in.Barcode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el código %s ya está registrado", domain.ErrDuplicate, in.Barcode)
	}

	now := time.Now()
	var product *entity.Product
	if in.ProductID != "" {
		product, err = uc.productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
	} else {
		if in.ProductName == "" {
			return nil, fmt.Errorf("%w: productName requerido al crear producto nuevo", domain.ErrInvalidInput)
		}
		product = &entity.Product{
			ID:          uuid.New().String(),
			Name:        in.ProductName,
			Description: in.ProductDescription,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.productRepo.Create(ctx, product); err != nil {
			return nil, err
		}
	}

	article := &entity.Article{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		Product:     product,
		WarehouseID: in.WarehouseID,
		Barcode:     in.Barcode,
		Multiple:    in.Multiple,
		Factor:      in.Factor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	article.Normalize()
	if err := uc.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// GetByID devuelve un artículo con su producto.
func (uc *ArticleUseCase) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	return article, nil
}

// List busca artículos; el término de búsqueda se normaliza (sin acentos).
func (uc *ArticleUseCase) List(ctx context.Context, q dto.ArticleListQuery) ([]*entity.Article, int64, error) {
	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.articleRepo.List(ctx, repository.ArticleFilter{
		Search:   textnorm.Fold(q.Search),
		Barcode:  q.Barcode,
		Multiple: q.Multiple,
		Limit:    limit,
		Offset:   q.Offset,
	})
}

// Update modifica multiple/factor/almacén. El barcode es inmutable: identifica
// al artículo en el ledger.
func (uc *ArticleUseCase) Update(ctx context.Context, id string, in dto.UpdateArticleRequest) (*entity.Article, error) {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	if in.Multiple != "" {
		article.Multiple = in.Multiple
	}
	if in.Factor != nil {
		if !in.Factor.IsPositive() {
			return nil, fmt.Errorf("%w: el factor debe ser positivo", domain.ErrInvalidInput)
		}
		article.Factor = *in.Factor
	}
	if in.WarehouseID != "" {
		article.WarehouseID = in.WarehouseID
	}
	article.UpdatedAt = time.Now()
	article.Normalize()
	if err := uc.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete hace soft-delete; el historial del artículo permanece en el ledger.
func (uc *ArticleUseCase) Delete(ctx context.Context, id string) error {
	article, err := uc.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if article == nil {
		return domain.ErrNotFound
	}
	return uc.articleRepo.SoftDelete(ctx, id)
}
