package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/textnorm"
)

// UseCase es el calculador de balances: totales punto-en-el-tiempo derivados
// del historial completo de movimientos. Solo lectura contra el ledger.
type UseCase struct {
	productRepo repository.ProductRepository
	articleRepo repository.ArticleRepository
	ledgerRepo  repository.LedgerRepository
	balanceRepo repository.BalanceRepository
	trxRepo     repository.TransactionRepository
	cache       SnapshotCache // opcional
}

// NewUseCase construye el caso de uso. cache puede ser nil.
func NewUseCase(
	productRepo repository.ProductRepository,
	articleRepo repository.ArticleRepository,
	ledgerRepo repository.LedgerRepository,
	balanceRepo repository.BalanceRepository,
	trxRepo repository.TransactionRepository,
	cache SnapshotCache,
) *UseCase {
	return &UseCase{
		productRepo: productRepo,
		articleRepo: articleRepo,
		ledgerRepo:  ledgerRepo,
		balanceRepo: balanceRepo,
		trxRepo:     trxRepo,
		cache:       cache,
	}
}

const recentTransactionsLimit = 20

// GetProductInventory devuelve los tres totales del producto, su desglose por
// artículo y las transacciones recientes. Un producto sin movimientos devuelve
// balances en cero, nunca nulos.
func (uc *UseCase) GetProductInventory(ctx context.Context, productID string) (*dto.ProductInventorySnapshot, error) {
	if uc.cache != nil {
		if snap, ok := uc.cache.GetProduct(ctx, productID); ok {
			return snap, nil
		}
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	balance, err := uc.ledgerRepo.ProductBalance(ctx, productID, nil)
	if err != nil {
		return nil, err
	}
	breakdown, err := uc.ledgerRepo.ArticleBreakdown(ctx, productID)
	if err != nil {
		return nil, err
	}
	recent, err := uc.trxRepo.ListByProduct(ctx, productID, recentTransactionsLimit)
	if err != nil {
		return nil, err
	}

	snap := &dto.ProductInventorySnapshot{
		ProductID:   product.ID,
		Name:        product.Name,
		Description: product.Description,
		Balance:     toBalanceDTO(balance),
		Articles:    toArticleSnapshots(breakdown),
		ComputedAt:  time.Now(),
	}
	for _, trx := range recent {
		snap.Transactions = append(snap.Transactions, toTransactionDTO(trx))
	}

	if uc.cache != nil {
		uc.cache.SetProduct(ctx, productID, snap)
	}
	return snap, nil
}

// GetArticleInventory devuelve los tres totales de un artículo por código de
// barras, opcionalmente a una fecha de negocio dada.
func (uc *UseCase) GetArticleInventory(ctx context.Context, barcode string, asOf *time.Time) (*dto.ArticleInventoryResponse, error) {
	article, err := uc.articleRepo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	balance, err := uc.ledgerRepo.ArticleBalance(ctx, barcode, asOf)
	if err != nil {
		return nil, err
	}
	return &dto.ArticleInventoryResponse{
		Barcode:    article.Barcode,
		Multiple:   article.Multiple,
		Factor:     article.Factor,
		ProductID:  article.ProductID,
		Balance:    toBalanceDTO(balance),
		AsOf:       asOf,
		ComputedAt: time.Now(),
	}, nil
}

// ListProducts lista productos con búsqueda insensible a acentos y paginación.
func (uc *UseCase) ListProducts(ctx context.Context, q dto.ProductListQuery) ([]dto.ProductListItem, int64, error) {
	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	products, total, err := uc.productRepo.List(ctx, repository.ProductFilter{
		Search: textnorm.Fold(q.Search),
		Limit:  limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.ProductListItem, 0, len(products))
	for _, p := range products {
		items = append(items, dto.ProductListItem{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return items, total, nil
}

// ReconcileProduct compara el fold autoritativo del historial contra la
// proyección materializada por artículo y reporta la deriva.
func (uc *UseCase) ReconcileProduct(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	folded, err := uc.ledgerRepo.ProductBalance(ctx, productID, nil)
	if err != nil {
		return nil, err
	}
	materialized, err := uc.balanceRepo.SumByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	drift := ledger.Balance{
		Total:                folded.Total.Sub(materialized.Total),
		TotalAvailable:       folded.TotalAvailable.Sub(materialized.TotalAvailable),
		TotalOutsideCounting: folded.TotalOutsideCounting.Sub(materialized.TotalOutsideCounting),
	}
	inSync := drift.Total.IsZero() && drift.TotalAvailable.IsZero() && drift.TotalOutsideCounting.IsZero()
	return &dto.ReconciliationResponse{
		ProductID:    productID,
		Ledger:       toBalanceDTO(folded),
		Materialized: toBalanceDTO(materialized),
		InSync:       inSync,
		Drift:        toBalanceDTO(drift),
	}, nil
}

func toBalanceDTO(b ledger.Balance) dto.BalanceDTO {
	return dto.BalanceDTO{
		Total:                b.Total,
		TotalAvailable:       b.TotalAvailable,
		TotalOutsideCounting: b.TotalOutsideCounting,
	}
}

func toArticleSnapshots(rows []repository.ArticleSnapshot) []dto.ArticleSnapshotDTO {
	out := make([]dto.ArticleSnapshotDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.ArticleSnapshotDTO{
			ArticleID: row.ArticleID,
			Barcode:   row.Barcode,
			Multiple:  row.Multiple,
			Factor:    row.Factor,
			Balance:   toBalanceDTO(row.Balance),
		})
	}
	return out
}

func toTransactionDTO(trx *entity.Transaction) dto.TransactionResponse {
	out := dto.TransactionResponse{
		ID:              trx.ID,
		Type:            trx.Type,
		Folio:           trx.FolioNumber,
		PersonName:      trx.PersonName,
		TransactionDate: trx.TransactionDate,
		UserID:          trx.UserID,
		CreatedAt:       trx.CreatedAt,
	}
	for _, d := range trx.Details {
		detail := dto.TransactionDetailResponse{
			ID:           d.ID,
			SerialNumber: d.SerialNumber,
			Quantity:     d.Quantity,
			Afectation:   d.Afectation,
			Price:        d.Price,
			CreatedAt:    d.CreatedAt,
		}
		if d.Article != nil {
			detail.Barcode = d.Article.Barcode
			detail.Multiple = d.Article.Multiple
			detail.Factor = d.Article.Factor
			if d.Article.Product != nil {
				detail.ProductName = d.Article.Product.Name
			}
		}
		out.Details = append(out.Details, detail)
	}
	return out
}
