package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// UseCase orquesta la creación de transacciones del ledger y expone las
// operaciones de consulta/baja sobre transacciones ya confirmadas.
type UseCase struct {
	txRunner TxRunner
	trxRepo  repository.TransactionRepository // atado al pool, para lecturas fuera de tx
	cache    SnapshotInvalidator              // opcional
}

// NewUseCase construye el caso de uso. cache puede ser nil.
func NewUseCase(txRunner TxRunner, trxRepo repository.TransactionRepository, cache SnapshotInvalidator) *UseCase {
	return &UseCase{txRunner: txRunner, trxRepo: trxRepo, cache: cache}
}

// Get devuelve una transacción con sus líneas y artículos anidados.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Transaction, error) {
	trx, err := uc.trxRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trx == nil {
		return nil, domain.ErrNotFound
	}
	return trx, nil
}

// List devuelve transacciones filtradas por folio, tipo, contraparte y rango
// de fechas de negocio, paginadas.
func (uc *UseCase) List(ctx context.Context, q dto.TransactionListQuery) ([]*entity.Transaction, int64, error) {
	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	filter := repository.TransactionFilter{
		Folio:      q.Folio,
		Type:       q.Type,
		PersonName: q.PersonName,
		From:       q.From,
		To:         q.To,
		Limit:      limit,
		Offset:     q.Offset,
	}
	return uc.trxRepo.List(ctx, filter)
}

// Delete anula la transacción (soft-delete) dentro de una tx atómica. Sus
// líneas dejan de contar en el fold, así que la proyección materializada de
// cada artículo tocado se recalcula desde el historial vigente en el mismo
// alcance; la conciliación no registra deriva tras una anulación.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	var touched []string
	err := uc.txRunner.Run(ctx, func(
		trxRepo repository.TransactionRepository,
		ledgerRepo repository.LedgerRepository,
		balanceRepo repository.BalanceRepository,
		_ repository.ArticleRepository,
		productRepo repository.ProductRepository,
	) error {
		trx, err := trxRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if trx == nil {
			return domain.ErrNotFound
		}
		if err := trxRepo.SoftDelete(ctx, id); err != nil {
			return err
		}
		now := time.Now()
		for _, article := range articlesOf(trx) {
			// Mismo punto de serialización que la admisión.
			if _, err := productRepo.GetForUpdate(ctx, article.ProductID); err != nil {
				return err
			}
			if err := reproject(ctx, ledgerRepo, balanceRepo, article, now); err != nil {
				return err
			}
			touched = appendUnique(touched, article.ProductID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, touched)
	return nil
}

// validateRequest valida la cabecera y los invariantes de entrada por línea.
// Las líneas serializadas se fuerzan a cantidad 1 y factor 1 aquí (capa de
// entrada); las reglas de admisión confían en esa precondición.
func validateRequest(in dto.CreateTransactionRequest) error {
	if in.Type != entity.TransactionTypeENTRY && in.Type != entity.TransactionTypeEXIT {
		return fmt.Errorf("%w: tipo de transacción %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Folio == "" {
		return fmt.Errorf("%w: folio requerido", domain.ErrInvalidInput)
	}
	if in.Emitter == "" {
		return fmt.Errorf("%w: contraparte requerida", domain.ErrInvalidInput)
	}
	if in.TransactionDate.IsZero() {
		return fmt.Errorf("%w: fecha de transacción requerida", domain.ErrInvalidInput)
	}
	if len(in.Units) == 0 {
		return fmt.Errorf("%w: la transacción requiere al menos una línea", domain.ErrInvalidInput)
	}
	for i, unit := range in.Units {
		if unit.Barcode == "" && unit.ArticleID == "" {
			return fmt.Errorf("%w: línea %d sin código de barras ni artículo", domain.ErrInvalidInput, i)
		}
		if unit.Quantity < 1 {
			return fmt.Errorf("%w: línea %d con cantidad menor a 1", domain.ErrInvalidInput, i)
		}
		if unit.Serial != "" {
			if unit.Quantity != 1 {
				return fmt.Errorf("%w: línea %d serializada debe tener cantidad 1", domain.ErrInvalidInput, i)
			}
			if !unit.Factor.IsZero() && !unit.Factor.Equal(decimal.NewFromInt(1)) {
				return fmt.Errorf("%w: línea %d serializada debe tener factor 1", domain.ErrInvalidInput, i)
			}
		}
	}
	return nil
}

func (uc *UseCase) invalidate(ctx context.Context, productIDs []string) {
	if uc.cache == nil {
		return
	}
	for _, id := range productIDs {
		uc.cache.InvalidateProduct(ctx, id)
	}
}

// articlesOf devuelve los artículos distintos referidos por las líneas de la
// transacción.
func articlesOf(trx *entity.Transaction) []*entity.Article {
	var out []*entity.Article
	for _, d := range trx.Details {
		if d.Article == nil {
			continue
		}
		dup := false
		for _, a := range out {
			if a.ID == d.Article.ID {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, d.Article)
		}
	}
	return out
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
