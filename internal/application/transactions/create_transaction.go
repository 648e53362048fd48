package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// resolvedLine es la resolución de una línea propuesta: el artículo con su
// producto, y si ambos fueron introducidos como shells en este mismo request.
type resolvedLine struct {
	article *entity.Article
	created bool
}

// Create ejecuta el request completo dentro de una transacción atómica:
// inserta la cabecera y luego, línea por línea en el orden del caller,
// resuelve el artículo (reuso o shell), bloquea la fila del producto, corre la
// admisión contra el estado vivo de la tx (incluidas las líneas hermanas ya
// insertadas del mismo request), inserta el detalle y actualiza la proyección
// materializada. El primer rechazo aborta todo; no queda escritura parcial.
//
// userID es el usuario que registra la operación, estampado en la cabecera
// como atributo de paso (ningún cálculo depende de él).
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateTransactionRequest) (*entity.Transaction, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}

	now := time.Now()
	trx := &entity.Transaction{
		ID:              uuid.New().String(),
		Type:            in.Type,
		TransactionDate: in.TransactionDate,
		FolioNumber:     in.Folio,
		PersonName:      in.Emitter,
		UserID:          userID,
		CreatedAt:       now,
	}
	trx.Normalize()

	var touched []string
	err := uc.txRunner.Run(ctx, func(
		trxRepo repository.TransactionRepository,
		ledgerRepo repository.LedgerRepository,
		balanceRepo repository.BalanceRepository,
		articleRepo repository.ArticleRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := trxRepo.CreateHeader(ctx, trx); err != nil {
			return err
		}
		for i, unit := range in.Units {
			res, err := resolveLine(ctx, articleRepo, productRepo, unit, now)
			if err != nil {
				return &ledger.AdmissionError{Line: i, Barcode: unit.Barcode, Serial: unit.Serial, Err: err}
			}
			// Punto de serialización: requests concurrentes sobre el mismo
			// producto (o sus seriales) se ordenan en este lock de fila.
			if _, err := productRepo.GetForUpdate(ctx, res.article.ProductID); err != nil {
				return err
			}
			if err := uc.admit(ctx, ledgerRepo, trx.Type, res, unit); err != nil {
				return &ledger.AdmissionError{Line: i, Barcode: res.article.Barcode, Serial: unit.Serial, Err: err}
			}

			detail := &entity.TransactionDetail{
				ID:            uuid.New().String(),
				TransactionID: trx.ID,
				ArticleID:     res.article.ID,
				Article:       res.article,
				SerialNumber:  unit.Serial,
				Quantity:      unit.Quantity,
				Afectation:    unit.Afectation,
				Price:         roundedPrice(unit),
				CreatedAt:     now,
			}
			if err := trxRepo.CreateDetail(ctx, detail); err != nil {
				return err
			}
			if err := project(ctx, balanceRepo, trx.Type, res.article, unit, now); err != nil {
				return err
			}
			trx.Details = append(trx.Details, detail)
			touched = appendUnique(touched, res.article.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, touched)
	return trx, nil
}

// resolveLine materializa el artículo de la línea: por id explícito, por
// código de barras ya registrado, o creando shells de Product/Article con los
// campos de identidad del request. Los shells se insertan dentro de la tx y
// desaparecen con el rollback si cualquier línea es rechazada.
func resolveLine(
	ctx context.Context,
	articleRepo repository.ArticleRepository,
	productRepo repository.ProductRepository,
	unit dto.UnitRequest,
	now time.Time,
) (*resolvedLine, error) {
	if unit.ArticleID != "" {
		article, err := articleRepo.GetByID(ctx, unit.ArticleID)
		if err != nil {
			return nil, err
		}
		if article == nil {
			return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, unit.ArticleID)
		}
		return &resolvedLine{article: article}, nil
	}

	article, err := articleRepo.GetByBarcode(ctx, unit.Barcode)
	if err != nil {
		return nil, err
	}
	if article != nil {
		return &resolvedLine{article: article}, nil
	}

	product, err := resolveProduct(ctx, productRepo, unit, now)
	if err != nil {
		return nil, err
	}
	article = &entity.Article{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Product:   product,
		Barcode:   unit.Barcode,
		Multiple:  unit.Multiple,
		Factor:    unit.Factor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	article.Normalize()
	if err := articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	return &resolvedLine{article: article, created: true}, nil
}

func resolveProduct(
	ctx context.Context,
	productRepo repository.ProductRepository,
	unit dto.UnitRequest,
	now time.Time,
) (*entity.Product, error) {
	if unit.ProductID != "" {
		product, err := productRepo.GetByID(ctx, unit.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, unit.ProductID)
		}
		return product, nil
	}
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        unit.Name,
		Description: unit.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// admit aplica la rama de reglas que corresponde a la línea: máquina de
// estados para seriales, suficiencia de balances para granel. Las consultas
// corren sobre los repos atados a la tx y por tanto ven las líneas hermanas
// del mismo request ya insertadas (sub-ledger secuencial).
func (uc *UseCase) admit(
	ctx context.Context,
	ledgerRepo repository.LedgerRepository,
	trxType string,
	res *resolvedLine,
	unit dto.UnitRequest,
) error {
	article := res.article

	if unit.Serial != "" {
		last, err := ledgerRepo.LastMovementBySerial(ctx, unit.Serial)
		if err != nil {
			return err
		}
		if trxType == entity.TransactionTypeENTRY {
			return ledger.CheckSerialEntry(unit.Serial, last, unit.Afectation)
		}
		return ledger.CheckSerialExit(unit.Serial, last)
	}

	requested := ledger.Movement{Quantity: unit.Quantity, Factor: article.Factor}.BaseUnits()

	if trxType == entity.TransactionTypeEXIT {
		available, err := ledgerRepo.ProductAvailable(ctx, article.ProductID)
		if err != nil {
			return err
		}
		return ledger.CheckBulkExit(article.Barcode, available, requested)
	}

	// ENTRY con afectación: recibir mercancía siempre es legal.
	if unit.Afectation {
		return nil
	}

	// ENTRY sin afectación: devolución contra salidas previas excluidas del
	// conteo. Un shell recién creado no tiene producto con historial que
	// resolver: no encontrado.
	if res.created {
		return fmt.Errorf("%w: el código %s no corresponde a ningún producto con historial", domain.ErrNotFound, article.Barcode)
	}
	hasExcluded, err := ledgerRepo.HasExcludedExit(ctx, article.ProductID)
	if err != nil {
		return err
	}
	outside, err := ledgerRepo.ProductOutsideCounting(ctx, article.ProductID)
	if err != nil {
		return err
	}
	return ledger.CheckBulkReturn(article.Barcode, hasExcluded, outside, requested)
}

// project actualiza la proyección materializada del artículo con el delta de
// la línea recién insertada, bajo el lock de fila del balance.
func project(
	ctx context.Context,
	balanceRepo repository.BalanceRepository,
	trxType string,
	article *entity.Article,
	unit dto.UnitRequest,
	now time.Time,
) error {
	row, err := balanceRepo.GetForUpdate(ctx, article.ID)
	if err != nil {
		return err
	}
	current := ledger.Balance{
		Total:                row.Total,
		TotalAvailable:       row.TotalAvailable,
		TotalOutsideCounting: row.TotalOutsideCounting,
	}
	next := current.Apply(ledger.Movement{
		Type:       trxType,
		Afectation: unit.Afectation,
		Quantity:   unit.Quantity,
		Factor:     article.Factor,
	})
	row.Total = next.Total
	row.TotalAvailable = next.TotalAvailable
	row.TotalOutsideCounting = next.TotalOutsideCounting
	row.UpdatedAt = now
	return balanceRepo.Upsert(ctx, row)
}

// reproject recalcula la fila de proyección de un artículo desde el fold del
// historial vigente. Tras una anulación, dentro de la misma tx, el fold ya no
// ve las líneas de la transacción anulada.
func reproject(
	ctx context.Context,
	ledgerRepo repository.LedgerRepository,
	balanceRepo repository.BalanceRepository,
	article *entity.Article,
	now time.Time,
) error {
	row, err := balanceRepo.GetForUpdate(ctx, article.ID)
	if err != nil {
		return err
	}
	bal, err := ledgerRepo.ArticleBalance(ctx, article.Barcode, nil)
	if err != nil {
		return err
	}
	row.Total = bal.Total
	row.TotalAvailable = bal.TotalAvailable
	row.TotalOutsideCounting = bal.TotalOutsideCounting
	row.UpdatedAt = now
	return balanceRepo.Upsert(ctx, row)
}

// roundedPrice normaliza el precio opcional de la línea a dos decimales.
func roundedPrice(unit dto.UnitRequest) *decimal.Decimal {
	if unit.Price == nil {
		return nil
	}
	p := unit.Price.Round(2)
	return &p
}
