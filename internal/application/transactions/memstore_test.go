package transactions_test

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria: implementa los cinco puertos de persistencia con la misma
// semántica observable que los adaptadores de PostgreSQL (visibilidad de
// líneas hermanas incluida), para ejercitar el orquestador sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	headers  map[string]*entity.Transaction
	order    []string // IDs de detalle en orden de inserción
	details  map[string]*entity.TransactionDetail
	articles map[string]*entity.Article
	products map[string]*entity.Product
	balances map[string]*entity.ArticleBalance
}

func newMemStore() *memStore {
	return &memStore{
		headers:  map[string]*entity.Transaction{},
		details:  map[string]*entity.TransactionDetail{},
		articles: map[string]*entity.Article{},
		products: map[string]*entity.Product{},
		balances: map[string]*entity.ArticleBalance{},
	}
}

// snapshot clona la forma del store (no las entidades: las escrituras del
// orquestador insertan o reemplazan punteros, nunca mutan lo ya persistido).
func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.headers {
		c.headers[k] = v
	}
	c.order = append(c.order, s.order...)
	for k, v := range s.details {
		c.details[k] = v
	}
	for k, v := range s.articles {
		c.articles[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.headers = from.headers
	s.order = from.order
	s.details = from.details
	s.articles = from.articles
	s.products = from.products
	s.balances = from.balances
}

// liveDetails itera los detalles en orden de inserción, saltando los de
// transacciones anuladas.
func (s *memStore) liveDetails() []*entity.TransactionDetail {
	var out []*entity.TransactionDetail
	for _, id := range s.order {
		d := s.details[id]
		trx := s.headers[d.TransactionID]
		if trx == nil || trx.DeletedAt != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (s *memStore) trxType(d *entity.TransactionDetail) string {
	return s.headers[d.TransactionID].Type
}

func (s *memStore) articleOf(d *entity.TransactionDetail) *entity.Article {
	return s.articles[d.ArticleID]
}

// ── TransactionRepository ────────────────────────────────────────────────────

func (s *memStore) CreateHeader(_ context.Context, trx *entity.Transaction) error {
	for _, existing := range s.headers {
		if existing.FolioNumber == trx.FolioNumber && existing.DeletedAt == nil {
			return fmt.Errorf("%w: folio %s", domain.ErrDuplicate, trx.FolioNumber)
		}
	}
	s.headers[trx.ID] = trx
	return nil
}

func (s *memStore) CreateDetail(_ context.Context, detail *entity.TransactionDetail) error {
	s.details[detail.ID] = detail
	s.order = append(s.order, detail.ID)
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	trx, ok := s.headers[id]
	if !ok || trx.DeletedAt != nil {
		return nil, nil
	}
	return trx, nil
}

func (s *memStore) List(_ context.Context, _ repository.TransactionFilter) ([]*entity.Transaction, int64, error) {
	return nil, 0, nil
}

func (s *memStore) ListByProduct(_ context.Context, _ string, _ int) ([]*entity.Transaction, error) {
	return nil, nil
}

func (s *memStore) SoftDelete(_ context.Context, id string) error {
	trx, ok := s.headers[id]
	if !ok || trx.DeletedAt != nil {
		return domain.ErrNotFound
	}
	// Reemplaza el puntero en vez de mutar, para que snapshot/restore
	// conserve la versión previa.
	now := time.Now()
	cp := *trx
	cp.DeletedAt = &now
	s.headers[id] = &cp
	return nil
}

// ── LedgerRepository ─────────────────────────────────────────────────────────

func (s *memStore) LastMovementBySerial(_ context.Context, serial string) (*ledger.LastMovement, error) {
	var last *ledger.LastMovement
	for _, d := range s.liveDetails() {
		if d.SerialNumber != serial {
			continue
		}
		trx := s.headers[d.TransactionID]
		last = &ledger.LastMovement{Type: trx.Type, Afectation: d.Afectation, FolioNumber: trx.FolioNumber}
	}
	return last, nil
}

func (s *memStore) ProductAvailable(_ context.Context, productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, d := range s.liveDetails() {
		a := s.articleOf(d)
		if d.SerialNumber != "" || a.ProductID != productID {
			continue
		}
		base := a.Factor.Mul(decimal.NewFromInt(d.Quantity))
		if s.trxType(d) == entity.TransactionTypeENTRY {
			sum = sum.Add(base)
		} else {
			sum = sum.Sub(base)
		}
	}
	return sum, nil
}

func (s *memStore) HasExcludedExit(_ context.Context, productID string) (bool, error) {
	for _, d := range s.liveDetails() {
		if d.SerialNumber == "" && !d.Afectation &&
			s.articleOf(d).ProductID == productID &&
			s.trxType(d) == entity.TransactionTypeEXIT {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ProductOutsideCounting(_ context.Context, productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, d := range s.liveDetails() {
		a := s.articleOf(d)
		if d.SerialNumber != "" || d.Afectation || a.ProductID != productID {
			continue
		}
		base := a.Factor.Mul(decimal.NewFromInt(d.Quantity))
		if s.trxType(d) == entity.TransactionTypeEXIT {
			sum = sum.Add(base)
		} else {
			sum = sum.Sub(base)
		}
	}
	return sum, nil
}

func (s *memStore) ProductBalance(_ context.Context, productID string, _ *time.Time) (ledger.Balance, error) {
	b := ledger.Zero()
	for _, d := range s.liveDetails() {
		a := s.articleOf(d)
		if a.ProductID != productID {
			continue
		}
		b = b.Apply(ledger.Movement{
			Type:       s.trxType(d),
			Afectation: d.Afectation,
			Quantity:   d.Quantity,
			Factor:     a.Factor,
		})
	}
	return b, nil
}

func (s *memStore) ArticleBalance(_ context.Context, barcode string, _ *time.Time) (ledger.Balance, error) {
	b := ledger.Zero()
	for _, d := range s.liveDetails() {
		a := s.articleOf(d)
		if a.Barcode != barcode {
			continue
		}
		b = b.Apply(ledger.Movement{
			Type:       s.trxType(d),
			Afectation: d.Afectation,
			Quantity:   d.Quantity,
			Factor:     a.Factor,
		})
	}
	return b, nil
}

func (s *memStore) ArticleBreakdown(_ context.Context, _ string) ([]repository.ArticleSnapshot, error) {
	return nil, nil
}

// ── BalanceRepository ────────────────────────────────────────────────────────

func (s *memStore) GetForUpdate(_ context.Context, articleID string) (*entity.ArticleBalance, error) {
	if row, ok := s.balances[articleID]; ok {
		cp := *row
		return &cp, nil
	}
	return &entity.ArticleBalance{
		ArticleID:            articleID,
		Total:                decimal.Zero,
		TotalAvailable:       decimal.Zero,
		TotalOutsideCounting: decimal.Zero,
	}, nil
}

func (s *memStore) Upsert(_ context.Context, balance *entity.ArticleBalance) error {
	s.balances[balance.ArticleID] = balance
	return nil
}

func (s *memStore) SumByProduct(_ context.Context, productID string) (ledger.Balance, error) {
	b := ledger.Zero()
	for articleID, row := range s.balances {
		a := s.articles[articleID]
		if a == nil || a.ProductID != productID {
			continue
		}
		b.Total = b.Total.Add(row.Total)
		b.TotalAvailable = b.TotalAvailable.Add(row.TotalAvailable)
		b.TotalOutsideCounting = b.TotalOutsideCounting.Add(row.TotalOutsideCounting)
	}
	return b, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Wrappers tipados: un solo memStore respalda los cinco puertos, pero los
// nombres de método de artículos y productos chocan con los de transacciones.
// ──────────────────────────────────────────────────────────────────────────────

type memArticleRepo struct{ s *memStore }

func (r memArticleRepo) Create(_ context.Context, article *entity.Article) error {
	for _, existing := range r.s.articles {
		if existing.Barcode == article.Barcode {
			return fmt.Errorf("%w: barcode %s", domain.ErrDuplicate, article.Barcode)
		}
	}
	r.s.articles[article.ID] = article
	return nil
}
func (r memArticleRepo) GetByID(_ context.Context, id string) (*entity.Article, error) {
	a, ok := r.s.articles[id]
	if !ok || a.DeletedAt != nil {
		return nil, nil
	}
	return a, nil
}
func (r memArticleRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Article, error) {
	for _, a := range r.s.articles {
		if a.Barcode == barcode && a.DeletedAt == nil {
			return a, nil
		}
	}
	return nil, nil
}
func (r memArticleRepo) ListByProduct(_ context.Context, _ string) ([]*entity.Article, error) {
	return nil, nil
}
func (r memArticleRepo) List(_ context.Context, _ repository.ArticleFilter) ([]*entity.Article, int64, error) {
	return nil, 0, nil
}
func (r memArticleRepo) Update(_ context.Context, _ *entity.Article) error { return nil }
func (r memArticleRepo) SoftDelete(_ context.Context, id string) error {
	a, ok := r.s.articles[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	a.DeletedAt = &now
	return nil
}

type memProductRepo struct{ s *memStore }

func (r memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.products[p.ID] = p
	return nil
}
func (r memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, nil
	}
	return p, nil
}
func (r memProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}
func (r memProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]*entity.Product, int64, error) {
	return nil, 0, nil
}
func (r memProductRepo) Update(_ context.Context, _ *entity.Product) error { return nil }
func (r memProductRepo) SoftDelete(_ context.Context, id string) error {
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner en memoria: snapshot al entrar, restore si fn falla. Reproduce la
// atomicidad commit/rollback del runner de PostgreSQL.
// ──────────────────────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

func (r memTxRunner) Run(_ context.Context, fn func(
	trxRepo repository.TransactionRepository,
	ledgerRepo repository.LedgerRepository,
	balanceRepo repository.BalanceRepository,
	articleRepo repository.ArticleRepository,
	productRepo repository.ProductRepository,
) error) error {
	before := r.s.snapshot()
	err := fn(r.s, r.s, r.s, memArticleRepo{r.s}, memProductRepo{r.s})
	if err != nil {
		r.s.restore(before)
		return err
	}
	return nil
}

// recordingInvalidator registra los productos invalidados tras cada commit.
type recordingInvalidator struct {
	productIDs []string
}

func (r *recordingInvalidator) InvalidateProduct(_ context.Context, productID string) {
	r.productIDs = append(r.productIDs, productID)
}
