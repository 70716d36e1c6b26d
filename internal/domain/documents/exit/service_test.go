package exit

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/measure"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProducts struct {
	byID map[id.ID]*product.Product
}

func (f *fakeProducts) Create(_ context.Context, p *product.Product) error { f.byID[p.ID] = p; return nil }
func (f *fakeProducts) GetByID(_ context.Context, pid id.ID) (*product.Product, error) {
	p, ok := f.byID[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid.String())
	}
	return p, nil
}
func (f *fakeProducts) GetByCode(_ context.Context, _ string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", "")
}
func (f *fakeProducts) Update(_ context.Context, _ *product.Product) error     { return nil }
func (f *fakeProducts) SetActive(_ context.Context, _ id.ID, _ bool) error     { return nil }
func (f *fakeProducts) List(_ context.Context, _ domain.ListFilter) (domain.ListResult[*product.Product], error) {
	return domain.ListResult[*product.Product]{}, nil
}
func (f *fakeProducts) Exists(_ context.Context, pid id.ID) (bool, error) {
	_, ok := f.byID[pid]
	return ok, nil
}
func (f *fakeProducts) ExistsByCode(_ context.Context, _ string) (bool, error) { return false, nil }
func (f *fakeProducts) GetForUpdate(ctx context.Context, pid id.ID) (*product.Product, error) {
	return f.GetByID(ctx, pid)
}
func (f *fakeProducts) UpdateAverageCost(_ context.Context, pid id.ID, cost decimal.Decimal) error {
	f.byID[pid].AverageCost = cost
	return nil
}
func (f *fakeProducts) ListBelowMinimum(_ context.Context) ([]*product.Product, error) {
	return nil, nil
}

type balanceKey struct {
	warehouseID id.ID
	productID   id.ID
}

type fakeLedger struct {
	balances map[balanceKey]decimal.Decimal
	products *fakeProducts
}

func (r *fakeLedger) GetBalance(_ context.Context, w, p id.ID) (ledger.Balance, error) {
	return ledger.Balance{WarehouseID: w, ProductID: p, Quantity: r.balances[balanceKey{w, p}]}, nil
}
func (r *fakeLedger) GetBalanceForUpdate(ctx context.Context, w, p id.ID) (ledger.Balance, error) {
	return r.GetBalance(ctx, w, p)
}
func (r *fakeLedger) AddQuantity(_ context.Context, w, p id.ID, qty decimal.Decimal) error {
	key := balanceKey{w, p}
	r.balances[key] = r.balances[key].Add(qty)
	prod := r.products.byID[p]
	prod.Stock = prod.Stock.Add(qty)
	return nil
}
func (r *fakeLedger) SubtractQuantity(_ context.Context, w, p id.ID, qty decimal.Decimal) error {
	key := balanceKey{w, p}
	r.balances[key] = r.balances[key].Sub(qty)
	prod := r.products.byID[p]
	prod.Stock = prod.Stock.Sub(qty)
	return nil
}
func (r *fakeLedger) GetBalancesByWarehouse(_ context.Context, _ id.ID, _ ledger.BalanceFilter) ([]ledger.Balance, error) {
	return nil, nil
}
func (r *fakeLedger) GetBalancesByProduct(_ context.Context, p id.ID) ([]ledger.Balance, error) {
	var out []ledger.Balance
	for key, qty := range r.balances {
		if key.productID == p {
			out = append(out, ledger.Balance{WarehouseID: key.warehouseID, ProductID: p, Quantity: qty})
		}
	}
	return out, nil
}

type fakeRepo struct {
	docs  map[id.ID]*Exit
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]*Exit), lines: make(map[id.ID][]Line)}
}

func (r *fakeRepo) Create(_ context.Context, doc *Exit) error { r.docs[doc.ID] = doc; return nil }
func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Exit, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("exit", docID.String())
	}
	return doc, nil
}
func (r *fakeRepo) GetLines(_ context.Context, docID id.ID) ([]Line, error) {
	return r.lines[docID], nil
}
func (r *fakeRepo) SaveLines(_ context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = lines
	return nil
}
func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Exit], error) {
	return domain.ListResult[*Exit]{}, nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	products *fakeProducts
	ledger   *fakeLedger
}

func newFixture() *fixture {
	products := &fakeProducts{byID: make(map[id.ID]*product.Product)}
	led := &fakeLedger{balances: make(map[balanceKey]decimal.Decimal), products: products}
	repo := newFakeRepo()

	svc := NewService(repo, products, ledger.NewService(led), measure.NewConverter(), passTx{})
	return &fixture{svc: svc, repo: repo, products: products, ledger: led}
}

func (f *fixture) addProduct(unit, avgCost string) *product.Product {
	p := product.New("P-001", "Aceite", unit)
	p.AverageCost = d(avgCost)
	f.products.byID[p.ID] = p
	return p
}

func (f *fixture) setStock(wh id.ID, p *product.Product, qty string) {
	f.ledger.balances[balanceKey{wh, p.ID}] = d(qty)
	p.Stock = p.Stock.Add(d(qty))
}

func TestService_Register(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.addProduct("LITRO", "120")
	wh := id.New()
	f.setStock(wh, prod, "10")

	doc := New(time.Now(), wh, "consumo interno")
	doc.AddLine(prod.ID, id.Nil(), "LITRO", d("4"))

	require.NoError(t, f.svc.Register(ctx, doc))

	// Valued at the current average cost; the cost itself does not move.
	assert.True(t, doc.TotalCost.Equal(d("480")), "got %s", doc.TotalCost)
	assert.True(t, prod.AverageCost.Equal(d("120")))
	assert.True(t, prod.Stock.Equal(d("6")), "got %s", prod.Stock)
	assert.True(t, f.ledger.balances[balanceKey{wh, prod.ID}].Equal(d("6")))

	require.Len(t, f.repo.lines[doc.ID], 1)
	line := f.repo.lines[doc.ID][0]
	assert.True(t, line.UnitCost.Equal(d("120")))
	assert.True(t, line.Cost.Equal(d("480")))
}

func TestService_Register_ConvertsUnits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.addProduct("KG", "50")
	wh := id.New()
	f.setStock(wh, prod, "2")

	doc := New(time.Now(), wh, "venta")
	doc.AddLine(prod.ID, id.Nil(), "GR", d("1500"))

	require.NoError(t, f.svc.Register(ctx, doc))

	line := f.repo.lines[doc.ID][0]
	assert.True(t, line.BaseQuantity.Equal(d("1.5")), "got %s", line.BaseQuantity)
	assert.True(t, line.Cost.Equal(d("75")), "got %s", line.Cost)
	assert.True(t, prod.Stock.Equal(d("0.5")), "got %s", prod.Stock)
}

func TestService_Register_InsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.addProduct("UND", "10")
	wh := id.New()
	f.setStock(wh, prod, "3")

	doc := New(time.Now(), wh, "venta")
	doc.AddLine(prod.ID, id.Nil(), "UND", d("5"))

	err := f.svc.Register(ctx, doc)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// No document, no stock effect.
	assert.Empty(t, f.repo.docs)
	assert.True(t, f.ledger.balances[balanceKey{wh, prod.ID}].Equal(d("3")))
}

func TestService_Register_ExactBalance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.addProduct("UND", "10")
	wh := id.New()
	f.setStock(wh, prod, "5")

	doc := New(time.Now(), wh, "venta")
	doc.AddLine(prod.ID, id.Nil(), "UND", d("5"))

	require.NoError(t, f.svc.Register(ctx, doc))
	assert.True(t, f.ledger.balances[balanceKey{wh, prod.ID}].IsZero())
}

func TestService_Register_LinesSpanWarehouses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.addProduct("UND", "10")
	whMain := id.New()
	whSecondary := id.New()
	f.setStock(whMain, prod, "5")
	f.setStock(whSecondary, prod, "5")

	doc := New(time.Now(), whMain, "venta")
	doc.AddLine(prod.ID, id.Nil(), "UND", d("3"))
	doc.AddLine(prod.ID, whSecondary, "UND", d("2"))

	require.NoError(t, f.svc.Register(ctx, doc))

	// The first line falls back to the header warehouse, the second
	// names its own.
	assert.True(t, f.ledger.balances[balanceKey{whMain, prod.ID}].Equal(d("2")))
	assert.True(t, f.ledger.balances[balanceKey{whSecondary, prod.ID}].Equal(d("3")))
	require.Len(t, f.repo.lines[doc.ID], 2)
	assert.Equal(t, whMain, f.repo.lines[doc.ID][0].WarehouseID)
	assert.Equal(t, whSecondary, f.repo.lines[doc.ID][1].WarehouseID)
}

func TestService_Register_CombinedLinesExceedStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	prod := f.addProduct("UND", "10")
	wh := id.New()
	f.setStock(wh, prod, "5")

	// Each line fits on its own but together they ask for 6 of 5.
	doc := New(time.Now(), wh, "venta")
	doc.AddLine(prod.ID, id.Nil(), "UND", d("3"))
	doc.AddLine(prod.ID, id.Nil(), "UND", d("3"))

	err := f.svc.Register(ctx, doc)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Empty(t, f.repo.docs)
	assert.True(t, f.ledger.balances[balanceKey{wh, prod.ID}].Equal(d("5")))
}

func TestService_Register_MissingReason(t *testing.T) {
	f := newFixture()

	doc := New(time.Now(), id.New(), "")
	doc.AddLine(id.New(), id.Nil(), "UND", d("1"))

	err := f.svc.Register(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}
