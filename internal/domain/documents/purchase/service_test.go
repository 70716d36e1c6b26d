package purchase

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
	"almacen/internal/domain/costing"
	"almacen/internal/domain/exchange"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/measure"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// passTx runs the function directly; rollback is modeled by the fakes
// staying untouched when the function errors before mutating them.
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
func (f *fakeProducts) Update(_ context.Context, _ *product.Product) error    { return nil }
func (f *fakeProducts) SetActive(_ context.Context, _ id.ID, _ bool) error    { return nil }
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

// fakeLedger backs ledger.Service and mirrors the stock total onto the
// product row the way the SQL implementation does.
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
	docs       map[id.ID]*Purchase
	lines      map[id.ID][]Line
	registered map[string]bool // supplier|series|number
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:       make(map[id.ID]*Purchase),
		lines:      make(map[id.ID][]Line),
		registered: make(map[string]bool),
	}
}

func docKey(supplierID id.ID, series, number string) string {
	return supplierID.String() + "|" + series + "|" + number
}

func (r *fakeRepo) Create(_ context.Context, doc *Purchase) error {
	r.docs[doc.ID] = doc
	r.registered[docKey(doc.SupplierID, doc.Series, doc.Number)] = true
	return nil
}
func (r *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Purchase, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", docID.String())
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
func (r *fakeRepo) ExistsBySupplierDoc(_ context.Context, supplierID id.ID, series, number string) (bool, error) {
	return r.registered[docKey(supplierID, series, number)], nil
}
func (r *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Purchase], error) {
	return domain.ListResult[*Purchase]{}, nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	products *fakeProducts
	ledger   *fakeLedger
}

func newFixture(rate string) *fixture {
	products := &fakeProducts{byID: make(map[id.ID]*product.Product)}
	led := &fakeLedger{balances: make(map[balanceKey]decimal.Decimal), products: products}
	repo := newFakeRepo()

	svc := NewService(
		repo,
		products,
		ledger.NewService(led),
		costing.NewEngine(d("18")),
		measure.NewConverter(),
		exchange.NewCachedProvider(exchange.StaticSource{Value: d(rate)}, "PEN", d("3.75"), time.Hour),
		passTx{},
	)

	return &fixture{svc: svc, repo: repo, products: products, ledger: led}
}

func (f *fixture) addProduct(unit string, stock, avgCost string) *product.Product {
	p := product.New("P-001", "Aceite", unit)
	p.Stock = d(stock)
	p.AverageCost = d(avgCost)
	f.products.byID[p.ID] = p
	return p
}

func TestService_Register(t *testing.T) {
	f := newFixture("3.5")
	ctx := context.Background()
	prod := f.addProduct("LITRO", "10", "100")
	wh := id.New()

	doc := New(time.Now(), id.New(), wh, "F001", "000123", "PEN")
	// 10 LITRO at 118 each, the price actually paid.
	doc.AddLine(prod.ID, "LITRO", d("10"), d("118"))

	require.NoError(t, f.svc.Register(ctx, doc))

	// Tax split on the gross total, header only.
	assert.True(t, doc.TotalAmount.Equal(d("1180")), "got %s", doc.TotalAmount)
	assert.True(t, doc.TotalNet.Equal(d("1000")), "got %s", doc.TotalNet)
	assert.True(t, doc.TotalTax.Equal(d("180")), "got %s", doc.TotalTax)

	// 10@100 carried + 10@118 received: average 109.
	assert.True(t, prod.AverageCost.Equal(d("109")), "got %s", prod.AverageCost)
	assert.True(t, prod.Stock.Equal(d("20")), "got %s", prod.Stock)
	assert.True(t, f.ledger.balances[balanceKey{wh, prod.ID}].Equal(d("10")))

	// Document and lines persisted.
	assert.Len(t, f.repo.docs, 1)
	require.Len(t, f.repo.lines[doc.ID], 1)
	line := f.repo.lines[doc.ID][0]
	assert.True(t, line.UnitCost.Equal(d("118")), "got %s", line.UnitCost)
	assert.True(t, line.CostBefore.Equal(d("100")), "got %s", line.CostBefore)
}

func TestService_Register_MovesAverage(t *testing.T) {
	f := newFixture("1")
	ctx := context.Background()
	prod := f.addProduct("UND", "10", "100")

	doc := New(time.Now(), id.New(), id.New(), "F001", "000200", "PEN")
	// 10 UND at 150: average moves to 125.
	doc.AddLine(prod.ID, "UND", d("10"), d("150"))

	require.NoError(t, f.svc.Register(ctx, doc))
	assert.True(t, prod.AverageCost.Equal(d("125")), "got %s", prod.AverageCost)
}

func TestService_Register_ForeignCurrency(t *testing.T) {
	f := newFixture("3.5")
	ctx := context.Background()
	prod := f.addProduct("UND", "0", "0")

	doc := New(time.Now(), id.New(), id.New(), "F001", "000300", "USD")
	// 5 UND at 11.8 USD: 41.3 PEN at rate 3.5.
	doc.AddLine(prod.ID, "UND", d("5"), d("11.8"))

	require.NoError(t, f.svc.Register(ctx, doc))

	assert.True(t, doc.ExchangeRate.Equal(d("3.5")), "got %s", doc.ExchangeRate)
	assert.True(t, prod.AverageCost.Equal(d("41.3")), "got %s", prod.AverageCost)
}

func TestService_Register_LineCostKeepsPaidPrice(t *testing.T) {
	f := newFixture("1")
	ctx := context.Background()
	prod := f.addProduct("UND", "0", "0")

	doc := New(time.Now(), id.New(), id.New(), "F001", "000250", "PEN")
	doc.AddLine(prod.ID, "UND", d("10"), d("100"))

	require.NoError(t, f.svc.Register(ctx, doc))

	// Paying 100 per unit into an empty product must leave the average
	// at exactly 100. The tax split stays on the header totals.
	assert.True(t, prod.AverageCost.Equal(d("100")), "got %s", prod.AverageCost)
	line := f.repo.lines[doc.ID][0]
	assert.True(t, line.UnitCost.Equal(d("100")), "got %s", line.UnitCost)
	assert.True(t, line.CostBefore.Equal(d("0")), "got %s", line.CostBefore)
}

func TestService_Register_SuppliedRateWins(t *testing.T) {
	f := newFixture("3.5")
	ctx := context.Background()
	prod := f.addProduct("UND", "0", "0")

	doc := New(time.Now(), id.New(), id.New(), "F001", "000350", "USD")
	doc.ExchangeRate = d("3.6")
	doc.AddLine(prod.ID, "UND", d("5"), d("10"))

	require.NoError(t, f.svc.Register(ctx, doc))

	// The rate on the document beats the provider's 3.5.
	assert.True(t, doc.ExchangeRate.Equal(d("3.6")), "got %s", doc.ExchangeRate)
	assert.True(t, prod.AverageCost.Equal(d("36")), "got %s", prod.AverageCost)
}

func TestService_Register_ConvertsUnits(t *testing.T) {
	f := newFixture("1")
	ctx := context.Background()
	prod := f.addProduct("LITRO", "0", "0")
	wh := id.New()

	doc := New(time.Now(), id.New(), wh, "F001", "000400", "PEN")
	// 500 ML at 0.59 each comes in as 0.5 LITRO.
	doc.AddLine(prod.ID, "ML", d("500"), d("0.59"))

	require.NoError(t, f.svc.Register(ctx, doc))

	require.Len(t, f.repo.lines[doc.ID], 1)
	line := f.repo.lines[doc.ID][0]
	assert.True(t, line.BaseQuantity.Equal(d("0.5")), "got %s", line.BaseQuantity)
	// 295 paid over 0.5 LITRO = 590 per litre.
	assert.True(t, line.UnitCost.Equal(d("590")), "got %s", line.UnitCost)
	assert.True(t, prod.Stock.Equal(d("0.5")), "got %s", prod.Stock)
}

func TestService_Register_DuplicateInvoice(t *testing.T) {
	f := newFixture("1")
	ctx := context.Background()
	prod := f.addProduct("UND", "0", "0")
	supplier := id.New()

	first := New(time.Now(), supplier, id.New(), "F001", "000500", "PEN")
	first.AddLine(prod.ID, "UND", d("1"), d("10"))
	require.NoError(t, f.svc.Register(ctx, first))

	second := New(time.Now(), supplier, id.New(), "F001", "000500", "PEN")
	second.AddLine(prod.ID, "UND", d("1"), d("10"))
	err := f.svc.Register(ctx, second)
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicateDocument(err))
	assert.Len(t, f.repo.docs, 1)
}

func TestService_Register_UnknownProduct(t *testing.T) {
	f := newFixture("1")
	ctx := context.Background()

	doc := New(time.Now(), id.New(), id.New(), "F001", "000600", "PEN")
	doc.AddLine(id.New(), "UND", d("1"), d("10"))

	err := f.svc.Register(ctx, doc)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.repo.docs)
}

func TestService_Register_InvalidDocument(t *testing.T) {
	f := newFixture("1")

	doc := New(time.Now(), id.New(), id.New(), "", "", "PEN")
	err := f.svc.Register(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}
