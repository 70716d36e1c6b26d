package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain"
	"almacen/internal/domain/catalogs/product"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (passTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProducts struct {
	byID         map[id.ID]*product.Product
	belowMinimum []*product.Product
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
func (f *fakeProducts) UpdateAverageCost(_ context.Context, _ id.ID, _ decimal.Decimal) error {
	return nil
}
func (f *fakeProducts) ListBelowMinimum(_ context.Context) ([]*product.Product, error) {
	return f.belowMinimum, nil
}

type fakeRepo struct {
	movements []Movement
	global    []GlobalMovement
	rows      []SnapshotRow
	totals    []SupplierTotal
	err       error
}

func (r *fakeRepo) Movements(_ context.Context, _ id.ID, _ *id.ID) ([]Movement, error) {
	return r.movements, r.err
}
func (r *fakeRepo) AllMovements(_ context.Context, _ GlobalKardexFilter) ([]GlobalMovement, error) {
	return r.global, r.err
}
func (r *fakeRepo) Snapshot(_ context.Context, _ SnapshotFilter) ([]SnapshotRow, error) {
	return r.rows, r.err
}
func (r *fakeRepo) PurchaseTotalsBySupplier(_ context.Context, _ PurchaseTotalsFilter) ([]SupplierTotal, error) {
	return r.totals, r.err
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func newFixture() (*Service, *fakeRepo, *product.Product) {
	products := &fakeProducts{byID: make(map[id.ID]*product.Product)}
	p := product.New("P-001", "Aceite", "LITRO")
	products.byID[p.ID] = p

	repo := &fakeRepo{}
	return NewService(repo, products, passTx{}), repo, p
}

func TestService_Kardex(t *testing.T) {
	svc, repo, prod := newFixture()
	repo.movements = []Movement{
		{Date: day(2026, 1, 5), Type: MovementPurchase, Detail: "F001-000123", Quantity: d("100"), UnitCost: d("10")},
		{Date: day(2026, 1, 15), Type: MovementExit, Detail: "consumo", Quantity: d("30"), UnitCost: d("10")},
		{Date: day(2026, 2, 1), Type: MovementTransferOut, Detail: "A: Sucursal", Quantity: d("20"), UnitCost: d("10")},
		{Date: day(2026, 2, 10), Type: MovementPurchase, Detail: "F001-000200", Quantity: d("50"), UnitCost: d("12")},
	}

	r, err := svc.Kardex(context.Background(), KardexFilter{ProductID: prod.ID})
	require.NoError(t, err)

	require.Len(t, r.Entries, 4)
	// Newest first.
	assert.Equal(t, MovementPurchase, r.Entries[0].Type)
	assert.True(t, r.Entries[0].Balance.Equal(d("100")), "got %s", r.Entries[0].Balance)
	assert.True(t, r.Entries[3].Balance.Equal(d("100")))
	assert.True(t, r.Entries[2].Balance.Equal(d("70")))
	assert.True(t, r.Entries[1].Balance.Equal(d("50")))
	assert.True(t, r.ClosingBalance.Equal(d("100")))
	assert.True(t, r.OpeningBalance.IsZero())

	// In/Out split by direction.
	assert.True(t, r.Entries[0].In.Equal(d("50")))
	assert.True(t, r.Entries[0].Out.IsZero())
	assert.True(t, r.Entries[1].Out.Equal(d("20")))
}

func TestService_Kardex_Window(t *testing.T) {
	svc, repo, prod := newFixture()
	repo.movements = []Movement{
		{Date: day(2026, 1, 5), Type: MovementPurchase, Quantity: d("100"), UnitCost: d("10")},
		{Date: day(2026, 1, 15), Type: MovementExit, Quantity: d("30"), UnitCost: d("10")},
		{Date: day(2026, 2, 10), Type: MovementExit, Quantity: d("20"), UnitCost: d("10")},
		{Date: day(2026, 3, 1), Type: MovementExit, Quantity: d("10"), UnitCost: d("10")},
	}

	from := day(2026, 2, 1)
	to := day(2026, 2, 28)
	r, err := svc.Kardex(context.Background(), KardexFilter{ProductID: prod.ID, From: &from, To: &to})
	require.NoError(t, err)

	// Only the February movement is in the window; the balance before it
	// reflects January history.
	require.Len(t, r.Entries, 1)
	assert.True(t, r.OpeningBalance.Equal(d("70")), "got %s", r.OpeningBalance)
	assert.True(t, r.Entries[0].Balance.Equal(d("50")))
	// Closing balance covers the full history, including March.
	assert.True(t, r.ClosingBalance.Equal(d("40")))
}

func TestService_Kardex_UnknownProduct(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.Kardex(context.Background(), KardexFilter{ProductID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_Kardex_InvalidWindow(t *testing.T) {
	svc, _, prod := newFixture()

	from := day(2026, 3, 1)
	to := day(2026, 2, 1)
	_, err := svc.Kardex(context.Background(), KardexFilter{ProductID: prod.ID, From: &from, To: &to})
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestService_KardexAll(t *testing.T) {
	svc, repo, prod := newFixture()
	repo.global = []GlobalMovement{
		{Movement: Movement{Date: day(2026, 2, 10), Type: MovementPurchase, Quantity: d("50")}, ProductID: prod.ID, ProductCode: "P-001"},
		{Movement: Movement{Date: day(2026, 1, 15), Type: MovementExit, Quantity: d("30")}, ProductID: prod.ID, ProductCode: "P-001"},
		{Movement: Movement{Date: day(2026, 1, 5), Type: MovementPurchase, Quantity: d("100")}, ProductID: prod.ID, ProductCode: "P-001"},
	}

	r, err := svc.KardexAll(context.Background(), GlobalKardexFilter{})
	require.NoError(t, err)

	require.Len(t, r.Entries, 3)
	assert.True(t, r.TotalIn.Equal(d("150")), "got %s", r.TotalIn)
	assert.True(t, r.TotalOut.Equal(d("30")), "got %s", r.TotalOut)
}

func TestService_KardexAll_InvalidWindow(t *testing.T) {
	svc, _, _ := newFixture()

	from := day(2026, 3, 1)
	to := day(2026, 2, 1)
	_, err := svc.KardexAll(context.Background(), GlobalKardexFilter{From: &from, To: &to})
	require.Error(t, err)
}

func TestService_Snapshot(t *testing.T) {
	svc, repo, _ := newFixture()
	repo.rows = []SnapshotRow{
		{ProductCode: "P-001", Quantity: d("10"), AverageCost: d("12.5")},
		{ProductCode: "P-002", Quantity: d("4"), AverageCost: d("100")},
	}

	snap, err := svc.Snapshot(context.Background(), SnapshotFilter{})
	require.NoError(t, err)

	assert.True(t, snap.Rows[0].Value.Equal(d("125")))
	assert.True(t, snap.Rows[1].Value.Equal(d("400")))
	assert.True(t, snap.TotalValue.Equal(d("525")), "got %s", snap.TotalValue)
}

func TestService_PurchaseTotals(t *testing.T) {
	svc, repo, _ := newFixture()
	repo.totals = []SupplierTotal{
		{SupplierName: "Proveedor A", TotalAmount: d("1180")},
		{SupplierName: "Proveedor B", TotalAmount: d("590")},
	}

	totals, err := svc.PurchaseTotals(context.Background(), PurchaseTotalsFilter{
		From: day(2026, 1, 1),
		To:   day(2026, 1, 31),
	})
	require.NoError(t, err)
	assert.True(t, totals.Total.Equal(d("1770")), "got %s", totals.Total)
}

func TestService_PurchaseTotals_RequiresPeriod(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.PurchaseTotals(context.Background(), PurchaseTotalsFilter{})
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestService_StockAlerts(t *testing.T) {
	svc, _, _ := newFixture()

	alerts, err := svc.StockAlerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestService_Kardex_QueryFailureReturnsEmpty(t *testing.T) {
	svc, repo, prod := newFixture()
	repo.err = errors.New("connection reset")

	r, err := svc.Kardex(context.Background(), KardexFilter{ProductID: prod.ID})
	require.NoError(t, err)
	assert.Empty(t, r.Entries)
	assert.True(t, r.ClosingBalance.IsZero())
}

func TestService_Snapshot_QueryFailureReturnsEmpty(t *testing.T) {
	svc, repo, _ := newFixture()
	repo.err = errors.New("connection reset")

	snap, err := svc.Snapshot(context.Background(), SnapshotFilter{})
	require.NoError(t, err)
	assert.Empty(t, snap.Rows)
	assert.True(t, snap.TotalValue.IsZero())
}
