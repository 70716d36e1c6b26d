package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
)

type balanceKey struct {
	warehouseID id.ID
	productID   id.ID
}

// fakeRepo keeps balances in memory and mirrors the repository contract.
type fakeRepo struct {
	balances map[balanceKey]decimal.Decimal
	locked   []balanceKey
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{balances: make(map[balanceKey]decimal.Decimal)}
}

func (r *fakeRepo) set(w, p id.ID, qty string) {
	r.balances[balanceKey{w, p}] = decimal.RequireFromString(qty)
}

func (r *fakeRepo) GetBalance(_ context.Context, w, p id.ID) (Balance, error) {
	return Balance{WarehouseID: w, ProductID: p, Quantity: r.balances[balanceKey{w, p}], UpdatedAt: time.Now()}, nil
}

func (r *fakeRepo) GetBalanceForUpdate(ctx context.Context, w, p id.ID) (Balance, error) {
	r.locked = append(r.locked, balanceKey{w, p})
	return r.GetBalance(ctx, w, p)
}

func (r *fakeRepo) AddQuantity(_ context.Context, w, p id.ID, qty decimal.Decimal) error {
	key := balanceKey{w, p}
	r.balances[key] = r.balances[key].Add(qty)
	return nil
}

func (r *fakeRepo) SubtractQuantity(_ context.Context, w, p id.ID, qty decimal.Decimal) error {
	key := balanceKey{w, p}
	r.balances[key] = r.balances[key].Sub(qty)
	return nil
}

func (r *fakeRepo) GetBalancesByWarehouse(_ context.Context, w id.ID, filter BalanceFilter) ([]Balance, error) {
	var out []Balance
	for key, qty := range r.balances {
		if key.warehouseID != w {
			continue
		}
		if filter.ExcludeZero && qty.IsZero() {
			continue
		}
		out = append(out, Balance{WarehouseID: key.warehouseID, ProductID: key.productID, Quantity: qty})
	}
	return out, nil
}

func (r *fakeRepo) GetBalancesByProduct(_ context.Context, p id.ID) ([]Balance, error) {
	var out []Balance
	for key, qty := range r.balances {
		if key.productID == p {
			out = append(out, Balance{WarehouseID: key.warehouseID, ProductID: key.productID, Quantity: qty})
		}
	}
	return out, nil
}

func TestService_IncreaseAndDecrease(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	wh := id.New()
	prod := id.New()

	require.NoError(t, svc.Increase(ctx, wh, prod, decimal.NewFromInt(10)))
	require.NoError(t, svc.Decrease(ctx, wh, prod, decimal.NewFromInt(4)))

	qty, err := svc.Availability(ctx, wh, prod)
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromInt(6)), "got %s", qty)
	assert.Len(t, repo.locked, 1, "decrease must lock the balance row")
}

func TestService_DecreaseInsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	wh := id.New()
	prod := id.New()
	repo.set(wh, prod, "3")

	err := svc.Decrease(ctx, wh, prod, decimal.NewFromInt(5))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Balance untouched after the refusal.
	qty, err := svc.Availability(ctx, wh, prod)
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromInt(3)))
}

func TestService_DecreaseExactBalance(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	wh := id.New()
	prod := id.New()
	repo.set(wh, prod, "5")

	require.NoError(t, svc.Decrease(ctx, wh, prod, decimal.NewFromInt(5)))

	qty, _ := svc.Availability(ctx, wh, prod)
	assert.True(t, qty.IsZero())
}

func TestService_RejectsNonPositiveQuantities(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	err := svc.Increase(ctx, id.New(), id.New(), decimal.Zero)
	assert.True(t, apperror.IsAppError(err))

	err = svc.Decrease(ctx, id.New(), id.New(), decimal.NewFromInt(-1))
	assert.True(t, apperror.IsAppError(err))
}

func TestService_CheckAvailability(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	wh := id.New()
	prod := id.New()
	repo.set(wh, prod, "5")

	// Demands on the same pair accumulate before the comparison.
	err := svc.CheckAvailability(ctx, []Demand{
		{WarehouseID: wh, ProductID: prod, Quantity: decimal.NewFromInt(3)},
		{WarehouseID: wh, ProductID: prod, Quantity: decimal.NewFromInt(3)},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The check never touches a balance.
	qty, _ := svc.Availability(ctx, wh, prod)
	assert.True(t, qty.Equal(decimal.NewFromInt(5)))

	err = svc.CheckAvailability(ctx, []Demand{
		{WarehouseID: wh, ProductID: prod, Quantity: decimal.NewFromInt(3)},
		{WarehouseID: wh, ProductID: prod, Quantity: decimal.NewFromInt(2)},
	})
	assert.NoError(t, err)
}

func TestService_Move(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	src := id.New()
	dst := id.New()
	prod := id.New()
	repo.set(src, prod, "8")

	require.NoError(t, svc.Move(ctx, src, dst, prod, decimal.NewFromInt(3)))

	srcQty, _ := svc.Availability(ctx, src, prod)
	dstQty, _ := svc.Availability(ctx, dst, prod)
	assert.True(t, srcQty.Equal(decimal.NewFromInt(5)))
	assert.True(t, dstQty.Equal(decimal.NewFromInt(3)))

	// Global total is unchanged by a transfer.
	total, err := svc.TotalAvailability(ctx, prod)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(8)))
}

func TestService_MoveSameWarehouse(t *testing.T) {
	svc := NewService(newFakeRepo())
	wh := id.New()

	err := svc.Move(context.Background(), wh, wh, id.New(), decimal.NewFromInt(1))
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestService_MoveInsufficientSource(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	src := id.New()
	dst := id.New()
	prod := id.New()
	repo.set(src, prod, "2")

	err := svc.Move(ctx, src, dst, prod, decimal.NewFromInt(3))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	dstQty, _ := svc.Availability(ctx, dst, prod)
	assert.True(t, dstQty.IsZero(), "destination must not receive stock on failure")
}
