// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"almacen/internal/core/id"
	"almacen/internal/domain/ledger"
	"almacen/internal/infrastructure/storage/postgres"
)

const (
	stockBalancesTable = "reg_stock_balances"
	productsTable      = "cat_products"
)

var _ ledger.Repository = (*StockRepo)(nil)

// StockRepo implements ledger.Repository. Every quantity change touches two
// rows in the same transaction: the per-warehouse balance and the
// denormalized total on the product.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetBalance returns current balance for warehouse+product.
// A missing row reads as zero quantity.
func (r *StockRepo) GetBalance(ctx context.Context, warehouseID, productID id.ID) (ledger.Balance, error) {
	balance := ledger.Balance{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    decimal.Zero,
	}

	q := r.builder.
		Select("warehouse_id", "product_id", "quantity", "updated_at").
		From(stockBalancesTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID, "product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return balance, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns the balance with a row lock. A zero row is
// inserted first when none exists so there is always a row to lock; the
// INSERT itself conflicts on the primary key under concurrency, which
// serializes the two sessions just as the lock would.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, warehouseID, productID id.ID) (ledger.Balance, error) {
	querier := r.txm.GetQuerier(ctx)

	insertSQL, insertArgs, err := r.builder.
		Insert(stockBalancesTable).
		Columns("warehouse_id", "product_id", "quantity").
		Values(warehouseID, productID, decimal.Zero).
		Suffix("ON CONFLICT (warehouse_id, product_id) DO NOTHING").
		ToSql()
	if err != nil {
		return ledger.Balance{}, fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, insertSQL, insertArgs...); err != nil {
		return ledger.Balance{}, fmt.Errorf("ensure balance row: %w", err)
	}

	q := r.builder.
		Select("warehouse_id", "product_id", "quantity", "updated_at").
		From(stockBalancesTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID, "product_id": productID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return ledger.Balance{}, fmt.Errorf("build query: %w", err)
	}

	var balance ledger.Balance
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		return balance, fmt.Errorf("lock balance: %w", err)
	}

	return balance, nil
}

// AddQuantity increases the balance and the product total.
func (r *StockRepo) AddQuantity(ctx context.Context, warehouseID, productID id.ID, qty decimal.Decimal) error {
	querier := r.txm.GetQuerier(ctx)

	upsertSQL, upsertArgs, err := r.builder.
		Insert(stockBalancesTable).
		Columns("warehouse_id", "product_id", "quantity").
		Values(warehouseID, productID, qty).
		Suffix("ON CONFLICT (warehouse_id, product_id) DO UPDATE SET quantity = " +
			stockBalancesTable + ".quantity + EXCLUDED.quantity, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := querier.Exec(ctx, upsertSQL, upsertArgs...); err != nil {
		return fmt.Errorf("add quantity: %w", err)
	}

	return r.adjustProductTotal(ctx, productID, qty)
}

// SubtractQuantity decreases the balance and the product total.
func (r *StockRepo) SubtractQuantity(ctx context.Context, warehouseID, productID id.ID, qty decimal.Decimal) error {
	querier := r.txm.GetQuerier(ctx)

	updateSQL, updateArgs, err := r.builder.
		Update(stockBalancesTable).
		Set("quantity", squirrel.Expr("quantity - ?", qty)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"warehouse_id": warehouseID, "product_id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := querier.Exec(ctx, updateSQL, updateArgs...)
	if err != nil {
		return fmt.Errorf("subtract quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no balance row for warehouse %s product %s", warehouseID, productID)
	}

	return r.adjustProductTotal(ctx, productID, qty.Neg())
}

func (r *StockRepo) adjustProductTotal(ctx context.Context, productID id.ID, delta decimal.Decimal) error {
	sql, args, err := r.builder.
		Update(productsTable).
		Set("stock", squirrel.Expr("stock + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("adjust product total: %w", err)
	}

	return nil
}

// GetBalancesByWarehouse returns balances for a warehouse.
func (r *StockRepo) GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter ledger.BalanceFilter) ([]ledger.Balance, error) {
	q := r.builder.
		Select("warehouse_id", "product_id", "quantity", "updated_at").
		From(stockBalancesTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID}).
		OrderBy("product_id")

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": 0})
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []ledger.Balance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalancesByProduct returns balances across all warehouses for a product.
func (r *StockRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]ledger.Balance, error) {
	q := r.builder.
		Select("warehouse_id", "product_id", "quantity", "updated_at").
		From(stockBalancesTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("warehouse_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []ledger.Balance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}
