package report_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/id"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm *postgres.TxManager
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

func (r *ReportRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// movementsSQL assembles the kardex history of one product. Transfers
// contribute an outbound row for the source warehouse and an inbound row
// for the destination.
const movementsSQL = `
SELECT m.date, m.document_id, m.movement_type, m.detail, m.warehouse_id, m.quantity, m.unit_cost
FROM (
    SELECT d.date,
           d.created_at,
           l.line_no,
           l.document_id,
           'purchase' AS movement_type,
           s.name || ' ' || d.series || '-' || d.number AS detail,
           d.warehouse_id,
           l.base_quantity AS quantity,
           l.unit_cost
    FROM doc_purchase_lines l
    JOIN doc_purchases d ON d.id = l.document_id
    JOIN cat_suppliers s ON s.id = d.supplier_id
    WHERE l.product_id = $1
    UNION ALL
    SELECT d.date,
           d.created_at,
           l.line_no,
           l.document_id,
           'exit' AS movement_type,
           d.reason AS detail,
           l.warehouse_id,
           l.base_quantity AS quantity,
           l.unit_cost
    FROM doc_exit_lines l
    JOIN doc_exits d ON d.id = l.document_id
    WHERE l.product_id = $1
    UNION ALL
    SELECT d.date,
           d.created_at,
           l.line_no,
           l.document_id,
           'transfer_out' AS movement_type,
           'A: ' || wt.name AS detail,
           d.from_warehouse_id AS warehouse_id,
           l.base_quantity AS quantity,
           l.unit_cost
    FROM doc_transfer_lines l
    JOIN doc_transfers d ON d.id = l.document_id
    JOIN cat_warehouses wt ON wt.id = d.to_warehouse_id
    WHERE l.product_id = $1
    UNION ALL
    SELECT d.date,
           d.created_at,
           l.line_no,
           l.document_id,
           'transfer_in' AS movement_type,
           'De: ' || wf.name AS detail,
           d.to_warehouse_id AS warehouse_id,
           l.base_quantity AS quantity,
           l.unit_cost
    FROM doc_transfer_lines l
    JOIN doc_transfers d ON d.id = l.document_id
    JOIN cat_warehouses wf ON wf.id = d.from_warehouse_id
    WHERE l.product_id = $1
) m
`

// Movements returns the full movement history of a product, oldest first.
func (r *ReportRepo) Movements(ctx context.Context, productID id.ID, warehouseID *id.ID) ([]reports.Movement, error) {
	sql := movementsSQL
	args := []any{productID}

	if warehouseID != nil {
		sql += "WHERE m.warehouse_id = $2\n"
		args = append(args, *warehouseID)
	}
	sql += "ORDER BY m.date, m.created_at, m.line_no"

	var movements []reports.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

// allMovementsSQL is the same union without a product filter, joined with
// the product identity for display.
const allMovementsSQL = `
SELECT m.date, m.document_id, m.movement_type, m.detail, m.warehouse_id, m.quantity, m.unit_cost,
       m.product_id, p.code AS product_code, p.name AS product_name
FROM (
    SELECT d.date,
           d.created_at,
           l.line_no,
           l.document_id,
           l.product_id,
           'purchase' AS movement_type,
           s.name || ' ' || d.series || '-' || d.number AS detail,
           d.warehouse_id,
           l.base_quantity AS quantity,
           l.unit_cost
    FROM doc_purchase_lines l
    JOIN doc_purchases d ON d.id = l.document_id
    JOIN cat_suppliers s ON s.id = d.supplier_id
    UNION ALL
    SELECT d.date,
           d.created_at,
           l.line_no,
           l.document_id,
           l.product_id,
           'exit' AS movement_type,
           d.reason AS detail,
           l.warehouse_id,
           l.base_quantity AS quantity,
           l.unit_cost
    FROM doc_exit_lines l
    JOIN doc_exits d ON d.id = l.document_id
    UNION ALL
    SELECT d.date,
           d.created_at,
           l.line_no,
           l.document_id,
           l.product_id,
           'transfer_out' AS movement_type,
           'A: ' || wt.name AS detail,
           d.from_warehouse_id AS warehouse_id,
           l.base_quantity AS quantity,
           l.unit_cost
    FROM doc_transfer_lines l
    JOIN doc_transfers d ON d.id = l.document_id
    JOIN cat_warehouses wt ON wt.id = d.to_warehouse_id
    UNION ALL
    SELECT d.date,
           d.created_at,
           l.line_no,
           l.document_id,
           l.product_id,
           'transfer_in' AS movement_type,
           'De: ' || wf.name AS detail,
           d.to_warehouse_id AS warehouse_id,
           l.base_quantity AS quantity,
           l.unit_cost
    FROM doc_transfer_lines l
    JOIN doc_transfers d ON d.id = l.document_id
    JOIN cat_warehouses wf ON wf.id = d.from_warehouse_id
) m
JOIN cat_products p ON p.id = m.product_id
`

// AllMovements returns the movements of every product, newest first.
func (r *ReportRepo) AllMovements(ctx context.Context, filter reports.GlobalKardexFilter) ([]reports.GlobalMovement, error) {
	sql := allMovementsSQL
	var conds []string
	var args []any

	if filter.WarehouseID != nil {
		args = append(args, *filter.WarehouseID)
		conds = append(conds, fmt.Sprintf("m.warehouse_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("m.date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("m.date <= $%d", len(args)))
	}
	if len(conds) > 0 {
		sql += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	sql += "ORDER BY m.date DESC, m.created_at DESC, m.line_no DESC"

	var movements []reports.GlobalMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select all movements: %w", err)
	}
	return movements, nil
}

// Snapshot returns current positions joined with product and warehouse names.
func (r *ReportRepo) Snapshot(ctx context.Context, filter reports.SnapshotFilter) ([]reports.SnapshotRow, error) {
	q := r.builder().
		Select(
			"b.product_id",
			"p.code AS product_code",
			"p.name AS product_name",
			"p.unit",
			"b.warehouse_id",
			"w.name AS warehouse_name",
			"b.quantity",
			"p.average_cost",
		).
		From("reg_stock_balances b").
		Join("cat_products p ON p.id = b.product_id").
		Join("cat_warehouses w ON w.id = b.warehouse_id")

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"b.warehouse_id": *filter.WarehouseID})
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"b.product_id": filter.ProductIDs})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"b.quantity": 0})
	}

	q = q.OrderBy("p.name", "w.name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []reports.SnapshotRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return rows, nil
}

// purchaseTotalsSQL aggregates per supplier with each document's amounts
// converted at its recorded exchange rate.
const purchaseTotalsSQL = `
SELECT d.supplier_id,
       s.name AS supplier_name,
       COUNT(*) AS document_count,
       SUM(round(d.total_net * d.exchange_rate, 2)) AS total_net,
       SUM(round(d.total_tax * d.exchange_rate, 2)) AS total_tax,
       SUM(round(d.total_amount * d.exchange_rate, 2)) AS total_amount
FROM doc_purchases d
JOIN cat_suppliers s ON s.id = d.supplier_id
WHERE d.date >= $1 AND d.date <= $2
`

// PurchaseTotalsBySupplier aggregates registered purchases per supplier.
func (r *ReportRepo) PurchaseTotalsBySupplier(ctx context.Context, filter reports.PurchaseTotalsFilter) ([]reports.SupplierTotal, error) {
	sql := purchaseTotalsSQL
	args := []any{filter.From, filter.To}

	if filter.SupplierID != nil {
		sql += "  AND d.supplier_id = $3\n"
		args = append(args, *filter.SupplierID)
	}
	sql += "GROUP BY d.supplier_id, s.name\nORDER BY total_amount DESC"

	var totals []reports.SupplierTotal
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &totals, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchase totals: %w", err)
	}
	return totals, nil
}
