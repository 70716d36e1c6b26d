// Package report_repo provides PostgreSQL read-side repositories for
// valuation and reporting. Queries reconstruct history from the document
// tables; the calling services open the snapshot transaction.
package report_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/id"
	"almacen/internal/domain/valuation"
	"almacen/internal/infrastructure/storage/postgres"
)

// ValuationRepo implements valuation.Repository.
type ValuationRepo struct {
	txm *postgres.TxManager
}

var _ valuation.Repository = (*ValuationRepo)(nil)

// NewValuationRepo creates a new valuation repository.
func NewValuationRepo(txm *postgres.TxManager) *ValuationRepo {
	return &ValuationRepo{txm: txm}
}

const batchesSQL = `
SELECT l.document_id,
       d.date,
       l.base_quantity AS quantity,
       l.unit_cost
FROM doc_purchase_lines l
JOIN doc_purchases d ON d.id = l.document_id
WHERE l.product_id = $1
ORDER BY d.date, d.created_at, l.line_no`

// Batches returns all purchase layers for a product, oldest first.
func (r *ValuationRepo) Batches(ctx context.Context, productID id.ID) ([]valuation.Batch, error) {
	var batches []valuation.Batch
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &batches, batchesSQL, productID); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}
	return batches, nil
}

const consumptionsSQL = `
SELECT m.document_id, m.date, m.kind, m.quantity
FROM (
    SELECT l.document_id,
           d.date,
           d.created_at,
           l.line_no,
           'exit' AS kind,
           l.base_quantity AS quantity
    FROM doc_exit_lines l
    JOIN doc_exits d ON d.id = l.document_id
    WHERE l.product_id = $1
    UNION ALL
    SELECT l.document_id,
           d.date,
           d.created_at,
           l.line_no,
           'transfer_out' AS kind,
           l.base_quantity AS quantity
    FROM doc_transfer_lines l
    JOIN doc_transfers d ON d.id = l.document_id
    WHERE l.product_id = $1
) m
ORDER BY m.date, m.created_at, m.line_no`

// Consumptions returns all outbound events for a product, oldest first.
// Transfers count as consumption of the source warehouse's layers even
// though the goods stay in circulation.
func (r *ValuationRepo) Consumptions(ctx context.Context, productID id.ID) ([]valuation.Consumption, error) {
	var consumptions []valuation.Consumption
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &consumptions, consumptionsSQL, productID); err != nil {
		return nil, fmt.Errorf("select consumptions: %w", err)
	}
	return consumptions, nil
}

const stockedProductsSQL = `
SELECT id FROM cat_products WHERE stock <> 0 ORDER BY name`

// StockedProductIDs returns ids of products holding stock, in name order.
func (r *ValuationRepo) StockedProductIDs(ctx context.Context) ([]id.ID, error) {
	var ids []id.ID
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &ids, stockedProductsSQL); err != nil {
		return nil, fmt.Errorf("select stocked products: %w", err)
	}
	return ids, nil
}
