package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"almacen/internal/core/id"
	"almacen/internal/domain"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/infrastructure/storage/postgres"
)

const (
	purchaseTable      = "doc_purchases"
	purchaseLinesTable = "doc_purchase_lines"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Purchase]
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			purchaseTable,
			purchaseLinesTable,
			postgres.ExtractDBColumns[purchase.Purchase](),
			postgres.ExtractDBColumns[purchase.Line](),
			func() *purchase.Purchase { return &purchase.Purchase{} },
		),
	}
}

// GetLines retrieves the lines of a purchase ordered by line number.
func (r *PurchaseRepo) GetLines(ctx context.Context, docID id.ID) ([]purchase.Line, error) {
	var lines []purchase.Line
	if err := r.selectLines(ctx, docID, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SaveLines replaces the lines of a purchase.
func (r *PurchaseRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchase.Line) error {
	data := make([]map[string]any, 0, len(lines))
	for i := range lines {
		data = append(data, postgres.StructToMap(&lines[i]))
	}
	return r.saveLines(ctx, docID, data)
}

// ExistsBySupplierDoc reports whether the supplier invoice is already registered.
func (r *PurchaseRepo) ExistsBySupplierDoc(ctx context.Context, supplierID id.ID, series, number string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(purchaseTable).
		Where(squirrel.Eq{
			"supplier_id": supplierID,
			"series":      series,
			"number":      number,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("exists by supplier doc: %w", err)
	}

	return true, nil
}

// List retrieves purchases matching the filter, without lines.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	q := r.baseSelect()

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+purchaseLinesTable+" l WHERE l.document_id = "+purchaseTable+".id AND l.product_id = ?)",
			*filter.ProductID,
		))
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"series": pattern},
			squirrel.ILike{"number": pattern},
		})
	}

	return r.list(ctx, q, filter.ListFilter)
}
