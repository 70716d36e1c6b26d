package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"almacen/internal/core/id"
	"almacen/internal/domain"
	"almacen/internal/domain/documents/transfer"
	"almacen/internal/infrastructure/storage/postgres"
)

const (
	transferTable      = "doc_transfers"
	transferLinesTable = "doc_transfer_lines"
)

// TransferRepo implements transfer.Repository.
type TransferRepo struct {
	*BaseDocumentRepo[*transfer.Transfer]
}

var _ transfer.Repository = (*TransferRepo)(nil)

// NewTransferRepo creates a new transfer repository.
func NewTransferRepo(txm *postgres.TxManager) *TransferRepo {
	return &TransferRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			transferTable,
			transferLinesTable,
			postgres.ExtractDBColumns[transfer.Transfer](),
			postgres.ExtractDBColumns[transfer.Line](),
			func() *transfer.Transfer { return &transfer.Transfer{} },
		),
	}
}

// GetLines retrieves the lines of a transfer ordered by line number.
func (r *TransferRepo) GetLines(ctx context.Context, docID id.ID) ([]transfer.Line, error) {
	var lines []transfer.Line
	if err := r.selectLines(ctx, docID, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SaveLines replaces the lines of a transfer.
func (r *TransferRepo) SaveLines(ctx context.Context, docID id.ID, lines []transfer.Line) error {
	data := make([]map[string]any, 0, len(lines))
	for i := range lines {
		data = append(data, postgres.StructToMap(&lines[i]))
	}
	return r.saveLines(ctx, docID, data)
}

// List retrieves transfers matching the filter, without lines.
// WarehouseID matches either side of the movement.
func (r *TransferRepo) List(ctx context.Context, filter transfer.ListFilter) (domain.ListResult[*transfer.Transfer], error) {
	q := r.baseSelect()

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"from_warehouse_id": *filter.WarehouseID},
			squirrel.Eq{"to_warehouse_id": *filter.WarehouseID},
		})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+transferLinesTable+" l WHERE l.document_id = "+transferTable+".id AND l.product_id = ?)",
			*filter.ProductID,
		))
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	return r.list(ctx, q, filter.ListFilter)
}
