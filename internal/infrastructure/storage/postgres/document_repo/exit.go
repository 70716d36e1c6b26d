package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"almacen/internal/core/id"
	"almacen/internal/domain"
	"almacen/internal/domain/documents/exit"
	"almacen/internal/infrastructure/storage/postgres"
)

const (
	exitTable      = "doc_exits"
	exitLinesTable = "doc_exit_lines"
)

// ExitRepo implements exit.Repository.
type ExitRepo struct {
	*BaseDocumentRepo[*exit.Exit]
}

var _ exit.Repository = (*ExitRepo)(nil)

// NewExitRepo creates a new exit repository.
func NewExitRepo(txm *postgres.TxManager) *ExitRepo {
	return &ExitRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			exitTable,
			exitLinesTable,
			postgres.ExtractDBColumns[exit.Exit](),
			postgres.ExtractDBColumns[exit.Line](),
			func() *exit.Exit { return &exit.Exit{} },
		),
	}
}

// GetLines retrieves the lines of an exit ordered by line number.
func (r *ExitRepo) GetLines(ctx context.Context, docID id.ID) ([]exit.Line, error) {
	var lines []exit.Line
	if err := r.selectLines(ctx, docID, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SaveLines replaces the lines of an exit.
func (r *ExitRepo) SaveLines(ctx context.Context, docID id.ID, lines []exit.Line) error {
	data := make([]map[string]any, 0, len(lines))
	for i := range lines {
		data = append(data, postgres.StructToMap(&lines[i]))
	}
	return r.saveLines(ctx, docID, data)
}

// List retrieves exits matching the filter, without lines.
func (r *ExitRepo) List(ctx context.Context, filter exit.ListFilter) (domain.ListResult[*exit.Exit], error) {
	q := r.baseSelect()

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+exitLinesTable+" l WHERE l.document_id = "+exitTable+".id AND l.warehouse_id = ?)",
			*filter.WarehouseID,
		))
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+exitLinesTable+" l WHERE l.document_id = "+exitTable+".id AND l.product_id = ?)",
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
		q = q.Where(squirrel.ILike{"reason": "%" + filter.Search + "%"})
	}

	return r.list(ctx, q, filter.ListFilter)
}
