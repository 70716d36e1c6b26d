// Package document_repo provides PostgreSQL implementations for document
// repositories. Documents are header rows plus a table part of lines;
// registered documents are never updated or deleted.
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain"
	"almacen/internal/infrastructure/storage/postgres"
)

// BaseDocumentRepo provides common operations for document repositories.
// Embed this in specific document repositories.
type BaseDocumentRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	linesTable string
	docCols    []string
	lineCols   []string
	newFn      func() T
	inserter   *postgres.BatchInserter
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T any](
	txm *postgres.TxManager,
	tableName string,
	linesTable string,
	docCols []string,
	lineCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txm:        txm,
		tableName:  tableName,
		linesTable: linesTable,
		docCols:    docCols,
		lineCols:   lineCols,
		newFn:      newFn,
		inserter:   postgres.NewBatchInserter(txm),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the transaction from context, or the pool.
func (r *BaseDocumentRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts the document header using its "db" tags.
func (r *BaseDocumentRepo[T]) Create(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in document")
	}

	filteredData := make(map[string]any, len(r.docCols))
	for _, col := range r.docCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.docCols...).
		From(r.tableName)
}

// GetByID retrieves the document header by ID. Lines are loaded separately.
func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	doc := r.newFn()

	q := r.baseSelect().
		Where(squirrel.Eq{"id": docID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.tableName, docID.String())
		}
		return doc, fmt.Errorf("get by id: %w", err)
	}

	return doc, nil
}

// selectLines loads the table part ordered by line number into dest.
func (r *BaseDocumentRepo[T]) selectLines(ctx context.Context, docID id.ID, dest any) error {
	q := r.Builder().
		Select(r.lineCols...).
		From(r.linesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), dest, sql, args...); err != nil {
		return fmt.Errorf("select %s: %w", r.linesTable, err)
	}

	return nil
}

// saveLines replaces the table part of the document. Inside a transaction
// lines go through the COPY protocol; outside, a multi-VALUES insert.
func (r *BaseDocumentRepo[T]) saveLines(ctx context.Context, docID id.ID, lines []map[string]any) error {
	delQ := r.Builder().
		Delete(r.linesTable).
		Where(squirrel.Eq{"document_id": docID})

	sql, args, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s: %w", r.linesTable, err)
	}

	if len(lines) == 0 {
		return nil
	}

	insertCols := append([]string{"document_id"}, r.lineCols...)

	rows := make([][]any, 0, len(lines))
	for _, line := range lines {
		row := make([]any, 0, len(insertCols))
		row = append(row, docID)
		for _, col := range r.lineCols {
			row = append(row, line[col])
		}
		rows = append(rows, row)
	}

	if r.txm.GetTx(ctx) != nil {
		if _, err := r.inserter.CopyFromSlice(ctx, r.linesTable, insertCols, rows); err != nil {
			return fmt.Errorf("copy %s: %w", r.linesTable, err)
		}
		return nil
	}

	insQ := r.Builder().
		Insert(r.linesTable).
		Columns(insertCols...)
	for _, row := range rows {
		insQ = insQ.Values(row...)
	}

	sql, args, err = insQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.linesTable, err)
	}

	return nil
}

// list counts and pages a prepared document query.
func (r *BaseDocumentRepo[T]) list(ctx context.Context, q squirrel.SelectBuilder, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy...)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select %s: %w", r.tableName, err)
	}

	return result, nil
}

// parseOrderBy validates the order field against document columns.
// Documents default to newest first.
func (r *BaseDocumentRepo[T]) parseOrderBy(orderBy string) ([]string, error) {
	if orderBy == "" {
		return []string{"date DESC", "created_at DESC"}, nil
	}

	field := orderBy
	dir := "ASC"
	if strings.HasPrefix(orderBy, "-") {
		field = orderBy[1:]
		dir = "DESC"
	}

	for _, col := range r.docCols {
		if col == field {
			return []string{field + " " + dir, "created_at DESC"}, nil
		}
	}

	return nil, apperror.NewValidation("invalid order field").
		WithDetail("field", orderBy)
}
