package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

// immutableColumns are set on insert and never patched.
var immutableColumns = []string{"id", "owner_id", "created_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

// Table maps one record type onto a table. Column names double as the
// field names accepted by filters, orderings and patches.
type Table[T any] struct {
	Name     string
	Columns  []string
	Values   func(record *T) []any
	Scan     func(row rowScanner) (T, error)
	NotFound error
}

// Collection is a generic entity store over one table.
type Collection[T any] struct {
	db    *sql.DB
	table Table[T]
	sb    squirrel.StatementBuilderType
}

func NewCollection[T any](db *sql.DB, table Table[T]) *Collection[T] {
	return &Collection[T]{
		db:    db,
		table: table,
		sb:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (c *Collection[T]) Create(ctx context.Context, record *T) error {
	query, args, err := c.sb.Insert(c.table.Name).
		Columns(c.table.Columns...).
		Values(c.table.Values(record)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s: %w", c.table.Name, err)
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", c.table.Name, err)
	}
	return nil
}

func (c *Collection[T]) List(ctx context.Context, order domain.Order, limit int) ([]T, error) {
	return c.Filter(ctx, nil, order, limit)
}

// Filter returns the records matching every predicate field by equality.
func (c *Collection[T]) Filter(ctx context.Context, where domain.Predicate, order domain.Order, limit int) ([]T, error) {
	builder := c.sb.Select(c.table.Columns...).From(c.table.Name)
	if len(where) > 0 {
		eq := squirrel.Eq{}
		for field, value := range where {
			if !c.hasColumn(field) {
				return nil, domain.WrapError(domain.ErrInvalidInput, "filter "+c.table.Name, fmt.Errorf("unknown field %q", field))
			}
			eq[field] = value
		}
		builder = builder.Where(eq)
	}
	if order != "" {
		if !c.hasColumn(order.Field()) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "filter "+c.table.Name, fmt.Errorf("unknown order field %q", order.Field()))
		}
		direction := " ASC"
		if order.Descending() {
			direction = " DESC"
		}
		builder = builder.OrderBy(order.Field() + direction)
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", c.table.Name, err)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", c.table.Name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		record, err := c.table.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table.Name, err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.table.Name, err)
	}
	return out, nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, patch domain.Patch) error {
	if len(patch) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "update "+c.table.Name, fmt.Errorf("patch is empty"))
	}
	set := make(map[string]any, len(patch))
	for field, value := range patch {
		if !c.hasColumn(field) || slices.Contains(immutableColumns, field) {
			return domain.WrapError(domain.ErrInvalidInput, "update "+c.table.Name, fmt.Errorf("field %q is not patchable", field))
		}
		set[field] = value
	}

	query, args, err := c.sb.Update(c.table.Name).
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", c.table.Name, err)
	}
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", c.table.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rows affected: %w", c.table.Name, err)
	}
	if affected == 0 {
		return domain.WrapError(c.notFound(), "update "+c.table.Name, fmt.Errorf("id %s", id))
	}
	return nil
}

func (c *Collection[T]) hasColumn(name string) bool {
	return slices.Contains(c.table.Columns, name)
}

func (c *Collection[T]) notFound() error {
	if c.table.NotFound != nil {
		return c.table.NotFound
	}
	return domain.ErrNotFound
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
