package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/persistence"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// table gives one entity table the generic collection contract. A
// descriptor supplies the column list, scan and insert-value functions;
// the SQL is built here with column names checked against the
// descriptor's whitelist.
type table[T any, ID comparable] struct {
	db         *sql.DB
	name       string
	cols       []string
	scan       func(rowScanner) (T, error)
	insertCols []string
	insertVals func(T) []any
	conflict   []string // uniqueness key used by Upsert
}

func (t *table[T, ID]) colSet() map[string]bool {
	set := make(map[string]bool, len(t.cols))
	for _, c := range t.cols {
		set[c] = true
	}
	return set
}

func (t *table[T, ID]) selectClause() string {
	quoted := make([]string, len(t.cols))
	for i, c := range t.cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), pq.QuoteIdentifier(t.name))
}

func (t *table[T, ID]) FetchOne(ctx context.Context, id ID) (T, error) {
	var zero T
	row := t.db.QueryRowContext(ctx, t.selectClause()+" WHERE id = $1", id)
	rec, err := t.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, internal_errors.NotFound
		}
		return zero, fmt.Errorf("failed to fetch %s row: %w", t.name, err)
	}
	return rec, nil
}

func (t *table[T, ID]) FetchMany(ctx context.Context, filter persistence.Filter, order persistence.Order) ([]T, error) {
	where, args, err := t.whereClause(filter, 1)
	if err != nil {
		return nil, err
	}
	query := t.selectClause() + where
	if order.Field != "" {
		if !t.colSet()[order.Field] {
			return nil, fmt.Errorf("unknown order column %q for %s", order.Field, t.name)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", pq.QuoteIdentifier(order.Field), dir)
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

func (t *table[T, ID]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	cols := make([]string, len(t.insertCols))
	placeholders := make([]string, len(t.insertCols))
	for i, c := range t.insertCols {
		cols[i] = pq.QuoteIdentifier(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		pq.QuoteIdentifier(t.name),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		t.returningClause(),
	)
	row := t.db.QueryRowContext(ctx, query, t.insertVals(rec)...)
	inserted, err := t.scan(row)
	if err != nil {
		return zero, fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	return inserted, nil
}

func (t *table[T, ID]) Update(ctx context.Context, id ID, patch persistence.Patch) (T, error) {
	var zero T
	set, args, err := t.setClause(patch)
	if err != nil {
		return zero, err
	}
	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		pq.QuoteIdentifier(t.name), set, len(args), t.returningClause(),
	)
	row := t.db.QueryRowContext(ctx, query, args...)
	updated, err := t.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, internal_errors.NotFound
		}
		return zero, fmt.Errorf("failed to update %s: %w", t.name, err)
	}
	return updated, nil
}

func (t *table[T, ID]) Delete(ctx context.Context, id ID) error {
	res, err := t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", pq.QuoteIdentifier(t.name)), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return internal_errors.NotFound
	}
	return nil
}

func (t *table[T, ID]) DeleteWhere(ctx context.Context, filter persistence.Filter) error {
	where, args, err := t.whereClause(filter, 1)
	if err != nil {
		return err
	}
	_, err = t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", pq.QuoteIdentifier(t.name))+where, args...)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	return nil
}

func (t *table[T, ID]) Upsert(ctx context.Context, key persistence.Filter, rec T) (T, error) {
	var zero T
	conflict := t.conflict
	if len(conflict) == 0 {
		conflict = sortedKeys(key)
	}
	colSet := t.colSet()
	quotedConflict := make([]string, len(conflict))
	for i, c := range conflict {
		if !colSet[c] {
			return zero, fmt.Errorf("unknown conflict column %q for %s", c, t.name)
		}
		quotedConflict[i] = pq.QuoteIdentifier(c)
	}

	cols := make([]string, len(t.insertCols))
	placeholders := make([]string, len(t.insertCols))
	updates := make([]string, 0, len(t.insertCols))
	for i, c := range t.insertCols {
		cols[i] = pq.QuoteIdentifier(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", pq.QuoteIdentifier(c), pq.QuoteIdentifier(c)))
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING %s",
		pq.QuoteIdentifier(t.name),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(quotedConflict, ", "),
		strings.Join(updates, ", "),
		t.returningClause(),
	)
	row := t.db.QueryRowContext(ctx, query, t.insertVals(rec)...)
	upserted, err := t.scan(row)
	if err != nil {
		return zero, fmt.Errorf("failed to upsert into %s: %w", t.name, err)
	}
	return upserted, nil
}

func (t *table[T, ID]) returningClause() string {
	quoted := make([]string, len(t.cols))
	for i, c := range t.cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

func (t *table[T, ID]) whereClause(filter persistence.Filter, firstArg int) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	colSet := t.colSet()
	conds := make([]string, 0, len(filter))
	args := make([]any, 0, len(filter))
	for _, field := range sortedKeys(filter) {
		if !colSet[field] {
			return "", nil, fmt.Errorf("unknown filter column %q for %s", field, t.name)
		}
		if ids, ok := filter[field].([]int64); ok {
			conds = append(conds, fmt.Sprintf("%s = ANY($%d)", pq.QuoteIdentifier(field), firstArg+len(args)))
			args = append(args, pq.Array(ids))
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(field), firstArg+len(args)))
		args = append(args, filter[field])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (t *table[T, ID]) setClause(patch persistence.Patch) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, &internal_errors.ValidationError{Message: "empty patch"}
	}
	colSet := t.colSet()
	sets := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch))
	for _, field := range sortedKeys(persistence.Filter(patch)) {
		if !colSet[field] {
			return "", nil, fmt.Errorf("unknown patch column %q for %s", field, t.name)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(field), len(args)+1))
		args = append(args, patch[field])
	}
	return strings.Join(sets, ", "), args, nil
}

func sortedKeys(f persistence.Filter) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
