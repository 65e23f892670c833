// Package engine mirrors the combined table into an in-memory DuckDB
// database so operators can explore it with ad-hoc SQL.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"socio-dash/internal/dataset"
	"socio-dash/internal/domain"
)

// TableName is the name of the mirrored table inside DuckDB.
const TableName = "combined"

// Mirror is a read-only DuckDB copy of the combined table.
type Mirror struct {
	db     *sql.DB
	logger *slog.Logger
}

// columnType picks the DuckDB type for a column: INTEGER for the year key,
// VARCHAR when any cell is text, DOUBLE otherwise.
func columnType(t *dataset.Table, c int, name string) string {
	if name == dataset.ColTime {
		return "INTEGER"
	}
	for i := 0; i < t.Len(); i++ {
		if t.At(i, c).Kind() == dataset.KindString {
			return "VARCHAR"
		}
	}
	return "DOUBLE"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// NewMirror creates the combined table in db and copies every row into it
// inside one transaction. db is typically sql.Open("duckdb", "").
func NewMirror(ctx context.Context, db *sql.DB, t *dataset.Table, logger *slog.Logger) (*Mirror, error) {
	cols := t.Columns()
	types := make([]string, len(cols))
	defs := make([]string, len(cols))
	for c, name := range cols {
		types[c] = columnType(t, c, name)
		defs[c] = quoteIdent(name) + " " + types[c]
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mirror load: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ddl := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", quoteIdent(TableName), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create mirror table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(TableName), placeholders))
	if err != nil {
		return nil, fmt.Errorf("prepare mirror insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	args := make([]any, len(cols))
	for i := 0; i < t.Len(); i++ {
		for c := range cols {
			v := t.At(i, c)
			switch {
			case v.IsNull():
				args[c] = nil
			case types[c] == "INTEGER":
				n, _ := v.Int()
				args[c] = int32(n)
			case types[c] == "VARCHAR":
				args[c] = v.Text()
			default:
				args[c], _ = v.Float()
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return nil, fmt.Errorf("insert mirror row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mirror load: %w", err)
	}

	logger.Info("duckdb mirror loaded", "table", TableName, "rows", t.Len(), "columns", len(cols))
	return &Mirror{db: db, logger: logger}, nil
}

var readOnlyPrefixes = []string{"SELECT", "WITH", "DESCRIBE", "SUMMARIZE", "FROM", "SHOW", "EXPLAIN"}

// IsReadOnly reports whether a statement starts with a read-only keyword.
// The check is lexical; the mirror holds nothing but a copy of the combined
// table, so it only guards against accidental writes.
func IsReadOnly(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, p := range readOnlyPrefixes {
		if strings.HasPrefix(q, p) && (len(q) == len(p) || !isIdentChar(q[len(p)])) {
			return !strings.Contains(strings.TrimSuffix(q, ";"), ";")
		}
	}
	return false
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Query runs a read-only statement and returns its result as a table.
func (m *Mirror) Query(ctx context.Context, query string) (*dataset.Table, error) {
	if !IsReadOnly(query) {
		return nil, domain.ErrValidation("only single read-only statements are accepted")
	}
	start := time.Now()
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	b, err := dataset.NewBuilder(cols...)
	if err != nil {
		return nil, domain.ErrValidation("query result: %v", err)
	}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		cells := make([]dataset.Value, len(cols))
		for i, v := range vals {
			cells[i] = toValue(v)
		}
		if err := b.Append(cells...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	m.logger.Debug("mirror query", "rows", b.Len(), "elapsed", time.Since(start))
	return b.Build(), nil
}

func toValue(v any) dataset.Value {
	switch x := v.(type) {
	case nil:
		return dataset.Null
	case float64:
		return dataset.Number(x)
	case float32:
		return dataset.Number(float64(x))
	case int:
		return dataset.Number(float64(x))
	case int8:
		return dataset.Number(float64(x))
	case int16:
		return dataset.Number(float64(x))
	case int32:
		return dataset.Number(float64(x))
	case int64:
		return dataset.Number(float64(x))
	case uint8:
		return dataset.Number(float64(x))
	case uint16:
		return dataset.Number(float64(x))
	case uint32:
		return dataset.Number(float64(x))
	case uint64:
		return dataset.Number(float64(x))
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return dataset.Number(f)
	case string:
		return dataset.String(x)
	case []byte:
		return dataset.String(string(x))
	case time.Time:
		return dataset.String(x.Format(time.RFC3339))
	default:
		return dataset.String(fmt.Sprint(x))
	}
}
