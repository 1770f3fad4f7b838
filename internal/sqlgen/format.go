// Package sqlgen renders schema-typed statements to dialect-specific
// SQL text. Formatting is a total function of (dialect, column type,
// value); nothing here touches a database connection.
package sqlgen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jarifuri/org-sql/internal/schema"
)

// Dialect selects the SQL flavor to emit.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ErrSchemaMismatch marks a reference to a table, column, or enum value
// the registry does not declare. This is a caller bug, not bad input:
// the compiler only ever receives rows assembled against the same
// registry, so callers treat it as fatal.
var ErrSchemaMismatch = errors.New("schema mismatch")

// FormatValue renders v as a SQL literal. nil renders as NULL in both
// dialects.
func FormatValue(d Dialect, t schema.ColumnType, v any) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	switch t {
	case schema.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("sqlgen: boolean column got %T", v)
		}
		if d == Postgres {
			if b {
				return "TRUE", nil
			}
			return "FALSE", nil
		}
		if b {
			return "1", nil
		}
		return "0", nil

	case schema.TypeInt:
		switch n := v.(type) {
		case int:
			return strconv.Itoa(n), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		default:
			return "", fmt.Errorf("sqlgen: integer column got %T", v)
		}

	case schema.TypeEnum:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("sqlgen: enum column got %T", v)
		}
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil

	case schema.TypeText:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("sqlgen: text column got %T", v)
		}
		return quoteText(d, s), nil
	}
	return "", fmt.Errorf("sqlgen: unknown column type %q", t)
}

// quoteText single-quotes s, doubling embedded quotes. Newlines are
// never placed inside a literal: each newline-delimited segment becomes
// its own literal, spliced with the dialect's newline function, so
// multi-line text survives without breaking the statement string.
func quoteText(d Dialect, s string) string {
	nl := "char(10)"
	if d == Postgres {
		nl = "chr(10)"
	}
	segs := strings.Split(s, "\n")
	for i, seg := range segs {
		segs[i] = "'" + strings.ReplaceAll(seg, "'", "''") + "'"
	}
	return strings.Join(segs, "||"+nl+"||")
}

// FormatType renders the DDL type name for a column. SQLite stores
// booleans and integers as INTEGER and enums as bare TEXT; postgres
// gets real BOOLEAN columns and a named enum type per enum column.
func FormatType(d Dialect, table string, col schema.Column) string {
	if d == Postgres {
		switch col.Type {
		case schema.TypeBool:
			return "BOOLEAN"
		case schema.TypeInt:
			return "INTEGER"
		case schema.TypeEnum:
			return EnumTypeName(table, col.Name)
		default:
			return "TEXT"
		}
	}
	switch col.Type {
	case schema.TypeBool, schema.TypeInt:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// EnumTypeName is the postgres CREATE TYPE name for an enum column.
func EnumTypeName(table, column string) string {
	return "enum_" + table + "_" + column
}
