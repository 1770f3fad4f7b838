package sqlgen

import (
	"fmt"
	"strings"

	"github.com/jarifuri/org-sql/internal/schema"
)

// Row is a set of column→value pairs for one table. Insert emits the
// columns in schema-declared order, so map iteration order never leaks
// into the output.
type Row map[string]any

// Compiler renders statements against one registry and dialect.
type Compiler struct {
	schema  schema.Schema
	dialect Dialect
}

// New returns a compiler for the given registry and dialect.
func New(s schema.Schema, d Dialect) *Compiler {
	return &Compiler{schema: s, dialect: d}
}

// Dialect reports the dialect this compiler emits.
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

func (c *Compiler) table(name string) (schema.Table, error) {
	t, ok := c.schema.Table(name)
	if !ok {
		return schema.Table{}, fmt.Errorf("sqlgen: table %q: %w", name, ErrSchemaMismatch)
	}
	return t, nil
}

// formatColumn validates the column against the registry (including
// enum membership) and renders the value.
func (c *Compiler) formatColumn(t schema.Table, name string, v any) (string, error) {
	col, ok := t.Column(name)
	if !ok {
		return "", fmt.Errorf("sqlgen: column %s.%s: %w", t.Name, name, ErrSchemaMismatch)
	}
	if col.Type == schema.TypeEnum && v != nil {
		s, _ := v.(string)
		allowed := false
		for _, a := range col.Allowed {
			if a == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", fmt.Errorf("sqlgen: enum value %v for %s.%s: %w", v, t.Name, name, ErrSchemaMismatch)
		}
	}
	return FormatValue(c.dialect, col.Type, v)
}

// Insert renders an INSERT for one row. Only columns present in row
// are emitted, in the order the schema declares them.
func (c *Compiler) Insert(table string, row Row) (string, error) {
	t, err := c.table(table)
	if err != nil {
		return "", err
	}
	for name := range row {
		if _, ok := t.Column(name); !ok {
			return "", fmt.Errorf("sqlgen: column %s.%s: %w", table, name, ErrSchemaMismatch)
		}
	}
	var cols, vals []string
	for _, col := range t.Columns {
		v, ok := row[col.Name]
		if !ok {
			continue
		}
		lit, err := c.formatColumn(t, col.Name, v)
		if err != nil {
			return "", err
		}
		cols = append(cols, col.Name)
		vals = append(vals, lit)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		table, strings.Join(cols, ","), strings.Join(vals, ",")), nil
}

// pairs renders assignments in schema column order, joined by sep.
func (c *Compiler) pairs(t schema.Table, vals Row, sep string) (string, error) {
	for name := range vals {
		if _, ok := t.Column(name); !ok {
			return "", fmt.Errorf("sqlgen: column %s.%s: %w", t.Name, name, ErrSchemaMismatch)
		}
	}
	var out []string
	for _, col := range t.Columns {
		v, ok := vals[col.Name]
		if !ok {
			continue
		}
		lit, err := c.formatColumn(t, col.Name, v)
		if err != nil {
			return "", err
		}
		out = append(out, col.Name+"="+lit)
	}
	return strings.Join(out, sep), nil
}

// Update renders an UPDATE. The WHERE clause is omitted entirely when
// where is empty.
func (c *Compiler) Update(table string, set, where Row) (string, error) {
	t, err := c.table(table)
	if err != nil {
		return "", err
	}
	setSQL, err := c.pairs(t, set, ",")
	if err != nil {
		return "", err
	}
	whereSQL, err := c.pairs(t, where, " AND ")
	if err != nil {
		return "", err
	}
	if whereSQL == "" {
		return fmt.Sprintf("UPDATE %s SET %s;", table, setSQL), nil
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s;", table, setSQL, whereSQL), nil
}

// Delete renders a DELETE, with the WHERE clause omitted when where is
// empty.
func (c *Compiler) Delete(table string, where Row) (string, error) {
	t, err := c.table(table)
	if err != nil {
		return "", err
	}
	whereSQL, err := c.pairs(t, where, " AND ")
	if err != nil {
		return "", err
	}
	if whereSQL == "" {
		return fmt.Sprintf("DELETE FROM %s;", table), nil
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s;", table, whereSQL), nil
}

// Select renders a SELECT over an optional column subset.
func (c *Compiler) Select(table string, columns []string, where Row) (string, error) {
	t, err := c.table(table)
	if err != nil {
		return "", err
	}
	colSQL := "*"
	if len(columns) > 0 {
		for _, name := range columns {
			if _, ok := t.Column(name); !ok {
				return "", fmt.Errorf("sqlgen: column %s.%s: %w", table, name, ErrSchemaMismatch)
			}
		}
		colSQL = strings.Join(columns, ",")
	}
	whereSQL, err := c.pairs(t, where, " AND ")
	if err != nil {
		return "", err
	}
	if whereSQL == "" {
		return fmt.Sprintf("SELECT %s FROM %s;", colSQL, table), nil
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s;", colSQL, table, whereSQL), nil
}

// InsertAll renders INSERTs for every row in rows, table by table in
// schema declaration order so parent rows always precede the rows that
// reference them. A table name absent from the registry is an
// ErrSchemaMismatch.
func (c *Compiler) InsertAll(rows map[string][]Row) ([]string, error) {
	for name := range rows {
		if _, ok := c.schema.Table(name); !ok {
			return nil, fmt.Errorf("sqlgen: table %q: %w", name, ErrSchemaMismatch)
		}
	}
	var out []string
	for _, t := range c.schema.Tables {
		for _, row := range rows[t.Name] {
			stmt, err := c.Insert(t.Name, row)
			if err != nil {
				return nil, err
			}
			out = append(out, stmt)
		}
	}
	return out, nil
}

// CreateSchema renders the DDL for the whole registry. For postgres,
// every enum column gets a CREATE TYPE statement, all of them emitted
// before any table, in schema declaration order.
func (c *Compiler) CreateSchema() []string {
	var out []string
	if c.dialect == Postgres {
		for _, t := range c.schema.Tables {
			for _, col := range t.Columns {
				if col.Type != schema.TypeEnum {
					continue
				}
				vals := make([]string, len(col.Allowed))
				for i, a := range col.Allowed {
					vals[i] = "'" + a + "'"
				}
				out = append(out, fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);",
					EnumTypeName(t.Name, col.Name), strings.Join(vals, ",")))
			}
		}
	}
	for _, t := range c.schema.Tables {
		var defs []string
		for _, col := range t.Columns {
			defs = append(defs, col.Name+" "+FormatType(c.dialect, t.Name, col))
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(t.PrimaryKey, ",")+")")
		for _, fk := range t.ForeignKeys {
			defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s",
				strings.Join(fk.Columns, ","), fk.RefTable,
				strings.Join(fk.RefColumns, ","), fk.OnDelete, fk.OnUpdate))
		}
		out = append(out, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s);",
			t.Name, strings.Join(defs, ",")))
	}
	return out
}

// Transaction wraps statements in a transaction script. SQLite needs
// the foreign-key pragma enabled per connection before the cascades in
// the schema take effect.
func (c *Compiler) Transaction(statements []string) string {
	var b strings.Builder
	if c.dialect == SQLite {
		b.WriteString("PRAGMA foreign_keys = ON;\n")
	}
	b.WriteString("BEGIN TRANSACTION;\n")
	for _, s := range statements {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("COMMIT;")
	return b.String()
}
