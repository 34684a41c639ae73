package store

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL differences between the supported backends.
type Dialect struct {
	Name       string
	DriverName string
	// Serial is the column definition of an auto-generated primary key.
	Serial string
	// Integer is the type of a reference to a Serial column.
	Integer string
	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		DriverName:  "sqlite",
		Serial:      "INTEGER PRIMARY KEY AUTOINCREMENT",
		Integer:     "INTEGER",
		placeholder: func(int) string { return "?" },
	}
	Postgres = Dialect{
		Name:        "postgres",
		DriverName:  "pgx",
		Serial:      "BIGSERIAL PRIMARY KEY",
		Integer:     "BIGINT",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

// Placeholders returns n comma-separated bind parameters starting at from.
func (d Dialect) Placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.placeholder(from + i)
	}
	return strings.Join(ps, ", ")
}

// Param returns the n-th bind parameter.
func (d Dialect) Param(n int) string {
	return d.placeholder(n)
}

// ColumnKind selects how a column is rendered in DDL.
type ColumnKind int

const (
	KindSerial ColumnKind = iota
	KindVarchar
	KindReference
)

// Column is one column of a table definition.
type Column struct {
	Name     string
	Kind     ColumnKind
	Length   int // KindVarchar only
	Nullable bool
	Default  string // literal SQL default, e.g. 'RU'
}

// Table is an explicit table definition shared by all dialects.
type Table struct {
	Name    string
	Columns []Column
	Indexes []string
}

// PlacesTable is the schema of the imported administrative units.
var PlacesTable = Table{
	Name: "places",
	Columns: []Column{
		{Name: "id", Kind: KindSerial},
		{Name: "title", Kind: KindVarchar, Length: 255},
		{Name: "title_with_pronunciation", Kind: KindVarchar, Length: 255},
		{Name: "country_id", Kind: KindVarchar, Length: 2, Default: "'RU'"},
		{Name: "parent_place_id", Kind: KindReference, Nullable: true},
		{Name: "okato_code", Kind: KindVarchar, Length: 255, Nullable: true},
	},
	Indexes: []string{"parent_place_id", "okato_code"},
}

// DDL returns the CREATE statements for the table, index statements last.
func (t Table) DDL(d Dialect) []string {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		var b strings.Builder
		b.WriteString(c.Name)
		b.WriteByte(' ')
		switch c.Kind {
		case KindSerial:
			b.WriteString(d.Serial)
		case KindVarchar:
			fmt.Fprintf(&b, "VARCHAR(%d)", c.Length)
		case KindReference:
			fmt.Fprintf(&b, "%s REFERENCES %s(id)", d.Integer, t.Name)
		}
		if c.Kind != KindSerial && !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		if c.Default != "" {
			b.WriteString(" DEFAULT " + c.Default)
		}
		defs = append(defs, b.String())
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.Name, strings.Join(defs, ",\n\t"))}
	for _, col := range t.Indexes {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", t.Name, col, t.Name, col))
	}
	return stmts
}

// insertColumns lists every column except the generated key.
func (t Table) insertColumns() []string {
	var cols []string
	for _, c := range t.Columns {
		if c.Kind != KindSerial {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// InsertReturningID renders an INSERT of all non-generated columns that
// returns the generated id.
func (t Table) InsertReturningID(d Dialect) string {
	cols := t.insertColumns()
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.Name, strings.Join(cols, ", "), d.Placeholders(1, len(cols)))
}

// SelectColumns returns the column list for SELECT statements.
func (t Table) SelectColumns() string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
