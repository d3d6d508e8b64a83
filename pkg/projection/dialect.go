package projection

import (
	"fmt"
	"math"
	"strings"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/schema"
)

// Dialect is the SQL flavour of a database driver.
type Dialect string

const (
	SQLite Dialect = "sqlite3"
	MySQL  Dialect = "mysql"
)

// maxParams bounds the placeholders in one statement.
var maxParams = map[Dialect]int{
	SQLite: 32766,
	MySQL:  65535,
}

// ParseDialect maps a driver name to its dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(strings.ToLower(driver)) {
	case SQLite:
		return SQLite, nil
	case MySQL:
		return MySQL, nil
	}
	return "", fmt.Errorf("unsupported sql driver %q", driver)
}

// Quote quotes an identifier.
func (d Dialect) Quote(ident string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// ColumnType returns the column type for a field kind.
func (d Dialect) ColumnType(k schema.Kind) string {
	if d == SQLite {
		switch k {
		case schema.Float32:
			return "REAL"
		case schema.StringRef:
			return "TEXT"
		default:
			return "INTEGER"
		}
	}

	switch k {
	case schema.Int32:
		return "INT"
	case schema.UInt32:
		return "INT UNSIGNED"
	case schema.UInt8:
		return "TINYINT UNSIGNED"
	case schema.UInt64:
		return "BIGINT UNSIGNED"
	case schema.Int64:
		return "BIGINT"
	case schema.Float32:
		return "FLOAT"
	default:
		return "TEXT"
	}
}

// Arg converts a decoded value to a statement argument. SQLite has no
// unsigned 64-bit integers, so values above MaxInt64 keep their bit pattern.
func (d Dialect) Arg(v codec.Value) any {
	switch v.Type() {
	case codec.UintValue:
		if d == SQLite && v.Uint() > math.MaxInt64 {
			return int64(v.Uint())
		}
		return v.Uint()
	case codec.IntValue:
		return v.Int()
	case codec.FloatValue:
		return v.Float()
	case codec.StringValue:
		return v.Str()
	}
	return nil
}

// CreateTableSQL returns the CREATE TABLE statement for cols.
func (d Dialect) CreateTableSQL(table string, s *schema.Schema, cols []codec.Column) string {
	pk := s.PrimaryKey()

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", d.Quote(table))
	for i, col := range cols {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "\t%s %s", d.Quote(ColumnName(col.Name)), d.ColumnType(col.Kind))
		if pk != "" && col.Name == pk {
			b.WriteString(" NOT NULL PRIMARY KEY")
		}
	}
	b.WriteString("\n)")
	return b.String()
}

// DropTableSQL returns the DROP TABLE statement for table.
func (d Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

// InsertSQL returns a multi-row INSERT for rows records of cols.
func (d Dialect) InsertSQL(table string, cols []codec.Column, rows int) string {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = d.Quote(ColumnName(col.Name))
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", d.Quote(table), strings.Join(names, ", "))
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
	}
	return b.String()
}

// rowsPerStatement caps batchSize so a statement stays under the
// placeholder limit.
func (d Dialect) rowsPerStatement(batchSize, columns int) int {
	if columns == 0 {
		return batchSize
	}
	limit := maxParams[d] / columns
	if limit < 1 {
		limit = 1
	}
	if batchSize > limit {
		return limit
	}
	return batchSize
}
