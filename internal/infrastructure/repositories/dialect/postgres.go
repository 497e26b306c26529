package dialect

import (
	"fmt"
	"strconv"

	"templatesync-pg-backend/internal/infrastructure/repositories"
)

// Postgres dialect
type Postgres struct{}

// Name implements Dialect
func (Postgres) Name() string {
	return DriverPostgres
}

// Placeholder implements Dialect
func (Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// ColumnType implements Dialect
func (Postgres) ColumnType(c repositories.Column) string {
	switch c.Kind {
	case repositories.ColID:
		return "bigint"
	case repositories.ColInt:
		return "integer"
	case repositories.ColFloat:
		return "double precision"
	case repositories.ColString:
		return fmt.Sprintf("varchar(%d)", c.Size)
	default:
		return "text"
	}
}

// CreateTableStatement implements Dialect
func (d Postgres) CreateTableStatement(t repositories.Table) string {
	return createTable(d, t, "")
}

// CreateIndexStatement implements Dialect
func (Postgres) CreateIndexStatement(t repositories.Table, idx repositories.Index) string {
	return createIndex(t, idx)
}

// RenameIndexStatement implements Dialect
func (Postgres) RenameIndexStatement(_ repositories.Table, oldName, newName string) string {
	return fmt.Sprintf("alter index %s rename to %s", oldName, newName)
}

// AddForeignKeyStatement implements Dialect
func (Postgres) AddForeignKeyStatement(t repositories.Table, n int, key repositories.ForeignKey) string {
	return addForeignKey(t, n, key)
}
