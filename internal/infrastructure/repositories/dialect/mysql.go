package dialect

import (
	"fmt"

	"templatesync-pg-backend/internal/infrastructure/repositories"
)

// MySQL dialect
type MySQL struct{}

// Name implements Dialect
func (MySQL) Name() string {
	return DriverMySQL
}

// Placeholder implements Dialect
func (MySQL) Placeholder(int) string {
	return "?"
}

// ColumnType implements Dialect
func (MySQL) ColumnType(c repositories.Column) string {
	switch c.Kind {
	case repositories.ColID:
		return "bigint unsigned"
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
func (d MySQL) CreateTableStatement(t repositories.Table) string {
	return createTable(d, t, " engine=InnoDB")
}

// CreateIndexStatement implements Dialect
func (MySQL) CreateIndexStatement(t repositories.Table, idx repositories.Index) string {
	return createIndex(t, idx)
}

// RenameIndexStatement implements Dialect
func (MySQL) RenameIndexStatement(t repositories.Table, oldName, newName string) string {
	return fmt.Sprintf("alter table %s rename index %s to %s", t.Name(), oldName, newName)
}

// AddForeignKeyStatement implements Dialect
func (MySQL) AddForeignKeyStatement(t repositories.Table, n int, key repositories.ForeignKey) string {
	return addForeignKey(t, n, key)
}
