package dialect

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Dialect renders engine specific SQL
type Dialect interface {
	Name() string
	// Placeholder returns the n-th (1-based) bind parameter
	Placeholder(n int) string
	ColumnType(c repositories.Column) string
	CreateTableStatement(t repositories.Table) string
	CreateIndexStatement(t repositories.Table, idx repositories.Index) string
	RenameIndexStatement(t repositories.Table, oldName, newName string) string
	AddForeignKeyStatement(t repositories.Table, n int, key repositories.ForeignKey) string
}

// New returns the dialect of driver
func New(driver string) (Dialect, error) {
	switch driver {
	case DriverPostgres:
		return Postgres{}, nil
	case DriverMySQL:
		return MySQL{}, nil
	}
	return nil, errors.Wrapf(ports.ErrUnknownDialect, "driver %q", driver)
}

// SchemaStatements renders the DDL creating tables with their indexes and
// then every foreign key.
func SchemaStatements(d Dialect, tables []repositories.Table) []string {
	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t.Name()] = true
	}
	var out []string
	for _, t := range tables {
		out = append(out, d.CreateTableStatement(t))
		for _, idx := range t.Indexes {
			out = append(out, d.CreateIndexStatement(t, idx))
		}
	}
	for _, t := range tables {
		for i, key := range t.ForeignKey {
			if !present[key.RefTable.String()] {
				continue
			}
			out = append(out, d.AddForeignKeyStatement(t, i+1, key))
		}
	}
	return out
}

func createTable(d Dialect, t repositories.Table, suffix string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "create table %s (\n", t.Name())
	for _, c := range t.Columns {
		fmt.Fprintf(&sb, "\t%s %s", c.Name, d.ColumnType(c))
		if c.Default != "" && c.Kind != repositories.ColText && !c.Nullable {
			fmt.Fprintf(&sb, " default %s", c.Default)
		}
		if c.Nullable {
			sb.WriteString(" null")
		} else {
			sb.WriteString(" not null")
		}
		sb.WriteString(",\n")
	}
	fmt.Fprintf(&sb, "\tprimary key (%s)\n)%s", strings.Join(t.PrimaryKey(), ","), suffix)
	return sb.String()
}

func createIndex(t repositories.Table, idx repositories.Index) string {
	unique := ""
	if idx.Unique {
		unique = "unique "
	}
	return fmt.Sprintf("create %sindex %s on %s (%s)", unique, idx.Name, t.Name(), strings.Join(idx.Columns, ","))
}

func addForeignKey(t repositories.Table, n int, key repositories.ForeignKey) string {
	stmt := fmt.Sprintf("alter table %s add constraint c_%s_%d foreign key (%s) references %s (%s)",
		t.Name(), t.Name(), n, key.Column, key.RefTable, key.RefColumn)
	if key.Cascade {
		stmt += " on delete cascade"
	}
	return stmt
}
