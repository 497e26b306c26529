package dialect

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/ports"
)

// Args collects bind parameters while a statement is rendered
type Args struct {
	d    Dialect
	vals []any
}

// NewArgs starts an empty parameter list for d
func NewArgs(d Dialect) *Args {
	return &Args{d: d}
}

// Add appends v and returns its placeholder
func (a *Args) Add(v any) string {
	a.vals = append(a.vals, v)
	return a.d.Placeholder(len(a.vals))
}

// In renders "column in (...)" over ids
func (a *Args) In(column string, ids []uint64) string {
	ph := make([]string, len(ids))
	for i, id := range ids {
		ph[i] = a.Add(id)
	}
	return fmt.Sprintf("%s in (%s)", column, strings.Join(ph, ","))
}

// InStrings renders "column in (...)" over strings
func (a *Args) InStrings(column string, values []string) string {
	ph := make([]string, len(values))
	for i, v := range values {
		ph[i] = a.Add(v)
	}
	return fmt.Sprintf("%s in (%s)", column, strings.Join(ph, ","))
}

// Values returns the collected parameters
func (a *Args) Values() []any {
	return a.vals
}

// Render turns a buffered statement into SQL with bind parameters
func Render(d Dialect, stmt ports.Statement) (string, []any, error) {
	args := NewArgs(d)
	switch s := stmt.(type) {
	case ports.UpdateStatement:
		if len(s.Set) == 0 {
			return "", nil, errors.Errorf("empty update of %s", s.TableID)
		}
		set := make([]string, len(s.Set))
		for i, a := range s.Set {
			set[i] = a.Column + "=" + args.Add(a.Value)
		}
		sql := fmt.Sprintf("update %s set %s where %s=%s",
			s.TableID, strings.Join(set, ","), s.KeyColumn, args.Add(s.Key))
		return sql, args.Values(), nil
	case ports.DeleteStatement:
		if len(s.Keys) == 0 {
			return "", nil, errors.Errorf("empty delete from %s", s.TableID)
		}
		sql := fmt.Sprintf("delete from %s where %s", s.TableID, args.In(s.KeyColumn, s.Keys))
		return sql, args.Values(), nil
	}
	return "", nil, errors.Errorf("unsupported statement %T", stmt)
}

// InsertStatement renders a multi-row insert
func InsertStatement(d Dialect, table string, columns []string, rows [][]any) (string, []any) {
	args := NewArgs(d)
	tuples := make([]string, len(rows))
	for i, row := range rows {
		ph := make([]string, len(row))
		for j, v := range row {
			ph[j] = args.Add(v)
		}
		tuples[i] = "(" + strings.Join(ph, ",") + ")"
	}
	sql := fmt.Sprintf("insert into %s (%s) values %s", table, strings.Join(columns, ","), strings.Join(tuples, ","))
	return sql, args.Values()
}
