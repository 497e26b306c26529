package ports

import (
	"fmt"

	"templatesync-pg-backend/internal/domain/models"
)

// Statement is a buffered write
type Statement interface {
	Table() models.TableID
	fmt.Stringer
}

// Assignment is one column write
type Assignment struct {
	Column string
	Value  any
}

// UpdateStatement updates the listed columns of one row
type UpdateStatement struct {
	TableID   models.TableID
	Set       []Assignment
	KeyColumn string
	Key       uint64
}

// Table implements Statement
func (s UpdateStatement) Table() models.TableID {
	return s.TableID
}

// Columns returns the updated column names
func (s UpdateStatement) Columns() []string {
	cols := make([]string, len(s.Set))
	for i := range s.Set {
		cols[i] = s.Set[i].Column
	}
	return cols
}

// String implements fmt.Stringer
func (s UpdateStatement) String() string {
	return fmt.Sprintf("update %s set %v where %s=%d", s.TableID, s.Columns(), s.KeyColumn, s.Key)
}

// DeleteStatement deletes rows whose KeyColumn is one of Keys
type DeleteStatement struct {
	TableID   models.TableID
	KeyColumn string
	Keys      []uint64
}

// Table implements Statement
func (s DeleteStatement) Table() models.TableID {
	return s.TableID
}

// String implements fmt.Stringer
func (s DeleteStatement) String() string {
	return fmt.Sprintf("delete from %s where %s in %v", s.TableID, s.KeyColumn, s.Keys)
}
