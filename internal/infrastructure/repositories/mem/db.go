package mem

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories"
)

// ErrConstraint is returned when a write breaks a key or foreign key
var ErrConstraint = errors.New("constraint violation")

// Row is one stored row. Ids are uint64 (nil for NULL), integers int,
// doubles float64 and strings string.
type Row map[string]any

// ID returns an id column, 0 for NULL
func (r Row) ID(col string) uint64 {
	v, _ := r[col].(uint64)
	return v
}

// Int returns an integer column
func (r Row) Int(col string) int {
	v, _ := r[col].(int)
	return v
}

// Float returns a double column
func (r Row) Float(col string) float64 {
	v, _ := r[col].(float64)
	return v
}

// Str returns a string column
func (r Row) Str(col string) string {
	v, _ := r[col].(string)
	return v
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// snapshot is one consistent version of every table
type snapshot struct {
	tables map[models.TableID][]Row
	nextID map[models.TableID]uint64
}

func newSnapshot() *snapshot {
	return &snapshot{
		tables: make(map[models.TableID][]Row),
		nextID: make(map[models.TableID]uint64),
	}
}

func (s *snapshot) clone() *snapshot {
	out := newSnapshot()
	for tid, rows := range s.tables {
		cp := make([]Row, len(rows))
		for i, r := range rows {
			cp[i] = r.clone()
		}
		out.tables[tid] = cp
	}
	for tid, id := range s.nextID {
		out.nextID[tid] = id
	}
	return out
}

// rows returns rows of tid matching pred in insertion order
func (s *snapshot) rows(tid models.TableID, pred func(Row) bool) []Row {
	var out []Row
	for _, r := range s.tables[tid] {
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *snapshot) first(tid models.TableID, col string, v uint64) (Row, bool) {
	for _, r := range s.tables[tid] {
		if r.ID(col) == v && r[col] != nil {
			return r, true
		}
	}
	return nil, false
}

// insert stores a row after filling defaults and checking constraints
func (s *snapshot) insert(tid models.TableID, values Row, checkRefs bool) error {
	t, ok := repositories.TableByID(tid)
	if !ok {
		return errors.Errorf("unknown table %d", tid)
	}
	row := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		v, set := values[c.Name]
		if !set {
			row[c.Name] = defaultValue(c)
			continue
		}
		nv, err := normalize(c, v)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", t.Name(), c.Name)
		}
		row[c.Name] = nv
	}
	for name := range values {
		if _, found := columnOf(t, name); !found {
			return errors.Errorf("unknown column %s.%s", t.Name(), name)
		}
	}

	if t.Key != "" {
		if row[t.Key] == nil {
			return errors.Wrapf(ErrConstraint, "%s: null primary key", t.Name())
		}
		if _, dup := s.first(tid, t.Key, row.ID(t.Key)); dup {
			return errors.Wrapf(ErrConstraint, "%s: duplicate key %d", t.Name(), row.ID(t.Key))
		}
	}
	for _, idx := range t.Indexes {
		if idx.Unique && s.hasTuple(tid, idx.Columns, row) {
			return errors.Wrapf(ErrConstraint, "%s: duplicate %s", t.Name(), idx.Name)
		}
	}
	if checkRefs {
		for _, fk := range t.ForeignKey {
			id := row.ID(fk.Column)
			if row[fk.Column] == nil {
				continue
			}
			if _, found := s.first(fk.RefTable, fk.RefColumn, id); !found {
				return errors.Wrapf(ErrConstraint, "%s.%s=%d references missing %s",
					t.Name(), fk.Column, id, fk.RefTable)
			}
		}
	}
	s.tables[tid] = append(s.tables[tid], row)
	return nil
}

func (s *snapshot) hasTuple(tid models.TableID, cols []string, row Row) bool {
	for _, r := range s.tables[tid] {
		same := true
		for _, c := range cols {
			if r[c] != row[c] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

// update applies one UpdateStatement and returns the touched row count
func (s *snapshot) update(stmt ports.UpdateStatement) (int64, error) {
	t, ok := repositories.TableByID(stmt.TableID)
	if !ok {
		return 0, errors.Errorf("unknown table %d", stmt.TableID)
	}
	if len(stmt.Set) == 0 {
		return 0, errors.Errorf("empty update of %s", t.Name())
	}
	set := make(Row, len(stmt.Set))
	for _, a := range stmt.Set {
		c, found := columnOf(t, a.Column)
		if !found {
			return 0, errors.Errorf("unknown column %s.%s", t.Name(), a.Column)
		}
		v, err := normalize(c, a.Value)
		if err != nil {
			return 0, errors.Wrapf(err, "%s.%s", t.Name(), a.Column)
		}
		set[a.Column] = v
	}

	var n int64
	for _, r := range s.tables[stmt.TableID] {
		if r[stmt.KeyColumn] == nil || r.ID(stmt.KeyColumn) != stmt.Key {
			continue
		}
		for k, v := range set {
			r[k] = v
		}
		n++
	}
	return n, nil
}

// delete removes rows whose col is one of keys, cascading through foreign
// keys declared with on delete cascade and refusing restricted ones
func (s *snapshot) delete(tid models.TableID, col string, keys []uint64) (int64, error) {
	if len(keys) == 0 {
		return 0, errors.Errorf("empty delete from %s", tid)
	}
	match := make(map[uint64]bool, len(keys))
	for _, k := range keys {
		match[k] = true
	}

	var kept, gone []Row
	for _, r := range s.tables[tid] {
		if r[col] != nil && match[r.ID(col)] {
			gone = append(gone, r)
		} else {
			kept = append(kept, r)
		}
	}
	if len(gone) == 0 {
		return 0, nil
	}
	s.tables[tid] = kept
	n := int64(len(gone))

	for _, child := range repositories.Tables {
		for _, fk := range child.ForeignKey {
			if fk.RefTable != tid {
				continue
			}
			var refs []uint64
			for _, r := range gone {
				if r[fk.RefColumn] != nil {
					refs = append(refs, r.ID(fk.RefColumn))
				}
			}
			if len(refs) == 0 {
				continue
			}
			if !fk.Cascade {
				if s.referenced(child.ID, fk.Column, refs) {
					return n, errors.Wrapf(ErrConstraint, "%s.%s still references %s",
						child.Name(), fk.Column, tid)
				}
				continue
			}
			if !s.referenced(child.ID, fk.Column, refs) {
				continue
			}
			m, err := s.delete(child.ID, fk.Column, refs)
			if err != nil {
				return n, err
			}
			n += m
		}
	}
	return n, nil
}

func (s *snapshot) referenced(tid models.TableID, col string, refs []uint64) bool {
	for _, r := range s.tables[tid] {
		if r[col] == nil {
			continue
		}
		for _, ref := range refs {
			if r.ID(col) == ref {
				return true
			}
		}
	}
	return false
}

// reserve hands out count ids, seeding from the largest stored key
func (s *snapshot) reserve(tid models.TableID, count int) (uint64, error) {
	key := repositories.KeyColumn(tid)
	if key == "" {
		return 0, errors.Errorf("table %s has no id column", tid)
	}
	if count <= 0 {
		return 0, errors.Errorf("cannot reserve %d ids of %s", count, tid)
	}
	last, seeded := s.nextID[tid]
	if !seeded {
		for _, r := range s.tables[tid] {
			last = max(last, r.ID(key))
		}
	}
	s.nextID[tid] = last + uint64(count)
	return last + 1, nil
}

func columnOf(t repositories.Table, name string) (repositories.Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return repositories.Column{}, false
}

func defaultValue(c repositories.Column) any {
	if c.Nullable {
		return nil
	}
	switch c.Kind {
	case repositories.ColID:
		v, _ := strconv.ParseUint(c.Default, 10, 64)
		return v
	case repositories.ColInt:
		v, _ := strconv.Atoi(c.Default)
		return v
	case repositories.ColFloat:
		v, _ := strconv.ParseFloat(c.Default, 64)
		return v
	}
	return strings.Trim(c.Default, "'")
}

// normalize converts a bind value to the stored representation of c
func normalize(c repositories.Column, v any) (any, error) {
	if v == nil {
		if !c.Nullable {
			return nil, errors.Wrap(ErrConstraint, "null in not null column")
		}
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	switch c.Kind {
	case repositories.ColID:
		switch {
		case rv.CanUint():
			return rv.Uint(), nil
		case rv.CanInt() && rv.Int() >= 0:
			return uint64(rv.Int()), nil
		}
	case repositories.ColInt:
		switch {
		case rv.CanInt():
			return int(rv.Int()), nil
		case rv.CanUint():
			return int(rv.Uint()), nil
		}
	case repositories.ColFloat:
		switch {
		case rv.CanFloat():
			return rv.Float(), nil
		case rv.CanInt():
			return float64(rv.Int()), nil
		}
	case repositories.ColString, repositories.ColText:
		if rv.Kind() == reflect.String {
			s := rv.String()
			if c.Kind == repositories.ColString && c.Size > 0 && len([]rune(s)) > c.Size {
				return nil, errors.Wrapf(ErrConstraint, "value longer than %d", c.Size)
			}
			return s, nil
		}
	}
	return nil, errors.Errorf("cannot store %T", v)
}

// MemDB in-memory database
type MemDB struct {
	cur *snapshot
	mu  sync.RWMutex
}

// NewMemDB creates a new in-memory database
func NewMemDB() *MemDB {
	return &MemDB{cur: newSnapshot()}
}

// snapshot returns the committed version; callers must not modify it
func (db *MemDB) snapshot() *snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.cur
}

// begin returns a private copy for a writer
func (db *MemDB) begin() *snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.cur.clone()
}

// commit publishes a writer's copy
func (db *MemDB) commit(s *snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.cur = s
}

// Seed inserts committed rows without foreign key checks
func (db *MemDB) Seed(tid models.TableID, rows ...Row) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	next := db.cur.clone()
	for _, r := range rows {
		if err := next.insert(tid, r, false); err != nil {
			return err
		}
	}
	db.cur = next
	return nil
}

// Rows returns copies of committed rows of a table ordered by key
func (db *MemDB) Rows(tid models.TableID) []Row {
	s := db.snapshot()
	out := make([]Row, 0, len(s.tables[tid]))
	for _, r := range s.tables[tid] {
		out = append(out, r.clone())
	}
	if key := repositories.KeyColumn(tid); key != "" {
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID(key) < out[j].ID(key) })
	}
	return out
}

func keyOf(tid models.TableID) string {
	return repositories.KeyColumn(tid)
}
