package models

import "math/bits"

// Field identifies one mutable column of a synchronized object.
type Field interface {
	~uint8
	Column() string
}

// FieldSet is the set of fields whose template value differs from the host value.
type FieldSet[F Field] struct {
	bits uint64
}

// Set marks f as changed
func (s *FieldSet[F]) Set(f F) {
	s.bits |= 1 << uint(f)
}

// Has reports whether f is marked
func (s FieldSet[F]) Has(f F) bool {
	return s.bits&(1<<uint(f)) != 0
}

// Empty reports whether no field is marked
func (s FieldSet[F]) Empty() bool {
	return s.bits == 0
}

// Len returns the number of marked fields
func (s FieldSet[F]) Len() int {
	return bits.OnesCount64(s.bits)
}

// Fields returns marked fields in declaration order
func (s FieldSet[F]) Fields() []F {
	out := make([]F, 0, s.Len())
	for b := s.bits; b != 0; b &= b - 1 {
		out = append(out, F(bits.TrailingZeros64(b)))
	}
	return out
}

// Change is one field transition recorded by an UpdateIntent.
type Change[F Field] struct {
	Field F
	Old   any
	New   any
}

// UpdateIntent shadows a matched host object: the values read from the host,
// the values the template wants, and the set of fields that differ.
type UpdateIntent[F Field] struct {
	ID      uint64
	Dirty   FieldSet[F]
	changes []Change[F]
}

// NewUpdateIntent creates an empty intent for the host object id
func NewUpdateIntent[F Field](id uint64) *UpdateIntent[F] {
	return &UpdateIntent[F]{ID: id}
}

// Compare records f as dirty when original and candidate differ.
func (u *UpdateIntent[F]) Compare(f F, original, candidate any) {
	if original == candidate {
		return
	}
	u.mark(f, original, candidate)
}

// CompareFloat is Compare for doubles, equal within FloatTolerance.
func (u *UpdateIntent[F]) CompareFloat(f F, original, candidate float64) {
	if FloatEqual(original, candidate) {
		return
	}
	u.mark(f, original, candidate)
}

func (u *UpdateIntent[F]) mark(f F, original, candidate any) {
	if u.Dirty.Has(f) {
		return
	}
	u.Dirty.Set(f)
	u.changes = append(u.changes, Change[F]{Field: f, Old: original, New: candidate})
}

// Changes returns recorded transitions ordered by field
func (u *UpdateIntent[F]) Changes() []Change[F] {
	out := make([]Change[F], 0, len(u.changes))
	for _, f := range u.Dirty.Fields() {
		for _, c := range u.changes {
			if c.Field == f {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// FloatTolerance is the absolute tolerance used when comparing doubles
const FloatTolerance = 1e-6

// FloatEqual compares doubles with FloatTolerance
func FloatEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= FloatTolerance
}

// NullableID maps the zero id onto SQL NULL.
func NullableID(id uint64) any {
	if id == 0 {
		return nil
	}
	return id
}
