// Package index builds per-pass lookup tables of template and host objects
package index

// Accessors extract the identity attributes of an indexed object
type Accessors[T any] struct {
	ID         func(*T) uint64
	Name       func(*T) string
	TemplateID func(*T) uint64
}

// Index holds the template objects of a pass and the host objects they may
// correspond to. It is built once per pass and never outlives it.
type Index[T any] struct {
	acc        Accessors[T]
	templates  []*T
	templateBy map[uint64]*T
	hosts      []*T
	hostBy     map[uint64]*T
	byName     map[string][]*T
	byTemplate map[uint64][]*T
}

// New creates an empty index
func New[T any](acc Accessors[T]) *Index[T] {
	return &Index[T]{
		acc:        acc,
		templateBy: make(map[uint64]*T),
		hostBy:     make(map[uint64]*T),
		byName:     make(map[string][]*T),
		byTemplate: make(map[uint64][]*T),
	}
}

// AddTemplate indexes a template object
func (ix *Index[T]) AddTemplate(obj T) {
	p := &obj
	ix.templates = append(ix.templates, p)
	ix.templateBy[ix.acc.ID(p)] = p
}

// AddHost indexes a host object
func (ix *Index[T]) AddHost(obj T) {
	p := &obj
	ix.hosts = append(ix.hosts, p)
	ix.hostBy[ix.acc.ID(p)] = p
	name := ix.acc.Name(p)
	ix.byName[name] = append(ix.byName[name], p)
	if ix.acc.TemplateID != nil {
		if tid := ix.acc.TemplateID(p); tid != 0 {
			ix.byTemplate[tid] = append(ix.byTemplate[tid], p)
		}
	}
}

// Templates returns template objects in load order
func (ix *Index[T]) Templates() []*T {
	return ix.templates
}

// Hosts returns host objects in load order
func (ix *Index[T]) Hosts() []*T {
	return ix.hosts
}

// Template looks a template object up by id
func (ix *Index[T]) Template(id uint64) (*T, bool) {
	p, ok := ix.templateBy[id]
	return p, ok
}

// Host looks a host object up by id
func (ix *Index[T]) Host(id uint64) (*T, bool) {
	p, ok := ix.hostBy[id]
	return p, ok
}

// HostsByName returns host objects with the name in load order
func (ix *Index[T]) HostsByName(name string) []*T {
	return ix.byName[name]
}

// HostsByTemplateID returns host objects whose templateid is id
func (ix *Index[T]) HostsByTemplateID(id uint64) []*T {
	return ix.byTemplate[id]
}

// TemplateIDs returns ids of template objects in load order
func (ix *Index[T]) TemplateIDs() []uint64 {
	out := make([]uint64, len(ix.templates))
	for i, p := range ix.templates {
		out[i] = ix.acc.ID(p)
	}
	return out
}

// Names returns the distinct names of template objects in load order
func (ix *Index[T]) Names() []string {
	seen := make(map[string]bool, len(ix.templates))
	var out []string
	for _, p := range ix.templates {
		n := ix.acc.Name(p)
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
