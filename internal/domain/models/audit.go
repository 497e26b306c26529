package models

// AuditAction is the kind of change recorded
type AuditAction int

const (
	AuditAdd AuditAction = iota
	AuditUpdate
	AuditDelete
)

// String implements fmt.Stringer
func (a AuditAction) String() string {
	switch a {
	case AuditAdd:
		return "add"
	case AuditUpdate:
		return "update"
	case AuditDelete:
		return "delete"
	}
	return "unknown"
}

// AuditResource names the entity kind an audit record is about
type AuditResource string

const (
	AuditResourceGraph          AuditResource = "graph"
	AuditResourceGraphPrototype AuditResource = "graph_prototype"
	AuditResourceHostPrototype  AuditResource = "host_prototype"
	AuditResourceHostGroup      AuditResource = "hostgroup"
)

// GraphAuditResource picks the resource kind from graph flags
func GraphAuditResource(flags int) AuditResource {
	if flags&GraphFlagPrototype != 0 {
		return AuditResourceGraphPrototype
	}
	return AuditResourceGraph
}

// AuditRecord is one emitted audit call
type AuditRecord struct {
	Action   AuditAction
	Resource AuditResource
	EntityID uint64
	Name     string
	Field    string
	Old      any
	New      any
}
