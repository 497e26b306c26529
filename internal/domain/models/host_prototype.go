package models

// Host flags byte
const (
	HostFlagNormal    = 0
	HostFlagPrototype = 2
)

// InventoryDisabled means the host has no host_inventory row
const InventoryDisabled = -1

// TemplateLinkManual is the link type of template links created by sync
const TemplateLinkManual = 0

// HostPrototype is a host definition materialized per discovery rule
type HostPrototype struct {
	ID               uint64
	RuleID           uint64 // owning discovery rule on this side
	Host             string
	Name             string
	Status           int
	Discover         int
	CustomInterfaces int
	InventoryMode    int
	TemplateID       uint64

	TemplateLinks   []TemplateLink
	GroupPrototypes []GroupPrototype
	Macros          []HostMacro
	Tags            []Tag
	Interfaces      []Interface
}

// Key is the identity of a host prototype within one host
func (p *HostPrototype) Key() HostPrototypeKey {
	return HostPrototypeKey{RuleID: p.RuleID, Host: p.Host}
}

// HostPrototypeKey identifies a host prototype by discovery rule and technical name
type HostPrototypeKey struct {
	RuleID uint64
	Host   string
}

// TemplateLink is a hosts_templates row
type TemplateLink struct {
	ID         uint64
	TemplateID uint64
}

// GroupPrototype is a host group name pattern owned by a host prototype
type GroupPrototype struct {
	ID         uint64
	Name       string
	GroupID    uint64
	TemplateID uint64
}

// Tag is a key/value label
type Tag struct {
	ID        uint64
	Tag       string
	Value     string
	Automatic int
}

// HostPrototypeField is a mutable host prototype column
type HostPrototypeField uint8

const (
	HostPrototypeName HostPrototypeField = iota
	HostPrototypeStatus
	HostPrototypeDiscover
	HostPrototypeCustomInterfaces
	HostPrototypeTemplateID
)

var hostPrototypeFieldColumns = [...]string{
	HostPrototypeName:             "name",
	HostPrototypeStatus:           "status",
	HostPrototypeDiscover:         "discover",
	HostPrototypeCustomInterfaces: "custom_interfaces",
	HostPrototypeTemplateID:       "templateid",
}

// Column returns the column name
func (f HostPrototypeField) Column() string {
	return hostPrototypeFieldColumns[f]
}

// GroupPrototypeField is a mutable group prototype column
type GroupPrototypeField uint8

const (
	GroupPrototypeTemplateID GroupPrototypeField = iota
)

// Column returns the column name
func (f GroupPrototypeField) Column() string {
	return "templateid"
}
