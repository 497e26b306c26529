package models

// MacroType is the kind of a user macro value
type MacroType int

const (
	MacroText   MacroType = 0
	MacroSecret MacroType = 1
	MacroVault  MacroType = 2
)

// SecretMask replaces secret values in audit records
const SecretMask = "******"

// HostMacro is a user macro defined on a host or host prototype
type HostMacro struct {
	ID          uint64
	Macro       string
	Value       string
	Description string
	Type        MacroType
	Automatic   int
}

// IsAutomatic reports whether the macro is host-local and managed elsewhere
func (m *HostMacro) IsAutomatic() bool {
	return m.Automatic != 0
}

// MaskedValue returns the value as it may appear in an audit record
func MaskedValue(t MacroType, value string) string {
	if t == MacroSecret {
		return SecretMask
	}
	return value
}

// MacroField is a mutable macro column
type MacroField uint8

const (
	MacroValue MacroField = iota
	MacroDescription
	MacroTypeField
)

var macroFieldColumns = [...]string{
	MacroValue:       "value",
	MacroDescription: "description",
	MacroTypeField:   "type",
}

// Column returns the column name
func (f MacroField) Column() string {
	return macroFieldColumns[f]
}
