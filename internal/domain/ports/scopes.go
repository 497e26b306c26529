package ports

import (
	"fmt"
	"strconv"
	"strings"
)

// EmptyScope represents an empty scope
type EmptyScope struct{}

// IsEmpty returns true for EmptyScope
func (EmptyScope) IsEmpty() bool {
	return true
}

// String returns a string representation of EmptyScope
func (EmptyScope) String() string {
	return "empty"
}

// LinkScope is one host and the templates being linked to it
type LinkScope struct {
	HostID      uint64
	TemplateIDs []uint64
}

// IsEmpty returns true when no template is linked
func (s LinkScope) IsEmpty() bool {
	return len(s.TemplateIDs) == 0
}

// String returns a string representation of LinkScope
func (s LinkScope) String() string {
	return fmt.Sprintf("host(%d) templates(%s)", s.HostID, joinIDs(s.TemplateIDs))
}

// HostGraphScope selects templated graphs of a host
type HostGraphScope struct {
	HostID           uint64
	Names            []string
	TemplateGraphIDs []uint64
}

// IsEmpty returns true when neither names nor template graph ids are given
func (s HostGraphScope) IsEmpty() bool {
	return len(s.Names) == 0 && len(s.TemplateGraphIDs) == 0
}

// String returns a string representation of HostGraphScope
func (s HostGraphScope) String() string {
	return fmt.Sprintf("host(%d) names(%s) templategraphs(%s)",
		s.HostID, strings.Join(s.Names, ","), joinIDs(s.TemplateGraphIDs))
}

// RuleScope selects objects owned by discovery rules
type RuleScope struct {
	RuleIDs []uint64
}

// IsEmpty returns true if RuleScope is empty
func (s RuleScope) IsEmpty() bool {
	return len(s.RuleIDs) == 0
}

// String returns a string representation of RuleScope
func (s RuleScope) String() string {
	return fmt.Sprintf("rules(%s)", joinIDs(s.RuleIDs))
}

func joinIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}
