package models

import "fmt"

// ProgramType tells which daemon owns the database
type ProgramType string

const (
	ProgramServer ProgramType = "server"
	ProgramProxy  ProgramType = "proxy"
)

// ParseProgramType validates a configured program type
func ParseProgramType(s string) (ProgramType, error) {
	switch p := ProgramType(s); p {
	case ProgramServer, ProgramProxy:
		return p, nil
	}
	return "", fmt.Errorf("unknown program type %q", s)
}
