package unit

import (
	"fmt"
)

type Severity string

const (
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Diagnostic is a non-fatal problem found while building a unit.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Symbol   string   `json:"symbol,omitempty"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}
