package graph

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed pragma or port specification.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// PragmaMode selects the on-chip memory layout directive emitted for a variable.
type PragmaMode string

const (
	PragmaPartition PragmaMode = "partition"
	PragmaReshape   PragmaMode = "reshape"
	PragmaStream    PragmaMode = "stream"
)

// Pragma describes the memory-layout directive of one variable.
//
// For partition and reshape modes the sub-mode is one of complete, cyclic or
// block; cyclic and block carry a factor, complete does not. Stream mode
// carries a FIFO depth instead and has no factor concept.
type Pragma struct {
	Mode    PragmaMode
	SubMode string
	Factor  int
	Depth   int
}

// NewPragma builds a pragma from a bare mode token. The sub-mode defaults
// to a complete partition or reshape.
func NewPragma(mode PragmaMode) *Pragma {
	return &Pragma{Mode: mode, SubMode: "complete"}
}

// NewStreamPragma builds a streaming FIFO pragma with the given depth.
func NewStreamPragma(depth int) *Pragma {
	return &Pragma{Mode: PragmaStream, Depth: depth}
}

// Render emits the pragma line for the named variable.
func (p *Pragma) Render(name string) (string, error) {
	switch p.Mode {
	case PragmaPartition, PragmaReshape:
		sub := p.SubMode
		if sub == "" {
			sub = "complete"
		}
		if sub == "complete" {
			return fmt.Sprintf("#pragma HLS ARRAY_%s variable=%s complete dim=0",
				strings.ToUpper(string(p.Mode)), name), nil
		}
		if sub != "cyclic" && sub != "block" {
			return "", &ConfigurationError{Reason: fmt.Sprintf("unknown array pragma type '%s' for variable '%s'", sub, name)}
		}
		if p.Factor <= 0 {
			return "", &ConfigurationError{Reason: fmt.Sprintf("array pragma '%s %s' for variable '%s' requires a factor", p.Mode, sub, name)}
		}
		return fmt.Sprintf("#pragma HLS ARRAY_%s variable=%s %s factor=%d dim=0",
			strings.ToUpper(string(p.Mode)), name, sub, p.Factor), nil
	case PragmaStream:
		if p.Depth <= 0 {
			return "", &ConfigurationError{Reason: fmt.Sprintf("stream pragma for variable '%s' requires a depth", name)}
		}
		return fmt.Sprintf("#pragma HLS STREAM variable=%s depth=%d", name, p.Depth), nil
	}
	return "", &ConfigurationError{Reason: fmt.Sprintf("unknown pragma mode '%s' for variable '%s'", p.Mode, name)}
}
