package graph

import "fmt"

// PortSpec describes the fixed-point and batching shape of one named
// input or output signal of a synthesized design.
type PortSpec struct {
	Name           string `json:"name" yaml:"name"`
	IntegerBits    int    `json:"integer_bits" yaml:"integer_bits"`
	FractionalBits int    `json:"fractional_bits" yaml:"fractional_bits"`
	BatchSize      int    `json:"batch_size" yaml:"batch_size"`
	FifoDepth      int    `json:"fifo_depth" yaml:"fifo_depth"`
	Signed         bool   `json:"signed" yaml:"signed"`
}

// Width returns the total bit width of one batch element.
func (p PortSpec) Width() int {
	return p.IntegerBits + p.FractionalBits
}

// One returns the raw fixed-point representation of the value 1.0.
func (p PortSpec) One() int64 {
	return 1 << uint(p.FractionalBits)
}

// Decode converts a raw fixed-point integer back to its real value.
func (p PortSpec) Decode(raw int64) float64 {
	return float64(raw) / float64(int64(1)<<uint(p.FractionalBits))
}

// Validate checks the batching and FIFO constraints of the port.
func (p PortSpec) Validate() error {
	if p.Name == "" {
		return &ConfigurationError{Reason: "port with empty name"}
	}
	if p.Width() <= 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("port '%s' has a non-positive bit width", p.Name)}
	}
	if p.BatchSize < 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("port '%s' has batch size %d, must be at least 1", p.Name, p.BatchSize)}
	}
	if p.FifoDepth < 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("port '%s' has FIFO depth %d, must be at least 1", p.Name, p.FifoDepth)}
	}
	return nil
}

// NetworkConfig describes the streaming interface of a stitched design: one
// port specification per top-level input and output.
type NetworkConfig struct {
	Inputs  []PortSpec `json:"inputs" yaml:"inputs"`
	Outputs []PortSpec `json:"outputs" yaml:"outputs"`
}

// Input looks up an input port by name.
func (c *NetworkConfig) Input(name string) (PortSpec, bool) {
	for _, p := range c.Inputs {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// Output looks up an output port by name.
func (c *NetworkConfig) Output(name string) (PortSpec, bool) {
	for _, p := range c.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// Validate checks every port of the network configuration.
func (c *NetworkConfig) Validate() error {
	for _, p := range c.Inputs {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, p := range c.Outputs {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
