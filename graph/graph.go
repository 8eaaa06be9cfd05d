// Package graph holds the read-only model description consumed by the code
// writers: an ordered sequence of layers, each owning typed variables and
// weights. The graph is produced by an external frontend and never modified
// here.
package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a named precision descriptor, e.g. an ap_fixed<16,6> typedef.
type Type struct {
	Name string
	Spec string
}

// Definition renders the typedef line introducing the type.
func (t Type) Definition() string {
	return fmt.Sprintf("typedef %s %s;", t.Spec, t.Name)
}

// Dim is one named dimension of a variable's shape.
type Dim struct {
	Name  string
	Value int
}

// Variable is a typed, shaped, named buffer owned by a layer.
type Variable struct {
	Name   string
	Type   Type
	Dims   []Dim
	Stream bool
	Pragma *Pragma
}

// Size renders the element-count expression of the variable, a product of
// its dimension macros.
func (v *Variable) Size() string {
	names := make([]string, 0, len(v.Dims))
	for _, d := range v.Dims {
		names = append(names, d.Name)
	}
	return strings.Join(names, "*")
}

// Count returns the numeric element count of the variable.
func (v *Variable) Count() int {
	count := 1
	for _, d := range v.Dims {
		count *= d.Value
	}
	return count
}

// Definition renders the variable declaration. Streamed variables become
// hls::stream objects, everything else a plain array.
func (v *Variable) Definition() string {
	if v.Stream {
		return fmt.Sprintf("hls::stream<%s> %s", v.Type.Name, v.Name)
	}
	return fmt.Sprintf("%s %s[%s]", v.Type.Name, v.Name, v.Size())
}

// ReferenceDefinition renders the variable as a formal parameter. Only
// streams differ from Definition: they are passed by reference.
func (v *Variable) ReferenceDefinition() string {
	if v.Stream {
		return fmt.Sprintf("hls::stream<%s> &%s", v.Type.Name, v.Name)
	}
	return v.Definition()
}

// SuffixedDefinition renders the declaration with a suffix appended to the
// variable name, used by the bridge writer for the _ap shadow buffers.
func (v *Variable) SuffixedDefinition(suffix string) string {
	if v.Stream {
		return fmt.Sprintf("hls::stream<%s> %s%s", v.Type.Name, v.Name, suffix)
	}
	return fmt.Sprintf("%s %s%s[%s]", v.Type.Name, v.Name, suffix, v.Size())
}

// Encoding distinguishes the numeric storage formats a weight can use.
type Encoding int

const (
	// EncodingDense stores every element.
	EncodingDense Encoding = iota
	// EncodingCompressed stores only the nonzero elements plus their count.
	EncodingCompressed
	// EncodingExponent stores power-of-two exponents.
	EncodingExponent
)

func (e Encoding) String() string {
	switch e {
	case EncodingDense:
		return "dense"
	case EncodingCompressed:
		return "compressed"
	case EncodingExponent:
		return "exponent"
	}
	return "encoding(" + strconv.Itoa(int(e)) + ")"
}

// Storage distinguishes where a weight lives in the generated design.
type Storage int

const (
	// StorageInline emits the weight as a constant array in a header.
	StorageInline Storage = iota
	// StorageBRAM places the weight in on-chip block memory and passes it
	// into the top-level function instead of including it.
	StorageBRAM
)

// Weight is a variable with constant data attached.
type Weight struct {
	Variable
	Encoding   Encoding
	Storage    Storage
	Values     []string
	NonZeros   int
	DataLength int
	Min        float64
	Max        float64
}

// Length returns the number of stored data elements: the explicit data
// length when the frontend provided one, the variable's element count
// otherwise.
func (w *Weight) Length() int {
	if w.DataLength > 0 {
		return w.DataLength
	}
	return w.Count()
}

// Layer is one stage of the model. Function lines, the config block and the
// include list come from the external layer templates and are carried as
// opaque text.
type Layer struct {
	Name      string
	Variables []*Variable
	Weights   []*Weight
	Function  []string
	Config    string
	Includes  []string
	Trace     bool
}

// Output returns the layer's first variable, which by construction is its
// output buffer.
func (l *Layer) Output() *Variable {
	if len(l.Variables) == 0 {
		return nil
	}
	return l.Variables[0]
}

// Precisions returns the named types used by the layer's variables and
// weights, in declaration order.
func (l *Layer) Precisions() []Type {
	types := []Type{}
	for _, v := range l.Variables {
		types = append(types, v.Type)
	}
	for _, w := range l.Weights {
		types = append(types, w.Type)
	}
	return types
}

// Graph is the ordered model consumed by the writers.
type Graph struct {
	Layers  []*Layer
	Inputs  []*Variable
	Outputs []*Variable
}

// IsInput reports whether the variable is one of the graph's inputs.
func (g *Graph) IsInput(v *Variable) bool {
	for _, i := range g.Inputs {
		if i == v || i.Name == v.Name {
			return true
		}
	}
	return false
}

// IsOutput reports whether the variable is one of the graph's outputs.
func (g *Graph) IsOutput(v *Variable) bool {
	for _, o := range g.Outputs {
		if o == v || o.Name == v.Name {
			return true
		}
	}
	return false
}

// Weights returns all weights of all layers in graph order.
func (g *Graph) Weights() []*Weight {
	weights := []*Weight{}
	for _, l := range g.Layers {
		weights = append(weights, l.Weights...)
	}
	return weights
}

// BRAMWeights returns the weights placed in on-chip block memory, in graph order.
func (g *Graph) BRAMWeights() []*Weight {
	weights := []*Weight{}
	for _, w := range g.Weights() {
		if w.Storage == StorageBRAM {
			weights = append(weights, w)
		}
	}
	return weights
}

// Precisions returns the distinct named types used anywhere in the graph.
// The first occurrence of a name wins, so in-place aliases cannot override
// the type they alias.
func (g *Graph) Precisions() []Type {
	seen := map[string]bool{}
	types := []Type{}
	for _, l := range g.Layers {
		for _, t := range l.Precisions() {
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			types = append(types, t)
		}
	}
	return types
}
