package graph

import (
	"fmt"

	"github.com/ml2hw/ml2hw/util"
	"gopkg.in/yaml.v2"
)

// The YAML graph description is the hand-off format of the external model
// frontend. It mirrors the in-memory types one to one; no inference or
// optimization happens here.

type yamlDim struct {
	Name  string `yaml:"name"`
	Value int    `yaml:"value"`
}

type yamlPragma struct {
	Mode   string `yaml:"mode"`
	Type   string `yaml:"type"`
	Factor int    `yaml:"factor"`
	Depth  int    `yaml:"depth"`
}

type yamlVariable struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	TypeSpec string      `yaml:"type_spec"`
	Dims     []yamlDim   `yaml:"dims"`
	Stream   bool        `yaml:"stream"`
	Pragma   *yamlPragma `yaml:"pragma"`
}

type yamlWeight struct {
	yamlVariable `yaml:",inline"`
	Encoding     string   `yaml:"encoding"`
	Storage      string   `yaml:"storage"`
	Values       []string `yaml:"values"`
	NonZeros     int      `yaml:"non_zeros"`
	DataLength   int      `yaml:"data_length"`
	Min          float64  `yaml:"min"`
	Max          float64  `yaml:"max"`
}

type yamlLayer struct {
	Name      string         `yaml:"name"`
	Variables []yamlVariable `yaml:"variables"`
	Weights   []yamlWeight   `yaml:"weights"`
	Function  []string       `yaml:"function"`
	Config    string         `yaml:"config"`
	Includes  []string       `yaml:"includes"`
	Trace     bool           `yaml:"trace"`
}

type yamlGraph struct {
	Layers  []yamlLayer `yaml:"layers"`
	Inputs  []string    `yaml:"inputs"`
	Outputs []string    `yaml:"outputs"`
}

func (y *yamlVariable) build() (*Variable, error) {
	v := &Variable{
		Name:   y.Name,
		Type:   Type{Name: y.Type, Spec: y.TypeSpec},
		Stream: y.Stream,
	}
	for _, d := range y.Dims {
		v.Dims = append(v.Dims, Dim(d))
	}
	if y.Pragma != nil {
		v.Pragma = &Pragma{
			Mode:    PragmaMode(y.Pragma.Mode),
			SubMode: y.Pragma.Type,
			Factor:  y.Pragma.Factor,
			Depth:   y.Pragma.Depth,
		}
		// Reject unknown modes at load time rather than at rendering time.
		if _, err := v.Pragma.Render(v.Name); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (y *yamlWeight) build() (*Weight, error) {
	v, err := y.yamlVariable.build()
	if err != nil {
		return nil, err
	}
	w := &Weight{
		Variable:   *v,
		Values:     y.Values,
		NonZeros:   y.NonZeros,
		DataLength: y.DataLength,
		Min:        y.Min,
		Max:        y.Max,
	}
	switch y.Encoding {
	case "", "dense":
		w.Encoding = EncodingDense
	case "compressed":
		w.Encoding = EncodingCompressed
	case "exponent":
		w.Encoding = EncodingExponent
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown weight encoding '%s' for '%s'", y.Encoding, y.Name)}
	}
	switch y.Storage {
	case "", "inline":
		w.Storage = StorageInline
	case "bram":
		w.Storage = StorageBRAM
	default:
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown weight storage '%s' for '%s'", y.Storage, y.Name)}
	}
	return w, nil
}

// LoadNetwork reads a network interface description (the port specifications
// of a stitched design) from a YAML file.
func LoadNetwork(path string) (*NetworkConfig, error) {
	data, err := util.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var net NetworkConfig
	if err := yaml.UnmarshalStrict(data, &net); err != nil {
		return nil, fmt.Errorf("failed to parse network description: %w", err)
	}
	if err := net.Validate(); err != nil {
		return nil, err
	}
	return &net, nil
}

// LoadGraph reads a serialized model graph from a YAML file.
func LoadGraph(path string) (*Graph, error) {
	data, err := util.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseGraph(data)
}

func parseGraph(data []byte) (*Graph, error) {
	var raw yamlGraph
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse graph description: %w", err)
	}

	g := &Graph{}
	byName := map[string]*Variable{}
	for _, yl := range raw.Layers {
		layer := &Layer{
			Name:     yl.Name,
			Function: yl.Function,
			Config:   yl.Config,
			Includes: yl.Includes,
			Trace:    yl.Trace,
		}
		for i := range yl.Variables {
			v, err := yl.Variables[i].build()
			if err != nil {
				return nil, err
			}
			layer.Variables = append(layer.Variables, v)
			byName[v.Name] = v
		}
		for i := range yl.Weights {
			w, err := yl.Weights[i].build()
			if err != nil {
				return nil, err
			}
			layer.Weights = append(layer.Weights, w)
		}
		g.Layers = append(g.Layers, layer)
	}

	for _, name := range raw.Inputs {
		v, ok := byName[name]
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("graph input '%s' is not a layer variable", name)}
		}
		g.Inputs = append(g.Inputs, v)
	}
	for _, name := range raw.Outputs {
		v, ok := byName[name]
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("graph output '%s' is not a layer variable", name)}
		}
		g.Outputs = append(g.Outputs, v)
	}
	return g, nil
}
