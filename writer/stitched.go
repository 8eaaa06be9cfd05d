package writer

import (
	"fmt"
	"path"
	"strings"

	"github.com/ml2hw/ml2hw/assets"
	"github.com/ml2hw/ml2hw/config"
	"github.com/ml2hw/ml2hw/graph"
	"github.com/ml2hw/ml2hw/util"
)

// SubProject is one independently generated graph of a stitched design.
type SubProject struct {
	// Name is the sub-project's top-level function name.
	Name string
	// Dir is the sub-project's directory name below the stitch output dir.
	Dir string
	// Graph is the sub-project's model graph.
	Graph *graph.Graph
}

// StitchedWriter generates the auxiliary sources of a composite design
// assembled from several already generated sub-projects: the chained
// foreign-function bridge and the multi-graph build script. The composite's
// inputs are the first graph's inputs and its outputs the last graph's
// outputs; intermediate results flow from one sub-project into the next.
type StitchedWriter struct {
	cfg      config.ProjectConfig
	original string
	subs     []SubProject
	net      *graph.NetworkConfig
}

// NewStitched creates a writer for a stitched design. The original name is
// the base project name the sub-project sources were generated under.
func NewStitched(cfg config.ProjectConfig, original string, subs []SubProject, net *graph.NetworkConfig) *StitchedWriter {
	return &StitchedWriter{cfg: cfg, original: original, subs: subs, net: net}
}

func (s *StitchedWriter) first() *graph.Graph { return s.subs[0].Graph }
func (s *StitchedWriter) last() *graph.Graph  { return s.subs[len(s.subs)-1].Graph }

// bridgeContext builds the composite view the shared bridge directives
// operate on.
func (s *StitchedWriter) bridgeContext() *Context {
	composite := &graph.Graph{
		Inputs:  s.first().Inputs,
		Outputs: s.last().Outputs,
	}
	for _, sub := range s.subs {
		composite.Layers = append(composite.Layers, sub.Graph.Layers...)
	}
	return &Context{Config: s.cfg, Graph: composite, Network: s.net}
}

// WriteBridge writes the stitched foreign-function bridge: the headers of
// every sub-project are included with their result types renamed, and the
// wrapper chains the sub-project calls so each graph consumes its
// predecessor's output buffers.
func (s *StitchedWriter) WriteBridge() error {
	ctx := s.bridgeContext()
	directives := []Directive{
		{"firmware/" + projectToken, s.expandChainedIncludes},
		{markerBram, expandBramIncludes},
		{markerHeader, expandBridgeHeader},
		{markerWrapper, s.expandChainedWrapper},
		{markerTraceOutputs, expandTraceOutputs},
		{markerNamespace, expandUsingNamespace},
		{markerTBInputWriter, expandTBInputWriter},
	}
	data, err := assets.Read("vivado/myproject_bridge.cpp")
	if err != nil {
		return err
	}
	lines, err := NewEngine(ctx, directives).Expand(splitLines(string(data)))
	if err != nil {
		return fmt.Errorf("expanding stitched bridge: %w", err)
	}
	dst := path.Join(s.cfg.OutputDir, s.cfg.ProjectName+"_bridge.cpp")
	return util.WriteFile(dst, []byte(strings.Join(lines, "\n")+"\n"))
}

// expandChainedIncludes replaces the single firmware include with one
// include per sub-project. Each sub-project carries its own defines guard
// and result type, so the guard is reset and the result type renamed per
// graph before the next include.
func (s *StitchedWriter) expandChainedIncludes(ctx *Context, line string) (string, error) {
	text := ""
	for i, sub := range s.subs {
		singleOutput := len(sub.Graph.Outputs) == 1
		text += "#undef DEFINES_H_\n"
		if singleOutput {
			text += fmt.Sprintf("#define result_t result_graph%d_t\n", i+1)
		}
		text += strings.ReplaceAll(line, projectToken, sub.Name) + "\n"
		if singleOutput {
			text += fmt.Sprintf("typedef result_graph%d_t graph%d_result_t;\n", i+1, i+1)
			if i < len(s.subs)-1 {
				text += "#undef result_t\n\n"
			} else {
				text += "\n"
			}
		}
	}
	return text + "\n", nil
}

// expandChainedWrapper converts the external inputs, declares every
// sub-project's output buffers and calls the sub-projects in order, wiring
// each call's inputs to the previous call's outputs.
func (s *StitchedWriter) expandChainedWrapper(ctx *Context, line string) (string, error) {
	dtype := paramSuffix(line)
	if dtype == "" {
		return "", &MissingContextError{Directive: "insert wrapper", Key: "element type"}
	}

	text := ""
	for _, in := range s.first().Inputs {
		text += indent + in.SuffixedDefinition("_ap") + ";\n"
		text += indent + fmt.Sprintf("nnet::convert_data<%s, %s, %s>(%s, %s_ap);\n",
			dtype, in.Type.Name, in.Size(), in.Name, in.Name)
	}
	text += "\n"

	lastResultType := ""
	for i, sub := range s.subs {
		for _, out := range sub.Graph.Outputs {
			if len(sub.Graph.Outputs) == 1 {
				resultType := fmt.Sprintf("graph%d_result_t", i+1)
				if out.Stream {
					text += indent + fmt.Sprintf("hls::stream<%s> %s_ap;\n", resultType, out.Name)
				} else {
					text += indent + fmt.Sprintf("%s %s_ap[%s];\n", resultType, out.Name, out.Size())
				}
				lastResultType = resultType
			} else {
				text += indent + out.SuffixedDefinition("_ap") + ";\n"
			}
		}
	}
	text += "\n"

	previousOutputs := ""
	for i, sub := range s.subs {
		inputs := previousOutputs
		if i == 0 {
			inputs = strings.Join(util.MappedSlice(sub.Graph.Inputs, func(v *graph.Variable) string {
				return v.Name + "_ap"
			}), ",")
		}
		brams := strings.Join(util.MappedSlice(sub.Graph.BRAMWeights(), func(w *graph.Weight) string {
			return w.Name
		}), ",")
		previousOutputs = strings.Join(util.MappedSlice(sub.Graph.Outputs, func(v *graph.Variable) string {
			return v.Name + "_ap"
		}), ",")
		text += indent + fmt.Sprintf("%s(%s);\n", sub.Name, joinNonEmpty(inputs, previousOutputs, brams))
	}
	text += "\n"

	for _, out := range s.last().Outputs {
		outType := out.Type.Name
		if len(s.last().Outputs) == 1 && lastResultType != "" {
			outType = lastResultType
		}
		text += indent + fmt.Sprintf("nnet::convert_data<%s, %s, %s>(%s_ap, %s);\n",
			outType, dtype, out.Size(), out.Name, out.Name)
	}
	return text, nil
}

// WriteBuildScript writes the stitched build_lib.sh, substituting the
// original and stitched project names and the sub-project directory list.
func (s *StitchedWriter) WriteBuildScript() error {
	data, err := assets.Read("vivado/build_lib_multigraph.sh")
	if err != nil {
		return err
	}
	dirs := strings.Join(util.MappedSlice(s.subs, func(sub SubProject) string {
		return "\"" + sub.Dir + "\""
	}), " ")

	script := string(data)
	script = strings.ReplaceAll(script, projectToken+"_stitched", s.cfg.ProjectName)
	script = strings.ReplaceAll(script, projectToken, s.original)
	script = strings.ReplaceAll(script, "mystamp", s.cfg.Stamp)
	script = strings.ReplaceAll(script, "mygraph_name_list", dirs)

	return writeExecutable(s.cfg.OutputDir+"/build_lib.sh", []byte(script))
}

// WriteProject writes all stitched auxiliary files.
func (s *StitchedWriter) WriteProject() error {
	if len(s.subs) == 0 {
		return &graph.ConfigurationError{Reason: "stitched design has no sub-projects"}
	}
	if err := util.EnsureDir(s.cfg.OutputDir); err != nil {
		return err
	}
	if err := s.WriteBuildScript(); err != nil {
		return err
	}
	return s.WriteBridge()
}
