package writer

import (
	"fmt"
	"strings"

	"github.com/ml2hw/ml2hw/graph"
	"github.com/ml2hw/ml2hw/util"
)

const indent = "    "

// Directive markers are a fixed, versioned vocabulary shared with the
// template files; they must be matched verbatim.
const (
	markerHeader         = "// hls-fpga-machine-learning insert header"
	markerNamespaceStart = "// hls-fpga-machine-learning insert namespace-start"
	markerNamespaceEnd   = "// hls-fpga-machine-learning insert namespace-end"
	markerNamespace      = "// hls-fpga-machine-learning insert namespace"
	markerLoadWeights    = "// hls-fpga-machine-learning insert load weights"
	markerIO             = "// hls-fpga-machine-learning insert IO"
	markerLayers         = "// hls-fpga-machine-learning insert layers"
	markerLayerConfig    = "// hls-fpga-machine-learning insert layer-config"
	markerIncludes       = "// hls-fpga-machine-learning insert includes"
	markerWeights        = "// hls-fpga-machine-learning insert weights"
	markerNumbers        = "// hls-fpga-machine-learning insert numbers"
	markerLayerPrecision = "// hls-fpga-machine-learning insert layer-precision"
	markerBram           = "// hls-fpga-machine-learning insert bram"
	markerData           = "// hls-fpga-machine-learning insert data"
	markerZero           = "// hls-fpga-machine-learning insert zero"
	markerTopLevel       = "// hls-fpga-machine-learning insert top-level-function"
	markerPredictions    = "// hls-fpga-machine-learning insert predictions"
	markerTBOutput       = "// hls-fpga-machine-learning insert tb-output"
	markerOutput         = "// hls-fpga-machine-learning insert output"
	markerQuantized      = "// hls-fpga-machine-learning insert quantized"
	markerWrapper        = "// hls-fpga-machine-learning insert wrapper"
	markerTraceOutputs   = "// hls-fpga-machine-learning insert trace_outputs"
	markerTBInputWriter  = "// hls-fpga-machine-learning insert tb_input_writer"
)

// expandHeader renders the formal parameter list of the top-level function:
// inputs and outputs as references, then on-chip-memory weights by value.
func expandHeader(ctx *Context, line string) (string, error) {
	inputs := strings.Join(util.MappedSlice(ctx.Graph.Inputs, func(v *graph.Variable) string {
		return v.ReferenceDefinition()
	}), ", ")
	outputs := strings.Join(util.MappedSlice(ctx.Graph.Outputs, func(v *graph.Variable) string {
		return v.ReferenceDefinition()
	}), ", ")
	brams := util.MappedSlice(ctx.Graph.BRAMWeights(), func(w *graph.Weight) string {
		return indent + w.Definition()
	})

	text := indent + inputs + ",\n" + indent + outputs
	if len(brams) > 0 {
		text += ",\n" + strings.Join(brams, ", \n")
	}
	return text + "\n", nil
}

func expandNamespaceStart(ctx *Context, line string) (string, error) {
	if ctx.Config.Writer.Namespace == "" {
		return "", nil
	}
	return "namespace " + ctx.Config.Writer.Namespace + " {\n", nil
}

func expandNamespaceEnd(ctx *Context, line string) (string, error) {
	if ctx.Config.Writer.Namespace == "" {
		return "", nil
	}
	return "}\n", nil
}

func expandUsingNamespace(ctx *Context, line string) (string, error) {
	if ctx.Config.Writer.Namespace == "" {
		return "", nil
	}
	return indentOf(line) + "using namespace " + ctx.Config.Writer.Namespace + ";\n", nil
}

// expandLoadWeights emits one loader call per weight, selected by the weight
// encoding, guarded so the load runs at most once per process and compiled
// out during synthesis. Emitted only when weight text files are written.
func expandLoadWeights(ctx *Context, line string) (string, error) {
	text := line + "\n"
	if !ctx.Config.Writer.WriteWeightsTxt {
		return text, nil
	}

	text += "#ifndef __SYNTHESIS__\n"
	text += indent + "static bool loaded_weights = false;\n"
	text += indent + "if (!loaded_weights) {\n"
	for _, w := range ctx.Graph.Weights() {
		switch w.Encoding {
		case graph.EncodingCompressed:
			text += indent + indent + fmt.Sprintf("nnet::load_compressed_weights_from_txt<%s, %d>(%s, \"%s.txt\");\n",
				w.Type.Name, w.NonZeros, w.Name, w.Name)
		case graph.EncodingExponent:
			text += indent + indent + fmt.Sprintf("nnet::load_exponent_weights_from_txt<%s, %d>(%s, \"%s.txt\");\n",
				w.Type.Name, w.Length(), w.Name, w.Name)
		default:
			text += indent + indent + fmt.Sprintf("nnet::load_weights_from_txt<%s, %d>(%s, \"%s.txt\");\n",
				w.Type.Name, w.Length(), w.Name, w.Name)
		}
	}
	text += indent + indent + "loaded_weights = true;\n"
	text += indent + "}\n"
	text += "#endif\n"
	return text, nil
}

// expandIO emits the per-port memory-layout pragmas and the interface and
// pipeline pragmas. The emitted shape depends on the configured transport.
func expandIO(ctx *Context, line string) (string, error) {
	text := line + "\n"

	inputNames := variableNames(ctx.Graph.Inputs)
	outputNames := variableNames(ctx.Graph.Outputs)
	bramNames := util.MappedSlice(ctx.Graph.BRAMWeights(), func(w *graph.Weight) string { return w.Name })

	pipeline := indent + "#pragma HLS " + strings.ToUpper(ctx.Config.PipelineStyle)
	if ctx.Config.PipelineStyle == "pipeline" && ctx.Config.PipelineII > 0 {
		pipeline += fmt.Sprintf(" II=%d", ctx.Config.PipelineII)
	}
	pipeline += "\n"

	switch ctx.Config.IOType {
	case "io_parallel":
		for _, v := range append(append([]*graph.Variable{}, ctx.Graph.Inputs...), ctx.Graph.Outputs...) {
			if v.Pragma == nil {
				return "", &MissingContextError{Directive: "insert IO", Key: v.Name + ".pragma"}
			}
			pragma, err := v.Pragma.Render(v.Name)
			if err != nil {
				return "", err
			}
			text += indent + pragma + "\n"
		}
		text += indent + fmt.Sprintf("#pragma HLS INTERFACE ap_vld port=%s,%s \n",
			strings.Join(inputNames, ","), strings.Join(outputNames, ","))
		text += pipeline
	case "io_stream":
		text += indent + fmt.Sprintf("#pragma HLS INTERFACE axis port=%s,%s \n",
			strings.Join(inputNames, ","), strings.Join(outputNames, ","))
		if len(bramNames) > 0 {
			text += indent + fmt.Sprintf("#pragma HLS INTERFACE bram port=%s \n", strings.Join(bramNames, ","))
		}
		text += pipeline
	default:
		return "", &graph.ConfigurationError{Reason: "unknown io_type '" + ctx.Config.IOType + "'"}
	}
	return text, nil
}

// expandLayers emits the network body in two passes: first every
// intermediate variable declaration with its memory pragma, then every
// layer's executable statements. The two-pass order is a contract: a later
// layer may reference an earlier layer's buffer, so all declarations must
// precede all statements regardless of graph traversal order.
func expandLayers(ctx *Context, line string) (string, error) {
	text := line + "\n\n"

	declared := map[string]bool{}
	for _, l := range ctx.Graph.Layers {
		for _, v := range l.Variables {
			if ctx.Graph.IsInput(v) || ctx.Graph.IsOutput(v) || declared[v.Name] {
				continue
			}
			declared[v.Name] = true
			text += indent + v.Definition() + ";\n"
			if v.Pragma != nil {
				pragma, err := v.Pragma.Render(v.Name)
				if err != nil {
					return "", err
				}
				text += indent + pragma + "\n\n"
			}
		}
	}

	for _, l := range ctx.Graph.Layers {
		if len(l.Function) == 0 {
			continue
		}
		if len(l.Function) == 1 {
			text += indent + l.Function[0] + " // " + l.Name + "\n"
		} else {
			text += indent + "// " + l.Name + "\n"
			for _, stmt := range l.Function {
				text += indent + stmt + "\n"
			}
		}
		if ctx.Config.Writer.TraceOutput && l.Trace {
			text += "#ifndef __SYNTHESIS__\n"
			for _, v := range l.Variables {
				text += indent + fmt.Sprintf("nnet::save_layer_output<%s>(%s, \"%s\", %s);\n",
					v.Type.Name, v.Name, l.Name, v.Size())
			}
			text += "#endif\n"
		}
		text += "\n"
	}
	return text, nil
}

// expandLayerConfig emits each layer's configuration block.
func expandLayerConfig(ctx *Context, line string) (string, error) {
	text := line + "\n"
	for _, l := range ctx.Graph.Layers {
		if l.Config == "" {
			continue
		}
		text += "// " + l.Name + "\n"
		text += l.Config + "\n"
	}
	return text, nil
}

// expandIncludes emits the deduplicated, sorted external includes of all layers.
func expandIncludes(ctx *Context, line string) (string, error) {
	text := line + "\n"
	seen := map[string]bool{}
	includes := []string{}
	for _, l := range ctx.Graph.Layers {
		for _, inc := range l.Includes {
			if !seen[inc] {
				seen[inc] = true
				includes = append(includes, inc)
			}
		}
	}
	for _, inc := range util.OrderedSlice(includes) {
		text += fmt.Sprintf("#include \"%s\"\n", inc)
	}
	return text, nil
}

// expandWeightIncludes emits one include per weight header, skipping weights
// placed in block memory, which are passed into the top level instead.
func expandWeightIncludes(ctx *Context, line string) (string, error) {
	text := line + "\n"
	for _, w := range ctx.Graph.Weights() {
		if w.Storage == graph.StorageBRAM {
			continue
		}
		text += fmt.Sprintf("#include \"weights/%s.h\"\n", w.Name)
	}
	return text, nil
}

// expandNumbers emits the shape defines of each layer's output buffer.
func expandNumbers(ctx *Context, line string) (string, error) {
	text := line + "\n"
	for _, l := range ctx.Graph.Layers {
		out := l.Output()
		if out == nil {
			continue
		}
		for _, d := range out.Dims {
			text += fmt.Sprintf("#define %s %d\n", d.Name, d.Value)
		}
	}
	return text, nil
}

// expandLayerPrecision emits the distinct precision typedefs of the graph.
func expandLayerPrecision(ctx *Context, line string) (string, error) {
	text := line + "\n"
	for _, t := range ctx.Graph.Precisions() {
		text += t.Definition() + "\n"
	}
	return text, nil
}

// expandBramIncludes emits the weight headers the testbench and bridge need
// to supply the block-memory arguments themselves.
func expandBramIncludes(ctx *Context, line string) (string, error) {
	text := line + "\n"
	for _, w := range ctx.Graph.BRAMWeights() {
		text += fmt.Sprintf("#include \"firmware/weights/%s.h\"\n", w.Name)
	}
	return text, nil
}

// expandData emits the testbench statements copying one parsed input row
// into the input buffers and declaring the output buffers.
func expandData(ctx *Context, line string) (string, error) {
	text := line + "\n"
	offset := 0
	for _, in := range ctx.Graph.Inputs {
		text += "      " + in.Definition() + ";\n"
		text += fmt.Sprintf("      nnet::copy_data<float, %s, %d, %s>(in, %s);\n",
			in.Type.Name, offset, in.Size(), in.Name)
		offset += in.Count()
	}
	for _, out := range ctx.Graph.Outputs {
		text += "      " + out.Definition() + ";\n"
	}
	return text, nil
}

// expandZero emits the default stimulus used when no input file is present.
func expandZero(ctx *Context, line string) (string, error) {
	ind := indentOf(line)
	text := line + "\n"
	for _, in := range ctx.Graph.Inputs {
		text += ind + in.Definition() + ";\n"
		text += ind + fmt.Sprintf("nnet::fill_zero<%s, %s>(%s);\n", in.Type.Name, in.Size(), in.Name)
	}
	for _, out := range ctx.Graph.Outputs {
		text += ind + out.Definition() + ";\n"
	}
	return text, nil
}

// expandTopLevel emits the call of the generated top-level function.
func expandTopLevel(ctx *Context, line string) (string, error) {
	args := joinNonEmpty(
		strings.Join(variableNames(ctx.Graph.Inputs), ","),
		strings.Join(variableNames(ctx.Graph.Outputs), ","),
		strings.Join(util.MappedSlice(ctx.Graph.BRAMWeights(), func(w *graph.Weight) string { return w.Name }), ","),
	)
	return line + "\n" + indentOf(line) + fmt.Sprintf("%s(%s);\n", ctx.Config.ProjectName, args), nil
}

// expandPredictions emits the loop printing the reference predictions.
func expandPredictions(ctx *Context, line string) (string, error) {
	ind := indentOf(line)
	text := line + "\n"
	for _, out := range ctx.Graph.Outputs {
		text += ind + fmt.Sprintf("for(int i = 0; i < %s; i++) {\n", out.Size())
		text += ind + "  std::cout << pr[i] << \" \";\n"
		text += ind + "}\n"
		text += ind + "std::cout << std::endl;\n"
	}
	return text, nil
}

// expandTBOutput emits the file-stream result writes, unless results go to
// stdout only.
func expandTBOutput(ctx *Context, line string) (string, error) {
	ind := indentOf(line)
	text := line + "\n"
	if ctx.Config.Writer.TBOutputStream == "stdout" {
		return text, nil
	}
	for _, out := range ctx.Graph.Outputs {
		text += ind + fmt.Sprintf("nnet::print_result<%s, %s>(%s, fout);\n", out.Type.Name, out.Size(), out.Name)
	}
	return text, nil
}

// expandOutput emits the stdout result writes, unless results go to file only.
func expandOutput(ctx *Context, line string) (string, error) {
	ind := indentOf(line)
	text := line + "\n"
	if ctx.Config.Writer.TBOutputStream == "file" {
		return text, nil
	}
	keep := "false"
	if ctx.Config.Writer.TBOutputStream != "stdout" {
		keep = "true"
	}
	for _, out := range ctx.Graph.Outputs {
		text += ind + fmt.Sprintf("nnet::print_result<%s, %s>(%s, std::cout, %s);\n",
			out.Type.Name, out.Size(), out.Name, keep)
	}
	return text, nil
}

// expandTraceOutputs emits the trace buffer allocations of all traced layers.
func expandTraceOutputs(ctx *Context, line string) (string, error) {
	text := ""
	for _, l := range ctx.Graph.Layers {
		if len(l.Function) == 0 || !ctx.Config.Writer.TraceOutput || !l.Trace {
			continue
		}
		for _, v := range l.Variables {
			text += indent + fmt.Sprintf("nnet::trace_outputs->insert(std::pair<std::string, void *>(\"%s\", (void *) malloc(%s * element_size)));\n",
				l.Name, v.Size())
		}
	}
	return text, nil
}

func variableNames(vars []*graph.Variable) []string {
	return util.MappedSlice(vars, func(v *graph.Variable) string { return v.Name })
}

func joinNonEmpty(parts ...string) string {
	nonEmpty := util.FilteredSlice(parts, func(s string) bool { return s != "" })
	return strings.Join(nonEmpty, ",")
}

// paramSuffix extracts the parameter after the '#' of a marker line, e.g.
// the element type of the bridge header and wrapper directives.
func paramSuffix(line string) string {
	_, after, found := strings.Cut(line, "#")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}
