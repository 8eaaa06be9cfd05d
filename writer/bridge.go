package writer

import (
	"fmt"
	"strings"

	"github.com/ml2hw/ml2hw/graph"
)

// The bridge directives take the element type as a '#'-suffixed parameter
// on the marker line, so the same template serves the float and double
// entry points.

func expandBridgeHeader(ctx *Context, line string) (string, error) {
	dtype := paramSuffix(line)
	if dtype == "" {
		return "", &MissingContextError{Directive: "insert header", Key: "element type"}
	}
	inputs := []string{}
	for _, in := range ctx.Graph.Inputs {
		inputs = append(inputs, fmt.Sprintf("%s %s[%s]", dtype, in.Name, in.Size()))
	}
	outputs := []string{}
	for _, out := range ctx.Graph.Outputs {
		outputs = append(outputs, fmt.Sprintf("%s %s[%s]", dtype, out.Name, out.Size()))
	}
	return indent + strings.Join(inputs, ", ") + ",\n" + indent + strings.Join(outputs, ", ") + "\n", nil
}

func expandBridgeWrapper(ctx *Context, line string) (string, error) {
	dtype := paramSuffix(line)
	if dtype == "" {
		return "", &MissingContextError{Directive: "insert wrapper", Key: "element type"}
	}

	text := ""
	for _, in := range ctx.Graph.Inputs {
		text += indent + in.SuffixedDefinition("_ap") + ";\n"
		text += indent + fmt.Sprintf("nnet::convert_data<%s, %s, %s>(%s, %s_ap);\n",
			dtype, in.Type.Name, in.Size(), in.Name, in.Name)
	}
	text += "\n"

	for _, out := range ctx.Graph.Outputs {
		text += indent + out.SuffixedDefinition("_ap") + ";\n"
	}
	text += "\n"

	suffixed := func(vars []*graph.Variable) []string {
		names := []string{}
		for _, v := range vars {
			names = append(names, v.Name+"_ap")
		}
		return names
	}
	bramNames := []string{}
	for _, w := range ctx.Graph.BRAMWeights() {
		bramNames = append(bramNames, w.Name)
	}
	args := joinNonEmpty(
		strings.Join(suffixed(ctx.Graph.Inputs), ","),
		strings.Join(suffixed(ctx.Graph.Outputs), ","),
		strings.Join(bramNames, ","),
	)
	text += indent + fmt.Sprintf("%s(%s);\n", ctx.Config.ProjectName, args)
	text += "\n"

	for _, out := range ctx.Graph.Outputs {
		text += indent + fmt.Sprintf("nnet::convert_data<%s, %s, %s>(%s_ap, %s);\n",
			out.Type.Name, dtype, out.Size(), out.Name, out.Name)
	}
	return text, nil
}

// expandTBInputWriter emits dump functions that feed the stitched-design
// simulation: the raw fixed-point bit patterns of every converted input are
// written to one text file per input. Streamed inputs with a batching
// dimension need the port descriptor to know the FIFO shape.
func expandTBInputWriter(ctx *Context, line string) (string, error) {
	text := ""
	for _, dtype := range []string{"float", "double"} {
		text += fmt.Sprintf("void dump_tb_inputs_%s(\n", dtype)
		text += indent + "const char* output_path"
		for _, in := range ctx.Graph.Inputs {
			text += fmt.Sprintf(",\n%s%s %s[%s]", indent, dtype, in.Name, in.Size())
		}
		text += "\n) {\n\n"

		for _, in := range ctx.Graph.Inputs {
			text += indent + in.SuffixedDefinition("_ap") + ";\n"
			text += indent + fmt.Sprintf("nnet::convert_data<%s, %s, %s>(%s, %s_ap);\n",
				dtype, in.Type.Name, in.Size(), in.Name, in.Name)
		}
		text += "\n"

		for _, in := range ctx.Graph.Inputs {
			dump, err := dumpInputBits(ctx, in)
			if err != nil {
				return "", err
			}
			text += dump
		}
		text += "}\n"
	}
	return text, nil
}

func dumpInputBits(ctx *Context, in *graph.Variable) (string, error) {
	fout := "fout_" + in.Name
	text := indent + fmt.Sprintf("std::ofstream %s(std::string(output_path) + \"/%s_input_data.txt\");\n", fout, in.Name)

	switch {
	case in.Stream && len(in.Dims) > 1:
		if ctx.Network == nil {
			return "", &MissingContextError{Directive: "insert tb_input_writer", Key: in.Name}
		}
		port, ok := ctx.Network.Input(in.Name)
		if !ok {
			return "", &MissingContextError{Directive: "insert tb_input_writer", Key: in.Name}
		}
		text += indent + fmt.Sprintf("for(int r = 0; r < %d; r++) {\n", port.FifoDepth)
		text += indent + indent + fmt.Sprintf("auto temp = %s_ap.read();\n", in.Name)
		text += indent + indent + fmt.Sprintf("for(int c = 0; c < %d; c++) {\n", port.BatchSize)
		text += indent + indent + indent + fmt.Sprintf("ap_uint<%s::value_type::width> bits = temp[c].range();\n", in.Type.Name)
		text += indent + indent + indent + fmt.Sprintf("%s << bits.to_uint() << (c+1<%d ? ' ' : '\\n');\n", fout, port.BatchSize)
		text += indent + indent + "}\n"
		text += indent + "}\n"
	case in.Stream:
		text += indent + fmt.Sprintf("for(int i = 0; i < %s; i++) {\n", in.Size())
		text += indent + indent + fmt.Sprintf("auto temp = %s_ap.read();\n", in.Name)
		text += indent + indent + fmt.Sprintf("ap_uint<%s::value_type::width> bits = temp[0].range();\n", in.Type.Name)
		text += indent + indent + fmt.Sprintf("%s << bits.to_uint() << (i+1<%s ? ' ' : '\\n');\n", fout, in.Size())
		text += indent + "}\n"
	default:
		text += indent + fmt.Sprintf("for(int i = 0; i < %s; i++) {\n", in.Size())
		text += indent + indent + fmt.Sprintf("ap_uint<%s::width> bits = %s_ap[i].range();\n", in.Type.Name, in.Name)
		text += indent + indent + fmt.Sprintf("%s << bits.to_uint() << (i+1<%s ? ' ' : '\\n');\n", fout, in.Size())
		text += indent + "}\n"
	}
	text += indent + fout + ".close();\n\n"
	return text, nil
}
