package writer

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ml2hw/ml2hw/graph"
	"github.com/ml2hw/ml2hw/util"
)

// WriteWeights emits one header per weight and, when configured, a text
// sidecar with the raw values. The text variant splits the declaration so
// simulation loads the values from the file while synthesis sees the full
// constant array.
func (w *Writer) WriteWeights() error {
	for _, weight := range w.ctx.Graph.Weights() {
		if err := w.writeWeight(weight); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeWeight(weight *graph.Weight) error {
	cfg := w.ctx.Config.Writer
	var h strings.Builder

	dims := util.MappedSlice(weight.Dims, func(d graph.Dim) string { return fmt.Sprintf("%d", d.Value) })
	fmt.Fprintf(&h, "//Array shape [%s]\n", strings.Join(dims, ", "))
	fmt.Fprintf(&h, "//Min %.12f\n", weight.Min)
	fmt.Fprintf(&h, "//Max %.12f\n", weight.Max)
	fmt.Fprintf(&h, "//Number of zeros %d\n", countZeros(weight.Values))
	fmt.Fprintf(&h, "\n")

	guard := strings.ToUpper(weight.Name) + "_H_"
	fmt.Fprintf(&h, "#ifndef %s\n", guard)
	fmt.Fprintf(&h, "#define %s\n", guard)
	fmt.Fprintf(&h, "\n")

	if cfg.Namespace != "" {
		fmt.Fprintf(&h, "namespace %s {\n\n", cfg.Namespace)
	}

	if cfg.WriteWeightsTxt {
		fmt.Fprintf(&h, "#ifndef __SYNTHESIS__\n")
		fmt.Fprintf(&h, "%s;\n", weight.Definition())
		fmt.Fprintf(&h, "#else\n")
	}

	fmt.Fprintf(&h, "%s = {%s};\n\n", weight.Definition(), strings.Join(weight.Values, ", "))

	if cfg.WriteWeightsTxt {
		fmt.Fprintf(&h, "#endif\n")
	}

	if cfg.Namespace != "" {
		fmt.Fprintf(&h, "}\n\n")
	}

	fmt.Fprintf(&h, "\n#endif\n")

	dst := w.outPath("firmware", "weights", weight.Name+".h")
	if err := util.WriteFile(dst, []byte(h.String())); err != nil {
		return err
	}

	if cfg.WriteWeightsTxt {
		txt := strings.Join(weight.Values, ", ")
		if err := util.WriteFile(w.outPath("firmware", "weights", weight.Name+".txt"), []byte(txt)); err != nil {
			return err
		}
	}
	return nil
}

func countZeros(values []string) int {
	zeros := 0
	for _, v := range values {
		if isZeroLiteral(v) {
			zeros++
		}
	}
	return zeros
}

func isZeroLiteral(v string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && f == 0
}

func writeExecutable(file string, data []byte) error {
	if err := util.WriteFile(file, data); err != nil {
		return err
	}
	return os.Chmod(file, 0775)
}
