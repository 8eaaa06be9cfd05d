package writer

import (
	"fmt"
	"path"
	"strings"

	"github.com/ml2hw/ml2hw/assets"
	"github.com/ml2hw/ml2hw/config"
	"github.com/ml2hw/ml2hw/graph"
	"github.com/ml2hw/ml2hw/log"
	"github.com/ml2hw/ml2hw/util"
)

// Writer generates the complete source tree of one project. The model
// graph is read-only; every generated file is built fully in memory and
// only written once its expansion succeeded, so a directive failure never
// leaves a half-expanded file behind.
type Writer struct {
	ctx Context
}

// New creates a writer for the given project. The network configuration is
// optional; directives that need port descriptors fail with
// MissingContextError when it is absent.
func New(cfg config.ProjectConfig, g *graph.Graph, net *graph.NetworkConfig) *Writer {
	return &Writer{ctx: Context{Config: cfg, Graph: g, Network: net}}
}

func (w *Writer) outPath(elem ...string) string {
	return path.Join(append([]string{w.ctx.Config.OutputDir}, elem...)...)
}

// expandTemplate reads an embedded template, applies the directive registry
// and returns the rendered bytes.
func (w *Writer) expandTemplate(template string, directives []Directive) ([]byte, error) {
	data, err := assets.Read(template)
	if err != nil {
		return nil, fmt.Errorf("failed to read template '%s': %w", template, err)
	}
	lines, err := NewEngine(&w.ctx, directives).Expand(splitLines(string(data)))
	if err != nil {
		return nil, fmt.Errorf("expanding template '%s': %w", template, err)
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

func (w *Writer) writeExpanded(template, dst string, directives []Directive) error {
	data, err := w.expandTemplate(template, directives)
	if err != nil {
		return err
	}
	return util.WriteFile(dst, data)
}

// WriteProjectDir creates the output directory skeleton.
func (w *Writer) WriteProjectDir() error {
	return util.EnsureDir(w.outPath("firmware", "weights"))
}

// WriteProjectCPP writes the main architecture source file.
func (w *Writer) WriteProjectCPP() error {
	directives := []Directive{
		{markerHeader, expandHeader},
		{markerNamespaceStart, expandNamespaceStart},
		{markerNamespaceEnd, expandNamespaceEnd},
		{markerLoadWeights, expandLoadWeights},
		{markerIO, expandIO},
		{markerLayers, expandLayers},
	}
	dst := w.outPath("firmware", w.ctx.Config.ProjectName+".cpp")
	return w.writeExpanded("vivado/firmware/myproject.cpp", dst, directives)
}

// WriteProjectHeader writes the main architecture header file.
func (w *Writer) WriteProjectHeader() error {
	directives := []Directive{
		{markerHeader, expandHeader},
		{markerNamespaceStart, expandNamespaceStart},
		{markerNamespaceEnd, expandNamespaceEnd},
	}
	dst := w.outPath("firmware", w.ctx.Config.ProjectName+".h")
	return w.writeExpanded("vivado/firmware/myproject.h", dst, directives)
}

// WriteDefines writes the type definitions file.
func (w *Writer) WriteDefines() error {
	directives := []Directive{
		{markerNumbers, expandNumbers},
		{markerLayerPrecision, expandLayerPrecision},
		{markerNamespaceStart, expandNamespaceStart},
		{markerNamespaceEnd, expandNamespaceEnd},
	}
	return w.writeExpanded("vivado/firmware/defines.h", w.outPath("firmware", "defines.h"), directives)
}

// WriteParameters writes the layer configuration file.
func (w *Writer) WriteParameters() error {
	directives := []Directive{
		{markerIncludes, expandIncludes},
		{markerWeights, expandWeightIncludes},
		{markerLayerConfig, expandLayerConfig},
		{markerNamespaceStart, expandNamespaceStart},
		{markerNamespaceEnd, expandNamespaceEnd},
	}
	return w.writeExpanded("vivado/firmware/parameters.h", w.outPath("firmware", "parameters.h"), directives)
}

// WriteTestBench writes the C simulation testbench.
func (w *Writer) WriteTestBench() error {
	directives := []Directive{
		{markerBram, expandBramIncludes},
		{markerData, expandData},
		{markerZero, expandZero},
		{markerTopLevel, expandTopLevel},
		{markerPredictions, expandPredictions},
		{markerTBOutput, expandTBOutput},
		{markerOutput, expandOutput},
		{markerQuantized, expandOutput},
		{markerNamespace, expandUsingNamespace},
	}
	dst := w.outPath(w.ctx.Config.ProjectName + "_test.cpp")
	return w.writeExpanded("vivado/myproject_test.cpp", dst, directives)
}

// WriteBridge writes the foreign-function bridge source.
func (w *Writer) WriteBridge() error {
	directives := []Directive{
		{markerBram, expandBramIncludes},
		{markerHeader, expandBridgeHeader},
		{markerWrapper, expandBridgeWrapper},
		{markerTraceOutputs, expandTraceOutputs},
		{markerNamespace, expandUsingNamespace},
		{markerTBInputWriter, expandTBInputWriter},
	}
	dst := w.outPath(w.ctx.Config.ProjectName + "_bridge.cpp")
	return w.writeExpanded("vivado/myproject_bridge.cpp", dst, directives)
}

// WriteBuildScripts writes the project variables file and the toolchain
// build scripts.
func (w *Writer) WriteBuildScripts() error {
	cfg := w.ctx.Config

	var prj strings.Builder
	fmt.Fprintf(&prj, "variable project_name\n")
	fmt.Fprintf(&prj, "set project_name \"%s\"\n", cfg.ProjectName)
	fmt.Fprintf(&prj, "variable backend\n")
	fmt.Fprintf(&prj, "set backend \"vivado\"\n")
	fmt.Fprintf(&prj, "variable part\n")
	fmt.Fprintf(&prj, "set part \"%s\"\n", cfg.Part)
	fmt.Fprintf(&prj, "variable clock_period\n")
	fmt.Fprintf(&prj, "set clock_period %d\n", cfg.ClockPeriod)
	fmt.Fprintf(&prj, "variable clock_uncertainty\n")
	fmt.Fprintf(&prj, "set clock_uncertainty %s\n", cfg.ClockUncertainty)
	fmt.Fprintf(&prj, "variable version\n")
	fmt.Fprintf(&prj, "set version \"%s\"\n", cfg.Version)
	fmt.Fprintf(&prj, "variable maximum_size\n")
	fmt.Fprintf(&prj, "set maximum_size %d\n", cfg.MaximumSize)
	if err := util.WriteFile(w.outPath("project.tcl"), []byte(prj.String())); err != nil {
		return err
	}

	for _, script := range []string{"build_prj.tcl", "vivado_synth.tcl"} {
		data, err := assets.Read("vivado/" + script)
		if err != nil {
			return err
		}
		if err := util.WriteFile(w.outPath(script), data); err != nil {
			return err
		}
	}

	data, err := assets.Read("vivado/build_lib.sh")
	if err != nil {
		return err
	}
	script := strings.ReplaceAll(string(data), projectToken, cfg.ProjectName)
	script = strings.ReplaceAll(script, "mystamp", cfg.Stamp)
	return writeExecutable(w.outPath("build_lib.sh"), []byte(script))
}

// WriteYAMLConfig persists the project configuration alongside the
// generated sources.
func (w *Writer) WriteYAMLConfig() error {
	return config.SaveProject(w.outPath(config.ProjectFileName), w.ctx.Config)
}

// WriteProject generates the full project tree. A failing file aborts only
// itself; files already written stay in place.
func (w *Writer) WriteProject() error {
	log.Log("Writing HLS project to %s\n", w.ctx.Config.OutputDir)
	steps := []func() error{
		w.WriteProjectDir,
		w.WriteProjectCPP,
		w.WriteProjectHeader,
		w.WriteWeights,
		w.WriteDefines,
		w.WriteParameters,
		w.WriteTestBench,
		w.WriteBridge,
		w.WriteBuildScripts,
		w.WriteYAMLConfig,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	if w.ctx.Config.Writer.WriteTar {
		if err := w.WriteTar(); err != nil {
			return err
		}
	}
	log.Success("Project '%s' written\n", w.ctx.Config.ProjectName)
	return nil
}
