package writer

import (
	"os"
	"path"
	"strings"
	"testing"
)

func testWriter(t *testing.T) *Writer {
	t.Helper()
	cfg := testConfig()
	cfg.OutputDir = path.Join(t.TempDir(), "resnet_prj")
	return New(cfg, fixtureGraph(), nil)
}

func readGenerated(t *testing.T, w *Writer, elem ...string) string {
	t.Helper()
	data, err := os.ReadFile(w.outPath(elem...))
	if err != nil {
		t.Fatalf("reading generated file: %v", err)
	}
	return string(data)
}

func TestWriteProjectTree(t *testing.T) {
	w := testWriter(t)
	if err := w.WriteProject(); err != nil {
		t.Fatalf("WriteProject: %v", err)
	}
	for _, file := range []string{
		"firmware/resnet.cpp",
		"firmware/resnet.h",
		"firmware/defines.h",
		"firmware/parameters.h",
		"firmware/weights/w2.h",
		"firmware/weights/w2.txt",
		"resnet_test.cpp",
		"resnet_bridge.cpp",
		"project.tcl",
		"build_prj.tcl",
		"vivado_synth.tcl",
		"build_lib.sh",
		"ml2hw_config.yml",
	} {
		if _, err := os.Stat(w.outPath(file)); err != nil {
			t.Errorf("missing %s: %v", file, err)
		}
	}
}

func TestWriteProjectReplacesAllTokens(t *testing.T) {
	w := testWriter(t)
	if err := w.WriteProject(); err != nil {
		t.Fatalf("WriteProject: %v", err)
	}
	for _, file := range []string{
		"firmware/resnet.cpp",
		"firmware/resnet.h",
		"resnet_test.cpp",
		"resnet_bridge.cpp",
		"build_lib.sh",
	} {
		text := readGenerated(t, w, file)
		if strings.Contains(text, "myproject") || strings.Contains(text, "MYPROJECT") {
			t.Errorf("unreplaced project token in %s", file)
		}
	}
}

func TestWriteProjectCPPContents(t *testing.T) {
	w := testWriter(t)
	if err := w.WriteProjectDir(); err != nil {
		t.Fatalf("WriteProjectDir: %v", err)
	}
	if err := w.WriteProjectCPP(); err != nil {
		t.Fatalf("WriteProjectCPP: %v", err)
	}
	text := readGenerated(t, w, "firmware", "resnet.cpp")
	for _, want := range []string{
		"void resnet(",
		"input_t input_1[N_INPUT_1_1]",
		"result_t layer3_out[N_LAYER_3]",
		markerLoadWeights,
		"#pragma HLS INTERFACE ap_vld port=input_1,layer3_out",
		"nnet::dense<input_t, layer2_t, config2>(input_1, layer2_out, w2); // dense",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in resnet.cpp:\n%s", want, text)
		}
	}
}

func TestWriteWeightsSplitDeclaration(t *testing.T) {
	w := testWriter(t)
	if err := w.WriteProjectDir(); err != nil {
		t.Fatalf("WriteProjectDir: %v", err)
	}
	if err := w.WriteWeights(); err != nil {
		t.Fatalf("WriteWeights: %v", err)
	}

	header := readGenerated(t, w, "firmware", "weights", "w2.h")
	for _, want := range []string{
		"//Array shape [8]",
		"//Min -0.250000000000",
		"//Max 1.000000000000",
		"//Number of zeros 4",
		"#ifndef W2_H_",
		"#ifndef __SYNTHESIS__",
		"weight2_t w2[N_LAYER_2];",
		"weight2_t w2[N_LAYER_2] = {0.5, 0, -0.25, 0, 1, 0, 0, 0.125};",
	} {
		if !strings.Contains(header, want) {
			t.Errorf("missing %q in w2.h:\n%s", want, header)
		}
	}

	txt := readGenerated(t, w, "firmware", "weights", "w2.txt")
	if txt != "0.5, 0, -0.25, 0, 1, 0, 0, 0.125" {
		t.Errorf("unexpected sidecar contents: %q", txt)
	}
}

func TestWriteWeightsInlineOnly(t *testing.T) {
	w := testWriter(t)
	w.ctx.Config.Writer.WriteWeightsTxt = false
	if err := w.WriteProjectDir(); err != nil {
		t.Fatalf("WriteProjectDir: %v", err)
	}
	if err := w.WriteWeights(); err != nil {
		t.Fatalf("WriteWeights: %v", err)
	}
	header := readGenerated(t, w, "firmware", "weights", "w2.h")
	if strings.Contains(header, "__SYNTHESIS__") {
		t.Errorf("split declaration emitted without text sidecars:\n%s", header)
	}
	if _, err := os.Stat(w.outPath("firmware", "weights", "w2.txt")); !os.IsNotExist(err) {
		t.Errorf("unexpected sidecar file, stat err: %v", err)
	}
}

func TestWriteWeightsNamespace(t *testing.T) {
	w := testWriter(t)
	w.ctx.Config.Writer.Namespace = "resnet_ns"
	if err := w.WriteProjectDir(); err != nil {
		t.Fatalf("WriteProjectDir: %v", err)
	}
	if err := w.WriteWeights(); err != nil {
		t.Fatalf("WriteWeights: %v", err)
	}
	header := readGenerated(t, w, "firmware", "weights", "w2.h")
	if !strings.Contains(header, "namespace resnet_ns {") {
		t.Errorf("namespace missing:\n%s", header)
	}
}

func TestWriteBuildScripts(t *testing.T) {
	w := testWriter(t)
	w.ctx.Config.Stamp = "abcd1234"
	if err := w.WriteProjectDir(); err != nil {
		t.Fatalf("WriteProjectDir: %v", err)
	}
	if err := w.WriteBuildScripts(); err != nil {
		t.Fatalf("WriteBuildScripts: %v", err)
	}

	prj := readGenerated(t, w, "project.tcl")
	for _, want := range []string{
		"set project_name \"resnet\"",
		"set part \"xcvu13p-flga2577-2-e\"",
		"set clock_period 5",
	} {
		if !strings.Contains(prj, want) {
			t.Errorf("missing %q in project.tcl:\n%s", want, prj)
		}
	}

	lib := readGenerated(t, w, "build_lib.sh")
	if strings.Contains(lib, "mystamp") || !strings.Contains(lib, "abcd1234") {
		t.Errorf("stamp not substituted:\n%s", lib)
	}
	info, err := os.Stat(w.outPath("build_lib.sh"))
	if err != nil {
		t.Fatalf("stat build_lib.sh: %v", err)
	}
	if info.Mode()&0111 == 0 {
		t.Error("build_lib.sh is not executable")
	}
}

func TestWriteTar(t *testing.T) {
	w := testWriter(t)
	w.ctx.Config.Writer.WriteTar = true
	if err := w.WriteProject(); err != nil {
		t.Fatalf("WriteProject: %v", err)
	}
	if _, err := os.Stat(w.ctx.Config.OutputDir + ".tar.gz"); err != nil {
		t.Errorf("archive missing: %v", err)
	}
}
