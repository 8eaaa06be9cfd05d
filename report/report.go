// Package report models the synthesis reports of built sub-projects and
// merges them into one combined report for a stitched design.
package report

import (
	"fmt"
	"strconv"

	"github.com/ml2hw/ml2hw/util"
	"gopkg.in/yaml.v2"
)

// ReportFileName is the name under which a sub-project's build result is
// persisted inside its project directory.
const ReportFileName = "build_report.yml"

// Default device capacities, reported when a sub-project's report does not
// carry its own availability figures.
const (
	defaultAvailableBRAM18K = "5376"
	defaultAvailableDSP     = "12288"
	defaultAvailableFF      = "3456000"
	defaultAvailableLUT     = "1728000"
	defaultAvailableURAM    = "1280"
)

// Synthesis is the flat synthesis summary of one project. All numeric
// fields are carried as decimal-formatted text, the form the external
// report parser produces; an empty field means the toolchain did not report
// it.
type Synthesis struct {
	TargetClockPeriod    string `json:"TargetClockPeriod,omitempty" yaml:"TargetClockPeriod,omitempty"`
	EstimatedClockPeriod string `json:"EstimatedClockPeriod,omitempty" yaml:"EstimatedClockPeriod,omitempty"`
	WorstLatency         string `json:"WorstLatency,omitempty" yaml:"WorstLatency,omitempty"`
	BRAM18K              string `json:"BRAM_18K,omitempty" yaml:"BRAM_18K,omitempty"`
	DSP                  string `json:"DSP,omitempty" yaml:"DSP,omitempty"`
	FF                   string `json:"FF,omitempty" yaml:"FF,omitempty"`
	LUT                  string `json:"LUT,omitempty" yaml:"LUT,omitempty"`
	URAM                 string `json:"URAM,omitempty" yaml:"URAM,omitempty"`
	AvailableBRAM18K     string `json:"AvailableBRAM_18K,omitempty" yaml:"AvailableBRAM_18K,omitempty"`
	AvailableDSP         string `json:"AvailableDSP,omitempty" yaml:"AvailableDSP,omitempty"`
	AvailableFF          string `json:"AvailableFF,omitempty" yaml:"AvailableFF,omitempty"`
	AvailableLUT         string `json:"AvailableLUT,omitempty" yaml:"AvailableLUT,omitempty"`
	AvailableURAM        string `json:"AvailableURAM,omitempty" yaml:"AvailableURAM,omitempty"`
}

// Report is the persisted build result of one sub-project.
type Report struct {
	CSynthesis Synthesis `json:"CSynthesisReport" yaml:"CSynthesisReport"`
}

// Combined is the merged report of a stitched design. The simulation fields
// are only populated when the stitch ran a behavioral simulation.
type Combined struct {
	CSynthesis            Synthesis  `json:"CSynthesisReport" yaml:"CSynthesisReport"`
	CSimResults           [][]string `json:"CSimResults,omitempty" yaml:"CSimResults,omitempty"`
	StitchedDesignLatency int        `json:"Stitched_Design_Latency,omitempty" yaml:"Stitched_Design_Latency,omitempty"`
}

// LoadReport reads a persisted sub-project report.
func LoadReport(file string) (Report, error) {
	var r Report
	data, err := util.ReadFile(file)
	if err != nil {
		return r, err
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse report '%s': %w", file, err)
	}
	return r, nil
}

// SaveReport persists a combined report.
func SaveReport(file string, c Combined) error {
	data, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}
	return util.WriteFile(file, data)
}

func parseFloat(s string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return fallback
}

func parseInt(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
