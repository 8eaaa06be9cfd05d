package report

import (
	"testing"
)

func TestAggregateEmpty(t *testing.T) {
	combined := Aggregate(nil)
	if combined.CSynthesis != (Synthesis{}) {
		t.Errorf("empty input must yield an empty report: %+v", combined)
	}
}

func TestAggregateSingleIsIdentity(t *testing.T) {
	single := Report{CSynthesis: Synthesis{
		TargetClockPeriod:    "5",
		EstimatedClockPeriod: "4.123",
		WorstLatency:         "100",
		BRAM18K:              "12",
		DSP:                  "40",
		FF:                   "1000",
		LUT:                  "2000",
		URAM:                 "0",
	}}
	combined := Aggregate(map[string]Report{"graph1": single})

	s := combined.CSynthesis
	if s.TargetClockPeriod != "5" {
		t.Errorf("TargetClockPeriod = %q", s.TargetClockPeriod)
	}
	if s.EstimatedClockPeriod != "4.123" {
		t.Errorf("EstimatedClockPeriod = %q", s.EstimatedClockPeriod)
	}
	if s.WorstLatency != "100" || s.BRAM18K != "12" || s.DSP != "40" ||
		s.FF != "1000" || s.LUT != "2000" || s.URAM != "0" {
		t.Errorf("single-subgraph aggregation changed fields: %+v", s)
	}
	if s.AvailableDSP != "12288" || s.AvailableBRAM18K != "5376" ||
		s.AvailableFF != "3456000" || s.AvailableLUT != "1728000" || s.AvailableURAM != "1280" {
		t.Errorf("capacity defaults wrong: %+v", s)
	}
}

func TestAggregateSumVersusMax(t *testing.T) {
	results := map[string]Report{
		"graph1": {CSynthesis: Synthesis{WorstLatency: "100", DSP: "40", EstimatedClockPeriod: "3.5"}},
		"graph2": {CSynthesis: Synthesis{WorstLatency: "250", DSP: "60", EstimatedClockPeriod: "4.25"}},
	}
	s := Aggregate(results).CSynthesis
	if s.WorstLatency != "250" {
		t.Errorf("WorstLatency combined by max: got %q, want 250", s.WorstLatency)
	}
	if s.DSP != "100" {
		t.Errorf("DSP combined by sum: got %q, want 100", s.DSP)
	}
	if s.EstimatedClockPeriod != "4.250" {
		t.Errorf("EstimatedClockPeriod = %q, want 4.250", s.EstimatedClockPeriod)
	}
}

func TestAggregateBaselineIsLexicographicFirst(t *testing.T) {
	results := map[string]Report{
		"graph2": {CSynthesis: Synthesis{TargetClockPeriod: "10.00", AvailableDSP: "999"}},
		"graph1": {CSynthesis: Synthesis{TargetClockPeriod: "5.00", AvailableDSP: "12288"}},
		"graph3": {CSynthesis: Synthesis{TargetClockPeriod: "7.00"}},
	}
	s := Aggregate(results).CSynthesis
	if s.TargetClockPeriod != "5.00" {
		t.Errorf("baseline must come from graph1: got %q", s.TargetClockPeriod)
	}
	if s.AvailableDSP != "12288" {
		t.Errorf("capacity must come from graph1: got %q", s.AvailableDSP)
	}
}

func TestAggregateMissingFieldsDefaultToZero(t *testing.T) {
	results := map[string]Report{
		"graph1": {CSynthesis: Synthesis{LUT: "500"}},
		"graph2": {},
	}
	s := Aggregate(results).CSynthesis
	if s.LUT != "500" {
		t.Errorf("LUT = %q, want 500", s.LUT)
	}
	if s.WorstLatency != "0" || s.BRAM18K != "0" {
		t.Errorf("missing fields must default to zero: %+v", s)
	}
	if s.EstimatedClockPeriod != "5.000" {
		t.Errorf("missing clock must default to 5.000: %q", s.EstimatedClockPeriod)
	}
}

func TestAggregateDoesNotMutateInputs(t *testing.T) {
	r := Report{CSynthesis: Synthesis{DSP: "40"}}
	results := map[string]Report{"graph1": r, "graph2": {CSynthesis: Synthesis{DSP: "60"}}}
	Aggregate(results)
	if results["graph1"].CSynthesis.DSP != "40" {
		t.Errorf("source report mutated: %+v", results["graph1"])
	}
}

func TestAggregateClockRenderingIsStable(t *testing.T) {
	results := map[string]Report{
		"graph1": {CSynthesis: Synthesis{EstimatedClockPeriod: "4.250"}},
	}
	first := Aggregate(results).CSynthesis.EstimatedClockPeriod
	second := Aggregate(map[string]Report{
		"graph1": {CSynthesis: Synthesis{EstimatedClockPeriod: first}},
	}).CSynthesis.EstimatedClockPeriod
	if first != second {
		t.Errorf("re-aggregating the rendered clock changed it: %q -> %q", first, second)
	}
}
