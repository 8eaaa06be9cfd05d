package report

import (
	"fmt"

	"github.com/ml2hw/ml2hw/util"
)

// Aggregate merges the synthesis reports of independently built sub-projects
// into one combined report. The lexicographically first sub-project serves
// as the baseline for the target clock period and the device capacity
// fields, which are device-wide constants rather than summable quantities.
// The estimated clock period and the worst latency are combined by maximum,
// the resource counts by sum. Missing fields count as zero; the source
// reports are never modified. An empty input yields an empty report.
func Aggregate(results map[string]Report) Combined {
	if len(results) == 0 {
		return Combined{}
	}

	reports := util.NewOrderedMapFrom(results)
	base := reports.Entries()[0].Value.CSynthesis

	estimatedClock := parseFloat(base.EstimatedClockPeriod, 5.0)
	worstLatency := parseInt(base.WorstLatency, 0)
	bram := parseInt(base.BRAM18K, 0)
	dsp := parseInt(base.DSP, 0)
	ff := parseInt(base.FF, 0)
	lut := parseInt(base.LUT, 0)
	uram := parseInt(base.URAM, 0)

	for i, entry := range reports.Entries() {
		if i == 0 {
			continue
		}
		r := entry.Value.CSynthesis
		if clock := parseFloat(r.EstimatedClockPeriod, 5.0); clock > estimatedClock {
			estimatedClock = clock
		}
		if latency := parseInt(r.WorstLatency, 0); latency > worstLatency {
			worstLatency = latency
		}
		bram += parseInt(r.BRAM18K, 0)
		dsp += parseInt(r.DSP, 0)
		ff += parseInt(r.FF, 0)
		lut += parseInt(r.LUT, 0)
		uram += parseInt(r.URAM, 0)
	}

	return Combined{CSynthesis: Synthesis{
		TargetClockPeriod:    orDefault(base.TargetClockPeriod, "5.00"),
		EstimatedClockPeriod: fmt.Sprintf("%.3f", estimatedClock),
		WorstLatency:         fmt.Sprintf("%d", worstLatency),
		BRAM18K:              fmt.Sprintf("%d", bram),
		DSP:                  fmt.Sprintf("%d", dsp),
		FF:                   fmt.Sprintf("%d", ff),
		LUT:                  fmt.Sprintf("%d", lut),
		URAM:                 fmt.Sprintf("%d", uram),
		AvailableBRAM18K:     orDefault(base.AvailableBRAM18K, defaultAvailableBRAM18K),
		AvailableDSP:         orDefault(base.AvailableDSP, defaultAvailableDSP),
		AvailableFF:          orDefault(base.AvailableFF, defaultAvailableFF),
		AvailableLUT:         orDefault(base.AvailableLUT, defaultAvailableLUT),
		AvailableURAM:        orDefault(base.AvailableURAM, defaultAvailableURAM),
	}}
}
