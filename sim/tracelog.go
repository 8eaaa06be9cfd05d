package sim

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ml2hw/ml2hw/util"
)

// latencyRow is the reserved signal name carrying the scalar latency
// measurement instead of an output sample.
const latencyRow = "latency_cycles"

// TraceData is the parsed form of one testbench log: the decoded sample
// sequence of every output signal, iterable in deterministic name order,
// plus the measured latency.
type TraceData struct {
	Outputs       util.OrderedMap[string, []float64]
	LatencyCycles int
}

// ReadTestbenchLog parses the structured log the testbench writes. Samples
// are grouped by signal name into dense sequences sized max(index)+1;
// indices never written default to zero. A missing log file surfaces the
// underlying not-exist error, so callers can tell an absent simulation run
// from a malformed one.
func ReadTestbenchLog(file string) (*TraceData, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse testbench log '%s': %w", file, err)
	}
	if len(records) == 0 || records[0][0] != "output_name" {
		return nil, fmt.Errorf("testbench log '%s' has no header", file)
	}

	samples := util.NewOrderedMap[string, map[int]float64]()
	data := &TraceData{Outputs: util.NewOrderedMap[string, []float64]()}

	for _, rec := range records[1:] {
		name := rec[0]
		index, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("testbench log '%s': bad index '%s' for '%s'", file, rec[1], name)
		}

		if name == latencyRow {
			latency, err := strconv.Atoi(rec[2])
			if err != nil {
				return nil, fmt.Errorf("testbench log '%s': bad latency '%s'", file, rec[2])
			}
			data.LatencyCycles = latency
			continue
		}

		value, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("testbench log '%s': bad value '%s' for '%s'", file, rec[2], name)
		}
		signal, ok := samples.Lookup(name)
		if !ok {
			signal = map[int]float64{}
			samples.Insert(name, signal)
		}
		signal[index] = value
	}

	for _, entry := range samples.Entries() {
		length := 0
		for index := range entry.Value {
			if index+1 > length {
				length = index + 1
			}
		}
		sequence := make([]float64, length)
		for index, value := range entry.Value {
			sequence[index] = value
		}
		data.Outputs.Insert(entry.Key, sequence)
	}
	return data, nil
}
