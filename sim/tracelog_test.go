package sim

import (
	"os"
	"path"
	"testing"
)

func writeLogFixture(t *testing.T, content string) string {
	t.Helper()
	file := path.Join(t.TempDir(), "testbench_log.csv")
	if err := os.WriteFile(file, []byte(content), 0664); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return file
}

func TestReadTestbenchLog(t *testing.T) {
	file := writeLogFixture(t, `output_name,index,value
y,0,0.500000
y,1,-0.250000
z,0,1.000000
latency_cycles,0,42
`)
	data, err := ReadTestbenchLog(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.LatencyCycles != 42 {
		t.Errorf("latency = %d, want 42", data.LatencyCycles)
	}
	y, ok := data.Outputs.Lookup("y")
	if !ok || len(y) != 2 || y[0] != 0.5 || y[1] != -0.25 {
		t.Errorf("y = %v", y)
	}
	z, ok := data.Outputs.Lookup("z")
	if !ok || len(z) != 1 || z[0] != 1.0 {
		t.Errorf("z = %v", z)
	}
}

func TestReadTestbenchLogGapsDefaultToZero(t *testing.T) {
	file := writeLogFixture(t, `output_name,index,value
y,0,0.125000
y,2,0.750000
latency_cycles,0,7
`)
	data, err := ReadTestbenchLog(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y, ok := data.Outputs.Lookup("y")
	if !ok {
		t.Fatal("y missing")
	}
	if len(y) != 3 {
		t.Fatalf("sequence must be sized max(index)+1, got %d", len(y))
	}
	if y[0] != 0.125 || y[1] != 0 || y[2] != 0.75 {
		t.Errorf("gap not defaulted to zero: %v", y)
	}
}

func TestReadTestbenchLogMissingFile(t *testing.T) {
	_, err := ReadTestbenchLog(path.Join(t.TempDir(), "testbench_log.csv"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestReadTestbenchLogBadHeader(t *testing.T) {
	file := writeLogFixture(t, "y,0,0.5\n")
	if _, err := ReadTestbenchLog(file); err == nil {
		t.Error("expected header error")
	}
}
