package stats

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/luki/pistats/internal/sensor"
)

type fakeHardware struct {
	hz       float64
	hzErr    error
	bytes    uint64
	bytesErr error
	sensors  []sensor.Reading
}

func (f *fakeHardware) CurrentCPUFrequency(context.Context) (float64, error) {
	return f.hz, f.hzErr
}

func (f *fakeHardware) AvailableMemory(context.Context) (uint64, error) {
	return f.bytes, f.bytesErr
}

func (f *fakeHardware) TemperatureSensors(context.Context) iter.Seq2[sensor.Reading, error] {
	return sensor.Slice(f.sensors)
}

func TestSampleRendersLine(t *testing.T) {
	hw := &fakeHardware{
		hz:      1_500_000_000,
		bytes:   536_870_912,
		sensors: []sensor.Reading{{Label: "CPU", Temp: 45.0}},
	}

	snap, err := NewSampler(hw).Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}

	want := "1500 Mhz / 45 C / 512 MiB"
	if got := snap.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSampleFrequencyFailure(t *testing.T) {
	cause := errors.New("cpufreq unavailable")
	hw := &fakeHardware{
		hzErr:   cause,
		bytes:   536_870_912,
		sensors: []sensor.Reading{{Label: "CPU", Temp: 45.0}},
	}

	snap, err := NewSampler(hw).Sample(context.Background())
	if err == nil {
		t.Fatalf("Sample succeeded with %v, want error", snap)
	}

	var queryErr *HardwareQueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error is %T, want *HardwareQueryError", err)
	}
	if queryErr.Metric != MetricFrequency {
		t.Errorf("Metric = %q, want %q", queryErr.Metric, MetricFrequency)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false for %v", err)
	}
	if snap != (Snapshot{}) {
		t.Errorf("failed sample returned non-zero snapshot %+v", snap)
	}
}

func TestSampleMemoryFailure(t *testing.T) {
	hw := &fakeHardware{
		hz:       1_000_000_000,
		bytesErr: errors.New("meminfo unreadable"),
	}

	_, err := NewSampler(hw).Sample(context.Background())

	var queryErr *HardwareQueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error is %T (%v), want *HardwareQueryError", err, err)
	}
	if queryErr.Metric != MetricMemory {
		t.Errorf("Metric = %q, want %q", queryErr.Metric, MetricMemory)
	}
}

func TestSampleWithoutSensors(t *testing.T) {
	hw := &fakeHardware{hz: 600_000_000, bytes: 1 << 30}

	snap, err := NewSampler(hw).Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got, want := snap.String(), "600 Mhz / 0 C / 1024 MiB"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUnitConversion(t *testing.T) {
	if got := HzToMHz(1_800_000_000); got != 1800 {
		t.Errorf("HzToMHz(1.8e9) = %v, want 1800", got)
	}
	if got := BytesToMiB(3_145_728); got != 3 {
		t.Errorf("BytesToMiB(3145728) = %v, want 3", got)
	}

	snap := Snapshot{
		CPUFrequencyMHz:    HzToMHz(1_800_000_000),
		MemoryAvailableMiB: BytesToMiB(3_145_728),
	}
	if got, want := snap.String(), "1800 Mhz / 0 C / 3 MiB"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSnapshotString(t *testing.T) {
	tests := []struct {
		snap Snapshot
		want string
	}{
		{Snapshot{1800, 36.9, 3}, "1800 Mhz / 36.9 C / 3 MiB"},
		{Snapshot{2400.5, 52.75, 1.5}, "2400.5 Mhz / 52.75 C / 1.5 MiB"},
		{Snapshot{0, -5.5, 0}, "0 Mhz / -5.5 C / 0 MiB"},
	}
	for _, tt := range tests {
		if got := tt.snap.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.snap, got, tt.want)
		}
	}
}
