package sensor

import (
	"errors"
	"iter"
	"testing"
)

type item struct {
	label string
	temp  float64
	err   error
}

func seqOf(items ...item) iter.Seq2[Reading, error] {
	return func(yield func(Reading, error) bool) {
		for _, it := range items {
			if it.err != nil {
				if !yield(Reading{}, &ReadError{Path: it.label, Err: it.err}) {
					return
				}
				continue
			}
			if !yield(Reading{Label: it.label, Temp: it.temp}, nil) {
				return
			}
		}
	}
}

func TestCPUTemperature(t *testing.T) {
	errBusy := errors.New("device busy")

	tests := []struct {
		name  string
		items []item
		want  float64
	}{
		{
			name:  "composite preferred over cpu",
			items: []item{{label: "CPU", temp: 45}, {label: "Composite", temp: 38.5}},
			want:  38.5,
		},
		{
			name:  "composite preferred regardless of order",
			items: []item{{label: "Composite", temp: 38.5}, {label: "CPU", temp: 45}},
			want:  38.5,
		},
		{
			name:  "cpu fallback",
			items: []item{{label: "CPU", temp: 45}},
			want:  45,
		},
		{
			name:  "empty sequence",
			items: nil,
			want:  DefaultTemperature,
		},
		{
			name:  "no preferred labels",
			items: []item{{label: "Tctl", temp: 52}, {label: "Core 0", temp: 49}},
			want:  DefaultTemperature,
		},
		{
			name:  "unlabeled never selected over cpu",
			items: []item{{label: "", temp: 99}, {label: "CPU", temp: 41}},
			want:  41,
		},
		{
			name:  "unlabeled alone falls back to default",
			items: []item{{label: "", temp: 99}},
			want:  DefaultTemperature,
		},
		{
			name:  "failed sensor does not stop enumeration",
			items: []item{{label: "temp1", err: errBusy}, {label: "Composite", temp: 36.9}},
			want:  36.9,
		},
		{
			name:  "failed composite falls through to cpu",
			items: []item{{label: "Composite", err: errBusy}, {label: "CPU", temp: 47}},
			want:  47,
		},
		{
			name:  "all sensors fail",
			items: []item{{label: "a", err: errBusy}, {label: "b", err: errBusy}},
			want:  DefaultTemperature,
		},
		{
			name:  "duplicate label keeps last value",
			items: []item{{label: "CPU", temp: 40}, {label: "CPU", temp: 42}},
			want:  42,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := CPUTemperature(seqOf(test.items...)); got != test.want {
				t.Errorf("CPUTemperature() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestBuildTableUnknownLabel(t *testing.T) {
	table := BuildTable(seqOf(
		item{label: "", temp: 30},
		item{label: "", temp: 31},
		item{label: "Composite", temp: 36},
	))

	if len(table) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(table), table)
	}
	if got := table[LabelUnknown]; got != 31 {
		t.Errorf("table[%q] = %v, want 31", LabelUnknown, got)
	}
	if got := table.Resolve(); got != 36 {
		t.Errorf("Resolve() = %v, want 36", got)
	}
}

func TestBuildTableDrainsSequence(t *testing.T) {
	var consumed int
	seq := func(yield func(Reading, error) bool) {
		for _, r := range []Reading{{Label: "Composite", Temp: 1}, {Label: "CPU", Temp: 2}, {Label: "x", Temp: 3}} {
			consumed++
			if !yield(r, nil) {
				return
			}
		}
	}

	BuildTable(seq).Resolve()
	if consumed != 3 {
		t.Errorf("consumed %d readings, want 3", consumed)
	}
}

func TestReadErrorUnwrap(t *testing.T) {
	cause := errors.New("EIO")
	err := error(&ReadError{Path: "/sys/class/hwmon/hwmon0/temp1_input", Err: cause})
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) = false", err)
	}
}
