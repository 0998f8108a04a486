package sensor

import "iter"

const (
	// LabelComposite is the vendor aggregate reading, e.g. NVMe or k10temp.
	LabelComposite = "Composite"
	// LabelCPU is what the Raspberry Pi and a few SoCs report.
	LabelCPU = "CPU"
	// LabelUnknown keys readings that carry no label.
	LabelUnknown = "unknown"

	// DefaultTemperature is returned when no preferred sensor is present.
	DefaultTemperature = 0.0
)

// Table maps a sensor label to its latest temperature in Celsius.
type Table map[string]float64

// BuildTable drains seq into a fresh table. Items carrying an error are
// skipped. A label seen twice keeps the last value.
func BuildTable(seq iter.Seq2[Reading, error]) Table {
	table := make(Table)
	for r, err := range seq {
		if err != nil {
			continue
		}
		label := r.Label
		if label == "" {
			label = LabelUnknown
		}
		table[label] = r.Temp
	}
	return table
}

// Resolve picks the Composite reading, then CPU, then DefaultTemperature.
func (t Table) Resolve() float64 {
	if v, ok := t[LabelComposite]; ok {
		return v
	}
	if v, ok := t[LabelCPU]; ok {
		return v
	}
	return DefaultTemperature
}

// CPUTemperature drains seq and resolves the representative temperature.
// It never fails.
func CPUTemperature(seq iter.Seq2[Reading, error]) float64 {
	return BuildTable(seq).Resolve()
}
