// Package sensor enumerates hardware temperature sensors and resolves them
// to a single representative CPU temperature. Sensors come from sysfs hwmon
// or from lm-sensors and are consumed as a lazy sequence.
package sensor

import (
	"context"
	"fmt"
	"iter"
)

// Reading represents a single temperature reading from a sensor.
type Reading struct {
	Chip    string  // e.g. "nvme-pci-0300"
	Adapter string  // e.g. "PCI adapter"
	Label   string  // e.g. "Composite"; empty when the sensor has no label
	Temp    float64 // current temperature in Celsius
	High    float64 // high threshold (0 if not available)
	Crit    float64 // critical threshold (0 if not available)
	HasHigh bool
	HasCrit bool
}

// Source enumerates temperature sensors. Items that could not be read are
// yielded with a non-nil error and a zero Reading.
type Source interface {
	Temperatures(ctx context.Context) iter.Seq2[Reading, error]
}

// ReadError reports a single sensor that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read sensor %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Slice returns a sequence over already collected readings.
func Slice(readings []Reading) iter.Seq2[Reading, error] {
	return func(yield func(Reading, error) bool) {
		for _, r := range readings {
			if !yield(r, nil) {
				return
			}
		}
	}
}
