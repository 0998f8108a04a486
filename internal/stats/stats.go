// Package stats samples CPU frequency, CPU temperature and available memory
// into a one-line snapshot.
package stats

import (
	"context"
	"fmt"
	"iter"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/luki/pistats/internal/sensor"
)

const (
	hzPerMHz    = 1_000_000
	bytesPerMiB = 1 << 20
)

// Metric names carried by HardwareQueryError.
const (
	MetricFrequency = "frequency"
	MetricMemory    = "memory"
)

// Hardware is the operating system surface the sampler reads from.
type Hardware interface {
	// CurrentCPUFrequency returns the current CPU clock in Hz.
	CurrentCPUFrequency(ctx context.Context) (float64, error)
	// AvailableMemory returns bytes usable by new allocations without
	// swapping, reclaimable cache and buffers included.
	AvailableMemory(ctx context.Context) (uint64, error)
	// TemperatureSensors enumerates temperature sensors lazily.
	TemperatureSensors(ctx context.Context) iter.Seq2[sensor.Reading, error]
}

// HardwareQueryError reports a failed frequency or memory read.
type HardwareQueryError struct {
	Metric string
	Err    error
}

func (e *HardwareQueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Metric, e.Err)
}

func (e *HardwareQueryError) Unwrap() error { return e.Err }

// Snapshot is one tick's worth of hardware stats.
type Snapshot struct {
	CPUFrequencyMHz    float64
	TemperatureCelsius float64
	MemoryAvailableMiB float64
}

// String renders the status line, e.g. "1500 Mhz / 45 C / 512 MiB".
func (s Snapshot) String() string {
	return formatNumber(s.CPUFrequencyMHz) + " Mhz / " +
		formatNumber(s.TemperatureCelsius) + " C / " +
		formatNumber(s.MemoryAvailableMiB) + " MiB"
}

// formatNumber uses the shortest decimal that round-trips, so whole
// values print without a fractional part.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HzToMHz converts hertz to megahertz.
func HzToMHz(hz float64) float64 { return hz / hzPerMHz }

// BytesToMiB converts bytes to mebibytes.
func BytesToMiB(b uint64) float64 { return float64(b) / bytesPerMiB }

// Sampler builds snapshots from a Hardware. It holds no state between
// calls.
type Sampler struct {
	hw Hardware
}

// NewSampler returns a sampler reading from hw.
func NewSampler(hw Hardware) *Sampler {
	return &Sampler{hw: hw}
}

// Sample reads the three metrics concurrently. A frequency or memory
// failure fails the whole sample with a *HardwareQueryError; temperature
// resolution cannot fail.
func (s *Sampler) Sample(ctx context.Context) (Snapshot, error) {
	var (
		hz    float64
		temp  float64
		bytes uint64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.hw.CurrentCPUFrequency(gctx)
		if err != nil {
			return &HardwareQueryError{Metric: MetricFrequency, Err: err}
		}
		hz = v
		return nil
	})
	g.Go(func() error {
		temp = sensor.CPUTemperature(s.hw.TemperatureSensors(gctx))
		return nil
	})
	g.Go(func() error {
		v, err := s.hw.AvailableMemory(gctx)
		if err != nil {
			return &HardwareQueryError{Metric: MetricMemory, Err: err}
		}
		bytes = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		CPUFrequencyMHz:    HzToMHz(hz),
		TemperatureCelsius: temp,
		MemoryAvailableMiB: BytesToMiB(bytes),
	}, nil
}
