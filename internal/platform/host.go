// Package platform implements stats.Hardware for the running machine.
// CPU frequency comes from sysfs cpufreq with a gopsutil fallback,
// available memory from gopsutil, and temperatures from a sensor.Source.
package platform

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/luki/pistats/internal/sensor"
)

// ErrNoFrequency is returned when neither cpufreq nor the CPU info
// report a clock.
var ErrNoFrequency = errors.New("no cpu frequency reported")

// Host reads hardware stats from the local machine.
type Host struct {
	sysRoot string
	sensors sensor.Source

	// cpuInfo is swapped out in tests.
	cpuInfo func(ctx context.Context) ([]cpu.InfoStat, error)
}

// New returns a Host reading cpufreq below sysRoot and temperatures from
// src. An empty sysRoot means sensor.DefaultSysfsRoot.
func New(sysRoot string, src sensor.Source) *Host {
	if sysRoot == "" {
		sysRoot = sensor.DefaultSysfsRoot
	}
	return &Host{
		sysRoot: sysRoot,
		sensors: src,
		cpuInfo: cpu.InfoWithContext,
	}
}

// CurrentCPUFrequency returns the mean current clock across online CPUs
// in Hz.
func (h *Host) CurrentCPUFrequency(ctx context.Context) (float64, error) {
	if khz, ok := averageScalingFreq(h.sysRoot); ok {
		return khz * 1000, nil
	}

	infos, err := h.cpuInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("cpu info: %w", err)
	}
	var sum float64
	var n int
	for _, info := range infos {
		if info.Mhz > 0 {
			sum += info.Mhz
			n++
		}
	}
	if n == 0 {
		return 0, ErrNoFrequency
	}
	return sum / float64(n) * 1_000_000, nil
}

// AvailableMemory returns the kernel's MemAvailable estimate in bytes.
func (h *Host) AvailableMemory(ctx context.Context) (uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("virtual memory: %w", err)
	}
	return vm.Available, nil
}

// TemperatureSensors enumerates the configured sensor source.
func (h *Host) TemperatureSensors(ctx context.Context) iter.Seq2[sensor.Reading, error] {
	return h.sensors.Temperatures(ctx)
}

// averageScalingFreq averages cpu*/cpufreq/scaling_cur_freq (kHz). CPUs
// without cpufreq or with unreadable files are left out.
func averageScalingFreq(sysRoot string) (float64, bool) {
	paths, _ := filepath.Glob(filepath.Join(sysRoot, "devices", "system", "cpu", "cpu[0-9]*", "cpufreq", "scaling_cur_freq"))

	var sum float64
	var n int
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		khz, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
		if err != nil || khz <= 0 {
			continue
		}
		sum += khz
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
