package platform

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Summary describes the machine for the startup log line.
type Summary struct {
	CPUModel    string
	LogicalCPUs int
	MemoryTotal uint64 // bytes
}

// Summary collects static host facts. A missing CPU model is not an error.
func (h *Host) Summary(ctx context.Context) (Summary, error) {
	var s Summary

	if infos, err := h.cpuInfo(ctx); err == nil && len(infos) > 0 {
		s.CPUModel = infos[0].ModelName
	}

	n, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return s, fmt.Errorf("cpu counts: %w", err)
	}
	s.LogicalCPUs = n

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return s, fmt.Errorf("virtual memory: %w", err)
	}
	s.MemoryTotal = vm.Total

	return s, nil
}
