package cli

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/luki/pistats/internal/sensor"
	"github.com/luki/pistats/internal/stats"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Print a single status line and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, logger, host, err := setup()
		if err != nil {
			return err
		}

		snap, err := stats.NewSampler(host).Sample(cmd.Context())
		if err != nil {
			return reportFailure(logger, err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), snap.String())
		return err
	},
}

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "List every temperature sensor and the one pistats would pick",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, _, err := setup()
		if err != nil {
			return err
		}
		seq := cfg.SensorSource().Temperatures(cmd.Context())
		return writeSensorReport(cmd.OutOrStdout(), seq)
	},
}

// failedMetric extracts the metric name from a sample failure.
func failedMetric(err error) (string, bool) {
	var queryErr *stats.HardwareQueryError
	if errors.As(err, &queryErr) {
		return queryErr.Metric, true
	}
	return "", false
}

// writeSensorReport drains seq once, prints every reading and skipped
// failure, then the temperature the resolver picks from the same readings.
func writeSensorReport(w io.Writer, seq iter.Seq2[sensor.Reading, error]) error {
	var readings []sensor.Reading
	var failures []error
	for r, err := range seq {
		if err != nil {
			failures = append(failures, err)
			continue
		}
		readings = append(readings, r)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("COMPONENT", "CHIP", "LABEL", "TEMP", "HIGH", "CRIT", "CPU").
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, r := range readings {
		label := r.Label
		if label == "" {
			label = sensor.LabelUnknown
		}
		t.Row(
			sensor.FriendlyName(r.Chip),
			r.Chip,
			label,
			formatTemp(r.Temp, true),
			formatTemp(r.High, r.HasHigh),
			formatTemp(r.Crit, r.HasCrit),
			cpuMark(r.Chip),
		)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	for _, err := range failures {
		if _, err := fmt.Fprintf(w, "skipped: %v\n", err); err != nil {
			return err
		}
	}

	temps := sensor.BuildTable(sensor.Slice(readings))
	picked := "default"
	for _, label := range []string{sensor.LabelComposite, sensor.LabelCPU} {
		if _, ok := temps[label]; ok {
			picked = label
			break
		}
	}
	_, err := fmt.Fprintf(w, "resolved: %s C (%s)\n", strconv.FormatFloat(temps.Resolve(), 'f', -1, 64), picked)
	return err
}

func cpuMark(chip string) string {
	if sensor.IsCPUChip(chip) {
		return "yes"
	}
	return ""
}

func formatTemp(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
