package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// LMSensorsSource reads temperatures through the lm-sensors CLI. It prefers
// `sensors -j` and falls back to the human-readable output on older
// releases without JSON support.
type LMSensorsSource struct {
	Command string // binary name or path; "sensors" when empty
}

type entry struct {
	reading Reading
	err     error
}

// Temperatures runs the command once and yields its features in chip and
// label order. A command failure is yielded as a single *ReadError.
func (s LMSensorsSource) Temperatures(ctx context.Context) iter.Seq2[Reading, error] {
	return func(yield func(Reading, error) bool) {
		command := s.Command
		if command == "" {
			command = "sensors"
		}

		entries, err := readSensorsJSON(ctx, command)
		if err != nil {
			readings, textErr := readSensorsText(ctx, command)
			if textErr != nil {
				yield(Reading{}, &ReadError{Path: command, Err: textErr})
				return
			}
			for _, r := range readings {
				entries = append(entries, entry{reading: r})
			}
		}

		for _, e := range entries {
			if !yield(e.reading, e.err) {
				return
			}
		}
	}
}

// ── JSON parser (primary) ────────────────────────────────────────────

func readSensorsJSON(ctx context.Context, command string) ([]entry, error) {
	out, err := exec.CommandContext(ctx, command, "-j").Output()
	if err != nil {
		return nil, err
	}
	return parseSensorsJSON(out)
}

// parseSensorsJSON walks `sensors -j` output. Features without a tempN_input
// field (fans, voltages) are ignored; temperature features that fail to
// decode become error entries.
func parseSensorsJSON(out []byte) ([]entry, error) {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, fmt.Errorf("decode sensors json: %w", err)
	}

	chipNames := make([]string, 0, len(data))
	for k := range data {
		chipNames = append(chipNames, k)
	}
	sort.Strings(chipNames)

	var entries []entry
	for _, chipName := range chipNames {
		var chip map[string]json.RawMessage
		if err := json.Unmarshal(data[chipName], &chip); err != nil {
			entries = append(entries, entry{err: &ReadError{Path: chipName, Err: err}})
			continue
		}

		adapter := ""
		if raw, ok := chip["Adapter"]; ok {
			_ = json.Unmarshal(raw, &adapter)
		}

		labels := make([]string, 0, len(chip))
		for k := range chip {
			if k != "Adapter" {
				labels = append(labels, k)
			}
		}
		sort.Strings(labels)

		for _, label := range labels {
			path := chipName + "/" + label

			var fields map[string]float64
			if err := json.Unmarshal(chip[label], &fields); err != nil {
				if strings.Contains(string(chip[label]), "temp") {
					entries = append(entries, entry{err: &ReadError{Path: path, Err: err}})
				}
				continue
			}

			var (
				temp      float64
				foundTemp bool
			)
			for k, v := range fields {
				if strings.HasPrefix(k, "temp") && strings.HasSuffix(k, "_input") {
					temp = v
					foundTemp = true
					break
				}
			}
			if !foundTemp {
				continue
			}
			if temp < -200 {
				entries = append(entries, entry{err: &ReadError{Path: path, Err: fmt.Errorf("implausible value %.1f", temp)}})
				continue
			}

			r := Reading{
				Chip:    chipName,
				Adapter: adapter,
				Label:   label,
				Temp:    temp,
			}
			for k, v := range fields {
				if strings.HasSuffix(k, "_max") && v > 0 && v < 1000 {
					r.High = v
					r.HasHigh = true
				}
				if strings.HasSuffix(k, "_crit") && v > 0 && v < 1000 {
					r.Crit = v
					r.HasCrit = true
				}
			}
			entries = append(entries, entry{reading: r})
		}
	}
	return entries, nil
}

// ── Text parser (fallback) ───────────────────────────────────────────

func readSensorsText(ctx context.Context, command string) ([]Reading, error) {
	out, err := exec.CommandContext(ctx, command).Output()
	if err != nil {
		return nil, err
	}
	return ParseSensorsText(string(out)), nil
}

var (
	adapterRe  = regexp.MustCompile(`^Adapter:\s+(.+)$`)
	namedValRe = regexp.MustCompile(`(\w+)\s*=\s*([+-]?\d+\.?\d*)°C`)
	tempValRe  = regexp.MustCompile(`([+-]?)(\d+\.?\d*)°C`)
)

// ParseSensorsText parses the human-readable `sensors` output.
func ParseSensorsText(output string) []Reading {
	var readings []Reading
	var currentChip, currentAdapter string

	lines := strings.Split(output, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")

		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := adapterRe.FindStringSubmatch(line); m != nil {
			currentAdapter = m[1]
			continue
		}

		if strings.Contains(line, "°C") {
			idx := strings.Index(line, ":")
			if idx < 0 {
				continue
			}
			label := strings.TrimSpace(line[:idx])

			m := tempValRe.FindStringSubmatch(line[idx+1:])
			if m == nil {
				continue
			}
			temp, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			if m[1] == "-" {
				temp = -temp
			}
			if temp < -200 {
				continue
			}

			r := Reading{
				Chip:    currentChip,
				Adapter: currentAdapter,
				Label:   label,
				Temp:    temp,
			}

			if high := extractNamedVal(line, "high"); high > 0 && high < 1000 {
				r.High = high
				r.HasHigh = true
			}
			if crit := extractNamedVal(line, "crit"); crit > 0 && crit < 1000 {
				r.Crit = crit
				r.HasCrit = true
			}
			// lm-sensors wraps long threshold lists onto a continuation line.
			if i+1 < len(lines) {
				next := strings.TrimRight(lines[i+1], "\r")
				if strings.Contains(next, "crit") && !strings.Contains(next, ":") {
					if crit := extractNamedVal(next, "crit"); crit > 0 && crit < 1000 {
						r.Crit = crit
						r.HasCrit = true
					}
				}
			}

			readings = append(readings, r)
			continue
		}

		// Chip header: non-indented line without °C.
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			currentChip = strings.TrimSpace(line)
		}
	}

	return readings
}

func extractNamedVal(line, name string) float64 {
	for _, m := range namedValRe.FindAllStringSubmatch(line, -1) {
		if m[1] == name {
			v, err := strconv.ParseFloat(m[2], 64)
			if err == nil && v > -200 {
				return v
			}
		}
	}
	return 0
}
