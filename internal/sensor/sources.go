package sensor

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSysfsRoot is where the kernel mounts sysfs.
const DefaultSysfsRoot = "/sys"

// HwmonSource reads temperatures straight from the kernel hwmon class.
// Every tempN_input file under <Root>/class/hwmon/hwmon*/ is one sensor.
type HwmonSource struct {
	Root string // sysfs mount point; DefaultSysfsRoot when empty
}

// Temperatures walks the hwmon devices in lexical order. A sensor whose
// input cannot be read or parsed is yielded as a *ReadError.
func (s HwmonSource) Temperatures(ctx context.Context) iter.Seq2[Reading, error] {
	return func(yield func(Reading, error) bool) {
		root := s.Root
		if root == "" {
			root = DefaultSysfsRoot
		}

		pattern := filepath.Join(root, "class", "hwmon", "hwmon*", "temp*_input")
		inputs, err := filepath.Glob(pattern)
		if err != nil {
			yield(Reading{}, &ReadError{Path: pattern, Err: err})
			return
		}

		for _, input := range inputs {
			if ctx.Err() != nil {
				return
			}
			r, err := readHwmonInput(input)
			if err != nil {
				if !yield(Reading{}, &ReadError{Path: input, Err: err}) {
					return
				}
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// readHwmonInput builds a Reading from tempN_input and its sibling
// tempN_label, tempN_max and tempN_crit files.
func readHwmonInput(input string) (Reading, error) {
	dir := filepath.Dir(input)
	prefix := strings.TrimSuffix(filepath.Base(input), "_input")

	temp, err := readMillidegrees(input)
	if err != nil {
		return Reading{}, err
	}

	r := Reading{
		Chip:    hwmonChip(dir),
		Adapter: "hwmon",
		Label:   readSysfsString(filepath.Join(dir, prefix+"_label")),
		Temp:    temp,
	}

	if v, err := readMillidegrees(filepath.Join(dir, prefix+"_max")); err == nil && v > 0 && v < 1000 {
		r.High = v
		r.HasHigh = true
	}
	if v, err := readMillidegrees(filepath.Join(dir, prefix+"_crit")); err == nil && v > 0 && v < 1000 {
		r.Crit = v
		r.HasCrit = true
	}
	return r, nil
}

// hwmonChip names a device "<driver>-<hwmonN>", e.g. "nvme-hwmon1".
func hwmonChip(dir string) string {
	name := readSysfsString(filepath.Join(dir, "name"))
	if name == "" {
		return filepath.Base(dir)
	}
	return name + "-" + filepath.Base(dir)
}

func readMillidegrees(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	milli, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", strings.TrimSpace(string(data)), err)
	}
	return milli / 1000.0, nil
}

// readSysfsString returns the trimmed file content, or "" when unreadable.
func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
