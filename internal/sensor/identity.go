package sensor

import "strings"

type component struct {
	prefix string
	name   string
	cpu    bool
}

// components maps hwmon driver / lm-sensors chip prefixes to the part of the
// machine they sit on. Order matters: the first matching prefix wins.
var components = []component{
	{"coretemp", "CPU", true},
	{"k10temp", "CPU", true},
	{"zenpower", "CPU", true},
	{"cpu_thermal", "SoC", true},
	{"cpu-thermal", "SoC", true},
	{"soc_thermal", "SoC", true},
	{"rp1_adc", "SoC", false},
	{"nvme", "NVMe SSD", false},
	{"drivetemp", "HDD/SSD", false},
	{"amdgpu", "GPU (AMD)", false},
	{"radeon", "GPU (AMD)", false},
	{"nouveau", "GPU (NVIDIA)", false},
	{"i915", "GPU (Intel)", false},
	{"iwlwifi", "WiFi", false},
	{"mt7", "WiFi", false},
	{"pch", "PCH (Chipset)", false},
	{"acpitz", "ACPI Thermal", false},
	{"it87", "Motherboard", false},
	{"nct", "Motherboard", false},
	{"thinkpad", "Laptop EC", false},
	{"dell", "Laptop EC", false},
	{"bat", "Battery", false},
}

// FriendlyName returns a human-readable component name for a chip ID such
// as "nvme-pci-0300" or "k10temp-hwmon2".
func FriendlyName(chip string) string {
	if c, ok := lookupComponent(chip); ok {
		return c.name
	}
	return "Sensor"
}

// IsCPUChip reports whether the chip measures the CPU package or SoC die.
func IsCPUChip(chip string) bool {
	c, ok := lookupComponent(chip)
	return ok && c.cpu
}

func lookupComponent(chip string) (component, bool) {
	lower := strings.ToLower(chip)
	for _, c := range components {
		if strings.HasPrefix(lower, c.prefix) {
			return c, true
		}
	}
	return component{}, false
}
