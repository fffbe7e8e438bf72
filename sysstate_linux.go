//go:build linux

package pantry

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	lowMemoryFraction  = 0.10 // Free below 10% of total counts as low memory
	lowBatteryPercent  = 20
	powerSupplyRootDir = "/sys/class/power_supply"
)

// SystemState is a best-effort Linux device snapshot: memory pressure from
// sysinfo, battery level and charging from sysfs. Connectivity classification
// needs a platform netlink layer this core does not own, so network stays
// unknown (treated like non-wifi by admission).
//
// Every field degrades to its conservative zero value when the underlying
// query is unavailable.
func SystemState() DeviceState {
	state := DeviceState{Network: NetworkUnknown}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err == nil && info.Totalram > 0 {
		free := float64(info.Freeram) * float64(info.Unit)
		total := float64(info.Totalram) * float64(info.Unit)
		state.LowMemory = free/total < lowMemoryFraction
	}

	if capacity, status, ok := readBattery(powerSupplyRootDir); ok {
		state.LowBattery = capacity <= lowBatteryPercent
		state.Charging = status == "Charging" || status == "Full"
	}

	return state
}

// readBattery scans power_supply entries for the first battery reporting a
// capacity.
func readBattery(root string) (capacity int, status string, ok bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, "", false
	}
	for _, e := range entries {
		dir := filepath.Join(root, e.Name())
		raw, err := os.ReadFile(filepath.Join(dir, "capacity"))
		if err != nil {
			continue
		}
		capacity, err = strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			continue
		}
		if raw, err := os.ReadFile(filepath.Join(dir, "status")); err == nil {
			status = strings.TrimSpace(string(raw))
		}
		return capacity, status, true
	}
	return 0, "", false
}
