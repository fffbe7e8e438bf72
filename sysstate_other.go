//go:build !linux

package pantry

// SystemState on platforms without a sysfs/sysinfo surface returns the
// conservative default: network unknown, nothing flagged. Hosts on these
// platforms should wire their own DeviceStateFunc.
func SystemState() DeviceState {
	return defaultDeviceState()
}
