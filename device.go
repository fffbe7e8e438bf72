package pantry

// NetworkState classifies the device's current connectivity.
type NetworkState int

const (
	NetworkUnknown NetworkState = iota
	NetworkWifi
	NetworkCellular
	NetworkOffline
)

func (n NetworkState) String() string {
	switch n {
	case NetworkWifi:
		return "wifi"
	case NetworkCellular:
		return "cellular"
	case NetworkOffline:
		return "offline"
	}
	return "unknown"
}

// DeviceState is a point-in-time snapshot of the constraints admission
// control cares about. It is always a fresh value, never mutated in place;
// every admission check captures whatever the provider returns at that
// moment.
type DeviceState struct {
	Network    NetworkState
	Metered    bool
	LowBattery bool
	LowMemory  bool
	Charging   bool
}

// DeviceStateFunc supplies a best-effort device snapshot. Implementations
// must not fail; when a subsystem query is unavailable the field defaults to
// a conservative value (unknown network counts as non-wifi).
type DeviceStateFunc func() DeviceState

// defaultDeviceState is used when no provider is configured: connectivity
// unknown, nothing flagged. Admission then only depends on priority gates
// that never fire, which is the right behavior for tests and for hosts that
// wire their own platform provider later.
func defaultDeviceState() DeviceState {
	return DeviceState{Network: NetworkUnknown}
}
