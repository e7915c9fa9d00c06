// Package busproto implements the device-bus logic layer: address
// arbitration, peer liveness tracking, and control-packet dispatch for
// drivers sharing a single serial broadcast bus.
//
// The package has no notion of what is attached to the bus physically — see
// the Bus interface — and no notion of what a driver class means — see
// Driver. It only arbitrates addresses and routes frames.
package busproto

// DeviceFlags is the per-driver state bitset. It is distinct from
// ControlFlags: this set never appears on the wire, it is the
// LogicDriver/Driver shared view of a slot's state.
type DeviceFlags uint8

const (
	FlagLocal DeviceFlags = 1 << iota
	FlagRemote
	FlagInitialising
	FlagInitialised
	FlagCPSeen
	FlagPaired
	FlagBroadcast
)

// DeviceRecord is the per-driver state LogicDriver arbitrates and dispatches
// against. LogicDriver mutates Flags and RollingCounter on peer drivers
// directly — see the Driver doc comment for why that's not an oversight.
type DeviceRecord struct {
	Address        uint8
	Serial         uint32
	Flags          DeviceFlags
	RollingCounter uint16 // must exceed DriverTimeout and CtrlPacketPeriod
}

// Config holds the arbitration and liveness tunables. All are ticks, counted
// by whatever periodic source drives LogicDriver.PeriodicCallback.
type Config struct {
	// DriverTimeout is the number of ticks of silence after which a REMOTE
	// peer is declared removed.
	DriverTimeout uint16
	// AddressAllocTime is the silence window a LOCAL driver waits after
	// announcing a candidate address before declaring it its own.
	AddressAllocTime uint16
	// CtrlPacketPeriod is the emission period for INITIALISED LOCAL drivers.
	CtrlPacketPeriod uint16
}

// DefaultConfig assumes a 1ms tick. DriverTimeout must exceed every peer's
// CtrlPacketPeriod by a safe margin, and AddressAllocTime must exceed the
// worst-case round trip plus one CtrlPacketPeriod.
func DefaultConfig() Config {
	return Config{
		DriverTimeout:    1000,
		AddressAllocTime: 1200,
		CtrlPacketPeriod: 500,
	}
}

// MaxDriverSlots is the compile-time slot table capacity. Slot 0 is always
// the LogicDriver itself.
const MaxDriverSlots = 16

// MaxFilterEntries is the compile-time filter table capacity.
const MaxFilterEntries = 8
