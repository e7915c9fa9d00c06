package busproto

// Driver is the abstract per-device endpoint. LogicDriver mutates a peer
// Driver's Flags and RollingCounter directly through the DeviceRecord
// returned by Record; that shared mutable view is part of the contract, not
// accidental aliasing. Implementations should embed Base and override only
// the hooks they need.
type Driver interface {
	// Record returns the mutable DeviceRecord backing this driver. LogicDriver
	// reads and writes it directly during PeriodicCallback and DispatchControlPacket.
	Record() *DeviceRecord
	// DriverClass is the opaque 32-bit tag used to match REMOTE slots against
	// inbound control packets.
	DriverClass() uint32

	// HandleControlPacket is invoked when a ControlPacket addressed to this
	// driver's address arrives. Default: no-op.
	HandleControlPacket(cp *ControlPacket)
	// HandlePacket is invoked for non-control frames addressed to this driver.
	HandlePacket(fp *FramePacket)
	// QueueControlPacket builds and transmits a ControlPacket describing this
	// driver's DeviceRecord. Only meaningful for LOCAL drivers.
	QueueControlPacket() error
	// DeviceConnected fires once when a REMOTE driver is first associated, or
	// when a LOCAL driver completes arbitration.
	DeviceConnected(rec DeviceRecord)
	// DeviceRemoved fires when liveness lapses for a REMOTE driver.
	DeviceRemoved()
}

// Base is an embeddable default implementation of Driver. It owns the
// DeviceRecord and knows how to serialise it onto the bus; everything else
// is a no-op until overridden.
type Base struct {
	record      DeviceRecord
	driverClass uint32
	bus         Bus
}

// NewBase constructs a Base for a LOCAL driver: address starts unassigned
// and arbitration begins on the next tick.
func NewBase(bus Bus, driverClass uint32, serial uint32) *Base {
	return &Base{
		record:      DeviceRecord{Serial: serial, Flags: FlagLocal},
		driverClass: driverClass,
		bus:         bus,
	}
}

// NewRemoteBase constructs a Base for a REMOTE-capable slot: pre-provisioned,
// empty, waiting for a matching control packet. serial may be 0 to match any
// serial of the given driver class.
func NewRemoteBase(bus Bus, driverClass uint32, serial uint32) *Base {
	return &Base{
		record:      DeviceRecord{Serial: serial, Flags: FlagRemote},
		driverClass: driverClass,
		bus:         bus,
	}
}

func (b *Base) Record() *DeviceRecord { return &b.record }
func (b *Base) DriverClass() uint32   { return b.driverClass }

func (b *Base) HandleControlPacket(cp *ControlPacket) {}
func (b *Base) HandlePacket(fp *FramePacket)          {}
func (b *Base) DeviceRemoved()                        {}

// DeviceConnected stores the record LogicDriver handed over. Embedders that
// override this to react to the event should call Base.DeviceConnected (or
// assign b.record themselves) so the driver keeps a correct view of itself.
func (b *Base) DeviceConnected(rec DeviceRecord) { b.record = rec }

// QueueControlPacket serialises this driver's DeviceRecord and sends it. It
// is a no-op for any non-LOCAL driver (REMOTE slots) and for any driver
// without an assigned address, which covers the LogicDriver's own
// permanently-unassigned record.
func (b *Base) QueueControlPacket() error {
	if b.record.Flags&FlagLocal == 0 || b.record.Address == 0 {
		return nil
	}
	cp := ControlPacket{
		Address:     b.record.Address,
		Serial:      b.record.Serial,
		DriverClass: b.driverClass,
	}
	if b.record.Flags&FlagPaired != 0 {
		cp.Flags |= ControlFlagPaired
	}
	if b.record.Flags&FlagBroadcast != 0 {
		cp.Flags |= ControlFlagBroadcast
	}
	return b.bus.Send(cp.Encode(nil), 0)
}
