package busproto

import "github.com/jangala-dev/busproto-go/x/timex"

// LogicDriver is the singleton protocol driver: address arbitration for
// LOCAL drivers, liveness tracking for REMOTE drivers, control-packet
// dispatch, and filter maintenance. It occupies slot 0 of its Protocol and
// is skipped during peer iteration.
type LogicDriver struct {
	*Base
	proto   *Protocol
	cfg     Config
	rng     RandSource
	log     Logger
	running bool
	filters [MaxFilterEntries]uint8 // 0 = empty slot
}

func newLogicDriver(proto *Protocol, cfg Config, rng RandSource, log Logger) *LogicDriver {
	if rng == nil {
		rng = NewRandSource()
	}
	l := &LogicDriver{
		proto: proto,
		cfg:   cfg,
		rng:   rng,
		log:   log,
	}
	l.Base = &Base{
		// The LogicDriver's own record starts INITIALISED without arbitration
		// and never acquires a non-zero address, so Base.QueueControlPacket's
		// address==0 guard keeps it silent forever.
		record: DeviceRecord{Flags: FlagLocal | FlagInitialised},
		bus:    proto.Bus,
	}
	return l
}

// Start arms the periodic callback.
func (l *LogicDriver) Start() { l.running = true }

// Stop disarms the periodic callback. While stopped, LogicDriver does not
// transmit, mutate slot state, or invoke driver callbacks.
func (l *LogicDriver) Stop() { l.running = false }

// Running reports whether Start has been called more recently than Stop.
func (l *LogicDriver) Running() bool { return l.running }

// PeriodicCallback advances every occupied slot's rolling counter and drives
// address allocation, periodic emission, and liveness timeouts. It must be
// invoked once per tick by the host scheduler.
func (l *LogicDriver) PeriodicCallback() {
	if !l.running || !l.proto.Bus.IsRunning() {
		return
	}

	for i, d := range l.proto.slots {
		if d == nil || d == Driver(l) {
			continue
		}
		rec := d.Record()

		if rec.Flags&(FlagInitialising|FlagInitialised|FlagRemote) != 0 {
			rec.RollingCounter++
		}

		switch {
		case rec.Flags&FlagRemote != 0:
			l.tickRemote(d, rec)
		case rec.Flags&FlagLocal != 0:
			l.tickLocal(d, rec, i)
		}
	}
}

func (l *LogicDriver) tickRemote(d Driver, rec *DeviceRecord) {
	if rec.RollingCounter != l.cfg.DriverTimeout {
		return
	}
	if rec.Flags&FlagCPSeen == 0 {
		l.log.logf("ts=%d device removed: addr=%d serial=%d", timex.NowMs(), rec.Address, rec.Serial)
		d.DeviceRemoved()
		return
	}
	// The peer was heard during this window: start the next one.
	rec.Flags &^= FlagCPSeen
	rec.RollingCounter = 0
}

func (l *LogicDriver) tickLocal(d Driver, rec *DeviceRecord, slot int) {
	switch {
	case rec.Flags&(FlagInitialising|FlagInitialised) == 0:
		rec.Address = l.pickAddress(slot)
		rec.Flags |= FlagInitialising
		rec.RollingCounter = 0
		l.log.logf("begin init: candidate addr=%d", rec.Address)
		_ = d.QueueControlPacket()

	case rec.Flags&FlagInitialising != 0:
		if rec.RollingCounter == l.cfg.AddressAllocTime {
			rec.Flags &^= FlagInitialising
			rec.Flags |= FlagInitialised
			rec.RollingCounter = 0
			l.log.logf("ts=%d address allocated: addr=%d", timex.NowMs(), rec.Address)
			d.DeviceConnected(*rec)
		}

	case rec.Flags&FlagInitialised != 0:
		if rec.RollingCounter > 0 && rec.RollingCounter%l.cfg.CtrlPacketPeriod == 0 {
			_ = d.QueueControlPacket()
		}
	}
}

// pickAddress picks a candidate uniformly in [0,256), re-rolling until it
// doesn't collide with another INITIALISED slot's address. Collisions with
// peers this node hasn't seen resolve on the wire via CONFLICT, not here.
func (l *LogicDriver) pickAddress(selfSlot int) uint8 {
	for {
		candidate := uint8(l.rng.Uint32(256))
		collides := false
		for j, d := range l.proto.slots {
			if j == selfSlot || d == nil {
				continue
			}
			rec := d.Record()
			if rec.Flags&FlagInitialised != 0 && rec.Address == candidate {
				collides = true
				break
			}
		}
		if !collides {
			return candidate
		}
	}
}

// DispatchControlPacket routes a decoded inbound ControlPacket: find the
// driver owning its address, resolve an address conflict, or associate a new
// REMOTE device.
func (l *LogicDriver) DispatchControlPacket(cp *ControlPacket) {
	if !l.running {
		return
	}

	// Step 1: address match against every occupied slot.
	for _, d := range l.proto.slots {
		if d == nil {
			continue
		}
		rec := d.Record()
		if rec.Address != cp.Address {
			continue
		}

		if rec.Serial != cp.Serial && rec.Flags&FlagInitialising == 0 {
			// We own this address under a different serial: it's a collision.
			cp.Flags |= ControlFlagConflict
			_ = l.proto.Bus.Send(cp.Encode(nil), 0)
			return
		}
		if rec.Flags&FlagInitialising != 0 && cp.Flags&ControlFlagConflict != 0 {
			// A peer is contesting our candidate; re-pick next tick.
			rec.Flags &^= FlagInitialising
			return
		}

		rec.Flags |= FlagCPSeen
		d.HandleControlPacket(cp)
		return
	}

	// Step 2: filter check. A filtered address suppresses association until
	// cleared by a BROADCAST-flagged packet. The clear falls through to
	// step 3 instead of returning, so the packet that clears the filter can
	// also associate in the same dispatch.
	filtered := l.filterContains(cp.Address)
	switch {
	case filtered && cp.Flags&ControlFlagBroadcast != 0:
		l.filterRemove(cp.Address)
	case filtered:
		return
	case cp.Flags&ControlFlagPaired != 0:
		l.filterInsert(cp.Address)
		return
	}

	// Step 3: remote association.
	for _, d := range l.proto.slots {
		if d == nil {
			continue
		}
		rec := d.Record()
		if rec.Flags&FlagRemote == 0 || d.DriverClass() != cp.DriverClass {
			continue
		}
		if rec.Serial != 0 && rec.Serial != cp.Serial {
			continue
		}
		newRec := DeviceRecord{
			Address: cp.Address,
			Serial:  cp.Serial,
			Flags:   FlagRemote,
		}
		if cp.Flags&ControlFlagPaired != 0 {
			newRec.Flags |= FlagPaired
		}
		if cp.Flags&ControlFlagBroadcast != 0 {
			newRec.Flags |= FlagBroadcast
		}
		d.DeviceConnected(newRec)
		return
	}

	// Step 4: no association possible; drop.
}

func (l *LogicDriver) filterContains(addr uint8) bool {
	if addr == 0 {
		return false
	}
	for _, f := range l.filters {
		if f == addr {
			return true
		}
	}
	return false
}

// filterInsert writes addr into the first empty filter slot, silently
// dropping it if the table is full.
func (l *LogicDriver) filterInsert(addr uint8) {
	for i, f := range l.filters {
		if f == 0 {
			l.filters[i] = addr
			return
		}
	}
}

func (l *LogicDriver) filterRemove(addr uint8) {
	for i, f := range l.filters {
		if f == addr {
			l.filters[i] = 0
		}
	}
}
