package busproto

import "github.com/jangala-dev/busproto-go/errcode"

// Protocol owns the Bus and the fixed-size slot table, and routes inbound
// frames to the right place.
type Protocol struct {
	Bus   Bus
	slots [MaxDriverSlots]Driver
	logic *LogicDriver
}

// NewProtocol creates a Protocol with its LogicDriver occupying slot 0.
func NewProtocol(bus Bus, cfg Config, rng RandSource, log Logger) *Protocol {
	p := &Protocol{Bus: bus}
	p.logic = newLogicDriver(p, cfg, rng, log)
	p.slots[0] = p.logic
	return p
}

// Logic returns the protocol's LogicDriver, e.g. to call Start/Stop or
// PeriodicCallback from a TickSource.
func (p *Protocol) Logic() *LogicDriver { return p.logic }

// Register claims the first empty slot for d and returns its index. A full
// table is a fatal configuration error for the caller.
func (p *Protocol) Register(d Driver) (int, error) {
	for i := 1; i < len(p.slots); i++ {
		if p.slots[i] == nil {
			p.slots[i] = d
			return i, nil
		}
	}
	return -1, &errcode.E{C: errcode.SlotTableFull, Op: "register", Msg: "no free driver slot"}
}

// Deregister clears d's slot. Drivers must call this before going away.
func (p *Protocol) Deregister(d Driver) {
	for i := range p.slots {
		if p.slots[i] == d {
			p.slots[i] = nil
			return
		}
	}
}

// Deliver routes one inbound frame: control frames go to the LogicDriver,
// addressed data frames go to the slot owning that address. Anything that
// matches nothing is silently dropped.
func (p *Protocol) Deliver(fp *FramePacket) {
	if fp.Control {
		cp, err := DecodeControlPacket(fp.Data)
		if err != nil {
			return // malformed, dropped
		}
		p.logic.DispatchControlPacket(&cp)
		return
	}
	addr := fp.Address()
	if addr == 0 {
		return
	}
	for _, d := range p.slots {
		if d == nil {
			continue
		}
		if rec := d.Record(); rec.Address == addr {
			d.HandlePacket(fp)
			return
		}
	}
}
