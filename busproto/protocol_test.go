package busproto

import (
	"testing"

	"github.com/jangala-dev/busproto-go/errcode"
)

func TestRegisterFillsEmptySlotsOnly(t *testing.T) {
	bus := &fakeBus{running: true}
	p := NewProtocol(bus, testConfig(), &scriptRand{seq: []uint32{1}}, nil)

	var drivers []*trackingDriver
	for i := 0; i < MaxDriverSlots-1; i++ {
		d := &trackingDriver{Base: NewBase(bus, 1, uint32(i+1))}
		slot, err := p.Register(d)
		if err != nil {
			t.Fatalf("unexpected error at driver %d: %v", i, err)
		}
		if slot == 0 {
			t.Fatal("slot 0 is reserved for the LogicDriver")
		}
		drivers = append(drivers, d)
	}

	// Table is now full (slot 0 = logic, 1..MaxDriverSlots-1 = drivers).
	extra := &trackingDriver{Base: NewBase(bus, 1, 999)}
	_, err := p.Register(extra)
	if err == nil {
		t.Fatal("expected SlotTableFull error on a full table")
	}
	if errcode.Of(err) != errcode.SlotTableFull {
		t.Fatalf("got code %q, want %q", errcode.Of(err), errcode.SlotTableFull)
	}

	p.Deregister(drivers[0])
	if _, err := p.Register(extra); err != nil {
		t.Fatalf("expected registration to succeed after deregister: %v", err)
	}
}

func TestDeliverRoutesAddressedDataFrame(t *testing.T) {
	bus := &fakeBus{running: true}
	p := NewProtocol(bus, testConfig(), &scriptRand{seq: []uint32{1}}, nil)

	var received *FramePacket
	d := &trackingDriver{Base: NewBase(bus, 1, 42), onFrame: func(fp *FramePacket) { received = fp }}
	d.Record().Address = 5
	d.Record().Flags |= FlagInitialised
	if _, err := p.Register(d); err != nil {
		t.Fatal(err)
	}

	fp := &FramePacket{Data: []byte{5, 0xAA, 0xBB}}
	p.Deliver(fp)

	if received == nil {
		t.Fatal("expected HandlePacket to be invoked")
	}
	if received.Data[1] != 0xAA {
		t.Fatalf("unexpected payload: %v", received.Data)
	}
}

func TestDeliverDropsUnaddressedDataFrame(t *testing.T) {
	bus := &fakeBus{running: true}
	p := NewProtocol(bus, testConfig(), &scriptRand{seq: []uint32{1}}, nil)
	d := &trackingDriver{Base: NewBase(bus, 1, 42)}
	d.Record().Address = 5
	if _, err := p.Register(d); err != nil {
		t.Fatal(err)
	}
	// No slot owns address 200; this must not panic and must not match.
	p.Deliver(&FramePacket{Data: []byte{200, 1}})
}
