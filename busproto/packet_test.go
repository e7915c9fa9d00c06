package busproto

import (
	"bytes"
	"testing"
)

func TestControlPacketRoundTrip(t *testing.T) {
	cp := ControlPacket{
		Address:     7,
		Flags:       ControlFlagPaired | ControlFlagBroadcast,
		Serial:      0xDEADBEEF,
		DriverClass: 0x0102,
		Payload:     []byte{0x01, 0x02, 0x03},
	}
	wire := cp.Encode(nil)
	if len(wire) != controlPacketHeaderLen+len(cp.Payload) {
		t.Fatalf("unexpected wire length: %d", len(wire))
	}

	got, err := DecodeControlPacket(wire)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Address != cp.Address || got.Flags != cp.Flags || got.Serial != cp.Serial || got.DriverClass != cp.DriverClass {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, cp)
	}
	if !bytes.Equal(got.Payload, cp.Payload) {
		t.Fatalf("payload mismatch: got %v, want %v", got.Payload, cp.Payload)
	}
}

func TestControlPacketLittleEndian(t *testing.T) {
	cp := ControlPacket{Serial: 0x01020304, DriverClass: 0x0A0B0C0D}
	wire := cp.Encode(nil)
	if wire[2] != 0x04 || wire[5] != 0x01 {
		t.Fatalf("serial not little-endian: % x", wire[2:6])
	}
	if wire[6] != 0x0D || wire[9] != 0x0A {
		t.Fatalf("driver_class not little-endian: % x", wire[6:10])
	}
}

func TestDecodeControlPacketMalformed(t *testing.T) {
	_, err := DecodeControlPacket([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error decoding short frame")
	}
}

func TestFramePacketAddress(t *testing.T) {
	fp := &FramePacket{Data: []byte{9, 1, 2, 3}}
	if fp.Address() != 9 {
		t.Fatalf("got %d, want 9", fp.Address())
	}
	empty := &FramePacket{}
	if empty.Address() != 0 {
		t.Fatalf("want 0 for empty frame")
	}
}
