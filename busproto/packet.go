package busproto

import (
	"encoding/binary"

	"github.com/jangala-dev/busproto-go/errcode"
)

// ControlFlags are the bits that travel on the wire in ControlPacket.Flags.
// They are a different bitset from DeviceFlags.
type ControlFlags uint8

const (
	ControlFlagConflict ControlFlags = 1 << iota
	ControlFlagPaired
	ControlFlagBroadcast
)

// controlPacketHeaderLen is the fixed portion of the wire layout:
// address(1) + flags(1) + serial(4) + driver_class(4).
const controlPacketHeaderLen = 10

// ControlPacket is the fixed-header wire record announcing a driver's
// address, serial, and pairing state. Payload is the opaque driver-private
// tail; the core never interprets it.
type ControlPacket struct {
	Address     uint8
	Flags       ControlFlags
	Serial      uint32
	DriverClass uint32
	Payload     []byte
}

// Encode appends the little-endian wire encoding of cp to dst and returns
// the result.
func (cp *ControlPacket) Encode(dst []byte) []byte {
	var hdr [controlPacketHeaderLen]byte
	hdr[0] = cp.Address
	hdr[1] = byte(cp.Flags)
	binary.LittleEndian.PutUint32(hdr[2:6], cp.Serial)
	binary.LittleEndian.PutUint32(hdr[6:10], cp.DriverClass)
	dst = append(dst, hdr[:]...)
	dst = append(dst, cp.Payload...)
	return dst
}

// DecodeControlPacket parses a wire-format control packet. A frame shorter
// than the fixed header is malformed.
func DecodeControlPacket(data []byte) (ControlPacket, error) {
	if len(data) < controlPacketHeaderLen {
		return ControlPacket{}, errcode.MalformedFrame
	}
	cp := ControlPacket{
		Address:     data[0],
		Flags:       ControlFlags(data[1]),
		Serial:      binary.LittleEndian.Uint32(data[2:6]),
		DriverClass: binary.LittleEndian.Uint32(data[6:10]),
	}
	if len(data) > controlPacketHeaderLen {
		cp.Payload = append([]byte(nil), data[controlPacketHeaderLen:]...)
	}
	return cp, nil
}

// FramePacket is the bus envelope: either a control packet or a data payload
// addressed to a specific address, the latter always carried as the first
// byte of Data.
type FramePacket struct {
	Data    []byte
	Control bool
}

// Address returns the address byte at the front of the envelope, or 0 for an
// empty frame.
func (fp *FramePacket) Address() uint8 {
	if len(fp.Data) == 0 {
		return 0
	}
	return fp.Data[0]
}
