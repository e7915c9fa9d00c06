// Package uartbus is the byte-framing transport under the bus logic layer:
// it turns a byte-oriented serial port into a busproto.Bus plus a stream of
// decoded busproto.FramePacket values.
package uartbus

import "github.com/jangala-dev/busproto-go/errcode"

// Wire framing, one busproto.FramePacket per frame:
//
//	byte 0:   sync  (0xA5)
//	byte 1:   flags (bit0 = control)
//	byte 2-3: length of data[], little-endian
//	byte 4..: data[]
//	last:     checksum, XOR of every preceding byte in the frame
//
// No escaping, no CRC: the bus is assumed short and the protocol above
// tolerates drops. A checksum mismatch or truncated frame is simply a
// MalformedFrame, dropped the same way a short ControlPacket is.
const (
	syncByte        = 0xA5
	frameFlagCtrl   = 1 << 0
	frameHeaderLen  = 4 // sync + flags + length(2)
	maxFrameDataLen = 1024
)

func encodeFrame(dst []byte, data []byte, control bool) []byte {
	var hdr [frameHeaderLen]byte
	hdr[0] = syncByte
	if control {
		hdr[1] = frameFlagCtrl
	}
	hdr[2] = byte(len(data))
	hdr[3] = byte(len(data) >> 8)

	dst = append(dst, hdr[:]...)
	dst = append(dst, data...)

	var chk byte
	for _, b := range hdr {
		chk ^= b
	}
	for _, b := range data {
		chk ^= b
	}
	return append(dst, chk)
}

// frameDecoder accumulates bytes from the serial port and yields complete
// frames as they arrive. It is not safe for concurrent use.
type frameDecoder struct {
	buf []byte
}

// feed appends newly-read bytes and extracts every complete frame found so
// far, invoking yield(data, control) for each. Bytes before a resynced
// sync byte, and any frame that fails its checksum, are dropped silently.
func (d *frameDecoder) feed(chunk []byte, yield func(data []byte, control bool)) {
	d.buf = append(d.buf, chunk...)

	for {
		sync := indexByte(d.buf, syncByte)
		if sync < 0 {
			d.buf = d.buf[:0]
			return
		}
		d.buf = d.buf[sync:]

		if len(d.buf) < frameHeaderLen {
			return
		}
		dataLen := int(d.buf[2]) | int(d.buf[3])<<8
		if dataLen > maxFrameDataLen {
			// Garbage length field; resync past this sync byte.
			d.buf = d.buf[1:]
			continue
		}
		total := frameHeaderLen + dataLen + 1
		if len(d.buf) < total {
			return
		}

		frame := d.buf[:total]
		var chk byte
		for _, b := range frame[:total-1] {
			chk ^= b
		}
		if chk != frame[total-1] {
			d.buf = d.buf[1:]
			continue
		}

		control := frame[1]&frameFlagCtrl != 0
		data := append([]byte(nil), frame[frameHeaderLen:total-1]...)
		d.buf = d.buf[total:]
		yield(data, control)
	}
}

func indexByte(b []byte, v byte) int {
	for i, c := range b {
		if c == v {
			return i
		}
	}
	return -1
}

// decodeOneFrame is a standalone entry point for callers holding one
// complete, already-delimited frame (e.g. a test fixture) rather than a
// live byte stream.
func decodeOneFrame(frame []byte) (data []byte, control bool, err error) {
	if len(frame) < frameHeaderLen+1 {
		return nil, false, errcode.MalformedFrame
	}
	dataLen := int(frame[2]) | int(frame[3])<<8
	if len(frame) != frameHeaderLen+dataLen+1 {
		return nil, false, errcode.MalformedFrame
	}
	var chk byte
	for _, b := range frame[:len(frame)-1] {
		chk ^= b
	}
	if chk != frame[len(frame)-1] {
		return nil, false, errcode.MalformedFrame
	}
	control = frame[1]&frameFlagCtrl != 0
	return append([]byte(nil), frame[frameHeaderLen:len(frame)-1]...), control, nil
}
