//go:build rp2040 || rp2350

package uartbus

import (
	"context"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"machine"

	"github.com/jangala-dev/busproto-go/busproto"
)

// Transport adapts a real uartx.UART into a busproto.Bus: a thin struct
// holding the hardware handle plus the decode state, nothing more.
type Transport struct {
	u       *uartx.UART
	dec     frameDecoder
	running bool
}

// New configures the given hardware UART for the bus's serial parameters
// (8N1, no flow control — the bus protocol has no notion of either) and
// returns a Transport ready to Send and Run.
func New(u *uartx.UART, baud uint32, tx, rx machine.Pin) (*Transport, error) {
	if err := u.Configure(uartx.UARTConfig{BaudRate: baud, TX: tx, RX: rx}); err != nil {
		return nil, err
	}
	return &Transport{u: u, running: true}, nil
}

func (t *Transport) IsRunning() bool { return t.running }

// Send implements busproto.Bus. Every call through this interface
// originates from busproto itself (QueueControlPacket, or a conflict
// response from DispatchControlPacket) and is always a ControlPacket, so
// the frame is always marked control. flags is accepted for interface
// conformance but unused: the framing layer has nothing transport-specific
// to carry.
func (t *Transport) Send(data []byte, flags uint8) error {
	return t.SendFrame(data, true)
}

// SendFrame is the framing-aware counterpart Protocol drivers never call
// directly; busproto.Base.QueueControlPacket and Protocol.Deliver always go
// through the plain Bus.Send/Deliver contract. It exists so callers outside
// busproto (e.g. a data-plane forwarder) can originate a data frame with an
// explicit control bit instead of busproto.Base's control-packet framing.
func (t *Transport) SendFrame(data []byte, control bool) error {
	frame := encodeFrame(make([]byte, 0, frameHeaderLen+len(data)+1), data, control)
	_, err := t.u.Write(frame)
	return err
}

// Run reads from the UART until ctx is done, decoding complete frames and
// handing each to proto.Deliver. It never returns until ctx is cancelled or
// the port errors, so callers run it in its own goroutine-equivalent (the
// caller's scheduling loop — this module makes no assumption about
// goroutines being available on the target).
func (t *Transport) Run(ctx context.Context, proto *busproto.Protocol) error {
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := t.u.RecvSomeContext(ctx, buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		t.dec.feed(buf[:n], func(data []byte, control bool) {
			proto.Deliver(&busproto.FramePacket{Data: data, Control: control})
		})
	}
}
