//go:build !(rp2040 || rp2350)

package uartbus

import (
	"context"
	"io"

	"github.com/jangala-dev/busproto-go/busproto"
)

// Transport adapts any io.ReadWriter into a busproto.Bus on the host: a
// net.Pipe() loopback for unit tests and the cmd/selftest demo, or a real
// host serial port. Framing is identical to the rp2xxx variant; only the
// underlying port type differs.
type Transport struct {
	rw      io.ReadWriter
	dec     frameDecoder
	running bool
}

// New wraps rw for bus framing. rw is assumed already open and configured;
// this package has no notion of baud rates or line discipline on the host.
func New(rw io.ReadWriter) *Transport {
	return &Transport{rw: rw, running: true}
}

func (t *Transport) IsRunning() bool { return t.running }

// Send implements busproto.Bus; see the rp2xxx variant's doc comment for
// why every call through this interface is a ControlPacket.
func (t *Transport) Send(data []byte, flags uint8) error {
	return t.SendFrame(data, true)
}

// SendFrame originates a frame with an explicit control bit, for callers
// outside busproto (see the rp2xxx variant).
func (t *Transport) SendFrame(data []byte, control bool) error {
	frame := encodeFrame(make([]byte, 0, frameHeaderLen+len(data)+1), data, control)
	_, err := t.rw.Write(frame)
	return err
}

// Run reads from rw until it errors (e.g. a closed net.Pipe) or ctx is
// already done, decoding complete frames and handing each to proto.Deliver.
// A plain io.ReadWriter has no portable way to interrupt a blocked Read, so
// cancellation here means "close rw", the same contract net.Pipe gives its
// callers — ctx is only checked between reads.
func (t *Transport) Run(ctx context.Context, proto *busproto.Protocol) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := t.rw.Read(buf)
		if err != nil {
			return err
		}
		t.dec.feed(buf[:n], func(data []byte, control bool) {
			proto.Deliver(&busproto.FramePacket{Data: data, Control: control})
		})
	}
}
