//go:build !(rp2040 || rp2350)

// Command selftest exercises the bus logic layer end to end on the host:
// two Protocols connected over a net.Pipe loopback, each running its own
// LogicDriver, ticked for a fixed 200 ticks, long enough for both sides to
// arbitrate distinct addresses and associate with each other's sample
// driver. A host-runnable smoke test for the core logic, not a hardware demo.
package main

import (
	"context"
	"net"
	"time"

	"github.com/jangala-dev/busproto-go/busconfig"
	"github.com/jangala-dev/busproto-go/busproto"
	"github.com/jangala-dev/busproto-go/transport/uartbus"
	"github.com/jangala-dev/busproto-go/x/fmtx"
)

// sampleClass tags the demo driver both nodes expose. The pico embedded
// config lists the same class, so each node also pre-registers a REMOTE
// slot waiting for its peer.
const sampleClass = 0xA17E

func logger(prefix string) busproto.Logger {
	return func(format string, args ...any) {
		fmtx.Printf("[%s] %s\n", prefix, fmtx.Sprintf(format, args...))
	}
}

// peerSlot reports when its pre-registered REMOTE slot associates.
type peerSlot struct {
	*busproto.Base
	name string
}

func (d *peerSlot) DeviceConnected(rec busproto.DeviceRecord) {
	d.Base.DeviceConnected(rec)
	fmtx.Printf("[%s] peer connected: addr=%d serial=%x\n", d.name, rec.Address, rec.Serial)
}

func main() {
	cfg, err := busconfig.Load("pico")
	if err != nil {
		fmtx.Printf("selftest: using default config (%v)\n", err)
	}
	// Shrink the timing windows so the demo finishes in well under a second.
	cfg.AddressAllocTime = 20
	cfg.CtrlPacketPeriod = 10
	cfg.DriverTimeout = 40

	classes, err := busconfig.DriverClasses("pico")
	if err != nil || len(classes) == 0 {
		classes = []uint32{sampleClass}
	}

	connA, connB := net.Pipe()
	transA := uartbus.New(connA)
	transB := uartbus.New(connB)

	protoA := busproto.NewProtocol(transA, cfg, nil, logger("node-a"))
	protoB := busproto.NewProtocol(transB, cfg, nil, logger("node-b"))
	protoA.Logic().Start()
	protoB.Logic().Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go transA.Run(ctx, protoA)
	go transB.Run(ctx, protoB)

	for _, class := range classes {
		remA := &peerSlot{Base: busproto.NewRemoteBase(transA, class, 0), name: "node-a"}
		if _, err := protoA.Register(remA); err != nil {
			fmtx.Printf("selftest: register node-a remote slot: %v\n", err)
			return
		}
		remB := &peerSlot{Base: busproto.NewRemoteBase(transB, class, 0), name: "node-b"}
		if _, err := protoB.Register(remB); err != nil {
			fmtx.Printf("selftest: register node-b remote slot: %v\n", err)
			return
		}
	}

	if _, err := protoA.Register(busproto.NewBase(transA, sampleClass, 0x1001)); err != nil {
		fmtx.Printf("selftest: register node-a driver: %v\n", err)
		return
	}
	if _, err := protoB.Register(busproto.NewBase(transB, sampleClass, 0x1002)); err != nil {
		fmtx.Printf("selftest: register node-b driver: %v\n", err)
		return
	}

	tick := time.NewTicker(2 * time.Millisecond)
	defer tick.Stop()
	for i := 0; i < 200; i++ {
		<-tick.C
		protoA.Logic().PeriodicCallback()
		protoB.Logic().PeriodicCallback()
	}

	fmtx.Printf("selftest: done\n")
}
