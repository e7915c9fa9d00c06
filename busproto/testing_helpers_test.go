package busproto

// fakeBus is a minimal recording Bus for single-node tests.
type fakeBus struct {
	running bool
	sent    [][]byte
}

func (b *fakeBus) IsRunning() bool { return b.running }
func (b *fakeBus) Send(data []byte, flags uint8) error {
	b.sent = append(b.sent, append([]byte(nil), data...))
	return nil
}

// scriptRand returns a scripted sequence of candidate addresses, repeating
// the last entry once the script is exhausted.
type scriptRand struct {
	seq []uint32
	i   int
}

func (s *scriptRand) Uint32(bound uint32) uint32 {
	idx := s.i
	if idx >= len(s.seq) {
		idx = len(s.seq) - 1
	}
	s.i++
	return s.seq[idx] % bound
}

// trackingDriver counts connect/remove callbacks on top of Base's storage.
type trackingDriver struct {
	*Base
	connects      int
	removes       int
	lastConnected DeviceRecord
	controlPkts   []ControlPacket
	onFrame       func(fp *FramePacket)
}

func (t *trackingDriver) HandlePacket(fp *FramePacket) {
	if t.onFrame != nil {
		t.onFrame(fp)
	}
}

func (t *trackingDriver) DeviceConnected(rec DeviceRecord) {
	t.connects++
	t.lastConnected = rec
	t.Base.DeviceConnected(rec)
}

func (t *trackingDriver) DeviceRemoved() {
	t.removes++
	t.Base.DeviceRemoved()
}

func (t *trackingDriver) HandleControlPacket(cp *ControlPacket) {
	t.controlPkts = append(t.controlPkts, *cp)
}

// network wires N nodeBuses together: Send on one delivers to every other
// node's Protocol, modeling a shared broadcast bus.
type network struct {
	nodes []*Protocol
	buses []*nodeBus
}

type nodeBus struct {
	net     *network
	idx     int
	running bool
	sent    [][]byte
}

func (b *nodeBus) IsRunning() bool { return b.running }
func (b *nodeBus) Send(data []byte, flags uint8) error {
	b.sent = append(b.sent, append([]byte(nil), data...))
	frame := &FramePacket{Data: append([]byte(nil), data...), Control: true}
	for i, p := range b.net.nodes {
		if i == b.idx {
			continue
		}
		p.Deliver(frame)
	}
	return nil
}

func (n *network) newNode(cfg Config, rng RandSource) (*Protocol, *nodeBus) {
	nb := &nodeBus{net: n, running: true, idx: len(n.nodes)}
	proto := NewProtocol(nb, cfg, rng, nil)
	n.nodes = append(n.nodes, proto)
	n.buses = append(n.buses, nb)
	proto.Logic().Start()
	return proto, nb
}

func testConfig() Config {
	return Config{DriverTimeout: 20, AddressAllocTime: 10, CtrlPacketPeriod: 4}
}
