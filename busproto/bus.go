package busproto

import "github.com/jangala-dev/busproto-go/x/fmtx"

// Bus is the external byte-oriented broadcast channel. The core never owns a
// Bus; it only calls it. Flags is transport-specific and passed through
// unexamined (e.g. priority or retransmit hints).
type Bus interface {
	IsRunning() bool
	Send(data []byte, flags uint8) error
}

// Logger is the side-effecting log callback. A nil Logger is treated as a
// no-op; StdLogger is a simple default for host builds.
type Logger func(format string, args ...any)

func (l Logger) logf(format string, args ...any) {
	if l != nil {
		l(format, args...)
	}
}

// StdLogger writes one line per call via fmtx (stdout on host builds,
// fmtx.DefaultOutput on MCU builds).
func StdLogger(format string, args ...any) {
	fmtx.Printf(format+"\n", args...)
}

// RandSource supplies candidate addresses for arbitration.
type RandSource interface {
	// Uint32 returns a value uniform in [0, bound).
	Uint32(bound uint32) uint32
}
