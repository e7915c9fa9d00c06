//go:build !(rp2040 || rp2350)

// Package fmtx is a tiny formatting shim so callers don't need to branch on
// build tags themselves: on host builds it forwards to the standard fmt
// package, on MCU builds (see fmtx_mcu.go) it avoids pulling fmt's reflection
// machinery into the firmware image.
package fmtx

import (
	"fmt"
	"io"
)

func Sprintf(format string, a ...any) string      { return fmt.Sprintf(format, a...) }
func Printf(format string, a ...any) (int, error) { return fmt.Printf(format, a...) }
func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	return fmt.Fprintf(w, format, a...)
}
