// Package busconfig resolves per-board bus tuning from embedded JSON: a
// flash-resident map keyed by board ID, decoded with tinyjson instead of
// encoding/json so the decoder never allocates a reflection-driven schema.
package busconfig

import (
	"errors"

	"github.com/andreyvit/tinyjson"

	"github.com/jangala-dev/busproto-go/busproto"
	"github.com/jangala-dev/busproto-go/x/mathx"
)

// configPrefix is the top-level key under which all bus tuning lives in a
// board's embedded document.
const configPrefix = "bus"

// EmbeddedConfigLookup resolves a board ID to raw JSON. A package-level var
// so tests can substitute their own documents.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// Load decodes the embedded tuning for board and overlays it onto
// busproto.DefaultConfig. Unknown boards return the default config
// unmodified along with a non-nil error so callers can log and continue.
func Load(board string) (busproto.Config, error) {
	cfg := busproto.DefaultConfig()

	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return cfg, errors.New("busconfig: no embedded config for board: " + board)
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return cfg, errors.New("busconfig: embedded config is not a JSON object")
	}

	top, ok := m[configPrefix].(map[string]any)
	if !ok {
		return cfg, nil
	}
	applyOverride(&cfg.DriverTimeout, top["driver_timeout"])
	applyOverride(&cfg.AddressAllocTime, top["address_alloc_time"])
	applyOverride(&cfg.CtrlPacketPeriod, top["ctrl_packet_period"])
	return cfg, nil
}

// applyOverride writes v into dst when v decodes to a JSON number, clamped
// into the uint16 tick-counter range. Missing keys and wrong JSON types
// leave dst untouched.
func applyOverride(dst *uint16, v any) {
	n, ok := v.(float64)
	if !ok {
		return
	}
	*dst = uint16(mathx.Clamp(n, 0, 65535))
}

// DriverClasses decodes the "driver_classes" list for board: a manifest of
// driver_class tags this board's firmware image registers as REMOTE slots
// at boot, so a slot is already waiting when a peer's first control packet
// arrives and can associate with it. Returns nil for boards with no such list.
func DriverClasses(board string) ([]uint32, error) {
	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return nil, errors.New("busconfig: no embedded config for board: " + board)
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, errors.New("busconfig: embedded config is not a JSON object")
	}
	top, ok := m[configPrefix].(map[string]any)
	if !ok {
		return nil, nil
	}
	raws, ok := top["driver_classes"].([]any)
	if !ok {
		return nil, nil
	}

	classes := make([]uint32, 0, len(raws))
	for _, v := range raws {
		if n, ok := v.(float64); ok && n >= 0 {
			classes = append(classes, uint32(n))
		}
	}
	return classes, nil
}
