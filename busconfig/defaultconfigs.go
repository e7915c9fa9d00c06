package busconfig

// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: board ID. Val: raw JSON bytes for that board's bus tuning.
const cfgPico = `{
  "bus": {
    "driver_timeout": 1000,
    "address_alloc_time": 1200,
    "ctrl_packet_period": 500,
    "driver_classes": [41342]
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}
