package busconfig

import "testing"

func withLookup(t *testing.T, body map[string][]byte) {
	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(board string) ([]byte, bool) {
		b, ok := body[board]
		return b, ok
	}
	t.Cleanup(func() { EmbeddedConfigLookup = old })
}

func TestLoadOverridesKnownFields(t *testing.T) {
	withLookup(t, map[string][]byte{
		"test": []byte(`{"bus": {"driver_timeout": 500, "address_alloc_time": 600, "ctrl_packet_period": 100}}`),
	})

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DriverTimeout != 500 || cfg.AddressAllocTime != 600 || cfg.CtrlPacketPeriod != 100 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadLeavesUnspecifiedFieldsAtDefault(t *testing.T) {
	withLookup(t, map[string][]byte{
		"test": []byte(`{"bus": {"driver_timeout": 500}}`),
	})

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DriverTimeout != 500 {
		t.Fatalf("got driver_timeout=%d, want 500", cfg.DriverTimeout)
	}
	if cfg.AddressAllocTime == 500 {
		t.Fatal("address_alloc_time should not have been overridden")
	}
}

func TestLoadUnknownBoardReturnsDefault(t *testing.T) {
	withLookup(t, map[string][]byte{})

	cfg, err := Load("nonexistent")
	if err == nil {
		t.Fatal("expected an error for an unknown board")
	}
	if cfg.DriverTimeout == 0 {
		t.Fatal("expected the default config even on error")
	}
}

func TestDriverClassesDecodesList(t *testing.T) {
	withLookup(t, map[string][]byte{
		"test": []byte(`{"bus": {"driver_classes": [1, 2, 305419896]}}`),
	})

	classes, err := DriverClasses("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(classes) != 3 || classes[2] != 0x12345678 {
		t.Fatalf("unexpected classes: %v", classes)
	}
}
