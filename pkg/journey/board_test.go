package journey

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBoardConfigDefaults(t *testing.T) {
	cfg, err := LoadBoardConfig("")
	if err != nil {
		t.Fatalf("empty path must load defaults: %v", err)
	}
	if cfg.DaySpan != DefaultDaySpan || cfg.SaidNoSpan != SaidNoDaySpan {
		t.Fatalf("unexpected default spans: %d/%d", cfg.DaySpan, cfg.SaidNoSpan)
	}
	if !cfg.ValidPlatform("THUMBTACK") {
		t.Fatal("expected THUMBTACK in default platforms")
	}
	if cfg.ValidPlatform("YELP") {
		t.Fatal("YELP should not be a default platform")
	}
	if len(cfg.Touchpoints) == 0 || cfg.Touchpoints[0].Key != "closed:0" {
		t.Fatalf("expected closed:0 touchpoint, got %+v", cfg.Touchpoints)
	}
}

func TestLoadBoardConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	content := []byte("platforms:\n  - ANGI\nday_span: 60\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadBoardConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DaySpan != 60 {
		t.Fatalf("expected day span 60, got %d", cfg.DaySpan)
	}
	if !cfg.ValidPlatform("ANGI") || cfg.ValidPlatform("THUMBTACK") {
		t.Fatalf("expected platform list replaced, got %v", cfg.Platforms)
	}
	if cfg.SaidNoSpan != SaidNoDaySpan {
		t.Fatalf("unset said-no span must keep default, got %d", cfg.SaidNoSpan)
	}

	if _, err := LoadBoardConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
