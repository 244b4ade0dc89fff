package remote

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	body := `{"addr": "127.0.0.1:9000", "max_rounds": 64, "write_rate": 4096, "handle_timeout": 5}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.MaxRounds != 64 || cfg.WriteRate != 4096 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.HandleTimeout != 5*time.Second {
		t.Fatalf("handle_timeout: got %v", cfg.HandleTimeout)
	}
	if cfg.MaxPayload != DefaultMaxPayload {
		t.Fatalf("max_payload default lost: %d", cfg.MaxPayload)
	}
}

func TestLoadServerConfigDefaultsTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	if err := os.WriteFile(path, []byte(`{"addr": ":1"}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.HandleTimeout != DefaultServerConfig().HandleTimeout {
		t.Fatalf("handle_timeout: got %v", cfg.HandleTimeout)
	}
}

func TestLoadServerConfigErrors(t *testing.T) {
	if _, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte(`{"max_payload": -1}`), 0o600)
	if _, err := LoadServerConfig(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadServerConfigZeroTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	if err := os.WriteFile(path, []byte(`{"addr": ":1", "handle_timeout": 0}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.HandleTimeout != 0 {
		t.Fatalf("handle_timeout: got %v, want 0", cfg.HandleTimeout)
	}
}
