package remote

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	Addr          string        `json:"addr"`
	MaxPayload    int           `json:"max_payload"`    // bytes of request data
	MaxRounds     uint32        `json:"max_rounds"`     // requests above this are refused, 0 = DefaultMaxRounds
	Workers       int           `json:"workers"`        // goroutines per transform (0 = GOMAXPROCS)
	WriteRate     int64         `json:"write_rate"`     // response bytes/s across the server, 0 = unlimited
	HandleTimeout time.Duration `json:"handle_timeout"` // seconds in JSON, 0 = no timeout
}

// DefaultMaxRounds bounds the round count of a single request.
const DefaultMaxRounds = 1 << 16

// DefaultServerConfig listens on all interfaces, port 7420.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          ":7420",
		MaxPayload:    DefaultMaxPayload,
		MaxRounds:     DefaultMaxRounds,
		Workers:       0,
		WriteRate:     0,
		HandleTimeout: 30 * time.Second,
	}
}

// LoadServerConfig reads a JSON file on top of DefaultServerConfig. Fields
// missing from the file keep their defaults; "handle_timeout": 0 disables the timeout.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	var timeout struct {
		Seconds *int64 `json:"handle_timeout"`
	}
	if err := json.Unmarshal(data, &timeout); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if timeout.Seconds != nil {
		cfg.HandleTimeout = time.Duration(*timeout.Seconds) * time.Second
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration values the server cannot run with.
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is empty")
	}
	if c.MaxPayload <= 0 || c.MaxPayload > MaxPayloadLimit {
		return errors.Errorf("config: max_payload must be in (0, %d]", MaxPayloadLimit)
	}
	if c.WriteRate < 0 {
		return errors.New("config: write_rate must not be negative")
	}
	if c.HandleTimeout < 0 {
		return errors.New("config: handle_timeout must not be negative")
	}
	return nil
}
