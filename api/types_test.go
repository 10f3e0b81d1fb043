// types_test.go - Unit Tests fuer die Konfigurations-Validierung
package api

import (
	"errors"
	"testing"
)

// TestConfigValidate testet die Fail-Fast-Validierung
func TestConfigValidate(t *testing.T) {
	valid := Config{
		Capacity:  500,
		KeyDim:    64,
		VocabSize: 1000,
		Alpha:     0.1,
		Theta:     0.1,
		Mode:      ModeLinear,
		Lanes:     50,
		BPTT:      35,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid linear", func(c *Config) {}, false},
		{"valid global", func(c *Config) { c.Mode = ModeGlobal }, false},
		{"alpha upper bound", func(c *Config) { c.Alpha = 1 }, false},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, true},
		{"negative capacity", func(c *Config) { c.Capacity = -3 }, true},
		{"zero key dim", func(c *Config) { c.KeyDim = 0 }, true},
		{"zero vocab", func(c *Config) { c.VocabSize = 0 }, true},
		{"zero lanes", func(c *Config) { c.Lanes = 0 }, true},
		{"zero bptt", func(c *Config) { c.BPTT = 0 }, true},
		{"negative theta", func(c *Config) { c.Theta = -0.1 }, true},
		{"alpha above one", func(c *Config) { c.Alpha = 1.5 }, true},
		{"unknown mode", func(c *Config) { c.Mode = "blend" }, true},
		{"empty mode", func(c *Config) { c.Mode = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v is not ErrInvalidConfig", err)
			}
		})
	}
}

// TestStatusError testet die Fehler-Formatierung
func TestStatusError(t *testing.T) {
	tests := []struct {
		name string
		err  StatusError
		want string
	}{
		{"status and message", StatusError{Status: "400 Bad Request", ErrorMessage: "missing body"}, "400 Bad Request: missing body"},
		{"status only", StatusError{Status: "404 Not Found"}, "404 Not Found"},
		{"message only", StatusError{ErrorMessage: "broken"}, "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
