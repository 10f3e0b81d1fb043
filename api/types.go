// types.go - Core API Types (Konfiguration, Ergebnisse, Errors)
// Enthaelt: StatusError, Config, DefaultConfig, Validate, RunResult
package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/seqcache/seqcache/envconfig"
)

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the seqcache server logs for details"
	}
}

// ErrInvalidConfig ist der Basis-Fehler fuer jede von [Config.Validate]
// zurueckgewiesene Konfiguration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Interpolations-Modi. Die beiden Modi sind getrennte Codepfade mit
// unterschiedlicher Normalisierungs-Reihenfolge und duerfen nicht
// ineinander umgerechnet werden.
const (
	ModeLinear = "linear"
	ModeGlobal = "global"
)

// Config buendelt alle Parameter einer Evaluations-Sitzung.
// Wenn du eine neue Option hinzufuegst, fuege sie auch zur
// CLI- und Server-Dokumentation hinzu.
type Config struct {
	// Cache-Parameter
	Capacity  int `json:"cache_capacity"`
	KeyDim    int `json:"key_dim"`
	VocabSize int `json:"vocab_size"`

	// Interpolation
	Alpha float64 `json:"alpha"`
	Theta float64 `json:"theta"`
	Mode  string  `json:"mode"`

	// Partitionierung der Eingabe in Lanes x BPTT Bloecke.
	// Beide steuern die Eingabe-Aufteilung, nicht den Cache selbst.
	Lanes int `json:"batch_size"`
	BPTT  int `json:"bptt"`
}

// DefaultConfig ist der Standard-Satz von Optionen; diese Werte werden
// verwendet, wenn der Benutzer keine anderen Werte explizit angibt.
func DefaultConfig() Config {
	return Config{
		Capacity: int(envconfig.CacheCapacity()),
		Alpha:    0.1,
		Theta:    0.1,
		Mode:     ModeLinear,
		Lanes:    50,
		BPTT:     35,
	}
}

// Validate prueft die Konfiguration und schlaegt sofort fehl;
// es entsteht nie ein teilweise gueltiger Zustand.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: cache_capacity must be > 0, got %d", ErrInvalidConfig, c.Capacity)
	case c.KeyDim <= 0:
		return fmt.Errorf("%w: key_dim must be > 0, got %d", ErrInvalidConfig, c.KeyDim)
	case c.VocabSize <= 0:
		return fmt.Errorf("%w: vocab_size must be > 0, got %d", ErrInvalidConfig, c.VocabSize)
	case c.Lanes <= 0:
		return fmt.Errorf("%w: batch_size must be > 0, got %d", ErrInvalidConfig, c.Lanes)
	case c.BPTT <= 0:
		return fmt.Errorf("%w: bptt must be > 0, got %d", ErrInvalidConfig, c.BPTT)
	case c.Theta < 0:
		return fmt.Errorf("%w: theta must be >= 0, got %v", ErrInvalidConfig, c.Theta)
	case c.Alpha < 0 || c.Alpha > 1:
		return fmt.Errorf("%w: alpha must be in [0,1], got %v", ErrInvalidConfig, c.Alpha)
	case c.Mode != ModeLinear && c.Mode != ModeGlobal:
		return fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalidConfig, ModeLinear, ModeGlobal, c.Mode)
	}

	return nil
}

// RunResult beschreibt das Ergebnis eines abgeschlossenen
// Evaluations-Laufs, wie es im Store abgelegt und ueber die API
// ausgeliefert wird.
type RunResult struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Theta      float64   `json:"theta"`
	Alpha      float64   `json:"alpha"`
	Perplexity float64   `json:"perplexity"`
	Tokens     int       `json:"tokens"`
	CreatedAt  time.Time `json:"created_at"`
}
