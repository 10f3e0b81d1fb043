// interpolate.go - Interpolation von Basis- und Cache-Verteilung
//
// Dieses Modul enthaelt:
// - Mode/ParseMode: die beiden waehlbaren Interpolations-Modi
// - Policy.Blend: mischt Basis-Logits mit Cache-Evidenz
// - Softmax: numerisch stabile Softmax pro Zeile
//
// Die beiden Modi bleiben getrennte Codepfade: linear mischt zwei
// getrennt normalisierte Verteilungen, global verschiebt die Logits
// vor der einzigen Softmax. Die Reihenfolge von Subtraktion und
// Normalisierung unterscheidet sich und damit die Ergebnisse.
package cache

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ProbFloor wird vor jedem Logarithmus einer finalen
// Wahrscheinlichkeit addiert, damit ein Ziel ohne Masse unter beiden
// Verteilungen keinen -Inf-Verlust erzeugt.
const ProbFloor = 1e-8

// Mode waehlt die Interpolations-Regel. Einmal pro Lauf gesetzt.
type Mode int

const (
	// ModeLinear mischt (1-alpha)*softmax(logits) mit
	// alpha*softmax(theta*scores), per Scatter-Add an den
	// gecachten Symbol-Positionen.
	ModeLinear Mode = iota

	// ModeGlobal addiert theta*scores+alpha auf die Logits an den
	// gecachten Symbol-Positionen und normalisiert danach einmal.
	ModeGlobal
)

func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "linear"
	case ModeGlobal:
		return "global"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode uebersetzt den Konfigurations-String in einen Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "linear":
		return ModeLinear, nil
	case "global":
		return ModeGlobal, nil
	}
	return 0, fmt.Errorf("cache: unknown interpolation mode %q", s)
}

// Policy kombiniert Basis- und Cache-Verteilung. Alpha ist das
// Gesamtgewicht des Caches in [0,1]; Theta schaerft (>1) oder
// glaettet (<1) die Score-Verteilung vor der Normalisierung.
type Policy struct {
	Mode  Mode
	Alpha float64
	Theta float64
}

// Blend baut aus den Basis-Logits (flach lanes*vocabSize, werden in
// place verbraucht) und dem Query-Ergebnis die finale Verteilung pro
// Lane. Der Rueckgabewert ist derselbe Slice wie logits.
//
// Haelt der Cache noch keine Eintraege (res nil oder Width 0), ist
// das Ergebnis exakt softmax(logits) - der erste Schritt ist eine
// normalisierte Randbedingung, keine Optimierung.
func (p Policy) Blend(logits []float64, res *Result, lanes, vocabSize int) []float64 {
	if res == nil || res.Width == 0 {
		Softmax(logits, lanes, vocabSize)
		return logits
	}

	switch p.Mode {
	case ModeLinear:
		// cache_prob = alpha * softmax(theta * scores)
		cacheProb := make([]float64, len(res.Scores))
		floats.AddScaled(cacheProb, p.Theta, res.Scores)
		Softmax(cacheProb, lanes, res.Width)
		floats.Scale(p.Alpha, cacheProb)

		// prob = (1 - alpha) * softmax(logits), dann Scatter-Add
		Softmax(logits, lanes, vocabSize)
		floats.Scale(1-p.Alpha, logits)
		ScatterAdd(logits, vocabSize, res.Symbols, cacheProb, lanes, res.Width)

	case ModeGlobal:
		// logits += theta * scores + alpha an den Symbol-Positionen,
		// danach eine einzige Softmax
		adjusted := make([]float64, len(res.Scores))
		floats.AddScaled(adjusted, p.Theta, res.Scores)
		floats.AddConst(p.Alpha, adjusted)
		ScatterAdd(logits, vocabSize, res.Symbols, adjusted, lanes, res.Width)
		Softmax(logits, lanes, vocabSize)
	}

	return logits
}

// Softmax normalisiert x zeilenweise in place (rows Zeilen zu je cols
// Werten). Das Zeilenmaximum wird vor der Exponentiation abgezogen.
func Softmax(x []float64, rows, cols int) {
	for r := 0; r < rows; r++ {
		row := x[r*cols : (r+1)*cols]

		maxv := floats.Max(row)
		for i, v := range row {
			row[i] = math.Exp(v - maxv)
		}
		floats.Scale(1/floats.Sum(row), row)
	}
}
