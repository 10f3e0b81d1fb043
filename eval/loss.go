// loss.go - Laufende Verlust-Statistik
// Enthaelt: LossStat, Add, Perplexity
package eval

import "math"

// LossStat akkumuliert negative Log-Wahrscheinlichkeiten als
// (Summe, Anzahl)-Paar und reduziert sie zur Perplexitaet.
type LossStat struct {
	sum   float64
	count int
}

// Add nimmt die aufsummierte NLL von n Token auf
func (l *LossStat) Add(nll float64, n int) {
	l.sum += nll
	l.count += n
}

// Tokens gibt die Anzahl der gezaehlten Token zurueck
func (l *LossStat) Tokens() int { return l.count }

// Perplexity reduziert die Statistik zu exp(sum/count).
// Ohne gezaehlte Token ist das Ergebnis NaN.
func (l *LossStat) Perplexity() float64 {
	if l.count == 0 {
		return math.NaN()
	}
	return math.Exp(l.sum / float64(l.count))
}
