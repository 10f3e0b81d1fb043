// grid.go - Grid-Suche ueber (theta, alpha)
// Enthält: SweepResult, Sweep
//
// Theta laeuft ueber [0,1) in Schritten von 0.1, Alpha ueber [0,0.5)
// in Schritten von 0.01; pro Kombination entsteht eine Ergebniszeile.
// Jede Kombination bekommt ihren eigenen Cache und Evaluator, da
// Lanes nicht intern synchronisiert sind; nur deshalb duerfen die
// Kombinationen parallel laufen.

package eval

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seqcache/seqcache/api"
	"github.com/seqcache/seqcache/data"
	"github.com/seqcache/seqcache/envconfig"
	"github.com/seqcache/seqcache/model"
)

// Schrittweiten der Suche
const (
	sweepThetaSteps = 10 // theta in [0,1) Schritt 0.1
	sweepAlphaSteps = 50 // alpha in [0,0.5) Schritt 0.01
)

// SweepResult ist eine Zeile der Ergebnis-Tabelle
type SweepResult struct {
	Theta      float64 `json:"theta"`
	Alpha      float64 `json:"alpha"`
	Perplexity float64 `json:"perplexity"`
	Tokens     int     `json:"tokens"`
}

// Sweep bewertet alle (theta, alpha)-Kombinationen ueber denselben
// Bloecken und demselben Modell. stepper muss nebenlaeufige
// Step-Aufrufe vertragen (das mitgelieferte RNN liest seine Gewichte
// nur); die Bloecke werden ausschliesslich gelesen. Die Ergebnisse
// kommen in fester Reihenfolge zurueck: theta aussen, alpha innen.
func Sweep(ctx context.Context, cfg api.Config, stepper model.Stepper, chunks []data.Chunk) ([]SweepResult, error) {
	results := make([]SweepResult, sweepThetaSteps*sweepAlphaSteps)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(envconfig.SweepWorkers())

	for i := 0; i < sweepThetaSteps; i++ {
		for j := 0; j < sweepAlphaSteps; j++ {
			combo := cfg
			combo.Theta = float64(i) / 10
			combo.Alpha = float64(j) / 100
			idx := i*sweepAlphaSteps + j

			g.Go(func() error {
				ev, err := New(combo, stepper)
				if err != nil {
					return err
				}

				ppl, err := ev.Run(ctx, chunks)
				if err != nil {
					return err
				}

				results[idx] = SweepResult{
					Theta:      combo.Theta,
					Alpha:      combo.Alpha,
					Perplexity: ppl,
					Tokens:     ev.Tokens(),
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
