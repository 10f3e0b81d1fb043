// Package eval - Streaming-Evaluation mit Cache-Interpolation
//
// Dieses Modul enthält:
// - New: baut Evaluator samt Cache aus einer Konfiguration
// - Run: treibt das Modell blockweise und akkumuliert die Perplexitaet
//
// Der Evaluator laeuft Idle -> Running -> Done. Pro Block ruft er das
// Modell genau einmal und reicht dessen opaken Zustand zum naechsten
// Block weiter (abgeschnittene Historie, der Zustand wird nie
// zurueckgesetzt). Innerhalb eines Blocks sind die Zeitschritte strikt
// sequenziell: der Cache-Zustand von Schritt t+1 haengt vom Insert in
// Schritt t ab.
package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/seqcache/seqcache/api"
	"github.com/seqcache/seqcache/cache"
	"github.com/seqcache/seqcache/data"
	"github.com/seqcache/seqcache/model"
)

// ErrAlreadyRun - Run ist eine Einmal-Operation pro Evaluator
var ErrAlreadyRun = errors.New("eval: evaluator has already run")

type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseDone
)

// Evaluator besitzt fuer die Dauer einer Sitzung den Cache exklusiv
// sowie die laufende Verlust-Statistik. Er haelt keinen weiteren
// nach aussen sichtbaren Zustand.
type Evaluator struct {
	cfg    api.Config
	policy cache.Policy
	cache  *cache.Cache
	model  model.Stepper
	loss   LossStat
	phase  phase
}

// New baut einen Evaluator. Die Konfiguration wird sofort geprueft;
// KeyDim und VocabSize muessen zum Modell passen, sonst entsteht
// kein Evaluator.
func New(cfg api.Config, stepper model.Stepper) (*Evaluator, error) {
	if cfg.KeyDim == 0 {
		cfg.KeyDim = stepper.KeyDim()
	}
	if cfg.VocabSize == 0 {
		cfg.VocabSize = stepper.VocabSize()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.KeyDim != stepper.KeyDim() {
		return nil, fmt.Errorf("%w: key_dim %d does not match model hidden size %d",
			api.ErrInvalidConfig, cfg.KeyDim, stepper.KeyDim())
	}
	if cfg.VocabSize != stepper.VocabSize() {
		return nil, fmt.Errorf("%w: vocab_size %d does not match model vocab %d",
			api.ErrInvalidConfig, cfg.VocabSize, stepper.VocabSize())
	}

	mode, err := cache.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.Capacity, cfg.KeyDim, cfg.VocabSize, cfg.Lanes)
	if err != nil {
		return nil, err
	}

	return &Evaluator{
		cfg:    cfg,
		policy: cache.Policy{Mode: mode, Alpha: cfg.Alpha, Theta: cfg.Theta},
		cache:  c,
		model:  stepper,
	}, nil
}

// Tokens gibt die Anzahl der bisher bewerteten Token zurueck
func (e *Evaluator) Tokens() int { return e.loss.Tokens() }

// Perplexity gibt die reduzierte Statistik zurueck; gueltig nach Run
func (e *Evaluator) Perplexity() float64 { return e.loss.Perplexity() }

// Run bewertet alle Bloecke und gibt die Perplexitaet zurueck.
// Pro Zeitschritt: Cache-Query mit dem Hidden-Vektor, Interpolation,
// NLL des wahren Ziels, dann Insert von (Hidden-Vektor, wahres Ziel).
// Gecacht wird immer das Ground-Truth-Symbol, nie die eigene
// Vorhersage - der Cache ist ein Orakel-Gedaechtnis des juengsten
// wahren Kontexts.
func (e *Evaluator) Run(ctx context.Context, chunks []data.Chunk) (float64, error) {
	if e.phase != phaseIdle {
		return 0, ErrAlreadyRun
	}
	e.phase = phaseRunning

	lanes, vocab, keyDim := e.cfg.Lanes, e.cfg.VocabSize, e.cfg.KeyDim

	var state model.State
	for ci, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if chunk.Lanes != lanes {
			return 0, fmt.Errorf("eval: chunk %d has %d lanes, configured %d", ci, chunk.Lanes, lanes)
		}

		var hidden, logits []float64
		var err error
		hidden, logits, state, err = e.model.Step(chunk.Input, chunk.Time, lanes, state)
		if err != nil {
			return 0, fmt.Errorf("model step: %w", err)
		}

		for t := 0; t < chunk.Time; t++ {
			hiddenStep := hidden[t*lanes*keyDim : (t+1)*lanes*keyDim]
			logitsStep := logits[t*lanes*vocab : (t+1)*lanes*vocab]
			targetStep := chunk.Target[t*lanes : (t+1)*lanes]

			// Nur nach dem ersten Insert interpolieren; vorher ist
			// die Ausgabe exakt softmax(logits)
			var res *cache.Result
			if e.cache.Stored() > 0 {
				if res, err = e.cache.Query(hiddenStep); err != nil {
					return 0, err
				}
			}

			probs := e.policy.Blend(logitsStep, res, lanes, vocab)

			var nll float64
			for lane := 0; lane < lanes; lane++ {
				// Additiver Floor vor dem Logarithmus: ein Ziel ohne
				// Masse unter beiden Verteilungen darf keinen
				// -Inf-Verlust erzeugen
				nll -= math.Log(probs[lane*vocab+int(targetStep[lane])] + cache.ProbFloor)
			}
			e.loss.Add(nll, lanes)

			if err := e.cache.Insert(hiddenStep, targetStep); err != nil {
				return 0, err
			}
		}

		slog.Debug("chunk evaluated", "chunk", ci, "steps", chunk.Time, "tokens", e.loss.Tokens())
	}

	e.phase = phaseDone
	return e.loss.Perplexity(), nil
}
