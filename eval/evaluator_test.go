// evaluator_test.go - Unit Tests fuer den Streaming-Evaluator
package eval

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqcache/seqcache/api"
	"github.com/seqcache/seqcache/data"
	"github.com/seqcache/seqcache/model"
)

// stubStepper liefert uniforme Logits und konstante Hidden-Vektoren;
// damit ist die Basis-Verteilung exakt 1/vocab
type stubStepper struct {
	keyDim int
	vocab  int
}

func (s stubStepper) KeyDim() int    { return s.keyDim }
func (s stubStepper) VocabSize() int { return s.vocab }

func (s stubStepper) Step(input []int32, time, lanes int, st model.State) ([]float64, []float64, model.State, error) {
	hidden := make([]float64, time*lanes*s.keyDim)
	for i := range hidden {
		hidden[i] = 1
	}
	return hidden, make([]float64, time*lanes*s.vocab), st, nil
}

func testConfig(vocab int) api.Config {
	return api.Config{
		Capacity:  8,
		KeyDim:    2,
		VocabSize: vocab,
		Alpha:     0,
		Theta:     0.5,
		Mode:      api.ModeLinear,
		Lanes:     2,
		BPTT:      4,
	}
}

func testChunks(t *testing.T, stream []int32, lanes, bptt int) []data.Chunk {
	t.Helper()
	b, err := data.NewBlocks(stream, lanes, bptt)
	require.NoError(t, err)
	return b.Chunks()
}

// TestRunUniformBaseline testet die Baseline ohne Cache-Gewicht:
// uniforme Logits ergeben Perplexitaet = Vokabular-Groesse
func TestRunUniformBaseline(t *testing.T) {
	const vocab = 10

	stream := make([]int32, 40)
	for i := range stream {
		stream[i] = int32(i % vocab)
	}

	ev, err := New(testConfig(vocab), stubStepper{keyDim: 2, vocab: vocab})
	require.NoError(t, err)

	ppl, err := ev.Run(context.Background(), testChunks(t, stream, 2, 4))
	require.NoError(t, err)

	assert.InDelta(t, float64(vocab), ppl, 1e-3)
	assert.Equal(t, 38, ev.Tokens()) // 2 Lanes x 19 Schritte
}

// TestRunCacheHelpsRepeatedTargets testet den Kern-Effekt: bei sich
// wiederholenden Zielen drueckt die Cache-Evidenz die Perplexitaet
// deutlich unter die Uniform-Baseline
func TestRunCacheHelpsRepeatedTargets(t *testing.T) {
	const vocab = 10

	// Alle Ziele sind Symbol 3
	stream := make([]int32, 40)
	for i := range stream {
		stream[i] = 3
	}

	for _, mode := range []string{api.ModeLinear, api.ModeGlobal} {
		t.Run(mode, func(t *testing.T) {
			cfg := testConfig(vocab)
			cfg.Mode = mode
			cfg.Alpha = 0.3
			cfg.Theta = 0.5

			ev, err := New(cfg, stubStepper{keyDim: 2, vocab: vocab})
			require.NoError(t, err)

			ppl, err := ev.Run(context.Background(), testChunks(t, stream, 2, 4))
			require.NoError(t, err)

			assert.Less(t, ppl, float64(vocab)/2)
			assert.Greater(t, ppl, 1.0)
		})
	}
}

// TestRunOnce testet, dass Run eine Einmal-Operation ist
func TestRunOnce(t *testing.T) {
	const vocab = 5

	stream := make([]int32, 20)
	ev, err := New(testConfig(vocab), stubStepper{keyDim: 2, vocab: vocab})
	require.NoError(t, err)

	chunks := testChunks(t, stream, 2, 4)
	_, err = ev.Run(context.Background(), chunks)
	require.NoError(t, err)

	_, err = ev.Run(context.Background(), chunks)
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

// TestRunCancelled testet den Abbruch ueber den Context
func TestRunCancelled(t *testing.T) {
	const vocab = 5

	ev, err := New(testConfig(vocab), stubStepper{keyDim: 2, vocab: vocab})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ev.Run(ctx, testChunks(t, make([]int32, 20), 2, 4))
	assert.ErrorIs(t, err, context.Canceled)
}

// TestNewMismatch testet die Ablehnung unpassender Konfigurationen
func TestNewMismatch(t *testing.T) {
	stepper := stubStepper{keyDim: 2, vocab: 5}

	cfg := testConfig(5)
	cfg.KeyDim = 3
	_, err := New(cfg, stepper)
	assert.ErrorIs(t, err, api.ErrInvalidConfig)

	cfg = testConfig(7) // Modell hat vocab 5
	_, err = New(cfg, stepper)
	assert.ErrorIs(t, err, api.ErrInvalidConfig)

	cfg = testConfig(5)
	cfg.Mode = "blend"
	_, err = New(cfg, stepper)
	assert.Error(t, err)
}

// TestNewInheritsModelDims testet das Uebernehmen von KeyDim und
// VocabSize aus dem Modell
func TestNewInheritsModelDims(t *testing.T) {
	cfg := testConfig(5)
	cfg.KeyDim = 0
	cfg.VocabSize = 0

	ev, err := New(cfg, stubStepper{keyDim: 2, vocab: 5})
	require.NoError(t, err)
	require.NotNil(t, ev)
}

// TestLossStat testet die Reduktion der Verlust-Statistik
func TestLossStat(t *testing.T) {
	var l LossStat
	assert.True(t, math.IsNaN(l.Perplexity()))

	l.Add(math.Log(4)*3, 3)
	assert.InDelta(t, 4.0, l.Perplexity(), 1e-12)
	assert.Equal(t, 3, l.Tokens())
}
