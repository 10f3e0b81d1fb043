// scatter_test.go - Unit Tests fuer den Scatter-Add
package cache

import (
	"math"
	"math/rand"
	"testing"
)

// TestScatterAddAccumulates testet, dass mehrfache Vorkommen
// desselben Symbols additiv akkumulieren statt zu ueberschreiben
func TestScatterAddAccumulates(t *testing.T) {
	const vocab = 5

	dst := make([]float64, vocab)
	symbols := []int32{2, 4, 2}
	src := []float64{1.5, 1.0, 2.25}

	ScatterAdd(dst, vocab, symbols, src, 1, 3)

	if got, want := dst[2], 3.75; got != want {
		t.Errorf("dst[2] = %v, want %v (a+b, not max or overwrite)", got, want)
	}
	if got, want := dst[4], 1.0; got != want {
		t.Errorf("dst[4] = %v, want %v", got, want)
	}
}

// TestScatterAddLaneOffsets testet, dass Lanes sich nicht gegenseitig
// beeinflussen
func TestScatterAddLaneOffsets(t *testing.T) {
	const (
		vocab = 4
		lanes = 3
		width = 2
	)

	dst := make([]float64, lanes*vocab)
	symbols := []int32{0, 1, 1, 2, 3, 3}
	src := []float64{1, 2, 3, 4, 5, 6}

	ScatterAdd(dst, vocab, symbols, src, lanes, width)

	want := []float64{
		1, 2, 0, 0, // lane 0: sym 0 += 1, sym 1 += 2
		0, 3, 4, 0, // lane 1: sym 1 += 3, sym 2 += 4
		0, 0, 0, 11, // lane 2: sym 3 += 5+6
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

// TestScatterAddMatchesNaive validiert die abgeflachte Implementierung
// gegen die naive Referenz mit zufaelligen Eingaben
func TestScatterAddMatchesNaive(t *testing.T) {
	const (
		vocab = 17
		lanes = 4
		width = 9
	)

	rng := rand.New(rand.NewSource(42))

	flat := make([]float64, lanes*vocab)
	naive := make([][]float64, lanes)
	for lane := range naive {
		naive[lane] = make([]float64, vocab)
		for i := 0; i < vocab; i++ {
			v := rng.NormFloat64()
			flat[lane*vocab+i] = v
			naive[lane][i] = v
		}
	}

	symbols := make([]int32, lanes*width)
	src := make([]float64, lanes*width)
	for i := range symbols {
		symbols[i] = int32(rng.Intn(vocab))
		src[i] = rng.NormFloat64()
	}

	ScatterAdd(flat, vocab, symbols, src, lanes, width)
	scatterAddNaive(naive, symbols, src, lanes, width)

	for lane := 0; lane < lanes; lane++ {
		for i := 0; i < vocab; i++ {
			if math.Abs(flat[lane*vocab+i]-naive[lane][i]) > 1e-12 {
				t.Errorf("lane %d symbol %d: flattened %v != naive %v", lane, i, flat[lane*vocab+i], naive[lane][i])
			}
		}
	}
}
