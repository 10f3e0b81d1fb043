// rnn.go - Mitgeliefertes Elman-RNN als Referenzmodell
// Enthält: RNN, NewRNN, Step
//
// Ein kleines deterministisches rekurrentes Netz, das [Stepper]
// implementiert: Embedding-Lookup, tanh-Rekurrenz und lineare
// Projektion in den Vokabular-Raum. Es wird nicht trainiert und
// dient CLI, Server und Tests als selbststaendiges Modell; ein
// echtes Modell haengt sich ueber dieselbe Schnittstelle ein.

package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RNN ist ein Elman-Netz mit fester, seed-deterministischer
// Initialisierung: h_t = tanh(U*emb(x_t) + W*h_{t-1} + b),
// logits = V*h_t.
type RNN struct {
	hidDim    int
	vocabSize int

	embed *mat.Dense // vocabSize x hidDim
	u     *mat.Dense // hidDim x hidDim
	w     *mat.Dense // hidDim x hidDim
	v     *mat.Dense // vocabSize x hidDim
	bias  []float64  // hidDim
}

// rnnState ist der rekurrente Zustand: ein Hidden-Vektor pro Lane,
// flach lanes*hidDim. Fuer den Aufrufer opak.
type rnnState struct {
	hidden []float64
	lanes  int
}

// NewRNN erstellt ein RNN mit deterministischen Zufallsgewichten
func NewRNN(vocabSize, hidDim int, seed int64) (*RNN, error) {
	if vocabSize <= 0 || hidDim <= 0 {
		return nil, fmt.Errorf("model: vocab size (%d) and hidden dim (%d) must be > 0", vocabSize, hidDim)
	}

	rng := rand.New(rand.NewSource(seed))
	scale := 1 / math.Sqrt(float64(hidDim))
	randDense := func(r, c int) *mat.Dense {
		d := mat.NewDense(r, c, nil)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				d.Set(i, j, (2*rng.Float64()-1)*scale)
			}
		}
		return d
	}

	m := &RNN{
		hidDim:    hidDim,
		vocabSize: vocabSize,
		embed:     randDense(vocabSize, hidDim),
		u:         randDense(hidDim, hidDim),
		w:         randDense(hidDim, hidDim),
		v:         randDense(vocabSize, hidDim),
		bias:      make([]float64, hidDim),
	}

	return m, nil
}

func (m *RNN) KeyDim() int    { return m.hidDim }
func (m *RNN) VocabSize() int { return m.vocabSize }

// Step implementiert [Stepper]. Symbole ausserhalb des Vokabulars
// sind ein Fehler des Aufrufers und werden zurueckgewiesen.
func (m *RNN) Step(input []int32, time, lanes int, state State) (hidden, logits []float64, next State, err error) {
	if len(input) != time*lanes {
		return nil, nil, nil, fmt.Errorf("model: input has length %d, want %d (%d steps x %d lanes)",
			len(input), time*lanes, time, lanes)
	}

	st, ok := state.(*rnnState)
	if state == nil {
		st = &rnnState{hidden: make([]float64, lanes*m.hidDim), lanes: lanes}
	} else if !ok {
		return nil, nil, nil, fmt.Errorf("model: foreign state of type %T", state)
	} else if st.lanes != lanes {
		return nil, nil, nil, fmt.Errorf("model: state carries %d lanes, batch has %d", st.lanes, lanes)
	}

	// Zustand kopieren statt in place fortschreiben, damit der
	// uebergebene Zustand unveraendert bleibt
	carry := make([]float64, len(st.hidden))
	copy(carry, st.hidden)

	hidden = make([]float64, time*lanes*m.hidDim)
	logits = make([]float64, time*lanes*m.vocabSize)

	pre := mat.NewVecDense(m.hidDim, nil)
	rec := mat.NewVecDense(m.hidDim, nil)
	out := mat.NewVecDense(m.vocabSize, nil)

	for t := 0; t < time; t++ {
		for lane := 0; lane < lanes; lane++ {
			sym := input[t*lanes+lane]
			if sym < 0 || int(sym) >= m.vocabSize {
				return nil, nil, nil, fmt.Errorf("model: symbol %d out of range [0,%d)", sym, m.vocabSize)
			}

			emb := m.embed.RowView(int(sym))
			prev := mat.NewVecDense(m.hidDim, carry[lane*m.hidDim:(lane+1)*m.hidDim])

			pre.MulVec(m.u, emb)
			rec.MulVec(m.w, prev)

			h := hidden[(t*lanes+lane)*m.hidDim : (t*lanes+lane+1)*m.hidDim]
			for i := 0; i < m.hidDim; i++ {
				h[i] = math.Tanh(pre.AtVec(i) + rec.AtVec(i) + m.bias[i])
			}
			copy(carry[lane*m.hidDim:(lane+1)*m.hidDim], h)

			out.MulVec(m.v, mat.NewVecDense(m.hidDim, h))
			copy(logits[(t*lanes+lane)*m.vocabSize:(t*lanes+lane+1)*m.vocabSize], out.RawVector().Data)
		}
	}

	return hidden, logits, &rnnState{hidden: carry, lanes: lanes}, nil
}
