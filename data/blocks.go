// blocks.go - Partitionierung des Token-Stroms in Bloecke
// Enthält: Chunk, NewBlocks, Chunks
//
// Der flache Token-Strom wird spaltenweise auf lanes unabhaengige
// Teilstroeme verteilt und dann in Zeitfenster von hoechstens bptt
// Schritten geschnitten. Ziel-Symbole sind die um einen Schritt
// verschobenen Eingaben. Der letzte Block darf kuerzer sein.

package data

import "fmt"

// Chunk ist ein (Eingabe, Ziel)-Paar gleicher Form. Input und Target
// sind flach Time*Lanes indiziert: Wert des Zeitschritts t in Lane l
// liegt bei t*Lanes+l.
type Chunk struct {
	Input  []int32
	Target []int32
	Time   int
	Lanes  int
}

// Blocks haelt die fertig geschnittenen Bloecke eines Korpus.
// Die Chunks sind nach dem Aufbau unveraenderlich und koennen von
// mehreren Evaluations-Laeufen gleichzeitig gelesen werden.
type Blocks struct {
	chunks []Chunk
}

// NewBlocks partitioniert stream in lanes Teilstroeme und schneidet
// sie in Bloecke von hoechstens bptt Zeitschritten. Der Strom muss
// mindestens 2*lanes Token enthalten, damit jede Lane wenigstens ein
// (Eingabe, Ziel)-Paar bekommt; ueberzaehlige Token am Ende werden
// verworfen.
func NewBlocks(stream []int32, lanes, bptt int) (*Blocks, error) {
	if lanes <= 0 || bptt <= 0 {
		return nil, fmt.Errorf("data: lanes (%d) and bptt (%d) must be > 0", lanes, bptt)
	}

	perLane := len(stream) / lanes
	if perLane < 2 {
		return nil, fmt.Errorf("data: stream of %d tokens too short for %d lanes", len(stream), lanes)
	}

	// Spaltenweise Aufteilung: Lane l liest stream[l*perLane:(l+1)*perLane].
	// perLane-1 Schritte haben ein Ziel.
	steps := perLane - 1

	var b Blocks
	for t0 := 0; t0 < steps; t0 += bptt {
		time := min(bptt, steps-t0)

		chunk := Chunk{
			Input:  make([]int32, time*lanes),
			Target: make([]int32, time*lanes),
			Time:   time,
			Lanes:  lanes,
		}

		for t := 0; t < time; t++ {
			for lane := 0; lane < lanes; lane++ {
				off := lane*perLane + t0 + t
				chunk.Input[t*lanes+lane] = stream[off]
				chunk.Target[t*lanes+lane] = stream[off+1]
			}
		}

		b.chunks = append(b.chunks, chunk)
	}

	return &b, nil
}

// Chunks gibt die Bloecke in Korpus-Reihenfolge zurueck
func (b *Blocks) Chunks() []Chunk {
	return b.chunks
}
