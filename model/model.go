// Package model - Modell-Schnittstelle der Evaluation
//
// Dieses Modul enthält:
// - State: opaker rekurrenter Zustand
// - Stepper: die Schnittstelle, hinter der das Sequenzmodell lebt
//
// Das eigentliche Sequenzmodell ist ein externer Kollaborateur. Die
// Evaluation konsumiert es ausschliesslich ueber Stepper und reicht
// den Zustand unveraendert von Block zu Block weiter; es gibt keinen
// versteckten globalen Zustand.
package model

// State ist der rekurrente Zustand des Modells. Er wird von Step
// zurueckgegeben und beim naechsten Aufruf unveraendert wieder
// uebergeben; der Aufrufer inspiziert ihn nie. Ein nil-State
// bezeichnet den Anfangszustand.
type State any

// Stepper treibt das Sequenzmodell blockweise.
type Stepper interface {
	// Step verarbeitet einen ganzen Block: input ist flach time*lanes
	// (Symbol des Zeitschritts t in Lane l bei t*lanes+l). Zurueck
	// kommen die Hidden-Vektoren (flach time*lanes*KeyDim), die
	// unnormalisierten Logits (flach time*lanes*VocabSize) und der
	// fortgeschriebene Zustand.
	Step(input []int32, time, lanes int, state State) (hidden, logits []float64, next State, err error)

	// KeyDim ist die Dimension der Hidden-Vektoren
	KeyDim() int

	// VocabSize ist die Groesse des Symbol-Raums
	VocabSize() int
}
