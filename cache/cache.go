// Package cache - Ringpuffer fuer (Hidden-Vektor, Symbol)-Paare
//
// Dieses Modul enthaelt:
// - New: Erstellt den Cache mit fester Kapazitaet pro Lane
// - Insert: Fuegt pro Lane genau einen Eintrag ein (FIFO-Ueberschreiben)
// - Query: Aehnlichkeitssuche (Skalarprodukt) ueber alle gueltigen Eintraege
// - Stored: Fuellstand fuer die Erst-Schritt-Pruefung
//
// Der gesamte Speicher wird einmal bei der Konstruktion allokiert und
// waechst danach nie: eine flache Arena fuer Keys (lanes*capacity*keyDim)
// und eine fuer Symbole (lanes*capacity), indiziert ueber (lane, slot).
package cache

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Cache ist ein assoziativer Ringpuffer mit unabhaengigen Lanes.
// Jede Lane haelt die juengsten capacity (Key, Symbol)-Paare ihrer
// Sequenz; Kontext darf nicht zwischen Lanes eines Batches lecken.
// Lanes sind nicht intern synchronisiert und nicht sicher fuer
// konkurrierende Inserts - eine Sitzung besitzt den Cache exklusiv.
type Cache struct {
	capacity  int
	keyDim    int
	vocabSize int
	lanes     int

	keys    []float64 // lanes * capacity * keyDim, flach
	symbols []int32   // lanes * capacity, flach

	// Pro Lane: naechster zu ueberschreibender Slot und Fuellstand.
	// Unter dem normalen Nutzungsmuster (ein Insert pro Lane pro
	// Zeitschritt) laufen alle Lanes im Gleichschritt.
	cursor []int
	filled []int
}

// Result ist das Ergebnis einer Query: pro Lane die unnormalisierten
// Scores und die positionsgleich zugehoerigen gespeicherten Symbole,
// beide flach als lanes*Width indiziert. Die Slices sind Kopien und
// veraendern den Cache-Zustand nie.
//
// Die Slot-Reihenfolge ist die Speicher-Reihenfolge des Rings ab
// Slot 0, nicht die zeitliche Reihenfolge. Scores[l*Width+i] und
// Symbols[l*Width+i] beziehen sich auf denselben historischen Slot.
type Result struct {
	Scores  []float64
	Symbols []int32
	Width   int
	Lanes   int
}

// New erstellt einen Cache fuer die gegebene Konfiguration.
// Alle Parameter muessen > 0 sein; es wird nie ein teilweiser
// Cache angelegt.
func New(capacity, keyDim, vocabSize, lanes int) (*Cache, error) {
	switch {
	case capacity <= 0:
		return nil, fmt.Errorf("cache: capacity must be > 0, got %d", capacity)
	case keyDim <= 0:
		return nil, fmt.Errorf("cache: key dimension must be > 0, got %d", keyDim)
	case vocabSize <= 0:
		return nil, fmt.Errorf("cache: vocab size must be > 0, got %d", vocabSize)
	case lanes <= 0:
		return nil, fmt.Errorf("cache: lanes must be > 0, got %d", lanes)
	}

	return &Cache{
		capacity:  capacity,
		keyDim:    keyDim,
		vocabSize: vocabSize,
		lanes:     lanes,
		keys:      make([]float64, lanes*capacity*keyDim),
		symbols:   make([]int32, lanes*capacity),
		cursor:    make([]int, lanes),
		filled:    make([]int, lanes),
	}, nil
}

func (c *Cache) Capacity() int  { return c.capacity }
func (c *Cache) KeyDim() int    { return c.keyDim }
func (c *Cache) VocabSize() int { return c.vocabSize }
func (c *Cache) Lanes() int     { return c.lanes }

// Stored gibt den Fuellstand von Lane 0 zurueck. Unter dem
// Gleichschritt-Nutzungsmuster (ein Insert pro Lane pro Zeitschritt)
// ist das der Fuellstand aller Lanes; das ist eine dokumentierte
// Voraussetzung des Aufrufers, keine interne Garantie.
func (c *Cache) Stored() int {
	return c.filled[0]
}

// keyAt gibt den Key-Vektor von (lane, slot) als Subslice der Arena zurueck
func (c *Cache) keyAt(lane, slot int) []float64 {
	off := (lane*c.capacity + slot) * c.keyDim
	return c.keys[off : off+c.keyDim]
}

// Insert fuegt pro Lane einen Eintrag am Schreib-Cursor ein und
// ueberschreibt dabei den jeweils aeltesten Eintrag (striktes FIFO,
// keine Recency-Befoerderung, kein Score-basiertes Behalten). Der
// Aufruf ist immer fuer alle Lanes auf einmal und nie teilweise.
//
// keys ist flach lanes*keyDim, symbols hat Laenge lanes. Symbole
// ausserhalb von [0, vocabSize) werden unveraendert gespeichert;
// die Validierung ist Sache des Aufrufers.
func (c *Cache) Insert(keys []float64, symbols []int32) error {
	if len(keys) != c.lanes*c.keyDim {
		return fmt.Errorf("cache: insert keys have length %d, want %d (%d lanes x %d dims)",
			len(keys), c.lanes*c.keyDim, c.lanes, c.keyDim)
	}
	if len(symbols) != c.lanes {
		return fmt.Errorf("cache: insert symbols have length %d, want %d lanes", len(symbols), c.lanes)
	}

	for lane := 0; lane < c.lanes; lane++ {
		slot := c.cursor[lane]
		copy(c.keyAt(lane, slot), keys[lane*c.keyDim:(lane+1)*c.keyDim])
		c.symbols[lane*c.capacity+slot] = symbols[lane]

		c.cursor[lane] = (slot + 1) % c.capacity
		c.filled[lane] = min(c.filled[lane]+1, c.capacity)
	}

	return nil
}

// Query berechnet fuer jede Lane das Skalarprodukt des Probe-Vektors
// mit jedem aktuell gueltigen gespeicherten Key und liefert Scores
// samt zugehoerigen Symbolen zurueck. probe ist flach lanes*keyDim.
//
// Bei leerem Cache ist das Ergebnis leer (Width == 0) und der
// Aufrufer muss die Interpolation fuer diesen Schritt ueberspringen.
// Query veraendert keinen Zustand; zwei Queries mit gleichem Probe
// ohne zwischenliegendes Insert liefern identische Ergebnisse.
func (c *Cache) Query(probe []float64) (*Result, error) {
	if len(probe) != c.lanes*c.keyDim {
		return nil, fmt.Errorf("cache: probe has length %d, want %d (%d lanes x %d dims)",
			len(probe), c.lanes*c.keyDim, c.lanes, c.keyDim)
	}

	width := c.filled[0]
	for lane := 1; lane < c.lanes; lane++ {
		width = min(width, c.filled[lane])
	}

	res := &Result{
		Scores:  make([]float64, c.lanes*width),
		Symbols: make([]int32, c.lanes*width),
		Width:   width,
		Lanes:   c.lanes,
	}

	for lane := 0; lane < c.lanes; lane++ {
		p := probe[lane*c.keyDim : (lane+1)*c.keyDim]
		for slot := 0; slot < width; slot++ {
			res.Scores[lane*width+slot] = floats.Dot(p, c.keyAt(lane, slot))
			res.Symbols[lane*width+slot] = c.symbols[lane*c.capacity+slot]
		}
	}

	return res, nil
}
