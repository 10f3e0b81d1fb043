// scatter.go - Batched Scatter-Add in den Vokabular-Raum
//
// Dieses Modul enthaelt:
// - ScatterAdd: akkumuliert Beitraege an Symbol-Positionen
// - scatterAddNaive: Referenz-Implementierung fuer die Tests
package cache

// ScatterAdd akkumuliert fuer jede Lane l und jeden Slot i den Beitrag
// src[l*width+i] an Position symbols[l*width+i] in dst (flach
// lanes*vocabSize). Zeigen mehrere Slots derselben Lane auf dasselbe
// Symbol - ein Token, das im Fenster mehrfach vorkommt - addieren sich
// ihre Beitraege; ein Symbol mit k Vorkommen erhaelt k-fache Evidenz.
//
// Der 2-D-Indexraum (lane, symbol) wird in einen 1-D-Offset
// lane*vocabSize+symbol abgeflacht, sodass nur ueber width iteriert
// wird und nie ueber vocabSize. Symbole ausserhalb von [0, vocabSize)
// sind eine Vorbedingung des Aufrufers und werden nicht geprueft.
func ScatterAdd(dst []float64, vocabSize int, symbols []int32, src []float64, lanes, width int) {
	for lane := 0; lane < lanes; lane++ {
		base := lane * vocabSize
		row := lane * width
		for i := 0; i < width; i++ {
			dst[base+int(symbols[row+i])] += src[row+i]
		}
	}
}

// scatterAddNaive ist die nicht abgeflachte Referenz: fuer jede Lane
// wird das Vokabular einzeln adressiert. Nur fuer den
// Aequivalenz-Test gegen ScatterAdd gedacht.
func scatterAddNaive(dst [][]float64, symbols []int32, src []float64, lanes, width int) {
	for lane := 0; lane < lanes; lane++ {
		for i := 0; i < width; i++ {
			dst[lane][symbols[lane*width+i]] += src[lane*width+i]
		}
	}
}
