// vocab.go - Vokabular und Text-Verarbeitung
// Enthält: Vocab, Processor, LoadLines, Tokenize

package data

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Level bestimmt die Tokenisierungs-Ebene einer Zeile
type Level string

const (
	LevelWord Level = "word"
	LevelChar Level = "char"
)

// Processor normalisiert und zerlegt Eingabezeilen
type Processor struct {
	Level Level
	Lower bool
}

// Tokenize zerlegt eine Zeile gemaess Level und Lower
func (p Processor) Tokenize(line string) []string {
	if p.Lower {
		line = strings.ToLower(line)
	}

	switch p.Level {
	case LevelChar:
		return strings.Split(line, "")
	default:
		return strings.Fields(line)
	}
}

// Vocab bildet Token auf Ids ab und zurueck. Nach dem Aufbau ist das
// Vokabular eingefroren; unbekannte Token erhalten die Unknown-Id 0.
type Vocab struct {
	tokens []string
	ids    map[string]int32
	frozen bool
}

// UnknownToken belegt immer Id 0
const UnknownToken = "<unk>"

// NewVocab erstellt ein leeres Vokabular mit dem Unknown-Token
func NewVocab() *Vocab {
	v := &Vocab{ids: make(map[string]int32)}
	v.Add(UnknownToken)
	return v
}

// Add nimmt ein Token ins Vokabular auf und gibt seine Id zurueck
func (v *Vocab) Add(tok string) int32 {
	if id, ok := v.ids[tok]; ok {
		return id
	}
	if v.frozen {
		return 0
	}

	id := int32(len(v.tokens))
	v.tokens = append(v.tokens, tok)
	v.ids[tok] = id
	return id
}

// Freeze friert das Vokabular ein; weitere Token werden zu Unknown
func (v *Vocab) Freeze() { v.frozen = true }

// Len gibt die Groesse des Vokabulars zurueck
func (v *Vocab) Len() int { return len(v.tokens) }

// ID gibt die Id eines Tokens zurueck, 0 fuer unbekannte Token
func (v *Vocab) ID(tok string) int32 {
	if id, ok := v.ids[tok]; ok {
		return id
	}
	return 0
}

// Token gibt das Token zu einer Id zurueck
func (v *Vocab) Token(id int32) (string, error) {
	if id < 0 || int(id) >= len(v.tokens) {
		return "", fmt.Errorf("data: token id %d out of range [0,%d)", id, len(v.tokens))
	}
	return v.tokens[id], nil
}

// LoadLines liest eine Textdatei, tokenisiert sie zeilenweise und
// baut dabei das Vokabular auf. Rueckgabe ist der flache Token-Strom
// in Dateireihenfolge.
func LoadLines(path string, proc Processor, vocab *Vocab) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var stream []int32
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		for _, tok := range proc.Tokenize(scanner.Text()) {
			stream = append(stream, vocab.Add(tok))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}

	return stream, nil
}
