// data_test.go - Unit Tests fuer Vokabular und Block-Partitionierung
package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestVocab testet Aufbau, Lookup und Einfrieren des Vokabulars
func TestVocab(t *testing.T) {
	v := NewVocab()

	if got := v.ID(UnknownToken); got != 0 {
		t.Errorf("unknown token id = %d, want 0", got)
	}

	a := v.Add("a")
	b := v.Add("b")
	if a == b {
		t.Errorf("distinct tokens share id %d", a)
	}
	if got := v.Add("a"); got != a {
		t.Errorf("re-adding token changed id: %d != %d", got, a)
	}

	v.Freeze()
	if got := v.Add("c"); got != 0 {
		t.Errorf("frozen vocab assigned id %d to new token, want unknown (0)", got)
	}
	if got := v.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}

	tok, err := v.Token(b)
	if err != nil || tok != "b" {
		t.Errorf("Token(%d) = %q, %v; want \"b\"", b, tok, err)
	}
	if _, err := v.Token(99); err == nil {
		t.Error("Token(99) did not fail for out-of-range id")
	}
}

// TestProcessor testet die Tokenisierungs-Ebenen
func TestProcessor(t *testing.T) {
	tests := []struct {
		name string
		proc Processor
		line string
		want []string
	}{
		{"word level", Processor{Level: LevelWord}, "Hello cache world", []string{"Hello", "cache", "world"}},
		{"word level lower", Processor{Level: LevelWord, Lower: true}, "Hello World", []string{"hello", "world"}},
		{"char level", Processor{Level: LevelChar}, "abc", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.proc.Tokenize(tt.line)); diff != "" {
				t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestLoadLines testet das Einlesen eines Korpus samt Vokabular-Aufbau
func TestLoadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte("a b c\na b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	vocab := NewVocab()
	stream, err := LoadLines(path, Processor{Level: LevelWord}, vocab)
	if err != nil {
		t.Fatal(err)
	}

	// a=1, b=2, c=3 (0 ist <unk>)
	want := []int32{1, 2, 3, 1, 2}
	if diff := cmp.Diff(want, stream); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
	if vocab.Len() != 4 {
		t.Errorf("vocab size = %d, want 4", vocab.Len())
	}
}

// TestNewBlocks testet Aufteilung, Ziel-Verschiebung und den kurzen
// letzten Block
func TestNewBlocks(t *testing.T) {
	// 2 Lanes x 5 Token pro Lane: Lane 0 liest 0..4, Lane 1 liest 5..9
	stream := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	b, err := NewBlocks(stream, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	chunks := b.Chunks()
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	// Erster Block: volle 3 Zeitschritte
	want0 := Chunk{
		Input:  []int32{0, 5, 1, 6, 2, 7},
		Target: []int32{1, 6, 2, 7, 3, 8},
		Time:   3,
		Lanes:  2,
	}
	if diff := cmp.Diff(want0, chunks[0]); diff != "" {
		t.Errorf("chunk 0 mismatch (-want +got):\n%s", diff)
	}

	// Letzter Block: nur noch 1 Zeitschritt
	want1 := Chunk{
		Input:  []int32{3, 8},
		Target: []int32{4, 9},
		Time:   1,
		Lanes:  2,
	}
	if diff := cmp.Diff(want1, chunks[1]); diff != "" {
		t.Errorf("chunk 1 mismatch (-want +got):\n%s", diff)
	}
}

// TestNewBlocksErrors testet die Fehlerfaelle der Partitionierung
func TestNewBlocksErrors(t *testing.T) {
	if _, err := NewBlocks([]int32{1, 2, 3}, 2, 3); err == nil {
		t.Error("NewBlocks accepted stream too short for lanes")
	}
	if _, err := NewBlocks([]int32{1, 2, 3, 4}, 0, 3); err == nil {
		t.Error("NewBlocks accepted zero lanes")
	}
	if _, err := NewBlocks([]int32{1, 2, 3, 4}, 2, 0); err == nil {
		t.Error("NewBlocks accepted zero bptt")
	}
}
