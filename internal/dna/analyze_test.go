package dna

import (
	"reflect"
	"strings"
	"testing"
)

func TestAnalyze_Deterministic(t *testing.T) {
	seq := Clean("ATGGCGTACCTTAAGGCATGCATTAGC")
	first := Analyze(seq)
	second := Analyze(seq)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Analyze is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyze_BaseCounts(t *testing.T) {
	seq := strings.Repeat("A", 5) + strings.Repeat("T", 6) + strings.Repeat("G", 4) + strings.Repeat("C", 5)
	a := Analyze(seq)

	want := map[string]int{"A": 5, "T": 6, "G": 4, "C": 5}
	if !reflect.DeepEqual(a.BaseCounts, want) {
		t.Errorf("base counts = %v, want %v", a.BaseCounts, want)
	}

	sum := 0
	for _, n := range a.BaseCounts {
		sum += n
	}
	if sum != a.Length {
		t.Errorf("base counts sum to %d, length is %d", sum, a.Length)
	}
}

func TestAnalyze_ModeThresholds(t *testing.T) {
	// 20-base sequences with exact GC percentages.
	gcSeq := func(gcBases int) string {
		return strings.Repeat("G", gcBases) + strings.Repeat("A", 20-gcBases)
	}

	tests := []struct {
		name string
		seq  string
		want MusicalMode
	}{
		{"0% GC", gcSeq(0), ModeDorian},
		{"35% GC", gcSeq(7), ModeDorian},
		{"exactly 40% GC", gcSeq(8), ModeAeolian},
		{"50% GC", gcSeq(10), ModeAeolian},
		{"exactly 60% GC", gcSeq(12), ModeAeolian},
		{"65% GC", gcSeq(13), ModeLydian},
		{"100% GC", gcSeq(20), ModeLydian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Analyze(tt.seq).Mode; got != tt.want {
				t.Errorf("mode = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTempoFor(t *testing.T) {
	tests := []struct {
		gc   float64
		want int
	}{
		{0, 60},
		{50, 70},
		{100, 80},
		{25, 65},
		{75, 75},
	}
	for _, tt := range tests {
		if got := TempoFor(tt.gc); got != tt.want {
			t.Errorf("TempoFor(%.0f) = %d, want %d", tt.gc, got, tt.want)
		}
	}
}

func TestAnalyze_Tempo(t *testing.T) {
	// 50% GC → 70 BPM.
	seq := strings.Repeat("GA", 10)
	if got := Analyze(seq).Tempo; got != 70 {
		t.Errorf("tempo = %d, want 70", got)
	}
}

func TestAnalyze_RootKey(t *testing.T) {
	// All-GC: AT/GC ratio 0 → B. All-AT: gcCount 0 → ratio defaults to 1.5 → F.
	if got := Analyze(strings.Repeat("GC", 10)).Key; got != "B" {
		t.Errorf("all-GC key = %s, want B", got)
	}
	if got := Analyze(strings.Repeat("AT", 10)).Key; got != "F" {
		t.Errorf("all-AT key = %s, want F", got)
	}
	// Equal split: ratio 1.0 → D.
	if got := Analyze(strings.Repeat("AG", 10)).Key; got != "D" {
		t.Errorf("balanced key = %s, want D", got)
	}
}

func TestAnalyze_GCPercentDisplay(t *testing.T) {
	// 7 GC in 21 bases = 33.333...% → one decimal.
	seq := strings.Repeat("GAA", 7)
	if got := Analyze(seq).GCPercent; got != 33.3 {
		t.Errorf("gc percent = %v, want 33.3", got)
	}
}

func TestAnalyze_Motifs(t *testing.T) {
	// ATGCCA repeated three times: the 6-base motif must be found.
	seq := strings.Repeat("ATGCCA", 3) + "GG"
	a := Analyze(seq)
	if a.MotifCount == 0 {
		t.Fatal("expected at least one motif")
	}
	found := false
	for _, m := range a.Motifs {
		if m.Pattern == "ATGCCA" && m.Count == 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected motif ATGCCA x3 in %+v", a.Motifs)
	}
}

func TestAnalyze_PuPyRatio(t *testing.T) {
	// 10 purines (A,G), 10 pyrimidines (T,C) → 1.0.
	seq := strings.Repeat("AGTC", 5)
	if got := Analyze(seq).PuPyRatio; got != 1.0 {
		t.Errorf("pu/py ratio = %v, want 1.0", got)
	}
}
