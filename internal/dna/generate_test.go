package dna

import (
	"strings"
	"testing"
)

func TestGenerateRealistic_Structure(t *testing.T) {
	g := NewSeededGenerator(1)

	for _, target := range []int{9, 30, 60, 100, 301} {
		seq := g.GenerateRealistic(target)

		if len(seq)%3 != 0 {
			t.Errorf("target %d: length %d not a multiple of 3", target, len(seq))
		}
		if len(seq) < 9 {
			t.Errorf("target %d: length %d below minimum 9", target, len(seq))
		}
		if !strings.HasPrefix(seq, StartCodon) {
			t.Errorf("target %d: sequence does not start with ATG: %s", target, seq[:3])
		}
		last := seq[len(seq)-3:]
		if !IsStopCodon(last) {
			t.Errorf("target %d: sequence does not end with a stop codon: %s", target, last)
		}
		for _, c := range seq {
			if !strings.ContainsRune("ATGC", c) {
				t.Errorf("target %d: invalid symbol %q", target, c)
			}
		}
	}
}

func TestGenerateRealistic_NoInteriorStops(t *testing.T) {
	g := NewSeededGenerator(2)
	seq := g.GenerateRealistic(300)
	codons := Codons(seq)
	for i, codon := range codons[:len(codons)-1] {
		if i == 0 {
			continue
		}
		if IsStopCodon(codon) {
			t.Errorf("stop codon %s at interior position %d", codon, i)
		}
	}
}

func TestGenerateRealistic_TinyTargets(t *testing.T) {
	g := NewSeededGenerator(3)
	// Anything below 9 still yields start + one codon + stop.
	for _, target := range []int{0, 1, 5, 8} {
		seq := g.GenerateRealistic(target)
		if len(seq) != 9 {
			t.Errorf("target %d: expected length 9, got %d", target, len(seq))
		}
	}
}

func TestGenerateRealistic_IntermediateCount(t *testing.T) {
	g := NewSeededGenerator(4)
	// 30 requested → floor(30/3)-2 = 8 intermediates → 10 codons → 30 bases.
	seq := g.GenerateRealistic(30)
	if len(seq) != 30 {
		t.Errorf("expected exactly 30 bases, got %d", len(seq))
	}
}

func TestGenerateRealistic_Variety(t *testing.T) {
	g := NewSeededGenerator(5)
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		seen[g.GenerateRealistic(60)] = true
	}
	if len(seen) < 2 {
		t.Error("expected run-to-run variety in generated sequences")
	}
}

func TestGenerateUniformRandom(t *testing.T) {
	g := NewSeededGenerator(6)
	seq := g.GenerateUniformRandom(4000)

	if len(seq) != 4000 {
		t.Fatalf("expected length 4000, got %d", len(seq))
	}
	counts := map[rune]int{}
	for _, c := range seq {
		if !strings.ContainsRune("ATGC", c) {
			t.Fatalf("invalid symbol %q", c)
		}
		counts[c]++
	}
	// Each base should land near 1000; a wide tolerance keeps this stable.
	for base, n := range counts {
		if n < 800 || n > 1200 {
			t.Errorf("base %c count %d far from uniform", base, n)
		}
	}
}

func TestGenerateRealistic_AnalyzerRoundTrip(t *testing.T) {
	g := NewSeededGenerator(7)
	seq := g.GenerateRealistic(120)
	if _, err := Validate(seq); err != nil {
		t.Fatalf("generated sequence failed validation: %v", err)
	}
	a := Analyze(seq)
	if a.Tempo < 60 || a.Tempo > 80 {
		t.Errorf("tempo %d outside the 60-80 range", a.Tempo)
	}
	switch a.Mode {
	case ModeDorian, ModeAeolian, ModeLydian:
	default:
		t.Errorf("unexpected mode %s", a.Mode)
	}
}
