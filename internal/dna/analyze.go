package dna

import (
	"math"
	"sort"
)

// MusicalMode is the scale flavour derived from GC content.
type MusicalMode string

const (
	ModeDorian  MusicalMode = "dorian"
	ModeAeolian MusicalMode = "aeolian"
	ModeLydian  MusicalMode = "lydian"
)

// Character returns the mood label shown alongside the mode.
func (m MusicalMode) Character() string {
	switch m {
	case ModeDorian:
		return "sophisticated"
	case ModeLydian:
		return "ethereal"
	default:
		return "reflective"
	}
}

// Intervals returns the mode's semitone offsets from the root, used by the
// renderer to keep melody notes in key.
func (m MusicalMode) Intervals() []int {
	switch m {
	case ModeDorian:
		return []int{0, 2, 3, 5, 7, 9, 10}
	case ModeLydian:
		return []int{0, 2, 4, 6, 7, 9, 11}
	default:
		return []int{0, 2, 3, 5, 7, 8, 10}
	}
}

// Motif is a repeated base pattern found in the sequence.
type Motif struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
	Length  int    `json:"length"`
}

// Analysis is the immutable result of analyzing one sequence. A fresh
// value is produced on every call; nothing here is ever mutated.
type Analysis struct {
	Length     int            `json:"length"`
	BaseCounts map[string]int `json:"baseCounts"`
	GCPercent  float64        `json:"gc"`
	ATGCRatio  float64        `json:"atGcRatio"`
	PuPyRatio  float64        `json:"puPyRatio"`
	Key        string         `json:"key"`
	RootNote   int            `json:"rootNote"`
	Mode       MusicalMode    `json:"mode"`
	Character  string         `json:"character"`
	Tempo      int            `json:"tempo"`
	CodonCount int            `json:"codonCount"`
	Motifs     []Motif        `json:"motifs,omitempty"`
	MotifCount int            `json:"motifCount"`
}

// rootKeys maps AT/GC ratio bands to a root note and key name. AT-rich
// sequences land on warmer keys, GC-rich on tenser ones.
var rootKeys = []struct {
	low, high float64
	note      int
	name      string
}{
	{0.0, 0.7, 11, "B"},
	{0.7, 0.85, 4, "E"},
	{0.85, 1.0, 9, "A"},
	{1.0, 1.15, 2, "D"},
	{1.15, 1.3, 7, "G"},
	{1.3, 1.5, 0, "C"},
	{1.5, math.Inf(1), 5, "F"},
}

// Analyze derives the musical encoding of a sequence: base composition,
// GC content, key, mode and tempo. The caller is responsible for having
// validated the sequence (length >= MinSequenceLength); Analyze does not
// re-validate. Pure function: identical input yields identical output.
func Analyze(seq string) Analysis {
	length := len(seq)

	counts := map[string]int{"A": 0, "T": 0, "G": 0, "C": 0}
	for i := 0; i < length; i++ {
		counts[string(seq[i])]++
	}

	gcCount := counts["G"] + counts["C"]
	atCount := counts["A"] + counts["T"]
	gcPercent := float64(gcCount) / float64(length) * 100

	atGcRatio := 1.5
	if gcCount > 0 {
		atGcRatio = float64(atCount) / float64(gcCount)
	}
	rootNote, keyName := rootKey(atGcRatio)

	purines := counts["A"] + counts["G"]
	pyrimidines := counts["T"] + counts["C"]
	puPyRatio := 1.0
	if pyrimidines > 0 {
		puPyRatio = float64(purines) / float64(pyrimidines)
	}

	mode := modeFor(gcPercent)
	motifs := detectMotifs(seq)

	return Analysis{
		Length:     length,
		BaseCounts: counts,
		GCPercent:  round1(gcPercent),
		ATGCRatio:  round3(atGcRatio),
		PuPyRatio:  round3(puPyRatio),
		Key:        keyName,
		RootNote:   rootNote,
		Mode:       mode,
		Character:  mode.Character(),
		Tempo:      TempoFor(gcPercent),
		CodonCount: length / 3,
		Motifs:     motifs,
		MotifCount: len(motifs),
	}
}

// modeFor picks the musical mode from GC content. The comparisons are
// strict, so 40% and 60% themselves fall through to aeolian.
func modeFor(gcPercent float64) MusicalMode {
	switch {
	case gcPercent < 40:
		return ModeDorian
	case gcPercent > 60:
		return ModeLydian
	default:
		return ModeAeolian
	}
}

// TempoFor converts GC content into beats per minute, centered at 70 for
// a balanced sequence and spanning roughly 60-80.
func TempoFor(gcPercent float64) int {
	return int(math.Round(70 + (gcPercent/100-0.5)*20))
}

func rootKey(atGcRatio float64) (int, string) {
	for _, rk := range rootKeys {
		if atGcRatio >= rk.low && atGcRatio < rk.high {
			return rk.note, rk.name
		}
	}
	return 0, "C"
}

const (
	minMotifLength = 6  // 2 codons
	maxMotifLength = 18 // 6 codons
	maxMotifs      = 5
)

// detectMotifs finds base patterns that occur at least twice, keeping the
// five most frequent. These become recurring musical themes downstream.
func detectMotifs(seq string) []Motif {
	var motifs []Motif
	for length := minMotifLength; length <= maxMotifLength; length += 3 {
		if length > len(seq) {
			break
		}
		counts := make(map[string]int)
		for i := 0; i+length <= len(seq); i++ {
			counts[seq[i:i+length]]++
		}
		for pattern, count := range counts {
			if count >= 2 {
				motifs = append(motifs, Motif{Pattern: pattern, Count: count, Length: length})
			}
		}
	}

	sort.Slice(motifs, func(i, j int) bool {
		if motifs[i].Count != motifs[j].Count {
			return motifs[i].Count > motifs[j].Count
		}
		if motifs[i].Length != motifs[j].Length {
			return motifs[i].Length > motifs[j].Length
		}
		return motifs[i].Pattern < motifs[j].Pattern
	})
	if len(motifs) > maxMotifs {
		motifs = motifs[:maxMotifs]
	}
	return motifs
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
