package dna

import (
	"fmt"
	"strings"
)

// MinSequenceLength is the shortest sequence the analyzer accepts.
const MinSequenceLength = 20

// Start and stop codons of the standard genetic code.
const StartCodon = "ATG"

var StopCodons = []string{"TAA", "TAG", "TGA"}

// ValidationError describes why a sequence was rejected. It is the only
// error type the validator, analyzer and generator produce.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation error codes.
const (
	CodeEmptySequence = "EMPTY_SEQUENCE"
	CodeTooShort      = "TOO_SHORT"
)

// ErrEmptySequence is returned when no bases remain after cleaning.
var ErrEmptySequence = &ValidationError{
	Code:    CodeEmptySequence,
	Message: "no DNA sequence provided",
}

// Clean uppercases raw input and strips every character outside the ATGC
// alphabet. It never fails and is idempotent.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		switch r {
		case 'A', 'T', 'G', 'C':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks a cleaned sequence and returns its length. Sequences
// shorter than MinSequenceLength are rejected with a TooShort error that
// names the actual length.
func Validate(seq string) (int, error) {
	n := len(seq)
	if n == 0 {
		return 0, ErrEmptySequence
	}
	if n < MinSequenceLength {
		return 0, &ValidationError{
			Code:    CodeTooShort,
			Message: fmt.Sprintf("need at least %d DNA bases, got %d", MinSequenceLength, n),
		}
	}
	return n, nil
}

// IsStopCodon reports whether codon is one of TAA, TAG or TGA.
func IsStopCodon(codon string) bool {
	switch codon {
	case "TAA", "TAG", "TGA":
		return true
	}
	return false
}

// Codons splits a sequence into complete triplets, dropping any trailing
// partial codon.
func Codons(seq string) []string {
	codons := make([]string, 0, len(seq)/3)
	for i := 0; i+3 <= len(seq); i += 3 {
		codons = append(codons, seq[i:i+3])
	}
	return codons
}

// codonTable maps each of the 64 codons to its amino acid, with '*' for
// the three stop codons.
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',
	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// AminoAcid returns the amino acid letter for a codon ('*' for stop,
// 'X' for anything outside the table).
func AminoAcid(codon string) byte {
	if aa, ok := codonTable[codon]; ok {
		return aa
	}
	return 'X'
}

// SenseCodons lists the 61 codons that encode an amino acid, in table
// order. The slice is shared; callers must not modify it.
func SenseCodons() []string {
	return senseCodons
}

var senseCodons = buildSenseCodons()

func buildSenseCodons() []string {
	bases := []byte{'T', 'C', 'A', 'G'}
	out := make([]string, 0, 61)
	for _, a := range bases {
		for _, b := range bases {
			for _, c := range bases {
				codon := string([]byte{a, b, c})
				if !IsStopCodon(codon) {
					out = append(out, codon)
				}
			}
		}
	}
	return out
}

// CodonUsage holds human codon usage frequencies per 1000 codons. The
// renderer maps higher frequency to shorter note durations.
var CodonUsage = map[string]float64{
	"TTT": 17.6, "TTC": 20.3, "TTA": 7.7, "TTG": 12.9,
	"TCT": 15.2, "TCC": 17.7, "TCA": 12.2, "TCG": 4.4,
	"TAT": 12.2, "TAC": 15.3, "TAA": 1.0, "TAG": 0.8,
	"TGT": 10.6, "TGC": 12.6, "TGA": 1.6, "TGG": 13.2,
	"CTT": 13.2, "CTC": 19.6, "CTA": 7.2, "CTG": 39.6,
	"CCT": 17.5, "CCC": 19.8, "CCA": 16.9, "CCG": 6.9,
	"CAT": 10.9, "CAC": 15.1, "CAA": 12.3, "CAG": 34.2,
	"CGT": 4.5, "CGC": 10.4, "CGA": 6.2, "CGG": 11.4,
	"ATT": 16.0, "ATC": 20.8, "ATA": 7.5, "ATG": 22.0,
	"ACT": 13.1, "ACC": 18.9, "ACA": 15.1, "ACG": 6.1,
	"AAT": 17.0, "AAC": 19.1, "AAA": 24.4, "AAG": 31.9,
	"AGT": 12.1, "AGC": 19.5, "AGA": 12.2, "AGG": 12.0,
	"GTT": 11.0, "GTC": 14.5, "GTA": 7.1, "GTG": 28.1,
	"GCT": 18.4, "GCC": 27.7, "GCA": 15.8, "GCG": 7.4,
	"GAT": 21.8, "GAC": 25.1, "GAA": 29.0, "GAG": 39.6,
	"GGT": 10.8, "GGC": 22.2, "GGA": 16.5, "GGG": 16.5,
}
