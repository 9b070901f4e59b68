package model

import "github.com/dnalifesong/api/internal/dna"

// AnalyzeRequest carries a raw DNA string for analysis only.
type AnalyzeRequest struct {
	DNA string `json:"dna" validate:"required"`
}

// AnalyzeResponse returns the musical analysis of a cleaned sequence.
type AnalyzeResponse struct {
	Analysis dna.Analysis `json:"analysis"`
	Sequence string       `json:"sequence"`
}

// RandomSequenceRequest asks for a synthetic sequence. Realistic mode
// honors start/stop codon structure; uniform mode is independent draws.
type RandomSequenceRequest struct {
	Length int          `json:"length" validate:"required,min=9,max=100000"`
	Mode   SequenceMode `json:"mode" validate:"omitempty,oneof=realistic uniform"`
}

// RandomSequenceResponse returns the generated sequence and its analysis.
type RandomSequenceResponse struct {
	Sequence string       `json:"sequence"`
	Length   int          `json:"length"`
	Mode     SequenceMode `json:"mode"`
	Analysis dna.Analysis `json:"analysis"`
}

// GenerateSongRequest turns a DNA sequence into an audio artifact.
// Duration is in seconds.
type GenerateSongRequest struct {
	DNA      string `json:"dna" validate:"required"`
	Duration int    `json:"duration" validate:"omitempty,min=10,max=300"`
}

// GenerateSongResponse returns the analysis plus the stored filenames.
type GenerateSongResponse struct {
	Analysis     dna.Analysis `json:"analysis"`
	Filename     string       `json:"filename"`
	MIDIFilename string       `json:"midiFilename"`
}
