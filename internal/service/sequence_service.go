package service

import (
	"github.com/dnalifesong/api/internal/dna"
	"github.com/dnalifesong/api/internal/model"
)

// SequenceService handles DNA validation, analysis and random generation
type SequenceService struct {
	generator *dna.Generator
}

func NewSequenceService(generator *dna.Generator) *SequenceService {
	return &SequenceService{generator: generator}
}

// Analyze cleans, validates and analyzes a raw DNA string.
func (s *SequenceService) Analyze(raw string) (*model.AnalyzeResponse, error) {
	seq := dna.Clean(raw)
	if _, err := dna.Validate(seq); err != nil {
		return nil, err
	}

	analysis := dna.Analyze(seq)
	return &model.AnalyzeResponse{
		Analysis: analysis,
		Sequence: seq,
	}, nil
}

// GenerateRandom produces a synthetic sequence plus its analysis. Mode
// defaults to realistic (codon-structured) generation.
func (s *SequenceService) GenerateRandom(req *model.RandomSequenceRequest) (*model.RandomSequenceResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = model.SequenceModeRealistic
	}

	var seq string
	switch mode {
	case model.SequenceModeUniform:
		seq = s.generator.GenerateUniformRandom(req.Length)
	default:
		seq = s.generator.GenerateRealistic(req.Length)
	}

	return &model.RandomSequenceResponse{
		Sequence: seq,
		Length:   len(seq),
		Mode:     mode,
		Analysis: dna.Analyze(seq),
	}, nil
}
