package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/dnalifesong/api/internal/dna"
	"github.com/dnalifesong/api/internal/model"
	"github.com/dnalifesong/api/internal/render"
	"github.com/dnalifesong/api/internal/storage"
)

const defaultSongDuration = 30 // seconds

// SongService renders a DNA sequence into audio artifacts on disk.
type SongService struct {
	renderer  render.Renderer
	converter *render.AudioConverter
	store     *storage.LocalStore
}

func NewSongService(renderer render.Renderer, converter *render.AudioConverter, store *storage.LocalStore) *SongService {
	return &SongService{
		renderer:  renderer,
		converter: converter,
		store:     store,
	}
}

// GenerateSong validates the sequence, writes a MIDI rendition and, when
// the conversion tools are installed, an MP3 next to it. The MP3 filename
// is empty if conversion is unavailable; the MIDI is always produced.
func (s *SongService) GenerateSong(ctx context.Context, req *model.GenerateSongRequest) (*model.GenerateSongResponse, error) {
	seq := dna.Clean(req.DNA)
	if _, err := dna.Validate(seq); err != nil {
		return nil, err
	}

	duration := req.Duration
	if duration == 0 {
		duration = defaultSongDuration
	}

	analysis := dna.Analyze(seq)

	id := uuid.New().String()
	midiName := "dna_song_" + id + ".mid"
	mp3Name := "dna_song_" + id + ".mp3"

	midiPath, err := s.store.PathFor(midiName)
	if err != nil {
		return nil, err
	}
	if err := s.renderer.Render(seq, analysis, duration, midiPath); err != nil {
		return nil, fmt.Errorf("failed to render midi: %w", err)
	}

	resp := &model.GenerateSongResponse{
		Analysis:     analysis,
		MIDIFilename: midiName,
	}

	if s.converter != nil && s.converter.Available() {
		mp3Path, err := s.store.PathFor(mp3Name)
		if err != nil {
			return nil, err
		}
		if err := s.converter.ConvertToMP3(ctx, midiPath, mp3Path); err != nil {
			log.Printf("[Song] mp3 conversion failed, serving midi only: %v", err)
		} else {
			resp.Filename = mp3Name
		}
	}

	return resp, nil
}
