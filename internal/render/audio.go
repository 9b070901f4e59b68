package render

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
)

// AudioConverter turns a MIDI file into an MP3 by shelling out to
// timidity (MIDI → WAV) and lame (WAV → MP3). Both tools must be on PATH;
// Available reports whether they are so callers can degrade to MIDI-only.
type AudioConverter struct{}

func NewAudioConverter() *AudioConverter {
	return &AudioConverter{}
}

// Available reports whether the external conversion tools are installed.
func (c *AudioConverter) Available() bool {
	if _, err := exec.LookPath("timidity"); err != nil {
		return false
	}
	if _, err := exec.LookPath("lame"); err != nil {
		return false
	}
	return true
}

// ConvertToMP3 renders midiPath to mp3Path. The intermediate WAV file is
// removed regardless of outcome.
func (c *AudioConverter) ConvertToMP3(ctx context.Context, midiPath, mp3Path string) error {
	wavPath := strings.TrimSuffix(midiPath, ".mid") + ".wav"
	defer os.Remove(wavPath)

	if err := runTool(ctx, "timidity", midiPath, "-Ow", "-o", wavPath); err != nil {
		return fmt.Errorf("midi to wav conversion failed: %w", err)
	}
	if err := runTool(ctx, "lame", "-V2", wavPath, mp3Path); err != nil {
		return fmt.Errorf("wav to mp3 conversion failed: %w", err)
	}
	return nil
}

func runTool(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("[Render] ✗ %s failed: %v — %.200s", name, err, string(out))
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
