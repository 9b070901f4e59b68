// Package render turns a DNA analysis into audio artifacts: a standard
// MIDI file built from the sequence itself, optionally converted to MP3
// with external tools (timidity + lame).
package render

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/dnalifesong/api/internal/dna"
)

// Renderer writes a musical rendition of a sequence to a MIDI file.
type Renderer interface {
	Render(seq string, analysis dna.Analysis, durationSeconds int, outputPath string) error
}

// Melody parameters. Each base becomes one quarter note; the first-base
// degree table maps bases onto scale positions so every note stays in key.
const (
	ticksPerQuarter = 480
	melodyProgram   = 73 // flute
	noteVelocity    = 70
	baseOctave      = 60 // middle C
)

var firstBaseDegree = map[byte]int{
	'A': 0, // root
	'T': 3, // fourth
	'G': 4, // fifth
	'C': 6, // seventh
}

// MIDIRenderer emits a single-track (format 0) standard MIDI file. The
// melody walks the sequence base by base at the analysis tempo; duration
// caps the number of notes at two beats per second of requested audio.
type MIDIRenderer struct{}

func NewMIDIRenderer() *MIDIRenderer {
	return &MIDIRenderer{}
}

func (r *MIDIRenderer) Render(seq string, analysis dna.Analysis, durationSeconds int, outputPath string) error {
	if durationSeconds <= 0 {
		return fmt.Errorf("duration must be positive, got %d", durationSeconds)
	}

	intervals := analysis.Mode.Intervals()
	maxNotes := durationSeconds * 2

	var track bytes.Buffer
	writeTempo(&track, analysis.Tempo)
	writeTrackName(&track, "DNA Lifesong")
	writeProgramChange(&track, melodyProgram)

	notes := 0
	for i := 0; i < len(seq) && notes < maxNotes; i++ {
		degree, ok := firstBaseDegree[seq[i]]
		if !ok {
			continue
		}
		pitch := baseOctave + analysis.RootNote + intervals[degree%len(intervals)]
		writeNote(&track, pitch, noteDuration(seq, i))
		notes++
	}
	if notes == 0 {
		return fmt.Errorf("sequence contains no playable bases")
	}
	writeEndOfTrack(&track)

	var file bytes.Buffer
	writeHeader(&file, 1)
	writeTrackChunk(&file, track.Bytes())

	return os.WriteFile(outputPath, file.Bytes(), 0o644)
}

// noteDuration derives a rhythm from codon usage: bases in codons common
// in the human genome play faster, rare codons linger.
func noteDuration(seq string, i int) int {
	start := i - i%3
	if start+3 > len(seq) {
		return ticksPerQuarter
	}
	usage := dna.CodonUsage[seq[start:start+3]]
	switch {
	case usage >= 20:
		return ticksPerQuarter / 2
	case usage < 10:
		return ticksPerQuarter * 2
	default:
		return ticksPerQuarter
	}
}

func writeHeader(buf *bytes.Buffer, tracks uint16) {
	buf.WriteString("MThd")
	binary.Write(buf, binary.BigEndian, uint32(6))
	binary.Write(buf, binary.BigEndian, uint16(0)) // format 0
	binary.Write(buf, binary.BigEndian, tracks)
	binary.Write(buf, binary.BigEndian, uint16(ticksPerQuarter))
}

func writeTrackChunk(buf *bytes.Buffer, events []byte) {
	buf.WriteString("MTrk")
	binary.Write(buf, binary.BigEndian, uint32(len(events)))
	buf.Write(events)
}

func writeTempo(buf *bytes.Buffer, bpm int) {
	usPerQuarter := uint32(60_000_000 / bpm)
	writeVarLen(buf, 0)
	buf.Write([]byte{0xFF, 0x51, 0x03,
		byte(usPerQuarter >> 16), byte(usPerQuarter >> 8), byte(usPerQuarter)})
}

func writeTrackName(buf *bytes.Buffer, name string) {
	writeVarLen(buf, 0)
	buf.Write([]byte{0xFF, 0x03, byte(len(name))})
	buf.WriteString(name)
}

func writeProgramChange(buf *bytes.Buffer, program byte) {
	writeVarLen(buf, 0)
	buf.Write([]byte{0xC0, program})
}

func writeNote(buf *bytes.Buffer, pitch, durationTicks int) {
	if pitch < 0 {
		pitch = 0
	}
	if pitch > 127 {
		pitch = 127
	}
	writeVarLen(buf, 0)
	buf.Write([]byte{0x90, byte(pitch), noteVelocity})
	writeVarLen(buf, uint32(durationTicks))
	buf.Write([]byte{0x80, byte(pitch), 0})
}

func writeEndOfTrack(buf *bytes.Buffer) {
	writeVarLen(buf, 0)
	buf.Write([]byte{0xFF, 0x2F, 0x00})
}

// writeVarLen encodes a delta time as a MIDI variable-length quantity.
func writeVarLen(buf *bytes.Buffer, v uint32) {
	var stack [4]byte
	n := 0
	stack[n] = byte(v & 0x7F)
	n++
	v >>= 7
	for v > 0 {
		stack[n] = byte(v&0x7F) | 0x80
		n++
		v >>= 7
	}
	for n > 0 {
		n--
		buf.WriteByte(stack[n])
	}
}
