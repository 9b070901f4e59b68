package dna

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// biasRegime steers the GC content of a generated sequence. One regime is
// picked at random per call, which varies the resulting key and mode from
// run to run without making the analyzer itself stochastic.
type biasRegime int

const (
	biasLow biasRegime = iota
	biasHigh
	biasBalanced
)

// lowGCWeight and highGCWeight are tunable pool-mixing ratios, not a wire
// contract: biased regimes repeat matching codons this many times in the
// draw pool on top of the flat 61-codon base.
const (
	lowGCWeight  = 3
	highGCWeight = 3
)

const antiRepeatAttempts = 10

// Generator produces synthetic DNA sequences. Each Generator owns its own
// random source, so concurrent workflows can generate without sharing
// state.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded from the clock.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator returns a Generator with a fixed seed, useful for
// reproducing a sequence.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// GenerateRealistic builds a sequence that looks like a coding region: it
// starts with ATG, ends with a random stop codon, and fills the middle
// with sense codons drawn from a GC-biased pool. The requested length is
// reduced to whole codons (floor(n/3) - 2 intermediates), so the output
// length is always a multiple of 3 and at least 9.
//
// Repeated codons are avoided on a best-effort basis only: after the
// bounded retry budget the candidate is accepted as-is, so repeats can
// still occur.
func (g *Generator) GenerateRealistic(targetLength int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	intermediates := targetLength/3 - 2
	if intermediates < 1 {
		intermediates = 1
	}

	pool := g.codonPool()

	var b strings.Builder
	b.Grow((intermediates + 2) * 3)
	b.WriteString(StartCodon)

	prev, prevPrev := StartCodon, ""
	for i := 0; i < intermediates; i++ {
		codon := g.pickCodon(pool, prev, prevPrev)
		b.WriteString(codon)
		prevPrev, prev = prev, codon
	}

	b.WriteString(StopCodons[g.rng.Intn(len(StopCodons))])
	return b.String()
}

// GenerateUniformRandom builds a sequence of independent uniform draws
// from the four-letter alphabet, with no codon structure. Fallback path
// when realistic structure is not wanted.
func (g *Generator) GenerateUniformRandom(length int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	const alphabet = "ATGC"
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[g.rng.Intn(4)]
	}
	return string(b)
}

// codonPool builds the draw pool for this call's bias regime. Stop codons
// never appear in the pool.
func (g *Generator) codonPool() []string {
	regime := biasRegime(g.rng.Intn(3))

	pool := make([]string, 0, 61*lowGCWeight)
	for _, codon := range senseCodons {
		pool = append(pool, codon)
		switch regime {
		case biasLow:
			if gcCount(codon) <= 1 {
				for k := 1; k < lowGCWeight; k++ {
					pool = append(pool, codon)
				}
			}
		case biasHigh:
			if gcCount(codon) >= 2 {
				for k := 1; k < highGCWeight; k++ {
					pool = append(pool, codon)
				}
			}
		}
	}
	return pool
}

// pickCodon draws a codon, re-drawing when the candidate would repeat the
// previous codon, or (with a smaller share of the attempt budget) the one
// two positions back. The loop is bounded; the last candidate wins.
func (g *Generator) pickCodon(pool []string, prev, prevPrev string) string {
	codon := pool[g.rng.Intn(len(pool))]
	for attempt := 0; attempt < antiRepeatAttempts; attempt++ {
		if codon == prev {
			codon = pool[g.rng.Intn(len(pool))]
			continue
		}
		if codon == prevPrev && attempt < antiRepeatAttempts/2 {
			codon = pool[g.rng.Intn(len(pool))]
			continue
		}
		break
	}
	return codon
}

func gcCount(codon string) int {
	n := 0
	for i := 0; i < len(codon); i++ {
		if codon[i] == 'G' || codon[i] == 'C' {
			n++
		}
	}
	return n
}
