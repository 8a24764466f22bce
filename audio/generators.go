package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
)

// SurfGenerator is endless low-passed noise whose loudness rolls like waves
// breaking on a beach.
type SurfGenerator struct {
	sr     beep.SampleRate
	rng    *rand.Rand
	pos    int
	lp     [2]float64
	period float64
}

func NewSurf(sr beep.SampleRate, seed uint64) *SurfGenerator {
	return &SurfGenerator{
		sr:     sr,
		rng:    rand.New(rand.NewPCG(seed, seed+1)),
		period: 7,
	}
}

func (g *SurfGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		swell := 0.5 + 0.5*math.Sin(2*math.Pi*t/g.period)
		envelope := 0.25 + 0.75*swell*swell

		for ch := range 2 {
			noise := g.rng.Float64()*2 - 1
			g.lp[ch] += (noise - g.lp[ch]) * 0.04
			samples[i][ch] = g.lp[ch] * envelope
		}
		g.pos++
	}
	return len(samples), true
}

func (g *SurfGenerator) Err() error {
	return nil
}

// ChimeGenerator is a bell-like tone with a fast attack and exponential
// decay. It ends after its duration.
type ChimeGenerator struct {
	sr    beep.SampleRate
	freq  float64
	pos   int
	total int
}

func NewChime(sr beep.SampleRate, freq float64, d time.Duration) *ChimeGenerator {
	return &ChimeGenerator{
		sr:    sr,
		freq:  freq,
		total: sr.N(d),
	}
}

func (g *ChimeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.total {
		return 0, false
	}
	for i := range samples {
		if g.pos >= g.total {
			return i, true
		}
		t := float64(g.pos) / float64(g.sr)
		attack := math.Min(t/0.005, 1)
		decay := math.Exp(-6 * float64(g.pos) / float64(g.total))

		sample := 0.6*math.Sin(2*math.Pi*g.freq*t) + 0.25*math.Sin(2*math.Pi*g.freq*2.76*t)
		sample *= attack * decay * 0.8

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
		n++
	}
	return n, true
}

func (g *ChimeGenerator) Err() error {
	return nil
}
