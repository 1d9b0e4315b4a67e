package engine

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
)

// Waveform of a fallback voice
type Waveform int

const (
	WaveNoise Waveform = iota
	WaveSine
	WaveSquare
	WaveKick // sine with a downward pitch bend
)

// Recipe describes a procedural stand-in for a missing sample
type Recipe struct {
	Wave     Waveform
	Freq     float64 // Hz; noise ignores it
	Duration float64 // seconds
	Gain     float64
}

// Recipes covers the common drum ids. Sounds without a recipe cannot be
// synthesized and their pads are disabled when the sample is missing.
var Recipes = map[string]Recipe{
	"bd":         {WaveKick, 150, 0.5, 0.8},
	"bd2":        {WaveKick, 120, 0.6, 0.8},
	"sd":         {WaveNoise, 2000, 0.2, 0.6},
	"sd2":        {WaveNoise, 2200, 0.25, 0.6},
	"hh":         {WaveNoise, 8000, 0.1, 0.3},
	"hc":         {WaveNoise, 8000, 0.08, 0.3},
	"oh":         {WaveNoise, 6000, 0.3, 0.4},
	"ho":         {WaveNoise, 6000, 0.35, 0.4},
	"cp":         {WaveNoise, 2500, 0.15, 0.5},
	"clap":       {WaveNoise, 2500, 0.15, 0.5},
	"rim":        {WaveNoise, 1500, 0.1, 0.5},
	"lt":         {WaveSine, 80, 0.4, 0.7},
	"mt":         {WaveSine, 120, 0.3, 0.7},
	"ht":         {WaveSine, 200, 0.25, 0.7},
	"tom":        {WaveSine, 120, 0.3, 0.7},
	"perc":       {WaveSine, 400, 0.2, 0.5},
	"cow":        {WaveSquare, 800, 0.3, 0.4},
	"cb":         {WaveSquare, 800, 0.3, 0.4},
	"click":      {WaveSquare, 2000, 0.05, 0.5},
	"ride":       {WaveNoise, 3000, 0.6, 0.4},
	"rd":         {WaveNoise, 3000, 0.6, 0.4},
	"crash":      {WaveNoise, 4000, 0.8, 0.5},
	"cr":         {WaveNoise, 4000, 0.8, 0.5},
	"cy":         {WaveNoise, 5000, 1.0, 0.3},
	"tambourine": {WaveNoise, 7000, 0.4, 0.3},
}

// SynthSounds returns the ids that have a recipe, sorted
func SynthSounds() []string {
	out := make([]string, 0, len(Recipes))
	for k := range Recipes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Synthesize renders sound as mono samples in [-1, 1]. The noise is seeded
// from the sound id so a voice renders the same every time.
func Synthesize(sound string, rate int) ([]float64, bool) {
	r, ok := Recipes[sound]
	if !ok || rate <= 0 {
		return nil, false
	}
	return r.Render(rate, seedFor(sound)), true
}

// Render renders the recipe at rate
func (r Recipe) Render(rate int, seed int64) []float64 {
	n := int(float64(rate) * r.Duration)
	out := make([]float64, n)
	sr := float64(rate)

	switch r.Wave {
	case WaveNoise:
		rng := rand.New(rand.NewSource(seed))
		for i := range out {
			env := math.Exp(-float64(i) / (float64(n) * 0.3))
			out[i] = (rng.Float64()*2 - 1) * r.Gain * env
		}
	case WaveSine:
		for i := range out {
			t := float64(i) / sr
			out[i] = math.Sin(2*math.Pi*r.Freq*t) * r.Gain * math.Exp(-t*5)
		}
	case WaveSquare:
		for i := range out {
			t := float64(i) / sr
			v := -1.0
			if math.Sin(2*math.Pi*r.Freq*t) > 0 {
				v = 1
			}
			out[i] = v * r.Gain * math.Exp(-t*8)
		}
	case WaveKick:
		var phase float64
		for i := range out {
			p := float64(i) / float64(n)
			freq := r.Freq - (r.Freq*2/3)*p
			phase += 2 * math.Pi * freq / sr
			out[i] = math.Sin(phase) * r.Gain * math.Exp(-5*p)
		}
	}
	return out
}

func seedFor(sound string) int64 {
	h := fnv.New64a()
	h.Write([]byte(sound))
	return int64(h.Sum64())
}
