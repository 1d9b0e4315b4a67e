package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/pkg/errors"

	"go-drumpad/debug"
)

// SamplerOptions configures a Sampler
type SamplerOptions struct {
	Dir        string // <dir>/<bank>/<sound>.{wav,mp3}
	URL        string // <url>/<bank>/<sound>.{wav,mp3}
	Synth      bool   // synthesize sounds that fail to load
	Gate       bool   // hold the speaker closed until Resume
	SampleRate int
	Volume     func() float64 // master level 0-1, read at trigger time
	Client     *http.Client
}

// Sampler plays one-shot samples through the local speaker. Buffers are
// cached per bank:sound. A sound that cannot be loaded or synthesized is
// remembered as failed so its pad can be disabled.
type Sampler struct {
	opts   SamplerOptions
	format beep.Format

	mu      sync.RWMutex
	state   State
	buffers map[string]*beep.Buffer
	failed  map[string]error

	// swapped out in tests
	openSpeaker func(beep.SampleRate, int) error
	play        func(...beep.Streamer)
	clear       func()
}

// NewSampler creates a sampler; nothing is opened until Init
func NewSampler(opts SamplerOptions) *Sampler {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Sampler{
		opts: opts,
		format: beep.Format{
			SampleRate:  beep.SampleRate(opts.SampleRate),
			NumChannels: 2,
			Precision:   2,
		},
		state:       StatePending,
		buffers:     make(map[string]*beep.Buffer),
		failed:      make(map[string]error),
		openSpeaker: speaker.Init,
		play:        speaker.Play,
		clear:       speaker.Clear,
	}
}

func sampleKey(bank, sound string) string { return bank + ":" + sound }

// Init opens the speaker, or leaves it closed behind the gate
func (s *Sampler) Init(ctx context.Context) error {
	if s.opts.Gate {
		s.mu.Lock()
		s.state = StateSuspended
		s.mu.Unlock()
		debug.Log("sampler", "audio gated until unlock")
		return nil
	}
	return s.openOutput()
}

func (s *Sampler) openOutput() error {
	bufSize := s.format.SampleRate.N(time.Second / 30)
	if err := s.openSpeaker(s.format.SampleRate, bufSize); err != nil {
		return errors.Wrap(err, "open speaker")
	}
	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
	debug.Log("sampler", "speaker open at %dHz", s.opts.SampleRate)
	return nil
}

// Resume opens the speaker after the user unlocks audio
func (s *Sampler) Resume() error {
	if s.State() != StateSuspended {
		return nil
	}
	return s.openOutput()
}

func (s *Sampler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Preload loads every sound of bank concurrently. Loads finish in any
// order; a failure only affects its own sound.
func (s *Sampler) Preload(ctx context.Context, bank string, sounds []string) map[string]error {
	type result struct {
		sound string
		err   error
	}

	seen := make(map[string]bool, len(sounds))
	results := make(chan result, len(sounds))
	var wg sync.WaitGroup
	for _, sound := range sounds {
		if seen[sound] {
			continue
		}
		seen[sound] = true
		wg.Add(1)
		go func(sound string) {
			defer wg.Done()
			_, err := s.buffer(ctx, sound, bank)
			results <- result{sound: sound, err: err}
		}(sound)
	}
	wg.Wait()
	close(results)

	failed := make(map[string]error)
	for r := range results {
		if r.err != nil {
			failed[r.sound] = r.err
		}
	}
	debug.Log("sampler", "preloaded %s: %d sounds, %d failed", bank, len(seen), len(failed))
	return failed
}

// Failed reports whether sound is known to be unplayable on bank
func (s *Sampler) Failed(sound, bank string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, bad := s.failed[sampleKey(bank, sound)]
	return bad
}

// Trigger plays sound once. A sound not loaded yet is loaded in the
// background and played when ready.
func (s *Sampler) Trigger(sound, bank string) error {
	key := sampleKey(bank, sound)
	s.mu.RLock()
	buf, ok := s.buffers[key]
	ferr, bad := s.failed[key]
	s.mu.RUnlock()

	if bad {
		return ferr
	}
	if ok {
		s.playBuffer(buf)
		return nil
	}

	go func() {
		buf, err := s.buffer(context.Background(), sound, bank)
		if err != nil {
			debug.Log("sampler", "late load %s: %v", key, err)
			return
		}
		s.playBuffer(buf)
	}()
	return nil
}

func (s *Sampler) playBuffer(buf *beep.Buffer) {
	var str beep.Streamer = buf.Streamer(0, buf.Len())
	if s.opts.Volume != nil {
		// Gain scales by 1+Gain
		str = &effects.Gain{Streamer: str, Gain: s.opts.Volume() - 1}
	}
	s.play(str)
}

// Evaluate is not supported: the sampler only plays one-shots
func (s *Sampler) Evaluate(code string) error {
	return noPatterns("sampler")
}

// Stop has nothing to silence; one-shots run to completion
func (s *Sampler) Stop() error { return nil }

// Close stops all sound
func (s *Sampler) Close() error {
	if s.State() == StateReady {
		s.clear()
	}
	return nil
}

// buffer returns the cached buffer for sound, loading it on first use
func (s *Sampler) buffer(ctx context.Context, sound, bank string) (*beep.Buffer, error) {
	key := sampleKey(bank, sound)
	s.mu.RLock()
	buf, ok := s.buffers[key]
	ferr, bad := s.failed[key]
	s.mu.RUnlock()
	if ok {
		return buf, nil
	}
	if bad {
		return nil, ferr
	}

	buf, err := s.load(ctx, sound, bank)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		err = loadFailed(err, sound, bank)
		s.failed[key] = err
		debug.Log("sampler", "WARN %v", err)
		return nil, err
	}
	s.buffers[key] = buf
	return buf, nil
}

// load tries the sample dir, then the URL, then the synth
func (s *Sampler) load(ctx context.Context, sound, bank string) (*beep.Buffer, error) {
	var errs []string
	for _, ext := range []string{".wav", ".mp3"} {
		if s.opts.Dir != "" {
			path := filepath.Join(s.opts.Dir, bank, sound+ext)
			data, err := os.ReadFile(path)
			if err == nil {
				buf, err := s.decode(data, ext)
				if err == nil {
					debug.Log("sampler", "loaded %s", path)
					return buf, nil
				}
				errs = append(errs, err.Error())
			} else {
				errs = append(errs, err.Error())
			}
		}
		if s.opts.URL != "" {
			url := strings.TrimRight(s.opts.URL, "/") + "/" + bank + "/" + sound + ext
			data, err := s.fetch(ctx, url)
			if err == nil {
				buf, err := s.decode(data, ext)
				if err == nil {
					debug.Log("sampler", "fetched %s", url)
					return buf, nil
				}
				errs = append(errs, err.Error())
			} else {
				errs = append(errs, err.Error())
			}
		}
	}

	if s.opts.Synth {
		if mono, ok := Synthesize(sound, s.opts.SampleRate); ok {
			debug.Log("sampler", "synthesized %s:%s", bank, sound)
			return s.monoBuffer(mono), nil
		}
		errs = append(errs, "no synth recipe for "+sound)
	}
	if len(errs) == 0 {
		errs = append(errs, "no sample source configured")
	}
	return nil, errors.New(strings.Join(errs, "; "))
}

func (s *Sampler) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func (s *Sampler) decode(data []byte, ext string) (*beep.Buffer, error) {
	var (
		str    beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch ext {
	case ".mp3":
		str, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		str, format, err = wav.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode"+ext)
	}
	defer str.Close()

	var src beep.Streamer = str
	if format.SampleRate != s.format.SampleRate {
		src = beep.Resample(4, format.SampleRate, s.format.SampleRate, str)
	}
	buf := beep.NewBuffer(s.format)
	buf.Append(src)
	return buf, nil
}

func (s *Sampler) monoBuffer(mono []float64) *beep.Buffer {
	pos := 0
	str := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(mono) {
			return 0, false
		}
		n := copy2(samples, mono[pos:])
		pos += n
		return n, true
	})
	buf := beep.NewBuffer(s.format)
	buf.Append(str)
	return buf
}

func copy2(dst [][2]float64, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}
