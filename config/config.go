package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
)

// EngineKind selects which audio/pattern engine back end drives the pads
type EngineKind string

const (
	EngineSampler EngineKind = "sampler" // local one-shot sample playback
	EngineOSC     EngineKind = "osc"     // remote pattern engine over OSC
	EngineMIDI    EngineKind = "midi"    // GM drum notes to a MIDI port
	EngineSplit   EngineKind = "split"   // sampler for pads, OSC for patterns
	EngineNone    EngineKind = "none"
)

// ControllerType identifies the kind of controller
type ControllerType string

const (
	ControllerLaunchpadX    ControllerType = "launchpad-x"
	ControllerLaunchpadMini ControllerType = "launchpad-mini"
	ControllerGenericGrid   ControllerType = "generic-grid"
)

// ControllerConfig defines a saved controller configuration
type ControllerConfig struct {
	PortName    string         `json:"portName"`
	Type        ControllerType `json:"type"`
	AutoConnect bool           `json:"autoConnect"`
}

// SamplerConfig controls where samples come from
type SamplerConfig struct {
	Dir   string `json:"dir,omitempty"`  // <dir>/<bank>/<sound>.wav
	URL   string `json:"url,omitempty"`  // <url>/<bank>/<sound>.wav, tried after Dir
	Gate  bool   `json:"gate,omitempty"` // require an explicit unlock before audio starts
	Synth bool   `json:"synth"`          // synthesize missing samples
	Rate  int    `json:"rate,omitempty"` // speaker sample rate
}

// OSCConfig points at a remote pattern engine
type OSCConfig struct {
	Addr string `json:"addr,omitempty"`
}

// MIDIOutConfig defines the drum MIDI output
type MIDIOutConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"` // 1-16, GM drums live on 10
	Kit      string `json:"kit,omitempty"`
}

// PadConfig tunes the input pipeline
type PadConfig struct {
	PatternCap   int `json:"patternCap,omitempty"`
	PulseMS      int `json:"pulseMs,omitempty"`
	KeyHoldMS    int `json:"keyHoldMs,omitempty"`    // longer than the OS key repeat delay
	KeyReleaseMS int `json:"keyReleaseMs,omitempty"` // longer than the OS key repeat interval
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file, embedded default when empty
}

// Config is the main configuration structure
type Config struct {
	Engine      EngineKind         `json:"engine"`
	Sampler     SamplerConfig      `json:"sampler"`
	OSC         OSCConfig          `json:"osc,omitempty"`
	MIDIOut     MIDIOutConfig      `json:"midiOut,omitempty"`
	Pad         PadConfig          `json:"pad,omitempty"`
	UI          UIConfig           `json:"ui,omitempty"`
	Controllers []ControllerConfig `json:"controllers,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineSampler,
		Sampler: SamplerConfig{
			Dir:   "~/.config/go-drumpad/samples",
			Synth: true,
			Rate:  44100,
		},
		OSC: OSCConfig{
			Addr: "127.0.0.1:57120",
		},
		MIDIOut: MIDIOutConfig{
			Channel: 10,
			Kit:     "gm",
		},
		Pad: PadConfig{
			PatternCap:   16,
			PulseMS:      120,
			KeyHoldMS:    700,
			KeyReleaseMS: 150,
		},
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-drumpad"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config at path, or returns defaults if not found.
// An empty path means ConfigPath().
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fill()

	return cfg, nil
}

// fill replaces zero values left by a partial file with defaults
func (c *Config) fill() {
	def := DefaultConfig()
	if c.Engine == "" {
		c.Engine = def.Engine
	}
	if c.Sampler.Rate <= 0 {
		c.Sampler.Rate = def.Sampler.Rate
	}
	if c.MIDIOut.Channel < 1 || c.MIDIOut.Channel > 16 {
		c.MIDIOut.Channel = def.MIDIOut.Channel
	}
	if c.MIDIOut.Kit == "" {
		c.MIDIOut.Kit = def.MIDIOut.Kit
	}
	if c.Pad.PatternCap <= 0 {
		c.Pad.PatternCap = def.Pad.PatternCap
	}
	if c.Pad.PulseMS <= 0 {
		c.Pad.PulseMS = def.Pad.PulseMS
	}
	if c.Pad.KeyHoldMS <= 0 {
		c.Pad.KeyHoldMS = def.Pad.KeyHoldMS
	}
	if c.Pad.KeyReleaseMS <= 0 {
		c.Pad.KeyReleaseMS = def.Pad.KeyReleaseMS
	}
}

// Save writes the config to path (ConfigPath() when empty)
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SampleDir returns the sample directory with ~ expanded
func (c *Config) SampleDir() string {
	dir, err := homedir.Expand(c.Sampler.Dir)
	if err != nil {
		return c.Sampler.Dir
	}
	return dir
}

// Pulse is how long a pad stays lit after a hit
func (c *Config) Pulse() time.Duration {
	return time.Duration(c.Pad.PulseMS) * time.Millisecond
}

// KeyHold is how long a fresh key press counts as held before repeats start
func (c *Config) KeyHold() time.Duration {
	return time.Duration(c.Pad.KeyHoldMS) * time.Millisecond
}

// KeyRelease is how long a repeating key must stay quiet before it counts as
// released
func (c *Config) KeyRelease() time.Duration {
	return time.Duration(c.Pad.KeyReleaseMS) * time.Millisecond
}

// FindController finds a controller config by port name
func (c *Config) FindController(portName string) *ControllerConfig {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == portName {
			return &c.Controllers[i]
		}
	}
	return nil
}

// AddController adds or updates a controller config
func (c *Config) AddController(ctrl ControllerConfig) {
	for i := range c.Controllers {
		if c.Controllers[i].PortName == ctrl.PortName {
			c.Controllers[i] = ctrl
			return
		}
	}
	c.Controllers = append(c.Controllers, ctrl)
}

// AutoConnectControllers returns controllers with autoConnect enabled
func (c *Config) AutoConnectControllers() []ControllerConfig {
	var result []ControllerConfig
	for _, ctrl := range c.Controllers {
		if ctrl.AutoConnect {
			result = append(result, ctrl)
		}
	}
	return result
}
