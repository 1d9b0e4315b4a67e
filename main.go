package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"go-drumpad/config"
	"go-drumpad/debug"
	"go-drumpad/drumpad"
	"go-drumpad/engine"
	"go-drumpad/midi"
	"go-drumpad/settings"
	"go-drumpad/snapshot"
	"go-drumpad/theme"
	"go-drumpad/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-drumpad/config.json)")
	engineKind := flag.String("engine", "", "engine: sampler|osc|midi|split|none (overrides config)")
	debugOn := flag.Bool("debug", false, "write a debug log next to the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Config error, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if *engineKind != "" {
		cfg.Engine = config.EngineKind(*engineKind)
	}

	configDir, dirErr := config.ConfigDir()
	if *debugOn && dirErr == nil {
		if err := debug.Enable(filepath.Join(configDir, "debug.log")); err != nil {
			fmt.Printf("Debug log disabled: %v\n", err)
		}
	}
	defer debug.Disable()

	// Settings survive restarts; a missing or broken file means defaults
	store := settings.New()
	if dirErr == nil {
		settings.Persist(store, filepath.Join(configDir, "settings.json"))
	}

	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		debug.Log("main", "palette %s: %v, using default", cfg.UI.Palette, err)
		palette = theme.Default()
	}
	th := theme.New(palette)

	adapter := engine.NewAdapter(buildEngine(cfg, store))
	manager := drumpad.NewManager(store, adapter, drumpad.Options{
		PatternCap: cfg.Pad.PatternCap,
		Pulse:      cfg.Pulse(),
	})
	defer manager.Close()

	var snaps *snapshot.Store
	if dir, err := snapshot.DefaultDir(); err == nil {
		snaps = snapshot.New(dir)
	}

	// Create MIDI device manager (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(cfg.AutoConnectControllers())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)
	manager.Start(ctx)

	m := tui.NewModel(manager, deviceMgr, th, tui.Options{
		KeyHold:    cfg.KeyHold(),
		KeyRelease: cfg.KeyRelease(),
		Snapshots:  snaps,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// buildEngine picks the back end named in the config. Nothing is opened
// here; the adapter runs Init in the background.
func buildEngine(cfg *config.Config, store *settings.Store) engine.Engine {
	debug.Log("main", "engine %s", cfg.Engine)
	switch cfg.Engine {
	case config.EngineSampler:
		return newSampler(cfg, store)
	case config.EngineOSC:
		return engine.NewOSC(cfg.OSC.Addr)
	case config.EngineMIDI:
		out := engine.NewMIDIOut(cfg.MIDIOut.PortName, cfg.MIDIOut.Channel, cfg.MIDIOut.Kit)
		out.Velocity = func() uint8 {
			return uint8(1 + store.Volume()*126)
		}
		return out
	case config.EngineSplit:
		return engine.NewSplit(newSampler(cfg, store), engine.NewOSC(cfg.OSC.Addr))
	case config.EngineNone:
		return engine.Absent{}
	}
	debug.Log("main", "unknown engine %q, running without audio", cfg.Engine)
	return engine.Absent{}
}

func newSampler(cfg *config.Config, store *settings.Store) *engine.Sampler {
	return engine.NewSampler(engine.SamplerOptions{
		Dir:        cfg.SampleDir(),
		URL:        cfg.Sampler.URL,
		Synth:      cfg.Sampler.Synth,
		Gate:       cfg.Sampler.Gate,
		SampleRate: cfg.Sampler.Rate,
		Volume:     store.Volume,
	})
}
