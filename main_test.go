package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-drumpad/config"
	"go-drumpad/engine"
	"go-drumpad/settings"
)

func TestBuildEngine(t *testing.T) {
	store := settings.New()
	cases := map[config.EngineKind]any{
		config.EngineSampler: &engine.Sampler{},
		config.EngineOSC:     &engine.OSC{},
		config.EngineMIDI:    &engine.MIDIOut{},
		config.EngineSplit:   &engine.Split{},
		config.EngineNone:    engine.Absent{},
		"bogus":              engine.Absent{},
	}
	for kind, want := range cases {
		cfg := config.DefaultConfig()
		cfg.Engine = kind
		assert.IsType(t, want, buildEngine(cfg, store), string(kind))
	}
}

func TestMIDIVelocityFollowsVolume(t *testing.T) {
	store := settings.New()
	cfg := config.DefaultConfig()
	cfg.Engine = config.EngineMIDI

	out, ok := buildEngine(cfg, store).(*engine.MIDIOut)
	require.True(t, ok)

	store.SetLevels(1, 0.5)
	assert.Equal(t, uint8(127), out.Velocity())
	store.SetLevels(0, 0.5)
	assert.Equal(t, uint8(1), out.Velocity())
}
