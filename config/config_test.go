package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadPartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"engine":"osc","pad":{"patternCap":32}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EngineOSC, cfg.Engine)
	assert.Equal(t, 32, cfg.Pad.PatternCap)
	assert.Equal(t, 120*time.Millisecond, cfg.Pulse())
	assert.Equal(t, 150*time.Millisecond, cfg.KeyRelease())
	assert.Equal(t, 700*time.Millisecond, cfg.KeyHold())
	assert.Equal(t, 10, cfg.MIDIOut.Channel)
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Engine = EngineSplit
	cfg.Sampler.Gate = true
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestControllers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddController(ControllerConfig{PortName: "Grid", Type: ControllerGenericGrid})
	cfg.AddController(ControllerConfig{PortName: "Grid", Type: ControllerGenericGrid, AutoConnect: true})

	require.Len(t, cfg.Controllers, 2)
	assert.True(t, cfg.FindController("Grid").AutoConnect)
	assert.Nil(t, cfg.FindController("missing"))
	assert.Len(t, cfg.AutoConnectControllers(), 2)
}

func TestSampleDirExpandsHome(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sampler.Dir = "/abs/samples"
	assert.Equal(t, "/abs/samples", cfg.SampleDir())
}
