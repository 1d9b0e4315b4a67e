package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-drumpad/config"
	"go-drumpad/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of pad controllers. Launchpads
// are found by name; other pad controllers must be listed in the config.
type DeviceManager struct {
	configured  []config.ControllerConfig
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	// swapped out in tests
	ports func() ([]drivers.In, []drivers.Out)
	open  func(kind config.ControllerType, id string, in drivers.In, out drivers.Out) (Controller, error)
}

// NewDeviceManager creates a device manager for the given configured
// controllers; only entries with autoConnect are used
func NewDeviceManager(configured []config.ControllerConfig) *DeviceManager {
	return &DeviceManager{
		configured:  configured,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		ports:       systemPorts,
		open:        openController,
	}
}

func systemPorts() ([]drivers.In, []drivers.Out) {
	return gomidi.GetInPorts(), gomidi.GetOutPorts()
}

func openController(kind config.ControllerType, id string, in drivers.In, out drivers.Out) (Controller, error) {
	if kind == config.ControllerGenericGrid {
		return NewNotePadController(id, in, DefaultBaseNote)
	}
	return NewLaunchpadController(id, in, out)
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run polls for devices until ctx is done (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()
	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// kindFor decides whether an input port is a pad controller
func (dm *DeviceManager) kindFor(portName string) (config.ControllerType, bool) {
	lower := strings.ToLower(portName)
	for _, c := range dm.configured {
		if c.AutoConnect && c.PortName != "" && strings.Contains(lower, strings.ToLower(c.PortName)) {
			return c.Type, true
		}
	}
	if isLaunchpad(lower) {
		return config.ControllerLaunchpadX, true
	}
	return "", false
}

func (dm *DeviceManager) scan() {
	type portsResult struct {
		in  []drivers.In
		out []drivers.Out
	}

	// CoreMIDI can hang on enumeration
	ch := make(chan portsResult, 1)
	go func() {
		in, out := dm.ports()
		ch <- portsResult{in, out}
	}()

	var ports portsResult
	select {
	case ports = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("devices", "port scan timed out")
		return
	}

	seen := make(map[string]bool)
	for _, in := range ports.in {
		id := in.String()
		kind, ok := dm.kindFor(id)
		if !ok {
			continue
		}
		seen[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var out drivers.Out
		for _, op := range ports.out {
			if strings.EqualFold(op.String(), id) {
				out = op
				break
			}
		}

		c, err := dm.open(kind, id, in, out)
		if err != nil {
			debug.Log("devices", "open %s: %v", id, err)
			continue
		}
		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()
		debug.Log("devices", "connected %s (%s)", id, c.Type())
		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: c, ID: id}
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	for id, c := range dm.controllers {
		if seen[id] {
			continue
		}
		c.Close()
		delete(dm.controllers, id)
		debug.Log("devices", "disconnected %s", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
