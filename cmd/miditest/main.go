// miditest pokes at MIDI ports and pad controllers without the TUI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-drumpad/config"
	"go-drumpad/midi"
	"go-drumpad/pad"
	"go-drumpad/settings"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		withController(monitor)
	case "leds":
		withController(testLEDs)
	case "poll":
		pollDevices()
	case "add":
		addController(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  monitor  - Print pad down/up from a connected controller")
	fmt.Println("  leds     - Walk a light across the 4x4 pads")
	fmt.Println("  poll     - Poll for device changes")
	fmt.Println("  add <port> [type] - Save a controller to auto-connect on start")
}

// addController saves a controller entry in config.json so the app connects
// it on start
func addController(args []string) {
	if len(args) < 1 {
		usage()
		return
	}
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	port := args[0]
	typ := config.ControllerGenericGrid
	if len(args) > 1 {
		typ = config.ControllerType(args[1])
	}
	if prev := cfg.FindController(port); prev != nil {
		fmt.Printf("Replacing %s (%s)\n", port, prev.Type)
	}
	cfg.AddController(config.ControllerConfig{PortName: port, Type: typ, AutoConnect: true})
	if err := cfg.Save(""); err != nil {
		fmt.Printf("Save failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %s as %s\n", port, typ)
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

// withController runs fn on every controller the device manager connects
// until ctrl+c
func withController(fn func(ctx context.Context, c midi.Controller)) {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Config error, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := midi.NewDeviceManager(cfg.AutoConnectControllers())
	go dm.Run(ctx)

	fmt.Println("Waiting for a pad controller. Ctrl+C to exit.")
	for ev := range dm.Events() {
		switch ev.Type {
		case midi.DeviceConnected:
			fmt.Printf("+ %s (%s)\n", ev.ID, ev.Controller.Type())
			go fn(ctx, ev.Controller)
		case midi.DeviceDisconnected:
			fmt.Printf("- %s\n", ev.ID)
		}
	}
}

func monitor(ctx context.Context, c midi.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.PadEvents():
			if !ok {
				return
			}
			coord, onPad := midi.PadCoord(ev.Row, ev.Col)
			if !onPad {
				fmt.Printf("  device %d,%d (outside the pads)\n", ev.Row, ev.Col)
				continue
			}
			state := "up  "
			if ev.Down {
				state = "down"
			}
			fmt.Printf("  %s %s  pad %d,%d  vel %3d  %s\n",
				state, strings.ToUpper(pad.KeyForCoord(coord)), coord.Row, coord.Col,
				ev.Velocity, settings.DefaultSounds[coord.Index()])
		}
	}
}

func testLEDs(ctx context.Context, c midi.Controller) {
	on := [3]uint8{0, 255, 0}
	for _, coord := range pad.AllCoords() {
		row, col := midi.DevicePos(coord)
		if err := c.SetLEDBatch([]midi.LEDUpdate{{Row: row, Col: col, Color: on}}); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
		c.SetLEDBatch([]midi.LEDUpdate{{Row: row, Col: col}})
	}
	fmt.Println("Done!")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a controller to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		var inNames, outNames []string
		for _, p := range gomidi.GetInPorts() {
			inNames = append(inNames, p.String())
		}
		for _, p := range gomidi.GetOutPorts() {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)
			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
