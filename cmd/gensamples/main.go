// gensamples renders the built-in drum voices to 16-bit WAV files laid out
// the way the sampler looks for them: <dir>/<bank>/<sound>.wav
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"go-drumpad/config"
	"go-drumpad/engine"
	"go-drumpad/settings"
)

func main() {
	dir := flag.String("dir", "", "sample directory (default: sampler dir from config)")
	banks := flag.String("banks", settings.DefaultBank, "comma separated banks to fill")
	rate := flag.Int("rate", 44100, "sample rate")
	force := flag.Bool("force", false, "overwrite existing files")
	flag.Parse()

	if *dir == "" {
		cfg, err := config.Load("")
		if err != nil {
			fmt.Printf("Config error: %v\n", err)
			os.Exit(1)
		}
		*dir = cfg.SampleDir()
	}

	var list []string
	for _, b := range strings.Split(*banks, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}

	written, err := generate(*dir, list, *rate, *force)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d files under %s\n", written, *dir)
}

// generate writes every synth voice for each bank and returns how many
// files were written. Existing files are kept unless force is set.
func generate(dir string, banks []string, rate int, force bool) (int, error) {
	written := 0
	for _, bank := range banks {
		bankDir := filepath.Join(dir, bank)
		if err := os.MkdirAll(bankDir, 0755); err != nil {
			return written, errors.Wrapf(err, "create %s", bankDir)
		}
		for _, sound := range engine.SynthSounds() {
			path := filepath.Join(bankDir, sound+".wav")
			if _, err := os.Stat(path); err == nil && !force {
				continue
			}
			samples, _ := engine.Synthesize(sound, rate)
			if err := writeFile(path, samples, rate); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func writeFile(path string, samples []float64, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create sample")
	}
	if err := engine.WriteWAV(f, samples, rate); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}
