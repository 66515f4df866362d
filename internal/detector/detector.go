// Package detector handles display profile detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// hiresMarker in a ROM file name selects the high resolution profile.
const hiresMarker = "hires"

// Detector handles display profile detection from file names and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new profile detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect returns the machine configuration profile for the program options.
// An explicit high resolution option wins, otherwise the profile is detected
// from the ROM file name.
func (d *Detector) Detect(opts options.Program) config.Config {
	highResolution := opts.HighResolution
	if !highResolution {
		highResolution = d.detectFromFile(opts.Input)
	}

	if highResolution {
		cfg := config.HighResolution()
		d.logger.Debug("Selected high resolution profile",
			log.Int("width", cfg.DisplayWidth),
			log.Int("height", cfg.DisplayHeight),
			log.String("file", opts.Input))
		return cfg
	}

	cfg := config.Default()
	d.logger.Debug("Selected standard profile",
		log.Int("width", cfg.DisplayWidth),
		log.Int("height", cfg.DisplayHeight),
		log.String("file", opts.Input))
	return cfg
}

// detectFromFile reports whether the ROM file name asks for a high resolution display.
func (d *Detector) detectFromFile(filename string) bool {
	name := strings.ToLower(filepath.Base(filename))
	return strings.Contains(name, hiresMarker)
}
