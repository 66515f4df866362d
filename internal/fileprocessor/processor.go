// Package fileprocessor handles the files read and written around a run
package fileprocessor

import (
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/snapshot"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// WriteSnapshot writes the display to the output file of the options. The file
// format is selected by the file extension.
func WriteSnapshot(logger *log.Logger, opts options.Program, display *machine.Display) error {
	format, err := snapshot.FormatFromFileName(opts.Output)
	if err != nil {
		return fmt.Errorf("selecting snapshot format: %w", err)
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return &machine.IOError{Op: "creating snapshot file", Path: opts.Output, Err: err}
	}

	if err := snapshot.Write(file, display, format, opts.Scale); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing snapshot '%s': %w", opts.Output, err)
	}
	if err := file.Close(); err != nil {
		return &machine.IOError{Op: "closing snapshot file", Path: opts.Output, Err: err}
	}

	logger.Info("Snapshot written",
		log.String("file", opts.Output),
		log.Stringer("format", format))
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("chip8", log.String("version", buildinfo.Version(version, commit, date)))
}
