// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/snapshot"
	"github.com/retroenv/retrochip8/internal/terminal"
)

const defaultScale = 8

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args)
}

func parseArgs(osArgs []string) (options.Program, error) {
	flags := flag.NewFlagSet(osArgs[0], flag.ContinueOnError)
	flags.Usage = func() {}
	var opts options.Program
	var seed uint64
	readOptionFlags(flags, &opts, &seed)

	err := flags.Parse(osArgs[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	if opts.Trace {
		opts.Debug = true
	}

	// headless runs are unthrottled unless a rate was requested explicitly
	if opts.Headless && !isFlagSet(flags, "ips") {
		opts.InstructionsPerSecond = 0
	}

	if err := normalizeOptions(&opts, seed); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8 [options] <rom.ch8>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("only one ROM file can be run, got %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions validates option values that the flag package can not check
func normalizeOptions(opts *options.Program, seed uint64) error {
	if opts.InstructionsPerSecond < 0 {
		return fmt.Errorf("invalid instruction rate %d, use 0 to disable pacing", opts.InstructionsPerSecond)
	}
	if seed == 0 || seed > math.MaxUint32 {
		return fmt.Errorf("invalid seed %d, must be between 1 and %d", seed, uint64(math.MaxUint32))
	}
	opts.Seed = uint32(seed)

	if opts.Scale < 1 || opts.Scale > snapshot.MaxScale {
		return fmt.Errorf("invalid scale %d, must be between 1 and %d", opts.Scale, snapshot.MaxScale)
	}
	if opts.Hold <= 0 {
		return fmt.Errorf("invalid key hold duration %s", opts.Hold)
	}

	if opts.Output != "" {
		if _, err := snapshot.FormatFromFileName(opts.Output); err != nil {
			return fmt.Errorf("output file '%s': %w, valid extensions: %s",
				opts.Output, err, strings.Join([]string{".txt", ".bmp"}, ", "))
		}
	}
	return nil
}

func isFlagSet(flags *flag.FlagSet, name string) bool {
	var set bool
	flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program, seed *uint64) {
	flags.StringVar(&opts.Output, "o", "", "name of a .txt or .bmp file to write the final display to")
	flags.BoolVar(&opts.HighResolution, "hires", false, "use a 128x64 display, also enabled by ROM file names containing 'hires'")
	flags.IntVar(&opts.InstructionsPerSecond, "ips", config.DefaultInstructionsPerSecond, "instructions executed per second, 0 runs unthrottled")
	flags.Uint64Var(&opts.Steps, "steps", 0, "stop after the given number of instructions, 0 runs until the program halts")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal, unthrottled unless -ips is given")
	flags.IntVar(&opts.Scale, "scale", defaultScale, "pixel scale of .bmp snapshots")
	flags.Uint64Var(seed, "seed", config.DefaultSeed, "seed of the random number generator")
	flags.BoolVar(&opts.ShiftUsesVY, "shift-vy", false, "8XY6 and 8XYE shift VY into VX")
	flags.BoolVar(&opts.JumpWithVX, "jump-vx", false, "BNNN jumps to NNN plus VX instead of V0")
	flags.BoolVar(&opts.IncrementOnStore, "increment-i", false, "FX55 and FX65 increment I")
	flags.DurationVar(&opts.Hold, "hold", terminal.DefaultHoldDuration, "how long a key press counts as held")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
