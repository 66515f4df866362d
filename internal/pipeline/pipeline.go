// Package pipeline orchestrates loading, running and snapshotting a ROM.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/fileprocessor"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrogolib/log"
)

// Pipeline orchestrates the complete emulation workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
}

// Result describes a finished run.
type Result struct {
	Machine *machine.Machine
	Steps   uint64
	Halted  bool
}

// New creates a new emulation pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
	}
}

// Execute runs the ROM of the options on the terminal, or without any host in
// headless mode, and writes the requested snapshot afterwards. A run stopped
// from the keyboard or by the context returns context.Canceled after the
// snapshot was written.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) error {
	var (
		result *Result
		runErr error
	)

	if opts.Headless {
		result, runErr = p.ExecuteWithHost(ctx, opts, headlessHost{})
	} else {
		result, runErr = p.executeInTerminal(ctx, opts)
	}
	if result == nil {
		return runErr
	}

	p.printSummary(opts, result)

	if opts.Output != "" && (runErr == nil || errors.Is(runErr, context.Canceled)) {
		if err := fileprocessor.WriteSnapshot(p.logger, opts, result.Machine.Display()); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}
	return runErr
}

// ExecuteWithHost loads the ROM of the options and runs it with the given host.
// The result is nil if the machine could not be created or loaded.
func (p *Pipeline) ExecuteWithHost(ctx context.Context, opts options.Program, host runner.Host) (*Result, error) {
	cfg := p.detector.Detect(opts)
	applyOptions(&cfg, opts)

	m, err := machine.New(p.logger, cfg, machine.WithTrace(opts.Trace))
	if err != nil {
		return nil, fmt.Errorf("creating machine: %w", err)
	}
	if err := m.LoadProgramFromPath(opts.Input); err != nil {
		return nil, err
	}

	p.printInfo(opts, cfg)

	r := runner.New(p.logger, m, host, runner.WithMaxSteps(opts.Steps))
	err = r.Run(ctx)
	result := &Result{
		Machine: m,
		Steps:   r.Steps(),
		Halted:  r.Halted(),
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return result, fmt.Errorf("running '%s': %w", opts.Input, err)
	}
	return result, err
}

func (p *Pipeline) executeInTerminal(ctx context.Context, opts options.Program) (*Result, error) {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	host := terminal.New(p.logger, os.Stdin, os.Stdout, opts.Hold, stop)
	if err := host.Start(); err != nil {
		return nil, fmt.Errorf("starting terminal: %w", err)
	}

	result, err := p.ExecuteWithHost(ctx, opts, host)
	if closeErr := host.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return result, err
}

// applyOptions maps the program options onto the detected configuration profile.
func applyOptions(cfg *config.Config, opts options.Program) {
	cfg.InstructionDelay = config.InstructionDelayForRate(opts.InstructionsPerSecond)
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	cfg.Quirks = config.Quirks{
		IncrementOnStore: opts.IncrementOnStore,
		ShiftUsesVY:      opts.ShiftUsesVY,
		JumpWithVX:       opts.JumpWithVX,
	}
}

// printInfo prints information about the ROM being run.
func (p *Pipeline) printInfo(opts options.Program, cfg config.Config) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Running Chip-8 ROM",
		log.String("file", opts.Input),
		log.Int("width", cfg.DisplayWidth),
		log.Int("height", cfg.DisplayHeight),
		log.Int("ips", opts.InstructionsPerSecond),
	)
}

// printSummary prints statistics of a finished run.
func (p *Pipeline) printSummary(opts options.Program, result *Result) {
	if unknown := result.Machine.UnknownOpcodes(); unknown > 0 {
		p.logger.Warn("Program executed unknown opcodes", log.Int("count", int(unknown)))
	}
	if opts.Quiet {
		return
	}

	p.logger.Info("Run finished",
		log.Int("steps", int(result.Steps)),
		log.Hex("pc", result.Machine.PC()),
		log.Int("lit_pixels", result.Machine.Display().Lit()),
	)
	if result.Halted {
		p.logger.Info("Program counter left memory")
	}
}

// headlessHost presents nothing and never reports pressed keys.
type headlessHost struct{}

func (headlessHost) Keys() [machine.KeyCount]bool {
	return [machine.KeyCount]bool{}
}

func (headlessHost) Present(*machine.Display) error {
	return nil
}
