package config

import (
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 4096, cfg.MemorySize)
	assert.Equal(t, 0x200, cfg.ProgramStart)
	assert.Equal(t, 64, cfg.DisplayWidth)
	assert.Equal(t, 32, cfg.DisplayHeight)
	assert.Equal(t, 0x50, cfg.FontStart)
	assert.Equal(t, 0xA0, cfg.FontEnd())
	assert.Equal(t, time.Second/700, cfg.InstructionDelay)
	assert.Equal(t, 60, cfg.TimerFrequency)
	assert.Equal(t, Quirks{}, cfg.Quirks)
	assert.Equal(t, StandardFont[:], cfg.Font)
}

func TestDefault_FontIsCopied(t *testing.T) {
	cfg := Default()
	cfg.Font[0] = 0x00

	assert.Equal(t, byte(0xF0), StandardFont[0])
	assert.Equal(t, byte(0xF0), Default().Font[0])
}

func TestHighResolution(t *testing.T) {
	cfg := HighResolution()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 128, cfg.DisplayWidth)
	assert.Equal(t, 64, cfg.DisplayHeight)
	assert.Equal(t, Default().MemorySize, cfg.MemorySize)
}

func TestInstructionDelayForRate(t *testing.T) {
	assert.Equal(t, time.Duration(0), InstructionDelayForRate(0))
	assert.Equal(t, time.Duration(0), InstructionDelayForRate(-5))
	assert.Equal(t, time.Second/60, InstructionDelayForRate(60))
	assert.Equal(t, time.Millisecond, InstructionDelayForRate(1000))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *Config)
		errMsg string
	}{
		{"memory too small", func(cfg *Config) { cfg.MemorySize = 0x100 }, "memory size"},
		{"memory too large", func(cfg *Config) { cfg.MemorySize = MaxMemorySize + 1 }, "memory size"},
		{"program start beyond memory", func(cfg *Config) { cfg.ProgramStart = cfg.MemorySize }, "program start"},
		{"short font", func(cfg *Config) { cfg.Font = cfg.Font[:10] }, "font has 10 bytes"},
		{"font outside memory", func(cfg *Config) { cfg.FontStart = -1 }, "font region"},
		{"font overlapping program", func(cfg *Config) { cfg.FontStart = 0x1F0 }, "overlaps program area"},
		{"font inside program", func(cfg *Config) { cfg.FontStart = 0x300 }, "overlaps program area"},
		{"zero width", func(cfg *Config) { cfg.DisplayWidth = 0 }, "display size"},
		{"negative height", func(cfg *Config) { cfg.DisplayHeight = -1 }, "display size"},
		{"negative delay", func(cfg *Config) { cfg.InstructionDelay = -time.Second }, "instruction delay"},
		{"zero timer frequency", func(cfg *Config) { cfg.TimerFrequency = 0 }, "timer frequency"},
		{"zero seed", func(cfg *Config) { cfg.Seed = 0 }, "seed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestValidate_FontAtMemoryStart(t *testing.T) {
	cfg := Default()
	cfg.FontStart = 0
	assert.NoError(t, cfg.Validate())

	cfg.FontStart = cfg.ProgramStart - len(cfg.Font)
	assert.NoError(t, cfg.Validate())
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}
