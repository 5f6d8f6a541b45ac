package kernix

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the kernel configuration. It
// can be populated from JSON or YAML; the zero-value is useful since all
// nested fields inherit their package defaults through DefaultConfig.
type Config struct {
	Memory    MemoryConfig    `json:"memory" yaml:"memory"`
	Process   ProcessConfig   `json:"process" yaml:"process"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
}

type MemoryConfig struct {
	ArenaSize int `json:"arenaSize" yaml:"arenaSize"`
}

type ProcessConfig struct {
	MaxProcesses int `json:"maxProcesses" yaml:"maxProcesses"`
	StackSize    int `json:"stackSize" yaml:"stackSize"`
}

type SchedulerConfig struct {
	Quantum      int           `json:"quantum" yaml:"quantum"`
	TickInterval time.Duration `json:"tickInterval" yaml:"tickInterval"`
}

// DefaultConfig returns a Config populated with the kernel defaults.
func DefaultConfig() *Config {
	return &Config{
		Memory:    MemoryConfig{ArenaSize: 1 << 20},
		Process:   ProcessConfig{MaxProcesses: 256, StackSize: 4096},
		Scheduler: SchedulerConfig{Quantum: 10, TickInterval: 10 * time.Millisecond},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Memory.ArenaSize <= 0 {
		return fmt.Errorf("memory.arenaSize must be > 0")
	}
	if c.Process.MaxProcesses <= 0 {
		return fmt.Errorf("process.maxProcesses must be > 0")
	}
	if c.Process.StackSize <= 0 {
		return fmt.Errorf("process.stackSize must be > 0")
	}
	if c.Scheduler.Quantum <= 0 {
		return fmt.Errorf("scheduler.quantum must be > 0")
	}
	if c.Scheduler.TickInterval <= 0 {
		return fmt.Errorf("scheduler.tickInterval must be > 0")
	}
	return nil
}

// LoadConfig reads and decodes a YAML configuration from the supplied URL.
// Unset fields fall back to their defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
