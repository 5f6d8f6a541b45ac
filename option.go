package kernix

import (
	"time"

	"github.com/viant/kernix/service/cpu"
	"github.com/viant/kernix/service/device"
	"github.com/viant/kernix/service/event"
	"github.com/viant/kernix/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customizes the kernel service.
type Option func(s *Service)

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithArenaSize sets the kernel arena size in bytes.
func WithArenaSize(size int) Option {
	return func(s *Service) {
		s.config.Memory.ArenaSize = size
	}
}

// WithMaxProcesses sets the process table capacity.
func WithMaxProcesses(capacity int) Option {
	return func(s *Service) {
		s.config.Process.MaxProcesses = capacity
	}
}

// WithStackSize sets the per-process stack size in bytes.
func WithStackSize(size int) Option {
	return func(s *Service) {
		s.config.Process.StackSize = size
	}
}

// WithQuantum sets the scheduling quantum in ticks.
func WithQuantum(quantum int) Option {
	return func(s *Service) {
		s.config.Scheduler.Quantum = quantum
	}
}

// WithTickInterval sets the wall-clock duration of one kernel tick.
func WithTickInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.config.Scheduler.TickInterval = interval
	}
}

// WithEngine replaces the execution engine the scheduler drives.
func WithEngine(engine cpu.Engine) Option {
	return func(s *Service) {
		s.engine = engine
	}
}

// WithEventService replaces the kernel event service.
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.events = service
	}
}

// WithDevices sets the drivers registered at boot, replacing the default
// console device.
func WithDevices(drivers ...device.Driver) Option {
	return func(s *Service) {
		s.drivers = drivers
	}
}

// WithTracing configures OpenTelemetry tracing for the kernel. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The function is safe to call multiple times; the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter, enabling integrations beyond the built-in stdout exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
