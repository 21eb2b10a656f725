package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/iammxrn/MRFoundation/internal/report"
	"github.com/iammxrn/MRFoundation/internal/testbench"
)

// Config and ReadHeavyConfig are aliases for the testbench workload shapes.
// This allows other programs to import the workload configuration without
// pulling in the entire testbench package.
type (
	Config          = testbench.Config
	ReadHeavyConfig = testbench.ReadHeavyConfig
)

// Bench holds the settings of one benchmark session.
type Bench struct {
	Iterations      int
	MaxCPU          int // 0 tests the common CPU counts up to runtime.NumCPU()
	Duration        time.Duration
	Capacity        int
	Workload        string
	HighConcurrency bool
	JSONExport      bool
	JSONFile        string
	Progress        bool
}

// DefaultBench returns the settings used when no flags are given.
func DefaultBench() Bench {
	return Bench{
		Iterations: 5,
		Duration:   5 * time.Second,
		Capacity:   1024,
		Workload:   report.WorkloadQueue,
		JSONFile:   "test-results.json",
	}
}

// Validate reports the first invalid setting.
func (b Bench) Validate() error {
	switch {
	case b.Iterations < 1:
		return errors.New("iterations must be at least 1")
	case b.MaxCPU < 0:
		return errors.New("cpu must not be negative")
	case b.Duration <= 0:
		return errors.New("duration must be positive")
	case b.Capacity < 1:
		return errors.New("capacity must be at least 1")
	case b.JSONExport && b.JSONFile == "":
		return errors.New("json export needs a file name")
	}
	if b.Workload != report.WorkloadQueue && b.Workload != report.WorkloadReadHeavy {
		return fmt.Errorf("unknown workload %q", b.Workload)
	}
	return nil
}

// CPUSettings returns the GOMAXPROCS values to test on a machine with
// trueCPUs logical CPUs.
func (b Bench) CPUSettings(trueCPUs int) []int {
	if b.MaxCPU > 0 {
		return []int{min(b.MaxCPU, trueCPUs)}
	}
	commonCPUs := []int{1, 2, 3, 4, 6, 8, 12, 16, 32, 48, 56, 64, 96, 128, 192, 256, 384, 512}
	var out []int
	for _, v := range commonCPUs {
		if v <= trueCPUs {
			out = append(out, v)
		}
	}
	return out
}

// ConcurrencyConfigs returns the producer/consumer mixes for the queue workload.
func (b Bench) ConcurrencyConfigs() []Config {
	configs := []Config{
		{NumProducers: 2, NumConsumers: 2},
		{NumProducers: 10, NumConsumers: 10},
		{NumProducers: 50, NumConsumers: 50},
	}
	if b.HighConcurrency {
		configs = append(configs,
			Config{NumProducers: 100, NumConsumers: 100},
			Config{NumProducers: 250, NumConsumers: 250},
			Config{NumProducers: 500, NumConsumers: 500},
		)
	}
	return configs
}

// ReadHeavyConfigs returns the reader/writer mixes for the read-heavy workload.
func (b Bench) ReadHeavyConfigs() []ReadHeavyConfig {
	configs := []ReadHeavyConfig{
		{NumReaders: 4, NumWriters: 1},
		{NumReaders: 16, NumWriters: 1},
		{NumReaders: 64, NumWriters: 4},
	}
	if b.HighConcurrency {
		configs = append(configs,
			ReadHeavyConfig{NumReaders: 256, NumWriters: 8},
			ReadHeavyConfig{NumReaders: 512, NumWriters: 16},
		)
	}
	return configs
}
