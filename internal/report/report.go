package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Workload names stored in BenchmarkResult.Workload.
const (
	WorkloadQueue     = "queue"
	WorkloadReadHeavy = "readheavy"
)

// BenchmarkResult holds results for one test run.
//
// For the read-heavy workload producers are writers, consumers are readers,
// NumMessages counts writes and NumMessagesConsumed counts all operations.
type BenchmarkResult struct {
	Implementation      string  `json:"implementation"`
	Workload            string  `json:"workload"`
	Strategy            string  `json:"strategy"`
	NumProducers        int     `json:"num_producers"`
	NumConsumers        int     `json:"num_consumers"`
	NumMessages         int64   `json:"num_messages"`          // produced count
	NumMessagesConsumed int64   `json:"num_messages_consumed"` // consumed count
	TestDuration        string  `json:"test_duration"`         // e.g. "5s"
	ActualElapsed       string  `json:"actual_elapsed"`        // measured time
	Throughput          float64 `json:"throughput_msgs_sec"`   // based on consumed count
	Timestamp           int64   `json:"timestamp"`
	GoVersion           string  `json:"go_version"`
	DeadlockDetection   bool    `json:"deadlock_detection,omitempty"`
}

// SystemInfo holds system information.
type SystemInfo struct {
	NumCPU            int     `json:"num_cpu"`
	TrueCPU           int     `json:"true_cpu,omitempty"`
	SimulatedCPUCount int     `json:"simulated_cpu_count,omitempty"`
	CPUModel          string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz       float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH            string  `json:"go_arch"`
	TotalMemory       uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents a complete test session.
type FullReport struct {
	SessionTime string            `json:"session_time"`
	SystemInfo  SystemInfo        `json:"system_info"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

// CPUs returns the GOMAXPROCS value the session ran with.
func (r FullReport) CPUs() int {
	if r.SystemInfo.SimulatedCPUCount != 0 {
		return r.SystemInfo.SimulatedCPUCount
	}
	return r.SystemInfo.NumCPU
}

// Load reads all sessions stored in path.
func Load(path string) ([]FullReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("unmarshal %q: %w", path, err)
	}
	return sessions, nil
}

// Append adds sessions to the ones already stored in path, creating the file
// if it does not exist.
func Append(path string, sessions []FullReport) error {
	previous, err := Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	updated := append(previous, sessions...)
	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// GatherSystemInfo collects basic CPU and memory details. Fields gopsutil
// cannot determine on the host are left empty.
func GatherSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU: runtime.NumCPU(),
		GOARCH: runtime.GOARCH,
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// ImplMeta describes an implementation in the markdown table.
type ImplMeta struct {
	Package  string
	Features []string
}

// MarkdownTable writes a summary of the last session to w, sorted by
// throughput, best first.
func MarkdownTable(w io.Writer, sessions []FullReport, meta map[string]ImplMeta) error {
	if len(sessions) == 0 {
		return errors.New("no sessions found")
	}
	last := sessions[len(sessions)-1]

	rows := make([]BenchmarkResult, len(last.Benchmarks))
	copy(rows, last.Benchmarks)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Throughput > rows[j].Throughput
	})

	fmt.Fprintln(w, "## Last Session Benchmark Summary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Implementation           | Package         | Workload   | Features                    | Concurrency | Throughput (ops/sec) |")
	fmt.Fprintln(w, "|--------------------------|-----------------|------------|-----------------------------|-------------|----------------------|")
	for _, r := range rows {
		m := meta[r.Implementation]
		fmt.Fprintf(w, "| %-24s | %-15s | %-10s | %-27s | %5d/%-5d | %20.0f |\n",
			r.Implementation, m.Package, r.Workload, strings.Join(m.Features, ", "),
			r.NumProducers, r.NumConsumers, r.Throughput)
	}
	return nil
}
