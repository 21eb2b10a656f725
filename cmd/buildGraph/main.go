package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/iammxrn/MRFoundation/internal/report"
)

// graphKey identifies one output image.
type graphKey struct {
	workload string
	cpus     int
}

// samples maps implementation -> concurrency -> ns/op values.
type samples map[string]map[float64][]float64

func main() {
	jsonFile := flag.String("jsonfile", "test-results.json", "Path to JSON file containing test sessions")
	outputPrefix := flag.String("out", "benchmark_graph", "Output graph image filename prefix")
	flag.Parse()

	sessions, err := report.Load(*jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sessions: %v\n", err)
		os.Exit(1)
	}

	groups := groupSamples(sessions)
	keys := make([]graphKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].workload != keys[j].workload {
			return keys[i].workload < keys[j].workload
		}
		return keys[i].cpus < keys[j].cpus
	})

	for _, k := range keys {
		filename := fmt.Sprintf("%s_%s_%d.png", *outputPrefix, k.workload, k.cpus)
		if err := renderGraph(k, groups[k], filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving %s graph for %d CPU(s): %v\n", k.workload, k.cpus, err)
			continue
		}
		fmt.Printf("Graph for %s with %d CPU(s) saved to %s\n", k.workload, k.cpus, filename)
	}
}

// groupSamples groups results by workload and CPU count, converting each run
// to nanoseconds per operation. Runs without operations are skipped.
func groupSamples(sessions []report.FullReport) map[graphKey]samples {
	out := make(map[graphKey]samples)
	for _, session := range sessions {
		for _, b := range session.Benchmarks {
			dur, err := time.ParseDuration(b.ActualElapsed)
			if err != nil || b.NumMessagesConsumed == 0 {
				continue
			}
			workload := b.Workload
			if workload == "" {
				workload = report.WorkloadQueue
			}
			k := graphKey{workload: workload, cpus: session.CPUs()}
			if out[k] == nil {
				out[k] = make(samples)
			}
			if out[k][b.Implementation] == nil {
				out[k][b.Implementation] = make(map[float64][]float64)
			}
			x := float64(b.NumProducers + b.NumConsumers)
			nsPerOp := float64(dur.Nanoseconds()) / float64(b.NumMessagesConsumed)
			out[k][b.Implementation][x] = append(out[k][b.Implementation][x], nsPerOp)
		}
	}
	return out
}

func renderGraph(k graphKey, implMap samples, filename string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: 5%%-avg-min / Median / 5%%-avg-max vs. Concurrency for %d CPU(s)", k.workload, k.cpus)
	p.X.Label.Text = "Goroutines"
	p.Y.Label.Text = "Time per Op [log scale]"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = logTicks{}

	// Dark theme.
	p.BackgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p.Title.TextStyle.Color = white
	p.X.Label.TextStyle.Color = white
	p.Y.Label.TextStyle.Color = white
	p.X.Color = white
	p.Y.Color = white
	p.X.Tick.Label.Color = white
	p.Y.Tick.Label.Color = white
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Color = white

	p.Add(plotter.NewGrid())

	// Concurrency values become evenly spaced categories.
	concurrencySet := make(map[float64]struct{})
	for _, implData := range implMap {
		for conc := range implData {
			concurrencySet[conc] = struct{}{}
		}
	}
	concValues := make([]float64, 0, len(concurrencySet))
	for val := range concurrencySet {
		concValues = append(concValues, val)
	}
	sort.Float64s(concValues)

	concMapping := make(map[float64]float64, len(concValues))
	ticks := categoryTicks{}
	for i, val := range concValues {
		concMapping[val] = float64(i)
		ticks.positions = append(ticks.positions, float64(i))
		ticks.labels = append(ticks.labels, strconv.FormatFloat(val, 'f', -1, 64))
	}
	p.X.Tick.Marker = ticks

	implNames := make([]string, 0, len(implMap))
	for name := range implMap {
		implNames = append(implNames, name)
	}
	sort.Strings(implNames)

	colors := plotutil.SoftColors
	shapes := []draw.GlyphDrawer{
		draw.CircleGlyph{},
		draw.SquareGlyph{},
		draw.TriangleGlyph{},
		draw.CrossGlyph{},
		draw.PlusGlyph{},
	}

	// Offset implementations inside a category so error bars do not overlap.
	const offsetRange = 0.4
	offsetStep := offsetRange / float64(len(implNames))
	startOffset := -offsetRange/2 + offsetStep/2

	for i, impl := range implNames {
		stats := buildStats(implMap[impl])
		if len(stats) == 0 {
			continue
		}
		for j := range stats {
			stats[j].concurrency = concMapping[stats[j].orig] + startOffset + float64(i)*offsetStep
		}
		sort.Slice(stats, func(a, b int) bool {
			return stats[a].concurrency < stats[b].concurrency
		})
		sp := statsPoints(stats)
		c := colors[i%len(colors)]

		line, err := plotter.NewLine(sp)
		if err != nil {
			return fmt.Errorf("line for %s: %w", impl, err)
		}
		line.Color = c

		points, err := plotter.NewScatter(sp)
		if err != nil {
			return fmt.Errorf("scatter for %s: %w", impl, err)
		}
		points.GlyphStyle.Radius = vg.Points(5)
		points.Color = c
		points.Shape = shapes[i%len(shapes)]

		yErrBars, err := plotter.NewYErrorBars(sp)
		if err != nil {
			return fmt.Errorf("error bars for %s: %w", impl, err)
		}
		yErrBars.Color = c

		p.Add(line, points, yErrBars)
		p.Legend.Add(impl, line, points)
	}

	return p.Save(12*vg.Inch, 9*vg.Inch, filename)
}

// concurrencyStats holds "5%-avg-min", median, and "5%-avg-max" for one concurrency level.
type concurrencyStats struct {
	concurrency float64 // plotted x, category index plus offset
	orig        float64 // goroutine count
	min         float64
	median      float64
	max         float64
}

// statsPoints implements XYer and YErrorer so we can plot lines and error bars.
type statsPoints []concurrencyStats

func (s statsPoints) Len() int                { return len(s) }
func (s statsPoints) XY(i int) (x, y float64) { return s[i].concurrency, s[i].median }
func (s statsPoints) YError(i int) (low, high float64) {
	return s[i].median - s[i].min, s[i].max - s[i].median
}

// categoryTicks implements a categorical X axis.
type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

// logTicks labels plot.LogTicks with durations.
type logTicks struct{}

func (logTicks) Ticks(min, max float64) []plot.Tick {
	if min <= 0 {
		min = 1e-9
	}
	ticks := plot.LogTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatNs(ticks[i].Value)
		}
	}
	return ticks
}

// buildStats computes "average of bottom 5%", median, and "average of top 5%".
func buildStats(concurrencyMap map[float64][]float64) []concurrencyStats {
	var out []concurrencyStats
	for x, vals := range concurrencyMap {
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		out = append(out, concurrencyStats{
			concurrency: x,
			orig:        x,
			min:         averageOfRange(vals, 0.0, 0.05),
			median:      median(vals),
			max:         averageOfRange(vals, 0.95, 1.0),
		})
	}
	return out
}

// averageOfRange returns the average of sortedVals in [startFrac, endFrac) of its length,
// falling back to the median when the range holds no values.
func averageOfRange(sortedVals []float64, startFrac, endFrac float64) float64 {
	n := len(sortedVals)
	if n == 0 {
		return 0
	}
	startIndex := max(int(float64(n)*startFrac), 0)
	endIndex := min(int(float64(n)*endFrac), n)
	if startIndex >= endIndex {
		return median(sortedVals)
	}
	sum := 0.0
	for _, v := range sortedVals[startIndex:endIndex] {
		sum += v
	}
	return sum / float64(endIndex-startIndex)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return 0.5 * (sorted[mid-1] + sorted[mid])
}

// formatNs formats a nanoseconds value in ns, µs, ms, or s.
func formatNs(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.0fns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.1fµs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.1fms", ns/1e6)
	default:
		return fmt.Sprintf("%.2fs", ns/1e9)
	}
}
