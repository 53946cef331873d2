// Package report renders per-block workload and replay figures as HTML charts.
package report

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ChenxingLi/evm-io-tracker/bench"
	"github.com/ChenxingLi/evm-io-tracker/log"
	"github.com/ChenxingLi/evm-io-tracker/types"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Summary is the per-block task breakdown of a workload.
type Summary struct {
	FirstBlock int
	Reads      []int
	Writes     []int
}

func Summarize(w types.Workload, firstBlock int) Summary {
	s := Summary{FirstBlock: firstBlock, Reads: make([]int, len(w)), Writes: make([]int, len(w))}
	for i, block := range w {
		s.Reads[i], s.Writes[i] = block.Counts()
	}
	return s
}

func (s Summary) labels() []string {
	out := make([]string, len(s.Reads))
	for i := range out {
		out[i] = strconv.Itoa(s.FirstBlock + i)
	}
	return out
}

func setupTaskChart(s Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Storage Workload",
			Subtitle: fmt.Sprintf("Read and write tasks per block, %d blocks", len(s.Reads)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	reads := make([]opts.BarData, len(s.Reads))
	writes := make([]opts.BarData, len(s.Writes))
	for i := range s.Reads {
		reads[i] = opts.BarData{Value: s.Reads[i]}
		writes[i] = opts.BarData{Value: s.Writes[i]}
	}
	bar.SetXAxis(s.labels()).
		AddSeries("reads", reads).
		AddSeries("writes", writes).
		SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "tasks"}))
	return bar
}

func setupReplayChart(stats *bench.BenchmarkStats, firstBlock int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Replay Time",
			Subtitle: "Milliseconds spent applying each block",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	x := make([]string, len(stats.Results))
	data := make([]opts.LineData, len(stats.Results))
	for i, r := range stats.Results {
		x[i] = strconv.Itoa(firstBlock + r.Block)
		data[i] = opts.LineData{Value: float64(r.Duration.Microseconds()) / 1000}
	}
	line.SetXAxis(x).AddSeries("block time (ms)", data)
	return line
}

// Render writes an HTML page with the task chart and, when stats is not nil,
// the replay timing chart.
func Render(w io.Writer, s Summary, stats *bench.BenchmarkStats) error {
	page := components.NewPage()
	page.AddCharts(setupTaskChart(s))
	if stats != nil {
		page.AddCharts(setupReplayChart(stats, s.FirstBlock))
	}
	return page.Render(w)
}

// Serve renders the page on every request to addr until the server fails.
func Serve(addr string, s Summary, stats *bench.BenchmarkStats) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(rw http.ResponseWriter, req *http.Request) {
		if err := Render(rw, s, stats); err != nil {
			log.Warn(log.CLIMonitoring, "Render failed", "err", err)
		}
	})
	log.Info(log.CLIMonitoring, "Serving workload chart", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
