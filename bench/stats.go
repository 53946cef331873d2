// Package bench replays a reduced workload against the LevelDB store and
// summarizes per-block timings.
package bench

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/slices"
)

type BlockResult struct {
	Block    int
	Reads    int
	Hits     int
	Writes   int
	Duration time.Duration
}

type BenchStats struct {
	Blocks int `json:"blocks"`
	Reads  int `json:"reads"`
	Hits   int `json:"hits"`
	Writes int `json:"writes"`
	// timing stats in ms
	BlockMinMs  float64 `json:"block_min_ms"`
	BlockMaxMs  float64 `json:"block_max_ms"`
	BlockMeanMs float64 `json:"block_mean_ms"`
	BlockP01Ms  float64 `json:"block_p01_ms"`
	BlockP10Ms  float64 `json:"block_p10_ms"`
	BlockP25Ms  float64 `json:"block_p25_ms"`
	BlockP50Ms  float64 `json:"block_p50_ms"`
	BlockP75Ms  float64 `json:"block_p75_ms"`
	BlockP90Ms  float64 `json:"block_p90_ms"`
	BlockP99Ms  float64 `json:"block_p99_ms"`
	BlockStdDev float64 `json:"block_std_dev_ms"`
}

type BlockReport struct {
	Block      int     `json:"block"`
	Reads      int     `json:"reads"`
	Hits       int     `json:"hits"`
	Writes     int     `json:"writes"`
	DurationMs float64 `json:"duration_ms"`
}

type JSONReport struct {
	Generated   string        `json:"generated"`
	Workload    string        `json:"workload"`
	SeedTimeMs  float64       `json:"seed_time_ms"`
	InitEntries int           `json:"init_entries"`
	TotalTimeMs float64       `json:"total_time_ms"`
	Stats       BenchStats    `json:"stats"`
	Results     []BlockReport `json:"results"`
}

type BenchmarkStats struct {
	TotalBlocks int
	TotalReads  int
	TotalHits   int
	TotalWrites int
	InitEntries int
	SeedTime    time.Duration
	TotalTime   time.Duration
	MinTime     time.Duration
	MaxTime     time.Duration
	Results     []BlockResult
}

func (bs *BenchmarkStats) AddResult(res BlockResult) {
	bs.TotalBlocks++
	bs.TotalReads += res.Reads
	bs.TotalHits += res.Hits
	bs.TotalWrites += res.Writes
	bs.TotalTime += res.Duration
	bs.Results = append(bs.Results, res)

	if bs.MinTime == 0 || res.Duration < bs.MinTime {
		bs.MinTime = res.Duration
	}
	if res.Duration > bs.MaxTime {
		bs.MaxTime = res.Duration
	}
}

func (bs *BenchmarkStats) sortedTimes() []time.Duration {
	times := make([]time.Duration, len(bs.Results))
	for i := range bs.Results {
		times[i] = bs.Results[i].Duration
	}
	slices.Sort(times)
	return times
}

func (bs *BenchmarkStats) CalculateAverage() time.Duration {
	if bs.TotalBlocks == 0 {
		return 0
	}
	return bs.TotalTime / time.Duration(bs.TotalBlocks)
}

func (bs *BenchmarkStats) CalculateMedian() time.Duration {
	times := bs.sortedTimes()
	n := len(times)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (times[n/2-1] + times[n/2]) / 2
	}
	return times[n/2]
}

// CalculatePercentile interpolates linearly between the closest ranks; p is in [0, 1].
func (bs *BenchmarkStats) CalculatePercentile(p float64) time.Duration {
	times := bs.sortedTimes()
	n := len(times)
	if n == 0 {
		return 0
	}
	index := p * float64(n-1)
	if index == float64(int(index)) {
		return times[int(index)]
	}

	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	weight := index - math.Floor(index)

	return time.Duration(float64(times[lower]) + weight*float64(times[upper]-times[lower]))
}

func (bs *BenchmarkStats) CalculateStandardDeviation() float64 {
	if len(bs.Results) == 0 {
		return 0
	}
	mean := bs.CalculateAverage()
	sum := 0.0
	for _, r := range bs.Results {
		diff := float64(r.Duration - mean)
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(bs.Results)))
}

func ms(d time.Duration) float64 { return float64(d.Nanoseconds()) / 1e6 }

func (bs *BenchmarkStats) GenerateJSONReport(workload string, totalBenchmarkTime time.Duration) *JSONReport {
	stats := BenchStats{
		Blocks:      bs.TotalBlocks,
		Reads:       bs.TotalReads,
		Hits:        bs.TotalHits,
		Writes:      bs.TotalWrites,
		BlockMinMs:  ms(bs.MinTime),
		BlockMaxMs:  ms(bs.MaxTime),
		BlockMeanMs: ms(bs.CalculateAverage()),
		BlockP01Ms:  ms(bs.CalculatePercentile(0.01)),
		BlockP10Ms:  ms(bs.CalculatePercentile(0.1)),
		BlockP25Ms:  ms(bs.CalculatePercentile(0.25)),
		BlockP50Ms:  ms(bs.CalculatePercentile(0.5)),
		BlockP75Ms:  ms(bs.CalculatePercentile(0.75)),
		BlockP90Ms:  ms(bs.CalculatePercentile(0.9)),
		BlockP99Ms:  ms(bs.CalculatePercentile(0.99)),
		BlockStdDev: bs.CalculateStandardDeviation() / 1e6,
	}

	results := make([]BlockReport, len(bs.Results))
	for i, r := range bs.Results {
		results[i] = BlockReport{
			Block:      r.Block,
			Reads:      r.Reads,
			Hits:       r.Hits,
			Writes:     r.Writes,
			DurationMs: ms(r.Duration),
		}
	}

	return &JSONReport{
		Generated:   time.Now().Format(time.RFC3339),
		Workload:    workload,
		SeedTimeMs:  ms(bs.SeedTime),
		InitEntries: bs.InitEntries,
		TotalTimeMs: ms(totalBenchmarkTime),
		Stats:       stats,
		Results:     results,
	}
}

func (bs *BenchmarkStats) DumpMetrics() string {
	hitRate := 0.0
	if bs.TotalReads > 0 {
		hitRate = float64(bs.TotalHits) / float64(bs.TotalReads) * 100
	}
	return fmt.Sprintf(`Replay Results:
  Initial Entries: %d
  Seed Time: %v
  Blocks: %d
  Reads: %d
  Writes: %d
  Read Hit Rate: %.2f%%
  Total Time: %v
  Average Block Time: %v
  Median Block Time: %v
  Min Block Time: %v
  Max Block Time: %v
  P01 Block Time: %v
  P10 Block Time: %v
  P90 Block Time: %v
  P99 Block Time: %v`,
		bs.InitEntries,
		bs.SeedTime,
		bs.TotalBlocks,
		bs.TotalReads,
		bs.TotalWrites,
		hitRate,
		bs.TotalTime,
		bs.CalculateAverage(),
		bs.CalculateMedian(),
		bs.MinTime,
		bs.MaxTime,
		bs.CalculatePercentile(0.01),
		bs.CalculatePercentile(0.1),
		bs.CalculatePercentile(0.9),
		bs.CalculatePercentile(0.99),
	)
}
