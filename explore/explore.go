// Package explore sweeps grids of evenly spaced oscillator groups and
// classifies every group by how long it takes to realign.
package explore

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/sarchlab/orbitsync/recurrence"
	"github.com/sarchlab/orbitsync/timefmt"
)

// A Range is an inclusive sequence Low, Low+Step, ... not above High.
type Range struct {
	Low, High, Step float64
}

// Values lists the values of the range. A non-positive step yields only Low.
func (r Range) Values() []float64 {
	if r.Step <= 0 || r.High < r.Low {
		return []float64{r.Low}
	}

	n := int(math.Floor((r.High-r.Low)/r.Step+1e-9)) + 1
	values := make([]float64, n)
	for i := range values {
		values[i] = r.Low + float64(i)*r.Step
	}

	return values
}

// A Grid is the set of configurations to sweep.
type Grid struct {
	MinOrbits, MaxOrbits int
	MinPeriod, MaxPeriod Range
}

// DefaultGrid returns the grid of the cosmic configuration list: 2 to 15
// orbits, shortest period 500 to 1000 ms and longest period 1000 to 3000 ms,
// both in 100 ms steps.
func DefaultGrid() Grid {
	return Grid{
		MinOrbits: 2,
		MaxOrbits: 15,
		MinPeriod: Range{Low: 500, High: 1000, Step: 100},
		MaxPeriod: Range{Low: 1000, High: 3000, Step: 100},
	}
}

// A Config is one evenly spaced group of oscillators.
type Config struct {
	Orbits int
	Min    float64
	Max    float64
}

// Periods returns the periods of the group rounded to 0.1 ms.
func (c Config) Periods() []float64 {
	return Periods(c.Orbits, c.Min, c.Max)
}

// Periods spreads n periods evenly from minPeriod to maxPeriod and rounds
// each to 0.1 ms.
func Periods(n int, minPeriod, maxPeriod float64) []float64 {
	div := float64(n - 1)
	if n < 2 {
		div = 1
	}

	periods := make([]float64, n)
	for i := range periods {
		p := minPeriod + (maxPeriod-minPeriod)*(float64(i)/div)
		periods[i] = math.Round(p*10) / 10
	}

	return periods
}

// Configs lists the configurations of the grid. Pairs with the shortest
// period not below the longest are skipped.
func (g Grid) Configs() []Config {
	var configs []Config

	for n := g.MinOrbits; n <= g.MaxOrbits; n++ {
		for _, lo := range g.MinPeriod.Values() {
			for _, hi := range g.MaxPeriod.Values() {
				if lo >= hi {
					continue
				}

				configs = append(configs, Config{Orbits: n, Min: lo, Max: hi})
			}
		}
	}

	return configs
}

// A Result is a configuration with its recurrence.
type Result struct {
	Config     Config
	Prediction recurrence.Prediction
	Band       timefmt.Band
	Label      string
}

// Evaluate computes the recurrence of one configuration.
func Evaluate(c Config) Result {
	p := recurrence.Classify(recurrence.Recurrence(c.Periods()))
	v := p.Value()

	return Result{
		Config:     c,
		Prediction: p,
		Band:       timefmt.BandOf(v),
		Label:      timefmt.FormatResetTime(v),
	}
}

// An Explorer evaluates a grid on a pool of goroutines.
type Explorer struct {
	grid    Grid
	workers int
}

// NewExplorer creates an explorer over the grid. A non-positive worker
// count uses GOMAXPROCS.
func NewExplorer(grid Grid, workers int) *Explorer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Explorer{grid: grid, workers: workers}
}

// Explore evaluates every configuration of the grid. Results are in the
// order of Grid.Configs.
func (e *Explorer) Explore(ctx context.Context) ([]Result, error) {
	configs := e.grid.Configs()
	results := make([]Result, len(configs))

	indexChan := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				results[i] = Evaluate(configs[i])
			}
		}()
	}

	var err error
feed:
	for i := range configs {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case indexChan <- i:
		}
	}

	close(indexChan)
	wg.Wait()

	if err != nil {
		return nil, err
	}

	return results, nil
}

// Find returns the results that fall into the band.
func (e *Explorer) Find(ctx context.Context, band timefmt.Band) ([]Result, error) {
	results, err := e.Explore(ctx)
	if err != nil {
		return nil, err
	}

	return Bucket(results)[band], nil
}

// Bucket groups results by band, keeping their order.
func Bucket(results []Result) map[timefmt.Band][]Result {
	buckets := make(map[timefmt.Band][]Result)
	for _, r := range results {
		buckets[r.Band] = append(buckets[r.Band], r)
	}
	return buckets
}
