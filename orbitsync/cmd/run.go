package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/orbitsync/config"
	"github.com/sarchlab/orbitsync/datarecording"
	"github.com/sarchlab/orbitsync/monitoring"
	"github.com/sarchlab/orbitsync/simulation"
	"github.com/sarchlab/orbitsync/timing"
)

var (
	runPeriods     string
	runDuration    float64
	runFrameDelta  float64
	runRecord      string
	runMonitorPort int
	runOpen        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless simulation and report alignment events",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}

		if err := applyRunFlags(cmd, c); err != nil {
			return err
		}

		if err := c.Validate(); err != nil {
			return err
		}

		return runSimulation(cmd, c)
	},
}

func init() {
	runCmd.Flags().StringVar(&runPeriods, "periods", "",
		"comma separated periods in milliseconds")
	runCmd.Flags().Float64Var(&runDuration, "duration", 0,
		"simulated time in milliseconds")
	runCmd.Flags().Float64Var(&runFrameDelta, "frame-delta", 0,
		"simulated time between frames in milliseconds")
	runCmd.Flags().StringVar(&runRecord, "record", "",
		"record frames and events into this SQLite file, without extension")
	runCmd.Flags().IntVar(&runMonitorPort, "monitor-port", 0,
		"start the monitoring server on this port, -1 for a random port")
	runCmd.Flags().BoolVar(&runOpen, "open", false,
		"open the monitor in a browser")

	rootCmd.AddCommand(runCmd)
}

func applyRunFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("periods") {
		periods, err := config.ParsePeriods(runPeriods)
		if err != nil {
			return err
		}
		c.Periods = periods
	}

	if flags.Changed("duration") {
		c.Duration = runDuration
	}

	if flags.Changed("frame-delta") {
		c.FrameDelta = runFrameDelta
	}

	if flags.Changed("record") {
		c.RecordPath = runRecord
	}

	if flags.Changed("monitor-port") {
		c.MonitorPort = runMonitorPort
	}

	if flags.Changed("open") {
		c.OpenBrowser = runOpen
	}

	return nil
}

type runSummary struct {
	frames    uint64
	events    uint64
	fullSyncs uint64
	last      simulation.Frame
}

func (s *runSummary) observe(f simulation.Frame) {
	s.frames++
	s.events += uint64(len(f.Events))
	if f.FullSync {
		s.fullSyncs++
	}
	s.last = f
}

func runSimulation(cmd *cobra.Command, c *config.Config) error {
	logger := newLogger(cmd, c)

	session, err := simulation.MakeBuilder().
		WithPeriods(c.Periods...).
		WithEpsilon(c.Epsilon).
		WithReferencePhase(c.ReferencePhase).
		WithLongHistory(c.LongHistory).
		WithShortHistory(c.ShortHistory).
		WithFrameDelta(c.FrameDelta).
		WithHook(simulation.NewLogHook(logger)).
		Build()
	if err != nil {
		return err
	}

	logger.Info("session created",
		"session", session.ID(),
		"periods", session.Periods(),
		"recurrence", session.FormattedPrediction())

	driver := simulation.NewDriver(session, timing.VTimeInMs(c.FrameDelta))
	summary := &runSummary{}
	observers := []func(simulation.Frame){summary.observe}

	if c.RecordPath != "" {
		recorder := datarecording.New(c.RecordPath)
		defer recorder.Close()

		sessionRecorder := datarecording.NewSessionRecorder(recorder, session)
		session.AcceptHook(sessionRecorder)
		observers = append(observers, sessionRecorder.RecordFrame)

		logger.Info("recording", "file", c.RecordPath+".sqlite3")
	}

	// The monitored run is paced in real time so that it can be watched.
	if c.MonitorPort != 0 {
		stop := startMonitor(c, driver, &observers, logger.Warn)
		defer stop()
	}

	driver.OnFrame(func(f simulation.Frame) {
		for _, o := range observers {
			o(f)
		}
	})

	err = driver.Run(cmd.Context(), timing.VTimeInMs(c.Duration))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frames: %s\n", humanize.Comma(int64(summary.frames)))
	fmt.Fprintf(out, "alignment events: %s\n",
		humanize.Comma(int64(summary.events)))
	fmt.Fprintf(out, "full sync events: %s\n",
		humanize.Comma(int64(summary.fullSyncs)))
	fmt.Fprintf(out, "final order parameter: %.6f at %v ms\n",
		summary.last.OrderParameter, float64(summary.last.Time))
	fmt.Fprintf(out, "recurrence: %s\n", session.FormattedPrediction())

	return nil
}

func startMonitor(
	c *config.Config,
	driver *simulation.Driver,
	observers *[]func(simulation.Frame),
	warn func(msg string, args ...any),
) func() {
	port := c.MonitorPort
	if port < 0 {
		port = 0
	}

	monitor := monitoring.NewMonitor().WithPortNumber(port)
	monitor.RegisterDriver(driver)

	total := uint64(c.Duration/c.FrameDelta) + 1
	bar := monitor.CreateProgressBar("Simulation", total)
	pace := time.Duration(c.FrameDelta * float64(time.Millisecond))
	*observers = append(*observers, func(simulation.Frame) {
		bar.IncrementFinished(1)
		time.Sleep(pace)
	})

	url := monitor.StartServer()
	if c.OpenBrowser {
		if err := browser.OpenURL(url); err != nil {
			warn("cannot open browser", "url", url, "err", err)
		}
	}

	return func() {
		monitor.CompleteProgressBar(bar)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = monitor.StopServer(ctx)
	}
}
