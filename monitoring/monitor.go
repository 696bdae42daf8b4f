// Package monitoring turns a running simulation into a web server that
// allows external monitoring and control.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/orbitsync/monitoring/web"
	"github.com/sarchlab/orbitsync/simulation"
)

// Monitor exposes a simulation driver over HTTP.
type Monitor struct {
	driver     *simulation.Driver
	portNumber int
	server     *http.Server

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterDriver registers the driver that runs the simulation.
func (m *Monitor) RegisterDriver(d *simulation.Driver) {
	m.driver = d
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.continueRun)
	r.HandleFunc("/api/reset", m.reset)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/order_parameter", m.orderParameter)
	r.HandleFunc("/api/prediction", m.prediction)
	r.HandleFunc("/api/session", m.session)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return url
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) driverOr503(w http.ResponseWriter) bool {
	if m.driver != nil {
		return true
	}

	http.Error(w, "no simulation registered", http.StatusServiceUnavailable)

	return false
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	if !m.driverOr503(w) {
		return
	}

	m.driver.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueRun(w http.ResponseWriter, _ *http.Request) {
	if !m.driverOr503(w) {
		return
	}

	m.driver.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) reset(w http.ResponseWriter, _ *http.Request) {
	if !m.driverOr503(w) {
		return
	}

	m.driver.Reset()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type nowRsp struct {
	Now    float64 `json:"now"`
	Frames uint64  `json:"frames"`
	Paused bool    `json:"paused"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if !m.driverOr503(w) {
		return
	}

	writeJSON(w, nowRsp{
		Now:    float64(m.driver.Now()),
		Frames: m.driver.Frames(),
		Paused: m.driver.IsPaused(),
	})
}

type orderParameterRsp struct {
	Window   string    `json:"window"`
	Capacity int       `json:"capacity"`
	Values   []float64 `json:"values"`
}

func (m *Monitor) orderParameter(w http.ResponseWriter, r *http.Request) {
	if !m.driverOr503(w) {
		return
	}

	window := r.URL.Query().Get("window")
	if window == "" {
		window = "long"
	}

	if window != "long" && window != "short" {
		http.Error(w, fmt.Sprintf(
			"Invalid window: %s. Allowed values are `long` and `short`",
			window), http.StatusBadRequest)
		return
	}

	rsp := orderParameterRsp{Window: window}
	m.driver.Inspect(func(s *simulation.Session) {
		buf := s.Tracker().LongHistory()
		if window == "short" {
			buf = s.Tracker().ShortHistory()
		}

		rsp.Capacity = buf.Capacity()
		rsp.Values = buf.Data()
	})

	writeJSON(w, rsp)
}

type predictionRsp struct {
	Status      string    `json:"status"`
	DurationMs  *float64  `json:"duration_ms"`
	Formatted   string    `json:"formatted"`
	NextResetMs *float64  `json:"next_reset_ms"`
	NextReset   string    `json:"next_reset"`
	Periods     []float64 `json:"periods"`
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

func (m *Monitor) prediction(w http.ResponseWriter, _ *http.Request) {
	if !m.driverOr503(w) {
		return
	}

	now := m.driver.Now()

	var rsp predictionRsp
	m.driver.Inspect(func(s *simulation.Session) {
		p := s.Prediction()
		rsp = predictionRsp{
			Status:      p.Status.String(),
			DurationMs:  finiteOrNil(p.Value()),
			Formatted:   s.FormattedPrediction(),
			NextResetMs: finiteOrNil(s.NextReset(now)),
			NextReset:   s.FormattedReset(now),
			Periods:     s.Periods(),
		}
	})

	writeJSON(w, rsp)
}

func (m *Monitor) session(w http.ResponseWriter, _ *http.Request) {
	if !m.driverOr503(w) {
		return
	}

	m.driver.Inspect(func(s *simulation.Session) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(s)
		serializer.SetMaxDepth(1)
		err := serializer.Serialize(w)
		dieOnErr(err)
	})
}

type fieldReq struct {
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	if !m.driverOr503(w) {
		return
	}

	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil || req.FieldName == "" {
		http.Error(w, "invalid field request", http.StatusBadRequest)
		return
	}

	fields := strings.Split(req.FieldName, ".")

	m.driver.Inspect(func(s *simulation.Session) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(s)
		serializer.SetMaxDepth(1)

		err = serializer.SetEntryPoint(fields)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		err = serializer.Serialize(w)
		dieOnErr(err)
	})
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
