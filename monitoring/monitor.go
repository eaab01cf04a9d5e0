// Package monitoring serves the state of running simulations over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/pagesim/monitoring/web"
	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/simulation"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// EngineStatus is the copy of an engine state served by the monitor.
type EngineStatus struct {
	Name       string                `json:"name"`
	Config     simulation.Config     `json:"config"`
	Stats      simulation.Stats      `json:"stats"`
	LastAccess simulation.AccessInfo `json:"last_access"`
	Done       bool                  `json:"done"`
}

type statsDomain interface {
	sim.Hookable
	Name() string
	Stats() simulation.Stats
}

// Monitor can turn a simulation into a server and allows external monitoring
// of the simulation. It is a hook that copies the engine state on every
// access, so that the server never reads the engine itself.
type Monitor struct {
	portNumber int
	profileFor time.Duration

	lock    sync.Mutex
	engines []*EngineStatus
	byName  map[string]*EngineStatus

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		profileFor: time.Second,
		byName:     make(map[string]*EngineStatus),
	}
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

// RegisterEngine makes the monitor follow an engine.
func (m *Monitor) RegisterEngine(e *simulation.Engine) {
	m.lock.Lock()

	if _, exists := m.byName[e.Name()]; exists {
		m.lock.Unlock()
		log.Panicf("engine %s is already monitored", e.Name())
	}

	status := &EngineStatus{
		Name:   e.Name(),
		Config: e.Config(),
		Stats:  e.Stats(),
	}
	m.engines = append(m.engines, status)
	m.byName[e.Name()] = status

	m.lock.Unlock()

	e.AcceptHook(m)
}

// Func copies the state of the engine that invokes the hook.
func (m *Monitor) Func(ctx sim.HookCtx) {
	domain, ok := ctx.Domain.(statsDomain)
	if !ok {
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	status, ok := m.byName[domain.Name()]
	if !ok {
		return
	}

	switch ctx.Pos {
	case simulation.HookPosAccess:
		status.Stats = domain.Stats()
		status.LastAccess = ctx.Detail.(simulation.AccessInfo)
	case simulation.HookPosRunEnd:
		status.Stats = ctx.Detail.(simulation.Stats)
		status.Done = true
	}
}

// EngineStatus returns a copy of the latest state of an engine.
func (m *Monitor) EngineStatus(name string) (EngineStatus, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	status, ok := m.byName[name]
	if !ok {
		return EngineStatus{}, false
	}

	return *status, true
}

func (m *Monitor) engineStatuses() []EngineStatus {
	m.lock.Lock()
	defer m.lock.Unlock()

	statuses := make([]EngineStatus, 0, len(m.engines))
	for _, s := range m.engines {
		statuses = append(statuses, *s)
	}

	return statuses
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
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

// Router returns the routes served by the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	fServer := http.FileServer(web.GetAssets())
	r.HandleFunc("/api/engines", m.listEngines)
	r.HandleFunc("/api/stats/{name}", m.engineDetails)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns its address.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("starting monitor: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	r := m.Router()
	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	return url, nil
}

// OpenInBrowser opens the monitor page.
func OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

func (m *Monitor) listEngines(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.engineStatuses())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) engineDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	status, ok := m.EngineStatus(name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Engine not found"))
		dieOnErr(err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&status)
	serializer.SetMaxDepth(3)

	if field := r.URL.Query().Get("field"); field != "" {
		err := serializer.SetEntryPoint(strings.Split(field, "."))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Error: %s", err)

			return
		}
	}

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		b.Lock()
		bars = append(bars, ProgressBar{
			ID:        b.ID,
			Name:      b.Name,
			StartTime: b.StartTime,
			Total:     b.Total,
			Finished:  b.Finished,
		})
		b.Unlock()
	}
	m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(bars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
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

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(m.profileFor)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
