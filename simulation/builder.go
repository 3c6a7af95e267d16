package simulation

import (
	"errors"
	"log"
	"os"

	"github.com/rs/xid"

	"github.com/NasaHari/bitsilicon-dd-assignments/datarecording"
	"github.com/NasaHari/bitsilicon-dd-assignments/driver"
	"github.com/NasaHari/bitsilicon-dd-assignments/monitoring"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
	"github.com/NasaHari/bitsilicon-dd-assignments/tracing"
)

// ErrMonitorPortWithoutMonitor is returned when a monitor port is set while
// monitoring is off.
var ErrMonitorPortWithoutMonitor = errors.New(
	"simulation: monitor port cannot be set when monitoring is disabled")

// Builder can be used to build a simulation.
type Builder struct {
	deviceName  string
	spec        stopwatch.Spec
	driver      driver.Builder
	monitorOn   bool
	monitorPort int
	openBrowser bool
	monitorLog  *log.Logger
	dbPath      string
	csvPath     string
	vcdPath     string
	tickLog     *log.Logger
}

// MakeBuilder creates a new builder. Monitoring and recording are off.
func MakeBuilder() Builder {
	return Builder{
		deviceName: "Stopwatch",
		spec:       stopwatch.Defaults(),
		driver:     driver.MakeBuilder(),
		monitorLog: log.New(os.Stderr, "", 0),
	}
}

// WithSpec sets the device configuration.
func (b Builder) WithSpec(spec stopwatch.Spec) Builder {
	b.spec = spec
	return b
}

// WithDriver sets how the device is clocked and reported. A progress
// tracker set here is replaced when monitoring is on.
func (b Builder) WithDriver(d driver.Builder) Builder {
	b.driver = d
	return b
}

// WithMonitoring serves the monitoring page while the simulation runs.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page once it is served.
func (b Builder) WithBrowser(open bool) Builder {
	b.openBrowser = open
	return b
}

// WithMonitorLogger sets where the monitor reports its address.
func (b Builder) WithMonitorLogger(l *log.Logger) Builder {
	b.monitorLog = l
	return b
}

// WithOutputFileName records every tick into <filename>.sqlite3. "auto"
// picks a unique name.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.dbPath = filename
	return b
}

// WithCSVTrace writes every tick to a CSV file.
func (b Builder) WithCSVTrace(path string) Builder {
	b.csvPath = path
	return b
}

// WithVCDTrace writes a waveform of the run.
func (b Builder) WithVCDTrace(path string) Builder {
	b.vcdPath = path
	return b
}

// WithTickLogger logs every tick to l.
func (b Builder) WithTickLogger(l *log.Logger) Builder {
	b.tickLog = l
	return b
}

func (b Builder) parametersMustBeValid() error {
	if !b.monitorOn && b.monitorPort != 0 {
		return ErrMonitorPortWithoutMonitor
	}

	return nil
}

// Build builds the simulation. On error, everything opened so far is
// closed again.
func (b Builder) Build() (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	s := &Simulation{id: xid.New().String()}

	s.device = stopwatch.MakeBuilder().WithSpec(b.spec).Build(b.deviceName)

	driverBuilder := b.driver
	if b.monitorOn {
		driverBuilder = driverBuilder.WithProgressTracker(s)
	}

	d, err := driverBuilder.Build(s.device)
	if err != nil {
		return nil, err
	}

	s.driver = d

	if err := b.attachTracers(s); err != nil {
		return nil, errors.Join(err, s.Terminate())
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor().
			WithPortNumber(b.monitorPort).
			WithBrowser(b.openBrowser).
			WithLogger(b.monitorLog)
		s.monitor.RegisterTarget(s.driver)

		if _, err := s.monitor.StartServer(); err != nil {
			return nil, errors.Join(err, s.Terminate())
		}
	}

	return s, nil
}

func (b Builder) attachTracers(s *Simulation) error {
	if b.tickLog != nil {
		s.RegisterTracer(tracing.NewLogTracer(b.tickLog))
	}

	if b.dbPath != "" {
		path := b.dbPath
		if path == "auto" {
			path = "stopwatch_sim_" + s.id
		}

		recorder, err := datarecording.New(path)
		if err != nil {
			return err
		}

		s.dataRecorder = recorder
		s.closers = append(s.closers, recorder)

		tracer, err := tracing.NewDBTracer(recorder)
		if err != nil {
			return err
		}

		s.RegisterTracer(tracer)
	}

	if b.csvPath != "" {
		file, err := os.Create(b.csvPath)
		if err != nil {
			return err
		}

		s.closers = append(s.closers, file)
		s.RegisterTracer(tracing.NewCSVTracer(file))
	}

	if b.vcdPath != "" {
		file, err := os.Create(b.vcdPath)
		if err != nil {
			return err
		}

		s.closers = append(s.closers, file)
		s.RegisterTracer(tracing.NewVCDTracer(file, "1ns"))
	}

	return nil
}
