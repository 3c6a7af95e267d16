package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/NasaHari/bitsilicon-dd-assignments/driver"
	"github.com/NasaHari/bitsilicon-dd-assignments/report"
	"github.com/NasaHari/bitsilicon-dd-assignments/simulation"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
	"github.com/NasaHari/bitsilicon-dd-assignments/timing"
)

type runConfig struct {
	TickDelay   time.Duration
	Freq        float64
	Script      string
	Color       bool
	Verbose     bool
	TraceDB     string
	TraceCSV    string
	VCD         string
	Monitor     bool
	MonitorPort int
	OpenBrowser bool
	SyncReset   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a stimulus script, the reference run by default.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := runConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		return runSimulation(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	f := runCmd.Flags()
	f.Duration("delay", time.Second, "wall-clock pause after every tick, 0 runs at full speed")
	f.Float64("freq", 0, "clock frequency in Hz, overrides --delay with one period per tick")
	f.String("script", "", "YAML stimulus script, the reference run if empty")
	f.Bool("color", false, "color the status lines")
	f.BoolP("verbose", "v", false, "log every tick and driver event to stderr")
	f.String("trace-db", "", "record every tick into <path>.sqlite3")
	f.String("trace-csv", "", "write every tick to a CSV file")
	f.String("vcd", "", "write a VCD waveform")
	f.Bool("monitor", false, "serve the monitoring page while running")
	f.Int("monitor-port", 0, "monitoring port, random if 0")
	f.Bool("open-browser", false, "open the monitoring page in a browser")
	f.Bool("sync-reset", false, "sample the master reset on clock edges only")

	rootCmd.AddCommand(runCmd)
}

func runConfigFromFlags(cmd *cobra.Command) (runConfig, error) {
	f := cmd.Flags()
	cfg := runConfig{}

	var errs []error
	collect := func(err error) {
		errs = append(errs, err)
	}

	var err error
	cfg.TickDelay, err = f.GetDuration("delay")
	collect(err)
	cfg.Freq, err = f.GetFloat64("freq")
	collect(err)
	cfg.Script, err = f.GetString("script")
	collect(err)
	cfg.Color, err = f.GetBool("color")
	collect(err)
	cfg.Verbose, err = f.GetBool("verbose")
	collect(err)
	cfg.TraceDB, err = f.GetString("trace-db")
	collect(err)
	cfg.TraceCSV, err = f.GetString("trace-csv")
	collect(err)
	cfg.VCD, err = f.GetString("vcd")
	collect(err)
	cfg.Monitor, err = f.GetBool("monitor")
	collect(err)
	cfg.MonitorPort, err = f.GetInt("monitor-port")
	collect(err)
	cfg.OpenBrowser, err = f.GetBool("open-browser")
	collect(err)
	cfg.SyncReset, err = f.GetBool("sync-reset")
	collect(err)

	return cfg, errors.Join(errs...)
}

func loadRunScript(path string) (driver.Script, error) {
	if path == "" {
		return driver.ReferenceScript(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return driver.Script{}, err
	}
	defer file.Close()

	s, err := driver.LoadScript(file)
	if err != nil {
		return driver.Script{}, fmt.Errorf("%s: %w", path, err)
	}

	if s.Name == "" {
		s.Name = path
	}

	return s, nil
}

func newLogger(verbose bool, errOut io.Writer) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}

	return log.New(errOut, "swsim: ", log.Ltime|log.Lmicroseconds)
}

func simulationBuilder(
	cfg runConfig,
	script driver.Script,
	out, errOut io.Writer,
) simulation.Builder {
	logger := newLogger(cfg.Verbose, errOut)

	driverBuilder := driver.MakeBuilder().
		WithTickDelay(cfg.TickDelay).
		WithOutput(out).
		WithLogger(logger)

	if cfg.Freq != 0 {
		freq := timing.Freq(cfg.Freq) * timing.Hz
		driverBuilder = driverBuilder.WithFreq(freq)
		logger.Printf("clock %s, run lasts %d cycles", freq, script.TotalCycles())
	}

	if cfg.Color {
		driverBuilder = driverBuilder.WithStyler(report.NewColorStyler())
	}

	b := simulation.MakeBuilder().
		WithSpec(stopwatch.Spec{AsyncMasterReset: !cfg.SyncReset}).
		WithDriver(driverBuilder).
		WithOutputFileName(cfg.TraceDB).
		WithCSVTrace(cfg.TraceCSV).
		WithVCDTrace(cfg.VCD)

	if cfg.Verbose {
		b = b.WithTickLogger(logger)
	}

	if cfg.Monitor {
		b = b.WithMonitoring().
			WithMonitorPort(cfg.MonitorPort).
			WithBrowser(cfg.OpenBrowser).
			WithMonitorLogger(log.New(errOut, "", 0))
	}

	return b
}

func runSimulation(cfg runConfig, out, errOut io.Writer) (err error) {
	script, err := loadRunScript(cfg.Script)
	if err != nil {
		return err
	}

	sim, err := simulationBuilder(cfg, script, out, errOut).Build()
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, sim.Terminate())
	}()

	return sim.Run(script)
}
