// Package cmd provides the command-line interface for the stopwatch
// simulator.
package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"
)

// envPrefix prefixes the environment variables that provide flag defaults.
// The flag --trace-db reads SWSIM_TRACE_DB, for example.
const envPrefix = "SWSIM_"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swsim",
	Short: "swsim simulates a digital stopwatch controller cycle by cycle.",
	Long: `swsim simulates a digital stopwatch controller cycle by cycle. ` +
		`It drives the start, stop and reset lines of the device, prints ` +
		`the status and MM:SS time after every clock tick, and can record ` +
		`the run as a SQLite table, a CSV file or a VCD waveform.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadDotEnv(".env"); err != nil {
			return err
		}

		return applyEnvDefaults(cmd.Flags())
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Exit handlers, such as trace flushing, run before the
// process exits.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadDotEnv loads variables from file without overriding the environment. A
// missing file is not an error.
func loadDotEnv(file string) error {
	err := godotenv.Load(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// applyEnvDefaults sets every flag the user did not pass from its
// environment variable, if present.
func applyEnvDefaults(flags *pflag.FlagSet) error {
	var err error

	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}

		value, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		err = flags.Set(f.Name, value)
	})

	return err
}
