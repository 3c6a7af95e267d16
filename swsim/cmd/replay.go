package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NasaHari/bitsilicon-dd-assignments/datarecording"
	"github.com/NasaHari/bitsilicon-dd-assignments/report"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
	"github.com/NasaHari/bitsilicon-dd-assignments/tracing"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Print the status lines of a run recorded with --trace-db.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("sqlite")
		color, _ := cmd.Flags().GetBool("color")

		var styler report.Styler = report.PlainStyler{}
		if color {
			styler = report.NewColorStyler()
		}

		return replay(cmd.Context(), file, styler, cmd.OutOrStdout())
	},
}

func init() {
	replayCmd.Flags().String("sqlite", "", "recorded SQLite file")
	replayCmd.Flags().Bool("color", false, "color the status lines")
	_ = replayCmd.MarkFlagRequired("sqlite")

	rootCmd.AddCommand(replayCmd)
}

func replay(
	ctx context.Context,
	file string,
	styler report.Styler,
	out io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reader, err := datarecording.NewReader(file)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tracing.TableTicks, stopwatch.Snapshot{})

	rows, _, err := reader.Query(ctx, tracing.TableTicks,
		datarecording.QueryParams{OrderBy: "Cycle"})
	if err != nil {
		return err
	}

	var last uint64

	for _, row := range rows {
		s := row.(*stopwatch.Snapshot)
		fmt.Fprintln(out, styler.Render(s.Status, s.Minutes, s.Seconds))
		last = s.Cycle
	}

	fmt.Fprintf(out, "Total clock cycles: %d\n", last)

	return nil
}
