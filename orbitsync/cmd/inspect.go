package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sarchlab/orbitsync/datarecording"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [recording.sqlite3]",
	Short: "Summarize a recording written by run --record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		datarecording.MapTables(reader)
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		for _, table := range reader.ListTables() {
			total, err := datarecording.CountRows(ctx, reader, table)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s: %s rows\n", table, humanize.Comma(int64(total)))
		}

		sessions, err := datarecording.Sessions(ctx, reader)
		if err != nil {
			return err
		}

		for _, id := range sessions {
			if err := printSession(ctx, out, reader, id); err != nil {
				return err
			}
		}

		return nil
	},
}

func printSession(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
	id string,
) error {
	periods, err := datarecording.Periods(ctx, reader, id)
	if err != nil {
		return err
	}

	events, err := datarecording.AlignmentEvents(ctx, reader, id)
	if err != nil {
		return err
	}

	syncs, err := datarecording.FullSyncs(ctx, reader, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "session %s: periods %v ms, %s alignment events\n",
		id, periods, humanize.Comma(int64(len(events))))

	for _, s := range syncs {
		fmt.Fprintf(out, "full sync at %v ms (r = %.6f)\n",
			s.TimeMs, s.OrderParameter)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
