package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/orbitsync/timefmt"
)

var formatCmd = &cobra.Command{
	Use:   "format [milliseconds...]",
	Short: "Format durations the way the countdown and the prediction display them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, a := range args {
			ms, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", a, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
				a, timefmt.Format(ms), timefmt.FormatResetTime(ms),
				timefmt.BandOf(ms))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
}
