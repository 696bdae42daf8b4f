package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/orbitsync/recurrence"
	"github.com/sarchlab/orbitsync/timefmt"
)

var (
	predictPeriods string
	predictCount   int
	predictMin     float64
	predictMax     float64
)

var predictCmd = &cobra.Command{
	Use:   "predict [period...]",
	Short: "Predict when a group of oscillators realigns",
	Long: `Predict when a group of oscillators realigns. Periods are given ` +
		`in milliseconds as arguments, with --periods, or in the config. ` +
		`With --count the group is spread evenly from --min to --max.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var p recurrence.Prediction

		if predictCount > 0 {
			p = recurrence.Classify(recurrence.PredictSystemRestart(
				predictCount, predictMin, predictMax))
		} else {
			periods, err := parsePeriodArgs(args, predictPeriods)
			if err != nil {
				return err
			}

			if periods == nil {
				c, err := loadConfig()
				if err != nil {
					return err
				}
				periods = c.Periods
			}

			p = recurrence.NewPredictor().Predict(periods)
		}

		out := cmd.OutOrStdout()
		switch p.Status {
		case recurrence.StatusNone:
			return fmt.Errorf("no recurrence: %w", p.Err)
		case recurrence.StatusUnbounded:
			fmt.Fprintf(out, "recurrence: %s\n", timefmt.Unbounded)
		default:
			fmt.Fprintf(out, "recurrence: %s (%v ms)\n",
				timefmt.Format(p.Duration), p.Duration)
		}

		fmt.Fprintf(out, "band: %s\n", timefmt.BandOf(p.Value()))

		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictPeriods, "periods", "",
		"comma separated periods in milliseconds")
	predictCmd.Flags().IntVar(&predictCount, "count", 0,
		"number of evenly spaced oscillators")
	predictCmd.Flags().Float64Var(&predictMin, "min", 1000,
		"shortest period of the evenly spaced group")
	predictCmd.Flags().Float64Var(&predictMax, "max", 3000,
		"longest period of the evenly spaced group")

	rootCmd.AddCommand(predictCmd)
}
