package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/orbitsync/explore"
	"github.com/sarchlab/orbitsync/timefmt"
)

var (
	exploreBands   []string
	exploreWorkers int
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "List evenly spaced configurations that take very long to realign",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bands := make([]timefmt.Band, 0, len(exploreBands))
		for _, name := range exploreBands {
			b, err := timefmt.ParseBand(name)
			if err != nil {
				return err
			}
			bands = append(bands, b)
		}

		results, err := explore.NewExplorer(explore.DefaultGrid(), exploreWorkers).
			Explore(cmd.Context())
		if err != nil {
			return err
		}

		buckets := explore.Bucket(results)
		out := cmd.OutOrStdout()

		for _, b := range bands {
			list := buckets[b]
			fmt.Fprintf(out, "%s: %d configurations\n", b, len(list))

			for _, r := range list {
				fmt.Fprintf(out, "  %d orbits, periods: %vms - %vms, %s\n",
					r.Config.Orbits, r.Config.Min, r.Config.Max, r.Label)
			}
		}

		return nil
	},
}

func init() {
	exploreCmd.Flags().StringSliceVar(&exploreBands, "band",
		[]string{"cosmic", "millennium"}, "bands to list")
	exploreCmd.Flags().IntVar(&exploreWorkers, "workers", 0,
		"number of worker goroutines, 0 uses GOMAXPROCS")

	rootCmd.AddCommand(exploreCmd)
}
