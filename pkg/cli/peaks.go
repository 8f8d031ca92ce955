package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPeaksCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peaks",
		Short: "Query the peak catalog",
	}

	cmd.AddCommand(newPeaksCountCommand(a))
	cmd.AddCommand(newPeaksFindCommand(a))
	return cmd
}

func newPeaksCountCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the total number of known peaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := a.client.PeaksCount(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(count)
			return nil
		},
	}
}

func newPeaksFindCommand(a *app) *cobra.Command {
	var (
		lat, lng    float64
		limit       int
		nameFilter  string
		maxDistance float64
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find peaks near a coordinate, closest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := a.client.FindNearbyPeaks(cmd.Context(), lat, lng, limit, nameFilter, maxDistance)
			if err != nil {
				return err
			}

			if len(candidates) == 0 {
				fmt.Println("No peaks found")
				return nil
			}

			for _, c := range candidates {
				rangeName := ""
				if c.Peak.MountainRange != nil {
					rangeName = ", " + c.Peak.MountainRange.Name
				}
				fmt.Printf("%s (%.0f m%s) - %.0f m away\n", c.Peak.Name, c.Peak.Elevation, rangeName, c.Distance)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (required)")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude (required)")
	cmd.Flags().IntVar(&limit, "limit", 8, "Maximum number of peaks")
	cmd.Flags().StringVar(&nameFilter, "name", "", "Filter peaks by name substring")
	cmd.Flags().Float64Var(&maxDistance, "max-distance", 0, "Maximum distance in meters")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lng")

	return cmd
}
