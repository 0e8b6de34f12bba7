package cmd

import (
	"github.com/spf13/cobra"
)

func newLocationCmd(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "location",
		Short: "Show the campus location clock-ins are checked against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			loc, err := a.api.Location(cmd.Context())
			if err != nil {
				return err
			}

			enforcement := "disabled"
			if loc.IsEnabled {
				enforcement = "enabled"
			}
			a.printf("%s\n", loc.Label)
			a.printf("  Center: %.6f, %.6f\n", loc.Lat, loc.Lng)
			a.printf("  Radius: %.0fm\n", loc.RadiusMeters)
			a.printf("  Enforcement: %s\n", enforcement)
			return nil
		},
	}
}
