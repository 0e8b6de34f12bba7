package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cambria/academy/core/hours"
)

func newStopCmd(load func() (*app, error)) *cobra.Command {
	var pos positionFlags

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Clock out and submit the session for review",
		Long: `Clock out and submit the elapsed time, rounded up to the minute, for review.
If the submission fails the session keeps running and stop can be retried.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			locator, err := pos.locator(cmd)
			if err != nil {
				return err
			}

			sr, err := a.newTimer(locator).Stop(cmd.Context())
			if err != nil {
				return err
			}
			name := string(sr.ProgramKey)
			if prog, ok := hours.GetProgram(sr.ProgramKey); ok {
				name = prog.Name
			}
			a.printf("Clocked out. Submitted %d minutes of %s for review.\n", sr.Minutes, name)
			return nil
		},
	}
	pos.register(cmd)
	return cmd
}
