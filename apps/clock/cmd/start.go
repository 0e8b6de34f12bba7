package cmd

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cambria/academy/core/hours"
)

func newStartCmd(load func() (*app, error)) *cobra.Command {
	var (
		program string
		pos     positionFlags
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Clock in",
		Long: `Clock in for a program. When the academy enforces the campus location,
the current position must be given with --lat and --lng.

Examples:
  clock start --program NAIL_TECH --lat 41.7365 --lng -111.8575`,
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
			t := a.newTimer(locator)

			key := hours.ProgramKey(strings.ToUpper(strings.TrimSpace(program)))
			if key == "" {
				key = hours.ProgramKey(strings.ToUpper(a.conf.Program))
			}
			if key == "" {
				key = t.Program()
			}
			prog, ok := hours.GetProgram(key)
			if !ok {
				return errors.Errorf("unknown program %q", key)
			}

			s, err := t.Start(cmd.Context(), key)
			if err != nil {
				return err
			}
			a.printf("Clocked in for %s at %s.\n", prog.Name, s.StartedAt.Local().Format("15:04:05"))
			return nil
		},
	}
	cmd.Flags().StringVar(&program, "program", "", "Program to log hours for (default: last used)")
	pos.register(cmd)
	return cmd
}
