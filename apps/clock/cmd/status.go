package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/timer"
)

func newStatusCmd(load func() (*app, error)) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			t := a.newTimer(nil)

			s, running, err := t.Running()
			if err != nil {
				return err
			}
			if !running {
				a.printf("Not clocked in. Last program: %s.\n", t.Program())
				return nil
			}

			name := string(s.ProgramKey)
			if prog, ok := hours.GetProgram(s.ProgramKey); ok {
				name = prog.Name
			}
			a.printf("Clocked in for %s since %s.\n", name, s.StartedAt.Local().Format("Mon Jan 2 15:04"))
			if !watch {
				a.printf("Elapsed: %s\n", formatElapsed(s.Elapsed(timer.NowFunc())))
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = t.Watch(ctx, time.Second, func(elapsed time.Duration) {
				a.printf("\rElapsed: %s", formatElapsed(elapsed))
			})
			a.printf("\n")
			if errors.Cause(err) == timer.ErrNotRunning {
				a.printf("Session ended.\n")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep printing the elapsed time until interrupted")
	return cmd
}

