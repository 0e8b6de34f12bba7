package cmd

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cambria/academy/apps/clock/config"
	"github.com/cambria/academy/core/hours"
)

func newConfigureCmd(deps *Deps) *cobra.Command {
	var upd config.Config

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save the API URL, token and default program of this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := deps.ConfigDir()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.ConfigFile)
			conf, err := config.Load(path)
			if err != nil {
				return err
			}

			if flag := cmd.Flags().Lookup("api-url"); flag != nil && flag.Changed {
				conf.APIURL = flag.Value.String()
			}
			if flag := cmd.Flags().Lookup("token"); flag != nil && flag.Changed {
				conf.Token = flag.Value.String()
			}
			if cmd.Flags().Changed("program") {
				key := hours.ProgramKey(strings.ToUpper(strings.TrimSpace(upd.Program)))
				if key != "" && !key.IsValid() {
					return errors.Errorf("unknown program %q", key)
				}
				conf.Program = string(key)
			}
			if cmd.Flags().Changed("locate-timeout") {
				conf.LocateTimeout = upd.LocateTimeout
			}

			if err := config.Save(path, conf); err != nil {
				return err
			}
			_, _ = cmd.OutOrStdout().Write([]byte("Saved " + path + "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&upd.Program, "program", "", "Default program")
	cmd.Flags().DurationVar(&upd.LocateTimeout, "locate-timeout", 0, "Position request timeout")
	return cmd
}
