// Package cmd implements the commands of the clock CLI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cambria/academy/apps/clock/client"
	"github.com/cambria/academy/apps/clock/config"
	"github.com/cambria/academy/apps/clock/store"
	"github.com/cambria/academy/core/geofence"
	"github.com/cambria/academy/core/timer"
)

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd(DefaultDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what every command needs: the device config and a timer wired to the API.
type app struct {
	deps  *Deps
	dir   string
	conf  config.Config
	store *store.FileStore
	api   *client.Client
}

type globalFlags struct {
	apiURL string
	token  string
}

func NewRootCmd(deps *Deps) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "clock",
		Short: "Clock in and out of training hours",
		Long: `clock tracks a training session on this device and submits it to the academy
for review when you clock out. Settings are stored in config.toml under the user
config directory; the running session survives restarts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Academy API base URL (overrides config)")
	root.PersistentFlags().StringVar(&flags.token, "token", "", "Bearer token (overrides config)")

	load := func() (*app, error) {
		return loadApp(deps, flags)
	}
	root.AddCommand(
		newStartCmd(load),
		newStopCmd(load),
		newStatusCmd(load),
		newLocationCmd(load),
		newConfigureCmd(deps),
	)
	return root
}

func loadApp(deps *Deps, flags globalFlags) (*app, error) {
	dir, err := deps.ConfigDir()
	if err != nil {
		return nil, err
	}
	conf, err := config.Load(filepath.Join(dir, config.ConfigFile))
	if err != nil {
		return nil, err
	}
	if flags.apiURL != "" {
		conf.APIURL = flags.apiURL
	}
	if flags.token != "" {
		conf.Token = flags.token
	}
	return &app{
		deps:  deps,
		dir:   dir,
		conf:  conf,
		store: store.NewFileStore(dir),
		api:   client.New(conf.APIURL, conf.Token, deps.HTTPClient),
	}, nil
}

func (a *app) newTimer(locator geofence.Locator) *timer.Timer {
	return timer.New(a.store, locator, a.api, a.api, a.conf.LocateTimeout)
}

func (a *app) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.deps.Stdout, format, args...)
}

// positionFlags supply the device position. Without both coordinates the device has no location capability.
type positionFlags struct {
	lat, lng float64
}

func (pf *positionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&pf.lat, "lat", 0, "Current latitude")
	cmd.Flags().Float64Var(&pf.lng, "lng", 0, "Current longitude")
}

func (pf *positionFlags) locator(cmd *cobra.Command) (geofence.Locator, error) {
	latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
	if latSet != lngSet {
		return nil, errors.New("--lat and --lng must be given together")
	}
	if !latSet {
		return nil, nil
	}
	pos := geofence.Position{Lat: pf.lat, Lng: pf.lng}
	return geofence.LocatorFunc(func(context.Context) (geofence.Position, error) {
		return pos, nil
	}), nil
}

func formatElapsed(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
