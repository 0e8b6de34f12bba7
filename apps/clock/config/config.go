// Package config reads and writes the per-device settings of the clock CLI.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/cambria/academy/core/geofence"
)

const (
	// AppName names the directory under the user config dir.
	AppName    = "cambria-clock"
	ConfigFile = "config.toml"
)

// Config is stored as TOML in <user config dir>/cambria-clock/config.toml.
type Config struct {
	// APIURL is the base URL of the academy API, e.g. "https://academy.example.com".
	APIURL string `toml:"api_url"`
	// Token is the bearer token issued by the identity provider.
	Token string `toml:"token"`
	// Program is the program used when none is given to start.
	Program string `toml:"program"`
	// LocateTimeout bounds a position request, e.g. "10s".
	LocateTimeout time.Duration `toml:"locate_timeout"`
}

func DefaultConfig() Config {
	return Config{
		APIURL:        "http://localhost:8000",
		LocateTimeout: geofence.DefaultLocateTimeout,
	}
}

// Dir returns the application directory, creating it when missing.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locating user config dir")
	}
	dir := filepath.Join(configDir, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrap(err, "creating config dir")
	}
	return dir, nil
}

// Load reads the config at path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	conf := DefaultConfig()
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, errors.Wrapf(err, "reading %s", path)
	}
	if conf.LocateTimeout <= 0 {
		conf.LocateTimeout = geofence.DefaultLocateTimeout
	}
	return conf, nil
}

// Save writes conf to path atomically.
func Save(path string, conf Config) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrap(err, "creating config file")
	}
	if err := toml.NewEncoder(f).Encode(conf); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "encoding config")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "writing config")
	}
	return errors.Wrap(os.Rename(tmpPath, path), "renaming config file")
}
