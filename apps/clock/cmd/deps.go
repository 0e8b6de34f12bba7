package cmd

import (
	"io"
	"net/http"
	"os"

	"github.com/cambria/academy/apps/clock/config"
)

// Deps holds the external dependencies of the commands so tests can replace them.
type Deps struct {
	Stdout     io.Writer
	Stderr     io.Writer
	ConfigDir  func() (string, error)
	HTTPClient *http.Client // nil means a default client
}

func DefaultDeps() *Deps {
	return &Deps{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		ConfigDir: config.Dir,
	}
}
