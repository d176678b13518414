package platform

import (
	"errors"
	"log/slog"
)

// Provider bundles the browser backend.
type Provider struct {
	Browser Browser
}

// Options configures a backend.
type Options struct {
	// ControlURL connects to an already running browser's DevTools
	// endpoint instead of launching one.
	ControlURL string
	// Bin is the browser binary to launch; empty lets the backend pick.
	Bin      string
	Headless bool
	Logger   *slog.Logger
}

// ErrUnsupported is returned when no backend has been registered.
var ErrUnsupported = errors.New("fiberscope: no browser backend registered")

// NewProviderFunc is set by backend packages via init().
// See internal/platform/chrome/init.go for the Chrome registration.
var NewProviderFunc func(opts Options) (*Provider, error)

// NewProvider returns a Provider from the registered backend.
func NewProvider(opts Options) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(opts)
}
