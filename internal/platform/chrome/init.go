package chrome

import "github.com/mj1618/fiberscope/internal/platform"

func init() {
	platform.NewProviderFunc = func(opts platform.Options) (*platform.Provider, error) {
		return &platform.Provider{Browser: NewBrowser(opts)}, nil
	}
}
