// Package chrome implements the platform interfaces on top of a Chrome
// DevTools connection.
package chrome

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/mj1618/fiberscope/internal/platform"
)

// navigationTimeout bounds page load when opening a URL.
const navigationTimeout = 30 * time.Second

// Browser is a lazily connected Chrome instance.
type Browser struct {
	opts platform.Options
	log  *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewBrowser returns a browser that connects on first use.
func NewBrowser(opts platform.Options) *Browser {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Browser{opts: opts, log: opts.Logger}
}

func (b *Browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	wsURL := b.opts.ControlURL
	if wsURL == "" {
		l := launcher.New().Headless(b.opts.Headless)
		if b.opts.Bin != "" {
			l = l.Bin(b.opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		wsURL = u
		b.lnch = l
		b.log.Info("launched chrome", "url", wsURL, "headless", b.opts.Headless)
	} else {
		b.log.Info("connecting to chrome", "url", wsURL)
	}

	rb := rod.New().ControlURL(wsURL)
	if err := rb.Connect(); err != nil {
		if b.lnch != nil {
			b.lnch.Kill()
			b.lnch = nil
		}
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	b.browser = rb
	return rb, nil
}

// Open creates a tab, navigates it to opts.URL and waits for the load
// event.
func (b *Browser) Open(ctx context.Context, opts platform.OpenOptions) (platform.Page, error) {
	rb, err := b.connect()
	if err != nil {
		return nil, err
	}
	rp, err := rb.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}

	if opts.Width > 0 && opts.Height > 0 {
		err := rp.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			b.log.Warn("set viewport failed", "error", err)
		}
	}

	if opts.URL != "" {
		navCtx, cancel := context.WithTimeout(ctx, navigationTimeout)
		defer cancel()
		if err := rp.Context(navCtx).Navigate(opts.URL); err != nil {
			_ = rp.Close()
			return nil, fmt.Errorf("navigate %s: %w", opts.URL, err)
		}
		if err := rp.Context(navCtx).WaitLoad(); err != nil {
			b.log.Warn("wait load timeout", "url", opts.URL, "error", err)
		}
	}
	return newPage(rp, b.log), nil
}

// Close disconnects and, if the browser was launched here, kills it.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	if b.browser != nil {
		if b.lnch != nil {
			err = b.browser.Close()
		}
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Kill()
		b.lnch = nil
	}
	return err
}
