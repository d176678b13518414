package chrome

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/platform"
)

//go:embed snapshot.js
var snapshotJS string

//go:embed overlay.js
var overlayJS string

// bindingName is the page binding the overlay reports events through.
const bindingName = "__fiberscope_event"

// Page is a Chrome tab.
type Page struct {
	page *rod.Page
	log  *slog.Logger

	mu      sync.Mutex
	binding bool
}

func newPage(p *rod.Page, log *slog.Logger) *Page {
	return &Page{page: p, log: log.With("target", string(p.TargetID))}
}

// TargetID returns the DevTools target id.
func (p *Page) TargetID() string { return string(p.page.TargetID) }

// URL returns the tab's current URL.
func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close closes the tab.
func (p *Page) Close() error {
	return p.page.Close()
}

func (p *Page) snapshot(ctx context.Context, full bool) ([]byte, error) {
	res, err := p.page.Context(ctx).Eval(snapshotJS, full)
	if err != nil {
		return nil, fmt.Errorf("evaluate snapshot: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

// Layout captures node rectangles only.
func (p *Page) Layout(ctx context.Context) (*dom.Document, error) {
	data, err := p.snapshot(ctx, false)
	if err != nil {
		return nil, err
	}
	return decodeLayout(data)
}

// Snapshot captures nodes, styles, the instance graph and stream sources.
func (p *Page) Snapshot(ctx context.Context) (*platform.Snapshot, error) {
	data, err := p.snapshot(ctx, true)
	if err != nil {
		return nil, err
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	p.log.Debug("snapshot captured",
		"nodes", len(snap.Doc.Nodes),
		"instances", len(snap.Graph.ByID),
		"buffers", len(snap.Sources.StreamBuffers))
	return snap, nil
}

// CaptureRegion screenshots a document region.
func (p *Page) CaptureRegion(ctx context.Context, selector string, b model.Bounds) ([]byte, error) {
	data, err := p.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      b.X,
			Y:      b.Y,
			Width:  b.Width,
			Height: b.Height,
			Scale:  1,
		},
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", selector, err)
	}
	return data, nil
}

// Install adds the event binding, then the overlay and its listeners.
func (p *Page) Install(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.binding {
		if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(p.page); err != nil {
			return fmt.Errorf("add binding: %w", err)
		}
		p.binding = true
	}
	if _, err := p.page.Context(ctx).Eval(overlayJS); err != nil {
		return fmt.Errorf("install overlay: %w", err)
	}
	return nil
}

func (p *Page) overlayCall(js string, args ...any) error {
	_, err := p.page.Eval(js, args...)
	return err
}

type jsRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func toJSRect(r model.Rect) jsRect {
	return jsRect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
}

// ShowHover moves the hover highlight to r.
func (p *Page) ShowHover(r model.Rect) error {
	return p.overlayCall(`(r) => window.__fiberscopeOverlay && window.__fiberscopeOverlay.hover(r)`, toJSRect(r))
}

// HideHover hides the hover highlight.
func (p *Page) HideHover() error {
	return p.overlayCall(`() => window.__fiberscopeOverlay && window.__fiberscopeOverlay.unhover()`)
}

// ShowSelection draws a selection box for each of rects.
func (p *Page) ShowSelection(rects []model.Rect) error {
	js := make([]jsRect, len(rects))
	for i, r := range rects {
		js[i] = toJSRect(r)
	}
	return p.overlayCall(`(rs) => window.__fiberscopeOverlay && window.__fiberscopeOverlay.select(rs)`, js)
}

// ClearSelection removes every selection box.
func (p *Page) ClearSelection() error {
	return p.overlayCall(`() => window.__fiberscopeOverlay && window.__fiberscopeOverlay.clear()`)
}

// Teardown removes the overlay and its listeners from the page.
func (p *Page) Teardown() error {
	return p.overlayCall(`() => window.__fiberscopeOverlay && window.__fiberscopeOverlay.teardown()`)
}

// Listen delivers overlay events until ctx is done.
func (p *Page) Listen(ctx context.Context, handle func(platform.Event)) error {
	wait := p.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != bindingName {
			return
		}
		ev, err := parseEvent(e.Payload)
		if err != nil {
			p.log.Warn("bad overlay event", "error", err)
			return
		}
		handle(ev)
	})
	wait()
	return ctx.Err()
}

func parseEvent(payload string) (platform.Event, error) {
	var ev platform.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("parse event: %w", err)
	}
	switch ev.Type {
	case platform.EventMove, platform.EventClick, platform.EventDrag,
		platform.EventClear, platform.EventConfirm, platform.EventCancel, platform.EventLayout:
		return ev, nil
	}
	return ev, fmt.Errorf("unknown event type %q", ev.Type)
}

var _ platform.Page = (*Page)(nil)
