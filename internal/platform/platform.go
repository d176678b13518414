package platform

import (
	"context"

	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/fiber"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/stream"
)

// Snapshot is a full capture of a page: its rendered nodes, the component
// instance graph attached to them and the stream payload sources.
type Snapshot struct {
	Doc            *dom.Document
	Graph          *fiber.Graph
	Sources        stream.PageSources
	RuntimeVersion string
}

// PageReader captures page state.
type PageReader interface {
	// Layout captures rendered nodes and their rectangles only. It is
	// cheap enough to call whenever the layout changes.
	Layout(ctx context.Context) (*dom.Document, error)

	// Snapshot captures everything an extraction needs.
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Capturer captures screenshots.
type Capturer interface {
	// CaptureRegion returns PNG bytes of the document region b. selector
	// identifies the element the region was derived from and is used for
	// logging only.
	CaptureRegion(ctx context.Context, selector string, b model.Bounds) ([]byte, error)
}

// Overlay renders the inspector's hover and selection highlights. Every
// element it adds to the page carries dom.OverlayMarker.
type Overlay interface {
	// Install adds the overlay and pointer listeners to the page.
	Install(ctx context.Context) error
	ShowHover(r model.Rect) error
	HideHover() error
	ShowSelection(rects []model.Rect) error
	ClearSelection() error
	// Teardown removes everything Install added.
	Teardown() error
}

// EventSource delivers operator interactions.
type EventSource interface {
	// Listen calls handle for every event until ctx is done.
	Listen(ctx context.Context, handle func(Event)) error
}

// Page is an open browser tab.
type Page interface {
	PageReader
	Capturer
	Overlay
	EventSource
	TargetID() string
	URL() string
	Close() error
}

// Browser opens pages.
type Browser interface {
	Open(ctx context.Context, opts OpenOptions) (Page, error)
	Close() error
}
