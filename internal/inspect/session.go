package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/shots"
	"github.com/mj1618/fiberscope/internal/spatial"
)

// TimestampFormat is the layout of Extraction.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// SessionPage is the part of a page a session drives.
type SessionPage interface {
	platform.PageReader
	platform.Capturer
	platform.Overlay
	URL() string
}

// Session holds the interaction state of one inspected page: the latest
// layout, the hovered element and the current selection. Its methods are
// safe to call from the page's event goroutine and from the caller
// concurrently.
type Session struct {
	id       string
	cfg      Config
	page     SessionPage
	pipeline *Pipeline
	log      *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	layout     *dom.Document
	hover      *dom.Node
	selection  []Selection
	inFlight   bool
	generation uint64
}

// NewSession creates a session for page. store may be nil to disable
// screenshots.
func NewSession(id string, page SessionPage, cfg Config, store *shots.Store) *Session {
	cfg.defaults()
	return &Session{
		id:       id,
		cfg:      cfg,
		page:     page,
		pipeline: NewPipeline(cfg, page, store),
		log:      cfg.Logger.With("session", id),
		now:      time.Now,
	}
}

// ID returns the page target the session belongs to.
func (s *Session) ID() string { return s.id }

// Pipeline returns the session's extraction pipeline.
func (s *Session) Pipeline() *Pipeline { return s.pipeline }

// Refresh captures the page layout used to resolve pointer events. The
// current selection is carried over to the new layout by node id.
func (s *Session) Refresh(ctx context.Context) error {
	doc, err := s.page.Layout(ctx)
	if err != nil {
		return fmt.Errorf("capture layout: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = doc
	s.hover = nil
	if len(s.selection) == 0 {
		return nil
	}
	rects := make([]model.Rect, 0, len(s.selection))
	for i, sel := range s.selection {
		if n := doc.Node(sel.Node.ID); n != nil {
			s.selection[i].Node = n
		}
		rects = append(rects, s.selection[i].Node.Rect)
	}
	s.overlay("show selection", s.page.ShowSelection(rects))
	return nil
}

// Hover moves the hover highlight to the element under the point. It
// reports whether an element was hit.
func (s *Session) Hover(x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := spatial.ResolveAtPoint(s.layout, x, y)
	if n == nil {
		if s.hover != nil {
			s.hover = nil
			s.overlay("hide hover", s.page.HideHover())
		}
		return false
	}
	if n != s.hover {
		s.hover = n
		s.overlay("show hover", s.page.ShowHover(n.Rect))
	}
	return true
}

// Click replaces the selection with the element under the point.
func (s *Session) Click(x, y float64) (model.SelectedTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := spatial.ResolveAtPoint(s.layout, x, y)
	if n == nil {
		return model.SelectedTarget{}, false
	}
	sel := Selection{Node: n, Target: BuildTarget(n)}
	s.replaceSelection([]Selection{sel})
	return sel.Target, true
}

// Drag replaces the selection with the elements intersecting the
// rectangle spanned by the two corners. A drag that selects nothing leaves
// the current selection alone.
func (s *Session) Drag(x1, y1, x2, y2 float64) []model.SelectedTarget {
	s.mu.Lock()
	defer s.mu.Unlock()

	hits := spatial.ResolveInRectangle(s.layout, x1, y1, x2, y2, s.cfg.MinSelectionPixels)
	if len(hits) == 0 {
		return nil
	}
	sel := make([]Selection, len(hits))
	targets := make([]model.SelectedTarget, len(hits))
	for i, h := range hits {
		sel[i] = Selection{Node: h.Node, Target: BuildTarget(h.Node)}
		targets[i] = sel[i].Target
	}
	s.replaceSelection(sel)
	return targets
}

// replaceSelection clears the overlay, swaps the selection and shows it.
// Callers hold s.mu.
func (s *Session) replaceSelection(sel []Selection) {
	s.overlay("clear selection", s.page.ClearSelection())
	s.selection = sel
	rects := make([]model.Rect, len(sel))
	for i, x := range sel {
		rects[i] = x.Node.Rect
	}
	s.overlay("show selection", s.page.ShowSelection(rects))
	s.log.Debug("selection changed", "count", len(sel))
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
	s.overlay("clear selection", s.page.ClearSelection())
}

// Selection returns the targets currently selected.
func (s *Session) Selection() []model.SelectedTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SelectedTarget, len(s.selection))
	for i, sel := range s.selection {
		out[i] = sel.Target
	}
	return out
}

// Dispatch applies a pointer or layout event. Confirm and cancel events
// are left to the caller and reported as unhandled.
func (s *Session) Dispatch(ctx context.Context, ev platform.Event) (bool, error) {
	switch ev.Type {
	case platform.EventMove:
		s.Hover(ev.X, ev.Y)
	case platform.EventClick:
		s.Click(ev.X, ev.Y)
	case platform.EventDrag:
		s.Drag(ev.X, ev.Y, ev.X2, ev.Y2)
	case platform.EventClear:
		s.ClearSelection()
	case platform.EventLayout:
		if err := s.Refresh(ctx); err != nil {
			return true, err
		}
	default:
		return false, nil
	}
	return true, nil
}

// Confirm extracts every selected element from a fresh snapshot. Only one
// extraction runs at a time. If the session is cancelled while the
// extraction runs its result is discarded.
func (s *Session) Confirm(ctx context.Context) (*model.Extraction, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrExtractionInFlight
	}
	if len(s.selection) == 0 {
		s.mu.Unlock()
		return nil, ErrNoSelection
	}
	s.inFlight = true
	gen := s.generation
	sel := make([]Selection, len(s.selection))
	copy(sel, s.selection)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	snap, err := s.page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture snapshot: %w", err)
	}
	for i := range sel {
		if n := snap.Doc.Node(sel[i].Node.ID); n != nil {
			sel[i].Node = n
		}
	}

	envs, err := s.pipeline.ExtractAll(ctx, snap, sel)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	s.mu.Lock()
	cancelled := gen != s.generation
	s.mu.Unlock()
	if cancelled {
		return nil, ErrCancelled
	}

	url := snap.Doc.URL
	if url == "" {
		url = s.page.URL()
	}
	s.log.Info("extraction complete", "url", url, "count", len(envs))
	return &model.Extraction{
		Success:     true,
		URL:         url,
		Timestamp:   s.now().UTC().Format(TimestampFormat),
		Language:    s.cfg.Language,
		Extractions: envs,
	}, nil
}

// Cancel drops the selection, removes the overlay and discards any
// extraction in flight.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.selection = nil
	s.hover = nil
	s.overlay("teardown", s.page.Teardown())
}

func (s *Session) overlay(op string, err error) {
	if err != nil {
		s.log.Warn("overlay update failed", "op", op, "error", err)
	}
}
