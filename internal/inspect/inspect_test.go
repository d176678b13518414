package inspect

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/fiber"
	"github.com/mj1618/fiberscope/internal/imaging"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/shots"
	"github.com/mj1618/fiberscope/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	mu        sync.Mutex
	doc       *dom.Document
	snap      *platform.Snapshot
	block     chan struct{} // Snapshot waits on it when set
	entered   chan struct{} // closed when Snapshot is entered
	captures  int
	captureFn func(model.Bounds) ([]byte, error)
	calls     []string
}

func (p *fakePage) record(op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, op)
	return nil
}

func (p *fakePage) Layout(context.Context) (*dom.Document, error) { return p.doc, nil }

func (p *fakePage) Snapshot(ctx context.Context) (*platform.Snapshot, error) {
	if p.entered != nil {
		close(p.entered)
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.snap, nil
}

func (p *fakePage) CaptureRegion(_ context.Context, _ string, b model.Bounds) ([]byte, error) {
	p.mu.Lock()
	p.captures++
	p.mu.Unlock()
	if p.captureFn != nil {
		return p.captureFn(b)
	}
	return imaging.Encode(image.NewRGBA(image.Rect(0, 0, int(b.Width), int(b.Height))))
}

func (p *fakePage) Install(context.Context) error { return p.record("install") }
func (p *fakePage) ShowHover(model.Rect) error { return p.record("hover") }
func (p *fakePage) HideHover() error { return p.record("unhover") }
func (p *fakePage) ShowSelection([]model.Rect) error { return p.record("select") }
func (p *fakePage) ClearSelection() error { return p.record("clear") }
func (p *fakePage) Teardown() error { return p.record("teardown") }
func (p *fakePage) URL() string { return "http://localhost:3000/" }

func el(id int, tag string, r model.Rect, attrs ...dom.Attr) *dom.Node {
	return &dom.Node{ID: id, Tag: tag, Rect: r, Attrs: attrs}
}

// sampleDoc is a body holding a card with a button and a heading.
func sampleDoc() *dom.Document {
	root := el(1, "html", model.Rect{Width: 800, Height: 600}).Append(
		el(2, "body", model.Rect{Width: 800, Height: 600}).Append(
			el(3, "div", model.Rect{Top: 100, Left: 100, Width: 300, Height: 200}, dom.Attr{Name: "class", Value: "card"}).Append(
				el(4, "button", model.Rect{Top: 120, Left: 120, Width: 80, Height: 30}, dom.Attr{Name: "id", Value: "save"}).
					Append(&dom.Node{ID: 5, Tag: dom.TextTag, Text: "Save"}),
				el(6, "h2", model.Rect{Top: 200, Left: 120, Width: 200, Height: 40}),
			),
		),
	)
	doc := dom.FromRoot(root)
	doc.URL = "http://localhost:3000/"
	return doc
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func newTestSession(t *testing.T, page *fakePage) (*Session, *shots.Store) {
	t.Helper()
	store, err := shots.NewStore(8)
	require.NoError(t, err)
	s := NewSession("target-1", page, testConfig(), store)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC) }
	require.NoError(t, s.Refresh(context.Background()))
	return s, store
}

func TestSession_RepeatedClickIsIdentical(t *testing.T) {
	page := &fakePage{doc: sampleDoc()}
	s, _ := newTestSession(t, page)

	first, ok := s.Click(130, 130)
	require.True(t, ok)
	second, ok := s.Click(130, 130)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, "button", first.TagName)
	assert.Equal(t, "#save", first.Selector)
	assert.Equal(t, []model.SelectedTarget{first}, s.Selection())
}

func TestSession_ClickMissKeepsSelection(t *testing.T) {
	page := &fakePage{doc: sampleDoc()}
	s, _ := newTestSession(t, page)

	_, ok := s.Click(130, 130)
	require.True(t, ok)
	_, ok = s.Click(5000, 5000)
	assert.False(t, ok)
	assert.Len(t, s.Selection(), 1)
}

func TestSession_SelectionReplacementOrder(t *testing.T) {
	page := &fakePage{doc: sampleDoc()}
	s, _ := newTestSession(t, page)

	s.Click(130, 130)
	assert.Equal(t, []string{"clear", "select"}, page.calls)
}

func TestSession_HoverOnlyMovesOverlay(t *testing.T) {
	page := &fakePage{doc: sampleDoc()}
	s, _ := newTestSession(t, page)

	assert.True(t, s.Hover(130, 130))
	assert.True(t, s.Hover(131, 131))
	assert.False(t, s.Hover(5000, 5000))
	assert.Equal(t, []string{"hover", "unhover"}, page.calls)
	assert.Empty(t, s.Selection())
}

func TestSession_DragContainerAndChild(t *testing.T) {
	page := &fakePage{doc: sampleDoc()}
	s, _ := newTestSession(t, page)

	targets := s.Drag(90, 90, 410, 310)
	require.Len(t, targets, 2)
	assert.Equal(t, "button", targets[0].TagName)
	assert.Equal(t, "h2", targets[1].TagName)
}

func TestSession_EmptyDragIsNoop(t *testing.T) {
	page := &fakePage{doc: sampleDoc()}
	s, _ := newTestSession(t, page)

	s.Click(130, 130)
	assert.Nil(t, s.Drag(700, 500, 710, 510))
	assert.Len(t, s.Selection(), 1)
}

func TestSession_Dispatch(t *testing.T) {
	page := &fakePage{doc: sampleDoc()}
	s, _ := newTestSession(t, page)
	ctx := context.Background()

	handled, err := s.Dispatch(ctx, platform.Event{Type: platform.EventClick, X: 130, Y: 130})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Len(t, s.Selection(), 1)

	handled, err = s.Dispatch(ctx, platform.Event{Type: platform.EventClear})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Empty(t, s.Selection())

	handled, err = s.Dispatch(ctx, platform.Event{Type: platform.EventConfirm})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestSession_ConfirmWithoutSelection(t *testing.T) {
	page := &fakePage{doc: sampleDoc()}
	s, _ := newTestSession(t, page)

	_, err := s.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestSession_ConfirmNoInstance(t *testing.T) {
	doc := sampleDoc()
	page := &fakePage{doc: doc, snap: &platform.Snapshot{Doc: doc, Graph: fiber.NewGraph()}}
	s, store := newTestSession(t, page)
	s.Click(130, 130)

	ex, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.True(t, ex.Success)
	assert.Equal(t, "http://localhost:3000/", ex.URL)
	assert.Equal(t, "2026-01-02T03:04:05.006Z", ex.Timestamp)
	assert.Equal(t, "typescript", ex.Language)
	require.Len(t, ex.Extractions, 1)

	env := ex.Extractions[0]
	assert.Nil(t, env.Component)
	assert.Empty(t, env.ComponentStack)
	assert.Equal(t, model.Unresolved(), env.Attribution)
	assert.Equal(t, model.PathNone, env.AttributionPath)
	assert.Contains(t, env.Markup, `<button id="save">`)
	assert.Nil(t, env.RuntimeVersion)
	require.NotNil(t, env.DOMTree)
	assert.Equal(t, "button", env.DOMTree.TagName)
	require.NotNil(t, env.Screenshot)
	assert.Equal(t, 1, store.Len())
}

func TestSession_ConfirmWithInstance(t *testing.T) {
	doc := sampleDoc()
	button := doc.Node(4)
	button.Expandos = map[string]int{"__reactFiber$x1": 2}

	g := fiber.NewGraph()
	toolbar := &fiber.Instance{ID: 1, Tag: fiber.FunctionComponent, Type: &fiber.TypeInfo{Name: "Toolbar"},
		DebugSource: &fiber.DebugSource{FileName: "file:///src/Toolbar.tsx", LineNumber: 12, ColumnNumber: 4}}
	host := &fiber.Instance{ID: 2, Tag: fiber.HostComponent, Type: &fiber.TypeInfo{Raw: "button"},
		HostNode: button, Return: toolbar}
	toolbar.Child = host
	g.Add(toolbar)
	g.Add(host)

	page := &fakePage{doc: doc, snap: &platform.Snapshot{Doc: doc, Graph: g, RuntimeVersion: "18.3.1"}}
	s, _ := newTestSession(t, page)
	s.Click(130, 130)

	ex, err := s.Confirm(context.Background())
	require.NoError(t, err)
	env := ex.Extractions[0]

	require.NotNil(t, env.Component)
	assert.Equal(t, "button", env.Component.TagName)
	assert.Equal(t, model.PathInstanceTree, env.AttributionPath)
	require.Len(t, env.ComponentStack, 1)
	assert.Equal(t, "Toolbar", env.ComponentStack[0].Name)
	assert.Equal(t, model.ProvenanceDebugMetadata, env.Attribution.Provenance)
	assert.True(t, env.Attribution.Exact)
	require.NotNil(t, env.Attribution.File)
	assert.Equal(t, "src/Toolbar.tsx", *env.Attribution.File)
	require.NotNil(t, env.RuntimeVersion)
	assert.Equal(t, "18.3.1", *env.RuntimeVersion)
	assert.Contains(t, env.Context, "in Toolbar (at src/Toolbar.tsx:12:4)")
	assert.Nil(t, env.DOMTree)
}

func TestSession_ConfirmStreamFallback(t *testing.T) {
	doc := sampleDoc()
	doc.Node(3).Attrs = []dom.Attr{{Name: "class", Value: "product-card"}}
	snap := &platform.Snapshot{
		Doc:   doc,
		Graph: fiber.NewGraph(),
		Sources: stream.PageSources{StreamBuffers: []string{
			`1:I[["ProductCard","/app/src/ProductCard.tsx",7,2]]`,
		}},
	}
	page := &fakePage{doc: doc, snap: snap}
	s, _ := newTestSession(t, page)
	s.Click(130, 130)

	ex, err := s.Confirm(context.Background())
	require.NoError(t, err)
	env := ex.Extractions[0]
	assert.Equal(t, model.PathStreamPayload, env.AttributionPath)
	assert.Equal(t, model.ProvenanceStreamMatch, env.Attribution.Provenance)
	require.Len(t, env.ComponentStack, 1)
	assert.Equal(t, "ProductCard", env.ComponentStack[0].Name)
}

func TestSession_ConfirmScreenshotFailureOmitsField(t *testing.T) {
	doc := sampleDoc()
	page := &fakePage{
		doc:       doc,
		snap:      &platform.Snapshot{Doc: doc, Graph: fiber.NewGraph()},
		captureFn: func(model.Bounds) ([]byte, error) { return nil, errors.New("target closed") },
	}
	s, _ := newTestSession(t, page)
	s.Click(130, 130)

	ex, err := s.Confirm(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ex.Extractions[0].Screenshot)
}

func TestSession_MultiSelectionSharesCapture(t *testing.T) {
	doc := sampleDoc()
	page := &fakePage{doc: doc, snap: &platform.Snapshot{Doc: doc, Graph: fiber.NewGraph()}}
	s, _ := newTestSession(t, page)
	require.Len(t, s.Drag(90, 90, 410, 310), 2)

	ex, err := s.Confirm(context.Background())
	require.NoError(t, err)
	require.Len(t, ex.Extractions, 2)
	require.NotNil(t, ex.Extractions[0].Screenshot)
	assert.Equal(t, ex.Extractions[0].Screenshot, ex.Extractions[1].Screenshot)
	assert.Equal(t, 1, page.captures)
}

func TestSession_InFlightAndCancel(t *testing.T) {
	doc := sampleDoc()
	page := &fakePage{
		doc:     doc,
		snap:    &platform.Snapshot{Doc: doc, Graph: fiber.NewGraph()},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	s, _ := newTestSession(t, page)
	s.Click(130, 130)

	done := make(chan error, 1)
	go func() {
		_, err := s.Confirm(context.Background())
		done <- err
	}()
	<-page.entered

	_, err := s.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrExtractionInFlight)

	s.Cancel()
	close(page.block)
	assert.ErrorIs(t, <-done, ErrCancelled)
	assert.Empty(t, s.Selection())
}

func TestRegistry_OpenIsIdempotent(t *testing.T) {
	r := NewRegistry()
	page := &fakePage{doc: sampleDoc()}
	created := 0
	create := func() (*Session, error) {
		created++
		return NewSession("t1", page, testConfig(), nil), nil
	}

	a, isNew, err := r.Open("t1", create)
	require.NoError(t, err)
	assert.True(t, isNew)
	b, isNew, err := r.Open("t1", create)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Same(t, a, b)
	assert.Equal(t, 1, created)

	r.Close("t1")
	_, ok := r.Get("t1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.Contains(t, page.calls, "teardown")
}

func TestRegistry_OpenError(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Open("t1", func() (*Session, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("maxDepth: 3\nlanguage: javascript\nnoScreenshots: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, "javascript", cfg.Language)
	assert.True(t, cfg.NoScreenshots)
	assert.Equal(t, 5000, cfg.MarkupCharCap)
	assert.Equal(t, 0.2, cfg.ScreenshotPadX)

	_, err = ParseConfig([]byte("maxDepht: 3\n"))
	assert.Error(t, err)

	cfg, err = ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().MaxDepth, cfg.MaxDepth)
}

func TestLoadConfig_OptionalMissing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir()+"/missing.yaml", true)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxDepth)

	_, err = LoadConfig(t.TempDir()+"/missing.yaml", false)
	assert.Error(t, err)
}
