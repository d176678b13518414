package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/fiber"
	"github.com/mj1618/fiberscope/internal/inspect"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/stream"
)

type fakePage struct {
	id        string
	snap      *platform.Snapshot
	snapshots int
	closed    bool
}

func (p *fakePage) Layout(context.Context) (*dom.Document, error) { return p.snap.Doc, nil }
func (p *fakePage) Snapshot(context.Context) (*platform.Snapshot, error) {
	p.snapshots++
	return p.snap, nil
}
func (p *fakePage) CaptureRegion(context.Context, string, model.Bounds) ([]byte, error) {
	return nil, errors.New("no screenshots in tests")
}
func (p *fakePage) Install(context.Context) error { return nil }
func (p *fakePage) ShowHover(model.Rect) error { return nil }
func (p *fakePage) HideHover() error { return nil }
func (p *fakePage) ShowSelection([]model.Rect) error { return nil }
func (p *fakePage) ClearSelection() error { return nil }
func (p *fakePage) Teardown() error { return nil }
func (p *fakePage) Listen(context.Context, func(platform.Event)) error { return nil }
func (p *fakePage) TargetID() string { return p.id }
func (p *fakePage) URL() string { return p.snap.Doc.URL }
func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

type fakeBrowser struct {
	page   *fakePage
	opened int
}

func (b *fakeBrowser) Open(_ context.Context, opts platform.OpenOptions) (platform.Page, error) {
	b.opened++
	b.page.snap.Doc.URL = opts.URL
	return b.page, nil
}
func (b *fakeBrowser) Close() error { return nil }

func testSnapshot() *platform.Snapshot {
	btn := &dom.Node{ID: 3, Tag: "button", Rect: model.Rect{Top: 10, Left: 10, Width: 100, Height: 30},
		Attrs:    []dom.Attr{{Name: "class", Value: "buy-button"}},
		Expandos: map[string]int{"__reactFiber$k": 2}}
	root := (&dom.Node{ID: 1, Tag: "html", Rect: model.Rect{Width: 800, Height: 600}}).Append(
		(&dom.Node{ID: 2, Tag: "body", Rect: model.Rect{Width: 800, Height: 600}}).Append(btn),
	)
	doc := dom.FromRoot(root)

	g := fiber.NewGraph()
	comp := &fiber.Instance{ID: 1, Tag: fiber.FunctionComponent, Type: &fiber.TypeInfo{Name: "BuyButton"}}
	host := &fiber.Instance{ID: 2, Tag: fiber.HostComponent, Type: &fiber.TypeInfo{Raw: "button"}, HostNode: btn, Return: comp}
	comp.Child = host
	g.Add(comp)
	g.Add(host)

	return &platform.Snapshot{
		Doc:            doc,
		Graph:          g,
		RuntimeVersion: "19.0.0",
		Sources: stream.PageSources{StreamBuffers: []string{
			`2:I[["BuyButton","/app/src/BuyButton.tsx",3,1]]`,
		}},
	}
}

func newTestServer(t *testing.T, ttl time.Duration) (*Server, *fakeBrowser) {
	t.Helper()
	cfg := inspect.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	browser := &fakeBrowser{page: &fakePage{id: "T1", snap: testSnapshot()}}
	s, err := NewWithProvider(Config{CacheTTL: ttl, Inspect: cfg}, &platform.Provider{Browser: browser})
	if err != nil {
		t.Fatal(err)
	}
	return s, browser
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("first content is %T, want text", res.Content[0])
	}
	return tc.Text
}

func TestParams(t *testing.T) {
	params := map[string]interface{}{"s": "x", "n": 3.0, "b": true, "i": 7}
	if got := StringParam(params, "s", ""); got != "x" {
		t.Errorf("StringParam: got %q", got)
	}
	if got := StringParam(params, "n", ""); got != "3" {
		t.Errorf("StringParam numeric: got %q", got)
	}
	if got := StringParam(params, "missing", "d"); got != "d" {
		t.Errorf("StringParam default: got %q", got)
	}
	if got := IntParam(params, "n", 0); got != 3 {
		t.Errorf("IntParam: got %d", got)
	}
	if got, ok := FloatParam(params, "i"); !ok || got != 7 {
		t.Errorf("FloatParam: got %v %v", got, ok)
	}
	if _, ok := FloatParam(params, "s"); ok {
		t.Error("FloatParam should reject strings")
	}
	if !BoolParam(params, "b", false) {
		t.Error("BoolParam: got false")
	}
}

func TestSnapshotCache_TTL(t *testing.T) {
	page := &fakePage{id: "T1", snap: testSnapshot()}
	c := NewSnapshotCache(time.Second)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Snapshot(ctx, "T1", page); err != nil {
			t.Fatal(err)
		}
	}
	if page.snapshots != 1 {
		t.Errorf("snapshots within TTL: got %d, want 1", page.snapshots)
	}

	now = now.Add(2 * time.Second)
	c.Snapshot(ctx, "T1", page)
	if page.snapshots != 2 {
		t.Errorf("snapshots after TTL: got %d, want 2", page.snapshots)
	}

	c.Invalidate("T1")
	c.Snapshot(ctx, "T1", page)
	if page.snapshots != 3 {
		t.Errorf("snapshots after invalidate: got %d, want 3", page.snapshots)
	}
}

func TestSnapshotCache_Disabled(t *testing.T) {
	page := &fakePage{id: "T1", snap: testSnapshot()}
	c := NewSnapshotCache(0)
	c.Snapshot(context.Background(), "T1", page)
	c.Snapshot(context.Background(), "T1", page)
	if page.snapshots != 2 {
		t.Errorf("got %d snapshots, want 2", page.snapshots)
	}
}

func TestHandleInspectPoint(t *testing.T) {
	s, browser := newTestServer(t, 0)
	ctx := context.Background()

	res, err := s.handleInspectPoint(ctx, call(map[string]interface{}{"url": "http://localhost:3000/", "x": 20.0, "y": 20.0}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	text := resultText(t, res)
	for _, want := range []string{`"success":true`, `"BuyButton"`, `"attributionPath":"instance-tree"`, `"runtimeVersion":"19.0.0"`} {
		if !strings.Contains(text, want) {
			t.Errorf("result missing %s:\n%s", want, text)
		}
	}

	// A second call on the same URL reuses the page and its session.
	s.handleInspectPoint(ctx, call(map[string]interface{}{"url": "http://localhost:3000/", "x": 20.0, "y": 20.0}))
	if browser.opened != 1 {
		t.Errorf("pages opened: got %d, want 1", browser.opened)
	}
	if _, ok := s.registry.Get("T1"); !ok {
		t.Error("session should be registered")
	}
}

func TestHandleInspectPoint_Miss(t *testing.T) {
	s, _ := newTestServer(t, 0)
	res, _ := s.handleInspectPoint(context.Background(), call(map[string]interface{}{"url": "http://x/", "x": 5000.0, "y": 5000.0}))
	if !res.IsError {
		t.Error("expected error result for a point outside every element")
	}

	res, _ = s.handleInspectPoint(context.Background(), call(map[string]interface{}{"url": "http://x/"}))
	if !res.IsError {
		t.Error("expected error result without coordinates")
	}
}

func TestHandleComponentsAndMine(t *testing.T) {
	s, browser := newTestServer(t, time.Minute)
	ctx := context.Background()

	res, _ := s.handleComponents(ctx, call(map[string]interface{}{"url": "http://localhost:3000/", "x": 20.0, "y": 20.0}))
	if res.IsError {
		t.Fatalf("components: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, "name: BuyButton") || !strings.Contains(text, "runtime: 19.0.0") {
		t.Errorf("components result:\n%s", text)
	}

	res, _ = s.handleMine(ctx, call(map[string]interface{}{"target": "T1"}))
	if res.IsError {
		t.Fatalf("mine: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "file: /app/src/BuyButton.tsx") {
		t.Errorf("mine result:\n%s", resultText(t, res))
	}
	if browser.page.snapshots != 1 {
		t.Errorf("cached snapshot should be shared, got %d captures", browser.page.snapshots)
	}
}

func TestHandleClose(t *testing.T) {
	s, browser := newTestServer(t, 0)
	ctx := context.Background()

	res, _ := s.handleOpen(ctx, call(map[string]interface{}{"url": "http://localhost:3000/"}))
	if res.IsError {
		t.Fatal(resultText(t, res))
	}
	res, _ = s.handleClose(ctx, call(map[string]interface{}{"target": "T1"}))
	if res.IsError {
		t.Fatal(resultText(t, res))
	}
	if !browser.page.closed {
		t.Error("page should be closed")
	}
	res, _ = s.handleMine(ctx, call(map[string]interface{}{"target": "T1"}))
	if !res.IsError {
		t.Error("closed target should be unknown")
	}
}

func TestHandleScreenshot_Unknown(t *testing.T) {
	s, _ := newTestServer(t, 0)
	res, _ := s.handleScreenshot(context.Background(), call(map[string]interface{}{"handle": "shot-1"}))
	if !res.IsError {
		t.Error("expected error for unknown handle")
	}
}
