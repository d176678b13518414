package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/fiberscope/internal/inspect"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/output"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/spatial"
	"github.com/mj1618/fiberscope/internal/stream"
	"gopkg.in/yaml.v3"
)

// yamlResult serializes v to YAML for an MCP text response.
func yamlResult(v interface{}) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("yaml encode: %v", err))
	}
	return mcp.NewToolResultText(string(b))
}

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	url := StringParam(params, "url", "")
	if url == "" {
		return mcp.NewToolResultError("url is required"), nil
	}

	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	p, err := s.open(ctx, platform.OpenOptions{
		URL:    url,
		Width:  IntParam(params, "width", 0),
		Height: IntParam(params, "height", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(map[string]string{"target": p.TargetID(), "url": url}), nil
}

func (s *Server) handleInspectPoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x, okX := FloatParam(params, "x")
	y, okY := FloatParam(params, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required"), nil
	}
	return s.extract(ctx, params, func(sel selector) error {
		if _, ok := sel.Click(x, y); !ok {
			return fmt.Errorf("no element at %g,%g", x, y)
		}
		return nil
	})
}

func (s *Server) handleInspectRect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	var c [4]float64
	for i, key := range []string{"x1", "y1", "x2", "y2"} {
		v, ok := FloatParam(params, key)
		if !ok {
			return mcp.NewToolResultError("x1, y1, x2 and y2 are required"), nil
		}
		c[i] = v
	}
	return s.extract(ctx, params, func(sel selector) error {
		if len(sel.Drag(c[0], c[1], c[2], c[3])) == 0 {
			return fmt.Errorf("no element in rectangle %g,%g,%g,%g", c[0], c[1], c[2], c[3])
		}
		return nil
	})
}

// selector is the part of a session a selection step drives.
type selector interface {
	Click(x, y float64) (model.SelectedTarget, bool)
	Drag(x1, y1, x2, y2 float64) []model.SelectedTarget
}

// extract refreshes the page's session, applies selectFn and confirms.
func (s *Server) extract(ctx context.Context, params map[string]interface{}, selectFn func(selector) error) (*mcp.CallToolResult, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	p, err := s.page(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.session(p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := sess.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := selectFn(sess); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ex, err := sess.Confirm(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.Invalidate(p.TargetID())

	data, err := output.EncodeExtraction(ex, s.cfg.MaxDocumentBytes)
	if err != nil && !errors.Is(err, output.ErrDocumentTooLarge) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		s.log.Warn("extraction over size cap", "error", err)
	}

	if BoolParam(params, "screenshot", false) {
		for _, env := range ex.Extractions {
			if env.Screenshot == nil {
				continue
			}
			if shot, ok := s.shots.Get(env.Screenshot.Handle); ok {
				return mcp.NewToolResultImage(string(data), base64.StdEncoding.EncodeToString(shot.PNG), "image/png"), nil
			}
		}
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x, okX := FloatParam(params, "x")
	y, okY := FloatParam(params, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required"), nil
	}

	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	p, err := s.page(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.cache.Snapshot(ctx, p.TargetID(), p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := spatial.ResolveAtPoint(snap.Doc, x, y)
	if n == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no element at %g,%g", x, y)), nil
	}
	sess, err := s.session(p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tree, stack := sess.Pipeline().Components(snap, n)
	target := inspect.BuildTarget(n)
	return yamlResult(output.ComponentsResult{
		URL:        snap.Doc.URL,
		TS:         time.Now().Unix(),
		Target:     &target,
		Runtime:    snap.RuntimeVersion,
		Components: model.FlattenComponents(tree),
		Stack:      stack,
	}), nil
}

func (s *Server) handleMine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	p, err := s.page(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.cache.Snapshot(ctx, p.TargetID(), p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	comps := stream.Mine(snap.Sources)
	if comps == nil {
		comps = []stream.Component{}
	}
	return yamlResult(output.MineResult{
		URL:        snap.Doc.URL,
		TS:         time.Now().Unix(),
		Components: comps,
	}), nil
}

func (s *Server) handleScreenshot(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handle := StringParam(request.GetArguments(), "handle", "")
	shot, ok := s.shots.Get(handle)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown screenshot handle %q", handle)), nil
	}
	text := fmt.Sprintf("%s %dx%d", shot.Handle, shot.Width, shot.Height)
	return mcp.NewToolResultImage(text, base64.StdEncoding.EncodeToString(shot.PNG), "image/png"), nil
}

func (s *Server) handleClose(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := StringParam(request.GetArguments(), "target", "")

	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	p, ok := s.pages[id]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown target %q", id)), nil
	}
	s.registry.Close(id)
	s.cache.Invalidate(id)
	delete(s.pages, id)
	for url, t := range s.byURL {
		if t == id {
			delete(s.byURL, url)
		}
	}
	if err := p.Close(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(map[string]string{"closed": id}), nil
}
