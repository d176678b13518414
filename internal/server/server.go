// Package server exposes inspection as MCP tools.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/fiberscope/internal/inspect"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/shots"
	"github.com/mj1618/fiberscope/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport        string
	Port             int
	CacheTTL         time.Duration
	MaxDocumentBytes int
	Inspect          inspect.Config
	Browser          platform.Options
}

// Server wraps the MCP server with the browser provider, the open pages
// and their inspection sessions.
type Server struct {
	cfg      Config
	provider *platform.Provider
	registry *inspect.Registry
	shots    *shots.Store
	cache    *SnapshotCache
	log      *slog.Logger

	// pageMu serializes page access across tool calls.
	pageMu sync.Mutex
	pages  map[string]platform.Page
	byURL  map[string]string

	mcp *mcpserver.MCPServer
}

// New creates a server using the registered browser backend.
func New(cfg Config) (*Server, error) {
	provider, err := platform.NewProvider(cfg.Browser)
	if err != nil {
		return nil, err
	}
	return NewWithProvider(cfg, provider)
}

// NewWithProvider creates a server on top of provider.
func NewWithProvider(cfg Config, provider *platform.Provider) (*Server, error) {
	store, err := shots.NewStore(shots.DefaultCapacity)
	if err != nil {
		return nil, err
	}
	log := cfg.Inspect.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		provider: provider,
		registry: inspect.NewRegistry(),
		shots:    store,
		cache:    NewSnapshotCache(cfg.CacheTTL),
		log:      log,
		pages:    make(map[string]platform.Page),
		byURL:    make(map[string]string),
	}
	s.mcp = mcpserver.NewMCPServer("fiberscope", version.Version)
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve() error {
	switch s.cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", s.cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.cfg.Transport)
	}
}

// Close closes every page and the browser.
func (s *Server) Close() error {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()
	for id, p := range s.pages {
		s.registry.Close(id)
		if err := p.Close(); err != nil {
			s.log.Warn("close page failed", "target", id, "error", err)
		}
	}
	s.pages = make(map[string]platform.Page)
	s.byURL = make(map[string]string)
	return s.provider.Browser.Close()
}

func (s *Server) registerTools() {
	target := mcp.WithString("target", mcp.Description("Target id returned by open_page"))
	url := mcp.WithString("url", mcp.Description("Page URL; opened on first use when no target is given"))

	s.mcp.AddTool(
		mcp.NewTool("open_page",
			mcp.WithDescription("Open a URL in the browser and return its target id"),
			mcp.WithString("url", mcp.Description("URL to open"), mcp.Required()),
			mcp.WithNumber("width", mcp.Description("Viewport width in CSS pixels")),
			mcp.WithNumber("height", mcp.Description("Viewport height in CSS pixels")),
		),
		s.handleOpen,
	)

	s.mcp.AddTool(
		mcp.NewTool("inspect_point",
			mcp.WithDescription("Select the element at a viewport point and extract its component tree, source location, markup, styles and screenshot"),
			target, url,
			mcp.WithNumber("x", mcp.Description("Viewport X coordinate"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Viewport Y coordinate"), mcp.Required()),
			mcp.WithBoolean("screenshot", mcp.Description("Attach the element screenshot as an image")),
		),
		s.handleInspectPoint,
	)

	s.mcp.AddTool(
		mcp.NewTool("inspect_rect",
			mcp.WithDescription("Select every element intersecting a viewport rectangle and extract each of them"),
			target, url,
			mcp.WithNumber("x1", mcp.Description("First corner X"), mcp.Required()),
			mcp.WithNumber("y1", mcp.Description("First corner Y"), mcp.Required()),
			mcp.WithNumber("x2", mcp.Description("Second corner X"), mcp.Required()),
			mcp.WithNumber("y2", mcp.Description("Second corner Y"), mcp.Required()),
			mcp.WithBoolean("screenshot", mcp.Description("Attach the annotated screenshot as an image")),
		),
		s.handleInspectRect,
	)

	s.mcp.AddTool(
		mcp.NewTool("components",
			mcp.WithDescription("List the component tree and component stack of the element at a viewport point"),
			target, url,
			mcp.WithNumber("x", mcp.Description("Viewport X coordinate"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Viewport Y coordinate"), mcp.Required()),
		),
		s.handleComponents,
	)

	s.mcp.AddTool(
		mcp.NewTool("mine_components",
			mcp.WithDescription("List component records found in the page's server-rendering stream payload"),
			target, url,
		),
		s.handleMine,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Return a stored screenshot by handle"),
			mcp.WithString("handle", mcp.Description("Screenshot handle from an extraction"), mcp.Required()),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("close_page",
			mcp.WithDescription("Close a page and discard its inspection session"),
			target,
		),
		s.handleClose,
	)
}

// page resolves the page named by the target or url parameter, opening the
// URL when needed. Callers hold pageMu.
func (s *Server) page(ctx context.Context, params map[string]interface{}) (platform.Page, error) {
	if id := StringParam(params, "target", ""); id != "" {
		p, ok := s.pages[id]
		if !ok {
			return nil, fmt.Errorf("unknown target %q", id)
		}
		return p, nil
	}
	url := StringParam(params, "url", "")
	if url == "" {
		return nil, fmt.Errorf("target or url is required")
	}
	if id, ok := s.byURL[url]; ok {
		return s.pages[id], nil
	}
	return s.open(ctx, platform.OpenOptions{URL: url})
}

func (s *Server) open(ctx context.Context, opts platform.OpenOptions) (platform.Page, error) {
	p, err := s.provider.Browser.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.URL, err)
	}
	s.pages[p.TargetID()] = p
	s.byURL[opts.URL] = p.TargetID()
	s.log.Info("page opened", "url", opts.URL, "target", p.TargetID())
	return p, nil
}

func (s *Server) session(p platform.Page) (*inspect.Session, error) {
	sess, _, err := s.registry.Open(p.TargetID(), func() (*inspect.Session, error) {
		return inspect.NewSession(p.TargetID(), p, s.cfg.Inspect, s.shots), nil
	})
	return sess, err
}
