package inspect

import (
	"context"
	"image"
	"log/slog"

	"github.com/mj1618/fiberscope/internal/attribution"
	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/fiber"
	"github.com/mj1618/fiberscope/internal/imaging"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/shots"
	"github.com/mj1618/fiberscope/internal/stream"
)

// Selection is an element chosen by the operator together with the target
// description recorded when it was chosen.
type Selection struct {
	Node   *dom.Node
	Target model.SelectedTarget
}

// BuildTarget describes n.
func BuildTarget(n *dom.Node) model.SelectedTarget {
	return model.SelectedTarget{
		TagName:  n.Tag,
		ID:       n.ElementID(),
		Classes:  n.Classes(),
		Rect:     n.Rect,
		Selector: dom.Selector(n),
		XPath:    dom.XPath(n),
		NodeID:   n.ID,
	}
}

// Pipeline assembles extraction envelopes from a page snapshot.
type Pipeline struct {
	cfg      Config
	capturer platform.Capturer
	shots    *shots.Store
	log      *slog.Logger

	// Lookup builds the instance lookup for a snapshot's graph.
	Lookup func(*fiber.Graph) fiber.LookupFunc
}

// NewPipeline creates a pipeline. capturer and store may be nil, in which
// case envelopes carry no screenshot.
func NewPipeline(cfg Config, capturer platform.Capturer, store *shots.Store) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:      cfg,
		capturer: capturer,
		shots:    store,
		log:      cfg.Logger,
		Lookup:   fiber.ConventionLookup,
	}
}

// ExtractAll builds one envelope per selection. A single selection gets a
// padded capture of its own; several share one annotated capture of their
// combined area.
func (p *Pipeline) ExtractAll(ctx context.Context, snap *platform.Snapshot, sel []Selection) ([]model.ExtractionEnvelope, error) {
	lookup := p.Lookup(snap.Graph)
	var mined []stream.Component
	minedDone := false

	envs := make([]model.ExtractionEnvelope, 0, len(sel))
	for _, s := range sel {
		inst := lookup(s.Node)
		if inst == nil && !minedDone {
			mined = stream.Mine(snap.Sources)
			minedDone = true
		}
		envs = append(envs, p.envelope(snap, s, inst, mined))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.capturer == nil || p.shots == nil || p.cfg.NoScreenshots || len(sel) == 0 {
		return envs, nil
	}
	if len(sel) == 1 {
		if ref := p.captureSingle(ctx, snap.Doc, sel[0]); ref != nil {
			envs[0].Screenshot = ref
		}
	} else if ref := p.captureGroup(ctx, snap.Doc, sel); ref != nil {
		for i := range envs {
			envs[i].Screenshot = ref
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return envs, nil
}

// Extract builds the envelope for a single node.
func (p *Pipeline) Extract(ctx context.Context, snap *platform.Snapshot, n *dom.Node) (model.ExtractionEnvelope, error) {
	envs, err := p.ExtractAll(ctx, snap, []Selection{{Node: n, Target: BuildTarget(n)}})
	if err != nil {
		return model.ExtractionEnvelope{}, err
	}
	return envs[0], nil
}

func (p *Pipeline) envelope(snap *platform.Snapshot, s Selection, inst *fiber.Instance, mined []stream.Component) model.ExtractionEnvelope {
	env := model.ExtractionEnvelope{
		Target:          s.Target,
		ComponentStack:  []model.ComponentFrame{},
		Attribution:     model.Unresolved(),
		AttributionPath: model.PathNone,
		Markup:          dom.Markup(s.Node, p.cfg.MarkupCharCap),
		Styles:          dom.StyleSubset(s.Node),
	}

	if inst != nil {
		w := &fiber.Walker{Attribute: attribution.Attribute}
		env.Component = w.Walk(inst, 0, p.cfg.MaxDepth)
		if st := fiber.ComponentStack(inst, p.cfg.StackDepth, attribution.Attribute); st != nil {
			env.ComponentStack = st
		}
		env.AttributionPath = model.PathInstanceTree
		if len(env.ComponentStack) > 0 {
			env.Attribution = env.ComponentStack[0].Source
		} else {
			env.Attribution = attribution.Attribute(inst)
		}
		if snap.RuntimeVersion != "" {
			v := snap.RuntimeVersion
			env.RuntimeVersion = &v
		}
	} else {
		env.DOMTree = dom.Tree(s.Node, p.cfg.DOMTreeDepth)
		m := stream.MatchElement(s.Node, mined, p.cfg.StreamMatchDepth)
		if m.Primary != nil {
			prov := model.ProvenanceStreamGuess
			if m.Matched {
				prov = model.ProvenanceStreamMatch
			}
			env.AttributionPath = model.PathStreamPayload
			env.Attribution = m.Primary.Attribution(prov)
			for _, c := range m.Stack {
				env.ComponentStack = append(env.ComponentStack, model.ComponentFrame{Name: c.Name, Source: c.Attribution(prov)})
			}
		}
	}

	env.Context = model.FormatContext(dom.Preview(s.Node), env.ComponentStack)
	p.log.Debug("extracted element",
		"selector", s.Target.Selector,
		"path", env.AttributionPath,
		"provenance", env.Attribution.Provenance)
	return env
}

func (p *Pipeline) captureSingle(ctx context.Context, doc *dom.Document, s Selection) *model.ScreenshotRef {
	bounds := model.PadBounds(s.Node.Rect, doc.ScrollX, doc.ScrollY, p.cfg.ScreenshotPadX, p.cfg.ScreenshotPadY)
	img := p.capture(ctx, s.Target.Selector, bounds)
	if img == nil {
		return nil
	}
	return p.store(img, bounds)
}

// groupMargin is the margin, in CSS pixels, around a multi-element capture.
const groupMargin = 16

func (p *Pipeline) captureGroup(ctx context.Context, doc *dom.Document, sel []Selection) *model.ScreenshotRef {
	var union model.Bounds
	boxes := make([]model.Bounds, len(sel))
	for i, s := range sel {
		boxes[i] = model.PadBounds(s.Node.Rect, doc.ScrollX, doc.ScrollY, 0, 0)
		union = union.Union(boxes[i])
	}
	union = model.PadBounds(model.Rect{
		Top:    union.Y - groupMargin,
		Left:   union.X - groupMargin,
		Width:  union.Width + 2*groupMargin,
		Height: union.Height + 2*groupMargin,
	}, 0, 0, 0, 0)

	img := p.capture(ctx, "selection", union)
	if img == nil {
		return nil
	}
	return p.store(imaging.Annotate(img, union, imaging.NumberedRegions(boxes)), union)
}

// capture returns the decoded, scaled capture of bounds or nil. Failures
// are logged and leave the envelope without a screenshot.
func (p *Pipeline) capture(ctx context.Context, selector string, bounds model.Bounds) image.Image {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return nil
	}
	data, err := p.capturer.CaptureRegion(ctx, selector, bounds)
	if err != nil {
		p.log.Warn("screenshot capture failed", "selector", selector, "error", err)
		return nil
	}
	img, err := imaging.Decode(data)
	if err != nil {
		p.log.Warn("screenshot decode failed", "selector", selector, "error", err)
		return nil
	}
	return imaging.Scale(img, p.cfg.ScreenshotScale)
}

func (p *Pipeline) store(img image.Image, bounds model.Bounds) *model.ScreenshotRef {
	data, err := imaging.Encode(img)
	if err != nil {
		p.log.Warn("screenshot encode failed", "error", err)
		return nil
	}
	b := img.Bounds()
	return p.shots.Put(data, bounds, b.Dx(), b.Dy()).Ref()
}

// Components returns the component tree and stack for n without markup or
// screenshots. Both are nil when no instance is attached to n.
func (p *Pipeline) Components(snap *platform.Snapshot, n *dom.Node) (*model.ComponentNode, []model.ComponentFrame) {
	inst := p.Lookup(snap.Graph)(n)
	if inst == nil {
		return nil, nil
	}
	w := &fiber.Walker{Attribute: attribution.Attribute}
	return w.Walk(inst, 0, p.cfg.MaxDepth), fiber.ComponentStack(inst, p.cfg.StackDepth, attribution.Attribute)
}
