package chrome

import (
	"encoding/json"
	"fmt"

	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/fiber"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/platform"
	"github.com/mj1618/fiberscope/internal/stream"
)

// wireSnapshot is the document produced by snapshot.js.
type wireSnapshot struct {
	URL     string      `json:"url"`
	Title   string      `json:"title"`
	ScrollX float64     `json:"sx"`
	ScrollY float64     `json:"sy"`
	Width   float64     `json:"vw"`
	Height  float64     `json:"vh"`
	Version string      `json:"rv"`
	Nodes   []wireNode  `json:"nodes"`
	Fibers  []wireFiber `json:"fibers"`
	Buffers []string    `json:"buffers"`
	HTML    string      `json:"html"`
}

type wireNode struct {
	ID         int               `json:"id"`
	Parent     int               `json:"p"`
	Tag        string            `json:"tag"`
	Attrs      [][2]string       `json:"a"`
	Rect       []float64         `json:"r"`
	PaintOrder int               `json:"po"`
	Inert      bool              `json:"inert"`
	Text       string            `json:"t"`
	Style      map[string]string `json:"s"`
	Expandos   map[string]int    `json:"ex"`
}

type wireType struct {
	Raw         string    `json:"raw"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Wrapped     *wireType `json:"wrapped"`
}

type wireSource struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"col"`
}

type wireHook struct {
	Value json.RawMessage `json:"v"`
	Queue bool            `json:"q"`
}

type wireFiber struct {
	ID         int             `json:"id"`
	Tag        int             `json:"tag"`
	Key        *string         `json:"key"`
	Type       *wireType       `json:"type"`
	ElemType   *wireType       `json:"et"`
	Props      json.RawMessage `json:"props"`
	ClassState json.RawMessage `json:"cs"`
	Hooks      []wireHook      `json:"hooks"`
	Source     *wireSource     `json:"src"`
	Stack      string          `json:"stack"`
	Owner      int             `json:"owner"`
	Child      int             `json:"child"`
	Sibling    int             `json:"sibling"`
	Return     int             `json:"ret"`
	Host       int             `json:"host"`
}

// decodeSnapshot converts the output of snapshot.js into a platform
// snapshot. Malformed node and instance records are skipped.
func decodeSnapshot(data []byte) (*platform.Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	doc := decodeDocument(&w)
	return &platform.Snapshot{
		Doc:            doc,
		Graph:          decodeGraph(w.Fibers, doc),
		RuntimeVersion: w.Version,
		Sources: stream.PageSources{
			StreamBuffers: w.Buffers,
			InlineScripts: stream.InlineScripts(w.HTML),
		},
	}, nil
}

// decodeLayout decodes a layout-only snapshot.
func decodeLayout(data []byte) (*dom.Document, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return decodeDocument(&w), nil
}

func decodeDocument(w *wireSnapshot) *dom.Document {
	nodes := make([]*dom.Node, 0, len(w.Nodes))
	parents := make(map[int]int, len(w.Nodes))
	seen := make(map[int]bool, len(w.Nodes))
	for _, wn := range w.Nodes {
		if wn.ID == 0 || wn.Tag == "" || seen[wn.ID] {
			continue
		}
		seen[wn.ID] = true
		n := &dom.Node{
			ID:         wn.ID,
			Tag:        wn.Tag,
			Text:       wn.Text,
			PaintOrder: wn.PaintOrder,
			Inert:      wn.Inert,
			Style:      wn.Style,
			Expandos:   wn.Expandos,
		}
		for _, a := range wn.Attrs {
			n.Attrs = append(n.Attrs, dom.Attr{Name: a[0], Value: a[1]})
		}
		if len(wn.Rect) == 4 {
			n.Rect = model.Rect{Left: wn.Rect[0], Top: wn.Rect[1], Width: wn.Rect[2], Height: wn.Rect[3]}
		}
		if wn.Parent != 0 {
			parents[wn.ID] = wn.Parent
		}
		nodes = append(nodes, n)
	}
	doc := dom.NewDocument(nodes, parents)
	doc.URL = w.URL
	doc.Title = w.Title
	doc.ScrollX = w.ScrollX
	doc.ScrollY = w.ScrollY
	doc.ViewportWidth = w.Width
	doc.ViewportHeight = w.Height
	return doc
}

func decodeGraph(fibers []wireFiber, doc *dom.Document) *fiber.Graph {
	g := fiber.NewGraph()
	vals := newValueDecoder()
	type pending struct {
		inst  *fiber.Instance
		props any
		cs    any
		hooks []any
	}
	var all []pending

	for i := range fibers {
		wf := &fibers[i]
		if wf.ID == 0 || g.Instance(wf.ID) != nil {
			continue
		}
		inst := &fiber.Instance{
			ID:          wf.ID,
			Tag:         fiber.WorkTag(wf.Tag),
			Key:         wf.Key,
			Type:        decodeType(wf.Type),
			ElementType: decodeType(wf.ElemType),
			DebugStack:  wf.Stack,
			HostNode:    doc.Node(wf.Host),
		}
		if wf.Source != nil {
			inst.DebugSource = &fiber.DebugSource{
				FileName:     wf.Source.File,
				LineNumber:   wf.Source.Line,
				ColumnNumber: wf.Source.Column,
			}
		}
		p := pending{inst: inst, props: vals.parse(wf.Props), cs: vals.parse(wf.ClassState)}
		for _, h := range wf.Hooks {
			p.hooks = append(p.hooks, vals.parse(h.Value))
		}
		g.Add(inst)
		all = append(all, p)
	}

	for _, p := range all {
		vals.collect(p.props)
		vals.collect(p.cs)
		for _, h := range p.hooks {
			vals.collect(h)
		}
	}

	byID := make(map[int]*wireFiber, len(fibers))
	for i := range fibers {
		if _, ok := byID[fibers[i].ID]; !ok {
			byID[fibers[i].ID] = &fibers[i]
		}
	}
	for _, p := range all {
		inst := p.inst
		wf := byID[inst.ID]
		inst.Child = g.Instance(wf.Child)
		inst.Sibling = g.Instance(wf.Sibling)
		inst.Return = g.Instance(wf.Return)
		inst.Owner = g.Instance(wf.Owner)

		if props, ok := vals.build(p.props).(map[string]any); ok {
			inst.Props = props
		}
		if p.cs != nil {
			inst.ClassState = vals.build(p.cs)
		}
		var tail *fiber.Hook
		for i, h := range p.hooks {
			hook := &fiber.Hook{Value: vals.build(h), HasQueue: wf.Hooks[i].Queue}
			if tail == nil {
				inst.Hooks = hook
			} else {
				tail.Next = hook
			}
			tail = hook
		}
	}
	return g
}

func decodeType(w *wireType) *fiber.TypeInfo {
	if w == nil {
		return nil
	}
	return &fiber.TypeInfo{
		Name:        w.Name,
		DisplayName: w.DisplayName,
		Raw:         w.Raw,
		Wrapped:     decodeType(w.Wrapped),
	}
}

// valueDecoder rebuilds captured values. Objects and arrays carry an id
// ($o) at their first occurrence and are referenced ($r) afterwards, so
// containers are created in one pass and filled in a second. Shared and
// cyclic structure survives decoding. A container is shaped by the first
// occurrence of its id; later occurrences that disagree only fill what fits.
type valueDecoder struct {
	byID   map[int]any
	filled map[int]bool
}

func newValueDecoder() *valueDecoder {
	return &valueDecoder{byID: make(map[int]any), filled: make(map[int]bool)}
}

func (d *valueDecoder) parse(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func wireID(m map[string]any, key string) (int, bool) {
	f, ok := m[key].(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func (d *valueDecoder) collect(v any) {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			d.collect(e)
		}
	case map[string]any:
		id, ok := wireID(t, "$o")
		if !ok {
			return
		}
		if _, dup := d.byID[id]; dup {
			return
		}
		if items, ok := t["a"].([]any); ok {
			d.byID[id] = make([]any, len(items))
			for _, e := range items {
				d.collect(e)
			}
			return
		}
		d.byID[id] = make(map[string]any)
		if fields, ok := t["f"].(map[string]any); ok {
			for _, e := range fields {
				d.collect(e)
			}
		}
	}
}

func (d *valueDecoder) build(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if id, ok := wireID(m, "$r"); ok {
		return d.byID[id]
	}
	if name, ok := m["$f"].(string); ok {
		return fiber.Func{Name: name}
	}
	if desc, ok := m["$x"].(string); ok {
		return fiber.Opaque{Desc: desc}
	}
	id, ok := wireID(m, "$o")
	if !ok {
		return nil
	}
	container := d.byID[id]
	if d.filled[id] {
		return container
	}
	d.filled[id] = true
	switch c := container.(type) {
	case []any:
		items, _ := m["a"].([]any)
		for i := 0; i < len(c) && i < len(items); i++ {
			c[i] = d.build(items[i])
		}
	case map[string]any:
		fields, _ := m["f"].(map[string]any)
		for k, e := range fields {
			c[k] = d.build(e)
		}
	}
	return container
}
