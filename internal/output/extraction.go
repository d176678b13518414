package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/shots"
)

// DefaultMaxDocumentBytes caps an encoded extraction document.
const DefaultMaxDocumentBytes = 4 << 20

// ErrDocumentTooLarge is returned when an extraction stays above the size
// cap after every reduction step.
var ErrDocumentTooLarge = errors.New("extraction document exceeds size cap")

// markupSteps are the successive markup caps tried when a document is too
// large.
var markupSteps = []int{2000, 500, 0}

// EncodeExtraction encodes ex as JSON no larger than maxBytes. When the
// document is too large, markup is shortened first, then component trees
// and finally DOM trees are dropped. ex is not modified. If the document
// is still too large the encoded bytes are returned with
// ErrDocumentTooLarge.
func EncodeExtraction(ex *model.Extraction, maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	cp := *ex
	cp.Extractions = append([]model.ExtractionEnvelope(nil), ex.Extractions...)

	data, err := encodeCompact(&cp)
	if err != nil || len(data) <= maxBytes {
		return data, err
	}

	reductions := make([]func(*model.ExtractionEnvelope), 0, len(markupSteps)+2)
	for _, limit := range markupSteps {
		reductions = append(reductions, func(env *model.ExtractionEnvelope) {
			if limit == 0 {
				env.Markup = ""
				return
			}
			env.Markup = dom.Truncate(env.Markup, limit)
		})
	}
	reductions = append(reductions,
		func(env *model.ExtractionEnvelope) { env.Component = nil },
		func(env *model.ExtractionEnvelope) { env.DOMTree = nil },
	)
	for _, reduce := range reductions {
		for i := range cp.Extractions {
			reduce(&cp.Extractions[i])
		}
		if data, err = encodeCompact(&cp); err != nil || len(data) <= maxBytes {
			return data, err
		}
	}
	return data, fmt.Errorf("%w: %d > %d bytes", ErrDocumentTooLarge, len(data), maxBytes)
}

func encodeCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteExtraction writes ex to path. Screenshots held in store are written
// next to it as <name>-screenshot-N.png, referenced by file name from the
// document and released from the store. Envelopes whose screenshot has
// already been evicted lose the reference. A document that stays above
// maxBytes is still written; the returned error wraps ErrDocumentTooLarge.
func WriteExtraction(path string, ex *model.Extraction, store *shots.Store, maxBytes int) error {
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	cp := *ex
	cp.Extractions = append([]model.ExtractionEnvelope(nil), ex.Extractions...)

	written := make(map[string]*model.ScreenshotRef)
	for i := range cp.Extractions {
		ref := cp.Extractions[i].Screenshot
		if ref == nil || ref.Handle == "" {
			continue
		}
		if out, ok := written[ref.Handle]; ok {
			cp.Extractions[i].Screenshot = out
			continue
		}
		var shot shots.Shot
		ok := store != nil
		if ok {
			shot, ok = store.Get(ref.Handle)
		}
		if !ok {
			cp.Extractions[i].Screenshot = nil
			continue
		}
		name := fmt.Sprintf("%s-screenshot-%d.png", base, len(written)+1)
		if err := os.WriteFile(filepath.Join(dir, name), shot.PNG, 0o644); err != nil {
			return fmt.Errorf("write screenshot: %w", err)
		}
		out := *ref
		out.Handle = ""
		out.Path = name
		written[ref.Handle] = &out
		cp.Extractions[i].Screenshot = &out
	}

	data, encErr := EncodeExtraction(&cp, maxBytes)
	if encErr != nil && !errors.Is(encErr, ErrDocumentTooLarge) {
		return encErr
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write extraction: %w", err)
	}
	for handle := range written {
		store.Release(handle)
	}
	return encErr
}
