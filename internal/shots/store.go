// Package shots keeps captured screenshots in memory behind opaque
// handles until they are written out or evicted.
package shots

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mj1618/fiberscope/internal/model"
)

// DefaultCapacity is the number of screenshots kept before the least
// recently used one is evicted.
const DefaultCapacity = 64

// Shot is a stored capture.
type Shot struct {
	Handle string
	PNG    []byte
	Bounds model.Bounds
	Width  int
	Height int
}

// Ref returns the envelope reference for the shot.
func (s Shot) Ref() *model.ScreenshotRef {
	return &model.ScreenshotRef{Handle: s.Handle, Bounds: s.Bounds, Width: s.Width, Height: s.Height}
}

// Store is an LRU-bounded screenshot store. It is safe for concurrent use.
type Store struct {
	cache *lru.Cache[string, Shot]
	next  atomic.Uint64
}

// NewStore creates a store holding at most capacity shots.
func NewStore(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, Shot](capacity)
	if err != nil {
		return nil, fmt.Errorf("create screenshot cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

// Put stores png and returns the new shot.
func (s *Store) Put(png []byte, bounds model.Bounds, width, height int) Shot {
	shot := Shot{
		Handle: fmt.Sprintf("shot-%d", s.next.Add(1)),
		PNG:    png,
		Bounds: bounds,
		Width:  width,
		Height: height,
	}
	s.cache.Add(shot.Handle, shot)
	return shot
}

// Get returns the shot for handle.
func (s *Store) Get(handle string) (Shot, bool) {
	return s.cache.Get(handle)
}

// Release drops the shot for handle.
func (s *Store) Release(handle string) {
	s.cache.Remove(handle)
}

// Len returns the number of stored shots.
func (s *Store) Len() int {
	return s.cache.Len()
}
