package editor

import (
	"bytes"
	"log"

	"github.com/anthonynsimon/bild/transform"
	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/registry"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/texture"
)

const (
	DefaultThumbnailSize = 64
	thumbnailsPerTick    = 4
)

// PNG thumbnails of texture assets. Requests are queued and rendered
// by Tick.
type ThumbnailCache struct {
	registry *registry.Registry
	size     int

	queue  []string
	queued map[string]bool
	thumbs map[string][]byte
	failed map[string]error
}

func NewThumbnailCache(r *registry.Registry, size int) *ThumbnailCache {
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	return &ThumbnailCache{
		registry: r,
		size:     size,
		queued:   make(map[string]bool),
		thumbs:   make(map[string][]byte),
		failed:   make(map[string]error),
	}
}

// Queues objectPath unless it is rendered, queued or failed already
func (tc *ThumbnailCache) Request(objectPath string) {
	if _, ok := tc.thumbs[objectPath]; ok || tc.queued[objectPath] {
		return
	}
	if _, ok := tc.failed[objectPath]; ok {
		return
	}
	tc.queued[objectPath] = true
	tc.queue = append(tc.queue, objectPath)
}

func (tc *ThumbnailCache) Get(objectPath string) ([]byte, bool) {
	data, ok := tc.thumbs[objectPath]
	return data, ok
}

// Render error of objectPath, nil unless its last render failed
func (tc *ThumbnailCache) Err(objectPath string) error {
	return tc.failed[objectPath]
}

func (tc *ThumbnailCache) Invalidate(objectPath string) {
	delete(tc.thumbs, objectPath)
	delete(tc.failed, objectPath)
}

func (tc *ThumbnailCache) Pending() int { return len(tc.queue) }

// Renders up to budget queued thumbnails, returns number rendered
func (tc *ThumbnailCache) Tick(budget int) int {
	rendered := 0
	for rendered < budget && len(tc.queue) != 0 {
		objectPath := tc.queue[0]
		tc.queue = tc.queue[1:]
		delete(tc.queued, objectPath)

		data, err := tc.render(objectPath)
		if err != nil {
			log.Printf("[editor] Thumbnail of %q failed: %v", objectPath, err)
			tc.failed[objectPath] = err
			continue
		}
		tc.thumbs[objectPath] = data
		rendered++
	}
	return rendered
}

func (tc *ThumbnailCache) render(objectPath string) ([]byte, error) {
	t, err := tc.registry.Load(objectPath)
	if err != nil {
		return nil, err
	}
	src := t.RenderData()
	size := src.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return nil, errors.Errorf("Texture %q is empty", objectPath)
	}
	w, h := tc.size, tc.size
	if size.X > size.Y {
		h = maxInt(1, tc.size*size.Y/size.X)
	} else if size.Y > size.X {
		w = maxInt(1, tc.size*size.X/size.Y)
	}
	thumb := transform.Resize(src, w, h, transform.Linear)

	var buf bytes.Buffer
	if err := texture.EncodePNG(&buf, thumb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
