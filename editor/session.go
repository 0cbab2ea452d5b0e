package editor

import (
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/registry"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/status"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/texture"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/world"
)

type Mode string

const (
	ModeFind  Mode = "find"
	ModeMerge Mode = "merge"
)

type Options struct {
	Registry *registry.Registry
	// nil when no level is loaded
	World *world.World
	// initial merge settings, defaults when nil
	Settings *config.Settings
	// where settings.save writes to, empty disables saving
	SettingsPath string
	// thumbnail edge in pixels
	ThumbnailSize int
}

// Row of the found textures list
type TextureListItem struct {
	ID             uuid.UUID `json:"id"`
	ObjectPath     string    `json:"object_path"`
	Name           string    `json:"name"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	SourceWidth    int       `json:"source_width"`
	SourceHeight   int       `json:"source_height"`
	MaxTextureSize int       `json:"max_texture_size"`
	Selected       bool      `json:"selected"`
}

// State of one open tool panel. Not safe for concurrent use, callers
// serialise access.
type Session struct {
	Settings *config.Settings

	registry     *registry.Registry
	world        *world.World
	settingsPath string
	mode         Mode

	actors  []*world.Actor
	browser []string
	found   []*TextureListItem

	thumbs *ThumbnailCache
	hooks  []func()
}

func NewSession(opts Options) (*Session, error) {
	if opts.Registry == nil {
		return nil, errors.Errorf("[editor] Session needs an asset registry")
	}
	s := &Session{
		Settings:     opts.Settings,
		registry:     opts.Registry,
		world:        opts.World,
		settingsPath: opts.SettingsPath,
		mode:         ModeFind,
	}
	if s.Settings == nil {
		s.Settings = config.NewSettings()
	} else {
		s.Settings = s.Settings.Clone()
	}
	if err := s.Settings.Validate(); err != nil {
		return nil, err
	}
	s.thumbs = NewThumbnailCache(s.registry, opts.ThumbnailSize)

	if s.world != nil {
		w := s.world
		s.hooks = append(s.hooks, s.registry.AddRedirector(func(from, to *registry.AssetData) int {
			return w.RedirectTexture(from.ObjectPath, to.ObjectPath, to.ContentFile())
		}))
	}
	s.hooks = append(s.hooks, s.registry.OnAssetCreated(func(a *registry.AssetData) {
		s.thumbs.Invalidate(a.ObjectPath)
		status.Info("Created texture %s", a.ObjectPath)
	}))
	return s, nil
}

// Unregisters the session from the registry. Settings are discarded
// unless saved before.
func (s *Session) Close() {
	for _, remove := range s.hooks {
		remove()
	}
	s.hooks = nil
}

func (s *Session) Registry() *registry.Registry { return s.registry }
func (s *Session) World() *world.World          { return s.world }
func (s *Session) Mode() Mode                   { return s.mode }
func (s *Session) Thumbnails() *ThumbnailCache  { return s.thumbs }

func (s *Session) SetMode(m Mode) error {
	switch m {
	case ModeFind, ModeMerge:
		s.mode = m
		return nil
	default:
		return errors.Errorf("Unknown mode %q", m)
	}
}

// Services queued background work, called periodically by the host
func (s *Session) Tick() {
	s.thumbs.Tick(thumbnailsPerTick)
}

func (s *Session) SelectedActors() []*world.Actor { return s.actors }

// Replaces actor selection
func (s *Session) SelectActors(ids []uuid.UUID) error {
	if s.world == nil {
		return errors.Errorf("No level loaded")
	}
	actors := make([]*world.Actor, 0, len(ids))
	for _, id := range ids {
		a := s.world.Actor(id)
		if a == nil {
			return errors.Errorf("Actor %v not found", id)
		}
		actors = append(actors, a)
	}
	s.actors = nil
	for _, a := range actors {
		s.selectActor(a)
	}
	return nil
}

func (s *Session) selectActor(a *world.Actor) {
	for _, sel := range s.actors {
		if sel == a {
			return
		}
	}
	s.actors = append(s.actors, a)
}

func (s *Session) SelectNone() { s.actors = nil }

// Content browser selection, object paths
func (s *Session) BrowserSelection() []string { return s.browser }

func (s *Session) SyncBrowserToAssets(objectPaths []string) error {
	for _, p := range objectPaths {
		if _, err := s.registry.Resolve(p); err != nil {
			return err
		}
	}
	s.browser = append([]string(nil), objectPaths...)
	return nil
}

func (s *Session) FoundTextures() []*TextureListItem { return s.found }

// Marks found list rows as selected, others get unselected
func (s *Session) SelectFound(objectPaths []string) {
	sel := make(map[string]bool, len(objectPaths))
	for _, p := range objectPaths {
		sel[p] = true
	}
	for _, item := range s.found {
		item.Selected = sel[item.ObjectPath]
	}
}

func (s *Session) selectedFound() []*TextureListItem {
	result := make([]*TextureListItem, 0)
	for _, item := range s.found {
		if item.Selected {
			result = append(result, item)
		}
	}
	return result
}

func (s *Session) listItem(a *registry.AssetData) (*TextureListItem, error) {
	t, err := s.registry.Load(a.ObjectPath)
	if err != nil {
		return nil, err
	}
	item := &TextureListItem{ID: a.ID, ObjectPath: a.ObjectPath, Name: a.Name}
	updateListItem(item, t)
	return item, nil
}

func updateListItem(item *TextureListItem, t *texture.Texture) {
	src := t.SourceSize()
	size := t.EffectiveSize()
	item.SourceWidth, item.SourceHeight = src.X, src.Y
	item.Width, item.Height = size.X, size.Y
	item.MaxTextureSize = t.Settings.MaxTextureSize
}

// Rereads sizes of listed textures, rows of deleted assets are dropped
func (s *Session) refreshFound() {
	kept := s.found[:0]
	for _, item := range s.found {
		t, err := s.registry.Load(item.ObjectPath)
		if err != nil {
			log.Printf("[editor] Dropping %q from found textures: %v", item.ObjectPath, err)
			continue
		}
		updateListItem(item, t)
		kept = append(kept, item)
	}
	s.found = kept
}

func (s *Session) loadTextures(objectPaths []string) ([]*texture.Texture, error) {
	result := make([]*texture.Texture, 0, len(objectPaths))
	for _, p := range objectPaths {
		t, err := s.registry.Load(p)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}
