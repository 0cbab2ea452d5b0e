package editor

import (
	"log"

	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/status"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/world"
)

// Fills found list with the content textures used by the selected actors
func (s *Session) FindTexturesOfSelection() error {
	seen := make(map[string]bool)
	found := make([]*TextureListItem, 0)
	for _, a := range s.actors {
		for _, ref := range world.ActorTextures(a) {
			if seen[ref.ObjectPath] {
				continue
			}
			seen[ref.ObjectPath] = true

			asset, err := s.registry.Resolve(ref.ObjectPath)
			if err != nil {
				log.Printf("[editor] Texture %q of %q is not a content asset: %v", ref.ObjectPath, a.Name(), err)
				continue
			}
			item, err := s.listItem(asset)
			if err != nil {
				log.Printf("[editor] Failed to load %q: %v", ref.ObjectPath, err)
				continue
			}
			log.Printf("[editor] Found texture %q, size %dx%d", item.ObjectPath, item.Width, item.Height)
			found = append(found, item)
			s.thumbs.Request(item.ObjectPath)
		}
	}
	s.found = found
	return nil
}

func (s *Session) ClearFound() {
	s.found = nil
}

// Content browser selection becomes the selected found textures
func (s *Session) SyncBrowserToFound() error {
	items := s.selectedFound()
	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = item.ObjectPath
	}
	return s.SyncBrowserToAssets(paths)
}

// Replaces actor selection with the actors using the selected found
// textures. Returns the selected actors.
func (s *Session) FindActorsUsingSelection() ([]*world.Actor, error) {
	if s.world == nil {
		return nil, errors.Errorf("No level loaded")
	}
	items := s.selectedFound()
	targets := make([]world.Object, 0, len(items))
	for _, item := range items {
		if ref := s.world.Texture(item.ObjectPath); ref != nil {
			targets = append(targets, ref)
		}
	}

	s.SelectNone()
	task := status.BeginTask("Finding actors that use this asset...", 2+len(targets))

	graph := world.BuildReferenceGraph(s.world)
	task.Step("Reference graph built")

	actors, _ := graph.FindActorsForTargets(targets, s.Settings.ShareVisited, func(t world.Object) {
		task.Step("Searching %s", t.Name())
	})

	for _, a := range actors {
		s.selectActor(a)
	}
	if len(actors) == 0 {
		task.Finish("No actors found.")
	} else {
		task.Finish("Selected %d actors", len(actors))
	}
	return actors, nil
}
