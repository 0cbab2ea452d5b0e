package editor

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/status"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/texture"
)

const sizeDialogTitle = "Texture Size"

func (s *Session) selectedFoundPaths() []string {
	items := s.selectedFound()
	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = item.ObjectPath
	}
	return paths
}

// Halves max size of the textures. Nothing changes when any of them
// cannot be downscaled.
func (s *Session) DownscaleTextures(objectPaths []string) error {
	ts, err := s.loadTextures(objectPaths)
	if err != nil {
		return err
	}
	if err := texture.DownscaleAll(ts); err != nil {
		var blocked *texture.DownscaleBlockedError
		if errors.As(err, &blocked) {
			status.Dialog(sizeDialogTitle, "Maximum Texture Size cannot be changed for this texture as it is a non power of two size. "+
				"Change the Power of Two Mode to allow it to be padded to a power of two.\n%s", strings.Join(blocked.Names, "\n"))
		}
		return err
	}
	s.afterResize(objectPaths)
	return nil
}

func (s *Session) ResetTextureSizes(objectPaths []string) error {
	ts, err := s.loadTextures(objectPaths)
	if err != nil {
		return err
	}
	texture.ResetAll(ts)
	s.afterResize(objectPaths)
	return nil
}

// Returns number of textures put back to their size before downscaling
func (s *Session) RestoreTextureSizes(objectPaths []string) (int, error) {
	ts, err := s.loadTextures(objectPaths)
	if err != nil {
		return 0, err
	}
	n := texture.RestoreAll(ts)
	s.afterResize(objectPaths)
	return n, nil
}

func (s *Session) afterResize(objectPaths []string) {
	for _, p := range objectPaths {
		s.thumbs.Invalidate(p)
	}
	s.refreshFound()
}
