package texture

import (
	"fmt"
	"strings"
)

const PropertyMaxTextureSize = "MaxTextureSize"

// Returned when at least one texture of a downscale request cannot be
// downscaled. No texture of the request is modified in that case.
type DownscaleBlockedError struct {
	Names []string
}

func (e *DownscaleBlockedError) Error() string {
	return fmt.Sprintf("Textures are not power of two and have no padding, downscale is not possible:\n%s",
		strings.Join(e.Names, "\n"))
}

// Non power of two sources without padding keep their resolution
func CanDownscale(t *Texture) bool {
	return t.IsSourcePowerOfTwo() || t.Settings.PowerOfTwoMode != PadNone
}

func CheckDownscale(ts []*Texture) error {
	var blocked []string
	for _, t := range ts {
		if !CanDownscale(t) {
			blocked = append(blocked, t.Name)
		}
	}
	if len(blocked) != 0 {
		return &DownscaleBlockedError{Names: blocked}
	}
	return nil
}

// Halves max size of every texture, or changes nothing and returns
// *DownscaleBlockedError when any of them cannot be downscaled.
func DownscaleAll(ts []*Texture) error {
	if err := CheckDownscale(ts); err != nil {
		return err
	}
	for _, t := range ts {
		downscale(t)
	}
	return nil
}

func downscale(t *Texture) {
	t.PreEditChange(PropertyMaxTextureSize)
	if t.Settings.PreviousMaxTextureSize == nil {
		prev := t.Settings.MaxTextureSize
		t.Settings.PreviousMaxTextureSize = &prev
	}
	t.Settings.MaxTextureSize = maxInt(t.CurrentMaxSize()/2, 1)
	t.PostEditChange(PropertyMaxTextureSize)
}

// Sets max size back to full resolution
func ResetAll(ts []*Texture) {
	for _, t := range ts {
		t.PreEditChange(PropertyMaxTextureSize)
		t.Settings.MaxTextureSize = 0
		t.Settings.PreviousMaxTextureSize = nil
		t.PostEditChange(PropertyMaxTextureSize)
	}
}

// Sets max size back to the value it had before the first downscale.
// Returns number of restored textures.
func RestoreAll(ts []*Texture) int {
	restored := 0
	for _, t := range ts {
		if t.Settings.PreviousMaxTextureSize == nil {
			continue
		}
		t.PreEditChange(PropertyMaxTextureSize)
		t.Settings.MaxTextureSize = *t.Settings.PreviousMaxTextureSize
		t.Settings.PreviousMaxTextureSize = nil
		t.PostEditChange(PropertyMaxTextureSize)
		restored++
	}
	return restored
}
