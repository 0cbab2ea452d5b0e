package compose

import (
	"fmt"
	"image"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/texture"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/utils"
)

// Source of one output channel. Nil texture leaves the channel empty.
type Input struct {
	Texture image.Image
	Channel config.Channel
	// shown in validation messages
	Name string
}

func (in *Input) empty() bool {
	if in.Texture == nil {
		return true
	}
	s := in.Texture.Bounds().Size()
	return s.X == 0 || s.Y == 0
}

// Inputs cannot be composed, Reason is meant for the user
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

func inputLabel(in *Input, slot int) string {
	if in.Name != "" {
		return in.Name
	}
	return config.Slot(slot).String()
}

// Size shared by all non empty inputs. Width and height must be powers of two.
func CommonSize(inputs [config.ColorSlotCount]Input) (image.Point, error) {
	var size image.Point
	first := -1
	for i := range inputs {
		if inputs[i].empty() {
			continue
		}
		s := inputs[i].Texture.Bounds().Size()
		if first < 0 {
			first, size = i, s
			continue
		}
		if s != size {
			return image.Point{}, &ValidationError{Reason: fmt.Sprintf(
				"Texture size mismatch: %s is %dx%d, %s is %dx%d",
				inputLabel(&inputs[first], first), size.X, size.Y,
				inputLabel(&inputs[i], i), s.X, s.Y)}
		}
	}
	if first < 0 {
		return image.Point{}, &ValidationError{Reason: "No input textures"}
	}
	if !texture.IsPowerOfTwo(size.X) || !texture.IsPowerOfTwo(size.Y) {
		return image.Point{}, &ValidationError{Reason: fmt.Sprintf(
			"Invalid texture size %dx%d, width and height must be power of two", size.X, size.Y)}
	}
	return size, nil
}

var rtNames = utils.NewRandomNameGenerator(0)

// Packs the selected channel of every input into one render target
func Compose(inputs [config.ColorSlotCount]Input) (*RenderTarget, error) {
	size, err := CommonSize(inputs)
	if err != nil {
		return nil, err
	}

	mid := NewMaterialInstanceDynamic(ChannelPackShader{})
	for i := range inputs {
		if inputs[i].empty() {
			mid.SetScalarParameter(channelParams[i], ChannelNone)
			continue
		}
		mid.SetTextureParameter(textureParams[i], inputs[i].Texture)
		mid.SetScalarParameter(channelParams[i], float32(inputs[i].Channel))
	}

	rt := NewRenderTarget(rtNames.Name("RT_"), size)
	DrawMaterialToRenderTarget(rt, mid)
	return rt, nil
}
