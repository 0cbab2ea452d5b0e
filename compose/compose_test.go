package compose

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func gray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestCommonSizeValidation(t *testing.T) {
	var inputs [config.ColorSlotCount]Input
	inputs[0] = Input{Texture: gray(256, 256, 1), Name: "T_A"}
	inputs[1] = Input{Texture: gray(512, 512, 1), Name: "T_B"}
	_, err := CommonSize(inputs)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.True(t, strings.Contains(err.Error(), "mismatch"), err.Error())
	assert.Contains(t, err.Error(), "T_A")
	assert.Contains(t, err.Error(), "512x512")

	inputs[0] = Input{Texture: gray(300, 300, 1)}
	inputs[1] = Input{Texture: gray(300, 300, 1)}
	_, err = CommonSize(inputs)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "power of two")

	inputs[0] = Input{Texture: gray(256, 256, 1)}
	inputs[1] = Input{Texture: gray(256, 256, 1)}
	size, err := CommonSize(inputs)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(256, 256), size)
}

func TestCommonSizeIgnoresEmptyInputs(t *testing.T) {
	var inputs [config.ColorSlotCount]Input
	inputs[1] = Input{Texture: gray(64, 32, 1)}
	inputs[2] = Input{Texture: image.NewGray(image.Rect(0, 0, 0, 0))}
	size, err := CommonSize(inputs)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(64, 32), size)

	_, err = CommonSize([config.ColorSlotCount]Input{})
	assert.True(t, IsValidationError(err))
}

func TestComposePacksSelectedChannels(t *testing.T) {
	var inputs [config.ColorSlotCount]Input
	inputs[0] = Input{Texture: gray(4, 4, 10), Channel: config.ChannelRed}
	inputs[1] = Input{Texture: solid(4, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 40}), Channel: config.ChannelAlpha}
	inputs[2] = Input{Texture: solid(4, 4, color.NRGBA{R: 1, G: 2, B: 30, A: 255}), Channel: config.ChannelBlue}

	rt, err := Compose(inputs)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rt.Name, "RT_"))
	assert.Equal(t, image.Pt(4, 4), rt.Size())
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, color.NRGBA{R: 10, G: 40, B: 30, A: 255}, rt.Image.NRGBAAt(x, y))
		}
	}
}

func TestComposeFallbackColorPath(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(1, 0, color.RGBA{R: 200, G: 0, B: 0, A: 255})

	var inputs [config.ColorSlotCount]Input
	inputs[3] = Input{Texture: src, Channel: config.ChannelRed}
	rt, err := Compose(inputs)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 200}, rt.Image.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{A: 0}, rt.Image.NRGBAAt(0, 0))
}

func TestComposeRejectsMismatch(t *testing.T) {
	var inputs [config.ColorSlotCount]Input
	inputs[0] = Input{Texture: gray(256, 256, 1)}
	inputs[3] = Input{Texture: gray(512, 512, 1)}
	rt, err := Compose(inputs)
	assert.Nil(t, rt)
	assert.True(t, IsValidationError(err))
}

func TestMaterialParameters(t *testing.T) {
	mid := NewMaterialInstanceDynamic(ChannelPackShader{})
	_, ok := mid.ScalarParameter("Channel_R")
	assert.False(t, ok)
	mid.SetScalarParameter("Channel_R", 2)
	v, ok := mid.ScalarParameter("Channel_R")
	assert.True(t, ok)
	assert.Equal(t, float32(2), v)
	assert.Equal(t, "M_ChannelPack", mid.Parent().Name())

	rt := NewRenderTarget("RT_Empty", image.Point{})
	DrawMaterialToRenderTarget(rt, mid)
	assert.Equal(t, image.Point{}, rt.Size())
}
