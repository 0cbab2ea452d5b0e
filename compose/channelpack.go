package compose

import (
	"image"
	"image/color"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
)

var (
	textureParams = [config.ColorSlotCount]string{"Texture_R", "Texture_G", "Texture_B", "Texture_A"}
	channelParams = [config.ColorSlotCount]string{"Channel_R", "Channel_G", "Channel_B", "Channel_A"}
)

// Missing input channel select
const ChannelNone = -1

// Writes a selected channel of up to four textures into R, G, B and A.
// Missing inputs give 0 for color and 255 for alpha.
type ChannelPackShader struct{}

func (ChannelPackShader) Name() string { return "M_ChannelPack" }

func (ChannelPackShader) Sample(mid *MaterialInstanceDynamic, u, v float32) color.NRGBA {
	out := [4]uint8{0, 0, 0, 0xff}
	for i := range textureParams {
		tex := mid.TextureParameter(textureParams[i])
		sel, ok := mid.ScalarParameter(channelParams[i])
		if tex == nil || !ok || sel < 0 {
			continue
		}
		p := texelAt(tex, u, v)
		out[i] = channelValue(tex, p.X, p.Y, config.Channel(int(sel)))
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

func channelValue(img image.Image, x, y int, ch config.Channel) uint8 {
	switch im := img.(type) {
	case *image.Gray:
		if ch == config.ChannelAlpha {
			return 0xff
		}
		return im.GrayAt(x, y).Y
	case *image.NRGBA:
		i := im.PixOffset(x, y)
		return im.Pix[i+int(ch)]
	}
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	switch ch {
	case config.ChannelRed:
		return c.R
	case config.ChannelGreen:
		return c.G
	case config.ChannelBlue:
		return c.B
	}
	return c.A
}
