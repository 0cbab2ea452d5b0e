package texture

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, img))

	decoded, err := Decode("T_Test.PNG", &buf)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 2), decoded.Bounds().Size())
	r, g, b, _ := decoded.At(1, 1).RGBA()
	assert.Equal(t, []uint32{10, 20, 30}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestSupportedFormats(t *testing.T) {
	for _, name := range []string{"a.png", "a.JPG", "a.jpeg", "a.tga", "a.bmp", "a.tiff", "a.webp", "a.gif"} {
		assert.True(t, IsSupported(name), name)
	}
	assert.False(t, IsSupported("a.meta.yaml"))
	assert.False(t, IsSupported("a"))

	_, err := Decode("a.psd", bytes.NewReader(nil))
	assert.Error(t, err)
}
