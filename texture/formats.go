package texture

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

type Loader func(r io.Reader) (image.Image, error)

var gHandlers = make(map[string]Loader)

func SetHandler(ext string, ldr Loader) {
	gHandlers[strings.ToLower(ext)] = ldr
}

func IsSupported(fileName string) bool {
	_, found := gHandlers[strings.ToLower(filepath.Ext(fileName))]
	return found
}

func SupportedExtensions() []string {
	result := make([]string, 0, len(gHandlers))
	for ext := range gHandlers {
		result = append(result, ext)
	}
	sort.Strings(result)
	return result
}

func Decode(fileName string, r io.Reader) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	h, found := gHandlers[ext]
	if !found {
		return nil, errors.Errorf("[texture] Cannot find loader for '%s' extension", ext)
	}
	img, err := h(r)
	if err != nil {
		return nil, errors.Wrapf(err, "[texture] Cannot decode '%s'", fileName)
	}
	return img, nil
}

func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return errors.Wrapf(enc.Encode(w, img), "Failed to encode png")
}

func init() {
	SetHandler(".png", png.Decode)
	SetHandler(".jpg", jpeg.Decode)
	SetHandler(".jpeg", jpeg.Decode)
	SetHandler(".gif", gif.Decode)
	SetHandler(".bmp", bmp.Decode)
	SetHandler(".tif", tiff.Decode)
	SetHandler(".tiff", tiff.Decode)
	SetHandler(".webp", webp.Decode)
	SetHandler(".tga", tga.Decode)
}
