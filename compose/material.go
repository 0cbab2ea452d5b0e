package compose

import (
	"image"
	"image/color"
)

// Pixel program evaluated once per render target texel
type Shader interface {
	Name() string
	// u, v are texel centers in 0..1
	Sample(mid *MaterialInstanceDynamic, u, v float32) color.NRGBA
}

// Shader instance with bound parameters
type MaterialInstanceDynamic struct {
	parent   Shader
	textures map[string]image.Image
	scalars  map[string]float32
}

func NewMaterialInstanceDynamic(parent Shader) *MaterialInstanceDynamic {
	return &MaterialInstanceDynamic{
		parent:   parent,
		textures: make(map[string]image.Image),
		scalars:  make(map[string]float32),
	}
}

func (mid *MaterialInstanceDynamic) Parent() Shader { return mid.parent }

func (mid *MaterialInstanceDynamic) SetTextureParameter(name string, img image.Image) {
	mid.textures[name] = img
}

func (mid *MaterialInstanceDynamic) SetScalarParameter(name string, v float32) {
	mid.scalars[name] = v
}

func (mid *MaterialInstanceDynamic) TextureParameter(name string) image.Image {
	return mid.textures[name]
}

func (mid *MaterialInstanceDynamic) ScalarParameter(name string) (float32, bool) {
	v, ok := mid.scalars[name]
	return v, ok
}

type RenderTarget struct {
	Name  string
	Image *image.NRGBA
}

func NewRenderTarget(name string, size image.Point) *RenderTarget {
	return &RenderTarget{
		Name:  name,
		Image: image.NewNRGBA(image.Rectangle{Max: size}),
	}
}

func (rt *RenderTarget) Size() image.Point { return rt.Image.Bounds().Size() }

// Rasterizes the material over the whole render target
func DrawMaterialToRenderTarget(rt *RenderTarget, mid *MaterialInstanceDynamic) {
	size := rt.Size()
	if size.X == 0 || size.Y == 0 {
		return
	}
	fw, fh := float32(size.X), float32(size.Y)
	for y := 0; y < size.Y; y++ {
		v := (float32(y) + 0.5) / fh
		for x := 0; x < size.X; x++ {
			u := (float32(x) + 0.5) / fw
			rt.Image.SetNRGBA(x, y, mid.parent.Sample(mid, u, v))
		}
	}
}

// Nearest texel of img at u, v
func texelAt(img image.Image, u, v float32) image.Point {
	b := img.Bounds()
	x := b.Min.X + int(u*float32(b.Dx()))
	y := b.Min.Y + int(v*float32(b.Dy()))
	if x >= b.Max.X {
		x = b.Max.X - 1
	}
	if y >= b.Max.Y {
		y = b.Max.Y - 1
	}
	return image.Pt(x, y)
}
