package texture

import (
	"image"
	"image/color"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

type PowerOfTwoMode int

const (
	PadNone PowerOfTwoMode = iota
	PadToPowerOfTwo
	PadToSquarePowerOfTwo
)

var powerOfTwoModeNames = [...]string{"none", "pad", "pad_square"}

func (m PowerOfTwoMode) String() string {
	if m < PadNone || m > PadToSquarePowerOfTwo {
		return "unknown"
	}
	return powerOfTwoModeNames[m]
}

func (m PowerOfTwoMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *PowerOfTwoMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range powerOfTwoModeNames {
		if name == s {
			*m = PowerOfTwoMode(i)
			return nil
		}
	}
	return errors.Errorf("Unknown power of two mode %q", s)
}

// Persisted per texture next to its source file
type ImportSettings struct {
	// 0 means full resolution
	MaxTextureSize int `yaml:"max_texture_size" json:"max_texture_size"`
	// max size before the first downscale since the last reset or restore
	PreviousMaxTextureSize *int           `yaml:"previous_max_texture_size,omitempty" json:"previous_max_texture_size,omitempty"`
	PowerOfTwoMode         PowerOfTwoMode `yaml:"power_of_two_mode" json:"power_of_two_mode"`
	SRGB                   bool           `yaml:"srgb" json:"srgb"`
}

func DefaultImportSettings() ImportSettings {
	return ImportSettings{SRGB: true}
}

// Called after a property of the texture changed
type ChangeListener func(t *Texture, property string)

type Texture struct {
	Name     string
	Source   image.Image
	Settings ImportSettings

	renderData image.Image
	listeners  []ChangeListener
}

func New(name string, source image.Image) *Texture {
	return &Texture{
		Name:     name,
		Source:   source,
		Settings: DefaultImportSettings(),
	}
}

func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (t *Texture) SourceSize() image.Point {
	if t.Source == nil {
		return image.Point{}
	}
	return t.Source.Bounds().Size()
}

func (t *Texture) IsSourcePowerOfTwo() bool {
	s := t.SourceSize()
	return IsPowerOfTwo(s.X) && IsPowerOfTwo(s.Y)
}

// Source size after power of two padding
func (t *Texture) PaddedSize() image.Point {
	s := t.SourceSize()
	switch t.Settings.PowerOfTwoMode {
	case PadToPowerOfTwo:
		return image.Pt(NextPowerOfTwo(s.X), NextPowerOfTwo(s.Y))
	case PadToSquarePowerOfTwo:
		p := NextPowerOfTwo(maxInt(s.X, s.Y))
		return image.Pt(p, p)
	}
	return s
}

// Largest dimension the texture has when no max size is set
func (t *Texture) FullResolution() int {
	s := t.PaddedSize()
	return maxInt(s.X, s.Y)
}

// Max size in effect, unset max size resolves to full resolution
func (t *Texture) CurrentMaxSize() int {
	if t.Settings.MaxTextureSize <= 0 {
		return t.FullResolution()
	}
	return t.Settings.MaxTextureSize
}

// Size of the built texture. Every dimension is halved together until
// the largest one fits the max size.
func (t *Texture) EffectiveSize() image.Point {
	s := t.PaddedSize()
	limit := t.Settings.MaxTextureSize
	if limit <= 0 {
		return s
	}
	for maxInt(s.X, s.Y) > limit && (s.X > 1 || s.Y > 1) {
		s.X = maxInt(s.X/2, 1)
		s.Y = maxInt(s.Y/2, 1)
	}
	return s
}

func (t *Texture) AddChangeListener(l ChangeListener) {
	t.listeners = append(t.listeners, l)
}

// Releases render data built with the old settings
func (t *Texture) PreEditChange(property string) {
	t.renderData = nil
}

// Rebuilds render data and notifies listeners
func (t *Texture) PostEditChange(property string) {
	t.renderData = t.buildRenderData()
	for _, l := range t.listeners {
		l(t, property)
	}
}

func (t *Texture) RenderData() image.Image {
	if t.renderData == nil {
		t.renderData = t.buildRenderData()
	}
	return t.renderData
}

func (t *Texture) buildRenderData() image.Image {
	if t.Source == nil {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	src := t.Source
	if padded := t.PaddedSize(); padded != t.SourceSize() {
		canvas := image.NewNRGBA(image.Rectangle{Max: padded})
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
		draw.Copy(canvas, image.Point{}, src, src.Bounds(), draw.Src, nil)
		src = canvas
	}
	size := t.EffectiveSize()
	if size == src.Bounds().Size() {
		return src
	}
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
