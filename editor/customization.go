package editor

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/registry"
)

// Type tags of editable settings properties
const (
	TagChannelSource = "channel_source"
	TagDirectoryPath = "directory_path"
	TagTextureRef    = "texture_ref"
	TagBool          = "bool"
	TagString        = "string"
)

type WidgetDesc struct {
	Kind    string   `json:"kind"`
	Options []string `json:"options,omitempty"`
	// asset picker filtered to textures, with thumbnail
	TexturePicker bool `json:"texture_picker,omitempty"`
	// directory picker rooted at the content root
	PathPicker bool `json:"path_picker,omitempty"`
}

// Renders and validates one kind of property
type Customization interface {
	Describe() WidgetDesc
	Validate(s *Session, value interface{}) error
}

var customizations = make(map[string]Customization)

func RegisterCustomization(tag string, c Customization) {
	customizations[tag] = c
}

func GetCustomization(tag string) (Customization, bool) {
	c, ok := customizations[tag]
	return c, ok
}

type channelSourceCustomization struct{}

func (channelSourceCustomization) Describe() WidgetDesc {
	opts := make([]string, 0, config.ColorSlotCount)
	for c := config.ChannelRed; c <= config.ChannelAlpha; c++ {
		opts = append(opts, c.String())
	}
	return WidgetDesc{Kind: "channel_source", Options: opts, TexturePicker: true}
}

func (channelSourceCustomization) Validate(s *Session, value interface{}) error {
	cs, ok := value.(config.ChannelSource)
	if !ok {
		return errors.Errorf("Expected channel source, got %T", value)
	}
	if !cs.Channel.Valid() {
		return errors.Errorf("Invalid channel %d", int(cs.Channel))
	}
	return textureRefCustomization{}.Validate(s, cs.Texture)
}

type directoryPathCustomization struct{}

func (directoryPathCustomization) Describe() WidgetDesc {
	return WidgetDesc{Kind: "text", PathPicker: true}
}

func (directoryPathCustomization) Validate(s *Session, value interface{}) error {
	p, ok := value.(string)
	if !ok {
		return errors.Errorf("Expected path, got %T", value)
	}
	if p == "" {
		return nil
	}
	if _, ok := registry.RelativeDir(p); !ok {
		return errors.Errorf("Path %q is outside of %s", p, registry.GameRoot)
	}
	return nil
}

type textureRefCustomization struct{}

func (textureRefCustomization) Describe() WidgetDesc {
	return WidgetDesc{Kind: "asset", TexturePicker: true}
}

func (textureRefCustomization) Validate(s *Session, value interface{}) error {
	p, ok := value.(string)
	if !ok {
		return errors.Errorf("Expected object path, got %T", value)
	}
	if p == "" {
		return nil
	}
	_, err := s.registry.Resolve(p)
	return err
}

type boolCustomization struct{}

func (boolCustomization) Describe() WidgetDesc { return WidgetDesc{Kind: "checkbox"} }

func (boolCustomization) Validate(s *Session, value interface{}) error {
	if _, ok := value.(bool); !ok {
		return errors.Errorf("Expected bool, got %T", value)
	}
	return nil
}

type stringCustomization struct{}

func (stringCustomization) Describe() WidgetDesc { return WidgetDesc{Kind: "text"} }

func (stringCustomization) Validate(s *Session, value interface{}) error {
	if _, ok := value.(string); !ok {
		return errors.Errorf("Expected string, got %T", value)
	}
	return nil
}

func init() {
	RegisterCustomization(TagChannelSource, channelSourceCustomization{})
	RegisterCustomization(TagDirectoryPath, directoryPathCustomization{})
	RegisterCustomization(TagTextureRef, textureRefCustomization{})
	RegisterCustomization(TagBool, boolCustomization{})
	RegisterCustomization(TagString, stringCustomization{})
}

// Editable property of the merge settings
type Property struct {
	Name  string
	Label string
	Tag   string
	get   func(st *config.Settings) interface{}
}

func sourceProperty(slot config.Slot) Property {
	return Property{
		Name:  "Sources." + slot.String(),
		Label: slot.String(),
		Tag:   TagChannelSource,
		get:   func(st *config.Settings) interface{} { return st.Sources[slot] },
	}
}

var sourceProperties = []Property{
	sourceProperty(config.SlotR),
	sourceProperty(config.SlotG),
	sourceProperty(config.SlotB),
	sourceProperty(config.SlotA),
	sourceProperty(config.SlotReplace),
}

var batchProperties = []Property{
	{Name: "InputPath", Label: "Input Directory", Tag: TagDirectoryPath, get: func(st *config.Settings) interface{} { return st.InputPath }},
	{Name: "Recursive", Label: "Recursive", Tag: TagBool, get: func(st *config.Settings) interface{} { return st.Recursive }},
}

var outputProperties = []Property{
	{Name: "OutputPath", Label: "Output Directory", Tag: TagDirectoryPath, get: func(st *config.Settings) interface{} { return st.OutputPath }},
	{Name: "OutputName", Label: "Output Name", Tag: TagString, get: func(st *config.Settings) interface{} { return st.OutputName }},
}

var searchProperties = []Property{
	{Name: "ShareVisited", Label: "Skip Objects Found For Previous Textures", Tag: TagBool, get: func(st *config.Settings) interface{} { return st.ShareVisited }},
}

func allProperties() []Property {
	result := make([]Property, 0)
	result = append(result, sourceProperties...)
	result = append(result, batchProperties...)
	result = append(result, outputProperties...)
	return append(result, searchProperties...)
}

// Validates every property of st and makes it the session settings
func (s *Session) ApplySettings(st *config.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	for _, p := range allProperties() {
		c, ok := customizations[p.Tag]
		if !ok {
			return errors.Errorf("No customization for %q", p.Tag)
		}
		if err := c.Validate(s, p.get(st)); err != nil {
			return errors.Wrapf(err, "%s", p.Name)
		}
	}
	s.Settings = st.Clone()
	return nil
}

type PropertyView struct {
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Tag    string      `json:"tag"`
	Widget WidgetDesc  `json:"widget"`
	Value  interface{} `json:"value"`
}

func (s *Session) propertyViews(props []Property) []PropertyView {
	result := make([]PropertyView, 0, len(props))
	for _, p := range props {
		c, ok := customizations[p.Tag]
		if !ok {
			panic(fmt.Sprintf("no customization for %q", p.Tag))
		}
		result = append(result, PropertyView{
			Name:   p.Name,
			Label:  p.Label,
			Tag:    p.Tag,
			Widget: c.Describe(),
			Value:  p.get(s.Settings),
		})
	}
	return result
}
