package config

import (
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Color channel of a texture
type Channel int

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue
	ChannelAlpha
)

var channelNames = [...]string{"R", "G", "B", "A"}

func (c Channel) String() string {
	if c < ChannelRed || c > ChannelAlpha {
		return "?"
	}
	return channelNames[c]
}

func (c Channel) Valid() bool { return c >= ChannelRed && c <= ChannelAlpha }

func (c Channel) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, errors.Errorf("Invalid channel %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Channel) UnmarshalText(text []byte) error {
	ch, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = ch
	return nil
}

func ParseChannel(s string) (Channel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "R", "RED":
		return ChannelRed, nil
	case "G", "GREEN":
		return ChannelGreen, nil
	case "B", "BLUE":
		return ChannelBlue, nil
	case "A", "ALPHA":
		return ChannelAlpha, nil
	}
	return ChannelRed, errors.Errorf("Unknown channel %q", s)
}

// Slot of the merge settings. R..A feed the output channels,
// Replace names the asset the merged result supersedes.
type Slot int

const (
	SlotR Slot = iota
	SlotG
	SlotB
	SlotA
	SlotReplace

	SlotCount = 5
	// slots feeding the output image
	ColorSlotCount = 4
)

var slotNames = [SlotCount]string{"R", "G", "B", "A", "Replace"}

func (s Slot) String() string {
	if s < 0 || int(s) >= SlotCount {
		return "?"
	}
	return slotNames[s]
}

type ChannelSource struct {
	// object path of the source texture
	Texture string  `yaml:"texture,omitempty" json:"texture"`
	Channel Channel `yaml:"channel" json:"channel"`
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Keyword string  `yaml:"keyword,omitempty" json:"keyword"`
}

func (cs *ChannelSource) HasTexture() bool { return cs.Enabled && cs.Texture != "" }

type Settings struct {
	Sources [SlotCount]ChannelSource `yaml:"sources" json:"sources"`

	// batch mode
	InputPath string `yaml:"input_path" json:"input_path"`
	Recursive bool   `yaml:"recursive" json:"recursive"`

	// package path for merged textures, empty means next to the R source
	OutputPath string `yaml:"output_path,omitempty" json:"output_path"`
	// name of single merge result, empty means derived from sources
	OutputName string `yaml:"output_name,omitempty" json:"output_name"`

	// when set, objects visited while searching for one texture are
	// not searched again for the following ones of the same batch
	ShareVisited bool `yaml:"share_visited" json:"share_visited"`
}

func NewSettings() *Settings {
	s := &Settings{}
	for i := 0; i < ColorSlotCount; i++ {
		s.Sources[i] = ChannelSource{Channel: Channel(i), Enabled: true}
	}
	s.Sources[SlotReplace] = ChannelSource{Channel: ChannelRed}
	return s
}

func (s *Settings) Source(slot Slot) *ChannelSource { return &s.Sources[slot] }

// Enabled slots in R, G, B, A, Replace order
func (s *Settings) EnabledSlots() []Slot {
	result := make([]Slot, 0, SlotCount)
	for i := range s.Sources {
		if s.Sources[i].Enabled {
			result = append(result, Slot(i))
		}
	}
	return result
}

// Slots which are enabled and point to a texture
func (s *Settings) TexturedSlots() []Slot {
	result := make([]Slot, 0, SlotCount)
	for i := range s.Sources {
		if s.Sources[i].HasTexture() {
			result = append(result, Slot(i))
		}
	}
	return result
}

func (s *Settings) Validate() error {
	for i := range s.Sources {
		if !s.Sources[i].Channel.Valid() {
			return errors.Errorf("Slot %s has invalid channel %d", Slot(i), int(s.Sources[i].Channel))
		}
	}
	return nil
}

func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}

func LoadSettings(path string) (*Settings, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read settings %q", path)
	}
	s := NewSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "Unmarshaling settings %q", path)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "Marshaling settings")
	}
	if err := ioutil.WriteFile(path, data, 0666); err != nil {
		return errors.Wrapf(err, "Writing settings %q", path)
	}
	return nil
}
