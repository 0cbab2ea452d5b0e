package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
)

type Kind string

const (
	KindLevel     Kind = "level"
	KindActor     Kind = "actor"
	KindComponent Kind = "component"
	KindMaterial  Kind = "material"
	KindTexture   Kind = "texture"
)

type Object interface {
	ID() uuid.UUID
	Name() string
	Kind() Kind
	// objects referenced by this one
	References() []Object
}

type objectBase struct {
	id   uuid.UUID
	name string
}

func newBase(name string) objectBase {
	return objectBase{id: uuid.New(), name: name}
}

func (o *objectBase) ID() uuid.UUID { return o.id }
func (o *objectBase) Name() string  { return o.name }

type Level struct {
	objectBase
	// file the level was loaded from, empty for levels built in memory
	Path     string
	Streamed bool
	Actors   []*Actor

	Document *gltf.Document
	// set when image uris of Document changed since the last save
	Dirty bool

	baseDir string
	images  map[*TextureReference][]uint32
}

func (l *Level) Kind() Kind { return KindLevel }

func (l *Level) References() []Object {
	refs := make([]Object, len(l.Actors))
	for i, a := range l.Actors {
		refs[i] = a
	}
	return refs
}

// Placed mesh node of a level
type Actor struct {
	objectBase
	Level      *Level
	Location   mgl32.Vec3
	Rotation   mgl32.Vec3 // euler, degrees
	Scale      mgl32.Vec3
	Components []*MeshComponent
}

func (a *Actor) Kind() Kind { return KindActor }

func (a *Actor) References() []Object {
	refs := make([]Object, len(a.Components))
	for i, c := range a.Components {
		refs[i] = c
	}
	return refs
}

type MeshComponent struct {
	objectBase
	Mesh      string
	Materials []*Material
}

func (c *MeshComponent) Kind() Kind { return KindComponent }

func (c *MeshComponent) References() []Object {
	refs := make([]Object, 0, len(c.Materials))
	for _, m := range c.Materials {
		if m != nil {
			refs = append(refs, m)
		}
	}
	return refs
}

// Material texture slots
const (
	SlotBaseColor         = "BaseColor"
	SlotMetallicRoughness = "MetallicRoughness"
	SlotNormal            = "Normal"
	SlotOcclusion         = "Occlusion"
	SlotEmissive          = "Emissive"
)

var MaterialSlots = []string{SlotBaseColor, SlotMetallicRoughness, SlotNormal, SlotOcclusion, SlotEmissive}

type Material struct {
	objectBase
	Textures map[string]*TextureReference
}

func (m *Material) Kind() Kind { return KindMaterial }

func (m *Material) References() []Object {
	refs := make([]Object, 0, len(m.Textures))
	for _, slot := range MaterialSlots {
		if t := m.Textures[slot]; t != nil {
			refs = append(refs, t)
		}
	}
	return refs
}

// Texture asset as seen by the world. One object per asset, shared by
// every material of every level using it.
type TextureReference struct {
	objectBase
	ObjectPath string
}

func (t *TextureReference) Kind() Kind { return KindTexture }

func (t *TextureReference) References() []Object { return nil }
