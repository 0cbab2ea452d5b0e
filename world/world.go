package world

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/registry"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/utils"
)

// Persistent level with its streamed sub-levels
type World struct {
	contentRoot string

	Levels   []*Level
	textures map[string]*TextureReference
	objects  map[uuid.UUID]Object
}

// contentRoot is used to turn image uris into asset object paths
func New(contentRoot string) *World {
	return &World{
		contentRoot: contentRoot,
		textures:    make(map[string]*TextureReference),
		objects:     make(map[uuid.UUID]Object),
	}
}

func Load(contentRoot, persistent string, streamed []string) (*World, error) {
	w := New(contentRoot)
	if err := w.LoadLevel(persistent, false); err != nil {
		return nil, err
	}
	for _, p := range streamed {
		if err := w.LoadLevel(p, true); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *World) LoadLevel(path string, streamed bool) error {
	doc, err := gltf.Open(path)
	if err != nil {
		return errors.Wrapf(err, "[world] Failed to open level %q", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l, err := w.AddLevel(name, doc, filepath.Dir(path), streamed)
	if err != nil {
		return err
	}
	l.Path = path
	log.Printf("[world] Loaded level %q: %d actors", name, len(l.Actors))
	return nil
}

func (w *World) register(o Object) {
	w.objects[o.ID()] = o
}

func (w *World) Object(id uuid.UUID) Object { return w.objects[id] }

func (w *World) Actor(id uuid.UUID) *Actor {
	a, _ := w.objects[id].(*Actor)
	return a
}

func (w *World) Actors() []*Actor {
	result := make([]*Actor, 0)
	for _, l := range w.Levels {
		result = append(result, l.Actors...)
	}
	return result
}

func (w *World) Texture(objectPath string) *TextureReference {
	return w.textures[objectPath]
}

func (w *World) texture(objectPath string) *TextureReference {
	if t, ok := w.textures[objectPath]; ok {
		return t
	}
	_, name := registry.SplitObjectPath(objectPath)
	t := &TextureReference{objectBase: newBase(name), ObjectPath: objectPath}
	w.textures[objectPath] = t
	w.register(t)
	return t
}

// Adds level built from doc. baseDir is the directory relative image
// uris are resolved against.
func (w *World) AddLevel(name string, doc *gltf.Document, baseDir string, streamed bool) (*Level, error) {
	l := &Level{
		objectBase: newBase(name),
		Streamed:   streamed,
		Document:   doc,
		baseDir:    baseDir,
		images:     make(map[*TextureReference][]uint32),
	}
	w.register(l)

	imageRefs := make([]*TextureReference, len(doc.Images))
	for i, img := range doc.Images {
		if objectPath, ok := w.imageObjectPath(img, baseDir); ok {
			t := w.texture(objectPath)
			imageRefs[i] = t
			l.images[t] = append(l.images[t], uint32(i))
		}
	}

	textureOf := func(index uint32) *TextureReference {
		if int(index) >= len(doc.Textures) {
			return nil
		}
		tex := doc.Textures[index]
		if tex.Source == nil || int(*tex.Source) >= len(imageRefs) {
			return nil
		}
		return imageRefs[*tex.Source]
	}

	materials := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		name := gm.Name
		if name == "" {
			name = fmt.Sprintf("%s_Material_%d", l.Name(), i)
		}
		m := &Material{objectBase: newBase(name), Textures: make(map[string]*TextureReference)}
		bind := func(slot string, t *TextureReference) {
			if t != nil {
				m.Textures[slot] = t
			}
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorTexture != nil {
				bind(SlotBaseColor, textureOf(pbr.BaseColorTexture.Index))
			}
			if pbr.MetallicRoughnessTexture != nil {
				bind(SlotMetallicRoughness, textureOf(pbr.MetallicRoughnessTexture.Index))
			}
		}
		if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
			bind(SlotNormal, textureOf(*gm.NormalTexture.Index))
		}
		if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
			bind(SlotOcclusion, textureOf(*gm.OcclusionTexture.Index))
		}
		if gm.EmissiveTexture != nil {
			bind(SlotEmissive, textureOf(gm.EmissiveTexture.Index))
		}
		w.register(m)
		materials[i] = m
	}

	var roots []uint32
	if len(doc.Scenes) != 0 {
		scene := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			scene = int(*doc.Scene)
		}
		roots = doc.Scenes[scene].Nodes
	} else {
		for i := range doc.Nodes {
			roots = append(roots, uint32(i))
		}
	}

	visited := make(map[uint32]bool)
	var walk func(index uint32, parent mgl32.Mat4) error
	walk = func(index uint32, parent mgl32.Mat4) error {
		if int(index) >= len(doc.Nodes) {
			return errors.Errorf("[world] Level %q references missing node %d", name, index)
		}
		if visited[index] {
			return errors.Errorf("[world] Level %q has node %d in several places", name, index)
		}
		visited[index] = true

		node := doc.Nodes[index]
		transform := nodeTransform(parent, node)
		if node.Mesh != nil && int(*node.Mesh) < len(doc.Meshes) {
			l.Actors = append(l.Actors, w.newActor(l, node, index, doc.Meshes[*node.Mesh], materials, transform))
		}
		for _, child := range node.Children {
			if err := walk(child, transform); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := walk(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}

	w.Levels = append(w.Levels, l)
	return l, nil
}

func (w *World) newActor(l *Level, node *gltf.Node, index uint32, mesh *gltf.Mesh, materials []*Material, transform mgl32.Mat4) *Actor {
	name := node.Name
	if name == "" {
		name = fmt.Sprintf("%s_Actor_%d", l.Name(), index)
	}
	meshName := mesh.Name
	if meshName == "" {
		meshName = name + "_Mesh"
	}

	comp := &MeshComponent{objectBase: newBase(meshName + "Component"), Mesh: meshName}
	for _, p := range mesh.Primitives {
		if p.Material != nil && int(*p.Material) < len(materials) {
			comp.Materials = append(comp.Materials, materials[*p.Material])
		} else {
			comp.Materials = append(comp.Materials, nil)
		}
	}
	w.register(comp)

	location, rotation, scale := utils.Decompose(transform)
	a := &Actor{
		objectBase: newBase(name),
		Level:      l,
		Location:   location,
		Rotation:   rotation,
		Scale:      scale,
		Components: []*MeshComponent{comp},
	}
	w.register(a)
	return a
}

func nodeTransform(parent mgl32.Mat4, node *gltf.Node) mgl32.Mat4 {
	local := mgl32.Mat4(node.MatrixOrDefault())
	if local == mgl32.Ident4() {
		local = utils.TRS(node.TranslationOrDefault(), node.RotationOrDefault(), node.ScaleOrDefault())
	}
	return parent.Mul4(local)
}

// Object path of an image. Uris starting with the content root prefix are
// object paths already, others are files relative to baseDir which must
// be inside the content root.
func (w *World) imageObjectPath(img *gltf.Image, baseDir string) (string, bool) {
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return "", false
	}
	uri, err := url.PathUnescape(img.URI)
	if err != nil {
		uri = img.URI
	}
	if strings.HasPrefix(uri, registry.GameRoot+"/") {
		return registry.ObjectPathFromFile(strings.TrimPrefix(uri, registry.GameRoot+"/")), true
	}
	if w.contentRoot == "" {
		return "", false
	}
	file := uri
	if !filepath.IsAbs(file) {
		file = filepath.Join(baseDir, filepath.FromSlash(uri))
	}
	root, err := filepath.Abs(w.contentRoot)
	if err != nil {
		return "", false
	}
	if abs, err := filepath.Abs(file); err == nil {
		file = abs
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		log.Printf("[world] Image %q is outside of content directory", img.URI)
		return "", false
	}
	return registry.ObjectPathFromFile(filepath.ToSlash(rel)), true
}

// Points every material slot and level image using from to to, returns
// number of changed material slots. toFile is the file of to relative to
// the content root. Levels with rewritten images are marked dirty.
func (w *World) RedirectTexture(from, to, toFile string) int {
	old, ok := w.textures[from]
	if !ok || from == to {
		return 0
	}
	target := w.texture(to)
	count := 0
	for _, o := range w.objects {
		m, ok := o.(*Material)
		if !ok {
			continue
		}
		for slot, t := range m.Textures {
			if t == old {
				m.Textures[slot] = target
				count++
			}
		}
	}
	for _, l := range w.Levels {
		indices, ok := l.images[old]
		if !ok {
			continue
		}
		uri := w.imageURI(l, l.Document.Images[indices[0]].URI, toFile)
		for _, i := range indices {
			l.Document.Images[i].URI = uri
		}
		l.images[target] = append(l.images[target], indices...)
		delete(l.images, old)
		l.Dirty = true
	}
	delete(w.textures, from)
	delete(w.objects, old.ID())
	return count
}

// Uri of a content file in the style of prev: content root prefixed when
// prev was, otherwise relative to the level directory.
func (w *World) imageURI(l *Level, prev, file string) string {
	gameURI := registry.GameRoot + "/" + file
	if strings.HasPrefix(prev, registry.GameRoot+"/") || w.contentRoot == "" {
		return gameURI
	}
	target, err := filepath.Abs(filepath.Join(w.contentRoot, filepath.FromSlash(file)))
	if err != nil {
		return gameURI
	}
	if filepath.IsAbs(prev) {
		return filepath.ToSlash(target)
	}
	base, err := filepath.Abs(l.baseDir)
	if err != nil {
		return gameURI
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return gameURI
	}
	return filepath.ToSlash(rel)
}

func (w *World) DirtyLevels() []*Level {
	result := make([]*Level, 0)
	for _, l := range w.Levels {
		if l.Dirty {
			result = append(result, l)
		}
	}
	return result
}

// Writes every dirty level back to its file, .glb levels as binary.
// Levels built in memory have nothing to write and just get cleaned.
func (w *World) SaveLevels() error {
	for _, l := range w.DirtyLevels() {
		if l.Path != "" {
			save := gltf.Save
			if strings.EqualFold(filepath.Ext(l.Path), ".glb") {
				save = gltf.SaveBinary
			}
			if err := save(l.Document, l.Path); err != nil {
				return errors.Wrapf(err, "[world] Failed to save level %q", l.Path)
			}
			log.Printf("[world] Saved level %q", l.Path)
		}
		l.Dirty = false
	}
	return nil
}

// Textures used by the materials of an actor's components, in slot order
func ActorTextures(a *Actor) []*TextureReference {
	result := make([]*TextureReference, 0)
	seen := make(map[*TextureReference]bool)
	for _, c := range a.Components {
		for _, m := range c.Materials {
			if m == nil {
				continue
			}
			for _, slot := range MaterialSlots {
				if t := m.Textures[slot]; t != nil && !seen[t] {
					seen[t] = true
					result = append(result, t)
				}
			}
		}
	}
	return result
}
