package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One material using T_X (base color) and T_N (normal), one mesh node
// named ActorZ, an unused material on a second node using T_Other.
func testDocument() *gltf.Document {
	return &gltf.Document{
		Asset:  gltf.Asset{Version: "2.0"},
		Scenes: []*gltf.Scene{{Nodes: []uint32{0, 2}}},
		Nodes: []*gltf.Node{
			{Name: "ActorZ", Mesh: gltf.Index(0), Translation: [3]float32{1, 2, 3}, Children: []uint32{1}},
			{Name: "Empty"},
			{Name: "Other", Mesh: gltf.Index(1), Scale: [3]float32{2, 2, 2}},
		},
		Meshes: []*gltf.Mesh{
			{Name: "SM_Z", Primitives: []*gltf.Primitive{{Material: gltf.Index(0)}}},
			{Name: "SM_Other", Primitives: []*gltf.Primitive{{Material: gltf.Index(1)}}},
		},
		Materials: []*gltf.Material{
			{
				Name:                 "MaterialY",
				PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 0}},
				NormalTexture:        &gltf.NormalTexture{Index: gltf.Index(1)},
			},
			{
				Name:                 "M_Other",
				PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorTexture: &gltf.TextureInfo{Index: 2}},
			},
		},
		Textures: []*gltf.Texture{{Source: gltf.Index(0)}, {Source: gltf.Index(1)}, {Source: gltf.Index(2)}},
		Images: []*gltf.Image{
			{URI: "/Game/Textures/T_X.png"},
			{URI: "/Game/Textures/T_N.png"},
			{URI: "/Game/Textures/T_Other.png"},
		},
	}
}

func testWorld(t *testing.T) *World {
	w := New("")
	_, err := w.AddLevel("L_Main", testDocument(), "", false)
	require.NoError(t, err)
	return w
}

func TestAddLevelBuildsActors(t *testing.T) {
	w := testWorld(t)
	require.Len(t, w.Levels, 1)
	actors := w.Actors()
	require.Len(t, actors, 2)
	assert.Equal(t, "ActorZ", actors[0].Name())
	assert.Equal(t, float32(1), actors[0].Location.X())
	assert.Equal(t, float32(3), actors[0].Location.Z())
	assert.InDelta(t, 2, actors[1].Scale.X(), 1e-5)
	assert.Same(t, actors[0], w.Actor(actors[0].ID()))

	tx := w.Texture("/Game/Textures/T_X")
	require.NotNil(t, tx)
	assert.Equal(t, "T_X", tx.Name())

	textures := ActorTextures(actors[0])
	require.Len(t, textures, 2)
	assert.Equal(t, "/Game/Textures/T_X", textures[0].ObjectPath)
	assert.Equal(t, "/Game/Textures/T_N", textures[1].ObjectPath)
}

func TestFindActorsStopsAtActor(t *testing.T) {
	w := testWorld(t)
	g := BuildReferenceGraph(w)

	visited := make(VisitedSet)
	actors := g.FindActors(w.Texture("/Game/Textures/T_X"), visited)
	require.Len(t, actors, 1)
	assert.Equal(t, "ActorZ", actors[0].Name())
	// the level references the actor but is never reached
	assert.False(t, visited[w.Levels[0]])

	assert.Empty(t, g.FindActors(w.Levels[0], make(VisitedSet)))
}

func TestFindActorsForTargetsSharedVisited(t *testing.T) {
	w := testWorld(t)
	g := BuildReferenceGraph(w)
	targets := []Object{w.Texture("/Game/Textures/T_X"), w.Texture("/Game/Textures/T_N")}
	steps := 0

	all, results := g.FindActorsForTargets(targets, true, func(Object) { steps++ })
	require.Len(t, all, 1)
	require.Len(t, results, 2)
	assert.Len(t, results[0].Actors, 1)
	// material already searched for the first texture
	assert.Empty(t, results[1].Actors)
	assert.Equal(t, 2, steps)

	all2, results2 := g.FindActorsForTargets(targets, false, nil)
	assert.Equal(t, all, all2)
	assert.Len(t, results2[1].Actors, 1)
}

func TestRedirectTexture(t *testing.T) {
	w := testWorld(t)
	assert.Equal(t, 0, w.RedirectTexture("/Game/Textures/T_Missing", "/Game/Textures/T_X", "Textures/T_X.png"))

	n := w.RedirectTexture("/Game/Textures/T_X", "/Game/Textures/T_Packed", "Textures/T_Packed.png")
	assert.Equal(t, 1, n)
	assert.Equal(t, "/Game/Textures/T_Packed.png", w.Levels[0].Document.Images[0].URI)
	assert.Equal(t, []*Level{w.Levels[0]}, w.DirtyLevels())
	require.NoError(t, w.SaveLevels())
	assert.Empty(t, w.DirtyLevels())
	assert.Nil(t, w.Texture("/Game/Textures/T_X"))

	g := BuildReferenceGraph(w)
	actors := g.FindActors(w.Texture("/Game/Textures/T_Packed"), make(VisitedSet))
	require.Len(t, actors, 1)
	assert.Equal(t, "ActorZ", actors[0].Name())
}

func TestAddLevelRejectsBrokenHierarchy(t *testing.T) {
	doc := &gltf.Document{
		Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
		Nodes:  []*gltf.Node{{Children: []uint32{5}}},
	}
	_, err := New("").AddLevel("L_Broken", doc, "", false)
	assert.Error(t, err)
}

func TestLoadStreamedLevelsFromFiles(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "Content")
	require.NoError(t, os.MkdirAll(filepath.Join(content, "Maps"), 0755))

	persistent := filepath.Join(content, "Maps", "L_Main.gltf")
	require.NoError(t, gltf.Save(testDocument(), persistent))

	sub := testDocument()
	sub.Images[0].URI = "../Textures/T_X.png"
	streamed := filepath.Join(content, "Maps", "L_Sub.gltf")
	require.NoError(t, gltf.Save(sub, streamed))

	w, err := Load(content, persistent, []string{streamed})
	require.NoError(t, err)
	require.Len(t, w.Levels, 2)
	assert.False(t, w.Levels[0].Streamed)
	assert.True(t, w.Levels[1].Streamed)
	assert.Equal(t, persistent, w.Levels[0].Path)

	// relative uri resolves to the same shared texture
	g := BuildReferenceGraph(w)
	actors := g.FindActors(w.Texture("/Game/Textures/T_X"), make(VisitedSet))
	assert.Len(t, actors, 2)
	assert.NotEmpty(t, g.Dump())
}

func TestRedirectRewritesLevelFiles(t *testing.T) {
	dir := t.TempDir()
	content := filepath.Join(dir, "Content")
	require.NoError(t, os.MkdirAll(filepath.Join(content, "Maps"), 0755))

	persistent := filepath.Join(content, "Maps", "L_Main.gltf")
	require.NoError(t, gltf.Save(testDocument(), persistent))
	sub := testDocument()
	sub.Images[0].URI = "../Textures/T_X.png"
	sub.Images[2].URI = "../Textures/T_Unrelated.png"
	streamed := filepath.Join(content, "Maps", "L_Sub.gltf")
	require.NoError(t, gltf.Save(sub, streamed))

	w, err := Load(content, persistent, []string{streamed})
	require.NoError(t, err)
	assert.Equal(t, 2, w.RedirectTexture("/Game/Textures/T_X", "/Game/Packed/T_XN", "Packed/T_XN.png"))
	require.Len(t, w.DirtyLevels(), 2)
	require.NoError(t, w.SaveLevels())
	assert.Empty(t, w.DirtyLevels())

	doc, err := gltf.Open(streamed)
	require.NoError(t, err)
	assert.Equal(t, "../Packed/T_XN.png", doc.Images[0].URI)
	assert.Equal(t, "../Textures/T_Unrelated.png", doc.Images[2].URI)

	reloaded, err := Load(content, persistent, []string{streamed})
	require.NoError(t, err)
	assert.Nil(t, reloaded.Texture("/Game/Textures/T_X"))
	g := BuildReferenceGraph(reloaded)
	assert.Len(t, g.FindActors(reloaded.Texture("/Game/Packed/T_XN"), make(VisitedSet)), 2)
}

func TestSaveLevelsReportsWriteFailure(t *testing.T) {
	w := testWorld(t)
	w.Levels[0].Path = filepath.Join(t.TempDir(), "missing", "L_Main.gltf")
	w.RedirectTexture("/Game/Textures/T_X", "/Game/Textures/T_Packed", "Textures/T_Packed.png")

	assert.Error(t, w.SaveLevels())
	assert.Len(t, w.DirtyLevels(), 1)
}
