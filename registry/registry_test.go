package registry

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/texture"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/vfs"
)

func writePNG(t *testing.T, root, rel string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0777))
	require.NoError(t, ioutil.WriteFile(p, buf.Bytes(), 0666))
}

func newTestRegistry(t *testing.T) (*Registry, string) {
	root := t.TempDir()
	writePNG(t, root, "Textures/T_Hero_D.png", 8, 8)
	writePNG(t, root, "Textures/T_Hero_N.png", 8, 8)
	writePNG(t, root, "Textures/Props/T_Box_D.png", 4, 4)
	require.NoError(t, ioutil.WriteFile(filepath.Join(root, "Textures", "readme.txt"), []byte("x"), 0666))
	return New(vfs.NewDirectoryDriver(root)), root
}

func objectPaths(assets []*AssetData) []string {
	result := make([]string, len(assets))
	for i, a := range assets {
		result[i] = a.ObjectPath
	}
	return result
}

func TestListAssets(t *testing.T) {
	r, _ := newTestRegistry(t)

	flat, err := r.ListAssets("/Game/Textures", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/Game/Textures/T_Hero_D", "/Game/Textures/T_Hero_N"}, objectPaths(flat))

	deep, err := r.ListAssets("/Game/Textures", true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/Game/Textures/Props/T_Box_D",
		"/Game/Textures/T_Hero_D",
		"/Game/Textures/T_Hero_N",
	}, objectPaths(deep))

	none, err := r.ListAssets("/Game/Missing", true)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestScanKeepsIDs(t *testing.T) {
	r, root := newTestRegistry(t)
	a, err := r.Resolve("/Game/Textures/T_Hero_D")
	require.NoError(t, err)

	writePNG(t, root, "Textures/T_New.png", 2, 2)
	require.NoError(t, r.Scan())

	b, err := r.Resolve("/Game/Textures/T_Hero_D")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	byID, err := r.ResolveID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, b, byID)

	_, err = r.Resolve("/Game/Textures/T_New")
	assert.NoError(t, err)
}

func TestLoadAndPersistImportSettings(t *testing.T) {
	r, root := newTestRegistry(t)

	tex, err := r.Load("/Game/Textures/T_Hero_D")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(8, 8), tex.SourceSize())

	same, err := r.Load("/Game/Textures/T_Hero_D")
	require.NoError(t, err)
	assert.True(t, tex == same)

	require.NoError(t, texture.DownscaleAll([]*texture.Texture{tex}))
	assert.Equal(t, []string{"/Game/Textures/T_Hero_D"}, r.DirtyPackages())

	meta, err := ioutil.ReadFile(filepath.Join(root, "Textures", "T_Hero_D.png"+MetaSuffix))
	require.NoError(t, err)
	assert.Contains(t, string(meta), "max_texture_size: 4")

	fresh := New(vfs.NewDirectoryDriver(root))
	reloaded, err := fresh.Load("/Game/Textures/T_Hero_D")
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Settings.MaxTextureSize)
}

func TestCreateTextureMakesUniqueNameAndNotifies(t *testing.T) {
	r, root := newTestRegistry(t)
	var created []string
	r.OnAssetCreated(func(a *AssetData) { created = append(created, a.ObjectPath) })

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	a, err := r.CreateTexture("/Game/Merged", "T_Hero", img, texture.DefaultImportSettings())
	require.NoError(t, err)
	assert.Equal(t, "/Game/Merged/T_Hero", a.ObjectPath)
	_, err = os.Stat(filepath.Join(root, "Merged", "T_Hero.png"))
	assert.NoError(t, err)

	b, err := r.CreateTexture("/Game/Merged", "T_Hero", img, texture.DefaultImportSettings())
	require.NoError(t, err)
	assert.Equal(t, "/Game/Merged/T_Hero_1", b.ObjectPath)

	assert.Equal(t, []string{"/Game/Merged/T_Hero", "/Game/Merged/T_Hero_1"}, created)

	tex, err := r.Load(b.ObjectPath)
	require.NoError(t, err)
	c := color.NRGBAModel.Convert(tex.Source.At(0, 0)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, c)

	_, err = r.CreateTexture("/Engine/Other", "T_X", img, texture.DefaultImportSettings())
	assert.Error(t, err)
}

func TestDeleteAndConsolidate(t *testing.T) {
	r, root := newTestRegistry(t)
	from, err := r.Resolve("/Game/Textures/T_Hero_D")
	require.NoError(t, err)
	to, err := r.Resolve("/Game/Textures/T_Hero_N")
	require.NoError(t, err)

	var redirected [][2]string
	remove := r.AddRedirector(func(f, t *AssetData) int {
		redirected = append(redirected, [2]string{f.ObjectPath, t.ObjectPath})
		return 3
	})
	assert.Equal(t, 3, r.ConsolidateReferences(from, to))
	assert.Equal(t, [][2]string{{from.ObjectPath, to.ObjectPath}}, redirected)
	remove()
	assert.Equal(t, 0, r.ConsolidateReferences(from, to))

	require.NoError(t, r.DeleteAsset(from.ObjectPath))
	_, err = os.Stat(filepath.Join(root, "Textures", "T_Hero_D.png"))
	assert.True(t, os.IsNotExist(err))
	_, err = r.Resolve(from.ObjectPath)
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/Game", PackagePath(""))
	assert.Equal(t, "/Game/A/B", PackagePath("A/B/"))
	assert.Equal(t, "/Game/A/T_X", ObjectPathFromFile("A/T_X.tga"))
	assert.Equal(t, "/Game/T_X", ObjectPathFromFile("T_X.png"))

	rel, ok := RelativeDir("/Game/A/B")
	assert.True(t, ok)
	assert.Equal(t, "A/B", rel)
	_, ok = RelativeDir("/Engine/A")
	assert.False(t, ok)

	pkg, name := SplitObjectPath("/Game/A/T_X")
	assert.Equal(t, "/Game/A", pkg)
	assert.Equal(t, "T_X", name)

	assert.True(t, IsUnderPath("/Game/A/B", "/Game/A", true))
	assert.False(t, IsUnderPath("/Game/A/B", "/Game/A", false))
	assert.False(t, IsUnderPath("/Game/AB", "/Game/A", true))
	assert.Equal(t, "T_Hero_01_", SanitizeAssetName("T Hero.01*"))

	rel, ok = RelativeObjectPath("/Game/A/Cliffs/T_Rock_D", "/Game/A/")
	assert.True(t, ok)
	assert.Equal(t, "Cliffs/T_Rock_D", rel)
	_, ok = RelativeObjectPath("/Game/AB/T_Rock_D", "/Game/A")
	assert.False(t, ok)
}
