package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/editor"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/registry"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/vfs"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/world"
)

func writePNG(t *testing.T, root, rel string, size int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, size, size))))
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0777))
	require.NoError(t, ioutil.WriteFile(p, buf.Bytes(), 0666))
}

type testServer struct {
	*httptest.Server
	root    string
	session *editor.Session
	world   *world.World
}

func newTestServer(t *testing.T) *testServer {
	root := t.TempDir()
	writePNG(t, root, "Textures/T_Wall_D.png", 8)
	writePNG(t, root, "Textures/T_Wall_N.png", 8)

	doc := &gltf.Document{
		Asset:     gltf.Asset{Version: "2.0"},
		Scenes:    []*gltf.Scene{{Nodes: []uint32{0}}},
		Nodes:     []*gltf.Node{{Name: "SM_Wall", Mesh: gltf.Index(0)}},
		Meshes:    []*gltf.Mesh{{Name: "Wall", Primitives: []*gltf.Primitive{{Material: gltf.Index(0)}}}},
		Materials: []*gltf.Material{{Name: "M_Wall", NormalTexture: &gltf.NormalTexture{Index: gltf.Index(0)}}},
		Textures:  []*gltf.Texture{{Source: gltf.Index(0)}},
		Images:    []*gltf.Image{{URI: "/Game/Textures/T_Wall_N.png"}},
	}
	w := world.New(root)
	_, err := w.AddLevel("L_Wall", doc, root, false)
	require.NoError(t, err)

	s, err := editor.NewSession(editor.Options{
		Registry: registry.New(vfs.NewDirectoryDriver(root)),
		World:    w,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	webPath := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(webPath, "data"), 0777))
	require.NoError(t, ioutil.WriteFile(filepath.Join(webPath, "data", "index.html"), []byte("<html>tool</html>"), 0666))

	srv := httptest.NewServer(NewRouter(s, webPath))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, root: root, session: s, world: w}
}

func (ts *testServer) get(t *testing.T, path string) *http.Response {
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) post(t *testing.T, path string, body interface{}) *http.Response {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type jsonError struct {
	Error string `json:"error"`
}

func TestFindFlowOverHttp(t *testing.T) {
	ts := newTestServer(t)

	var actors []actorView
	decode(t, ts.get(t, "/json/actors"), &actors)
	require.Len(t, actors, 1)
	assert.Equal(t, "SM_Wall", actors[0].Name)
	assert.Equal(t, "L_Wall", actors[0].Level)

	decode(t, ts.post(t, "/json/selection/actors", []string{actors[0].ID.String()}), &actors)
	assert.True(t, actors[0].Selected)

	var layout editor.Layout
	decode(t, ts.post(t, "/action/find.textures_of_selection", nil), &layout)
	assert.Equal(t, editor.ModeFind, layout.Mode)

	var found []editor.TextureListItem
	decode(t, ts.get(t, "/json/found"), &found)
	require.Len(t, found, 1)
	assert.Equal(t, "/Game/Textures/T_Wall_N", found[0].ObjectPath)
	assert.False(t, found[0].Selected)

	decode(t, ts.post(t, "/json/found/selection", []string{"/Game/Textures/T_Wall_N"}), &found)
	assert.True(t, found[0].Selected)

	decode(t, ts.post(t, "/action/size.downscale", nil), &layout)
	decode(t, ts.get(t, "/json/found"), &found)
	assert.Equal(t, 4, found[0].MaxTextureSize)
	assert.Equal(t, 4, found[0].Width)

	decode(t, ts.post(t, "/action/find.sync_browser", nil), &layout)
	var browser []string
	decode(t, ts.get(t, "/json/selection/browser"), &browser)
	assert.Equal(t, []string{"/Game/Textures/T_Wall_N"}, browser)
}

func TestDisabledActionReportsError(t *testing.T) {
	ts := newTestServer(t)
	var e jsonError
	decode(t, ts.post(t, "/action/merge.single", nil), &e)
	assert.Contains(t, e.Error, "disabled")

	decode(t, ts.get(t, "/json/batch"), &e)
	assert.Contains(t, e.Error, "Input directory is empty")
}

func TestSettingsRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	var st map[string]interface{}
	decode(t, ts.get(t, "/json/settings"), &st)
	assert.Equal(t, false, st["share_visited"])

	body := map[string]interface{}{
		"sources": []map[string]interface{}{
			{"texture": "/Game/Textures/T_Wall_D", "channel": "R", "enabled": true},
			{"texture": "/Game/Textures/T_Wall_N", "channel": "G", "enabled": true},
			{"channel": "B", "enabled": false},
			{"channel": "A", "enabled": false},
			{"channel": "R", "enabled": false},
		},
		"input_path": "/Game/Textures",
	}
	decode(t, ts.post(t, "/json/settings", body), &st)
	assert.Equal(t, "/Game/Textures", ts.session.Settings.InputPath)
	assert.True(t, ts.session.CanMerge())

	var e jsonError
	body["input_path"] = "/Other"
	decode(t, ts.post(t, "/json/settings", body), &e)
	assert.Contains(t, e.Error, "InputPath")
	assert.Equal(t, "/Game/Textures", ts.session.Settings.InputPath)

	var created map[string]interface{}
	decode(t, ts.post(t, "/action/merge.single", nil), &created)
	var browser []string
	decode(t, ts.get(t, "/json/selection/browser"), &browser)
	assert.Equal(t, []string{"/Game/Textures/T_Wall_D_1"}, browser)

	resp := ts.get(t, "/dump/settings")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "texture_tool_settings.json")
}

func TestMenus(t *testing.T) {
	ts := newTestServer(t)

	var items []editor.MenuItem
	decode(t, ts.get(t, "/json/menu/content_browser.asset"), &items)
	assert.Empty(t, items)

	var browser []string
	decode(t, ts.post(t, "/json/selection/browser", []string{"/Game/Textures/T_Wall_D"}), &browser)
	decode(t, ts.get(t, "/json/menu/content_browser.asset"), &items)
	require.Len(t, items, 2)
	assert.Equal(t, "Texture Tools", items[0].Section)

	var layout editor.Layout
	decode(t, ts.post(t, "/action/menu/content_browser.asset/asset.downscale", nil), &layout)
	tex, err := ts.session.Registry().Load("/Game/Textures/T_Wall_D")
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Settings.MaxTextureSize)
}

func TestThumbnailIsQueuedThenServed(t *testing.T) {
	ts := newTestServer(t)
	a, err := ts.session.Registry().Resolve("/Game/Textures/T_Wall_D")
	require.NoError(t, err)

	resp := ts.get(t, "/thumb/"+a.ID.String())
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	SessionLock.Lock()
	ts.session.Tick()
	SessionLock.Unlock()

	resp = ts.get(t, "/thumb/"+a.ID.String())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, editor.DefaultThumbnailSize, img.Bounds().Dx())

	var e jsonError
	decode(t, ts.get(t, "/thumb/not-an-id"), &e)
	assert.NotEmpty(t, e.Error)
}

func TestGraphDumpAndStatic(t *testing.T) {
	ts := newTestServer(t)

	data, err := ioutil.ReadAll(ts.get(t, "/dump/graph").Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "actor:SM_Wall")

	data, err = ioutil.ReadAll(ts.get(t, "/").Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "tool"))
}

func TestBrokenThumbnailReportsError(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ioutil.WriteFile(filepath.Join(ts.root, "Textures", "T_Broken.png"), []byte("not a png"), 0666))
	require.NoError(t, ts.session.Registry().Scan())
	a, err := ts.session.Registry().Resolve("/Game/Textures/T_Broken")
	require.NoError(t, err)

	resp := ts.get(t, "/thumb/"+a.ID.String())
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	SessionLock.Lock()
	ts.session.Tick()
	SessionLock.Unlock()

	var e jsonError
	decode(t, ts.get(t, "/thumb/"+a.ID.String()), &e)
	assert.NotEmpty(t, e.Error)
	assert.Equal(t, 0, ts.session.Thumbnails().Pending())
}
