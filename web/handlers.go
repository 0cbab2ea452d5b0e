package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/editor"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/registry"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/webutils"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/world"
)

func HandlerLayout(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, ServerSession.Layout())
}

func HandlerCommands(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, ServerSession.CommandStates())
}

// Runs command and answers with the refreshed layout
func HandlerAction(w http.ResponseWriter, r *http.Request) {
	id := editor.CommandID(mux.Vars(r)["command"])
	if err := ServerSession.Execute(id); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, ServerSession.Layout())
}

func HandlerMenu(w http.ResponseWriter, r *http.Request) {
	hook := editor.MenuHook(mux.Vars(r)["hook"])
	webutils.WriteJson(w, ServerSession.Menu(hook))
}

func HandlerActionMenu(w http.ResponseWriter, r *http.Request) {
	hook := editor.MenuHook(mux.Vars(r)["hook"])
	id := editor.CommandID(mux.Vars(r)["command"])
	if err := ServerSession.ExecuteMenu(hook, id); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, ServerSession.Layout())
}

func HandlerSettings(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, ServerSession.Settings)
}

func HandlerApplySettings(w http.ResponseWriter, r *http.Request) {
	st := config.NewSettings()
	if err := webutils.ReadJson(r, st); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := ServerSession.ApplySettings(st); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, ServerSession.Settings)
}

func HandlerDumpSettings(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJsonFile(w, ServerSession.Settings, "texture_tool_settings")
}

func HandlerUploadSettings(w http.ResponseWriter, r *http.Request) {
	st := config.NewSettings()
	if err := webutils.ReadJsonFile(r, "data", st); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := ServerSession.ApplySettings(st); err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, ServerSession.Settings)
}

// ?path=/Game/Dir&recursive=1
func HandlerAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := q.Get("path")
	if p == "" {
		p = registry.GameRoot
	}
	recursive, _ := strconv.ParseBool(q.Get("recursive"))
	assets, err := ServerSession.Registry().ListAssets(p, recursive)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, assets)
}

type actorView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Level    string    `json:"level"`
	Streamed bool      `json:"streamed"`
	Selected bool      `json:"selected"`
}

func HandlerActors(w http.ResponseWriter, r *http.Request) {
	result := make([]actorView, 0)
	wrld := ServerSession.World()
	if wrld == nil {
		webutils.WriteJson(w, result)
		return
	}
	selected := make(map[*world.Actor]bool)
	for _, a := range ServerSession.SelectedActors() {
		selected[a] = true
	}
	for _, a := range wrld.Actors() {
		result = append(result, actorView{
			ID:       a.ID(),
			Name:     a.Name(),
			Level:    a.Level.Name(),
			Streamed: a.Level.Streamed,
			Selected: selected[a],
		})
	}
	webutils.WriteJson(w, result)
}

func HandlerSelectActors(w http.ResponseWriter, r *http.Request) {
	var ids []uuid.UUID
	if err := webutils.ReadJson(r, &ids); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := ServerSession.SelectActors(ids); err != nil {
		webutils.WriteError(w, err)
		return
	}
	HandlerActors(w, r)
}

func HandlerBrowserSelection(w http.ResponseWriter, r *http.Request) {
	sel := ServerSession.BrowserSelection()
	if sel == nil {
		sel = make([]string, 0)
	}
	webutils.WriteJson(w, sel)
}

func HandlerSelectBrowser(w http.ResponseWriter, r *http.Request) {
	var paths []string
	if err := webutils.ReadJson(r, &paths); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := ServerSession.SyncBrowserToAssets(paths); err != nil {
		webutils.WriteError(w, err)
		return
	}
	HandlerBrowserSelection(w, r)
}

func HandlerFound(w http.ResponseWriter, r *http.Request) {
	found := ServerSession.FoundTextures()
	if found == nil {
		found = make([]*editor.TextureListItem, 0)
	}
	webutils.WriteJson(w, found)
}

func HandlerSelectFound(w http.ResponseWriter, r *http.Request) {
	var paths []string
	if err := webutils.ReadJson(r, &paths); err != nil {
		webutils.WriteError(w, err)
		return
	}
	ServerSession.SelectFound(paths)
	HandlerFound(w, r)
}

func HandlerBatchPreview(w http.ResponseWriter, r *http.Request) {
	keys, err := ServerSession.BatchPreview()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, keys)
}

// Body holds the confirmed group keys, empty list merges every group
func HandlerBatchMerge(w http.ResponseWriter, r *http.Request) {
	var keys []string
	if err := webutils.ReadJson(r, &keys); err != nil {
		webutils.WriteError(w, err)
		return
	}
	res, err := ServerSession.BatchMerge(keys)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, res)
}

// Serves png thumbnail of texture asset. Thumbnails not rendered yet are
// queued and answered with 202, failed ones with the render error.
func HandlerThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Invalid asset id"))
		return
	}
	a, err := ServerSession.Registry().ResolveID(id)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	thumbs := ServerSession.Thumbnails()
	if err := thumbs.Err(a.ObjectPath); err != nil {
		webutils.WriteError(w, err)
		return
	}
	data, ok := thumbs.Get(a.ObjectPath)
	if !ok {
		thumbs.Request(a.ObjectPath)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	webutils.WriteResult(w, data)
}

func HandlerDumpGraph(w http.ResponseWriter, r *http.Request) {
	wrld := ServerSession.World()
	if wrld == nil {
		webutils.WriteError(w, errors.Errorf("No level loaded"))
		return
	}
	webutils.WriteFile(w, strings.NewReader(world.BuildReferenceGraph(wrld).Dump()), "reference_graph.txt")
}
