package web

import (
	"log"
	"net/http"
	"os"
	"path"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/editor"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/status"
)

var (
	ServerSession *editor.Session
	// held by every handler and by the host tick loop
	SessionLock sync.Mutex
)

func locked(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SessionLock.Lock()
		defer SessionLock.Unlock()
		h(w, r)
	}
}

func NewRouter(s *editor.Session, webPath string) *mux.Router {
	ServerSession = s

	r := mux.NewRouter()
	r.HandleFunc("/json/layout", locked(HandlerLayout)).Methods("GET")
	r.HandleFunc("/json/commands", locked(HandlerCommands)).Methods("GET")
	r.HandleFunc("/action/menu/{hook}/{command}", locked(HandlerActionMenu)).Methods("POST")
	r.HandleFunc("/action/{command}", locked(HandlerAction)).Methods("POST")
	r.HandleFunc("/json/menu/{hook}", locked(HandlerMenu)).Methods("GET")

	r.HandleFunc("/json/settings", locked(HandlerSettings)).Methods("GET")
	r.HandleFunc("/json/settings", locked(HandlerApplySettings)).Methods("POST")
	r.HandleFunc("/dump/settings", locked(HandlerDumpSettings)).Methods("GET")
	r.HandleFunc("/upload/settings", locked(HandlerUploadSettings)).Methods("POST")

	r.HandleFunc("/json/assets", locked(HandlerAssets)).Methods("GET")
	r.HandleFunc("/json/actors", locked(HandlerActors)).Methods("GET")
	r.HandleFunc("/json/selection/actors", locked(HandlerSelectActors)).Methods("POST")
	r.HandleFunc("/json/selection/browser", locked(HandlerBrowserSelection)).Methods("GET")
	r.HandleFunc("/json/selection/browser", locked(HandlerSelectBrowser)).Methods("POST")
	r.HandleFunc("/json/found", locked(HandlerFound)).Methods("GET")
	r.HandleFunc("/json/found/selection", locked(HandlerSelectFound)).Methods("POST")

	r.HandleFunc("/json/batch", locked(HandlerBatchPreview)).Methods("GET")
	r.HandleFunc("/json/batch", locked(HandlerBatchMerge)).Methods("POST")

	r.HandleFunc("/thumb/{id}", locked(HandlerThumbnail)).Methods("GET")
	r.HandleFunc("/dump/graph", locked(HandlerDumpGraph)).Methods("GET")
	r.HandleFunc("/ws/status", status.Handler)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))
	return r
}

func StartServer(addr string, s *editor.Session, webPath string) error {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(NewRouter(s, webPath))
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
