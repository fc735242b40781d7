// Package web exposes the save-container operations over HTTP for UI
// shells, plus a websocket feed of save-file changes.
package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/maidenless/sl2edit/watch"
)

// ContainerPath is the save container every handler operates on. Each
// request re-reads the file: the game owns it and may rewrite it between
// requests.
var ContainerPath string

func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/slots", HandlerSlots).Methods("GET")
	r.HandleFunc("/json/slots/{index}", HandlerSlot).Methods("GET")
	r.HandleFunc("/json/slots/{index}/stats", HandlerStats).Methods("GET")
	r.HandleFunc("/action/copy/{src}/{dst}", HandlerCopySlot).Methods("POST")
	r.HandleFunc("/action/stats/{index}", HandlerSetStats).Methods("POST")
	r.HandleFunc("/export/{index}", HandlerExportSlot).Methods("GET")
	r.HandleFunc("/import/{index}", HandlerImportSlot).Methods("POST")
	r.HandleFunc("/ws", HandlerWs)
	return r
}

func StartServer(addr string, containerPath string, w *watch.Watcher) error {
	ContainerPath = containerPath

	if w != nil {
		go BroadcastEvents(w.Events())
	}

	h := handlers.RecoveryHandler()(NewRouter())
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
