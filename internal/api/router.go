// Package api exposes the run history over HTTP for dashboards and external
// tools. All state changes flow through the WebSocket command channel; this
// surface is read-only except for reference run imports.
package api

import (
	"github.com/gorilla/mux"

	"github.com/kburke8/poe-watcher-sub000/internal/database"
)

// NewRouter builds the HTTP API over the given database
func NewRouter(db *database.Database) *mux.Router {
	h := &handler{db: db}

	r := mux.NewRouter()
	r.HandleFunc("/runs", h.listRuns).Methods("GET")
	r.HandleFunc("/runs/reference", h.createReferenceRun).Methods("POST")
	r.HandleFunc("/runs/{id}", h.getRun).Methods("GET")
	r.HandleFunc("/runs/{id}/splits", h.listSplits).Methods("GET")
	r.HandleFunc("/runs/{id}/snapshots", h.listSnapshots).Methods("GET")
	r.HandleFunc("/stats", h.runStats).Methods("GET")
	r.HandleFunc("/stats/splits", h.splitStats).Methods("GET")
	r.HandleFunc("/pbs", h.listPersonalBests).Methods("GET")
	r.HandleFunc("/golds", h.listGoldSplits).Methods("GET")
	r.HandleFunc("/settings/overlay-position", h.getOverlayPosition).Methods("GET")

	return r
}
