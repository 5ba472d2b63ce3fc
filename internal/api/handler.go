package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kburke8/poe-watcher-sub000/internal/database"
)

type handler struct {
	db *database.Database
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// filtersFromQuery maps query parameters onto run filters
func filtersFromQuery(r *http.Request) database.RunFilters {
	q := r.URL.Query()
	filters := database.RunFilters{
		Class:      q.Get("class"),
		Ascendancy: q.Get("ascendancy"),
		Category:   q.Get("category"),
		League:     q.Get("league"),
		Preset:     q.Get("preset"),
	}
	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err == nil {
			filters.IsCompleted = &completed
		}
	}
	if v := q.Get("includeReference"); v != "" {
		filters.IncludeReference, _ = strconv.ParseBool(v)
	}
	return filters
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.db.GetRuns(filtersFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*database.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, err := h.db.GetRun(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *handler) listSplits(w http.ResponseWriter, r *http.Request) {
	splits, err := h.db.GetSplits(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if splits == nil {
		splits = []*database.Split{}
	}
	writeJSON(w, http.StatusOK, splits)
}

func (h *handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.db.GetSnapshots(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshots == nil {
		snapshots = []*database.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (h *handler) runStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetRunStats(filtersFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) splitStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetSplitStats(filtersFromQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stats == nil {
		stats = []*database.SplitStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) listPersonalBests(w http.ResponseWriter, r *http.Request) {
	pbs, err := h.db.GetPersonalBests()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if pbs == nil {
		pbs = []*database.PersonalBest{}
	}
	writeJSON(w, http.StatusOK, pbs)
}

func (h *handler) listGoldSplits(w http.ResponseWriter, r *http.Request) {
	golds, err := h.db.GetGoldSplits()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if golds == nil {
		golds = []*database.GoldSplit{}
	}
	writeJSON(w, http.StatusOK, golds)
}

// getOverlayPosition returns the saved overlay window position, or an empty
// object when none has been stored yet.
func (h *handler) getOverlayPosition(w http.ResponseWriter, r *http.Request) {
	value, err := h.db.GetSetting("overlay_position")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if value == "" {
		value = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(value))
}

func (h *handler) createReferenceRun(w http.ResponseWriter, r *http.Request) {
	var data database.ReferenceRun
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid reference run payload")
		return
	}
	if data.SourceName == "" || data.Category == "" || data.TotalTimeMs <= 0 {
		writeError(w, http.StatusBadRequest, "sourceName, category and totalTimeMs are required")
		return
	}

	runID := uuid.New().String()
	if err := h.db.InsertReferenceRun(runID, &data); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": runID})
}
