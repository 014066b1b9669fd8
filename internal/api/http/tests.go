package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ieltsprep/ieltsadmin/internal/audit"
	authmw "github.com/ieltsprep/ieltsadmin/internal/auth/middleware"
	"github.com/ieltsprep/ieltsadmin/internal/exam"
)

// record appends to the audit log. A failed append is logged and does not
// fail the request; the write it describes has already happened.
func record(events *audit.Log, r *http.Request, typ, ref string, data any) {
	if events == nil {
		return
	}
	if err := events.Append(r.Context(), authmw.Actor(r), typ, ref, data); err != nil {
		log.Printf("audit %s %s: %v", typ, ref, err)
	}
}

// GET /tests?q=&type=&limit=&offset=
func ListTestsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := store.ListTests(r.Context(), exam.ListOpts{
			Q:      strings.TrimSpace(q.Get("q")),
			Type:   q.Get("type"),
			Limit:  parseIntDefault(q.Get("limit"), 50),
			Offset: parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// GET /tests/new returns the blank editor template without storing it.
func NewTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, exam.NewTest())
	}
}

func GetTestHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// POST /tests creates; PUT /tests/{id} replaces the whole structure.
func SaveTestHandler(store exam.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t exam.Test
		if !decodeJSON(w, r, &t) {
			return
		}
		id := chi.URLParam(r, "id")
		saved, err := store.SaveTest(r.Context(), id, t)
		if err != nil {
			writeError(w, r, err)
			return
		}
		record(events, r, audit.TestSaved, saved.ID, map[string]any{
			"title":             saved.Title,
			"parts":             len(saved.Parts),
			"question_quantity": saved.QuestionQuantity,
		})
		status := http.StatusOK
		if id == "" {
			status = http.StatusCreated
		}
		writeJSON(w, status, saved)
	}
}

// PATCH /tests/{id} toggles flags and metadata without touching parts.
func PatchTestHandler(store exam.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p exam.TestPatch
		if !decodeJSON(w, r, &p) {
			return
		}
		id := chi.URLParam(r, "id")
		sum, err := store.UpdateTest(r.Context(), id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		record(events, r, audit.TestUpdated, id, p)
		writeJSON(w, http.StatusOK, sum)
	}
}

func DeleteTestHandler(store exam.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.DeleteTest(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		record(events, r, audit.TestDeleted, id, map[string]string{"id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /tests/{id}/history lists audit events for a test, newest first.
func TestHistoryHandler(events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := events.List(r.Context(), chi.URLParam(r, "id"), parseIntDefault(r.URL.Query().Get("limit"), 50))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
