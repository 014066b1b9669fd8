package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ieltsprep/ieltsadmin/internal/audit"
	"github.com/ieltsprep/ieltsadmin/internal/users"
)

// GET /users?q=&status=&limit=&offset=
func ListUsersHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := store.List(r.Context(), users.ListOpts{
			Q:      strings.TrimSpace(q.Get("q")),
			Status: q.Get("status"),
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

func GetUserHandler(store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// PATCH /users/{id}  role, subscription status and premium dates
func UpdateUserHandler(store *users.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var up users.Update
		if !decodeJSON(w, r, &up) {
			return
		}
		id := chi.URLParam(r, "id")
		u, err := store.Update(r.Context(), id, up)
		if err != nil {
			writeError(w, r, err)
			return
		}
		record(events, r, audit.UserUpdated, id, up)
		writeJSON(w, http.StatusOK, u)
	}
}

func DeleteUserHandler(store *users.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		record(events, r, audit.UserDeleted, id, map[string]string{"id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}
