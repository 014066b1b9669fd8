package http

import (
	"net/http"

	"github.com/ieltsprep/ieltsadmin/internal/audit"
	"github.com/ieltsprep/ieltsadmin/internal/dashboard"
	"github.com/ieltsprep/ieltsadmin/internal/settings"
)

func GetSettingsHandler(store *settings.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Get(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func PutSettingsHandler(store *settings.Store, events *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st settings.Settings
		if !decodeJSON(w, r, &st) {
			return
		}
		saved, err := store.Put(r.Context(), st)
		if err != nil {
			writeError(w, r, err)
			return
		}
		record(events, r, audit.SettingsUpdated, "settings", saved)
		writeJSON(w, http.StatusOK, saved)
	}
}

func DashboardHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
