package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ieltsprep/ieltsadmin/internal/audit"
	authmw "github.com/ieltsprep/ieltsadmin/internal/auth/middleware"
	"github.com/ieltsprep/ieltsadmin/internal/dashboard"
	"github.com/ieltsprep/ieltsadmin/internal/exam"
	"github.com/ieltsprep/ieltsadmin/internal/rbac"
	"github.com/ieltsprep/ieltsadmin/internal/settings"
	"github.com/ieltsprep/ieltsadmin/internal/storage"
	"github.com/ieltsprep/ieltsadmin/internal/users"
)

type Deps struct {
	Tests     exam.Store
	Users     *users.Store
	Settings  *settings.Store
	Dashboard *dashboard.Service
	Events    *audit.Log
	Blobs     storage.BlobStore
	Media     *storage.FSStore // nil unless blobs live on the local disk
	Auth      *authmw.AuthService

	CORSOrigins     []string
	EnableLocalAuth bool
	Ready           func() error
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.EnableLocalAuth {
		r.Post("/auth/login", authmw.LoginHandler(d.Auth, d.Users))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	if d.Media != nil {
		r.Route("/media/files", func(mr chi.Router) { MountMedia(mr, d.Media) })
	}

	// Protected API (JWT → role from DB → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth), authmw.AttachRoleFromDB(d.Users))

		pr.Route("/tests", func(tr chi.Router) {
			tr.With(rbac.Require(rbac.PermTestsRead)).Get("/", ListTestsHandler(d.Tests))
			tr.With(rbac.Require(rbac.PermTestsRead)).Get("/new", NewTestHandler())
			tr.With(rbac.Require(rbac.PermTestsWrite)).Post("/", SaveTestHandler(d.Tests, d.Events))
			tr.With(rbac.Require(rbac.PermTestsRead)).Get("/{id}", GetTestHandler(d.Tests))
			tr.With(rbac.Require(rbac.PermTestsWrite)).Put("/{id}", SaveTestHandler(d.Tests, d.Events))
			tr.With(rbac.Require(rbac.PermTestsWrite)).Patch("/{id}", PatchTestHandler(d.Tests, d.Events))
			tr.With(rbac.Require(rbac.PermTestsWrite)).Delete("/{id}", DeleteTestHandler(d.Tests, d.Events))
			tr.With(rbac.RequireAny(rbac.PermTestsRead, rbac.PermTestsWrite)).Get("/{id}/history", TestHistoryHandler(d.Events))
		})

		pr.Route("/editor", func(er chi.Router) {
			er.Use(rbac.Require(rbac.PermTestsWrite))
			er.Post("/renumber", RenumberHandler())
			er.Post("/apply", ApplyEditHandler())
			er.Post("/validate", ValidateTestHandler())
		})

		pr.Route("/users", func(ur chi.Router) {
			ur.With(rbac.Require(rbac.PermUsersRead)).Get("/", ListUsersHandler(d.Users))
			ur.With(rbac.RequireOwnerOr(rbac.PermUsersRead, IsSelf)).Get("/{id}", GetUserHandler(d.Users))
			ur.With(rbac.Require(rbac.PermUsersWrite)).Patch("/{id}", UpdateUserHandler(d.Users, d.Events))
			ur.With(rbac.Require(rbac.PermUsersWrite)).Delete("/{id}", DeleteUserHandler(d.Users, d.Events))
			ur.With(rbac.RequireOwnerOr(rbac.PermUsersWrite, IsSelf)).Post("/{id}/avatar", UploadAvatarHandler(d.Blobs, d.Users))
		})

		pr.With(rbac.Require(rbac.PermSettingsRead)).Get("/settings", GetSettingsHandler(d.Settings))
		pr.With(rbac.Require(rbac.PermSettingsWrite)).Put("/settings", PutSettingsHandler(d.Settings, d.Events))

		pr.With(rbac.Require(rbac.PermDashboardView)).Get("/dashboard", DashboardHandler(d.Dashboard))

		pr.With(rbac.Require(rbac.PermMediaUpload)).Post("/media/{kind}", UploadMediaHandler(d.Blobs))
	})
	return r
}
