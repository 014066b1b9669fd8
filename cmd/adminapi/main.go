package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/ieltsprep/ieltsadmin/internal/api/http"
	"github.com/ieltsprep/ieltsadmin/internal/audit"
	auth "github.com/ieltsprep/ieltsadmin/internal/auth/middleware"
	"github.com/ieltsprep/ieltsadmin/internal/config"
	"github.com/ieltsprep/ieltsadmin/internal/dashboard"
	"github.com/ieltsprep/ieltsadmin/internal/db"
	"github.com/ieltsprep/ieltsadmin/internal/exam"
	"github.com/ieltsprep/ieltsadmin/internal/settings"
	"github.com/ieltsprep/ieltsadmin/internal/storage"
	"github.com/ieltsprep/ieltsadmin/internal/users"
)

func main() {
	cfg := config.Load()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	userStore := users.NewStore(dbh)
	if created, err := userStore.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassHash); err != nil {
		log.Fatalf("seed admin: %v", err)
	} else if created {
		log.Printf("created admin account %s", cfg.AdminEmail)
		if cfg.AdminPassHash == "" {
			log.Printf("WARNING: admin password is the default; set ADMIN_PASS_HASH")
		}
	}

	deps := api.Deps{
		Tests:           exam.NewSQLStore(dbh),
		Users:           userStore,
		Settings:        settings.NewStore(dbh),
		Dashboard:       dashboard.NewService(dbh),
		Events:          audit.NewLog(dbh),
		Auth:            auth.NewAuthService(cfg.AuthSecret),
		CORSOrigins:     cfg.CORSOrigins(),
		EnableLocalAuth: cfg.EnableLocalAuth,
		Ready:           func() error { return dbh.PingContext(context.Background()) },
	}
	// --- Blobs ---
	switch cfg.BlobDriver {
	case "minio":
		ms, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioPublicURL, cfg.MinioAccessKey, cfg.MinioSecretKey)
		if err != nil {
			log.Fatalf("blob store: %v", err)
		}
		deps.Blobs = ms
	default:
		fs, err := storage.NewFSStore(cfg.BlobBasePath, cfg.PublicURL+"/media/files")
		if err != nil {
			log.Fatalf("blob store: %v", err)
		}
		deps.Blobs, deps.Media = fs, fs
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (mode=%s, db=%s, blobs=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.BlobDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
