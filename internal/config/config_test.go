package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ieltsprep/ieltsadmin/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "PUBLIC_URL", "DB_DRIVER", "BLOB_DRIVER", "ENABLE_LOCAL_AUTH", "CORS_ORIGINS_OFFLINE"} {
		t.Setenv(k, "")
	}
	cfg := config.FromEnv()
	if cfg.Mode != config.ModeOffline || cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" || cfg.BlobDriver != "fs" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.PublicURL != "http://localhost:8080" || !cfg.EnableLocalAuth {
		t.Fatalf("public url %q, local auth %v", cfg.PublicURL, cfg.EnableLocalAuth)
	}
	if want := []string{"http://localhost:3000", "http://localhost:5173"}; !reflect.DeepEqual(cfg.CORSOrigins(), want) {
		t.Fatalf("origins = %v", cfg.CORSOrigins())
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	body := "MODE=online\nBLOB_DRIVER=minio\nCORS_ORIGINS_ONLINE= https://a.example , https://b.example \nENABLE_LOCAL_AUTH=no\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BLOB_DRIVER", "fs")
	// registered so t.Setenv restores them after godotenv sets them
	t.Setenv("MODE", "")
	t.Setenv("CORS_ORIGINS_ONLINE", "")
	t.Setenv("ENABLE_LOCAL_AUTH", "")
	os.Unsetenv("MODE")
	os.Unsetenv("CORS_ORIGINS_ONLINE")
	os.Unsetenv("ENABLE_LOCAL_AUTH")

	cfg := config.Load(path, filepath.Join(t.TempDir(), "missing.env"))
	if cfg.Mode != config.ModeOnline {
		t.Fatalf("mode = %q", cfg.Mode)
	}
	if cfg.BlobDriver != "fs" {
		t.Fatalf("env var overridden by file: %q", cfg.BlobDriver)
	}
	if cfg.EnableLocalAuth {
		t.Fatal("ENABLE_LOCAL_AUTH=no ignored")
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSOrigins(), want) {
		t.Fatalf("origins = %v", cfg.CORSOrigins())
	}
}
