package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/ieltsprep/ieltsadmin/internal/auth/middleware"
	"github.com/ieltsprep/ieltsadmin/internal/storage"
	"github.com/ieltsprep/ieltsadmin/internal/users"
)

const maxUpload = 100 << 20 // listening audio can be large

var mediaKinds = map[string]string{
	"image": "image/",
	"audio": "audio/",
}

// audio types missing from Go's built-in mime table
var audioTypes = map[string]string{
	".mp3": "audio/mpeg",
	".m4a": "audio/mp4",
	".wav": "audio/wav",
	".ogg": "audio/ogg",
}

func contentTypeFor(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return audioTypes[ext]
}

type upload struct {
	body        io.ReadCloser
	name        string
	size        int64
	contentType string
}

// readUpload pulls the "file" part out of a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", http.StatusBadRequest)
		return upload{}, false
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = contentTypeFor(hdr.Filename)
	}
	return upload{body: f, name: hdr.Filename, size: hdr.Size, contentType: ct}, true
}

// POST /media/{kind}  multipart file= ; kind is image or audio
func UploadMediaHandler(bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		prefix, ok := mediaKinds[kind]
		if !ok {
			http.Error(w, "kind must be image or audio", http.StatusBadRequest)
			return
		}
		up, ok := readUpload(w, r)
		if !ok {
			return
		}
		defer up.body.Close()
		if !strings.HasPrefix(up.contentType, prefix) {
			http.Error(w, "expected an "+kind+" file", http.StatusUnsupportedMediaType)
			return
		}
		url, err := bs.Put(r.Context(), storage.BucketTestMedia, storage.NewKey(kind, up.name), up.body, up.size, up.contentType)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"url": url})
	}
}

// POST /users/{id}/avatar  multipart file=
func UploadAvatarHandler(bs storage.BlobStore, store *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := store.Get(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		up, ok := readUpload(w, r)
		if !ok {
			return
		}
		defer up.body.Close()
		if !strings.HasPrefix(up.contentType, "image/") {
			http.Error(w, "expected an image file", http.StatusUnsupportedMediaType)
			return
		}
		url, err := bs.Put(r.Context(), storage.BucketAvatars, storage.NewKey("avatar", up.name), up.body, up.size, up.contentType)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.SetAvatar(r.Context(), id, url); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"avatar_url": url})
	}
}

// IsSelf matches the {id} route param against the authenticated subject.
func IsSelf(r *http.Request) bool {
	sub := authmw.SubjectFromContext(r.Context())
	return sub != "" && sub == chi.URLParam(r, "id")
}

// MountMedia serves blobs of the local filesystem store at GET /*.
func MountMedia(r chi.Router, fs *storage.FSStore) {
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := fs.Open(name)
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrBadKey) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer rc.Close()
		ct := contentTypeFor(name)
		if ct == "" {
			ct = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}
