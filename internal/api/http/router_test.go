package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	apihttp "github.com/ieltsprep/ieltsadmin/internal/api/http"
	"github.com/ieltsprep/ieltsadmin/internal/audit"
	authmw "github.com/ieltsprep/ieltsadmin/internal/auth/middleware"
	"github.com/ieltsprep/ieltsadmin/internal/dashboard"
	"github.com/ieltsprep/ieltsadmin/internal/db"
	"github.com/ieltsprep/ieltsadmin/internal/exam"
	"github.com/ieltsprep/ieltsadmin/internal/settings"
	"github.com/ieltsprep/ieltsadmin/internal/storage"
	"github.com/ieltsprep/ieltsadmin/internal/users"
)

type fixture struct {
	h         http.Handler
	users     *users.Store
	admin     string // bearer token
	learner   string
	learnerID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+filepath.Join(dir, "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dbh.Close() })

	us := users.NewStore(dbh)
	if _, err := us.EnsureAdmin(ctx, "admin@ielts.test", ""); err != nil {
		t.Fatal(err)
	}
	learner, err := us.Create(ctx, users.NewUser{Email: "learner@ielts.test", Password: "learner1"})
	if err != nil {
		t.Fatal(err)
	}
	media, err := storage.NewFSStore(filepath.Join(dir, "blobs"), "http://api.test/media/files")
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{users: us, learnerID: learner.ID}
	f.h = apihttp.NewRouter(apihttp.Deps{
		Tests:           exam.NewSQLStore(dbh),
		Users:           us,
		Settings:        settings.NewStore(dbh),
		Dashboard:       dashboard.NewService(dbh),
		Events:          audit.NewLog(dbh),
		Blobs:           media,
		Media:           media,
		Auth:            authmw.NewAuthService("test-secret"),
		EnableLocalAuth: true,
	})
	f.admin = f.login(t, "admin@ielts.test", "admin")
	f.learner = f.login(t, "learner@ielts.test", "learner1")
	return f
}

func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body)
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &out)
	return out.AccessToken
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "admin@ielts.test", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestAccessControl(t *testing.T) {
	f := newFixture(t)

	if rec := f.do(t, http.MethodGet, "/tests", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/tests", f.learner, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("learner list tests: %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/users/"+f.learnerID, f.learner, nil); rec.Code != http.StatusOK {
		t.Fatalf("learner reads own profile: %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/users", f.learner, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("learner lists users: %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/tests/t1/history", f.learner, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("learner reads test history: %d", rec.Code)
	}

	// deleted accounts lose access even with a valid token
	if err := f.users.Delete(context.Background(), f.learnerID); err != nil {
		t.Fatal(err)
	}
	if rec := f.do(t, http.MethodGet, "/users/"+f.learnerID, f.learner, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("deleted learner: %d", rec.Code)
	}
}

func TestTestLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/tests/new", f.admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("new: %d", rec.Code)
	}
	var draft exam.Test
	decode(t, rec, &draft)
	draft.Title = "Cambridge 18 Reading 1"

	rec = f.do(t, http.MethodPost, "/tests", f.admin, draft)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	var saved exam.Test
	decode(t, rec, &saved)
	if saved.ID == "" || saved.QuestionQuantity != 1 {
		t.Fatalf("saved id %q quantity %d", saved.ID, saved.QuestionQuantity)
	}

	saved.Title = "Cambridge 18 Reading 2"
	if rec := f.do(t, http.MethodPut, "/tests/"+saved.ID, f.admin, saved); rec.Code != http.StatusOK {
		t.Fatalf("replace: %d %s", rec.Code, rec.Body)
	}

	bad := saved
	bad.Title = ""
	bad.Duration = 0
	rec = f.do(t, http.MethodPut, "/tests/"+saved.ID, f.admin, bad)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid replace: %d", rec.Code)
	}
	var verr struct {
		Problems []string `json:"problems"`
	}
	decode(t, rec, &verr)
	if len(verr.Problems) < 2 {
		t.Fatalf("problems = %v", verr.Problems)
	}

	rec = f.do(t, http.MethodGet, "/tests/"+saved.ID, f.admin, nil)
	var got exam.Test
	decode(t, rec, &got)
	if got.Title != "Cambridge 18 Reading 2" {
		t.Fatalf("title after rejected write = %q", got.Title)
	}

	rec = f.do(t, http.MethodPatch, "/tests/"+saved.ID, f.admin, map[string]any{"is_premium": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body)
	}

	rec = f.do(t, http.MethodGet, "/tests?q=cambridge", f.admin, nil)
	var page exam.TestPage
	decode(t, rec, &page)
	if page.Total != 1 || !page.Items[0].IsPremium {
		t.Fatalf("list = %+v", page)
	}

	rec = f.do(t, http.MethodGet, "/tests/"+saved.ID+"/history", f.admin, nil)
	var events []audit.Event
	decode(t, rec, &events)
	if len(events) != 3 || events[0].Type != audit.TestUpdated || events[2].Type != audit.TestSaved {
		t.Fatalf("history = %+v", events)
	}

	if rec := f.do(t, http.MethodDelete, "/tests/"+saved.ID, f.admin, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/tests/"+saved.ID, f.admin, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: %d", rec.Code)
	}
}

func TestEditorEndpoints(t *testing.T) {
	f := newFixture(t)
	parts := exam.NewTest().Parts

	rec := f.do(t, http.MethodPost, "/editor/apply", f.admin, map[string]any{
		"parts": parts,
		"op":    map[string]any{"op": "add_group", "part": 0, "type": "true_false_not_given"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add_group: %d %s", rec.Code, rec.Body)
	}
	var out struct {
		Parts            []exam.Part `json:"parts"`
		QuestionQuantity int         `json:"question_quantity"`
	}
	decode(t, rec, &out)
	if out.QuestionQuantity != 2 {
		t.Fatalf("quantity = %d", out.QuestionQuantity)
	}
	if n := out.Parts[0].Groups[1].Questions[0].Number; n == nil || *n != 2 {
		t.Fatalf("new group starts at %v", n)
	}

	rec = f.do(t, http.MethodPost, "/editor/apply", f.admin, map[string]any{
		"parts": out.Parts,
		"op":    map[string]any{"op": "delete_group", "part": 0, "group": 0},
	})
	var after struct {
		Parts []exam.Part `json:"parts"`
	}
	decode(t, rec, &after)
	if len(after.Parts[0].Groups) != 1 || after.Parts[0].Groups[0].Type != exam.TrueFalseNotGiven {
		t.Fatalf("groups after delete = %+v", after.Parts[0].Groups)
	}
	if n := after.Parts[0].Groups[0].Questions[0].Number; n == nil || *n != 1 {
		t.Fatalf("after delete starts at %v", n)
	}

	for _, op := range []map[string]any{
		{"op": "explode"},
		{"op": "delete_part", "part": 5},
		{"op": "add_group", "part": 0, "type": "essay"},
	} {
		rec := f.do(t, http.MethodPost, "/editor/apply", f.admin, map[string]any{"parts": parts, "op": op})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%v: %d", op, rec.Code)
		}
	}

	rec = f.do(t, http.MethodPost, "/editor/validate", f.admin, exam.NewTest())
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("validate untitled: %d", rec.Code)
	}
	titled := exam.NewTest()
	titled.Title = "Draft"
	if rec := f.do(t, http.MethodPost, "/editor/validate", f.admin, titled); rec.Code != http.StatusNoContent {
		t.Fatalf("validate titled: %d %s", rec.Code, rec.Body)
	}
}

func TestMediaUpload(t *testing.T) {
	f := newFixture(t)

	upload := func(path, token, filename, content string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, content)
		mw.Close()
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.h.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("/media/image", f.admin, "map.png", "fake-png")
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body)
	}
	var out struct {
		URL string `json:"url"`
	}
	decode(t, rec, &out)
	const prefix = "http://api.test/media/files/"
	if !strings.HasPrefix(out.URL, prefix+"test-media/image/") {
		t.Fatalf("url = %q", out.URL)
	}

	rec = f.do(t, http.MethodGet, "/media/files/"+strings.TrimPrefix(out.URL, prefix), "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "fake-png" || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("serve: %d %q %q", rec.Code, rec.Body, rec.Header().Get("Content-Type"))
	}

	if rec := upload("/media/audio", f.admin, "map.png", "x"); rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("image as audio: %d", rec.Code)
	}
	if rec := upload("/media/video", f.admin, "clip.mp4", "x"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: %d", rec.Code)
	}
	if rec := upload("/media/image", f.learner, "map.png", "x"); rec.Code != http.StatusForbidden {
		t.Fatalf("learner upload: %d", rec.Code)
	}

	rec = upload("/users/"+f.learnerID+"/avatar", f.learner, "me.jpg", "jpeg")
	if rec.Code != http.StatusOK {
		t.Fatalf("own avatar: %d %s", rec.Code, rec.Body)
	}
	u, err := f.users.Get(context.Background(), f.learnerID)
	if err != nil {
		t.Fatal(err)
	}
	if u.AvatarURL == nil || !strings.HasPrefix(*u.AvatarURL, prefix+"avatars/avatar/") {
		t.Fatalf("avatar = %v", u.AvatarURL)
	}
}

func TestUsersSettingsDashboard(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPatch, "/users/"+f.learnerID, f.admin, map[string]any{"subscription_status": "premium"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("premium without dates: %d", rec.Code)
	}
	rec = f.do(t, http.MethodPatch, "/users/"+f.learnerID, f.admin, map[string]any{
		"subscription_status": "premium", "premium_start_date": 100, "premium_until": 200,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("premium: %d %s", rec.Code, rec.Body)
	}

	rec = f.do(t, http.MethodGet, "/users?status=premium", f.admin, nil)
	var page users.Page
	decode(t, rec, &page)
	if page.Total != 1 || page.Items[0].ID != f.learnerID {
		t.Fatalf("premium users = %+v", page)
	}

	admin, err := f.users.Authenticate(context.Background(), "admin@ielts.test", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if rec := f.do(t, http.MethodDelete, "/users/"+admin.ID, f.admin, nil); rec.Code != http.StatusConflict {
		t.Fatalf("delete last admin: %d", rec.Code)
	}

	rec = f.do(t, http.MethodPut, "/settings", f.admin, map[string]any{"site_name": "", "premium_monthly_price": -1})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad settings: %d", rec.Code)
	}
	rec = f.do(t, http.MethodPut, "/settings", f.admin, map[string]any{"site_name": "Band 9", "premium_monthly_price": 9.5})
	if rec.Code != http.StatusOK {
		t.Fatalf("settings: %d %s", rec.Code, rec.Body)
	}
	var st settings.Settings
	decode(t, f.do(t, http.MethodGet, "/settings", f.admin, nil), &st)
	if st.SiteName != "Band 9" || st.PremiumMonthlyPrice != 9.5 {
		t.Fatalf("settings = %+v", st)
	}

	var stats dashboard.Stats
	decode(t, f.do(t, http.MethodGet, "/dashboard", f.admin, nil), &stats)
	if stats.TotalUsers != 2 || stats.PremiumUsers != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
