package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sponsorweb/internal/appstatus"
	"sponsorweb/internal/backend"
	"sponsorweb/internal/draft"
	"sponsorweb/internal/media"
	"sponsorweb/internal/notify"
	"sponsorweb/internal/session"
	"sponsorweb/internal/store"
	"sponsorweb/internal/web"
)

const (
	signingKey = "test-signing-key"
	issuer     = "sponsor-backend"
)

// fakeBackend is an httptest stand-in for the sponsorship backend that
// counts every call so tests can assert what did and did not happen.
type fakeBackend struct {
	mu       sync.Mutex
	students map[int]backend.Student
	calls    map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		students: map[int]backend.Student{
			7: {
				ID: 7, Name: "Amara Okafor", Age: 14, Location: "Lagos",
				Story: "Wants to study medicine.", FundingGoal: 1000, AmountRaised: 450,
				IsVisible: true, ApplicationStatus: appstatus.Approved,
				ProfileImageURL:  "images/amara.png",
				GalleryImageURLs: []string{"images/a.png", "images/b.png", "images/c.png"},
			},
			8: {
				ID: 8, Name: "Benedict Yeo", Age: 16, Location: "Cebu",
				Story: "Loves mathematics.", FundingGoal: 800, AmountRaised: 900,
				IsVisible: true, ApplicationStatus: appstatus.Pending,
			},
		},
		calls: map[string]int{},
	}
}

func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.Method+" "+r.URL.Path]++
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/students" && r.Method == http.MethodGet:
		f.writeList(w, func(backend.Student) bool { return true })

	case r.URL.Path == "/students/by-status":
		wire, _ := strconv.Atoi(r.URL.Query().Get("status"))
		f.writeList(w, func(s backend.Student) bool { return int(s.ApplicationStatus) == wire })

	case r.URL.Path == "/donors/my-students":
		f.writeList(w, func(s backend.Student) bool { return s.ID == 7 })

	case strings.HasPrefix(r.URL.Path, "/students/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/students/"))
		f.mu.Lock()
		s, ok := f.students[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"student not found"}`))
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(s)
		case http.MethodPut:
			var updated backend.Student
			if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			// amountRaised is server-computed; keep the stored value.
			updated.AmountRaised = s.AmountRaised
			f.mu.Lock()
			f.students[id] = updated
			f.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			f.mu.Lock()
			delete(f.students, id)
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		}

	case strings.HasPrefix(r.URL.Path, "/fileupload/"):
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(backend.UploadResult{
			URL:      "images/stored-" + header.Filename,
			FileName: "stored-" + header.Filename,
		})

	case strings.HasPrefix(r.URL.Path, "/progress/") && r.Method == http.MethodPut:
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/progress/"))
		var in backend.ProgressUpdate
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// The backend owns studentId and normalizes the title.
		in.ID = id
		in.StudentID = 7
		in.Title = in.Title + " (reviewed)"
		_ = json.NewEncoder(w).Encode(in)

	case r.URL.Path == "/notifications":
		_ = json.NewEncoder(w).Encode([]backend.Notification{
			{ID: 1, Title: "New donation", Type: "donation", IsRead: false},
			{ID: 2, Title: "Welcome", Type: "system", IsRead: true},
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such endpoint"}`))
	}
}

func (f *fakeBackend) writeList(w http.ResponseWriter, keep func(backend.Student) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]backend.Student, 0, len(f.students))
	for _, id := range []int{7, 8} {
		if s, ok := f.students[id]; ok && keep(s) {
			out = append(out, s)
		}
	}
	_ = json.NewEncoder(w).Encode(out)
}

type fixture struct {
	router  *gin.Engine
	fake    *fakeBackend
	backend *httptest.Server
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := newFakeBackend()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := backend.New(srv.URL)
	resolver := media.NewResolver(srv.URL + "/api")
	kv := store.NewMemory()
	drafts := draft.NewStore(kv, time.Minute)
	poller := notify.New(func(ctx context.Context, token string) ([]backend.Notification, error) {
		return client.WithToken(token).ListNotifications(ctx)
	}, kv, time.Minute, zerolog.Nop())

	h := web.New(client, resolver, drafts, poller, nil, zerolog.Nop(), 2)

	router := gin.New()
	api := router.Group("/api", session.Auth(signingKey, issuer))
	h.RegisterRoutes(api)

	return &fixture{router: router, fake: fake, backend: srv}
}

func token(t *testing.T, role session.Role) string {
	t.Helper()
	tok, err := session.Issue(string(role)+"-1", role, issuer, signingKey, time.Minute)
	require.NoError(t, err)
	return tok
}

func (fx *fixture) do(t *testing.T, role session.Role, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token(t, role))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	} else if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestListStudentsSearchFilter(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/students?search=LAG", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	students := out["students"].([]any)
	require.Len(t, students, 1, "case-insensitive substring match on location")
	assert.Equal(t, "Amara Okafor", students[0].(map[string]any)["name"])

	w = fx.do(t, session.RoleDonor, http.MethodGet, "/api/students?search=mathematics", nil, "")
	out = decode(t, w)
	require.Len(t, out["students"].([]any), 1, "story text is searched too")

	w = fx.do(t, session.RoleDonor, http.MethodGet, "/api/students", nil, "")
	out = decode(t, w)
	assert.Len(t, out["students"].([]any), 2)
}

func TestListStudentsStatusTab(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/students?status=0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	students := decode(t, w)["students"].([]any)
	require.Len(t, students, 1)
	assert.Equal(t, "Benedict Yeo", students[0].(map[string]any)["name"])

	w = fx.do(t, session.RoleDonor, http.MethodGet, "/api/students?status=42", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown status tab rejected")
}

func TestStudentDetailViewModel(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/students/7", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)

	assert.Equal(t, fx.backend.URL+"/images/amara.png", out["profileImageUrl"], "relative path resolved against media origin")
	assert.Equal(t, float64(45), out["fundingPercent"])
	assert.Equal(t, "Approved", out["statusLabel"])
	assert.Equal(t, "success", out["statusColor"])

	g := out["gallery"].(map[string]any)
	assert.Len(t, g["tiles"].([]any), 3)
	assert.Nil(t, g["overflow"])
}

func TestFundingPercentClampedForDisplay(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/students/8", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), decode(t, w)["fundingPercent"], "over-funded students display 100%")
}

func TestStudentNotFoundTimedRedirect(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/students/999", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	out := decode(t, w)
	assert.Equal(t, "student not found", out["error"])
	assert.Equal(t, "/students", out["redirect"])
	assert.Equal(t, float64(2500), out["redirect_after_ms"])
}

func TestLightboxNavigation(t *testing.T) {
	fx := setup(t)

	// Last index wraps forward to 0, backward to 1.
	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/students/7/gallery/2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, float64(0), out["nextIndex"])
	assert.Equal(t, float64(1), out["prevIndex"])
	assert.Equal(t, true, out["navigable"])
	assert.Equal(t, "c.png", out["downloadName"])

	w = fx.do(t, session.RoleDonor, http.MethodGet, "/api/students/7/gallery/9", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestModerationRequiresRole(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodDelete, "/api/students/7", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = fx.do(t, session.RoleAdmin, http.MethodDelete, "/api/students/7", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestStatusTriage(t *testing.T) {
	fx := setup(t)

	body := strings.NewReader(`{"status":3}`)
	w := fx.do(t, session.RoleManager, http.MethodPut, "/api/students/8/status", body, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "Rejected", out["statusLabel"])

	w = fx.do(t, session.RoleManager, http.MethodPut, "/api/students/8/status", strings.NewReader(`{"status":42}`), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDraftEditFlow(t *testing.T) {
	fx := setup(t)

	// Open the edit dialog.
	w := fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/edit", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["dirty"])

	// Buffer a field edit.
	w = fx.do(t, session.RoleManager, http.MethodPut, "/api/students/7/draft",
		strings.NewReader(`{"name":"Amara O.","fundingGoal":2000}`), "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["dirty"])
	assert.Equal(t, "Amara O.", out["student"].(map[string]any)["name"])

	// Nothing has reached the backend yet.
	assert.Zero(t, fx.fake.count("PUT /students/7"), "unsaved edits never sent implicitly")

	// Cancel restores the last-fetched record exactly.
	w = fx.do(t, session.RoleManager, http.MethodDelete, "/api/students/7/draft", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out = decode(t, w)
	assert.Equal(t, false, out["dirty"])
	assert.Equal(t, "Amara Okafor", out["student"].(map[string]any)["name"])
	assert.Zero(t, fx.fake.count("PUT /students/7"))

	// Editing again after cancel requires reopening.
	w = fx.do(t, session.RoleManager, http.MethodPut, "/api/students/7/draft",
		strings.NewReader(`{"name":"x"}`), "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDraftSaveCommitsAndRefetches(t *testing.T) {
	fx := setup(t)

	fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/edit", nil, "")
	fx.do(t, session.RoleManager, http.MethodPut, "/api/students/7/draft",
		strings.NewReader(`{"fundingGoal":2000}`), "")

	w := fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/draft/save", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	student := out["student"].(map[string]any)
	assert.Equal(t, float64(2000), student["fundingGoal"])
	assert.Equal(t, float64(450), student["amountRaised"], "server-computed field reconciled by refetch")

	assert.Equal(t, 1, fx.fake.count("PUT /students/7"))
	assert.GreaterOrEqual(t, fx.fake.count("GET /students/7"), 2, "refetch after save")

	// The draft is gone once committed.
	w = fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/draft/save", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDraftGalleryBatchPartialFailure(t *testing.T) {
	fx := setup(t)

	fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/edit", nil, "")

	body, contentType := multipartBody(t, "one.jpg", "two.gif", "three.png")
	w := fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/draft/gallery", body, contentType)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)

	gallery := out["student"].(map[string]any)["gallery"].(map[string]any)
	assert.Equal(t, float64(5), gallery["total"], "3 existing + 2 accepted uploads")

	errs := out["errors"].([]any)
	require.Len(t, errs, 1, "exactly one per-file error")
	assert.Equal(t, "two.gif", errs[0].(map[string]any)["file"])

	// Buffered only: the student record is not updated yet.
	assert.Zero(t, fx.fake.count("PUT /students/7"))

	// Saving persists the appended gallery.
	w = fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/draft/save", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	saved := decode(t, w)["student"].(map[string]any)["gallery"].(map[string]any)
	assert.Equal(t, float64(5), saved["total"])
}

func TestDraftDocumentUpload(t *testing.T) {
	fx := setup(t)

	fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/edit", nil, "")

	body, contentType := multipartBody(t, "transcript.pdf")
	w := fx.do(t, session.RoleManager, http.MethodPost, "/api/students/7/draft/documents", body, contentType)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)

	docs := out["student"].(map[string]any)["documents"].([]any)
	require.Len(t, docs, 1)
	doc := docs[0].(map[string]any)
	assert.Equal(t, "transcript.pdf", doc["fileName"])
	assert.Equal(t, "pdf", doc["documentType"])
	assert.Contains(t, doc["downloadUrl"], "images/stored-transcript.pdf")
}

func TestSponsoredRoster(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/sponsorships", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	students := decode(t, w)["students"].([]any)
	require.Len(t, students, 1)
	assert.Equal(t, "Amara Okafor", students[0].(map[string]any)["name"])
}

func TestNotificationsInbox(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/notifications", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, float64(1), out["unread"])
	entries := out["notifications"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "success", entries[0].(map[string]any)["color"], "donation notifications color-coded")
}

func TestUnreadCountFallsBackBeforeFirstPoll(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleDonor, http.MethodGet, "/api/notifications/unread-count", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, float64(1), out["unread"])
	assert.Equal(t, false, out["cached"])
}

func TestRequestsRequireAuth(t *testing.T) {
	fx := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, fx.fake.count("GET /students"), "unauthenticated requests never reach the backend")
}

func TestViewingIsReadOnly(t *testing.T) {
	fx := setup(t)

	fx.do(t, session.RoleDonor, http.MethodGet, "/api/students/7", nil, "")
	assert.Equal(t, 1, fx.fake.count("GET /students/7"))
	assert.Zero(t, fx.fake.count("PUT /students/7"), "no writes beyond the fetch")
}

func TestProgressCRUD(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleStudent, http.MethodPost, "/api/progress",
		strings.NewReader(`{"title":"Term 1 results","description":"Top of class","reportDate":"2026-06-30"}`), "")
	assert.Equal(t, http.StatusNotFound, w.Code, "fake backend has no create endpoint; error surfaces inline")
	assert.Contains(t, w.Body.String(), "error")

	w = fx.do(t, session.RoleStudent, http.MethodPost, "/api/progress",
		strings.NewReader(`{"title":"x","description":"y","reportDate":"30/06/2026"}`), "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "malformed date rejected before any backend call")
}

func TestUpdateProgressRendersSavedRecord(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleStudent, http.MethodPut, "/api/progress/12",
		strings.NewReader(`{"title":"Term 1 results","description":"Top of class","reportDate":"2026-06-30"}`), "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)

	// The response reflects what the backend saved, not the request.
	assert.Equal(t, float64(12), out["id"])
	assert.Equal(t, float64(7), out["studentId"])
	assert.Equal(t, "Term 1 results (reviewed)", out["title"])
}

func TestProgressAllRequiresModerator(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, session.RoleStudent, http.MethodGet, "/api/progress/all", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
