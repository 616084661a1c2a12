package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/astroadvisor/internal/common"
	"github.com/dmitrijs2005/astroadvisor/internal/logging"
	"github.com/dmitrijs2005/astroadvisor/internal/server/advice"
	"github.com/dmitrijs2005/astroadvisor/internal/server/auth"
	"github.com/dmitrijs2005/astroadvisor/internal/server/models"
	"github.com/dmitrijs2005/astroadvisor/internal/server/services"
)

const testSecret = "test-secret"

// --- fakes ---

type fakeUserService struct {
	registerOut *models.User
	registerErr error

	loginOut string
	loginErr error

	getOut *models.User
	getErr error

	updateOut *models.User
	updateErr error

	deleteErr error
}

func (f *fakeUserService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.loginOut, nil
}

func (f *fakeUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUserService) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeUserService) Delete(ctx context.Context, id string) error { return f.deleteErr }

type fakeReadingService struct {
	createOut *models.Reading
	createErr error

	listOut []*models.Reading
	listErr error

	getOut *models.Reading
	getErr error

	forUserCalls int
	quickCalls   int
	lastSkip     int
	lastLimit    int
}

func (f *fakeReadingService) CreateForUser(ctx context.Context, userID string, in advice.Input) (*models.Reading, error) {
	f.forUserCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeReadingService) CreateQuick(ctx context.Context, in advice.Input) (*models.Reading, error) {
	f.quickCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeReadingService) List(ctx context.Context, userID string, skip, limit int) ([]*models.Reading, error) {
	f.lastSkip, f.lastLimit = skip, limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeReadingService) Get(ctx context.Context, userID string, id string) (*models.Reading, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

// --- helpers ---

func testUser() *models.User {
	return &models.User{
		ID: "u-1", Email: "alice@example.com", UserName: "alice",
		PasswordHash: "$2a$10$secret", BirthDate: "1990-05-01", Location: "Riga",
		IsActive: true, CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T, us UserService, rs ReadingService) *Server {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s, err := NewServer(":0", logger, us, rs, testSecret)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	return s
}

func bearerToken(t *testing.T) string {
	t.Helper()
	tok, err := auth.GenerateToken("alice@example.com", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return tok
}

func doJSON(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// --- tests ---

func TestRegister_Success_NoHashInResponse(t *testing.T) {
	us := &fakeUserService{registerOut: testUser()}
	s := newTestServer(t, us, &fakeReadingService{})

	w := doJSON(t, s.Router(), http.MethodPost, "/register",
		`{"email":"alice@example.com","username":"alice","password":"pw","birth_date":"1990-05-01","location":"Riga"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if strings.Contains(body, "password") || strings.Contains(body, "$2a$") {
		t.Fatalf("response leaks password material: %s", body)
	}
	var v userView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if v.Email != "alice@example.com" || !v.IsActive {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	us := &fakeUserService{registerErr: common.ErrorAlreadyExists}
	s := newTestServer(t, us, &fakeReadingService{})

	w := doJSON(t, s.Router(), http.MethodPost, "/register",
		`{"email":"alice@example.com","username":"alice","password":"pw","birth_date":"1990-05-01","location":"Riga"}`, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email already registered") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRegister_ValidationError(t *testing.T) {
	us := &fakeUserService{registerErr: common.ErrorValidation}
	s := newTestServer(t, us, &fakeReadingService{})

	w := doJSON(t, s.Router(), http.MethodPost, "/register", `{"email":"nope"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestToken_FormEncodedExchange(t *testing.T) {
	us := &fakeUserService{loginOut: "signed-token"}
	s := newTestServer(t, us, &fakeReadingService{})

	form := url.Values{"username": {"alice@example.com"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["access_token"] != "signed-token" || resp["token_type"] != "bearer" {
		t.Fatalf("unexpected token response: %v", resp)
	}
}

func TestToken_InvalidCredentials(t *testing.T) {
	us := &fakeUserService{loginErr: common.ErrorUnauthorized}
	s := newTestServer(t, us, &fakeReadingService{})

	form := url.Values{"username": {"alice@example.com"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestGetSelf_RequiresToken(t *testing.T) {
	s := newTestServer(t, &fakeUserService{}, &fakeReadingService{})

	w := doJSON(t, s.Router(), http.MethodGet, "/users/me", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}

	w = doJSON(t, s.Router(), http.MethodGet, "/users/me", "", "garbage-token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401 for invalid token", w.Code)
	}
}

func TestGetSelf_ExpiredToken(t *testing.T) {
	us := &fakeUserService{getOut: testUser()}
	s := newTestServer(t, us, &fakeReadingService{})

	expired, err := auth.GenerateToken("alice@example.com", []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	w := doJSON(t, s.Router(), http.MethodGet, "/users/me", "", expired)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401 for expired token", w.Code)
	}
}

func TestGetSelf_Success(t *testing.T) {
	us := &fakeUserService{getOut: testUser()}
	s := newTestServer(t, us, &fakeReadingService{})

	w := doJSON(t, s.Router(), http.MethodGet, "/users/me", "", bearerToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var v userView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if v.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", v)
	}
}

func TestUpdateSelf(t *testing.T) {
	updated := testUser()
	updated.UserName = "alice2"
	us := &fakeUserService{getOut: testUser(), updateOut: updated}
	s := newTestServer(t, us, &fakeReadingService{})

	w := doJSON(t, s.Router(), http.MethodPut, "/users/me", `{"username":"alice2"}`, bearerToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var v userView
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	if v.UserName != "alice2" {
		t.Fatalf("unexpected username: %q", v.UserName)
	}
}

func TestDeleteSelf(t *testing.T) {
	us := &fakeUserService{getOut: testUser()}
	s := newTestServer(t, us, &fakeReadingService{})

	w := doJSON(t, s.Router(), http.MethodDelete, "/users/me", "", bearerToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "User deleted successfully") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGetAdvice_GenerationFailure(t *testing.T) {
	us := &fakeUserService{getOut: testUser()}
	rs := &fakeReadingService{createErr: common.ErrAdviceGeneration}
	s := newTestServer(t, us, rs)

	w := doJSON(t, s.Router(), http.MethodPost, "/get-advice",
		`{"name":"Alice","birth_date":"1990-05-01","location":"Riga"}`, bearerToken(t))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status %d, want 502", w.Code)
	}
}

func TestQuickAdvice_IgnoresValidToken(t *testing.T) {
	us := &fakeUserService{getOut: testUser()}
	rs := &fakeReadingService{createOut: &models.Reading{ID: "r-1", Name: "Bob", BirthDate: "1985-01-15", Location: "Oslo", Advice: "ok"}}
	s := newTestServer(t, us, rs)

	// a valid bearer token is attached, the endpoint must still create an
	// anonymous reading
	w := doJSON(t, s.Router(), http.MethodPost, "/quick-advice",
		`{"name":"Bob","birth_date":"1985-01-15","location":"Oslo"}`, bearerToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if rs.quickCalls != 1 || rs.forUserCalls != 0 {
		t.Fatalf("expected quick path only, got quick=%d owned=%d", rs.quickCalls, rs.forUserCalls)
	}
}

func TestListReadings_PagingParams(t *testing.T) {
	us := &fakeUserService{getOut: testUser()}
	rs := &fakeReadingService{listOut: []*models.Reading{{ID: "r-3"}, {ID: "r-2"}}}
	s := newTestServer(t, us, rs)

	w := doJSON(t, s.Router(), http.MethodGet, "/users/me/readings?skip=5&limit=2", "", bearerToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if rs.lastSkip != 5 || rs.lastLimit != 2 {
		t.Fatalf("expected skip=5 limit=2, got %d/%d", rs.lastSkip, rs.lastLimit)
	}

	var views []readingView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(views) != 2 || views[0].ID != "r-3" {
		t.Fatalf("unexpected page: %+v", views)
	}
}

func TestListReadings_DefaultsWhenUnset(t *testing.T) {
	us := &fakeUserService{getOut: testUser()}
	rs := &fakeReadingService{listOut: nil}
	s := newTestServer(t, us, rs)

	w := doJSON(t, s.Router(), http.MethodGet, "/readings", "", bearerToken(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if rs.lastSkip != 0 || rs.lastLimit != 10 {
		t.Fatalf("expected defaults 0/10, got %d/%d", rs.lastSkip, rs.lastLimit)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty page must encode as [], got %s", w.Body.String())
	}
}

func TestGetReading_NotFoundShapeIsUniform(t *testing.T) {
	us := &fakeUserService{getOut: testUser()}
	rs := &fakeReadingService{getErr: common.ErrorNotFound}
	s := newTestServer(t, us, rs)

	// same service error covers "absent" and "owned by someone else"; the
	// response must be a plain 404 with no distinguishing detail
	w := doJSON(t, s.Router(), http.MethodGet, "/readings/r-404", "", bearerToken(t))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Not found") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRoot_Welcome(t *testing.T) {
	s := newTestServer(t, &fakeUserService{}, &fakeReadingService{})

	w := doJSON(t, s.Router(), http.MethodGet, "/", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Welcome to Astro Advisor API") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
