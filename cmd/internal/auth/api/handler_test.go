package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"authgate/cmd/identity"
	"authgate/cmd/internal/auth/flows"
	"authgate/cmd/internal/auth/session"
)

type capturedLink struct {
	token string
}

type testNotifier struct {
	last *capturedLink
}

func (n *testNotifier) SendLoginLink(_ context.Context, msg flows.LinkMessage) error {
	n.last = &capturedLink{token: msg.Token}
	return nil
}

func (n *testNotifier) SendResetLink(_ context.Context, msg flows.LinkMessage) error {
	n.last = &capturedLink{token: msg.Token}
	return nil
}

func newTestHandler(t *testing.T) (*http.ServeMux, *testNotifier) {
	t.Helper()

	users := identity.NewMemoryStore()
	if _, err := users.CreateUser(context.Background(), identity.CreateUserInput{
		Email:    "kaveh@example.com",
		Password: "correct horse battery",
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dir, err := identity.NewDirectory(users, nil)
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	sessions, err := session.NewService(session.DefaultConfig(), nil, session.NewMemoryRecordStore(), nil, nil, dir)
	if err != nil {
		t.Fatalf("session.NewService: %v", err)
	}

	notifier := &testNotifier{}
	flowsSvc, err := flows.NewService(nil, sessions, session.NewMemoryRecordStore(), dir, notifier)
	if err != nil {
		t.Fatalf("flows.NewService: %v", err)
	}

	h, err := NewHandler(nil, DefaultConfig(), sessions, flowsSvc, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	mux := http.NewServeMux()
	h.Register(mux)
	return mux, notifier
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == "loggedIn" {
			return c
		}
	}
	t.Fatal("no loggedIn cookie on response")
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	mux, _ := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"kaveh@example.com","password":"correct horse battery"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	c := sessionCookie(t, rec)
	if c.Value == "" {
		t.Fatal("empty cookie value")
	}
	if !c.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if !c.Expires.After(time.Now().Add(11 * time.Hour)) {
		t.Fatalf("cookie expires too soon: %v", c.Expires)
	}
}

func TestLoginWrongPasswordIsUniform401(t *testing.T) {
	mux, _ := newTestHandler(t)

	wrongPw := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"kaveh@example.com","password":"nope"}`, nil)
	unknown := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"ghost@example.com","password":"nope"}`, nil)

	if wrongPw.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d; want 401 for both", wrongPw.Code, unknown.Code)
	}
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Fatal("denial bodies must be indistinguishable")
	}
}

func TestLoginRejectsMalformedJSON(t *testing.T) {
	mux, _ := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/auth/login", `{"email":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestValidateAfterLogin(t *testing.T) {
	mux, _ := newTestHandler(t)

	login := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"kaveh@example.com","password":"correct horse battery"}`, nil)
	cookie := sessionCookie(t, login)

	rec := doJSON(t, mux, http.MethodGet, "/auth/validate", "", []*http.Cookie{cookie})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp validateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Authenticated {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Subject != "kaveh@example.com" {
		t.Fatalf("Subject = %q", resp.Subject)
	}
	if resp.ExpiresAt == nil || !resp.ExpiresAt.After(time.Now()) {
		t.Fatalf("ExpiresAt = %v", resp.ExpiresAt)
	}
}

func TestValidateDenialsAreIndistinguishable(t *testing.T) {
	mux, _ := newTestHandler(t)

	// No cookie, a forged cookie, and an expired-and-logged-out cookie all
	// produce the same 401; the wire must not reveal why a session was
	// refused.
	login := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"kaveh@example.com","password":"correct horse battery"}`, nil)
	stale := sessionCookie(t, login)
	doJSON(t, mux, http.MethodPost, "/auth/logout", "", []*http.Cookie{stale})

	none := doJSON(t, mux, http.MethodGet, "/auth/validate", "", nil)
	forged := doJSON(t, mux, http.MethodGet, "/auth/validate", "",
		[]*http.Cookie{{Name: "loggedIn", Value: "forged-value"}})
	dead := doJSON(t, mux, http.MethodGet, "/auth/validate", "", []*http.Cookie{stale})

	for name, rec := range map[string]*httptest.ResponseRecorder{
		"no cookie": none, "forged cookie": forged, "dead cookie": dead,
	} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, rec.Code)
		}
	}
	if none.Body.String() != forged.Body.String() || forged.Body.String() != dead.Body.String() {
		t.Fatal("denial bodies must be indistinguishable")
	}
	if strings.Contains(forged.Body.String(), "invalid") || strings.Contains(none.Body.String(), "empty") {
		t.Fatal("denial body must not leak the internal status taxonomy")
	}
}

func TestValidateForgedCookieClearsIt(t *testing.T) {
	mux, _ := newTestHandler(t)

	forged := &http.Cookie{Name: "loggedIn", Value: "forged-value"}
	rec := doJSON(t, mux, http.MethodGet, "/auth/validate", "", []*http.Cookie{forged})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	cleared := sessionCookie(t, rec)
	if cleared.Value != "" || cleared.MaxAge != -1 {
		t.Fatal("forged cookie must be expired on the response")
	}
}

func TestLogoutClearsCookieAndRecord(t *testing.T) {
	mux, _ := newTestHandler(t)

	login := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"kaveh@example.com","password":"correct horse battery"}`, nil)
	cookie := sessionCookie(t, login)

	logout := doJSON(t, mux, http.MethodPost, "/auth/logout", "", []*http.Cookie{cookie})
	if logout.Code != http.StatusOK {
		t.Fatalf("status = %d", logout.Code)
	}
	cleared := sessionCookie(t, logout)
	if cleared.MaxAge != -1 {
		t.Fatal("logout must expire the cookie")
	}

	// The old value must no longer validate.
	rec := doJSON(t, mux, http.MethodGet, "/auth/validate", "", []*http.Cookie{cookie})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 after logout", rec.Code)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	mux, _ := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodPost, "/auth/logout", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp logoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Fatal("logout without a session reports failure, not an error")
	}
}

func TestLoginLinkFlow(t *testing.T) {
	mux, notifier := newTestHandler(t)

	initiate := doJSON(t, mux, http.MethodPost, "/auth/link/initiate",
		`{"email":"kaveh@example.com"}`, nil)
	if initiate.Code != http.StatusOK {
		t.Fatalf("initiate status = %d", initiate.Code)
	}
	if notifier.last == nil {
		t.Fatal("no link delivered")
	}

	consume := doJSON(t, mux, http.MethodPost, "/auth/link/consume",
		`{"token":"`+notifier.last.token+`"}`, nil)
	if consume.Code != http.StatusOK {
		t.Fatalf("consume status = %d, body = %s", consume.Code, consume.Body.String())
	}
	cookie := sessionCookie(t, consume)
	if cookie.Value == "" {
		t.Fatal("consume must establish a session cookie")
	}

	// Second consumption of the same link is refused.
	again := doJSON(t, mux, http.MethodPost, "/auth/link/consume",
		`{"token":"`+notifier.last.token+`"}`, nil)
	if again.Code != http.StatusUnauthorized {
		t.Fatalf("second consume status = %d, want 401", again.Code)
	}
}

func TestInitiateUnknownSubjectLooksTheSame(t *testing.T) {
	mux, notifier := newTestHandler(t)

	known := doJSON(t, mux, http.MethodPost, "/auth/link/initiate",
		`{"email":"kaveh@example.com"}`, nil)
	unknown := doJSON(t, mux, http.MethodPost, "/auth/link/initiate",
		`{"email":"ghost@example.com"}`, nil)

	if known.Code != unknown.Code || known.Body.String() != unknown.Body.String() {
		t.Fatal("initiate responses must not reveal whether the subject exists")
	}
	_ = notifier
}

func TestResetFlow(t *testing.T) {
	mux, notifier := newTestHandler(t)

	initiate := doJSON(t, mux, http.MethodPost, "/auth/reset/initiate",
		`{"email":"kaveh@example.com"}`, nil)
	if initiate.Code != http.StatusOK {
		t.Fatalf("initiate status = %d", initiate.Code)
	}

	complete := doJSON(t, mux, http.MethodPost, "/auth/reset/complete",
		`{"token":"`+notifier.last.token+`","new_password":"fresh password 42"}`, nil)
	if complete.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body = %s", complete.Code, complete.Body.String())
	}

	oldPw := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"kaveh@example.com","password":"correct horse battery"}`, nil)
	if oldPw.Code != http.StatusUnauthorized {
		t.Fatalf("old password still works: %d", oldPw.Code)
	}
	newPw := doJSON(t, mux, http.MethodPost, "/auth/login",
		`{"email":"kaveh@example.com","password":"fresh password 42"}`, nil)
	if newPw.Code != http.StatusOK {
		t.Fatalf("new password rejected: %d", newPw.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestHandler(t)

	rec := doJSON(t, mux, http.MethodGet, "/auth/login", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
