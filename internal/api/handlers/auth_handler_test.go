package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	middleware "textgenai/internal/api/middlewares"
	"textgenai/internal/services"
)

var testSecret = []byte("test-secret")

func newAuthHandler(db *fakeDbClient) *AuthHandler {
	return NewAuthHandler(services.NewUserService(db), testSecret, testLogger())
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestSignupHandler(t *testing.T) {
	h := newAuthHandler(newFakeDbClient())

	rec, payload := doJSON(t, h.Signup, http.MethodPost, "/api/signup",
		`{"name":"Alice","email":"alice@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, payload["success"])
}

func TestSignupHandlerDuplicateIsDistinguishable(t *testing.T) {
	h := newAuthHandler(newFakeDbClient())

	rec, _ := doJSON(t, h.Signup, http.MethodPost, "/api/signup",
		`{"name":"Alice","email":"alice@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, payload := doJSON(t, h.Signup, http.MethodPost, "/api/signup",
		`{"name":"Other","email":"alice@example.com","password":"pw2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This email is already registered.", payload["error"])
}

func TestSignupHandlerMissingFields(t *testing.T) {
	h := newAuthHandler(newFakeDbClient())

	rec, _ := doJSON(t, h.Signup, http.MethodPost, "/api/signup",
		`{"name":"","email":"alice@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandlerTwoOutcomesOnly(t *testing.T) {
	db := newFakeDbClient()
	h := newAuthHandler(db)

	rec, _ := doJSON(t, h.Signup, http.MethodPost, "/api/signup",
		`{"name":"Alice","email":"alice@example.com","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Success: session cookie set.
	rec, payload := doJSON(t, h.Login, http.MethodPost, "/api/login",
		`{"email":"alice@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["success"])
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// Wrong password and unknown email yield the same message.
	rec, payload = doJSON(t, h.Login, http.MethodPost, "/api/login",
		`{"email":"alice@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials.", payload["error"])

	rec, payload = doJSON(t, h.Login, http.MethodPost, "/api/login",
		`{"email":"bob@example.com","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials.", payload["error"])
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newAuthHandler(newFakeDbClient())

	rec, _ := doJSON(t, h.Logout, http.MethodPost, "/api/logout", `{}`)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestMeReturnsInitial(t *testing.T) {
	h := newAuthHandler(newFakeDbClient())

	// Run through the session middleware with a real cookie so the
	// identity lands in the request context.
	issueRec := httptest.NewRecorder()
	require.NoError(t, middleware.IssueSessionCookie(issueRec, testSecret, "bharat", "b@example.com"))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(issueRec.Result().Cookies()[0])
	rec := httptest.NewRecorder()
	middleware.SessionMiddleware(testSecret)(http.HandlerFunc(h.Me)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "bharat", payload["name"])
	assert.Equal(t, "B", payload["initial"])
}

func TestMeWithoutSession(t *testing.T) {
	h := newAuthHandler(newFakeDbClient())

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	middleware.SessionMiddleware(testSecret)(http.HandlerFunc(h.Me)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
