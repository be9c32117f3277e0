package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var secret = []byte("test-secret")

func TestLoginAndMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	login := LoginHandler(secret, string(hash))

	// wrong password
	w := httptest.NewRecorder()
	login(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// right password yields a usable token
	w = httptest.NewRecorder()
	login(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"hunter2"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	gate := New(secret)
	called := false
	h := gate.Wrap(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	w = httptest.NewRecorder()
	h(w, req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddlewareRejections(t *testing.T) {
	gate := New(secret)
	h := gate.Wrap(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	// missing header
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// garbage token
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w = httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// token signed with another secret
	other, err := GenerateToken([]byte("other-secret"))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	w = httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWithoutConfiguredHash(t *testing.T) {
	login := LoginHandler(secret, "")
	w := httptest.NewRecorder()
	login(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"anything"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
