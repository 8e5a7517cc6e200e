package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mportela/qbnotes/internal/auth"
	authhttp "github.com/mportela/qbnotes/internal/http/auth"
)

func newServer(t *testing.T, svc *auth.Service) (*httptest.Server, *authhttp.Handler) {
	t.Helper()

	h := authhttp.NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/auth", h.Routes)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireSubscription)
		r.Get("/protected", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, h
}

func TestHandler_Validate_AllowlistedEmailGetsToken(t *testing.T) {
	svc := auth.New(false, []string{"test@example.com"}, "secret")
	srv, _ := newServer(t, svc)

	resp, err := http.Post(srv.URL+"/auth/validate", "application/json",
		strings.NewReader(`{"email":"test@example.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Valid  bool   `json:"valid"`
		Plan   string `json:"plan"`
		UserID string `json:"user_id"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.True(t, body.Valid)
	assert.Equal(t, "pro", body.Plan)
	assert.Equal(t, "test-user-123", body.UserID)
	assert.NotEmpty(t, body.Token)
}

func TestHandler_Validate_UnknownEmail(t *testing.T) {
	svc := auth.New(false, []string{"test@example.com"}, "secret")
	srv, _ := newServer(t, svc)

	resp, err := http.Post(srv.URL+"/auth/validate", "application/json",
		strings.NewReader(`{"email":"stranger@example.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Valid bool   `json:"valid"`
		Plan  string `json:"plan"`
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.False(t, body.Valid)
	assert.Equal(t, "free", body.Plan)
	assert.Empty(t, body.Token)
}

func TestHandler_Validate_MissingEmail(t *testing.T) {
	svc := auth.New(false, nil, "")
	srv, _ := newServer(t, svc)

	resp, err := http.Post(srv.URL+"/auth/validate", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequireSubscription(t *testing.T) {
	svc := auth.New(false, []string{"test@example.com"}, "secret")
	srv, _ := newServer(t, svc)

	// No token.
	resp, err := http.Get(srv.URL + "/protected")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage token.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/protected", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid token issued by the same service.
	token, err := svc.IssueToken("test@example.com", svc.Validate("test@example.com"))
	require.NoError(t, err)

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/protected", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
