package users

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termene/termene/internal/platform/httpx"
)

func newTestServer(t *testing.T) (*httptest.Server, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(repo, nil, logger)
	handler := NewHandler(logger, service)

	r := chi.NewRouter()
	handler.MountRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestCreateUserEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)

	resp := postJSON(t, srv.URL+"/users", `{
		"username": "mpopescu",
		"email": "mpopescu@termene.local",
		"password": "parola12345",
		"password_confirm": "parola12345",
		"first_name": "Mihai",
		"last_name": "Popescu",
		"role": "operator"
	}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var view UserView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "mpopescu", view.Username)
	assert.Equal(t, RoleOperator, view.Role)
	assert.True(t, view.IsActive)

	stored, err := repo.Get(t.Context(), view.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "parola12345", stored.PasswordHash)
}

func TestCreateUserEndpointRejectsShortPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/users", `{
		"username": "scurt",
		"email": "scurt@termene.local",
		"password": "abc",
		"password_confirm": "abc",
		"role": "viewer"
	}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem httpx.ProblemDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "Password", problem.Field)
}

func TestShowUserEndpointRejectsBadID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/users/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestShowUserEndpointNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/users/6f1f0cde-41a4-4b72-93cc-2a84a4f3f3d1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChangePasswordEndpoint(t *testing.T) {
	srv, repo := newTestServer(t)

	created := postJSON(t, srv.URL+"/users", `{
		"username": "parolat",
		"email": "parolat@termene.local",
		"password": "initiala123",
		"password_confirm": "initiala123",
		"role": "viewer"
	}`)
	var view UserView
	require.NoError(t, json.NewDecoder(created.Body).Decode(&view))
	created.Body.Close()

	before, err := repo.Get(t.Context(), view.ID)
	require.NoError(t, err)

	resp := postJSON(t, srv.URL+"/users/"+view.ID.String()+"/change-password", `{
		"password": "schimbata123",
		"password_confirm": "schimbata123"
	}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	after, err := repo.Get(t.Context(), view.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
}
