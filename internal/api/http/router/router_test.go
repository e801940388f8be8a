package router

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/userkeeper-server/internal/api/http/middleware"
	"github.com/dtroode/userkeeper-server/internal/mocks"
	"github.com/dtroode/userkeeper-server/internal/model"
	"github.com/dtroode/userkeeper-server/internal/repository/sqlite"
	"github.com/dtroode/userkeeper-server/internal/service"
	"github.com/dtroode/userkeeper-server/internal/testutil"
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func (c apiClient) do(method, path string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func newSQLiteAPI(t *testing.T) (apiClient, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.db")
	store, err := sqlite.Open(path, testutil.MakeNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := service.NewUser(store, nil, testutil.MakeNoopLogger())
	srv := httptest.NewServer(New(svc, store, testutil.MakeNoopLogger()).Register())
	t.Cleanup(srv.Close)

	return apiClient{t: t, server: srv}, path
}

func decodeUser(t *testing.T, data []byte) model.User {
	t.Helper()
	var user model.User
	require.NoError(t, json.Unmarshal(data, &user))
	return user
}

func TestRouter_UserScenario(t *testing.T) {
	t.Parallel()

	api, _ := newSQLiteAPI(t)

	code, body := api.do(http.MethodPost, "/users", map[string]any{"email": "a@x.com", "name": "Ann"})
	require.Equal(t, http.StatusCreated, code, string(body))
	created := decodeUser(t, body)
	assert.Equal(t, int64(1), created.ID)

	code, body = api.do(http.MethodPost, "/users", map[string]any{"email": "a@x.com"})
	assert.Equal(t, http.StatusConflict, code)
	assert.JSONEq(t, `{"error":"Email already in use"}`, string(body))

	code, body = api.do(http.MethodGet, "/users/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created, decodeUser(t, body))

	code, body = api.do(http.MethodPatch, "/users/1", map[string]any{"email": "b@x.com"})
	require.Equal(t, http.StatusOK, code)
	updated := decodeUser(t, body)
	assert.Equal(t, "b@x.com", updated.Email)
	assert.Equal(t, "Ann", updated.Name)

	code, body = api.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, code)
	var users []model.User
	require.NoError(t, json.Unmarshal(body, &users))
	assert.Len(t, users, 1)

	code, body = api.do(http.MethodDelete, "/users/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "b@x.com", decodeUser(t, body).Email)

	code, body = api.do(http.MethodGet, "/users/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"User with id 1 not found"}`, string(body))
}

func TestRouter_RemoveReferencedUser(t *testing.T) {
	t.Parallel()

	api, path := newSQLiteAPI(t)

	code, body := api.do(http.MethodPost, "/users", map[string]any{"email": "author@x.com"})
	require.Equal(t, http.StatusCreated, code)
	author := decodeUser(t, body)

	db, err := sql.Open("sqlite", sqlite.DSN(path))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO posts (author_id, title) VALUES (?, ?)`, author.ID, "hello")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	code, body = api.do(http.MethodDelete, "/users/1", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.JSONEq(t, `{"error":"Cannot delete user, it is being referenced by another record"}`, string(body))

	code, _ = api.do(http.MethodGet, "/users/1", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	api, _ := newSQLiteAPI(t)

	code, body := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRouter_RecoversPanics(t *testing.T) {
	t.Parallel()

	svc := mocks.NewUserService(t)
	svc.On("Get", mock.Anything, int64(1)).Run(func(mock.Arguments) { panic("boom") })

	h := New(svc, pingFunc(func(context.Context) error { return nil }), testutil.MakeNoopLogger()).Register()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	h := New(mocks.NewUserService(t), pingFunc(func(context.Context) error { return nil }), testutil.MakeNoopLogger()).Register()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/users/1", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
