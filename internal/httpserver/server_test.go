package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linksaver/internal/auth"
	"github.com/MrSnakeDoc/linksaver/internal/bookmarks"
	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/ordering"
	"github.com/MrSnakeDoc/linksaver/internal/store/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type staticResolver struct{}

func (staticResolver) Resolve(_ context.Context, rawURL string) domain.Metadata {
	return domain.Metadata{Title: "Title of " + rawURL}
}

type staticSummarizer struct{}

func (staticSummarizer) Summarize(context.Context, string) string {
	return "A static summary used by the router tests."
}

type testServer struct {
	srv   *httptest.Server
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	v, err := auth.NewVerifier(testSecret)
	require.NoError(t, err)
	token, err := v.Sign(&auth.Claims{Email: "alice@example.com"}, time.Hour)
	require.NoError(t, err)

	s := memory.New()
	log := logger.NewNop()
	svc := bookmarks.NewService(s, staticResolver{}, staticSummarizer{},
		ordering.NewReconciler(s, log, 2), log, bookmarks.Options{})

	d := deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		TimeNow:         time.Now,
		Bookmarks:       svc,
		Verifier:        v,
		Store:           s,
		StoreBackend:    "memory",
		RateLimitBurst:  10,
		RateLimitPerMin: 10,
	}
	srv := httptest.NewServer(NewRouter(d, 5*time.Second))
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, token: token}
}

func (ts *testServer) call(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type listBody struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

type createBody struct {
	Bookmark domain.Bookmark `json:"bookmark"`
}

func TestBookmarkLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var ids []string
	for _, u := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
		var created createBody
		status := ts.call(t, http.MethodPost, "/api/bookmarks", `{"url":"`+u+`","tags":["go"]}`, &created)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "Title of "+u, created.Bookmark.Title)
		ids = append(ids, created.Bookmark.ID)
	}

	status := ts.call(t, http.MethodPost, "/api/bookmarks", `{"url":"https://a.example.com"}`, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = ts.call(t, http.MethodPut, "/api/bookmarks/reorder",
		`{"bookmarkIds":["`+ids[2]+`","`+ids[0]+`","`+ids[1]+`"]}`, nil)
	require.Equal(t, http.StatusOK, status)

	var list listBody
	require.Equal(t, http.StatusOK, ts.call(t, http.MethodGet, "/api/bookmarks", "", &list))
	require.Len(t, list.Bookmarks, 3)
	assert.Equal(t, ids[2], list.Bookmarks[0].ID)
	assert.Equal(t, ids[0], list.Bookmarks[1].ID)
	assert.Equal(t, ids[1], list.Bookmarks[2].ID)

	require.Equal(t, http.StatusOK, ts.call(t, http.MethodPut, "/api/bookmarks/"+ids[0], `{"tags":["rust"]}`, nil))
	require.Equal(t, http.StatusOK, ts.call(t, http.MethodGet, "/api/bookmarks?tag=rust", "", &list))
	require.Len(t, list.Bookmarks, 1)
	assert.Equal(t, ids[0], list.Bookmarks[0].ID)

	require.Equal(t, http.StatusOK, ts.call(t, http.MethodDelete, "/api/bookmarks/"+ids[1], "", nil))
	assert.Equal(t, http.StatusNotFound, ts.call(t, http.MethodDelete, "/api/bookmarks/"+ids[1], "", nil))

	require.Equal(t, http.StatusOK, ts.call(t, http.MethodGet, "/api/bookmarks", "", &list))
	assert.Len(t, list.Bookmarks, 2)
}

func TestBookmarksRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.srv.Client().Get(ts.srv.URL + "/api/bookmarks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOpsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz", "/infra"} {
		resp, err := ts.srv.Client().Get(ts.srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
