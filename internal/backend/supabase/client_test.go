package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/models"
)

type recorded struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	APIKey string
	Type   string
	Body   string
}

type fakeProject struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recorded
	handle   func(w http.ResponseWriter, r *http.Request)
}

func newFakeProject(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*fakeProject, *Client) {
	t.Helper()
	fp := &fakeProject{t: t, handle: handle}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		fp.mu.Lock()
		fp.requests = append(fp.requests, recorded{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  q,
			Auth:   r.Header.Get("Authorization"),
			APIKey: r.Header.Get("apikey"),
			Type:   r.Header.Get("Content-Type"),
			Body:   string(body),
		})
		fp.mu.Unlock()
		fp.handle(w, r)
	}))
	t.Cleanup(srv.Close)
	return fp, New(srv.URL, "anon-key", WithTimeout(5*time.Second))
}

func (fp *fakeProject) last() recorded {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	require.NotEmpty(fp.t, fp.requests)
	return fp.requests[len(fp.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSignInWithPassword(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "bearer",
			"expires_in":    3600,
			"user":          map[string]any{"id": "u1", "email": "editor@example.com"},
		})
	})
	c.now = func() time.Time { return time.Unix(1000, 0) }

	session, err := c.Backend().Auth.SignInWithPassword(context.Background(), "editor@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, int64(4600), session.ExpiresAt)
	assert.True(t, session.HasUser())

	req := fp.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/auth/v1/token", req.Path)
	assert.Equal(t, "password", req.Query["grant_type"])
	assert.Equal(t, "anon-key", req.APIKey)
	assert.JSONEq(t, `{"email":"editor@example.com","password":"secret"}`, req.Body)
}

func TestSignInWithPasswordRejected(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	})

	_, err := c.Backend().Auth.SignInWithPassword(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestGetSessionRefreshesExpiredToken(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "fresh",
			"refresh_token": "refresh-2",
			"expires_in":    3600,
			"user":          map[string]any{"id": "u1"},
		})
	})
	c.now = func() time.Time { return time.Unix(5000, 0) }

	stored := &models.Session{AccessToken: "stale", RefreshToken: "refresh-1", ExpiresAt: 4000}
	session, err := c.Backend().Auth.GetSession(context.Background(), stored)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "fresh", session.AccessToken)
	assert.Equal(t, "refresh_token", fp.last().Query["grant_type"])
	assert.JSONEq(t, `{"refresh_token":"refresh-1"}`, fp.last().Body)
}

func TestGetSessionVerifiesUser(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "email": "editor@example.com"})
	})

	stored := &models.Session{AccessToken: "access"}
	session, err := c.Backend().Auth.GetSession(context.Background(), stored)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "editor@example.com", session.User.Email)
	assert.Equal(t, "/auth/v1/user", fp.last().Path)
	assert.Equal(t, "Bearer access", fp.last().Auth)
}

func TestGetSessionRevoked(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "invalid JWT"})
	})

	session, err := c.Backend().Auth.GetSession(context.Background(), &models.Session{AccessToken: "revoked"})
	require.NoError(t, err)
	assert.Nil(t, session)

	session, err = c.Backend().Auth.GetSession(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestUploadAndPublicURL(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"Key": "magazines/1-0.5.pdf"})
	})
	store := c.Backend().Storage
	ctx := backend.WithAccessToken(context.Background(), "user-token")

	err := store.Upload(ctx, backend.BucketMagazines, "1-0.5.pdf", strings.NewReader("%PDF-1.7"), 8, "application/pdf")
	require.NoError(t, err)

	req := fp.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/storage/v1/object/magazines/1-0.5.pdf", req.Path)
	assert.Equal(t, "application/pdf", req.Type)
	assert.Equal(t, "Bearer user-token", req.Auth)
	assert.Equal(t, "%PDF-1.7", req.Body)

	assert.True(t, strings.HasSuffix(store.PublicURL(backend.BucketMagazines, "1-0.5.pdf"),
		"/storage/v1/object/public/magazines/1-0.5.pdf"))
}

func TestUploadFailureCarriesMessage(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"statusCode": "404", "error": "Not found", "message": "Bucket not found"})
	})

	err := c.Backend().Storage.Upload(context.Background(), "missing", "k.png", strings.NewReader("x"), 1, "image/png")
	require.Error(t, err)
	assert.Equal(t, "Bucket not found", err.Error())
}

func TestRemove(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})

	require.NoError(t, c.Backend().Storage.Remove(context.Background(), "title-images"))
	require.NoError(t, c.Backend().Storage.Remove(context.Background(), "title-images", "a.png", "b.png"))

	req := fp.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/storage/v1/object/title-images", req.Path)
	assert.JSONEq(t, `{"prefixes":["a.png","b.png"]}`, req.Body)
}

func TestSelectOrdersNewestFirst(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "2", "title": "Issue 2", "description": "Summer", "pdf": "u2", "created_at": "2024-06-01T10:00:00Z"},
			{"id": "1", "title": "Issue 1", "description": "Spring", "pdf": "u1", "created_at": "2024-03-01T10:00:00Z"},
		})
	})

	var rows []models.Magazine
	require.NoError(t, c.Backend().Tables.Select(context.Background(), backend.TableMagazines, backend.NewestFirst, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Issue 2", rows[0].Title)

	req := fp.last()
	assert.Equal(t, "/rest/v1/magazines", req.Path)
	assert.Equal(t, "*", req.Query["select"])
	assert.Equal(t, "created_at.desc", req.Query["order"])
	assert.Equal(t, "Bearer anon-key", req.Auth)
}

func TestSelectNumericIDs(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"title":"Issue 1","description":"Spring","pdf":"u1","created_at":"2024-03-01T10:00:00+00:00"}]`)
	})

	var rows []models.Magazine
	require.NoError(t, c.Backend().Tables.Select(context.Background(), backend.TableMagazines, backend.NewestFirst, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, models.ID("1"), rows[0].ID)
	assert.Equal(t, "Issue 1", rows[0].Title)
}

func TestSelectByID(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "eq.7" {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "7", "title": "Found", "sections": nil}})
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	})
	tables := c.Backend().Tables

	var a models.Article
	require.NoError(t, tables.SelectByID(context.Background(), backend.TableArticles, "id", "7", &a))
	assert.Equal(t, "Found", a.Title)

	err := tables.SelectByID(context.Background(), backend.TableArticles, "id", "8", &a)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestInsertUpdateDelete(t *testing.T) {
	fp, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	tables := c.Backend().Tables
	ctx := context.Background()

	require.NoError(t, tables.Insert(ctx, backend.TableMagazines, models.MagazineRow{Title: "Issue 1", Description: "Spring", PDF: "u"}))
	req := fp.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"title":"Issue 1","description":"Spring","pdf":"u"}`, req.Body)

	require.NoError(t, tables.Update(ctx, backend.TableArticles, "id", "42", map[string]string{"title": "New"}))
	req = fp.last()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "eq.42", req.Query["id"])

	require.NoError(t, tables.Delete(ctx, backend.TableArticles, "id", "42"))
	req = fp.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/rest/v1/articles", req.Path)
	assert.Equal(t, "eq.42", req.Query["id"])
}

func TestPersistenceErrorMessage(t *testing.T) {
	_, c := newFakeProject(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"code": "23505", "message": "duplicate key value violates unique constraint"})
	})

	err := c.Backend().Tables.Insert(context.Background(), backend.TableMagazines, models.MagazineRow{})
	require.Error(t, err)
	assert.Equal(t, "duplicate key value violates unique constraint", err.Error())
}
