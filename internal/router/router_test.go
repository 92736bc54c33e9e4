package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/component-feed/backend/internal/app"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/repositories"
	"github.com/anonto42/component-feed/backend/internal/store"
	"github.com/anonto42/component-feed/backend/internal/store/storetest"
	"github.com/anonto42/component-feed/backend/pkg/config"
)

// tokens maps bearer tokens straight to user ids
type tokens map[string]string

func (t tokens) Verify(_ context.Context, token string) (string, error) {
	if uid, ok := t[token]; ok {
		return uid, nil
	}
	return "", errors.New("unknown token")
}

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, _ models.Viewer, in models.GenerateInput) (string, error) {
	return "// " + in.Prompt, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

type server struct {
	e   *echo.Echo
	spy *storetest.Spy
}

func newServer(t *testing.T, gen bool) *server {
	t.Helper()
	spy := storetest.NewSpy(store.NewMemory(repositories.Tables()...))
	svc := app.NewServices(store.WithTimeout(spy, 0), &config.Config{}, zerolog.Nop())

	d := Deps{
		Composer:  svc.Feed,
		Ledger:    svc.Ledger,
		Publisher: svc.Publish,
		Profiles:  svc.Profiles,
		Verifier:  tokens{"tok-alice": "alice", "tok-bob": "bob"},
		Log:       zerolog.Nop(),
	}
	if gen {
		d.Generator = echoGenerator{}
	}
	e := echo.New()
	SetupRoutes(e, d)
	return &server{e: e, spy: spy}
}

func (s *server) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (s *server) publish(t *testing.T, token, title string) models.Item {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/components", token,
		`{"title":"`+title+`","body":"<button/>","tags":["css"]}`)
	require.Equal(t, http.StatusCreated, code)
	var item models.Item
	require.NoError(t, json.Unmarshal(env.Data, &item))
	return item
}

func TestHealth(t *testing.T) {
	s := newServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestToggleLikeOverHTTP(t *testing.T) {
	s := newServer(t, false)
	item := s.publish(t, "tok-alice", "Glass card")

	code, env := s.do(t, http.MethodPost, "/api/v1/components/"+item.ID+"/like", "tok-bob", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"liked":true,"new_count":1}`, string(env.Data))

	code, env = s.do(t, http.MethodPost, "/api/v1/components/"+item.ID+"/like", "tok-bob", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"liked":false,"new_count":0}`, string(env.Data))

	code, env = s.do(t, http.MethodPost, "/api/v1/components/"+item.ID+"/save", "tok-bob", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"saved":true,"new_count":1}`, string(env.Data))
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t, false)
	item := s.publish(t, "tok-alice", "Card")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
		code   string
		field  string
	}{
		{"anonymous like", http.MethodPost, "/api/v1/components/" + item.ID + "/like", "", "", http.StatusUnauthorized, "unauthenticated", ""},
		{"bad token", http.MethodGet, "/api/v1/feed", "nope", "", http.StatusUnauthorized, "unauthenticated", ""},
		{"missing item", http.MethodPost, "/api/v1/components/missing/save", "tok-bob", "", http.StatusNotFound, "not_found", ""},
		{"delete by stranger", http.MethodDelete, "/api/v1/components/" + item.ID, "tok-bob", "", http.StatusForbidden, "forbidden", ""},
		{"blank title", http.MethodPost, "/api/v1/components", "tok-alice", `{"title":" ","body":"x"}`, http.StatusBadRequest, "invalid_input", "title"},
		{"broken json", http.MethodPost, "/api/v1/components", "tok-alice", `{"title":`, http.StatusBadRequest, "invalid_input", "body"},
		{"saved needs user", http.MethodGet, "/api/v1/feed?filter=saved", "", "", http.StatusUnauthorized, "unauthenticated", ""},
		{"bad sort", http.MethodGet, "/api/v1/feed?sort=random", "", "", http.StatusBadRequest, "invalid_input", "sort"},
		{"own profile anonymous", http.MethodGet, "/api/v1/profile", "", "", http.StatusUnauthorized, "unauthenticated", ""},
		{"generator off", http.MethodPost, "/api/v1/generate", "tok-alice", `{"prompt":"x"}`, http.StatusNotFound, "not_found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, tt.field, env.Error.Field)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestStoreFailures(t *testing.T) {
	s := newServer(t, false)
	item := s.publish(t, "tok-alice", "Card")

	t.Run("counter write fails after fact", func(t *testing.T) {
		s.spy.FailWhen(func(c storetest.Call) error {
			if c.Op == "update" && c.Table == models.TableItems {
				return errors.New("connection reset")
			}
			return nil
		})
		defer s.spy.FailWhen(nil)

		code, env := s.do(t, http.MethodPost, "/api/v1/components/"+item.ID+"/like", "tok-bob", "")
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "partial_apply", env.Error.Code)
		assert.NotContains(t, env.Error.Message, "connection reset")
	})

	t.Run("store down", func(t *testing.T) {
		s.spy.FailWhen(func(storetest.Call) error { return errors.New("dial tcp: refused") })
		defer s.spy.FailWhen(nil)

		code, env := s.do(t, http.MethodGet, "/api/v1/feed", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "store_unavailable", env.Error.Code)
		assert.NotContains(t, env.Error.Message, "refused")
	})
}

func TestFeedOverHTTP(t *testing.T) {
	s := newServer(t, false)
	a := s.publish(t, "tok-alice", "Alpha")
	b := s.publish(t, "tok-alice", "Beta")
	c := s.publish(t, "tok-bob", "Gamma")

	for _, id := range []string{a.ID, c.ID} {
		code, _ := s.do(t, http.MethodPost, "/api/v1/components/"+id+"/like", "tok-bob", "")
		require.Equal(t, http.StatusOK, code)
	}
	code, _ := s.do(t, http.MethodPost, "/api/v1/components/"+a.ID+"/like", "tok-alice", "")
	require.Equal(t, http.StatusOK, code)

	type feedData struct {
		Components []models.AnnotatedItem `json:"components"`
	}
	ids := func(env envelope) []string {
		var d feedData
		require.NoError(t, json.Unmarshal(env.Data, &d))
		out := make([]string, len(d.Components))
		for i, it := range d.Components {
			out[i] = it.ID
		}
		return out
	}

	code, env := s.do(t, http.MethodGet, "/api/v1/feed", "tok-bob", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(env))
	assert.Equal(t, float64(3), env.Meta["totalItems"])

	var d feedData
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.True(t, d.Components[0].Liked)
	assert.False(t, d.Components[1].Liked)
	assert.Equal(t, models.AnonymousName, d.Components[0].Author.DisplayName)

	code, env = s.do(t, http.MethodGet, "/api/v1/feed?sort=most_liked", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, ids(env))
	assert.Equal(t, "most_liked", env.Meta["sort"])

	code, env = s.do(t, http.MethodGet, "/api/v1/feed?filter=owned&user_id=alice&limit=1&page=2", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{a.ID}, ids(env))
	assert.Equal(t, float64(2), env.Meta["totalPages"])
	assert.Equal(t, false, env.Meta["hasNextPage"])

	code, env = s.do(t, http.MethodGet, "/api/v1/feed?q=GAMMA", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{c.ID}, ids(env))
}

func TestEngagementLookup(t *testing.T) {
	s := newServer(t, false)
	a := s.publish(t, "tok-alice", "Alpha")
	code, _ := s.do(t, http.MethodPost, "/api/v1/components/"+a.ID+"/save", "tok-bob", "")
	require.Equal(t, http.StatusOK, code)

	code, env := s.do(t, http.MethodGet, "/api/v1/engagement?ids="+a.ID+",other", "tok-bob", "")
	require.Equal(t, http.StatusOK, code)
	var got map[string]models.Engagement
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, models.Engagement{Saved: true}, got[a.ID])
	assert.Equal(t, models.Engagement{}, got["other"])
}

func TestDeleteAndProfile(t *testing.T) {
	s := newServer(t, false)
	a := s.publish(t, "tok-alice", "Alpha")

	code, env := s.do(t, http.MethodPut, "/api/v1/profile", "tok-alice", `{"display_name":"Alice"}`)
	require.Equal(t, http.StatusOK, code, env.Error.Message)

	code, env = s.do(t, http.MethodGet, "/api/v1/profiles/alice", "", "")
	require.Equal(t, http.StatusOK, code)
	var p models.Profile
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Alice", p.DisplayName)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/components/"+a.ID, "tok-alice", "")
	assert.Equal(t, http.StatusNoContent, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/components/"+a.ID, "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestGeneratorRoute(t *testing.T) {
	s := newServer(t, true)
	code, env := s.do(t, http.MethodPost, "/api/v1/generate", "tok-alice", `{"prompt":"a red button"}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"code":"// a red button"}`, string(env.Data))
}
