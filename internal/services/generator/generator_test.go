package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
)

func upstream(t *testing.T, status int, reply any) (*httptest.Server, *generateRequest) {
	t.Helper()
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestGenerate(t *testing.T) {
	srv, got := upstream(t, http.StatusOK, generateResponse{Code: "<button/>"})
	svc := New(Options{URL: srv.URL, RPS: 10, Burst: 10}, zerolog.Nop())

	code, err := svc.Generate(context.Background(), models.ViewerOf("u1"), models.GenerateInput{Prompt: " a button "})
	require.NoError(t, err)
	assert.Equal(t, "<button/>", code)
	assert.Equal(t, "a button", got.Prompt)
	assert.Equal(t, DefaultLanguage, got.Language)
}

func TestGenerateRejectsBeforeCallingUpstream(t *testing.T) {
	svc := New(Options{URL: "http://127.0.0.1:0"}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Generate(ctx, models.Anonymous, models.GenerateInput{Prompt: "x"})
	assert.True(t, errs.Is(err, errs.KindUnauthenticated))

	_, err = svc.Generate(ctx, models.ViewerOf("u1"), models.GenerateInput{Prompt: "   "})
	e, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindInvalidInput, e.Kind())
	assert.Equal(t, "prompt", e.Field())
}

func TestGenerateUpstreamFailure(t *testing.T) {
	srv, _ := upstream(t, http.StatusBadGateway, generateResponse{Error: "model overloaded"})
	svc := New(Options{URL: srv.URL}, zerolog.Nop())

	_, err := svc.Generate(context.Background(), models.ViewerOf("u1"), models.GenerateInput{Prompt: "x", Language: "html"})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindStoreUnavailable))
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	svc := New(Options{URL: srv.URL, Timeout: 20 * time.Millisecond}, zerolog.Nop())

	_, err := svc.Generate(context.Background(), models.ViewerOf("u1"), models.GenerateInput{Prompt: "x"})
	assert.True(t, errs.Is(err, errs.KindStoreUnavailable))
}

func TestGenerateRateLimitedPerViewer(t *testing.T) {
	srv, _ := upstream(t, http.StatusOK, generateResponse{Code: "ok"})
	svc := New(Options{URL: srv.URL, RPS: 0.001, Burst: 1}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Generate(ctx, models.ViewerOf("u1"), models.GenerateInput{Prompt: "x"})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, models.ViewerOf("u1"), models.GenerateInput{Prompt: "x"})
	assert.True(t, errs.Is(err, errs.KindRateLimited))

	_, err = svc.Generate(ctx, models.ViewerOf("u2"), models.GenerateInput{Prompt: "x"})
	assert.NoError(t, err)
}
