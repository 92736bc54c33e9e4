// Package generator is the client of the external prompt-to-code service.
// The service is opaque: a prompt and a language go in, code comes out.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
)

// DefaultLanguage is used when the request names none
const DefaultLanguage = "typescript"

// maxResponse caps how much of the upstream body is read
const maxResponse = 1 << 20

// Options configures the client
type Options struct {
	URL     string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// Service calls the generator on behalf of signed-in viewers
type Service struct {
	url     string
	http    *http.Client
	limiter *keyedLimiter
	log     zerolog.Logger
}

// New creates a generator client
func New(opt Options, log zerolog.Logger) *Service {
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		url:     opt.URL,
		http:    &http.Client{Timeout: timeout},
		limiter: newKeyedLimiter(opt.RPS, opt.Burst),
		log:     log,
	}
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language"`
}

type generateResponse struct {
	Code  string `json:"code"`
	Error string `json:"error,omitempty"`
}

// Generate turns a prompt into code
func (s *Service) Generate(ctx context.Context, viewer models.Viewer, in models.GenerateInput) (string, error) {
	const op = "generator.generate"
	if !viewer.Present() {
		return "", errs.WithOp(errs.Unauthenticated("sign in to generate components"), op)
	}
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", errs.WithOp(errs.InvalidInput("prompt", "prompt is required"), op)
	}
	lang := strings.ToLower(strings.TrimSpace(in.Language))
	if lang == "" {
		lang = DefaultLanguage
	}
	if !s.limiter.allow(viewer.UserID) {
		return "", errs.WithOp(errs.RateLimited("too many generate requests, slow down"), op)
	}

	body, err := json.Marshal(generateRequest{Prompt: prompt, Language: lang})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", errs.WithOp(errs.Wrap(err, errs.KindUnknown, "build generator request"), op)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return "", errs.WithOp(errs.Unavailable(err, "generator unreachable"), op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return "", errs.WithOp(errs.Unavailable(err, "read generator response"), op)
	}
	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode < 300 {
		return "", errs.WithOp(errs.Unavailable(err, "decode generator response"), op)
	}
	if resp.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", errs.WithOp(errs.Unavailable(fmt.Errorf("status %d: %s", resp.StatusCode, msg), "generator failed"), op)
	}

	s.log.Debug().
		Str("user_id", viewer.UserID).
		Str("language", lang).
		Dur("elapsed", time.Since(start)).
		Int("code_bytes", len(out.Code)).
		Msg("code generated")
	return out.Code, nil
}
