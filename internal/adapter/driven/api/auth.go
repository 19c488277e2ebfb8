package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Login exchanges credentials for a token pair. The caller persists it.
func (c *Client) Login(ctx context.Context, username, password string) (entity.Tokens, error) {
	pair, err := do[tokenPair](ctx, c.public, http.MethodPost, "/api/token/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return entity.Tokens{}, err
	}
	if pair.Access == "" {
		return entity.Tokens{}, apperrors.New(apperrors.TypeServer, nil, "login response did not contain an access token")
	}
	return entity.Tokens{AccessToken: pair.Access, RefreshToken: pair.Refresh}, nil
}

func refreshTokens(ctx context.Context, c *httpClient, refreshToken string) (entity.Tokens, error) {
	pair, err := do[tokenPair](ctx, c, http.MethodPost, "/api/token/refresh/", map[string]string{
		"refresh": refreshToken,
	})
	if err != nil {
		return entity.Tokens{}, err
	}
	if pair.Access == "" {
		return entity.Tokens{}, apperrors.New(apperrors.TypeUnauthorized, nil, "refresh response did not contain an access token")
	}
	if pair.Refresh == "" {
		pair.Refresh = refreshToken
	}
	return entity.Tokens{AccessToken: pair.Access, RefreshToken: pair.Refresh}, nil
}

// authTransport attaches the bearer token and performs at most one refresh
// and replay when the API answers 401.
type authTransport struct {
	base    http.RoundTripper
	tokens  repository.TokenRepository
	refresh func(ctx context.Context, refreshToken string) (entity.Tokens, error)
	logger  *zap.Logger
	mu      sync.Mutex
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tokens, err := t.tokens.Load()
	if err != nil {
		return nil, err
	}
	if tokens.IsEmpty() {
		return nil, apperrors.ErrNotLoggedIn
	}
	if tokens.AccessToken == "" {
		if tokens, err = t.refreshOnce(req.Context(), tokens); err != nil {
			return nil, err
		}
	}

	resp, err := t.send(req, tokens.AccessToken, false)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	discard(resp)

	fresh, err := t.refreshOnce(req.Context(), tokens)
	if err != nil {
		return nil, err
	}

	resp, err = t.send(req, fresh.AccessToken, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		discard(resp)
		t.logger.Debug("request still unauthorized after token refresh", zap.String("path", req.URL.Path))
		t.clear()
		return nil, apperrors.ErrSessionExpired
	}
	return resp, nil
}

func (t *authTransport) send(req *http.Request, access string, replay bool) (*http.Response, error) {
	r := req.Clone(req.Context())
	if replay && req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, fmt.Errorf("cannot replay %s %s: request body is not rewindable", req.Method, req.URL.Path)
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("cannot replay %s %s: %w", req.Method, req.URL.Path, err)
		}
		r.Body = body
	}
	r.Header.Set("Authorization", "Bearer "+access)
	return t.base.RoundTrip(r)
}

// refreshOnce swaps stale for a fresh token pair. When another request
// already refreshed while this one waited, the stored pair is reused; when
// it already failed and cleared the store, the session is over.
func (t *authTransport) refreshOnce(ctx context.Context, stale entity.Tokens) (entity.Tokens, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, err := t.tokens.Load()
	if err != nil {
		return entity.Tokens{}, err
	}
	if current.IsEmpty() {
		// Cleared by a refresh that another request already lost.
		return entity.Tokens{}, apperrors.ErrSessionExpired
	}
	if current.AccessToken != "" && current.AccessToken != stale.AccessToken {
		return current, nil
	}
	if current.RefreshToken == "" {
		t.clearLocked()
		return entity.Tokens{}, apperrors.ErrSessionExpired
	}

	fresh, err := t.refresh(ctx, current.RefreshToken)
	if err != nil {
		if ctx.Err() != nil || apperrors.TypeOf(err) == apperrors.TypeNetwork {
			return entity.Tokens{}, err
		}
		t.logger.Debug("token refresh rejected", zap.Error(err))
		t.clearLocked()
		return entity.Tokens{}, apperrors.ErrSessionExpired
	}

	if err := t.tokens.Save(fresh); err != nil {
		return entity.Tokens{}, err
	}
	return fresh, nil
}

func (t *authTransport) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

func (t *authTransport) clearLocked() {
	if err := t.tokens.Clear(); err != nil {
		t.logger.Warn("failed to clear stored tokens", zap.Error(err))
	}
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
}
