// Package api is the HTTP client for the Opticini REST API. Authenticated
// calls carry the stored bearer token and refresh it once on a 401.
package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
)

// Client talks to the Opticini API.
type Client struct {
	public *httpClient
	authed *httpClient
	tokens repository.TokenRepository
}

var _ repository.APIRepository = (*Client)(nil)

type settings struct {
	logger    *zap.Logger
	userAgent string
}

// Opt is a function that configures a Client.
type Opt func(*settings)

// WithLogger logs every request at debug level.
func WithLogger(l *zap.Logger) Opt {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Opt {
	return func(s *settings) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// NewClient creates a client for baseURL. c is an optional http.Client whose
// settings (timeout, transport) are copied, never mutated.
func NewClient(baseURL string, c *http.Client, tokens repository.TokenRepository, opts ...Opt) *Client {
	s := settings{logger: zap.NewNop(), userAgent: "opticini-cli"}
	for _, opt := range opts {
		opt(&s)
	}

	if c == nil {
		c = http.DefaultClient
	}
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	publicHTTP := *c
	publicHTTP.Transport = base
	public := newHTTPClient(&publicHTTP, baseURL, s)

	authedHTTP := *c
	authedHTTP.Transport = &authTransport{
		base:   base,
		tokens: tokens,
		logger: s.logger,
		refresh: func(ctx context.Context, refreshToken string) (entity.Tokens, error) {
			return refreshTokens(ctx, public, refreshToken)
		},
	}

	return &Client{
		public: public,
		authed: newHTTPClient(&authedHTTP, baseURL, s),
		tokens: tokens,
	}
}
