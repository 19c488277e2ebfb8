package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

const maxResponseBytes = 10 << 20

type httpClient struct {
	*http.Client
	serverHost string
	userAgent  string
	logger     *zap.Logger
}

func newHTTPClient(c *http.Client, host string, s settings) *httpClient {
	return &httpClient{
		Client:     c,
		serverHost: strings.TrimSuffix(host, "/"),
		userAgent:  s.userAgent,
		logger:     s.logger,
	}
}

func do[Resp any](
	ctx context.Context,
	c *httpClient,
	method string,
	path string,
	payload any,
) (Resp, error) {
	var resp Resp
	requestURL := fmt.Sprintf("%s/%s", c.serverHost, strings.TrimPrefix(path, "/"))

	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return resp, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return resp, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	respHTTP, err := c.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return resp, transportError(ctx, err, c.serverHost)
	}
	defer func() {
		_ = respHTTP.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(respHTTP.Body, maxResponseBytes))
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", respHTTP.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)))
	if err != nil {
		return resp, apperrors.New(apperrors.TypeNetwork, err, "failed to read response: %v", err)
	}

	if respHTTP.StatusCode < 200 || respHTTP.StatusCode > 299 {
		return resp, apperrors.FromStatus(respHTTP.StatusCode, data)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

// transportError turns a failed http.Client.Do into the error callers should
// see. Errors raised by the auth transport are passed through unchanged.
func transportError(ctx context.Context, err error, host string) error {
	switch {
	case errors.Is(err, apperrors.ErrSessionExpired):
		return apperrors.ErrSessionExpired
	case errors.Is(err, apperrors.ErrNotLoggedIn):
		return apperrors.ErrNotLoggedIn
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return apperrors.New(apperrors.TypeNetwork, err, "cannot reach %s: %v", host, err)
}

// listResponse accepts both a bare JSON array and a paginated
// {"results": [...]} envelope.
type listResponse[T any] []T

func (l *listResponse[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	*l = envelope.Results
	return nil
}
