package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/shared/apperrors"
)

type memTokens struct {
	mu      sync.Mutex
	tokens  entity.Tokens
	cleared int
	saved   int
}

func (m *memTokens) Load() (entity.Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, nil
}

func (m *memTokens) Save(t entity.Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = t
	m.saved++
	return nil
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = entity.Tokens{}
	m.cleared++
	return nil
}

// fakeAPI serves the token endpoints and one protected route, accepting only
// the current access token.
type fakeAPI struct {
	mu             sync.Mutex
	validAccess    string
	validRefresh   string
	nextAccess     string
	refreshCalls   int32
	protectedCalls int32
	lastBody       string
	lastRequestID  string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.refreshCalls, 1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		defer f.mu.Unlock()
		if body["refresh"] != f.validRefresh || f.nextAccess == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
			return
		}
		f.validAccess = f.nextAccess
		_ = json.NewEncoder(w).Encode(map[string]string{"access": f.validAccess})
	})
	mux.HandleFunc("/api/admin/deals/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.protectedCalls, 1)
		f.mu.Lock()
		valid := r.Header.Get("Authorization") == "Bearer "+f.validAccess
		b, _ := io.ReadAll(r.Body)
		f.lastBody = string(b)
		f.lastRequestID = r.Header.Get("X-Request-ID")
		f.mu.Unlock()
		if !valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Given token not valid"}`))
			return
		}
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":9,"title":"New","plan":1,"original_price":"10","discount_percentage":"10"}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":1,"results":[{"id":1,"title":"Deal","plan":2,"original_price":"10.00","discount_percentage":"50.00"}]}`))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeAPI, tokens *memTokens) *Client {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client(), tokens)
}

func TestAuthenticatedRequestSendsBearer(t *testing.T) {
	f := &fakeAPI{validAccess: "a1"}
	tokens := &memTokens{tokens: entity.Tokens{AccessToken: "a1", RefreshToken: "r1"}}
	c := newTestClient(t, f, tokens)

	deals, err := c.ListDeals(context.Background())
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "5", deals[0].EffectivePrice().String())
	assert.Zero(t, atomic.LoadInt32(&f.refreshCalls))
	assert.NotEmpty(t, f.lastRequestID)
}

func TestRefreshOnceThenReplay(t *testing.T) {
	f := &fakeAPI{validAccess: "a2", validRefresh: "r1", nextAccess: "a2"}
	tokens := &memTokens{tokens: entity.Tokens{AccessToken: "stale", RefreshToken: "r1"}}
	c := newTestClient(t, f, tokens)

	deal, err := c.CreateDeal(context.Background(), entity.DealPayload{Title: "New", PlanID: 1})
	require.NoError(t, err)
	assert.Equal(t, 9, deal.ID)

	assert.EqualValues(t, 1, atomic.LoadInt32(&f.refreshCalls))
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.protectedCalls))
	assert.Contains(t, f.lastBody, `"title":"New"`, "replayed request keeps its body")
	// refresh response had no refresh token, the old one is kept
	assert.Equal(t, entity.Tokens{AccessToken: "a2", RefreshToken: "r1"}, tokens.tokens)
	assert.Zero(t, tokens.cleared)
}

func TestUnauthorizedAfterFailedRefreshClearsTokens(t *testing.T) {
	f := &fakeAPI{validAccess: "never", validRefresh: "other"}
	tokens := &memTokens{tokens: entity.Tokens{AccessToken: "stale", RefreshToken: "r1"}}
	c := newTestClient(t, f, tokens)

	_, err := c.ListDeals(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSessionExpired))
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, 1, tokens.cleared)
	assert.True(t, tokens.tokens.IsEmpty())
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.refreshCalls))
}

func TestStillUnauthorizedAfterRefreshClearsTokens(t *testing.T) {
	f := &fakeAPI{validAccess: "x", validRefresh: "r1", nextAccess: "a2"}
	tokens := &memTokens{tokens: entity.Tokens{AccessToken: "stale", RefreshToken: "r1"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/token/refresh/" {
			f.handler(t).ServeHTTP(w, r)
			return
		}
		atomic.AddInt32(&f.protectedCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, srv.Client(), tokens)

	_, err := c.ListSites(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	assert.EqualValues(t, 2, atomic.LoadInt32(&f.protectedCalls), "one replay only")
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.refreshCalls))
	assert.True(t, tokens.tokens.IsEmpty())
}

func TestNoTokensMeansNotLoggedIn(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f, &memTokens{})

	_, err := c.ListDeals(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
	assert.Zero(t, atomic.LoadInt32(&f.protectedCalls))
}

func TestConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	f := &fakeAPI{validAccess: "a2", validRefresh: "r1", nextAccess: "a2"}
	tokens := &memTokens{tokens: entity.Tokens{AccessToken: "stale", RefreshToken: "r1"}}
	c := newTestClient(t, f, tokens)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ListDeals(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.refreshCalls))
}

func TestConcurrentUnauthorizedShareOneRejectedRefresh(t *testing.T) {
	f := &fakeAPI{validAccess: "a2", validRefresh: "r-current"}
	tokens := &memTokens{tokens: entity.Tokens{AccessToken: "stale", RefreshToken: "r-revoked"}}
	c := newTestClient(t, f, tokens)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A request that starts after the store was cleared sees
			// ErrNotLoggedIn instead; both end the session.
			_, err := c.ListDeals(context.Background())
			assert.True(t, apperrors.IsUnauthorized(err), "got %v", err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&f.refreshCalls))
	assert.Equal(t, 1, tokens.cleared)
	assert.True(t, tokens.tokens.IsEmpty())
}

func TestServerErrorMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"title":["This field may not be blank."]}`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, srv.Client(), &memTokens{tokens: entity.Tokens{AccessToken: "a"}})

	_, err := c.CreateDeal(context.Background(), entity.DealPayload{})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeBadRequest, apperrors.TypeOf(err))
	assert.Equal(t, "title: This field may not be blank.", err.Error())
}

func TestNetworkErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil, &memTokens{})
	err := c.SubmitContact(context.Background(), entity.ContactMessage{Name: "a"})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeNetwork, apperrors.TypeOf(err))
}

func TestLoginAndContactArePublic(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			sawAuth = true
		}
		switch r.URL.Path {
		case "/api/token/":
			_, _ = w.Write([]byte(`{"access":"a","refresh":"r"}`))
		case "/api/contact/":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message":"thanks"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, srv.Client(), &memTokens{})

	tokens, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, entity.Tokens{AccessToken: "a", RefreshToken: "r"}, tokens)
	require.NoError(t, c.SubmitContact(context.Background(), entity.ContactMessage{Name: "a"}))
	assert.False(t, sawAuth)
}

func TestListResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"paginated", `{"count":3,"next":null,"results":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got listResponse[entity.Framework]
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Len(t, got, tt.want)
		})
	}
}

func TestAuditWireConversion(t *testing.T) {
	var w auditWire
	body := `{"id": 17, "url": "https://example.com", "status": "in_progress", "scans": [
		{"id": 1, "scan_type": "SSL", "status": "completed", "findings": [{"id": 5, "name": "Weak TLS", "severity": "HIGH"}]},
		{"category": "headers", "status": "queued"}
	]}`
	require.NoError(t, json.Unmarshal([]byte(body), &w))
	resp := w.toEntity()

	assert.Equal(t, "17", resp.AuditID)
	require.Len(t, resp.Scans, 2)
	assert.Equal(t, "ssl", resp.Scans[0].Category)
	assert.Equal(t, entity.ScanCompleted, resp.Scans[0].Status)
	assert.Equal(t, "Weak TLS", resp.Scans[0].Findings[0].Title)
	assert.Equal(t, entity.SeverityHigh, resp.Scans[0].Findings[0].Severity)
	assert.Equal(t, "headers-1", resp.Scans[1].ID)
	assert.Equal(t, entity.ScanPending, resp.Scans[1].Status)
}
