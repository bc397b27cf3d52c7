package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-service/internal/auth"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/mail"
	"storefront-service/internal/session"
	"storefront-service/internal/store/storetest"
)

const testJWTSecret = "test-secret"

// MockSender is a mock implementation of mail.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// testEnv bundles the mocks behind a test server.
type testEnv struct {
	server     *httptest.Server
	client     *http.Client
	categories *storetest.MockCategoryStorer
	brands     *storetest.MockBrandStorer
	products   *storetest.MockProductStorer
	mailer     *MockSender
	tokens     *auth.TokenIssuer
}

// Helper for setting up tests with a chi router and handler
func setupTestChiServer(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		categories: new(storetest.MockCategoryStorer),
		brands:     new(storetest.MockBrandStorer),
		products:   new(storetest.MockProductStorer),
		mailer:     new(MockSender),
		tokens:     auth.NewTokenIssuer(testJWTSecret, "storefront-service", time.Hour),
	}

	handler := NewHTTPHandler(Deps{
		Catalog:  catalog.NewService(env.categories, env.brands, env.products, catalog.DefaultLimits()),
		Sessions: session.NewManager(session.NewMemoryStore(), session.Options{}, zap.NewNop()),
		Checkout: checkout.NewDispatcher(env.mailer, checkout.Config{}),
		Tokens:   env.tokens,
		Logger:   zap.NewNop(),
	})
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	env.server = httptest.NewServer(router)
	t.Cleanup(env.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	env.client = &http.Client{Jar: jar}
	return env
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.tokens.Issue("admin-1", "alice")
	require.NoError(t, err)
	return token
}

// do sends a request with an optional JSON body and bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		r = bytes.NewBufferString(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

// Helper function to get a pointer (useful for optional fields in domain structs)
func PtrTo[T any](v T) *T {
	return &v
}
