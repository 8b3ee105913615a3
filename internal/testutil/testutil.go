// Package testutil holds helpers shared by package tests.
package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/notekeeper/internal/api"
	"github.com/nhle/notekeeper/internal/cache"
	"github.com/nhle/notekeeper/internal/mockapi"
)

// NewTestCache creates an in-memory Cache with all migrations applied.
// It automatically closes the cache when the test completes.
func NewTestCache(t *testing.T) *cache.Cache {
	t.Helper()

	c, err := cache.Open(":memory:")
	if err != nil {
		t.Fatalf("creating test cache: %v", err)
	}

	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("closing test cache: %v", err)
		}
	})

	return c
}

// MockServer is a running mock backend and a client pointed at it.
type MockServer struct {
	Backend *mockapi.Backend
	Server  *httptest.Server
	Client  *api.Client
}

// NewMockServer starts the mock backend on a local port. It is shut down
// when the test completes.
func NewMockServer(t *testing.T, opts mockapi.Options) *MockServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := mockapi.NewBackend()
	srv := httptest.NewServer(mockapi.NewRouter(backend, opts))
	t.Cleanup(srv.Close)

	return &MockServer{
		Backend: backend,
		Server:  srv,
		Client: api.NewClient(api.Options{
			BaseURL: srv.URL,
			Token:   opts.Token,
			Timeout: 5 * time.Second,
		}),
	}
}
