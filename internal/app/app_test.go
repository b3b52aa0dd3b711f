package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buytown/admin-console/config"
	"github.com/buytown/admin-console/internal/app"
	"github.com/buytown/admin-console/internal/storage"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.API.ClientID = "id"
	cfg.API.ClientSecret = "secret"
	cfg.Storage.Driver = "memory"
	return cfg
}

func TestNew_RestoresWithServiceToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/generate-token", r.URL.Path)
		w.Write([]byte(`{"apiToken":"svc"}`))
	}))
	defer srv.Close()

	a, err := app.New(testConfig(srv.URL), nil)
	require.NoError(t, err)
	defer a.Close()

	a.Restore(context.Background(), 5*time.Second)

	state := a.Sessions.State()
	assert.False(t, state.Loading)
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, "Bearer svc", a.Client.Credentials().Authorization())
	assert.Empty(t, a.HealthDependencies())

	stored, ok, err := a.Store.Get(context.Background(), storage.KeyAPIToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "svc", stored)
}

func TestNew_RedisDriverAddsHealthProbe(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Storage.Driver = "redis"
	cfg.Redis.Addr = "127.0.0.1:1"

	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	deps := a.HealthDependencies()
	require.Len(t, deps, 1)
	assert.Equal(t, "redis", deps[0].Name)
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Storage.Driver = "etcd"

	_, err := app.New(cfg, nil)
	assert.Error(t, err)
}
