package forge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/modules/puppetlabs-stdlib", r.URL.Path)
		assert.Equal(t, excludedFields, r.URL.Query().Get("exclude_fields"))
		w.Write([]byte(`{"current_release":{"version":"8.5.0"},"deprecated_at":null}`))
	}))
	defer srv.Close()

	meta, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "puppetlabs-stdlib")
	require.NoError(t, err)
	assert.Equal(t, "8.5.0", meta.Version.String())
	assert.False(t, meta.Deprecated)
}

func TestClientFetch_CanonicalizesName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/modules/puppetlabs-stdlib", r.URL.Path)
		w.Write([]byte(`{"current_release":{"version":"8.5.0"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "puppetlabs/stdlib")
	require.NoError(t, err)
}

func TestClientFetch_Deprecated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"current_release":{"version":"1.0.0"},"deprecated_at":"2019-04-12 08:18:47 -0700"}`))
	}))
	defer srv.Close()

	meta, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "puppetlabs-dsc")
	require.NoError(t, err)
	assert.True(t, meta.Deprecated)
}

func TestClientFetch_RedirectIsNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Location", "/v3/modules/renamed-module")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "old-module")
	require.ErrorIs(t, err, ErrRedirect)
	assert.Contains(t, err.Error(), "renamed-module")
}

func TestClientFetch_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "no-such-module")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClientFetch_InvalidVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"current_release":{"version":"latest"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "broken-module")
	require.ErrorIs(t, err, ErrInvalidVersion)
}
