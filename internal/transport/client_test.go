package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdatadog/civicmap/pkg/constants"
	"github.com/civicdatadog/civicmap/pkg/errors"
)

func TestGetBodyAppliesSessionState(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte("license_number,provider_name\n"))
	}))
	defer server.Close()

	client := New(
		WithHeaders(map[string]string{"Accept": "text/csv"}),
		WithCookies(map[string]string{"ASP.NET_SessionId": "abc123"}),
	)

	body, err := client.GetBody(context.Background(), "dhs", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "license_number,provider_name\n", body)
	assert.Equal(t, constants.DefaultUserAgent, got.Header.Get("User-Agent"))
	assert.Equal(t, "text/csv", got.Header.Get("Accept"))

	cookie, err := got.Cookie("ASP.NET_SessionId")
	require.NoError(t, err)
	assert.Equal(t, "abc123", cookie.Value)
}

func TestQueryAuth(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(WithAuth(QueryAuth{Param: "key", Key: "secret"}))
	_, err := client.GetBody(context.Background(), "places", server.URL+"?query=test")
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
}

func TestHeaderAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	HeaderAuth{Header: "Authorization", Scheme: "Bearer", Key: "tok"}.Apply(req)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	empty := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	HeaderAuth{Header: "Authorization", Key: ""}.Apply(empty)
	assert.Empty(t, empty.Header.Get("Authorization"))
}

func TestPostForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "csvdownload", r.PostForm.Get("__EVENTTARGET"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := New()
	body, err := client.PostForm(context.Background(), "dhs", server.URL, url.Values{
		"__EVENTTARGET": {"csvdownload"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}

func TestNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New()
	_, err := client.GetBody(context.Background(), "dhs", server.URL)
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))
}

func TestRequestReplaysMethodAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte("csv"))
	}))
	defer server.Close()

	client := New()
	body, err := client.Request(context.Background(), "dhs", http.MethodPost, server.URL, "a=1&b=2")
	require.NoError(t, err)
	assert.Equal(t, "csv", body)
}
