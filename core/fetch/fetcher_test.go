package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/stretchr/testify/require"
)

func TestFetchClassifiesStatus(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html><body>ok</body></html>"))
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	f := New(Options{UserAgent: "test-agent"})
	ctx := context.Background()

	res := f.Fetch(ctx, server.URL+"/ok")
	require.Equal(t, core.FetchSuccess, res.Status)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.HTML(), "ok")
	require.Equal(t, "test-agent", gotUA)

	res = f.Fetch(ctx, server.URL+"/gone")
	require.Equal(t, core.FetchNotFound, res.Status)
	require.Empty(t, res.Body)

	res = f.Fetch(ctx, server.URL+"/forbidden")
	require.Equal(t, core.FetchNotFound, res.Status)

	res = f.Fetch(ctx, server.URL+"/boom")
	require.Equal(t, core.FetchTransient, res.Status)
	require.Error(t, res.Err)
}

func TestFetchNetworkFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	res := New(Options{}).Fetch(context.Background(), url)
	require.Equal(t, core.FetchTransient, res.Status)
	require.Error(t, res.Err)
}

func TestFetchTimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	res := New(Options{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), server.URL)
	require.Equal(t, core.FetchTransient, res.Status)
}

func TestNewFillsDefaults(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	f := New(Options{})
	require.Equal(t, DefaultTimeout, f.client.GetClient().Timeout)

	res := f.Fetch(context.Background(), server.URL)
	require.Equal(t, core.FetchSuccess, res.Status)
	require.Equal(t, DefaultUserAgent, gotUA)
}
