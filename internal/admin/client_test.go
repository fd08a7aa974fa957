package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Post(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   []byte
		gotHeader http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"thread_id":"t-1", "ok": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", srv.Client(), WithAPIKey("secret"))
	res, err := c.Post(context.Background(), "/connections/abc/ping", map[string]any{"comment": "hi"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/connections/abc/ping", gotPath)
	assert.JSONEq(t, `{"comment":"hi"}`, string(gotBody))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "secret", gotHeader.Get(APIKeyHeader))
	// response is passed through byte for byte
	assert.Equal(t, `{"thread_id":"t-1", "ok": true}`, string(res))
}

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get(APIKeyHeader))
		w.Write([]byte(`{"state":"active"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	res, err := c.Get(context.Background(), "/connections/abc")

	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"active"}`, string(res))
	assert.Equal(t, srv.URL, c.BaseURL())
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such connection", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	res, err := c.Get(context.Background(), "/connections/missing")

	assert.Nil(t, res)
	se, ok := IsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, http.MethodGet, se.Method)
	assert.Equal(t, "/connections/missing", se.Path)
	assert.Contains(t, string(se.Body), "no such connection")
	assert.True(t, IsNotFound(err))
	assert.EqualError(t, err, "admin api GET /connections/missing: status 404")
}

func TestClient_TransportErrorIsNotMasked(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, http.DefaultClient)
	_, err := c.Post(context.Background(), "/connections/abc/test-attachmentprotocol", map[string]any{"example": 1})

	require.Error(t, err)
	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr))
	assert.Equal(t, "Post", urlErr.Op)
	_, isStatus := IsStatusError(err)
	assert.False(t, isStatus)
}

func TestClient_MarshalError(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", nil)
	_, err := c.Post(context.Background(), "/x", map[string]any{"bad": make(chan int)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal request body")
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, srv.Client())
	_, err := c.Get(ctx, "/status")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Metrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	c := NewClient(srv.URL, srv.Client(), WithMetrics(m))
	_, _ = c.Get(context.Background(), "/status")
	_, _ = c.Post(context.Background(), "/status", nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("POST", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice on the same registry must fail")
}
