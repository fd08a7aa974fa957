package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ariesctl/internal/admin"
	"ariesctl/internal/connections"
	"ariesctl/internal/service"
	serviceMocks "ariesctl/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// adminRecorder is an admin API that answers every connection lookup with an active record
// for the id it was asked about.
type adminRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (a *adminRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.paths = append(a.paths, r.URL.EscapedPath())
	a.mu.Unlock()

	id := strings.TrimPrefix(r.URL.Path, "/connections/")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"connection_id": id, "state": "active"})
}

func (a *adminRecorder) lastPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.paths) == 0 {
		return ""
	}
	return a.paths[len(a.paths)-1]
}

func TestConnectionRoutes_DecodeIDOnce(t *testing.T) {
	rec := &adminRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	conns := connections.NewController(admin.NewClient(srv.URL, srv.Client()))
	app := fiber.New()
	app.Get("/connections/:id", GetConnection(conns))
	app.Get("/connections/:id/active", ConnectionActive(conns))

	tests := []struct {
		name      string
		target    string
		wantID    string
		wantAdmin string
	}{
		{"space", "/connections/a%20b/active", "a b", "/connections/a%20b"},
		{"slash", "/connections/a%2Fb/active", "a/b", "/connections/a%2Fb"},
		{"plain", "/connections/abc123/active", "abc123", "/connections/abc123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.target, nil))
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body ConnectionActivity
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.wantID, body.ConnectionID)
			assert.True(t, body.Active)
			assert.Equal(t, tc.wantAdmin, rec.lastPath())
		})
	}

	t.Run("get connection", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/connections/a%20b", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var conn connections.Connection
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&conn))
		assert.Equal(t, "a b", conn.ConnectionID)
		assert.Equal(t, "/connections/a%20b", rec.lastPath())
	})
}

func TestTestProtocol_DecodesConnectionID(t *testing.T) {
	mockSvc := new(serviceMocks.MockTestRunService)
	mockSvc.On("Run", mock.Anything, "a b", mock.Anything).
		Return(&service.RunResult{Response: json.RawMessage(`{}`)}, nil).Once()

	app := fiber.New()
	app.Post("/connections/:id/test-protocol", TestProtocol(mockSvc))

	req := httptest.NewRequest(http.MethodPost, "/connections/a%20b/test-protocol", strings.NewReader(`{"example":{}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}
