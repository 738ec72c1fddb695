package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunasync/internal/app/client/config"
	"lunasync/internal/domain/record"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) *httpTransport {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ServerAddress: strings.TrimPrefix(srv.URL, "http://"),
		HTTPTimeout:   2 * time.Second,
	}
	tr, err := NewHTTPTransport(cfg, discardLogger())
	require.NoError(t, err)

	return tr
}

func TestHTTPTransport_PushCreate(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/collections/users/documents", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body createDocumentRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "local_1", body.ClientRef)
		assert.Equal(t, "device_1", body.DeviceID)
		assert.Equal(t, "Alice", body.Fields["name"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"9b2f","createdAt":10,"updatedAt":11}`))
	})

	got, err := tr.Push(context.Background(), record.Users, PushDoc{
		ClientRef: "local_1",
		DeviceID:  "device_1",
		Fields:    map[string]any{"name": "Alice"},
	})

	require.NoError(t, err)
	assert.Equal(t, RemoteRecord{ID: "9b2f", CreatedAt: 10, UpdatedAt: 11}, got)
}

func TestHTTPTransport_PushUpsert(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/collections/appointments/documents/42", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "clientRef")

		_, _ = w.Write([]byte(`{"id":"42","createdAt":1,"updatedAt":300}`))
	})

	got, err := tr.Push(context.Background(), record.Appointments, PushDoc{
		ID:     "42",
		Fields: map[string]any{"title": "Coupe"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(300), got.UpdatedAt)
}

func TestHTTPTransport_Pull(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/collections/users/documents", r.URL.Path)
		assert.Equal(t, "250", r.URL.Query().Get("since"))

		_, _ = w.Write([]byte(`{
			"records": [
				{"id":"b","fields":{"name":"B"},"deviceId":"device_2","createdAt":5,"updatedAt":400},
				{"id":"a","fields":{"name":"A"},"createdAt":1,"updatedAt":300}
			],
			"serverTime": 500
		}`))
	})

	page, err := tr.Pull(context.Background(), record.Users, 250)

	require.NoError(t, err)
	assert.Equal(t, int64(500), page.ServerTime)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "b", page.Records[0].ID)
	assert.Equal(t, "device_2", page.Records[0].DeviceID)
	assert.Equal(t, map[string]any{"name": "A"}, page.Records[1].Fields)
}

func TestHTTPTransport_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		call       func(tr *httpTransport) error
		wantOp     string
		wantStatus int
		wantMsg    string
		temporary  bool
	}{
		{
			name:   "validation problem",
			status: http.StatusUnprocessableEntity,
			body:   `{"title":"Unprocessable Entity","status":422,"detail":"validation failed"}`,
			call: func(tr *httpTransport) error {
				_, err := tr.Push(context.Background(), record.Users, PushDoc{ClientRef: "local_1"})
				return err
			},
			wantOp:     OpCreate,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "validation failed",
		},
		{
			name:   "unavailable",
			status: http.StatusServiceUnavailable,
			body:   `oops`,
			call: func(tr *httpTransport) error {
				_, err := tr.Pull(context.Background(), record.Appointments, 0)
				return err
			},
			wantOp:     OpPull,
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "статус 503",
			temporary:  true,
		},
		{
			name:   "not found on upsert",
			status: http.StatusNotFound,
			body:   `{"title":"Not Found","status":404}`,
			call: func(tr *httpTransport) error {
				_, err := tr.Push(context.Background(), record.Users, PushDoc{ID: "x"})
				return err
			},
			wantOp:     OpUpsert,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTransport(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := tt.call(tr)

			var remoteErr *RemoteError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tt.wantOp, remoteErr.Op)
			assert.Equal(t, tt.wantStatus, remoteErr.Status)
			assert.Contains(t, remoteErr.Error(), tt.wantMsg)
			assert.Equal(t, tt.temporary, remoteErr.Temporary())
		})
	}
}

func TestHTTPTransport_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	tr, err := NewHTTPTransport(&config.Config{ServerAddress: addr, HTTPTimeout: time.Second}, discardLogger())
	require.NoError(t, err)

	err = tr.HealthCheck(context.Background())

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, OpHealth, remoteErr.Op)
	assert.Zero(t, remoteErr.Status)
	assert.True(t, remoteErr.Temporary())
}

func TestHTTPTransport_HealthCheck(t *testing.T) {
	tr := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	})

	assert.NoError(t, tr.HealthCheck(context.Background()))
}
