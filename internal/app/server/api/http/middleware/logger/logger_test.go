package logger

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type pingOutput struct {
	Body struct {
		Pong bool `json:"pong"`
	}
}

type collectionInput struct {
	Collection string `path:"collection"`
}

func TestLogger_Middleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mw := New(log, "ping").Middleware()

	_, api := humatest.New(t)
	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Middlewares: huma.Middlewares{mw},
	}, func(context.Context, *struct{}) (*pingOutput, error) {
		return &pingOutput{}, nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "list",
		Method:      http.MethodGet,
		Path:        "/collections/{collection}",
		Middlewares: huma.Middlewares{mw},
	}, func(context.Context, *collectionInput) (*pingOutput, error) {
		return &pingOutput{}, nil
	})
	huma.Register(api, huma.Operation{
		OperationID: "fail",
		Method:      http.MethodGet,
		Path:        "/fail",
		Middlewares: huma.Middlewares{mw},
	}, func(context.Context, *struct{}) (*pingOutput, error) {
		return nil, huma.Error500InternalServerError("boom")
	})

	tests := []struct {
		name string
		path string
		want []string
	}{
		{
			name: "quiet operation",
			path: "/ping",
			want: []string{`"level":"DEBUG"`, `"path":"/ping"`, `"operation":"ping"`, `"component":"http_logger"`},
		},
		{
			name: "collection route",
			path: "/collections/users",
			want: []string{`"level":"INFO"`, `"collection":"users"`, `"status":200`},
		},
		{
			name: "server error",
			path: "/fail",
			want: []string{`"level":"ERROR"`, `"status":500`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			api.Get(tt.path)

			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
