package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/document"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(c, nil, logger)

	n := 0
	return New(runner, mosaic.DefaultConfig(),
		WithLogger(logger),
		WithDefaultWidth(600),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("doc-%d", n)
		}))
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const createBody = `{
  "title": "trip",
  "width": 900,
  "config": {"max_row_height": 300},
  "items": [
    {"id": "a", "aspect_ratio": 1.5, "src": "a.jpg"},
    {"id": "b", "width": 800, "height": 600},
    {"id": "c", "aspect_ratio": 0.75}
  ]
}`

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCreateAndGet(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/layouts", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "/v1/layouts/doc-1", rec.Header().Get("Location"))

	var created document.Layout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "doc-1", created.ID)
	require.Equal(t, "trip", created.Title)
	require.Equal(t, 900.0, created.Width)
	require.Len(t, created.Tiles, 3)
	require.Equal(t, 300.0, created.Config.MaxRowHeight)
	// Fields the request left out keep the server defaults.
	require.Equal(t, mosaic.PolicySkip, created.Config.OverflowPolicy)

	rec = do(t, s, http.MethodGet, "/v1/layouts/doc-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched document.Layout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, created.Tiles, fetched.Tiles)
}

func TestGetRendered(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/v1/layouts", createBody).Code)

	tests := []struct {
		path   string
		mime   string
		prefix []byte
	}{
		{"/v1/layouts/doc-1.svg", "image/svg+xml", []byte("<svg")},
		{"/v1/layouts/doc-1.png", "image/png", []byte("\x89PNG")},
		{"/v1/layouts/doc-1.json", "application/json", []byte("{")},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.mime, rec.Header().Get("Content-Type"))
			require.True(t, bytes.HasPrefix(rec.Body.Bytes(), tt.prefix))
		})
	}

	rec := do(t, s, http.MethodGet, "/v1/layouts/doc-1.gif", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"INVALID_FORMAT"`)
}

func TestCreateErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantField string
	}{
		{"invalid height", `{"config":{"max_row_height":-1},"items":[{"id":"a"}]}`, "INVALID_CONFIG", "max_row_height"},
		{"explicit zero height", `{"config":{"max_row_height":0},"items":[{"id":"a"}]}`, "INVALID_CONFIG", "max_row_height"},
		{"explicit zero default ratio", `{"config":{"default_aspect_ratio":0},"items":[{"id":"a"}]}`, "INVALID_CONFIG", "default_aspect_ratio"},
		{"invalid policy", `{"config":{"overflow_policy":"stretch"},"items":[{"id":"a"}]}`, "INVALID_CONFIG", "overflow_policy"},
		{"invalid width", `{"width":-5,"items":[{"id":"a"}]}`, "INVALID_INPUT", "width"},
		{"no items", `{"items":[]}`, "INVALID_INPUT", "items"},
		{"unknown field", `{"colour":"red","items":[{"id":"a"}]}`, "INVALID_INPUT", ""},
		{"malformed", `{"items":`, "INVALID_INPUT", ""},
		{"duplicate ids", `{"items":[{"id":"a"},{"id":"a"}]}`, "INVALID_MANIFEST", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/layouts", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tt.wantCode, string(resp.Code))
			require.Equal(t, tt.wantField, resp.Field)
			require.NotEmpty(t, resp.Message)
		})
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/v1/layouts/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestRefit(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, "/v1/layouts", createBody).Code)

	rec := do(t, s, http.MethodPost, "/v1/layouts/doc-1/refit", `{"width":450}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refit document.Layout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refit))
	require.Equal(t, "doc-1", refit.ID)
	require.Equal(t, 450.0, refit.Width)
	require.Equal(t, 300.0, refit.Config.MaxRowHeight)
	require.Len(t, refit.Items, 3)

	// The stored document was replaced.
	rec = do(t, s, http.MethodGet, "/v1/layouts/doc-1", "")
	require.Contains(t, rec.Body.String(), `"width":450`)

	rec = do(t, s, http.MethodPost, "/v1/layouts/doc-1/refit", `{"width":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/layouts/missing/refit", `{"width":100}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteErrorInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, io.ErrUnexpectedEOF)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
	require.NotContains(t, rec.Body.String(), "unexpected EOF")
}
