package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentWorker, Output: &buf})

	l.Info("hello", FieldUserID, 7)
	l.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, ComponentWorker, rec[FieldComponent])
	assert.Equal(t, float64(7), rec[FieldUserID])
	assert.Equal(t, ComponentWorker, l.Component())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithUserID(0).
		WithError(errors.New("boom")).
		WithHTTPRequest("GET", "/api/health", "", "")

	assert.Equal(t, "boom", f[FieldError])
	assert.NotContains(t, f, FieldUserID)
	assert.NotContains(t, f, FieldQuery)
	assert.Len(t, f.ToSlice(), len(f)*2)
}

func TestContextLogger(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())

	base := New(Config{Output: &bytes.Buffer{}, Component: ComponentApp})
	var seen string
	h := Middleware(base)(ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context()).Component()
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, ComponentHTTP, seen)
}
