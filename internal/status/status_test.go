package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardOperational(t *testing.T) {
	b := NewBoard()
	b.Register("sessions", func(context.Context) (string, error) { return "3 active", nil })
	b.Register("catalog", func(context.Context) (string, error) { return "6 presets", nil })

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var s Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, StateOperational, s.State)
	require.Len(t, s.Components, 2)
	assert.Equal(t, "catalog", s.Components[0].Name)
	assert.Equal(t, "3 active", s.Components[1].Detail)
}

func TestBoardDegraded(t *testing.T) {
	b := NewBoard()
	b.Register("templates", func(context.Context) (string, error) { return "", errors.New("base template missing") })

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "base template missing")
}
