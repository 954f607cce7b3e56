package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_TagsRouteIDs(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Logger(zerolog.New(&buf)))
	m.Post("/v1/hotels/{hotelID}/reservations/{id}/check-in", func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, http.StatusConflict, "Invalid State", "already checked in")
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/hotels/h1/reservations/r42/check-in", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	m.ServeHTTP(httptest.NewRecorder(), req)

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "http_request", ev["message"])
	assert.Equal(t, "warn", ev["level"])
	assert.Equal(t, "h1", ev["hotel_id"])
	assert.Equal(t, "r42", ev["reservation_id"])
	assert.Equal(t, "/v1/hotels/{hotelID}/reservations/{id}/check-in", ev["route"])
	assert.EqualValues(t, http.StatusConflict, ev["status"])
	assert.Equal(t, "10.0.0.7", ev["remote"])
	assert.NotContains(t, ev, "group_id")
}

func TestLogger_ServerErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Logger(zerolog.New(&buf)))
	m.Get("/v1/hotels/{hotelID}/groups/{groupID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/hotels/h1/groups/g7", nil))

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "error", ev["level"])
	assert.Equal(t, "g7", ev["group_id"])
}

func TestRequireAPIKey(t *testing.T) {
	h := RequireAPIKey("k1")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(apiKeyHeader, "k1")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
