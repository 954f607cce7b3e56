package httpserver

import (
	"crypto/subtle"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"hotel_pms/internal/adapters/observability"
)

const apiKeyHeader = "X-API-Key"

// routeFields maps chi URL params to request-log fields.
var routeFields = map[string]string{
	"hotelID": "hotel_id",
	"id":      "reservation_id",
	"groupID": "group_id",
	"typeID":  "room_type_id",
	"roomID":  "room_id",
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Metrics records every request under its route pattern, so
// /reservations/{id} is one series regardless of id.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.ObserveHTTP(routePattern(r), r.Method, status(ww), time.Since(start))
	})
}

// Logger emits one http_request event per request. Hotel, reservation,
// group, room type and room ids from the path are logged as their own
// fields; 5xx responses log at error level, 4xx at warn.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			code := status(ww)
			ev := l.Info()
			switch {
			case code >= http.StatusInternalServerError:
				ev = l.Error()
			case code >= http.StatusBadRequest:
				ev = l.Warn()
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				for i, k := range rc.URLParams.Keys {
					if f, ok := routeFields[k]; ok && i < len(rc.URLParams.Values) {
						ev = ev.Str(f, rc.URLParams.Values[i])
					}
				}
			}
			ev.Str("route", routePattern(r)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Int("status", code).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("remote", clientHost(r)).
				Str("ua", r.UserAgent()).
				Msg("http_request")
		})
	}
}

// RequireAPIKey rejects requests whose X-API-Key header does not match key.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	want := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(apiKeyHeader))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func status(ww chimw.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}

// clientHost strips the port from RemoteAddr; chimw.RealIP has already
// replaced it with the forwarded client address when one was sent.
func clientHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
