package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
)

// Handlers exposes the reservation engine over JSON.
type Handlers struct {
	Catalog      *app.CatalogService
	Pricing      *app.PricingService
	Search       *app.RoomSearch
	Alternatives *app.AlternativeFinder
	Reservations *app.ReservationService
	Groups       *app.GroupService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1/hotels/{hotelID}", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(RequireAPIKey(s.apiKey))
		}
		r.Get("/room-types", h.listRoomTypes)
		r.Put("/room-types/{typeID}", h.putRoomType)
		r.Get("/room-types/{typeID}/quote", h.quote)
		r.Put("/rooms/{roomID}", h.putRoom)
		r.Get("/availability", h.availability)
		r.Get("/alternatives", h.alternatives)

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", h.createReservation)
			r.Get("/", h.listReservations)
			r.Get("/{id}", h.getReservation)
			r.Patch("/{id}", h.updateReservation)
			r.Post("/{id}/confirm", h.transition(h.Reservations.Confirm))
			r.Post("/{id}/cancel", h.transition(h.Reservations.Cancel))
			r.Post("/{id}/check-in", h.transition(h.Reservations.CheckIn))
			r.Post("/{id}/check-out", h.transition(h.Reservations.CheckOut))
			r.Post("/{id}/no-show", h.transition(h.Reservations.MarkNoShow))
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", h.createGroup)
			r.Get("/{groupID}", h.getGroup)
			r.Post("/{groupID}/check-in", h.groupTransition(h.Groups.CheckInGroup))
			r.Post("/{groupID}/check-out", h.groupTransition(h.Groups.CheckOutGroup))
			r.Post("/{groupID}/cancel", h.groupTransition(h.Groups.CancelGroupBooking))
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the engine's error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeProblem(w, http.StatusBadRequest, "Invalid Date Range", err.Error())
	case errors.Is(err, domain.ErrEmptyGroup):
		writeProblem(w, http.StatusBadRequest, "Empty Group", err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrStoreFailure):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("store failure")
		writeProblem(w, http.StatusServiceUnavailable, "Store Unavailable", "the reservation store could not complete the request")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrRoomNotAvailable):
		writeProblem(w, http.StatusConflict, "Room Not Available", err.Error())
	case errors.Is(err, domain.ErrNotEditable):
		writeProblem(w, http.StatusConflict, "Not Editable", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeProblem(w, http.StatusConflict, "Invalid State", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "unexpected error")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable answers GETs with a weak ETag and honours If-None-Match.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(domain.ErrValidation, err)
	}
	return validateStruct(dst)
}
