package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hotel_pms/internal/domain"
)

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Reservations.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+res.ID)
	writeJSON(w, http.StatusCreated, res)
}

// listReservations supports ?status=a,b&checkInBefore=YYYY-MM-DD&limit=N.
func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ReservationFilter{
		HotelID:            chi.URLParam(r, "hotelID"),
		RoomID:             q.Get("roomId"),
		GroupID:            q.Get("groupId"),
		ConfirmationNumber: q.Get("confirmationNumber"),
	}
	if s := q.Get("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			st := domain.ReservationStatus(strings.TrimSpace(part))
			if !st.Valid() {
				writeProblem(w, http.StatusBadRequest, "Invalid Request", "unknown status "+part)
				return
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	if s := q.Get("checkInBefore"); s != "" {
		d, err := domain.ParseDate(s)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f.CheckInBefore = d
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "limit must be a positive integer")
			return
		}
		f.Limit = n
	}
	out, err := h.Reservations.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []domain.Reservation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": out})
}

func (h *Handlers) getReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reservations.Get(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, res)
}

func (h *Handlers) updateReservation(w http.ResponseWriter, r *http.Request) {
	var req updateReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.Reservations.Update(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type reservationAction func(ctx context.Context, hotelID, id string) (domain.Reservation, error)

func (h *Handlers) transition(action reservationAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := action(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *Handlers) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput(chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.Groups.CreateGroupBooking(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+id)
	writeJSON(w, http.StatusCreated, groupCreatedResponse{GroupID: id})
}

func (h *Handlers) getGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.Groups.GetGroup(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, g)
}

type groupAction func(ctx context.Context, hotelID, groupID string) error

// groupTransition runs action and answers with the group's new state.
func (h *Handlers) groupTransition(action groupAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hotelID, groupID := chi.URLParam(r, "hotelID"), chi.URLParam(r, "groupID")
		if err := action(r.Context(), hotelID, groupID); err != nil {
			writeError(w, r, err)
			return
		}
		g, err := h.Groups.GetGroup(r.Context(), hotelID, groupID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}
