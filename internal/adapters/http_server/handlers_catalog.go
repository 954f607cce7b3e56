package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hotel_pms/internal/domain"
)

func stayFromQuery(r *http.Request) (domain.Stay, error) {
	q := r.URL.Query()
	return stayQuery{CheckIn: q.Get("checkIn"), CheckOut: q.Get("checkOut")}.stay()
}

func (h *Handlers) listRoomTypes(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.ListRoomTypes(r.Context(), chi.URLParam(r, "hotelID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) putRoomType(w http.ResponseWriter, r *http.Request) {
	var req roomTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := req.toDomain(chi.URLParam(r, "hotelID"), chi.URLParam(r, "typeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt, err = h.Catalog.PutRoomType(r.Context(), rt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	stay, err := stayFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.Pricing.Quote(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "typeID"), stay)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, q)
}

func (h *Handlers) putRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	room, err := h.Catalog.PutRoom(r.Context(), domain.Room{
		ID:         chi.URLParam(r, "roomID"),
		HotelID:    chi.URLParam(r, "hotelID"),
		Number:     req.Number,
		RoomTypeID: req.RoomTypeID,
		Floor:      req.Floor,
		Status:     domain.RoomStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	stay, err := stayFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rooms, err := h.Search.FindAvailableRooms(r.Context(), chi.URLParam(r, "hotelID"), stay, r.URL.Query().Get("roomTypeId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stay": stay, "rooms": rooms})
}

func (h *Handlers) alternatives(w http.ResponseWriter, r *http.Request) {
	stay, err := stayFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	typeID := q.Get("roomTypeId")
	if typeID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "roomTypeId is required")
		return
	}
	quantity := 1
	if s := q.Get("quantity"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "quantity must be a positive integer")
			return
		}
		quantity = n
	}
	alts, err := h.Alternatives.FindAlternatives(r.Context(), chi.URLParam(r, "hotelID"), stay, typeID, quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alternatives": alts})
}
