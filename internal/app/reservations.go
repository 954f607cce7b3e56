package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"hotel_pms/internal/domain"
)

// ReservationService owns the single-reservation lifecycle:
// pending -> confirmed -> checked-in -> checked-out, with cancelled and
// no-show as terminal side exits.
type ReservationService struct {
	store   domain.Store
	checker *AvailabilityChecker
	pricing *PricingService
	opts    options
}

func NewReservationService(s domain.Store, c *AvailabilityChecker, p *PricingService, opts ...Option) *ReservationService {
	return &ReservationService{store: s, checker: c, pricing: p, opts: buildOptions(opts)}
}

type CreateReservationInput struct {
	HotelID    string
	CustomerID string
	RoomID     string
	RoomTypeID string
	Stay       domain.Stay
	Guests     int
	Source     string
	TotalPrice *decimal.Decimal // nil: snapshot the calculated price
	PaidAmount decimal.Decimal
	Notes      *string
}

// UpdateReservationInput lists editable fields; nil leaves a field as is.
type UpdateReservationInput struct {
	RoomID     *string
	RoomTypeID *string
	CheckIn    *domain.Date
	CheckOut   *domain.Date
	Guests     *int
	Source     *string
	TotalPrice *decimal.Decimal
	PaidAmount *decimal.Decimal
	Notes      *string
}

func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (res domain.Reservation, err error) {
	ctx, span := startSpan(ctx, "reservation.create")
	defer func() { finishSpan(span, "create", err) }()

	if err := in.Stay.Check(); err != nil {
		return domain.Reservation{}, err
	}
	room, err := s.roomInHotel(ctx, in.HotelID, in.RoomID)
	if err != nil {
		return domain.Reservation{}, err
	}
	roomTypeID := in.RoomTypeID
	if roomTypeID == "" {
		roomTypeID = room.RoomTypeID
	}
	ok, err := s.checker.IsAvailable(ctx, in.HotelID, in.RoomID, in.Stay, "")
	if err != nil {
		return domain.Reservation{}, err
	}
	if !ok {
		return domain.Reservation{}, &domain.RoomUnavailableError{RoomID: in.RoomID}
	}

	total := decimal.Zero
	if in.TotalPrice != nil {
		total = *in.TotalPrice
	} else {
		q, err := s.pricing.Quote(ctx, in.HotelID, roomTypeID, in.Stay)
		if err != nil {
			return domain.Reservation{}, err
		}
		total = q.Total
	}

	now := s.opts.now()
	res = domain.Reservation{
		HotelID:    in.HotelID,
		CustomerID: in.CustomerID,
		RoomID:     in.RoomID,
		RoomTypeID: roomTypeID,
		CheckIn:    in.Stay.CheckIn,
		CheckOut:   in.Stay.CheckOut,
		Guests:     in.Guests,
		Source:     in.Source,
		Status:     domain.StatusPending,
		TotalPrice: total,
		PaidAmount: in.PaidAmount,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for attempt := 0; attempt < maxConfirmationAttempts; attempt++ {
		res.ConfirmationNumber = s.opts.confirmation(now)
		id, ierr := s.store.InsertReservation(ctx, res)
		if errors.Is(ierr, domain.ErrDuplicate) {
			err = ierr
			continue
		}
		if ierr != nil {
			return domain.Reservation{}, domain.WrapStore("insert reservation", ierr)
		}
		res.ID = id
		s.opts.publish(ctx, reservationEvent(EventReservationCreated, res, now))
		return res, nil
	}
	return domain.Reservation{}, &domain.StoreError{Op: "insert reservation", Err: err}
}

func (s *ReservationService) Get(ctx context.Context, hotelID, id string) (domain.Reservation, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return domain.Reservation{}, domain.WrapStore("get reservation", err)
	}
	if r.HotelID != hotelID {
		return domain.Reservation{}, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (s *ReservationService) List(ctx context.Context, f domain.ReservationFilter) ([]domain.Reservation, error) {
	out, err := s.store.ListReservations(ctx, f)
	if err != nil {
		return nil, domain.WrapStore("list reservations", err)
	}
	return out, nil
}

// Update edits a pending or confirmed reservation. Changing dates or room
// re-validates the range and re-checks availability, ignoring the
// reservation itself.
func (s *ReservationService) Update(ctx context.Context, hotelID, id string, in UpdateReservationInput) (res domain.Reservation, err error) {
	ctx, span := startSpan(ctx, "reservation.update")
	defer func() { finishSpan(span, "update", err) }()

	cur, err := s.Get(ctx, hotelID, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if !cur.Status.Editable() {
		return domain.Reservation{}, fmt.Errorf("reservation %s is %s: %w", id, cur.Status, domain.ErrNotEditable)
	}

	now := s.opts.now()
	p := domain.ReservationPatch{
		RoomID:     in.RoomID,
		RoomTypeID: in.RoomTypeID,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		Guests:     in.Guests,
		Source:     in.Source,
		TotalPrice: in.TotalPrice,
		PaidAmount: in.PaidAmount,
		Notes:      in.Notes,
		UpdatedAt:  now,
	}
	next := cur
	p.Apply(&next)

	// members of a group share stay and source; those move only as a group
	if cur.IsGroupBooking && (next.CheckIn != cur.CheckIn || next.CheckOut != cur.CheckOut || next.Source != cur.Source) {
		return domain.Reservation{}, fmt.Errorf("reservation %s is a group member; dates and source are group-wide: %w",
			id, domain.ErrNotEditable)
	}

	datesChanged := next.CheckIn != cur.CheckIn || next.CheckOut != cur.CheckOut
	roomChanged := next.RoomID != cur.RoomID
	if datesChanged || roomChanged {
		if err := next.Stay().Check(); err != nil {
			return domain.Reservation{}, err
		}
		if roomChanged {
			room, err := s.roomInHotel(ctx, hotelID, next.RoomID)
			if err != nil {
				return domain.Reservation{}, err
			}
			if in.RoomTypeID == nil && room.RoomTypeID != next.RoomTypeID {
				next.RoomTypeID = room.RoomTypeID
				p.RoomTypeID = &room.RoomTypeID
			}
		}
		ok, err := s.checker.IsAvailable(ctx, hotelID, next.RoomID, next.Stay(), cur.ID)
		if err != nil {
			return domain.Reservation{}, err
		}
		if !ok {
			return domain.Reservation{}, &domain.RoomUnavailableError{RoomID: next.RoomID}
		}
	}
	if in.TotalPrice == nil && (datesChanged || next.RoomTypeID != cur.RoomTypeID) {
		q, err := s.pricing.Quote(ctx, hotelID, next.RoomTypeID, next.Stay())
		if err != nil {
			return domain.Reservation{}, err
		}
		next.TotalPrice = q.Total
		p.TotalPrice = &q.Total
	}

	if err := s.store.UpdateReservation(ctx, id, p); err != nil {
		return domain.Reservation{}, domain.WrapStore("update reservation", err)
	}
	s.opts.publish(ctx, reservationEvent(EventReservationUpdated, next, now))
	return next, nil
}

// Confirm moves a pending reservation to confirmed.
func (s *ReservationService) Confirm(ctx context.Context, hotelID, id string) (domain.Reservation, error) {
	return s.transition(ctx, "confirm", hotelID, id, domain.StatusConfirmed, EventReservationConfirmed,
		func(st domain.ReservationStatus) bool { return st == domain.StatusPending })
}

// Cancel marks the reservation cancelled whatever its current status.
// Reservations are never deleted.
func (s *ReservationService) Cancel(ctx context.Context, hotelID, id string) (domain.Reservation, error) {
	return s.transition(ctx, "cancel", hotelID, id, domain.StatusCancelled, EventReservationCancelled,
		func(domain.ReservationStatus) bool { return true })
}

// MarkNoShow closes a pending or confirmed reservation whose guest never
// arrived.
func (s *ReservationService) MarkNoShow(ctx context.Context, hotelID, id string) (domain.Reservation, error) {
	return s.transition(ctx, "no_show", hotelID, id, domain.StatusNoShow, EventReservationNoShow,
		domain.ReservationStatus.Editable)
}

// CheckIn marks the stay started and the room occupied. The two writes are
// sequential; a failed room write leaves the reservation checked in and is
// reported as a store failure.
func (s *ReservationService) CheckIn(ctx context.Context, hotelID, id string) (domain.Reservation, error) {
	res, err := s.transition(ctx, "check_in", hotelID, id, domain.StatusCheckedIn, EventReservationCheckedIn,
		domain.ReservationStatus.Editable)
	if err != nil {
		return domain.Reservation{}, err
	}
	occupied := domain.RoomOccupied
	if err := s.store.UpdateRoom(ctx, res.RoomID, domain.RoomPatch{Status: &occupied, UpdatedAt: res.UpdatedAt}); err != nil {
		return res, &domain.StoreError{Op: "update room after check-in", Err: err}
	}
	return res, nil
}

// CheckOut ends a checked-in stay, marks the room dirty and queues a
// cleaning task.
func (s *ReservationService) CheckOut(ctx context.Context, hotelID, id string) (domain.Reservation, error) {
	res, err := s.transition(ctx, "check_out", hotelID, id, domain.StatusCheckedOut, EventReservationCheckedOut,
		func(st domain.ReservationStatus) bool { return st == domain.StatusCheckedIn })
	if err != nil {
		return domain.Reservation{}, err
	}
	dirty := domain.RoomDirty
	if err := s.store.UpdateRoom(ctx, res.RoomID, domain.RoomPatch{Status: &dirty, UpdatedAt: res.UpdatedAt}); err != nil {
		return res, &domain.StoreError{Op: "update room after check-out", Err: err}
	}
	if _, err := s.store.InsertTask(ctx, domain.NewCleanTask(res.HotelID, res.RoomID, res.ID, res.UpdatedAt)); err != nil {
		return res, &domain.StoreError{Op: "create housekeeping task", Err: err}
	}
	return res, nil
}

func (s *ReservationService) transition(
	ctx context.Context,
	op, hotelID, id string,
	to domain.ReservationStatus,
	event string,
	allowed func(domain.ReservationStatus) bool,
) (res domain.Reservation, err error) {
	ctx, span := startSpan(ctx, "reservation."+op)
	defer func() { finishSpan(span, op, err) }()

	res, err = s.Get(ctx, hotelID, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if !allowed(res.Status) {
		return domain.Reservation{}, fmt.Errorf("cannot %s reservation %s in status %s: %w", op, id, res.Status, domain.ErrInvalidState)
	}
	now := s.opts.now()
	p := domain.StatusPatch(to, now)
	if err := s.store.UpdateReservation(ctx, id, p); err != nil {
		return domain.Reservation{}, domain.WrapStore("update reservation status", err)
	}
	p.Apply(&res)
	s.opts.publish(ctx, reservationEvent(event, res, now))
	return res, nil
}

func (s *ReservationService) roomInHotel(ctx context.Context, hotelID, roomID string) (domain.Room, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Room{}, domain.WrapStore("get room", err)
	}
	if room.HotelID != hotelID {
		return domain.Room{}, fmt.Errorf("room %s: %w", roomID, domain.ErrNotFound)
	}
	return room, nil
}
