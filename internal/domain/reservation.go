package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked-in"
	StatusCheckedOut ReservationStatus = "checked-out"
	StatusCancelled  ReservationStatus = "cancelled"
	StatusNoShow     ReservationStatus = "no-show"
)

// ActiveStatuses are the only statuses that block a room.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusCheckedIn}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s ReservationStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCheckedIn
}

// Editable reports whether core fields may still change.
func (s ReservationStatus) Editable() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Reservation struct {
	ID                 string            `db:"id" json:"id"`
	HotelID            string            `db:"hotel_id" json:"hotelId"`
	ConfirmationNumber string            `db:"confirmation_number" json:"confirmationNumber"`
	CustomerID         string            `db:"customer_id" json:"customerId"`
	RoomID             string            `db:"room_id" json:"roomId"`
	RoomTypeID         string            `db:"room_type_id" json:"roomTypeId"`
	CheckIn            Date              `db:"check_in" json:"checkInDate"`
	CheckOut           Date              `db:"check_out" json:"checkOutDate"`
	Guests             int               `db:"guests" json:"guests"`
	Source             string            `db:"source" json:"source"`
	Status             ReservationStatus `db:"status" json:"status"`
	TotalPrice         decimal.Decimal   `db:"total_price" json:"totalPrice"`
	PaidAmount         decimal.Decimal   `db:"paid_amount" json:"paidAmount"`
	Notes              *string           `db:"notes" json:"notes,omitempty"`

	IsGroupBooking bool    `db:"is_group_booking" json:"isGroupBooking"`
	GroupID        *string `db:"group_id" json:"groupId,omitempty"`
	GroupSize      *int    `db:"group_size" json:"groupSize,omitempty"`
	GroupIndex     *int    `db:"group_index" json:"groupIndex,omitempty"`

	CheckedInAt  *time.Time `db:"checked_in_at" json:"checkedInAt,omitempty"`
	CheckedOutAt *time.Time `db:"checked_out_at" json:"checkedOutAt,omitempty"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`
	NoShowAt     *time.Time `db:"no_show_at" json:"noShowAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

func (r Reservation) Stay() Stay { return Stay{CheckIn: r.CheckIn, CheckOut: r.CheckOut} }

// ReservationPatch carries only the fields a write should touch; nil means
// "leave unchanged".
type ReservationPatch struct {
	RoomID     *string
	RoomTypeID *string
	CheckIn    *Date
	CheckOut   *Date
	Guests     *int
	Source     *string
	TotalPrice *decimal.Decimal
	PaidAmount *decimal.Decimal
	Notes      *string

	Status       *ReservationStatus
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
	CancelledAt  *time.Time
	NoShowAt     *time.Time
	UpdatedAt    time.Time
}

// Apply merges p into r.
func (p ReservationPatch) Apply(r *Reservation) {
	if p.RoomID != nil {
		r.RoomID = *p.RoomID
	}
	if p.RoomTypeID != nil {
		r.RoomTypeID = *p.RoomTypeID
	}
	if p.CheckIn != nil {
		r.CheckIn = *p.CheckIn
	}
	if p.CheckOut != nil {
		r.CheckOut = *p.CheckOut
	}
	if p.Guests != nil {
		r.Guests = *p.Guests
	}
	if p.Source != nil {
		r.Source = *p.Source
	}
	if p.TotalPrice != nil {
		r.TotalPrice = *p.TotalPrice
	}
	if p.PaidAmount != nil {
		r.PaidAmount = *p.PaidAmount
	}
	if p.Notes != nil {
		r.Notes = p.Notes
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.CheckedInAt != nil {
		r.CheckedInAt = p.CheckedInAt
	}
	if p.CheckedOutAt != nil {
		r.CheckedOutAt = p.CheckedOutAt
	}
	if p.CancelledAt != nil {
		r.CancelledAt = p.CancelledAt
	}
	if p.NoShowAt != nil {
		r.NoShowAt = p.NoShowAt
	}
	if !p.UpdatedAt.IsZero() {
		r.UpdatedAt = p.UpdatedAt
	}
}

// StatusPatch builds the patch for a pure status transition stamped at now.
func StatusPatch(to ReservationStatus, now time.Time) ReservationPatch {
	p := ReservationPatch{Status: &to, UpdatedAt: now}
	switch to {
	case StatusCheckedIn:
		p.CheckedInAt = &now
	case StatusCheckedOut:
		p.CheckedOutAt = &now
	case StatusCancelled:
		p.CancelledAt = &now
	case StatusNoShow:
		p.NoShowAt = &now
	}
	return p
}

// Group is the virtual aggregate of reservations sharing a group id,
// ordered by group index.
type Group struct {
	ID      string          `json:"groupId"`
	HotelID string          `json:"hotelId"`
	Members []Reservation   `json:"members"`
	Total   decimal.Decimal `json:"total"`
}
