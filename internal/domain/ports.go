package domain

import "context"

// Store is the persistence contract of the engine. Lookups by id return
// ErrNotFound when nothing matches; Apply commits every op of a batch or none.
type Store interface {
	// Reservations
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, f ReservationFilter) ([]Reservation, error)
	InsertReservation(ctx context.Context, r Reservation) (string, error)
	UpdateReservation(ctx context.Context, id string, p ReservationPatch) error

	// Rooms and room types
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, f RoomFilter) ([]Room, error)
	UpdateRoom(ctx context.Context, id string, p RoomPatch) error
	UpsertRoom(ctx context.Context, r Room) error
	GetRoomType(ctx context.Context, id string) (RoomType, error)
	ListRoomTypes(ctx context.Context, hotelID string) ([]RoomType, error)
	UpsertRoomType(ctx context.Context, rt RoomType) error

	// Housekeeping
	InsertTask(ctx context.Context, t HousekeepingTask) (string, error)

	// Apply returns the generated ids of insert ops, in op order.
	Apply(ctx context.Context, b *Batch) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// EventPublisher fans lifecycle events out to other systems.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type ReservationFilter struct {
	HotelID            string
	RoomID             string
	GroupID            string
	ConfirmationNumber string
	Statuses           []ReservationStatus
	CheckInBefore      Date
	Limit              int
}

// Matches reports whether r satisfies every set field of f.
func (f ReservationFilter) Matches(r Reservation) bool {
	if f.HotelID != "" && r.HotelID != f.HotelID {
		return false
	}
	if f.RoomID != "" && r.RoomID != f.RoomID {
		return false
	}
	if f.GroupID != "" && (r.GroupID == nil || *r.GroupID != f.GroupID) {
		return false
	}
	if f.ConfirmationNumber != "" && r.ConfirmationNumber != f.ConfirmationNumber {
		return false
	}
	if f.CheckInBefore != "" && !(r.CheckIn < f.CheckInBefore) {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if r.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

type RoomFilter struct {
	HotelID         string
	RoomTypeID      string
	ExcludeStatuses []RoomStatus
}

func (f RoomFilter) Matches(r Room) bool {
	if f.HotelID != "" && r.HotelID != f.HotelID {
		return false
	}
	if f.RoomTypeID != "" && r.RoomTypeID != f.RoomTypeID {
		return false
	}
	for _, s := range f.ExcludeStatuses {
		if r.Status == s {
			return false
		}
	}
	return true
}
