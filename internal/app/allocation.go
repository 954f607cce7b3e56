package app

import (
	"context"
	"sort"

	"hotel_pms/internal/domain"
)

// RoomSearch lists rooms free for a stay. Each candidate room costs one
// availability query, so a search is O(rooms x reservations per room);
// fine at single-hotel scale.
type RoomSearch struct {
	store   domain.Store
	checker *AvailabilityChecker
}

func NewRoomSearch(s domain.Store, c *AvailabilityChecker) *RoomSearch {
	return &RoomSearch{store: s, checker: c}
}

// FindAvailableRooms returns non-maintenance rooms of the hotel (optionally
// of one room type) with no overlapping active reservation, ordered by room
// number.
func (s *RoomSearch) FindAvailableRooms(ctx context.Context, hotelID string, stay domain.Stay, roomTypeID string) (rooms []domain.Room, err error) {
	ctx, span := startSpan(ctx, "rooms.find_available")
	defer func() { finishSpan(span, "find_available", err) }()

	if err := stay.Check(); err != nil {
		return nil, err
	}
	candidates, err := s.store.ListRooms(ctx, domain.RoomFilter{
		HotelID:         hotelID,
		RoomTypeID:      roomTypeID,
		ExcludeStatuses: []domain.RoomStatus{domain.RoomMaintenance},
	})
	if err != nil {
		return nil, domain.WrapStore("list rooms", err)
	}
	rooms = make([]domain.Room, 0, len(candidates))
	for _, r := range candidates {
		ok, err := s.checker.IsAvailable(ctx, hotelID, r.ID, stay, "")
		if err != nil {
			return nil, err
		}
		if ok {
			rooms = append(rooms, r)
		}
	}
	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].Number < rooms[j].Number })
	return rooms, nil
}
