package app

import (
	"context"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/domain"
)

type AvailabilityChecker struct{ store domain.Store }

func NewAvailabilityChecker(s domain.Store) *AvailabilityChecker {
	return &AvailabilityChecker{store: s}
}

// IsAvailable reports whether roomID has no active reservation overlapping
// stay. excludeID skips one reservation (the one being edited). A failed
// fetch returns an error matching domain.ErrAvailabilityCheck.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, hotelID, roomID string, stay domain.Stay, excludeID string) (bool, error) {
	existing, err := c.store.ListReservations(ctx, domain.ReservationFilter{
		HotelID:  hotelID,
		RoomID:   roomID,
		Statuses: domain.ActiveStatuses,
	})
	if err != nil {
		observability.ObserveAvailability("error")
		return false, &domain.StoreError{Op: domain.OpAvailabilityCheck, Err: err}
	}
	for _, r := range existing {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if stay.Overlaps(r.Stay()) {
			observability.ObserveAvailability("conflict")
			return false, nil
		}
	}
	observability.ObserveAvailability("available")
	return true, nil
}
