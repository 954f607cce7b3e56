package domain

import "time"

type RoomStatus string

const (
	RoomVacant      RoomStatus = "vacant"
	RoomOccupied    RoomStatus = "occupied"
	RoomDirty       RoomStatus = "dirty"
	RoomMaintenance RoomStatus = "maintenance"
	RoomReserved    RoomStatus = "reserved"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomVacant, RoomOccupied, RoomDirty, RoomMaintenance, RoomReserved:
		return true
	}
	return false
}

type Room struct {
	ID         string     `db:"id" json:"id"`
	HotelID    string     `db:"hotel_id" json:"hotelId"`
	Number     string     `db:"room_number" json:"roomNumber"`
	RoomTypeID string     `db:"room_type_id" json:"roomTypeId"`
	Floor      int        `db:"floor" json:"floor"`
	Status     RoomStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

type RoomPatch struct {
	Status    *RoomStatus
	UpdatedAt time.Time
}

type TaskStatus string
type TaskPriority string

const (
	TaskClean                   = "clean"
	TaskPending    TaskStatus   = "pending"
	PriorityNormal TaskPriority = "normal"
)

// HousekeepingTask is queued for a room once its guests have left.
type HousekeepingTask struct {
	ID            string       `db:"id" json:"id"`
	HotelID       string       `db:"hotel_id" json:"hotelId"`
	RoomID        string       `db:"room_id" json:"roomId"`
	ReservationID string       `db:"reservation_id" json:"reservationId"`
	Type          string       `db:"type" json:"type"`
	Status        TaskStatus   `db:"status" json:"status"`
	Priority      TaskPriority `db:"priority" json:"priority"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}

func NewCleanTask(hotelID, roomID, reservationID string, now time.Time) HousekeepingTask {
	return HousekeepingTask{
		HotelID:       hotelID,
		RoomID:        roomID,
		ReservationID: reservationID,
		Type:          TaskClean,
		Status:        TaskPending,
		Priority:      PriorityNormal,
		CreatedAt:     now,
	}
}
