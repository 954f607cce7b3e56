package mysql

const reservationColumns = `
  id, hotel_id, confirmation_number, customer_id, room_id, room_type_id,
  check_in, check_out, guests, source, status, total_price, paid_amount, notes,
  is_group_booking, group_id, group_size, group_index,
  checked_in_at, checked_out_at, cancelled_at, no_show_at, created_at, updated_at`

const insertReservationSQL = `
INSERT INTO reservations (` + reservationColumns + `)
VALUES (
  :id, :hotel_id, :confirmation_number, :customer_id, :room_id, :room_type_id,
  :check_in, :check_out, :guests, :source, :status, :total_price, :paid_amount, :notes,
  :is_group_booking, :group_id, :group_size, :group_index,
  :checked_in_at, :checked_out_at, :cancelled_at, :no_show_at, :created_at, :updated_at)
`

const getReservationSQL = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`

const selectReservationsSQL = `SELECT ` + reservationColumns + ` FROM reservations`

const roomColumns = `id, hotel_id, room_number, room_type_id, floor, status, created_at, updated_at`

const getRoomSQL = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`

const selectRoomsSQL = `SELECT ` + roomColumns + ` FROM rooms`

const upsertRoomSQL = `
INSERT INTO rooms (` + roomColumns + `)
VALUES (:id, :hotel_id, :room_number, :room_type_id, :floor, :status, :created_at, :updated_at)
ON DUPLICATE KEY UPDATE
  room_number  = VALUES(room_number),
  room_type_id = VALUES(room_type_id),
  floor        = VALUES(floor),
  status       = VALUES(status),
  updated_at   = VALUES(updated_at)
`

const updateRoomStatusSQL = `UPDATE rooms SET status = ?, updated_at = ? WHERE id = ?`

const roomTypeColumns = `id, hotel_id, name, base_price, capacity, weekday_pricing, seasonal_pricing, created_at, updated_at`

const getRoomTypeSQL = `SELECT ` + roomTypeColumns + ` FROM room_types WHERE id = ?`

const listRoomTypesSQL = `SELECT ` + roomTypeColumns + ` FROM room_types WHERE hotel_id = ? ORDER BY name`

const upsertRoomTypeSQL = `
INSERT INTO room_types (` + roomTypeColumns + `)
VALUES (:id, :hotel_id, :name, :base_price, :capacity, :weekday_pricing, :seasonal_pricing, :created_at, :updated_at)
ON DUPLICATE KEY UPDATE
  name             = VALUES(name),
  base_price       = VALUES(base_price),
  capacity         = VALUES(capacity),
  weekday_pricing  = VALUES(weekday_pricing),
  seasonal_pricing = VALUES(seasonal_pricing),
  updated_at       = VALUES(updated_at)
`

const insertTaskSQL = `
INSERT INTO housekeeping_tasks (id, hotel_id, room_id, reservation_id, type, status, priority, created_at)
VALUES (:id, :hotel_id, :room_id, :reservation_id, :type, :status, :priority, :created_at)
`
