package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hotel_pms/internal/domain"
)

const errDupEntry = 1062

// Repo is the MySQL domain.Store. The DSN should set parseTime=true and
// clientFoundRows=true so an update that changes nothing still counts as
// a match.
type Repo struct{ db *sqlx.DB }

func New(db *sql.DB) *Repo { return &Repo{db: sqlx.NewDb(db, "mysql")} }

func (r *Repo) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	var out domain.Reservation
	if err := r.db.GetContext(ctx, &out, getReservationSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reservation{}, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
		}
		return domain.Reservation{}, err
	}
	return out, nil
}

func (r *Repo) ListReservations(ctx context.Context, f domain.ReservationFilter) ([]domain.Reservation, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		where = append(where, cond)
		args = append(args, v)
	}
	if f.HotelID != "" {
		add("hotel_id = ?", f.HotelID)
	}
	if f.RoomID != "" {
		add("room_id = ?", f.RoomID)
	}
	if f.GroupID != "" {
		add("group_id = ?", f.GroupID)
	}
	if f.ConfirmationNumber != "" {
		add("confirmation_number = ?", f.ConfirmationNumber)
	}
	if f.CheckInBefore != "" {
		add("check_in < ?", string(f.CheckInBefore))
	}
	if len(f.Statuses) > 0 {
		marks := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			marks[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(marks, ",")+")")
	}

	q := selectReservationsSQL
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	out := []domain.Reservation{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) InsertReservation(ctx context.Context, res domain.Reservation) (string, error) {
	return insertReservation(ctx, r.db, res)
}

func (r *Repo) UpdateReservation(ctx context.Context, id string, p domain.ReservationPatch) error {
	return updateReservation(ctx, r.db, id, p)
}

func (r *Repo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	var out domain.Room
	if err := r.db.GetContext(ctx, &out, getRoomSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
		}
		return domain.Room{}, err
	}
	return out, nil
}

func (r *Repo) ListRooms(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error) {
	var (
		where []string
		args  []any
	)
	if f.HotelID != "" {
		where = append(where, "hotel_id = ?")
		args = append(args, f.HotelID)
	}
	if f.RoomTypeID != "" {
		where = append(where, "room_type_id = ?")
		args = append(args, f.RoomTypeID)
	}
	for _, s := range f.ExcludeStatuses {
		where = append(where, "status <> ?")
		args = append(args, string(s))
	}
	q := selectRoomsSQL
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY room_number"

	out := []domain.Room{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) UpdateRoom(ctx context.Context, id string, p domain.RoomPatch) error {
	return updateRoom(ctx, r.db, id, p)
}

func (r *Repo) UpsertRoom(ctx context.Context, room domain.Room) error {
	_, err := r.db.NamedExecContext(ctx, upsertRoomSQL, room)
	return mapErr(err)
}

func (r *Repo) GetRoomType(ctx context.Context, id string) (domain.RoomType, error) {
	var out domain.RoomType
	if err := r.db.GetContext(ctx, &out, getRoomTypeSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RoomType{}, fmt.Errorf("room type %s: %w", id, domain.ErrNotFound)
		}
		return domain.RoomType{}, err
	}
	return out, nil
}

func (r *Repo) ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	out := []domain.RoomType{}
	if err := r.db.SelectContext(ctx, &out, listRoomTypesSQL, hotelID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) UpsertRoomType(ctx context.Context, rt domain.RoomType) error {
	_, err := r.db.NamedExecContext(ctx, upsertRoomTypeSQL, rt)
	return mapErr(err)
}

func (r *Repo) InsertTask(ctx context.Context, t domain.HousekeepingTask) (string, error) {
	return insertTask(ctx, r.db, t)
}

// Apply runs the batch inside one transaction.
func (r *Repo) Apply(ctx context.Context, b *domain.Batch) (ids []string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, op := range b.Ops() {
		switch op.Kind {
		case domain.OpInsertReservation:
			id, err := insertReservation(ctx, tx, op.Reservation)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		case domain.OpUpdateReservation:
			if err := updateReservation(ctx, tx, op.TargetID, op.ReservationPatch); err != nil {
				return nil, err
			}
		case domain.OpUpdateRoom:
			if err := updateRoom(ctx, tx, op.TargetID, op.RoomPatch); err != nil {
				return nil, err
			}
		case domain.OpInsertTask:
			id, err := insertTask(ctx, tx, op.Task)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		default:
			return nil, fmt.Errorf("unknown batch op %d", op.Kind)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func insertReservation(ctx context.Context, e sqlx.ExtContext, res domain.Reservation) (string, error) {
	res.ID = uuid.NewString()
	if _, err := sqlx.NamedExecContext(ctx, e, insertReservationSQL, res); err != nil {
		return "", mapErr(err)
	}
	return res.ID, nil
}

func insertTask(ctx context.Context, e sqlx.ExtContext, t domain.HousekeepingTask) (string, error) {
	t.ID = uuid.NewString()
	if _, err := sqlx.NamedExecContext(ctx, e, insertTaskSQL, t); err != nil {
		return "", mapErr(err)
	}
	return t.ID, nil
}

// updateReservation writes only the fields set in p.
func updateReservation(ctx context.Context, e sqlx.ExtContext, id string, p domain.ReservationPatch) error {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.RoomID != nil {
		set("room_id", *p.RoomID)
	}
	if p.RoomTypeID != nil {
		set("room_type_id", *p.RoomTypeID)
	}
	if p.CheckIn != nil {
		set("check_in", *p.CheckIn)
	}
	if p.CheckOut != nil {
		set("check_out", *p.CheckOut)
	}
	if p.Guests != nil {
		set("guests", *p.Guests)
	}
	if p.Source != nil {
		set("source", *p.Source)
	}
	if p.TotalPrice != nil {
		set("total_price", *p.TotalPrice)
	}
	if p.PaidAmount != nil {
		set("paid_amount", *p.PaidAmount)
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.CheckedInAt != nil {
		set("checked_in_at", *p.CheckedInAt)
	}
	if p.CheckedOutAt != nil {
		set("checked_out_at", *p.CheckedOutAt)
	}
	if p.CancelledAt != nil {
		set("cancelled_at", *p.CancelledAt)
	}
	if p.NoShowAt != nil {
		set("no_show_at", *p.NoShowAt)
	}
	if !p.UpdatedAt.IsZero() {
		set("updated_at", p.UpdatedAt)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := e.ExecContext(ctx, "UPDATE reservations SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return mapErr(err)
	}
	return expectRow(res, "reservation", id)
}

func updateRoom(ctx context.Context, e sqlx.ExtContext, id string, p domain.RoomPatch) error {
	if p.Status == nil {
		return nil
	}
	res, err := e.ExecContext(ctx, updateRoomStatusSQL, string(*p.Status), p.UpdatedAt, id)
	if err != nil {
		return mapErr(err)
	}
	return expectRow(res, "room", id)
}

func expectRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return nil
}

func mapErr(err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return fmt.Errorf("%s: %w", me.Message, domain.ErrDuplicate)
	}
	return err
}
