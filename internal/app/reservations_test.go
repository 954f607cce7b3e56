package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
)

func TestCreate_SnapshotsPriceUnlessGiven(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	r, err := e.res.Create(ctx, newInput("R101", "2024-08-01", "2024-08-04"))
	require.NoError(t, err)
	assert.True(t, r.TotalPrice.Equal(dec("352")), "got %s", r.TotalPrice)
	assert.Equal(t, "std", r.RoomTypeID, "room type defaults to the room's")
	assert.Equal(t, fixedNow, r.CreatedAt)
	assert.NotEmpty(t, r.ConfirmationNumber)

	in := newInput("R102", "2024-08-01", "2024-08-04")
	in.TotalPrice = ptr(dec("199.5"))
	r, err = e.res.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, r.TotalPrice.Equal(dec("199.5")))

	assert.Equal(t, []string{app.EventReservationCreated, app.EventReservationCreated}, e.events.keys())
}

func TestCreate_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.res.Create(ctx, app.CreateReservationInput{HotelID: hotelID, RoomID: "R101",
		Stay: domain.Stay{CheckIn: "2024-08-04", CheckOut: "2024-08-01"}})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = e.res.Create(ctx, newInput("nope", "2024-08-01", "2024-08-02"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in := newInput("X1", "2024-08-01", "2024-08-02")
	_, err = e.res.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrNotFound, "room of another hotel")
	assert.Empty(t, e.events.keys())
}

func TestCreate_RetriesConfirmationCollision(t *testing.T) {
	codes := []string{"DUPE", "DUPE", "FRESH1"}
	var calls int
	gen := func(time.Time) string {
		c := codes[min(calls, len(codes)-1)]
		calls++
		return c
	}
	e := newEnv(t, app.WithConfirmationGenerator(gen))
	ctx := context.Background()

	_, err := e.store.InsertReservation(ctx, domain.Reservation{HotelID: hotelID, ConfirmationNumber: "DUPE",
		RoomID: "R201", CheckIn: "2020-01-01", CheckOut: "2020-01-02", Status: domain.StatusCheckedOut})
	require.NoError(t, err)

	r, err := e.res.Create(ctx, newInput("R101", "2024-08-01", "2024-08-02"))
	require.NoError(t, err)
	assert.Equal(t, "FRESH1", r.ConfirmationNumber)
	assert.Equal(t, 3, calls)
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	e := newEnv(t, app.WithConfirmationGenerator(func(time.Time) string { return "SAME" }))
	ctx := context.Background()
	_, err := e.res.Create(ctx, newInput("R101", "2024-08-01", "2024-08-02"))
	require.NoError(t, err)

	_, err = e.res.Create(ctx, newInput("R102", "2024-08-01", "2024-08-02"))
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, e.all(t), 1)
}

func TestNewConfirmationNumber(t *testing.T) {
	a := app.NewConfirmationNumber(fixedNow)
	b := app.NewConfirmationNumber(fixedNow)
	assert.Regexp(t, `^[0-9A-Z]+$`, a)
	assert.NotEqual(t, a, b)
}

func TestUpdate_EditRestriction(t *testing.T) {
	ctx := context.Background()
	for _, st := range []domain.ReservationStatus{
		domain.StatusPending, domain.StatusConfirmed,
		domain.StatusCheckedIn, domain.StatusCheckedOut, domain.StatusCancelled, domain.StatusNoShow,
	} {
		t.Run(string(st), func(t *testing.T) {
			e := newEnv(t)
			r := e.seed(t, "R101", "2024-08-01", "2024-08-03", st)

			_, err := e.res.Update(ctx, hotelID, r.ID, app.UpdateReservationInput{Guests: ptr(4)})
			got := e.reservation(t, r.ID)
			if st.Editable() {
				require.NoError(t, err)
				assert.Equal(t, 4, got.Guests)
				return
			}
			assert.ErrorIs(t, err, domain.ErrNotEditable)
			assert.Equal(t, r, got, "no mutation when not editable")
		})
	}
}

func TestUpdate_DatesAndRoom(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r, err := e.res.Create(ctx, newInput("R101", "2024-08-01", "2024-08-03"))
	require.NoError(t, err)
	e.seed(t, "R102", "2024-08-05", "2024-08-08", domain.StatusConfirmed)

	// overlapping its own old stay is fine
	moved, err := e.res.Update(ctx, hotelID, r.ID, app.UpdateReservationInput{CheckOut: ptr(domain.Date("2024-08-04"))})
	require.NoError(t, err)
	assert.Equal(t, domain.Date("2024-08-04"), moved.CheckOut)
	assert.True(t, moved.TotalPrice.Equal(dec("352")), "price is re-quoted, got %s", moved.TotalPrice)

	_, err = e.res.Update(ctx, hotelID, r.ID, app.UpdateReservationInput{
		RoomID: ptr("R102"), CheckOut: ptr(domain.Date("2024-08-06")),
	})
	assert.ErrorIs(t, err, domain.ErrRoomNotAvailable)
	assert.Equal(t, "R101", e.reservation(t, r.ID).RoomID)

	_, err = e.res.Update(ctx, hotelID, r.ID, app.UpdateReservationInput{CheckIn: ptr(domain.Date("2024-08-09"))})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	switched, err := e.res.Update(ctx, hotelID, r.ID, app.UpdateReservationInput{RoomID: ptr("R201")})
	require.NoError(t, err)
	assert.Equal(t, "deluxe", switched.RoomTypeID)
	assert.True(t, switched.TotalPrice.Equal(dec("594")), "3 nights at 180 plus tax, got %s", switched.TotalPrice)
}

func TestCancel_FromAnyStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.seed(t, "R101", "2024-06-19", "2024-06-22", domain.StatusCheckedIn)

	got, err := e.res.Cancel(ctx, hotelID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.Equal(t, fixedNow, *got.CancelledAt)
	assert.Equal(t, domain.StatusCancelled, e.reservation(t, r.ID).Status)
}

func TestCheckInCheckOut(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r, err := e.res.Create(ctx, newInput("R101", "2024-06-20", "2024-06-22"))
	require.NoError(t, err)

	_, err = e.res.CheckOut(ctx, hotelID, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = e.res.Confirm(ctx, hotelID, r.ID)
	require.NoError(t, err)
	_, err = e.res.Confirm(ctx, hotelID, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "confirm only from pending")

	in, err := e.res.CheckIn(ctx, hotelID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedIn, in.Status)
	assert.NotNil(t, in.CheckedInAt)
	assert.Equal(t, domain.RoomOccupied, e.room(t, "R101").Status)

	_, err = e.res.CheckIn(ctx, hotelID, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = e.res.MarkNoShow(ctx, hotelID, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	out, err := e.res.CheckOut(ctx, hotelID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedOut, out.Status)
	assert.Equal(t, domain.RoomDirty, e.room(t, "R101").Status)
	tasks := e.store.Tasks(hotelID)
	require.Len(t, tasks, 1)
	assert.Equal(t, "R101", tasks[0].RoomID)
	assert.Equal(t, r.ID, tasks[0].ReservationID)
	assert.Equal(t, domain.TaskClean, tasks[0].Type)

	assert.Equal(t, []string{
		app.EventReservationCreated, app.EventReservationConfirmed,
		app.EventReservationCheckedIn, app.EventReservationCheckedOut,
	}, e.events.keys())
}

func TestCheckIn_RoomWriteFailureReported(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.seed(t, "R101", "2024-06-20", "2024-06-22", domain.StatusConfirmed)
	e.store.FailOn = func(op string) error {
		if op == "update room" {
			return errors.New("timeout")
		}
		return nil
	}
	_, err := e.res.CheckIn(ctx, hotelID, r.ID)
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	e.store.FailOn = nil
	// the two writes are sequential; the reservation write already landed
	assert.Equal(t, domain.StatusCheckedIn, e.reservation(t, r.ID).Status)
}

func TestCheckInCheckOut_MissingRoomIsStoreFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.seed(t, "R101", "2024-06-20", "2024-06-22", domain.StatusConfirmed)
	e.store.FailOn = func(op string) error {
		if op == "update room" {
			return fmt.Errorf("room R101: %w", domain.ErrNotFound)
		}
		return nil
	}

	_, err := e.res.CheckIn(ctx, hotelID, r.ID)
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.Equal(t, domain.StatusCheckedIn, e.reservation(t, r.ID).Status)

	_, err = e.res.CheckOut(ctx, hotelID, r.ID)
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	e.store.FailOn = nil
	assert.Equal(t, domain.StatusCheckedOut, e.reservation(t, r.ID).Status)
}

func TestOverlongStayRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	long := domain.Stay{CheckIn: "2024-07-01", CheckOut: "2025-07-02"}

	_, err := e.pricing.Quote(ctx, hotelID, "std", long)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.res.Create(ctx, app.CreateReservationInput{HotelID: hotelID, CustomerID: "c", RoomID: "R101", Stay: long, Guests: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	r := e.seed(t, "R101", "2024-07-01", "2024-07-03", domain.StatusConfirmed)
	_, err = e.res.Update(ctx, hotelID, r.ID, app.UpdateReservationInput{CheckOut: ptr(domain.Date("2025-07-02"))})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.Date("2024-07-03"), e.reservation(t, r.ID).CheckOut)
}

func TestMarkNoShow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.seed(t, "R101", "2024-06-18", "2024-06-19", domain.StatusConfirmed)

	got, err := e.res.MarkNoShow(ctx, hotelID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoShow, got.Status)
	assert.NotNil(t, got.NoShowAt)

	_, err = e.res.MarkNoShow(ctx, hotelID, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGet_OtherHotelIsNotFound(t *testing.T) {
	e := newEnv(t)
	r := e.seed(t, "R101", "2024-06-18", "2024-06-19", domain.StatusConfirmed)
	_, err := e.res.Get(context.Background(), "h2", r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	e := newEnv(t)
	e.events.fail = errors.New("broker down")
	r, err := e.res.Create(context.Background(), newInput("R101", "2024-08-01", "2024-08-02"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, e.reservation(t, r.ID).Status)
}

// Random creates and date edits never leave two active reservations
// overlapping on one room.
func TestNonOverlapInvariant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))
	rooms := []string{"R101", "R102", "R201"}
	base := domain.Date("2024-09-01")

	var ids []string
	for i := 0; i < 200; i++ {
		in := base.AddDays(rng.IntN(30))
		out := in.AddDays(1 + rng.IntN(5))
		if len(ids) > 0 && rng.IntN(3) == 0 {
			id := ids[rng.IntN(len(ids))]
			_, _ = e.res.Update(ctx, hotelID, id, app.UpdateReservationInput{CheckIn: &in, CheckOut: &out})
			continue
		}
		r, err := e.res.Create(ctx, newInput(rooms[rng.IntN(len(rooms))], in.String(), out.String()))
		if err == nil {
			ids = append(ids, r.ID)
		} else {
			require.ErrorIs(t, err, domain.ErrRoomNotAvailable)
		}
		if rng.IntN(10) == 0 && len(ids) > 0 {
			_, _ = e.res.Cancel(ctx, hotelID, ids[rng.IntN(len(ids))])
		}
	}
	require.NotEmpty(t, ids)

	all := e.all(t)
	for i, a := range all {
		for _, b := range all[i+1:] {
			if a.RoomID != b.RoomID || !a.Status.Active() || !b.Status.Active() {
				continue
			}
			assert.False(t, a.Stay().Overlaps(b.Stay()), "%s %v overlaps %s %v", a.ID, a.Stay(), b.ID, b.Stay())
		}
	}
}
