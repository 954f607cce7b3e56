package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/storage/memory"
)

const hotelID = "h1"

var fixedNow = time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func stay(t *testing.T, in, out string) domain.Stay {
	t.Helper()
	s, err := domain.NewStay(in, out)
	require.NoError(t, err)
	return s
}

// standardType is the "Standard" room type: 100 base, 120 on Fridays and
// 150 through July 2024.
func standardType() domain.RoomType {
	return domain.RoomType{
		ID: "std", HotelID: hotelID, Name: "Standard", BasePrice: dec("100"), Capacity: 2,
		WeekdayPricing: domain.WeekdayPricing{"friday": dec("120")},
		SeasonalPricing: domain.SeasonalRates{
			{Name: "Summer", Start: "2024-07-01", End: "2024-07-31", Price: dec("150")},
		},
	}
}

type env struct {
	store   *memory.Store
	catalog *app.CatalogService
	pricing *app.PricingService
	checker *app.AvailabilityChecker
	search  *app.RoomSearch
	alts    *app.AlternativeFinder
	res     *app.ReservationService
	groups  *app.GroupService
	events  *recorder
}

// newEnv seeds one hotel:
//
//	std    (100, cap 2): 101, 102, 103 (maintenance)
//	deluxe (180, cap 2): 201
//	suite  (250, cap 4): 301, 302
//	single  (80, cap 1): 401
func newEnv(t *testing.T, opts ...app.Option) *env {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	types := []domain.RoomType{
		standardType(),
		{ID: "deluxe", HotelID: hotelID, Name: "Deluxe", BasePrice: dec("180"), Capacity: 2},
		{ID: "suite", HotelID: hotelID, Name: "Suite", BasePrice: dec("250"), Capacity: 4},
		{ID: "single", HotelID: hotelID, Name: "Single", BasePrice: dec("80"), Capacity: 1},
		{ID: "other", HotelID: "h2", Name: "Elsewhere", BasePrice: dec("90"), Capacity: 2},
	}
	for _, rt := range types {
		require.NoError(t, st.UpsertRoomType(ctx, rt))
	}
	rooms := []domain.Room{
		{ID: "R101", Number: "101", RoomTypeID: "std", Status: domain.RoomVacant},
		{ID: "R102", Number: "102", RoomTypeID: "std", Status: domain.RoomVacant},
		{ID: "R103", Number: "103", RoomTypeID: "std", Status: domain.RoomMaintenance},
		{ID: "R201", Number: "201", RoomTypeID: "deluxe", Status: domain.RoomVacant},
		{ID: "R302", Number: "302", RoomTypeID: "suite", Status: domain.RoomVacant},
		{ID: "R301", Number: "301", RoomTypeID: "suite", Status: domain.RoomDirty},
		{ID: "R401", Number: "401", RoomTypeID: "single", Status: domain.RoomVacant},
	}
	for _, r := range rooms {
		r.HotelID = hotelID
		require.NoError(t, st.UpsertRoom(ctx, r))
	}
	require.NoError(t, st.UpsertRoom(ctx, domain.Room{ID: "X1", HotelID: "h2", Number: "1", RoomTypeID: "other", Status: domain.RoomVacant}))

	rec := &recorder{}
	opts = append([]app.Option{app.WithClock(func() time.Time { return fixedNow }), app.WithEvents(rec)}, opts...)

	e := &env{store: st, events: rec}
	e.catalog = app.NewCatalogService(st, nil, time.Minute)
	e.pricing = app.NewPricingService(e.catalog, dec("10"))
	e.checker = app.NewAvailabilityChecker(st)
	e.search = app.NewRoomSearch(st, e.checker)
	e.alts = app.NewAlternativeFinder(e.catalog, e.search)
	e.res = app.NewReservationService(st, e.checker, e.pricing, opts...)
	e.groups = app.NewGroupService(st, e.checker, opts...)
	return e
}

// seed inserts a reservation directly, bypassing the engine.
func (e *env) seed(t *testing.T, roomID, in, out string, status domain.ReservationStatus) domain.Reservation {
	t.Helper()
	r := domain.Reservation{
		HotelID: hotelID, ConfirmationNumber: fmt.Sprintf("SEED-%s-%s-%s-%s", roomID, in, out, status),
		CustomerID: "c0", RoomID: roomID, RoomTypeID: "std",
		CheckIn: domain.Date(in), CheckOut: domain.Date(out), Guests: 1, Status: status,
		TotalPrice: dec("100"), CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	id, err := e.store.InsertReservation(context.Background(), r)
	require.NoError(t, err)
	r.ID = id
	return r
}

func (e *env) all(t *testing.T) []domain.Reservation {
	t.Helper()
	out, err := e.store.ListReservations(context.Background(), domain.ReservationFilter{HotelID: hotelID})
	require.NoError(t, err)
	return out
}

func (e *env) room(t *testing.T, id string) domain.Room {
	t.Helper()
	r, err := e.store.GetRoom(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (e *env) reservation(t *testing.T, id string) domain.Reservation {
	t.Helper()
	r, err := e.store.GetReservation(context.Background(), id)
	require.NoError(t, err)
	return r
}

type recorder struct {
	mu    sync.Mutex
	types []string
	fail  error
}

func (r *recorder) PublishJSON(_ context.Context, key string, v any) error {
	if _, err := json.Marshal(v); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, key)
	return r.fail
}

func (r *recorder) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

func newInput(roomID, in, out string) app.CreateReservationInput {
	s, _ := domain.NewStay(in, out)
	return app.CreateReservationInput{
		HotelID: hotelID, CustomerID: "c1", RoomID: roomID, Stay: s, Guests: 2, Source: "direct",
	}
}

func ptr[T any](v T) *T { return &v }
