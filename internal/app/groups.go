package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"hotel_pms/internal/domain"
)

// precheckConcurrency bounds parallel availability lookups for one group.
const precheckConcurrency = 4

// GroupService books several rooms as one unit. Every write it makes for a
// group goes through a single Store.Apply batch.
type GroupService struct {
	store   domain.Store
	checker *AvailabilityChecker
	opts    options
}

func NewGroupService(s domain.Store, c *AvailabilityChecker, opts ...Option) *GroupService {
	return &GroupService{store: s, checker: c, opts: buildOptions(opts)}
}

type GroupRoom struct {
	RoomID     string
	RoomTypeID string
	Guests     int
	TotalPrice decimal.Decimal
}

type CreateGroupInput struct {
	HotelID    string
	CustomerID string
	Stay       domain.Stay
	Source     string
	Notes      *string
	Rooms      []GroupRoom
}

// CreateGroupBooking checks every room before writing anything and then
// inserts all members in one atomic batch. It returns the new group id.
func (s *GroupService) CreateGroupBooking(ctx context.Context, in CreateGroupInput) (groupID string, err error) {
	ctx, span := startSpan(ctx, "group.create")
	defer func() { finishSpan(span, "group_create", err) }()

	if err := in.Stay.Check(); err != nil {
		return "", err
	}
	if len(in.Rooms) == 0 {
		return "", domain.ErrEmptyGroup
	}
	items, err := s.precheck(ctx, in)
	if err != nil {
		return "", err
	}

	groupID = uuid.NewString()
	size := len(items)
	now := s.opts.now()
	for attempt := 0; attempt < maxConfirmationAttempts; attempt++ {
		var b domain.Batch
		for i, it := range items {
			gid, gsize, gidx := groupID, size, i+1
			b.InsertReservation(domain.Reservation{
				HotelID:            in.HotelID,
				ConfirmationNumber: s.opts.confirmation(now),
				CustomerID:         in.CustomerID,
				RoomID:             it.RoomID,
				RoomTypeID:         it.RoomTypeID,
				CheckIn:            in.Stay.CheckIn,
				CheckOut:           in.Stay.CheckOut,
				Guests:             it.Guests,
				Source:             in.Source,
				Status:             domain.StatusPending,
				TotalPrice:         it.TotalPrice,
				PaidAmount:         decimal.Zero,
				Notes:              in.Notes,
				IsGroupBooking:     true,
				GroupID:            &gid,
				GroupSize:          &gsize,
				GroupIndex:         &gidx,
				CreatedAt:          now,
				UpdatedAt:          now,
			})
		}
		_, err = s.store.Apply(ctx, &b)
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		if err != nil {
			return "", domain.WrapStore("create group booking", err)
		}
		s.opts.publish(ctx, Event{Type: EventGroupCreated, HotelID: in.HotelID, GroupID: groupID,
			Status: string(domain.StatusPending), OccurredAt: now})
		return groupID, nil
	}
	return "", &domain.StoreError{Op: "create group booking", Err: err}
}

// precheck resolves each line item against the hotel's rooms and checks
// availability. The first failing item, in request order, is reported.
func (s *GroupService) precheck(ctx context.Context, in CreateGroupInput) ([]GroupRoom, error) {
	items := make([]GroupRoom, len(in.Rooms))
	seen := make(map[string]bool, len(in.Rooms))
	errs := make([]error, len(in.Rooms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(precheckConcurrency)
	for i, it := range in.Rooms {
		if seen[it.RoomID] {
			// two members can't share a room over the same dates
			errs[i] = &domain.RoomUnavailableError{RoomID: it.RoomID}
			continue
		}
		seen[it.RoomID] = true
		g.Go(func() error {
			room, err := s.store.GetRoom(gctx, it.RoomID)
			if err != nil {
				errs[i] = domain.WrapStore("get room", err)
				return nil
			}
			if room.HotelID != in.HotelID {
				errs[i] = fmt.Errorf("room %s: %w", it.RoomID, domain.ErrNotFound)
				return nil
			}
			ok, err := s.checker.IsAvailable(gctx, in.HotelID, it.RoomID, in.Stay, "")
			if err != nil {
				errs[i] = err
				return nil
			}
			if !ok {
				errs[i] = &domain.RoomUnavailableError{RoomID: it.RoomID}
				return nil
			}
			if it.RoomTypeID == "" {
				it.RoomTypeID = room.RoomTypeID
			}
			items[i] = it
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Members returns the group's reservations ordered by group index.
func (s *GroupService) Members(ctx context.Context, hotelID, groupID string) ([]domain.Reservation, error) {
	ms, err := s.store.ListReservations(ctx, domain.ReservationFilter{HotelID: hotelID, GroupID: groupID})
	if err != nil {
		return nil, domain.WrapStore("list group members", err)
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("group %s: %w", groupID, domain.ErrNotFound)
	}
	sort.SliceStable(ms, func(i, j int) bool { return groupIndex(ms[i]) < groupIndex(ms[j]) })
	return ms, nil
}

func (s *GroupService) GetGroup(ctx context.Context, hotelID, groupID string) (domain.Group, error) {
	ms, err := s.Members(ctx, hotelID, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	return domain.Group{ID: groupID, HotelID: hotelID, Members: ms, Total: sumTotals(ms)}, nil
}

// CalculateGroupTotal sums the members' snapshotted prices.
func (s *GroupService) CalculateGroupTotal(ctx context.Context, hotelID, groupID string) (decimal.Decimal, error) {
	ms, err := s.Members(ctx, hotelID, groupID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumTotals(ms), nil
}

// CheckInGroup checks in every member and occupies every room, or changes
// nothing if any member is not pending or confirmed.
func (s *GroupService) CheckInGroup(ctx context.Context, hotelID, groupID string) (err error) {
	ctx, span := startSpan(ctx, "group.check_in")
	defer func() { finishSpan(span, "group_check_in", err) }()

	ms, err := s.Members(ctx, hotelID, groupID)
	if err != nil {
		return err
	}
	for _, m := range ms {
		if !m.Status.Editable() {
			return fmt.Errorf("group %s: member %s is %s: %w", groupID, m.ID, m.Status, domain.ErrInvalidState)
		}
	}
	now := s.opts.now()
	occupied := domain.RoomOccupied
	var b domain.Batch
	for _, m := range ms {
		b.UpdateReservation(m.ID, domain.StatusPatch(domain.StatusCheckedIn, now))
	}
	for _, roomID := range distinctRooms(ms) {
		b.UpdateRoom(roomID, domain.RoomPatch{Status: &occupied, UpdatedAt: now})
	}
	if _, err := s.store.Apply(ctx, &b); err != nil {
		return domain.WrapStore("check in group", err)
	}
	s.opts.publish(ctx, Event{Type: EventGroupCheckedIn, HotelID: hotelID, GroupID: groupID,
		Status: string(domain.StatusCheckedIn), OccurredAt: now})
	return nil
}

// CheckOutGroup checks out every member, marks every room dirty and queues
// one cleaning task per room, or changes nothing unless all members are
// checked in.
func (s *GroupService) CheckOutGroup(ctx context.Context, hotelID, groupID string) (err error) {
	ctx, span := startSpan(ctx, "group.check_out")
	defer func() { finishSpan(span, "group_check_out", err) }()

	ms, err := s.Members(ctx, hotelID, groupID)
	if err != nil {
		return err
	}
	for _, m := range ms {
		if m.Status != domain.StatusCheckedIn {
			return fmt.Errorf("group %s: member %s is %s: %w", groupID, m.ID, m.Status, domain.ErrInvalidState)
		}
	}
	now := s.opts.now()
	dirty := domain.RoomDirty
	var b domain.Batch
	for _, m := range ms {
		b.UpdateReservation(m.ID, domain.StatusPatch(domain.StatusCheckedOut, now))
	}
	byRoom := make(map[string]string, len(ms))
	for _, m := range ms {
		if _, ok := byRoom[m.RoomID]; !ok {
			byRoom[m.RoomID] = m.ID
		}
	}
	for _, roomID := range distinctRooms(ms) {
		b.UpdateRoom(roomID, domain.RoomPatch{Status: &dirty, UpdatedAt: now})
		b.InsertTask(domain.NewCleanTask(hotelID, roomID, byRoom[roomID], now))
	}
	if _, err := s.store.Apply(ctx, &b); err != nil {
		return domain.WrapStore("check out group", err)
	}
	s.opts.publish(ctx, Event{Type: EventGroupCheckedOut, HotelID: hotelID, GroupID: groupID,
		Status: string(domain.StatusCheckedOut), OccurredAt: now})
	return nil
}

// CancelGroupBooking cancels every member regardless of status.
func (s *GroupService) CancelGroupBooking(ctx context.Context, hotelID, groupID string) (err error) {
	ctx, span := startSpan(ctx, "group.cancel")
	defer func() { finishSpan(span, "group_cancel", err) }()

	ms, err := s.Members(ctx, hotelID, groupID)
	if err != nil {
		return err
	}
	now := s.opts.now()
	var b domain.Batch
	for _, m := range ms {
		b.UpdateReservation(m.ID, domain.StatusPatch(domain.StatusCancelled, now))
	}
	if _, err := s.store.Apply(ctx, &b); err != nil {
		return domain.WrapStore("cancel group", err)
	}
	s.opts.publish(ctx, Event{Type: EventGroupCancelled, HotelID: hotelID, GroupID: groupID,
		Status: string(domain.StatusCancelled), OccurredAt: now})
	return nil
}

func groupIndex(r domain.Reservation) int {
	if r.GroupIndex == nil {
		return 0
	}
	return *r.GroupIndex
}

func sumTotals(ms []domain.Reservation) decimal.Decimal {
	total := decimal.Zero
	for _, m := range ms {
		total = total.Add(m.TotalPrice)
	}
	return total
}

func distinctRooms(ms []domain.Reservation) []string {
	seen := make(map[string]bool, len(ms))
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		if !seen[m.RoomID] {
			seen[m.RoomID] = true
			out = append(out, m.RoomID)
		}
	}
	return out
}
