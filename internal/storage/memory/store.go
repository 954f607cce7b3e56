// Package memory is an in-process domain.Store. Batches are validated in
// full before any op is applied, so a failing batch leaves no trace.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"hotel_pms/internal/domain"
)

type Store struct {
	mu           sync.RWMutex
	reservations map[string]domain.Reservation
	rooms        map[string]domain.Room
	roomTypes    map[string]domain.RoomType
	tasks        map[string]domain.HousekeepingTask
	order        []string // reservation ids in insert order

	// FailOn, when set, is consulted before every operation; a non-nil
	// result fails that operation without touching state.
	FailOn func(op string) error
}

func New() *Store {
	return &Store{
		reservations: map[string]domain.Reservation{},
		rooms:        map[string]domain.Room{},
		roomTypes:    map[string]domain.RoomType{},
		tasks:        map[string]domain.HousekeepingTask{},
	}
}

func (s *Store) fail(op string) error {
	if s.FailOn == nil {
		return nil
	}
	return s.FailOn(op)
}

func (s *Store) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	if err := s.fail("get reservation"); err != nil {
		return domain.Reservation{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (s *Store) ListReservations(ctx context.Context, f domain.ReservationFilter) ([]domain.Reservation, error) {
	if err := s.fail("list reservations"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Reservation{}
	for _, id := range s.order {
		r := s.reservations[id]
		if !f.Matches(r) {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) InsertReservation(ctx context.Context, r domain.Reservation) (string, error) {
	if err := s.fail("insert reservation"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkConfirmation(r.ConfirmationNumber, nil); err != nil {
		return "", err
	}
	return s.insertReservationLocked(r), nil
}

func (s *Store) UpdateReservation(ctx context.Context, id string, p domain.ReservationPatch) error {
	if err := s.fail("update reservation"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	p.Apply(&r)
	s.reservations[id] = r
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	if err := s.fail("get room"); err != nil {
		return domain.Room{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (s *Store) ListRooms(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error) {
	if err := s.fail("list rooms"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Room{}
	for _, r := range s.rooms {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) UpdateRoom(ctx context.Context, id string, p domain.RoomPatch) error {
	if err := s.fail("update room"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
	}
	s.updateRoomLocked(id, p)
	return nil
}

func (s *Store) UpsertRoom(ctx context.Context, r domain.Room) error {
	if err := s.fail("upsert room"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.rooms {
		if id != r.ID && other.HotelID == r.HotelID && other.Number == r.Number {
			return fmt.Errorf("room number %s: %w", r.Number, domain.ErrDuplicate)
		}
	}
	s.rooms[r.ID] = r
	return nil
}

func (s *Store) GetRoomType(ctx context.Context, id string) (domain.RoomType, error) {
	if err := s.fail("get room type"); err != nil {
		return domain.RoomType{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.roomTypes[id]
	if !ok {
		return domain.RoomType{}, fmt.Errorf("room type %s: %w", id, domain.ErrNotFound)
	}
	return rt, nil
}

func (s *Store) ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	if err := s.fail("list room types"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.RoomType{}
	for _, rt := range s.roomTypes {
		if rt.HotelID == hotelID {
			out = append(out, rt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpsertRoomType(ctx context.Context, rt domain.RoomType) error {
	if err := s.fail("upsert room type"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomTypes[rt.ID] = rt
	return nil
}

func (s *Store) InsertTask(ctx context.Context, t domain.HousekeepingTask) (string, error) {
	if err := s.fail("insert task"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertTaskLocked(t), nil
}

// Tasks returns queued housekeeping tasks for a hotel.
func (s *Store) Tasks(hotelID string) []domain.HousekeepingTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.HousekeepingTask{}
	for _, t := range s.tasks {
		if t.HotelID == hotelID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

func (s *Store) Apply(ctx context.Context, b *domain.Batch) ([]string, error) {
	if err := s.fail("apply batch"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// validate everything first
	pending := map[string]bool{}
	for _, op := range b.Ops() {
		switch op.Kind {
		case domain.OpInsertReservation:
			if err := s.checkConfirmation(op.Reservation.ConfirmationNumber, pending); err != nil {
				return nil, err
			}
			pending[op.Reservation.ConfirmationNumber] = true
		case domain.OpUpdateReservation:
			if _, ok := s.reservations[op.TargetID]; !ok {
				return nil, fmt.Errorf("reservation %s: %w", op.TargetID, domain.ErrNotFound)
			}
		case domain.OpUpdateRoom:
			if _, ok := s.rooms[op.TargetID]; !ok {
				return nil, fmt.Errorf("room %s: %w", op.TargetID, domain.ErrNotFound)
			}
		case domain.OpInsertTask:
		default:
			return nil, fmt.Errorf("unknown batch op %d", op.Kind)
		}
	}

	var ids []string
	for _, op := range b.Ops() {
		switch op.Kind {
		case domain.OpInsertReservation:
			ids = append(ids, s.insertReservationLocked(op.Reservation))
		case domain.OpUpdateReservation:
			r := s.reservations[op.TargetID]
			op.ReservationPatch.Apply(&r)
			s.reservations[op.TargetID] = r
		case domain.OpUpdateRoom:
			s.updateRoomLocked(op.TargetID, op.RoomPatch)
		case domain.OpInsertTask:
			ids = append(ids, s.insertTaskLocked(op.Task))
		}
	}
	return ids, nil
}

func (s *Store) checkConfirmation(number string, pending map[string]bool) error {
	if pending[number] {
		return fmt.Errorf("confirmation number %s: %w", number, domain.ErrDuplicate)
	}
	for _, r := range s.reservations {
		if r.ConfirmationNumber == number {
			return fmt.Errorf("confirmation number %s: %w", number, domain.ErrDuplicate)
		}
	}
	return nil
}

func (s *Store) insertReservationLocked(r domain.Reservation) string {
	r.ID = uuid.NewString()
	s.reservations[r.ID] = r
	s.order = append(s.order, r.ID)
	return r.ID
}

func (s *Store) insertTaskLocked(t domain.HousekeepingTask) string {
	t.ID = uuid.NewString()
	s.tasks[t.ID] = t
	return t.ID
}

func (s *Store) updateRoomLocked(id string, p domain.RoomPatch) {
	r := s.rooms[id]
	if p.Status != nil {
		r.Status = *p.Status
	}
	if !p.UpdatedAt.IsZero() {
		r.UpdatedAt = p.UpdatedAt
	}
	s.rooms[id] = r
}
