package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hotel_pms/internal/domain"
)

// CatalogService serves room types (cached) and rooms to the engine.
type CatalogService struct {
	repo     domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewCatalogService(r domain.Store, c domain.Cache, ttl time.Duration) *CatalogService {
	if c == nil {
		c = nopCache{}
	}
	return &CatalogService{repo: r, cache: c, cacheTTL: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func roomTypeKey(id string) string        { return fmt.Sprintf("roomtype:%s", id) }
func roomTypesKey(hotelID string) string  { return fmt.Sprintf("roomtypes:%s", hotelID) }
func (s *CatalogService) ttlSeconds() int { return int(s.cacheTTL.Seconds()) }

func (s *CatalogService) GetRoomType(ctx context.Context, hotelID, id string) (domain.RoomType, error) {
	key := roomTypeKey(id)
	var rt domain.RoomType
	if ok, _ := s.cache.Get(ctx, key, &rt); ok && rt.HotelID == hotelID {
		return rt, nil
	}
	rt, err := s.repo.GetRoomType(ctx, id)
	if err != nil {
		return domain.RoomType{}, domain.WrapStore("get room type", err)
	}
	if rt.HotelID != hotelID {
		return domain.RoomType{}, fmt.Errorf("room type %s: %w", id, domain.ErrNotFound)
	}
	_ = s.cache.Set(ctx, key, rt, s.ttlSeconds())
	return rt, nil
}

func (s *CatalogService) ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	key := roomTypesKey(hotelID)
	var out []domain.RoomType
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.repo.ListRoomTypes(ctx, hotelID)
	if err != nil {
		return nil, domain.WrapStore("list room types", err)
	}
	// copy so callers can't mutate what the cache holds
	cp := make([]domain.RoomType, len(out))
	copy(cp, out)
	_ = s.cache.Set(ctx, key, cp, s.ttlSeconds())
	return cp, nil
}

// PutRoomType creates or replaces a room type and evicts its cache entries.
func (s *CatalogService) PutRoomType(ctx context.Context, rt domain.RoomType) (domain.RoomType, error) {
	if strings.TrimSpace(rt.HotelID) == "" || strings.TrimSpace(rt.Name) == "" {
		return domain.RoomType{}, fmt.Errorf("%w: hotel id and name are required", domain.ErrValidation)
	}
	if rt.Capacity < 1 || rt.BasePrice.IsNegative() {
		return domain.RoomType{}, fmt.Errorf("%w: capacity must be positive and base price non-negative", domain.ErrValidation)
	}
	for _, sr := range rt.SeasonalPricing {
		if !sr.Start.Valid() || !sr.End.Valid() || sr.End < sr.Start {
			return domain.RoomType{}, fmt.Errorf("%w: seasonal range %s..%s", domain.ErrValidation, sr.Start, sr.End)
		}
	}
	for day := range rt.WeekdayPricing {
		if !isWeekdayName(day) {
			return domain.RoomType{}, fmt.Errorf("%w: unknown weekday %q", domain.ErrValidation, day)
		}
	}
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	now := s.now()
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = now
	}
	rt.UpdatedAt = now
	if err := s.repo.UpsertRoomType(ctx, rt); err != nil {
		return domain.RoomType{}, domain.WrapStore("upsert room type", err)
	}
	_ = s.cache.Del(ctx, roomTypeKey(rt.ID))
	_ = s.cache.Del(ctx, roomTypesKey(rt.HotelID))
	return rt, nil
}

func (s *CatalogService) GetRoom(ctx context.Context, hotelID, id string) (domain.Room, error) {
	r, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, domain.WrapStore("get room", err)
	}
	if r.HotelID != hotelID {
		return domain.Room{}, fmt.Errorf("room %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// PutRoom creates or replaces a room; its room type must belong to the
// same hotel.
func (s *CatalogService) PutRoom(ctx context.Context, r domain.Room) (domain.Room, error) {
	if strings.TrimSpace(r.Number) == "" {
		return domain.Room{}, fmt.Errorf("%w: room number is required", domain.ErrValidation)
	}
	if r.Status == "" {
		r.Status = domain.RoomVacant
	}
	if !r.Status.Valid() {
		return domain.Room{}, fmt.Errorf("%w: unknown room status %q", domain.ErrValidation, r.Status)
	}
	if _, err := s.GetRoomType(ctx, r.HotelID, r.RoomTypeID); err != nil {
		return domain.Room{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if err := s.repo.UpsertRoom(ctx, r); err != nil {
		return domain.Room{}, domain.WrapStore("upsert room", err)
	}
	return r, nil
}

func isWeekdayName(s string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == s {
			return true
		}
	}
	return false
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any, int) error    { return nil }
func (nopCache) Del(context.Context, string) error              { return nil }
