package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"hotel_pms/internal/domain"
)

type Alternative struct {
	RoomType        domain.RoomType `json:"roomType"`
	AvailableCount  int             `json:"availableCount"`
	AvailableRooms  []domain.Room   `json:"availableRooms"`
	PriceComparison decimal.Decimal `json:"priceComparison"`
}

// AlternativeFinder proposes substitute room types when the requested one
// can't cover the quantity asked for.
type AlternativeFinder struct {
	catalog *CatalogService
	search  *RoomSearch
}

func NewAlternativeFinder(c *CatalogService, s *RoomSearch) *AlternativeFinder {
	return &AlternativeFinder{catalog: c, search: s}
}

// FindAlternatives returns room types of equal or larger capacity that can
// each cover the whole quantity on their own, cheapest base price first.
// PriceComparison is the base price delta in percent (2 decimals).
func (f *AlternativeFinder) FindAlternatives(ctx context.Context, hotelID string, stay domain.Stay, roomTypeID string, quantity int) (out []Alternative, err error) {
	ctx, span := startSpan(ctx, "rooms.find_alternatives")
	defer func() { finishSpan(span, "find_alternatives", err) }()

	if err := stay.Check(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	original, err := f.catalog.GetRoomType(ctx, hotelID, roomTypeID)
	if err != nil {
		return nil, err
	}
	types, err := f.catalog.ListRoomTypes(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	out = []Alternative{}
	for _, rt := range types {
		if rt.ID == original.ID || rt.Capacity < original.Capacity {
			continue
		}
		rooms, err := f.search.FindAvailableRooms(ctx, hotelID, stay, rt.ID)
		if err != nil {
			return nil, err
		}
		if len(rooms) < quantity {
			continue
		}
		out = append(out, Alternative{
			RoomType:        rt,
			AvailableCount:  len(rooms),
			AvailableRooms:  rooms,
			PriceComparison: priceDelta(original.BasePrice, rt.BasePrice),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RoomType.BasePrice.LessThan(out[j].RoomType.BasePrice)
	})
	return out, nil
}

// priceDelta is (candidate-original)/original*100; a free original type
// compares as 0.
func priceDelta(original, candidate decimal.Decimal) decimal.Decimal {
	if original.IsZero() {
		return decimal.Zero
	}
	return candidate.Sub(original).Div(original).Mul(hundred).Round(2)
}
