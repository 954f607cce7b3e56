package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_pms/internal/domain"
)

func TestFindAlternatives(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := stay(t, "2024-07-10", "2024-07-12")

	alts, err := e.alts.FindAlternatives(ctx, hotelID, s, "std", 1)
	require.NoError(t, err)
	require.Len(t, alts, 2, "single has lower capacity")
	assert.Equal(t, "deluxe", alts[0].RoomType.ID)
	assert.Equal(t, 1, alts[0].AvailableCount)
	assert.Equal(t, "80", alts[0].PriceComparison.String())
	assert.Equal(t, "suite", alts[1].RoomType.ID)
	assert.Equal(t, "150", alts[1].PriceComparison.String())
	assert.Equal(t, []string{"301", "302"}, []string{alts[1].AvailableRooms[0].Number, alts[1].AvailableRooms[1].Number})

	alts, err = e.alts.FindAlternatives(ctx, hotelID, s, "std", 2)
	require.NoError(t, err)
	require.Len(t, alts, 1)
	assert.Equal(t, "suite", alts[0].RoomType.ID)

	e.seed(t, "R301", "2024-07-11", "2024-07-15", domain.StatusConfirmed)
	alts, err = e.alts.FindAlternatives(ctx, hotelID, s, "std", 2)
	require.NoError(t, err)
	assert.Empty(t, alts)
}

func TestFindAlternatives_FromCheaperCapacityOne(t *testing.T) {
	e := newEnv(t)
	alts, err := e.alts.FindAlternatives(context.Background(), hotelID, stay(t, "2024-07-10", "2024-07-12"), "single", 1)
	require.NoError(t, err)
	var ids []string
	for _, a := range alts {
		ids = append(ids, a.RoomType.ID)
	}
	assert.Equal(t, []string{"std", "deluxe", "suite"}, ids)
	assert.Equal(t, "25", alts[0].PriceComparison.String())
}

func TestFindAlternatives_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := stay(t, "2024-07-10", "2024-07-12")

	_, err := e.alts.FindAlternatives(ctx, hotelID, s, "std", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.alts.FindAlternatives(ctx, hotelID, s, "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.alts.FindAlternatives(ctx, hotelID, domain.Stay{CheckIn: "2024-07-12", CheckOut: "2024-07-12"}, "std", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestPriceDeltaZeroBase(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	free := standardType()
	free.ID, free.Name, free.BasePrice, free.Capacity = "free", "Comp", dec("0"), 1
	_, err := e.catalog.PutRoomType(ctx, free)
	require.NoError(t, err)

	alts, err := e.alts.FindAlternatives(ctx, hotelID, stay(t, "2024-07-10", "2024-07-12"), "free", 1)
	require.NoError(t, err)
	require.NotEmpty(t, alts)
	for _, a := range alts {
		assert.True(t, a.PriceComparison.IsZero())
	}
}
