package app

import (
	"context"

	"github.com/shopspring/decimal"

	"hotel_pms/internal/domain"
)

const (
	PriceSourceBase     = "base"
	PriceSourceSeasonal = "seasonal"
	PriceSourceWeekday  = "weekday"
)

type NightPrice struct {
	Date   domain.Date     `json:"date"`
	Price  decimal.Decimal `json:"price"`
	Source string          `json:"source"`
}

type PriceQuote struct {
	RoomTypeID string          `json:"roomTypeId"`
	CheckIn    domain.Date     `json:"checkInDate"`
	CheckOut   domain.Date     `json:"checkOutDate"`
	Nights     int             `json:"nights"`
	Breakdown  []NightPrice    `json:"breakdown"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxRate    decimal.Decimal `json:"taxRate"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

var hundred = decimal.NewFromInt(100)

// CalculatePrice prices each night of stay: a seasonal range covering the
// night wins outright, else a weekday override, else the base price.
// Overlapping seasonal ranges resolve by list order.
func CalculatePrice(rt domain.RoomType, stay domain.Stay, taxRatePercent decimal.Decimal) (PriceQuote, error) {
	if err := stay.Check(); err != nil {
		return PriceQuote{}, err
	}
	q := PriceQuote{
		RoomTypeID: rt.ID,
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		Nights:     stay.Nights(),
		Subtotal:   decimal.Zero,
		TaxRate:    taxRatePercent,
	}
	q.Breakdown = make([]NightPrice, 0, q.Nights)
	for _, d := range stay.Dates() {
		np := NightPrice{Date: d, Price: rt.BasePrice, Source: PriceSourceBase}
		if sr, ok := rt.SeasonalPricing.Match(d); ok {
			np.Price, np.Source = sr.Price, PriceSourceSeasonal
		} else if p, ok := rt.WeekdayPricing.For(d.Weekday()); ok {
			np.Price, np.Source = p, PriceSourceWeekday
		}
		q.Breakdown = append(q.Breakdown, np)
		q.Subtotal = q.Subtotal.Add(np.Price)
	}
	q.Tax = q.Subtotal.Mul(taxRatePercent).Div(hundred).Round(2)
	q.Total = q.Subtotal.Add(q.Tax)
	return q, nil
}

type PricingService struct {
	catalog *CatalogService
	taxRate decimal.Decimal
}

func NewPricingService(c *CatalogService, taxRatePercent decimal.Decimal) *PricingService {
	return &PricingService{catalog: c, taxRate: taxRatePercent}
}

func (s *PricingService) Quote(ctx context.Context, hotelID, roomTypeID string, stay domain.Stay) (q PriceQuote, err error) {
	ctx, span := startSpan(ctx, "pricing.quote")
	defer func() { finishSpan(span, "quote", err) }()

	if err := stay.Check(); err != nil {
		return PriceQuote{}, err
	}
	rt, err := s.catalog.GetRoomType(ctx, hotelID, roomTypeID)
	if err != nil {
		return PriceQuote{}, err
	}
	return CalculatePrice(rt, stay, s.taxRate)
}
