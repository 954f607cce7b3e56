package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RoomType struct {
	ID              string          `db:"id" json:"id"`
	HotelID         string          `db:"hotel_id" json:"hotelId"`
	Name            string          `db:"name" json:"name"`
	BasePrice       decimal.Decimal `db:"base_price" json:"basePrice"`
	Capacity        int             `db:"capacity" json:"capacity"`
	WeekdayPricing  WeekdayPricing  `db:"weekday_pricing" json:"weekdayPricing,omitempty"`
	SeasonalPricing SeasonalRates   `db:"seasonal_pricing" json:"seasonalPricing,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// WeekdayPricing maps lower-case English weekday names ("monday") to a
// nightly price.
type WeekdayPricing map[string]decimal.Decimal

func (w WeekdayPricing) For(day time.Weekday) (decimal.Decimal, bool) {
	p, ok := w[strings.ToLower(day.String())]
	return p, ok
}

func (w WeekdayPricing) Value() (driver.Value, error) { return jsonValue(w) }
func (w *WeekdayPricing) Scan(src any) error          { return jsonScan(src, w) }

// SeasonalRate covers Start..End, both inclusive.
type SeasonalRate struct {
	Name  string          `json:"name,omitempty"`
	Start Date            `json:"startDate"`
	End   Date            `json:"endDate"`
	Price decimal.Decimal `json:"price"`
}

func (r SeasonalRate) Covers(d Date) bool { return d >= r.Start && d <= r.End }

type SeasonalRates []SeasonalRate

// Match returns the first range in list order covering d.
func (rs SeasonalRates) Match(d Date) (SeasonalRate, bool) {
	for _, r := range rs {
		if r.Covers(d) {
			return r, true
		}
	}
	return SeasonalRate{}, false
}

func (rs SeasonalRates) Value() (driver.Value, error) { return jsonValue(rs) }
func (rs *SeasonalRates) Scan(src any) error          { return jsonScan(src, rs) }

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
