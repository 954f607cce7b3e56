package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date in ISO form (YYYY-MM-DD). Lexicographic order of
// the string equals calendar order.
type Date string

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: bad date %q", ErrValidation, s)
	}
	return Date(t.Format(dateLayout)), nil
}

func DateOf(t time.Time) Date { return Date(t.Format(dateLayout)) }

func (d Date) String() string { return string(d) }

func (d Date) Valid() bool {
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

// Time returns midnight UTC of d. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, _ := time.Parse(dateLayout, string(d))
	return t
}

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

func (d Date) Before(o Date) bool { return d < o }
func (d Date) After(o Date) bool  { return d > o }

func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = DateOf(v)
	case []byte:
		*d = Date(strings.TrimSpace(string(v)))
	case string:
		*d = Date(strings.TrimSpace(v))
	default:
		return fmt.Errorf("domain.Date: cannot scan %T", src)
	}
	if len(*d) > len(dateLayout) {
		*d = (*d)[:len(dateLayout)]
	}
	return nil
}

// Stay is the half-open interval [CheckIn, CheckOut).
type Stay struct {
	CheckIn  Date `json:"checkInDate"`
	CheckOut Date `json:"checkOutDate"`
}

func NewStay(in, out string) (Stay, error) {
	ci, err := ParseDate(in)
	if err != nil {
		return Stay{}, err
	}
	co, err := ParseDate(out)
	if err != nil {
		return Stay{}, err
	}
	s := Stay{CheckIn: ci, CheckOut: co}
	if err := s.Check(); err != nil {
		return Stay{}, err
	}
	return s, nil
}

// MaxStayNights bounds a single stay.
const MaxStayNights = 365

// Valid reports whether CheckOut is strictly after CheckIn.
func (s Stay) Valid() bool { return s.CheckIn != "" && s.CheckOut > s.CheckIn }

// Check returns ErrInvalidDateRange for an empty or inverted range and
// ErrValidation for a stay longer than MaxStayNights.
func (s Stay) Check() error {
	if !s.Valid() {
		return ErrInvalidDateRange
	}
	if n := s.Nights(); n > MaxStayNights {
		return fmt.Errorf("%w: stay of %d nights exceeds %d", ErrValidation, n, MaxStayNights)
	}
	return nil
}

// Overlaps is symmetric; stays that only share a boundary date never overlap.
func (s Stay) Overlaps(o Stay) bool {
	return s.CheckIn < o.CheckOut && s.CheckOut > o.CheckIn
}

func (s Stay) Nights() int {
	if !s.Valid() {
		return 0
	}
	return int(s.CheckOut.Time().Sub(s.CheckIn.Time()).Hours() / 24)
}

// Dates lists each night of the stay, check-out excluded.
func (s Stay) Dates() []Date {
	n := s.Nights()
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.CheckIn.AddDays(i))
	}
	return out
}
