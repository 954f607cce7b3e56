package app

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/domain"
)

var tracer = otel.Tracer("hotel_pms/internal/app")

// maxConfirmationAttempts bounds regenerate-and-retry on a confirmation
// number collision reported by the store.
const maxConfirmationAttempts = 5

type options struct {
	now          func() time.Time
	confirmation func(time.Time) string
	events       domain.EventPublisher
}

type Option func(*options)

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithConfirmationGenerator(gen func(time.Time) string) Option {
	return func(o *options) { o.confirmation = gen }
}

func WithEvents(p domain.EventPublisher) Option { return func(o *options) { o.events = p } }

func buildOptions(opts []Option) options {
	o := options{
		now:          func() time.Time { return time.Now().UTC() },
		confirmation: NewConfirmationNumber,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

const confirmationAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewConfirmationNumber derives an uppercase alphanumeric code from the
// clock (base36 millis) plus four random characters.
func NewConfirmationNumber(now time.Time) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	max := big.NewInt(int64(len(confirmationAlphabet)))
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(confirmationAlphabet[(now.UnixNano()>>uint(i*5))%36])
			continue
		}
		b.WriteByte(confirmationAlphabet[n.Int64()])
	}
	return b.String()
}

// Event is the payload published after a committed lifecycle change.
type Event struct {
	Type               string    `json:"type"`
	HotelID            string    `json:"hotelId"`
	ReservationID      string    `json:"reservationId,omitempty"`
	ConfirmationNumber string    `json:"confirmationNumber,omitempty"`
	GroupID            string    `json:"groupId,omitempty"`
	RoomID             string    `json:"roomId,omitempty"`
	Status             string    `json:"status,omitempty"`
	OccurredAt         time.Time `json:"occurredAt"`
}

const (
	EventReservationCreated    = "reservation.created"
	EventReservationUpdated    = "reservation.updated"
	EventReservationConfirmed  = "reservation.confirmed"
	EventReservationCancelled  = "reservation.cancelled"
	EventReservationCheckedIn  = "reservation.checked_in"
	EventReservationCheckedOut = "reservation.checked_out"
	EventReservationNoShow     = "reservation.no_show"
	EventGroupCreated          = "group.created"
	EventGroupCheckedIn        = "group.checked_in"
	EventGroupCheckedOut       = "group.checked_out"
	EventGroupCancelled        = "group.cancelled"
)

func reservationEvent(typ string, r domain.Reservation, at time.Time) Event {
	e := Event{
		Type:               typ,
		HotelID:            r.HotelID,
		ReservationID:      r.ID,
		ConfirmationNumber: r.ConfirmationNumber,
		RoomID:             r.RoomID,
		Status:             string(r.Status),
		OccurredAt:         at,
	}
	if r.GroupID != nil {
		e.GroupID = *r.GroupID
	}
	return e
}

// publish is best-effort: the write it reports on has already committed.
func (o options) publish(ctx context.Context, e Event) {
	if o.events == nil {
		return
	}
	if err := o.events.PublishJSON(ctx, e.Type, e); err != nil {
		log.Warn().Err(err).
			Str("event", e.Type).
			Str("reservation_id", e.ReservationID).
			Str("group_id", e.GroupID).
			Msg("publish event failed")
	}
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func finishSpan(span trace.Span, op string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	observability.ObserveOperation(op, err)
}
