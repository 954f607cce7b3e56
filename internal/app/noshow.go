package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_pms/internal/domain"
)

// ReservationAPI is the slice of the reservation API the sweeper drives.
type ReservationAPI interface {
	ListReservations(ctx context.Context, hotelID string, statuses []domain.ReservationStatus, checkInBefore domain.Date) ([]domain.Reservation, error)
	MarkNoShow(ctx context.Context, hotelID, id string) (domain.Reservation, error)
}

// NoShowSweeper marks pending or confirmed reservations whose check-in
// date has passed as no-shows.
type NoShowSweeper struct {
	api     ReservationAPI
	workers int64
	now     func() time.Time
}

func NewNoShowSweeper(api ReservationAPI, workers int) *NoShowSweeper {
	if workers < 1 {
		workers = 1
	}
	return &NoShowSweeper{api: api, workers: int64(workers), now: func() time.Time { return time.Now().UTC() }}
}

type SweepResult struct {
	Marked int
	Failed int
}

// Sweep processes every hotel, marking at most `workers` reservations at a
// time. A hotel whose listing fails is logged and skipped; the returned
// error joins those listing failures.
func (s *NoShowSweeper) Sweep(ctx context.Context, hotelIDs []string) (SweepResult, error) {
	today := domain.DateOf(s.now())
	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	var marked, failed atomic.Int64
	var errs []error

	for _, hotelID := range hotelIDs {
		due, err := s.api.ListReservations(ctx, hotelID,
			[]domain.ReservationStatus{domain.StatusPending, domain.StatusConfirmed}, today)
		if err != nil {
			log.Warn().Str("hotel_id", hotelID).Err(err).Msg("list due reservations failed")
			errs = append(errs, err)
			continue
		}
		for _, r := range due {
			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return SweepResult{Marked: int(marked.Load()), Failed: int(failed.Load())}, err
			}
			wg.Add(1)
			go func(r domain.Reservation) {
				defer wg.Done()
				defer sem.Release(1)

				if _, err := s.api.MarkNoShow(ctx, hotelID, r.ID); err != nil {
					failed.Add(1)
					log.Warn().Str("hotel_id", hotelID).Str("reservation_id", r.ID).Err(err).Msg("mark no-show failed")
					return
				}
				marked.Add(1)
				log.Info().Str("hotel_id", hotelID).Str("reservation_id", r.ID).
					Str("confirmation", r.ConfirmationNumber).Msg("marked no-show")
			}(r)
		}
	}

	wg.Wait()
	return SweepResult{Marked: int(marked.Load()), Failed: int(failed.Load())}, errors.Join(errs...)
}
