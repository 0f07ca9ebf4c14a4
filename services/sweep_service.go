// services/sweep_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"carrental-backend/models"

	"gorm.io/gorm"
)

// SweepService reconciles stale bookings: anything still active whose
// end date has fully elapsed is completed, which releases its held
// inventory. It runs from a ticker in main and from the cron endpoint;
// duplicate triggers are harmless because the transition is
// idempotent.
type SweepService struct {
	DB       *gorm.DB
	Bookings *BookingService
}

func NewSweepService(db *gorm.DB, bookings *BookingService) *SweepService {
	return &SweepService{DB: db, Bookings: bookings}
}

// CompleteExpired transitions every active booking whose inclusive
// end date lies strictly before today. Each booking gets its own
// short transaction so the sweep never holds the ledger locked across
// the whole batch and cannot deadlock with concurrent creates; a
// failure on one booking does not abort the rest.
func (s *SweepService) CompleteExpired(now time.Time) (int, error) {
	cutoff := TruncateToDay(now)

	var ids []uint
	err := s.DB.Model(&models.Booking{}).
		Where("status = ? AND end_date < ?", models.BookingStatusActive, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list expired bookings: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	processed := 0
	for _, id := range ids {
		if _, err := s.Bookings.Transition(id, models.BookingStatusCompleted); err != nil {
			log.Printf("sweep: failed to complete booking %d: %v", id, err)
			continue
		}
		processed++
	}

	log.Printf("sweep: completed %d of %d expired bookings", processed, len(ids))
	return processed, nil
}

// Run loops CompleteExpired on the given interval until stop is
// closed. Started as a goroutine from main.
func (s *SweepService) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.CompleteExpired(time.Now().UTC()); err != nil {
				log.Printf("sweep: run failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}
