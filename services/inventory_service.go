// services/inventory_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"carrental-backend/models"

	"gorm.io/gorm"
)

// UnlimitedQuantity is returned for extras with no finite stock (TRIP
// pricing or a nil total_quantity). It is a dedicated sentinel, never
// a number that could be mistaken for real inventory.
const UnlimitedQuantity = 1<<31 - 1

// InventoryService is the single place that knows how extra stock is
// computed. Every booking entry point goes through it; no handler
// re-implements the overlap math.
type InventoryService struct {
	DB *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{DB: db}
}

type reservedRange struct {
	Quantity  int
	StartDate time.Time
	EndDate   time.Time
}

// AvailableQuantity reports how many units of an extra can still be
// reserved for every day of the inclusive range [start, end].
func (s *InventoryService) AvailableQuantity(extraID uint, start, end time.Time) (int, error) {
	var extra models.Extra
	if err := s.DB.First(&extra, extraID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrExtraNotFound
		}
		return 0, fmt.Errorf("failed to load extra %d: %w", extraID, err)
	}
	return s.AvailableQuantityTx(s.DB, &extra, start, end, 0)
}

// AvailableQuantityTx is the transactional form used inside booking
// creation/update. excludeBookingID drops one booking from the sum so
// a booking being re-dated does not conflict with itself; 0 excludes
// nothing.
//
// The binding constraint is the worst day, not the average: an item
// reserved Mon-Wed by one booking and Wed-Fri by another only truly
// collides on Wed, so the sum is taken per calendar day and the peak
// across the range decides.
func (s *InventoryService) AvailableQuantityTx(tx *gorm.DB, extra *models.Extra, start, end time.Time, excludeBookingID uint) (int, error) {
	start = TruncateToDay(start)
	end = TruncateToDay(end)
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	if !extra.Depletable() {
		return UnlimitedQuantity, nil
	}

	q := tx.Table("booking_extras").
		Select("booking_extras.quantity, bookings.start_date, bookings.end_date").
		Joins("JOIN bookings ON bookings.id = booking_extras.booking_id").
		Where("booking_extras.extra_id = ?", extra.ID).
		Where("bookings.status = ?", models.BookingStatusActive).
		Where("bookings.start_date <= ? AND bookings.end_date >= ?", end, start).
		Where("bookings.deleted_at IS NULL AND booking_extras.deleted_at IS NULL")
	if excludeBookingID != 0 {
		q = q.Where("bookings.id <> ?", excludeBookingID)
	}

	var reserved []reservedRange
	if err := q.Scan(&reserved).Error; err != nil {
		return 0, fmt.Errorf("failed to load reservations for extra %d: %w", extra.ID, err)
	}

	peak := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		booked := 0
		for _, r := range reserved {
			if !TruncateToDay(r.StartDate).After(day) && !TruncateToDay(r.EndDate).Before(day) {
				booked += r.Quantity
			}
		}
		if booked > peak {
			peak = booked
		}
	}

	available := *extra.TotalQuantity - peak
	if available < 0 {
		available = 0
	}
	return available, nil
}

// AvailabilityForRange answers the availability endpoint: one entry
// per requested extra id. Unknown ids fail the whole request.
func (s *InventoryService) AvailabilityForRange(start, end time.Time, extraIDs []uint) (map[uint]int, error) {
	if TruncateToDay(end).Before(TruncateToDay(start)) {
		return nil, ErrInvalidRange
	}

	result := make(map[uint]int, len(extraIDs))
	for _, id := range extraIDs {
		available, err := s.AvailableQuantity(id, start, end)
		if err != nil {
			return nil, err
		}
		result[id] = available
	}
	return result, nil
}
