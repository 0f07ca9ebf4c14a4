// services/booking_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"carrental-backend/models"
	"carrental-backend/utils"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentVerifier confirms that a payment order was actually captured
// before a paid booking row may exist. Implemented by utils.PayPalClient;
// tests stub it.
type PaymentVerifier interface {
	OrderCaptured(orderID string) (transactionID string, err error)
}

// BookingService owns the booking lifecycle: creation, status
// transitions and the query surface. All check-then-act sequences run
// inside a single transaction with the vehicle and extra rows locked,
// so two concurrent creates for overlapping resources cannot both
// pass the availability checks and both commit.
type BookingService struct {
	DB        *gorm.DB
	Inventory *InventoryService
	Payments  PaymentVerifier
}

func NewBookingService(db *gorm.DB, inventory *InventoryService, payments PaymentVerifier) *BookingService {
	return &BookingService{DB: db, Inventory: inventory, Payments: payments}
}

type ExtraRequest struct {
	ExtraID  uint `json:"id"`
	Quantity int  `json:"quantity"`
}

type CreateBookingInput struct {
	VehicleID     uint
	UserID        uint
	StartDate     string
	EndDate       string
	Extras        []ExtraRequest
	TotalPrice    float64
	PayPalOrderID string
}

type UpdateBookingInput struct {
	StartDate *string
	EndDate   *string
	Status    *string
}

// lockForUpdate adds FOR UPDATE where the dialect supports it. sqlite
// serializes writers on its own, so the clause is skipped there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// isRetryableDBErr matches MySQL deadlock (1213) and lock wait
// timeout (1205), the only class the service retries internally.
func isRetryableDBErr(err error) bool {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}

// HasConflict reports whether any active booking for the vehicle
// overlaps the inclusive range. Adjacent bookings sharing a day count
// as a conflict (same-day handoff is not allowed).
func (s *BookingService) HasConflict(vehicleID uint, start, end time.Time) (bool, error) {
	return s.hasConflictTx(s.DB, vehicleID, start, end, 0)
}

func (s *BookingService) hasConflictTx(tx *gorm.DB, vehicleID uint, start, end time.Time, excludeBookingID uint) (bool, error) {
	q := tx.Model(&models.Booking{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, models.BookingStatusActive).
		Where("start_date <= ? AND end_date >= ?", TruncateToDay(end), TruncateToDay(start))
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check vehicle conflicts: %w", err)
	}
	return count > 0, nil
}

// mergeExtraRequests collapses duplicate extra ids and rejects
// non-positive quantities.
func mergeExtraRequests(reqs []ExtraRequest) ([]ExtraRequest, error) {
	byID := map[uint]int{}
	order := make([]uint, 0, len(reqs))
	for _, r := range reqs {
		if r.ExtraID == 0 || r.Quantity <= 0 {
			return nil, fmt.Errorf("%w: extra entries need a valid id and a positive quantity", ErrInvalidRequest)
		}
		if _, seen := byID[r.ExtraID]; !seen {
			order = append(order, r.ExtraID)
		}
		byID[r.ExtraID] += r.Quantity
	}
	merged := make([]ExtraRequest, 0, len(order))
	for _, id := range order {
		merged = append(merged, ExtraRequest{ExtraID: id, Quantity: byID[id]})
	}
	return merged, nil
}

func computeTotalPrice(dailyPrice float64, days int, extras []models.BookingExtra, byID map[uint]models.Extra) float64 {
	total := dailyPrice * float64(days)
	for _, be := range extras {
		extra, ok := byID[be.ExtraID]
		if !ok {
			continue
		}
		if extra.PriceType == models.PriceTypeDaily {
			total += extra.PriceAmount * float64(be.Quantity) * float64(days)
		} else {
			total += extra.PriceAmount * float64(be.Quantity)
		}
	}
	return total
}

// Create validates the request, verifies payment, and inserts the
// booking plus its extras atomically. Precondition order is fixed:
// request shape, then vehicle conflict, then extras availability —
// first failure wins.
func (s *BookingService) Create(input CreateBookingInput) (*models.Booking, error) {
	if input.VehicleID == 0 || input.UserID == 0 || input.StartDate == "" || input.EndDate == "" {
		return nil, fmt.Errorf("%w: vehicle_id, user_id, start_date and end_date are required", ErrInvalidRequest)
	}

	start, err := ParseDate(input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start_date: %v", ErrInvalidRequest, err)
	}
	end, err := ParseDate(input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end_date: %v", ErrInvalidRequest, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start_date is after end_date", ErrInvalidRequest)
	}

	extraReqs, err := mergeExtraRequests(input.Extras)
	if err != nil {
		return nil, err
	}

	// Payment confirmation precedes booking creation: a booking must
	// never represent an unconfirmed payment.
	isPaid := false
	transactionID := ""
	if input.PayPalOrderID != "" {
		if s.Payments == nil {
			return nil, fmt.Errorf("%w: no payment verifier configured", ErrPaymentNotCaptured)
		}
		txID, perr := s.Payments.OrderCaptured(input.PayPalOrderID)
		if perr != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentNotCaptured, perr)
		}
		isPaid = true
		transactionID = txID
	}

	var bookingID uint
	attempt := func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var vehicle models.Vehicle
			if err := lockForUpdate(tx).First(&vehicle, input.VehicleID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVehicleNotFound
				}
				return fmt.Errorf("failed to load vehicle %d: %w", input.VehicleID, err)
			}

			var user models.User
			if err := tx.First(&user, input.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return fmt.Errorf("failed to load user %d: %w", input.UserID, err)
			}

			conflict, err := s.hasConflictTx(tx, vehicle.ID, start, end, 0)
			if err != nil {
				return err
			}
			if conflict {
				return ErrVehicleUnavailable
			}

			extrasByID := make(map[uint]models.Extra, len(extraReqs))
			for _, req := range extraReqs {
				var extra models.Extra
				if err := lockForUpdate(tx).First(&extra, req.ExtraID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: extra %d does not exist", ErrInvalidRequest, req.ExtraID)
					}
					return fmt.Errorf("failed to load extra %d: %w", req.ExtraID, err)
				}
				available, err := s.Inventory.AvailableQuantityTx(tx, &extra, start, end, 0)
				if err != nil {
					return err
				}
				if available < req.Quantity {
					return &ExtraUnavailableError{
						ExtraID:   extra.ID,
						ExtraName: extra.Name,
						Requested: req.Quantity,
						Available: available,
					}
				}
				extrasByID[extra.ID] = extra
			}

			bookingExtras := make([]models.BookingExtra, 0, len(extraReqs))
			for _, req := range extraReqs {
				extra := extrasByID[req.ExtraID]
				bookingExtras = append(bookingExtras, models.BookingExtra{
					ExtraID:   extra.ID,
					ExtraName: extra.Name,
					Quantity:  req.Quantity,
				})
			}

			days := RentalDays(start, end)
			total := input.TotalPrice
			if total <= 0 {
				total = computeTotalPrice(vehicle.PricePerDay, days, bookingExtras, extrasByID)
			}

			booking := models.Booking{
				VehicleID:           vehicle.ID,
				UserID:              user.ID,
				ReferenceCode:       utils.NewReferenceCode(),
				Status:              models.BookingStatusActive,
				StartDate:           start,
				EndDate:             end,
				DailyPrice:          vehicle.PricePerDay,
				TotalPrice:          total,
				PayPalOrderID:       input.PayPalOrderID,
				PayPalTransactionID: transactionID,
				IsPaid:              isPaid,
			}
			if err := tx.Create(&booking).Error; err != nil {
				return fmt.Errorf("failed to create booking: %w", err)
			}

			for i := range bookingExtras {
				bookingExtras[i].BookingID = booking.ID
				if err := tx.Create(&bookingExtras[i]).Error; err != nil {
					return fmt.Errorf("failed to create booking extra %d: %w", bookingExtras[i].ExtraID, err)
				}
			}

			bookingID = booking.ID
			return nil
		})
	}

	err = attempt()
	if isRetryableDBErr(err) {
		log.Printf("booking create hit a lock conflict, retrying once (vehicle=%d)", input.VehicleID)
		err = attempt()
	}
	if err != nil {
		if isRetryableDBErr(err) {
			return nil, fmt.Errorf("%w: %v", ErrResourceConflict, err)
		}
		return nil, err
	}

	booking, err := s.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	// Confirmation mail is best-effort: the booking is already
	// committed and a send failure must not roll it back.
	if mailErr := utils.SendBookingConfirmationEmail(
		booking.User.Email,
		booking.User.FullName,
		booking.ReferenceCode,
		fmt.Sprintf("%d %s %s", booking.Vehicle.Year, booking.Vehicle.Make, booking.Vehicle.Model),
		booking.StartDate.Format("2006-01-02"),
		booking.EndDate.Format("2006-01-02"),
		booking.TotalPrice,
	); mailErr != nil {
		log.Printf("warning: confirmation email for booking %d failed: %v", booking.ID, mailErr)
	}

	return booking, nil
}

// Transition moves a booking forward: active -> completed or
// active -> cancelled. Repeating a terminal state is a no-op; any
// other move fails. Inventory release is structural — the ledger only
// counts active bookings — so flipping the status releases exactly
// once no matter how often the transition is requested.
func (s *BookingService) Transition(bookingID uint, newStatus string) (*models.Booking, error) {
	if newStatus != models.BookingStatusCompleted && newStatus != models.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: %q is not a terminal status", ErrInvalidTransition, newStatus)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := lockForUpdate(tx).First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking %d: %w", bookingID, err)
		}

		if booking.Status == newStatus {
			return nil // idempotent
		}
		if booking.Terminal() {
			return fmt.Errorf("%w: booking %d is already %s", ErrInvalidTransition, bookingID, booking.Status)
		}

		if err := tx.Model(&booking).Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("failed to update booking %d status: %w", bookingID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(bookingID)
}

// Update applies a partial change to start_date/end_date/status.
// Changing the dates of an active booking re-validates the conflict
// and extras checks exactly as creation does, excluding the booking
// itself from the sums.
func (s *BookingService) Update(bookingID uint, input UpdateBookingInput) (*models.Booking, error) {
	if input.StartDate == nil && input.EndDate == nil && input.Status == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidRequest)
	}

	// Pure status change goes through the lifecycle transition.
	if input.StartDate == nil && input.EndDate == nil {
		return s.Transition(bookingID, *input.Status)
	}
	if input.Status != nil && *input.Status != models.BookingStatusActive {
		return nil, fmt.Errorf("%w: date changes only apply to active bookings", ErrInvalidTransition)
	}

	attempt := func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			var booking models.Booking
			if err := lockForUpdate(tx).Preload("Extras").First(&booking, bookingID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrBookingNotFound
				}
				return fmt.Errorf("failed to load booking %d: %w", bookingID, err)
			}
			if booking.Status != models.BookingStatusActive {
				return fmt.Errorf("%w: only active bookings can be re-dated", ErrInvalidTransition)
			}

			// Lock the vehicle row so a re-date serializes with creates
			// and other re-dates for the same vehicle. Without it the
			// conflict count is a plain consistent read and two
			// transactions can both pass it.
			var vehicle models.Vehicle
			if err := lockForUpdate(tx).First(&vehicle, booking.VehicleID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVehicleNotFound
				}
				return fmt.Errorf("failed to load vehicle %d: %w", booking.VehicleID, err)
			}

			start := booking.StartDate
			end := booking.EndDate
			if input.StartDate != nil {
				t, err := ParseDate(*input.StartDate)
				if err != nil {
					return fmt.Errorf("%w: invalid start_date: %v", ErrInvalidRequest, err)
				}
				start = t
			}
			if input.EndDate != nil {
				t, err := ParseDate(*input.EndDate)
				if err != nil {
					return fmt.Errorf("%w: invalid end_date: %v", ErrInvalidRequest, err)
				}
				end = t
			}
			if end.Before(start) {
				return fmt.Errorf("%w: start_date is after end_date", ErrInvalidRequest)
			}

			conflict, err := s.hasConflictTx(tx, booking.VehicleID, start, end, booking.ID)
			if err != nil {
				return err
			}
			if conflict {
				return ErrVehicleUnavailable
			}

			extrasByID := make(map[uint]models.Extra, len(booking.Extras))
			for _, be := range booking.Extras {
				// Unscoped: a soft-deleted extra is no longer bookable,
				// but this booking already holds it and its price still
				// counts toward the new total.
				var extra models.Extra
				if err := lockForUpdate(tx.Unscoped()).First(&extra, be.ExtraID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: extra %d no longer exists", ErrInvalidRequest, be.ExtraID)
					}
					return fmt.Errorf("failed to load extra %d: %w", be.ExtraID, err)
				}
				available, err := s.Inventory.AvailableQuantityTx(tx, &extra, start, end, booking.ID)
				if err != nil {
					return err
				}
				if available < be.Quantity {
					return &ExtraUnavailableError{
						ExtraID:   extra.ID,
						ExtraName: be.ExtraName,
						Requested: be.Quantity,
						Available: available,
					}
				}
				extrasByID[extra.ID] = extra
			}

			updates := map[string]interface{}{
				"start_date":  start,
				"end_date":    end,
				"total_price": computeTotalPrice(booking.DailyPrice, RentalDays(start, end), booking.Extras, extrasByID),
			}
			if err := tx.Model(&booking).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update booking %d: %w", bookingID, err)
			}
			return nil
		})
	}

	err := attempt()
	if isRetryableDBErr(err) {
		log.Printf("booking update hit a lock conflict, retrying once (booking=%d)", bookingID)
		err = attempt()
	}
	if err != nil {
		if isRetryableDBErr(err) {
			return nil, fmt.Errorf("%w: %v", ErrResourceConflict, err)
		}
		return nil, err
	}
	return s.GetByID(bookingID)
}

// Cancel is the public terminal path: history stays, inventory is
// released by the status flip.
func (s *BookingService) Cancel(bookingID uint) (*models.Booking, error) {
	return s.Transition(bookingID, models.BookingStatusCancelled)
}

// Delete hard-removes a booking and its extras. Administrative
// override only; normal flow cancels instead.
func (s *BookingService) Delete(bookingID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking %d: %w", bookingID, err)
		}
		if err := tx.Unscoped().Where("booking_id = ?", bookingID).Delete(&models.BookingExtra{}).Error; err != nil {
			return fmt.Errorf("failed to delete booking extras: %w", err)
		}
		if err := tx.Unscoped().Delete(&booking).Error; err != nil {
			return fmt.Errorf("failed to delete booking %d: %w", bookingID, err)
		}
		return nil
	})
}

// GetByID resolves the booking with vehicle, user and extras for
// confirmation display.
func (s *BookingService) GetByID(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.
		Preload("Vehicle").
		Preload("Vehicle.Images").
		Preload("User").
		Preload("Extras").
		Preload("Extras.Extra").
		First(&booking, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to retrieve booking %d: %w", bookingID, err)
	}
	if booking.Extras == nil {
		booking.Extras = []models.BookingExtra{}
	}
	return &booking, nil
}

// ListByUser returns the user's bookings, newest first.
func (s *BookingService) ListByUser(userID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := s.DB.
		Preload("Vehicle").
		Preload("Vehicle.Images").
		Preload("Extras").
		Preload("Extras.Extra").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings for user %d: %w", userID, err)
	}
	for i := range list {
		if list[i].Extras == nil {
			list[i].Extras = []models.BookingExtra{}
		}
	}
	return list, nil
}

// ListAll is the admin view.
func (s *BookingService) ListAll() ([]models.Booking, error) {
	var list []models.Booking
	err := s.DB.
		Preload("Vehicle").
		Preload("User").
		Preload("Extras").
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}
