package services

import (
	"errors"
	"math/rand"
	"testing"

	"carrental-backend/models"
)

func TestCreate_HappyPathWithExtras(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "happy@test.local")
	v := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(5))
	insurance := seedExtra(t, db, "Full Insurance", models.PriceTypeTrip, 45, nil)

	booking, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID,
		UserID:    user.ID,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-03",
		Extras: []ExtraRequest{
			{ExtraID: seat.ID, Quantity: 2},
			{ExtraID: insurance.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if booking.Status != models.BookingStatusActive {
		t.Errorf("status = %q, want active", booking.Status)
	}
	if booking.ReferenceCode == "" {
		t.Error("reference code not assigned")
	}
	if booking.DailyPrice != 50 {
		t.Errorf("daily price = %v, want 50 (vehicle rate captured)", booking.DailyPrice)
	}
	// 3 days * 50 + 2 seats * 8 * 3 days + flat 45 = 243
	if booking.TotalPrice != 243 {
		t.Errorf("total price = %v, want 243", booking.TotalPrice)
	}
	if len(booking.Extras) != 2 {
		t.Fatalf("extras = %d, want 2", len(booking.Extras))
	}
	for _, be := range booking.Extras {
		if be.ExtraName == "" {
			t.Errorf("extra %d missing name snapshot", be.ExtraID)
		}
	}
}

func TestCreate_DuplicateExtraEntriesMerge(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "merge@test.local")
	v := seedVehicle(t, db, 40)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(5))

	booking, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID,
		UserID:    user.ID,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-01",
		Extras: []ExtraRequest{
			{ExtraID: seat.ID, Quantity: 1},
			{ExtraID: seat.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(booking.Extras) != 1 {
		t.Fatalf("extras rows = %d, want 1 merged row", len(booking.Extras))
	}
	if booking.Extras[0].Quantity != 3 {
		t.Errorf("merged quantity = %d, want 3", booking.Extras[0].Quantity)
	}
}

func TestCreate_VehicleConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "conflict@test.local")
	v := seedVehicle(t, db, 50)
	seedBooking(t, db, v.ID, user.ID, models.BookingStatusActive, "2026-06-03", "2026-06-06")

	cases := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{"fully inside", "2026-06-04", "2026-06-05", true},
		{"overlapping the start", "2026-06-01", "2026-06-03", true},
		{"overlapping the end", "2026-06-06", "2026-06-08", true},
		{"surrounding", "2026-06-01", "2026-06-08", true},
		{"same-day handoff at end", "2026-06-06", "2026-06-06", true},
		{"day before", "2026-06-01", "2026-06-02", false},
		{"day after", "2026-06-07", "2026-06-08", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(CreateBookingInput{
				VehicleID: v.ID,
				UserID:    user.ID,
				StartDate: tc.start,
				EndDate:   tc.end,
			})
			if tc.wantErr {
				if !errors.Is(err, ErrVehicleUnavailable) {
					t.Errorf("got %v, want ErrVehicleUnavailable", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreate_ConflictIgnoresTerminalBookings(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "terminal@test.local")
	v := seedVehicle(t, db, 50)
	seedBooking(t, db, v.ID, user.ID, models.BookingStatusCancelled, "2026-06-01", "2026-06-10")
	seedBooking(t, db, v.ID, user.ID, models.BookingStatusCompleted, "2026-06-01", "2026-06-10")

	if _, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID,
		UserID:    user.ID,
		StartDate: "2026-06-04",
		EndDate:   "2026-06-06",
	}); err != nil {
		t.Fatalf("Create over terminal bookings: %v", err)
	}
}

func TestCreate_ExtraShortfallReportsDetails(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "shortfall@test.local")
	v1 := seedVehicle(t, db, 50)
	v2 := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(3))

	seedBooking(t, db, v1.ID, user.ID, models.BookingStatusActive, "2026-06-01", "2026-06-05",
		models.BookingExtra{ExtraID: seat.ID, ExtraName: seat.Name, Quantity: 2})

	_, err := svc.Create(CreateBookingInput{
		VehicleID: v2.ID,
		UserID:    user.ID,
		StartDate: "2026-06-03",
		EndDate:   "2026-06-04",
		Extras:    []ExtraRequest{{ExtraID: seat.ID, Quantity: 2}},
	})

	var unavailable *ExtraUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("got %v, want ExtraUnavailableError", err)
	}
	if unavailable.ExtraID != seat.ID || unavailable.ExtraName != "Child Seat" {
		t.Errorf("error names extra %d %q, want %d %q", unavailable.ExtraID, unavailable.ExtraName, seat.ID, "Child Seat")
	}
	if unavailable.Requested != 2 || unavailable.Available != 1 {
		t.Errorf("requested/available = %d/%d, want 2/1", unavailable.Requested, unavailable.Available)
	}

	// The failed attempt must leave nothing behind.
	var count int64
	if err := db.Model(&models.Booking{}).Where("vehicle_id = ?", v2.ID).Count(&count).Error; err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if count != 0 {
		t.Errorf("found %d bookings for the rejected request, want 0", count)
	}
}

func TestCreate_InvalidInput(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "invalid@test.local")
	v := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(5))

	cases := []struct {
		name  string
		input CreateBookingInput
	}{
		{"missing vehicle", CreateBookingInput{UserID: user.ID, StartDate: "2026-06-01", EndDate: "2026-06-02"}},
		{"missing dates", CreateBookingInput{VehicleID: v.ID, UserID: user.ID}},
		{"inverted range", CreateBookingInput{VehicleID: v.ID, UserID: user.ID, StartDate: "2026-06-05", EndDate: "2026-06-01"}},
		{"garbage date", CreateBookingInput{VehicleID: v.ID, UserID: user.ID, StartDate: "tomorrow", EndDate: "2026-06-01"}},
		{"zero quantity extra", CreateBookingInput{
			VehicleID: v.ID, UserID: user.ID, StartDate: "2026-06-01", EndDate: "2026-06-02",
			Extras: []ExtraRequest{{ExtraID: seat.ID, Quantity: 0}},
		}},
		{"unknown extra", CreateBookingInput{
			VehicleID: v.ID, UserID: user.ID, StartDate: "2026-06-01", EndDate: "2026-06-02",
			Extras: []ExtraRequest{{ExtraID: 9999, Quantity: 1}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(tc.input); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("got %v, want ErrInvalidRequest", err)
			}
		})
	}

	if _, err := svc.Create(CreateBookingInput{
		VehicleID: 9999, UserID: user.ID, StartDate: "2026-06-01", EndDate: "2026-06-02",
	}); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("unknown vehicle: got %v, want ErrVehicleNotFound", err)
	}
	if _, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID, UserID: 9999, StartDate: "2026-06-01", EndDate: "2026-06-02",
	}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: got %v, want ErrUserNotFound", err)
	}
}

func TestCreate_PaymentVerification(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "pay@test.local")
	v := seedVehicle(t, db, 50)

	t.Run("captured order marks booking paid", func(t *testing.T) {
		svc := NewBookingService(db, NewInventoryService(db), stubVerifier{txID: "CAP-123"})
		booking, err := svc.Create(CreateBookingInput{
			VehicleID:     v.ID,
			UserID:        user.ID,
			StartDate:     "2026-06-01",
			EndDate:       "2026-06-02",
			PayPalOrderID: "ORDER-1",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if !booking.IsPaid {
			t.Error("booking not marked paid")
		}
		if booking.PayPalTransactionID != "CAP-123" {
			t.Errorf("transaction id = %q, want CAP-123", booking.PayPalTransactionID)
		}
	})

	t.Run("uncaptured order rejects the booking", func(t *testing.T) {
		svc := NewBookingService(db, NewInventoryService(db), stubVerifier{err: errors.New("order not completed")})
		_, err := svc.Create(CreateBookingInput{
			VehicleID:     v.ID,
			UserID:        user.ID,
			StartDate:     "2026-07-01",
			EndDate:       "2026-07-02",
			PayPalOrderID: "ORDER-2",
		})
		if !errors.Is(err, ErrPaymentNotCaptured) {
			t.Fatalf("got %v, want ErrPaymentNotCaptured", err)
		}

		var count int64
		if err := db.Model(&models.Booking{}).Where("paypal_order_id = ?", "ORDER-2").Count(&count).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 0 {
			t.Error("booking row exists for an uncaptured order")
		}
	})
}

// Fire a long random sequence of creates at one vehicle; whatever
// subset the service accepts, no two surviving active bookings may
// share a day.
func TestCreate_RandomizedSequenceNeverOverlaps(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "sequence@test.local")
	v := seedVehicle(t, db, 50)

	base := day(t, "2026-06-01")
	rng := rand.New(rand.NewSource(7))

	accepted, rejected := 0, 0
	for i := 0; i < 60; i++ {
		start := base.AddDate(0, 0, rng.Intn(20))
		end := start.AddDate(0, 0, rng.Intn(4))

		_, err := svc.Create(CreateBookingInput{
			VehicleID: v.ID,
			UserID:    user.ID,
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
		})
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrVehicleUnavailable):
			rejected++
		default:
			t.Fatalf("attempt %d: unexpected error: %v", i, err)
		}
	}
	if accepted == 0 || rejected == 0 {
		t.Fatalf("generator only exercised one outcome (accepted=%d rejected=%d)", accepted, rejected)
	}

	var active []models.Booking
	if err := db.Where("vehicle_id = ? AND status = ?", v.ID, models.BookingStatusActive).Find(&active).Error; err != nil {
		t.Fatalf("load active bookings: %v", err)
	}
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if !a.StartDate.After(b.EndDate) && !a.EndDate.Before(b.StartDate) {
				t.Errorf("bookings %d (%s..%s) and %d (%s..%s) overlap",
					a.ID, a.StartDate.Format("2006-01-02"), a.EndDate.Format("2006-01-02"),
					b.ID, b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))
			}
		}
	}
}

func TestCreate_AvailabilityRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)
	inv := NewInventoryService(db)

	user := seedUser(t, db, "roundtrip@test.local")
	v := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(3))

	start, end := day(t, "2026-06-01"), day(t, "2026-06-03")
	k, err := inv.AvailableQuantity(seat.ID, start, end)
	if err != nil {
		t.Fatalf("AvailableQuantity: %v", err)
	}
	if k != 3 {
		t.Fatalf("availability = %d, want 3", k)
	}

	// Reserving exactly the reported amount succeeds and drains the
	// range to zero.
	if _, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID,
		UserID:    user.ID,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-03",
		Extras:    []ExtraRequest{{ExtraID: seat.ID, Quantity: k}},
	}); err != nil {
		t.Fatalf("Create at reported availability: %v", err)
	}

	after, err := inv.AvailableQuantity(seat.ID, start, end)
	if err != nil {
		t.Fatalf("AvailableQuantity after create: %v", err)
	}
	if after != 0 {
		t.Errorf("availability after create = %d, want 0", after)
	}
}

func TestTransition_TerminalRepeatsAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "idem@test.local")
	v := seedVehicle(t, db, 50)
	b := seedBooking(t, db, v.ID, user.ID, models.BookingStatusActive, "2026-06-01", "2026-06-03")

	first, err := svc.Transition(b.ID, models.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if first.Status != models.BookingStatusCancelled {
		t.Fatalf("status = %q, want cancelled", first.Status)
	}

	second, err := svc.Transition(b.ID, models.BookingStatusCancelled)
	if err != nil {
		t.Fatalf("repeated cancel must be a no-op, got %v", err)
	}
	if second.Status != models.BookingStatusCancelled {
		t.Errorf("status after repeat = %q, want cancelled", second.Status)
	}

	if _, err := svc.Transition(b.ID, models.BookingStatusCompleted); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("cancelled -> completed: got %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.Transition(b.ID, models.BookingStatusActive); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reactivation: got %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.Transition(9999, models.BookingStatusCancelled); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("unknown booking: got %v, want ErrBookingNotFound", err)
	}
}

func TestCancel_ReleasesVehicleAndExtras(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "release@test.local")
	v := seedVehicle(t, db, 50)
	v2 := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(1))

	first, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID,
		UserID:    user.ID,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-03",
		Extras:    []ExtraRequest{{ExtraID: seat.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Same vehicle and the only seat are both held.
	if _, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID, UserID: user.ID, StartDate: "2026-06-02", EndDate: "2026-06-04",
	}); !errors.Is(err, ErrVehicleUnavailable) {
		t.Fatalf("overlapping vehicle: got %v, want ErrVehicleUnavailable", err)
	}
	var unavailable *ExtraUnavailableError
	if _, err := svc.Create(CreateBookingInput{
		VehicleID: v2.ID, UserID: user.ID, StartDate: "2026-06-02", EndDate: "2026-06-04",
		Extras: []ExtraRequest{{ExtraID: seat.ID, Quantity: 1}},
	}); !errors.As(err, &unavailable) {
		t.Fatalf("held seat: got %v, want ExtraUnavailableError", err)
	}

	if _, err := svc.Cancel(first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Both resources come back the moment the status flips.
	if _, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID, UserID: user.ID, StartDate: "2026-06-02", EndDate: "2026-06-04",
		Extras: []ExtraRequest{{ExtraID: seat.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
}

func TestUpdate_RedateExcludesSelfAndReprices(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "redate@test.local")
	v := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(1))

	booking, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID,
		UserID:    user.ID,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-02",
		Extras:    []ExtraRequest{{ExtraID: seat.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The vehicle's list price changes after booking; the captured rate
	// must drive the new total.
	if err := db.Model(&models.Vehicle{}).Where("id = ?", v.ID).Update("price_per_day", 90).Error; err != nil {
		t.Fatalf("change vehicle price: %v", err)
	}

	newEnd := "2026-06-04"
	updated, err := svc.Update(booking.ID, UpdateBookingInput{EndDate: &newEnd})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.EndDate.Equal(day(t, "2026-06-04")) {
		t.Errorf("end date = %v, want 2026-06-04", updated.EndDate)
	}
	// 4 days * 50 captured + 1 seat * 8 * 4 days = 232.
	if updated.TotalPrice != 232 {
		t.Errorf("total = %v, want 232", updated.TotalPrice)
	}
}

func TestUpdate_RedateConflictsAndValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "redate2@test.local")
	v := seedVehicle(t, db, 50)
	mine := seedBooking(t, db, v.ID, user.ID, models.BookingStatusActive, "2026-06-01", "2026-06-02")
	seedBooking(t, db, v.ID, user.ID, models.BookingStatusActive, "2026-06-05", "2026-06-07")

	into := "2026-06-05"
	if _, err := svc.Update(mine.ID, UpdateBookingInput{EndDate: &into}); !errors.Is(err, ErrVehicleUnavailable) {
		t.Errorf("move into occupied range: got %v, want ErrVehicleUnavailable", err)
	}

	free := "2026-06-03"
	if _, err := svc.Update(mine.ID, UpdateBookingInput{EndDate: &free}); err != nil {
		t.Errorf("move into free range: %v", err)
	}

	if _, err := svc.Update(mine.ID, UpdateBookingInput{}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty update: got %v, want ErrInvalidRequest", err)
	}

	done := seedBooking(t, db, seedVehicle(t, db, 50).ID, user.ID, models.BookingStatusCompleted, "2026-05-01", "2026-05-02")
	shift := "2026-05-03"
	if _, err := svc.Update(done.ID, UpdateBookingInput{EndDate: &shift}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("re-date terminal booking: got %v, want ErrInvalidTransition", err)
	}
}

// The re-date transaction serializes on the vehicle row the same way
// creation does; loading it there also means a booking stranded
// without its vehicle cannot be re-dated.
func TestUpdate_ChecksVehicleInsideTransaction(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "novehicle@test.local")
	v := seedVehicle(t, db, 50)
	b := seedBooking(t, db, v.ID, user.ID, models.BookingStatusActive, "2026-06-01", "2026-06-02")

	if err := db.Unscoped().Delete(&models.Vehicle{}, v.ID).Error; err != nil {
		t.Fatalf("remove vehicle: %v", err)
	}

	newEnd := "2026-06-04"
	if _, err := svc.Update(b.ID, UpdateBookingInput{EndDate: &newEnd}); !errors.Is(err, ErrVehicleNotFound) {
		t.Errorf("re-date without vehicle row: got %v, want ErrVehicleNotFound", err)
	}
}

// A delisted extra stays on the booking: the re-dated total keeps its
// charge instead of silently under-billing.
func TestUpdate_KeepsChargesForDelistedExtra(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "delisted@test.local")
	v := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(3))

	booking, err := svc.Create(CreateBookingInput{
		VehicleID: v.ID,
		UserID:    user.ID,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-02",
		Extras:    []ExtraRequest{{ExtraID: seat.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.Delete(&models.Extra{}, seat.ID).Error; err != nil {
		t.Fatalf("delist extra: %v", err)
	}

	newEnd := "2026-06-04"
	updated, err := svc.Update(booking.ID, UpdateBookingInput{EndDate: &newEnd})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	// 4 days * 50 + 1 seat * 8 * 4 days = 232; 200 would mean the seat
	// charge was dropped.
	if updated.TotalPrice != 232 {
		t.Errorf("total = %v, want 232", updated.TotalPrice)
	}
}

func TestUpdate_StatusOnlyUsesLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "statusonly@test.local")
	v := seedVehicle(t, db, 50)
	b := seedBooking(t, db, v.ID, user.ID, models.BookingStatusActive, "2026-06-01", "2026-06-02")

	completed := models.BookingStatusCompleted
	updated, err := svc.Update(b.ID, UpdateBookingInput{Status: &completed})
	if err != nil {
		t.Fatalf("status update: %v", err)
	}
	if updated.Status != models.BookingStatusCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}
}

func TestDelete_HardRemovesBookingAndExtras(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	user := seedUser(t, db, "delete@test.local")
	v := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(5))
	b := seedBooking(t, db, v.ID, user.ID, models.BookingStatusActive, "2026-06-01", "2026-06-02",
		models.BookingExtra{ExtraID: seat.ID, ExtraName: seat.Name, Quantity: 1})

	if err := svc.Delete(b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(b.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("GetByID after delete: got %v, want ErrBookingNotFound", err)
	}
	var count int64
	if err := db.Unscoped().Model(&models.BookingExtra{}).Where("booking_id = ?", b.ID).Count(&count).Error; err != nil {
		t.Fatalf("count extras: %v", err)
	}
	if count != 0 {
		t.Errorf("found %d orphaned booking extras, want 0", count)
	}
	if err := svc.Delete(b.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("second delete: got %v, want ErrBookingNotFound", err)
	}
}

func TestListByUser_NewestFirstAndScoped(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)

	alice := seedUser(t, db, "alice@test.local")
	bob := seedUser(t, db, "bob@test.local")
	v := seedVehicle(t, db, 50)
	seedBooking(t, db, v.ID, alice.ID, models.BookingStatusCompleted, "2026-05-01", "2026-05-02")
	seedBooking(t, db, v.ID, alice.ID, models.BookingStatusActive, "2026-06-01", "2026-06-02")
	seedBooking(t, db, v.ID, bob.ID, models.BookingStatusActive, "2026-07-01", "2026-07-02")

	list, err := svc.ListByUser(alice.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("bookings for alice = %d, want 2", len(list))
	}
	for _, b := range list {
		if b.UserID != alice.ID {
			t.Errorf("booking %d belongs to user %d", b.ID, b.UserID)
		}
	}

	all, err := svc.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all bookings = %d, want 3", len(all))
	}
}
