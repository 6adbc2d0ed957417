package services

import (
	"context"
	"testing"
	"time"

	"bookable-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldBlocksBookingWindow(t *testing.T) {
	db := setupTestDB(t)
	business := createTestBusiness(t, db)
	client := createTestClient(t, db)
	resource := createTestResource(t, db, business.ID)

	holds := NewHoldService(db)
	bookings := newTestBookingService(db, &recorderMailer{})
	availability := NewAvailabilityService(db)
	ctx := context.Background()
	day := futureDay()

	hold, err := holds.CreateHold(ctx, business.ID, CreateHoldInput{
		ResourceID: resource.ID,
		StartTime:  at(day, 10, 0),
		EndTime:    at(day, 12, 0),
		Reason:     "deep clean",
		CreatedBy:  "owner",
	})
	require.NoError(t, err)

	// The hold shows up as the conflict, typed as a hold.
	result, err := availability.CheckAvailability(ctx, resource.ID, at(day, 11, 0), at(day, 11, 30))
	require.NoError(t, err)
	assert.False(t, result.Available)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "hold", result.Conflicts[0].Type)
	assert.Equal(t, hold.ID, result.Conflicts[0].ID)
	assert.Equal(t, "deep clean", result.Conflicts[0].Reason)

	_, err = bookings.CreateBooking(ctx, CreateBookingInput{
		ResourceID: resource.ID, ClientID: client.ID,
		StartTime: at(day, 11, 0), EndTime: at(day, 11, 30),
	})
	assert.ErrorIs(t, err, ErrConflict)

	// Back-to-back with the hold is fine.
	_, err = bookings.CreateBooking(ctx, CreateBookingInput{
		ResourceID: resource.ID, ClientID: client.ID,
		StartTime: at(day, 12, 0), EndTime: at(day, 13, 0),
	})
	require.NoError(t, err)
}

func TestHoldConflictsWithExistingBooking(t *testing.T) {
	db := setupTestDB(t)
	business := createTestBusiness(t, db)
	client := createTestClient(t, db)
	resource := createTestResource(t, db, business.ID)

	holds := NewHoldService(db)
	bookings := newTestBookingService(db, &recorderMailer{})
	ctx := context.Background()
	day := futureDay()

	booked, err := bookings.CreateBooking(ctx, CreateBookingInput{
		ResourceID: resource.ID, ClientID: client.ID,
		StartTime: at(day, 10, 0), EndTime: at(day, 11, 0),
	})
	require.NoError(t, err)

	_, err = holds.CreateHold(ctx, business.ID, CreateHoldInput{
		ResourceID: resource.ID,
		StartTime:  at(day, 10, 30),
		EndTime:    at(day, 11, 30),
	})
	require.Error(t, err)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, booked.ID, conflictErr.Conflicts[0].ID)
}

func TestReleaseHold(t *testing.T) {
	db := setupTestDB(t)
	business := createTestBusiness(t, db)
	otherBusiness := &models.Business{Name: "Other", Email: "other-hold@example.com"}
	require.NoError(t, db.Create(otherBusiness).Error)
	resource := createTestResource(t, db, business.ID)

	holds := NewHoldService(db)
	availability := NewAvailabilityService(db)
	ctx := context.Background()
	day := futureDay()

	hold, err := holds.CreateHold(ctx, business.ID, CreateHoldInput{
		ResourceID: resource.ID,
		StartTime:  at(day, 10, 0),
		EndTime:    at(day, 11, 0),
	})
	require.NoError(t, err)

	// Another tenant cannot release it.
	err = holds.ReleaseHold(ctx, otherBusiness.ID, hold.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, holds.ReleaseHold(ctx, business.ID, hold.ID))

	result, err := availability.CheckAvailability(ctx, resource.ID, at(day, 10, 0), at(day, 11, 0))
	require.NoError(t, err)
	assert.True(t, result.Available)

	err = holds.ReleaseHold(ctx, business.ID, hold.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateHoldValidation(t *testing.T) {
	db := setupTestDB(t)
	business := createTestBusiness(t, db)
	otherBusiness := &models.Business{Name: "Other", Email: "other-hold2@example.com"}
	require.NoError(t, db.Create(otherBusiness).Error)
	resource := createTestResource(t, db, business.ID)

	holds := NewHoldService(db)
	ctx := context.Background()
	day := futureDay()

	_, err := holds.CreateHold(ctx, business.ID, CreateHoldInput{
		ResourceID: resource.ID,
		StartTime:  at(day, 11, 0),
		EndTime:    at(day, 10, 0),
	})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = holds.CreateHold(ctx, otherBusiness.ID, CreateHoldInput{
		ResourceID: resource.ID,
		StartTime:  at(day, 10, 0),
		EndTime:    at(day, 11, 0),
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = holds.CreateHold(ctx, business.ID, CreateHoldInput{
		ResourceID: 9999,
		StartTime:  at(day, 10, 0),
		EndTime:    at(day, 11, 0),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	past := time.Now().Add(-time.Hour)
	_, err = holds.CreateHold(ctx, business.ID, CreateHoldInput{
		ResourceID: resource.ID,
		StartTime:  at(day, 10, 0),
		EndTime:    at(day, 11, 0),
		ExpiresAt:  &past,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExpiredHoldReleasesWindow(t *testing.T) {
	db := setupTestDB(t)
	business := createTestBusiness(t, db)
	client := createTestClient(t, db)
	resource := createTestResource(t, db, business.ID)

	holds := NewHoldService(db)
	bookings := newTestBookingService(db, &recorderMailer{})
	availability := NewAvailabilityService(db)
	ctx := context.Background()
	day := futureDay()

	soon := time.Now().Add(time.Minute)
	hold, err := holds.CreateHold(ctx, business.ID, CreateHoldInput{
		ResourceID: resource.ID,
		StartTime:  at(day, 10, 0),
		EndTime:    at(day, 12, 0),
		Reason:     "tentative event",
		ExpiresAt:  &soon,
	})
	require.NoError(t, err)

	// Still live: blocks the window.
	result, err := availability.CheckAvailability(ctx, resource.ID, at(day, 10, 30), at(day, 11, 30))
	require.NoError(t, err)
	assert.False(t, result.Available)

	// Lapse the hold and the window opens without anyone releasing it.
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.Hold{}).Where("id = ?", hold.ID).Update("expires_at", expired).Error)

	result, err = availability.CheckAvailability(ctx, resource.ID, at(day, 10, 30), at(day, 11, 30))
	require.NoError(t, err)
	assert.True(t, result.Available)

	_, err = bookings.CreateBooking(ctx, CreateBookingInput{
		ResourceID: resource.ID, ClientID: client.ID,
		StartTime: at(day, 10, 30), EndTime: at(day, 11, 30),
	})
	require.NoError(t, err)
}
