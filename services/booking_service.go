package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookable-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// transitionTable maps from-status -> to-status -> roles allowed to request
// it. Anything absent is an invalid transition; a present pair attempted by
// the wrong role is unauthorized.
var transitionTable = map[string]map[string][]string{
	models.StatusPending: {
		models.StatusConfirmed:   {models.RoleProvider, models.RoleAdmin},
		models.StatusCancelled:   {models.RoleClient, models.RoleProvider, models.RoleAdmin},
		models.StatusNoShow:      {models.RoleProvider, models.RoleAdmin},
		models.StatusRescheduled: {models.RoleProvider, models.RoleAdmin},
	},
	models.StatusConfirmed: {
		models.StatusCompleted:   {models.RoleProvider, models.RoleAdmin},
		models.StatusCancelled:   {models.RoleClient, models.RoleProvider, models.RoleAdmin},
		models.StatusNoShow:      {models.RoleProvider, models.RoleAdmin},
		models.StatusRescheduled: {models.RoleProvider, models.RoleAdmin},
	},
}

type BookingService struct {
	DB       *gorm.DB
	Notifier *NotificationService
}

func NewBookingService(db *gorm.DB, notifier *NotificationService) *BookingService {
	return &BookingService{DB: db, Notifier: notifier}
}

type CreateBookingInput struct {
	ResourceID uint
	ClientID   uint
	StaffID    *uint
	StartTime  time.Time
	EndTime    time.Time
	ClientNote string
}

type TransitionInput struct {
	Reason          string
	RescheduledToID *uint
}

// CreateBooking runs the availability check and the insert inside one
// transaction, taking a row lock on the resource first so two concurrent
// requests for the same resource serialize instead of both passing the check.
// The price is copied from the resource at this moment and never changes.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if err := ValidateWindow(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	var client models.Client
	if err := s.DB.WithContext(ctx).First(&client, in.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %d: %w", in.ClientID, ErrNotFound)
		}
		return nil, fmt.Errorf("db error checking client %d: %w", in.ClientID, err)
	}

	var booking models.Booking
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resource models.Resource
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&resource, in.ResourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("resource %d: %w", in.ResourceID, ErrNotFound)
			}
			return fmt.Errorf("failed to lock resource %d: %w", in.ResourceID, err)
		}
		if !resource.Active {
			return fmt.Errorf("resource %d is not accepting bookings: %w", in.ResourceID, ErrValidation)
		}

		checker := &AvailabilityService{DB: tx}
		result, err := checker.CheckAvailability(ctx, in.ResourceID, in.StartTime, in.EndTime)
		if err != nil {
			return err
		}
		if !result.Available {
			if len(result.Conflicts) > 0 {
				return &ConflictError{Conflicts: result.Conflicts}
			}
			return fmt.Errorf("window not bookable (%s): %w", result.Reason, ErrConflict)
		}

		if in.StaffID != nil {
			var staff models.StaffMember
			if err := tx.Where("id = ? AND business_id = ?", *in.StaffID, resource.BusinessID).First(&staff).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("staff member %d: %w", *in.StaffID, ErrNotFound)
				}
				return fmt.Errorf("db error checking staff %d: %w", *in.StaffID, err)
			}
		}

		booking = models.Booking{
			ReferenceCode: newReferenceCode(),
			ResourceID:    resource.ID,
			BusinessID:    resource.BusinessID,
			ClientID:      in.ClientID,
			StaffID:       in.StaffID,
			StartTime:     in.StartTime,
			EndTime:       in.EndTime,
			Status:        models.StatusPending,
			PriceAmount:   resource.PriceAmount,
			Currency:      resource.Currency,
			ClientNote:    in.ClientNote,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	created, err := s.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	// Best-effort: the booking is committed, a failed email never fails the
	// request.
	s.Notifier.Dispatch(ctx, models.NotifyBookingCreated, created, created.Client.Email)

	return created, nil
}

// Transition moves a booking through the lifecycle state machine, gated by
// actor role and ownership, and fires the notification matching the new
// status after the change is committed.
func (s *BookingService) Transition(ctx context.Context, bookingID, actorID uint, actorRole, target string, in TransitionInput) (*models.Booking, error) {
	now := time.Now().UTC()

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
			}
			return fmt.Errorf("failed to lock booking %d: %w", bookingID, err)
		}

		roles, ok := transitionTable[booking.Status][target]
		if !ok {
			return fmt.Errorf("cannot move booking from %q to %q: %w", booking.Status, target, ErrInvalidTransition)
		}
		if err := authorizeActor(&booking, actorID, actorRole, roles); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": target}
		switch target {
		case models.StatusCancelled:
			updates["cancel_reason"] = strings.TrimSpace(in.Reason)
			updates["cancelled_at"] = now
			updates["cancelled_by_role"] = actorRole
		case models.StatusRescheduled:
			if in.RescheduledToID == nil {
				return fmt.Errorf("rescheduled requires a replacement booking id: %w", ErrValidation)
			}
			var replacement models.Booking
			if err := tx.First(&replacement, *in.RescheduledToID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("replacement booking %d: %w", *in.RescheduledToID, ErrNotFound)
				}
				return fmt.Errorf("db error checking replacement booking: %w", err)
			}
			if replacement.ID == booking.ID {
				return fmt.Errorf("booking %d cannot be its own replacement: %w", booking.ID, ErrValidation)
			}
			if replacement.IsTerminal() {
				return fmt.Errorf("replacement booking %d is %s: %w", replacement.ID, replacement.Status, ErrValidation)
			}
			updates["rescheduled_to_id"] = *in.RescheduledToID
		}

		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	updated, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch target {
	case models.StatusConfirmed:
		s.Notifier.Dispatch(ctx, models.NotifyBookingConfirmed, updated, updated.Client.Email)
	case models.StatusCancelled:
		// Notify the counterparty of whoever cancelled.
		if actorRole == models.RoleClient {
			s.Notifier.Dispatch(ctx, models.NotifyBookingCancelled, updated, updated.Business.Email)
		} else {
			s.Notifier.Dispatch(ctx, models.NotifyBookingCancelled, updated, updated.Client.Email)
		}
	case models.StatusCompleted:
		s.Notifier.Dispatch(ctx, models.NotifyBookingCompleted, updated, updated.Client.Email)
	}

	return updated, nil
}

// AttachReview adds the one allowed review: booking must be completed, the
// actor must be its client, and no prior review may exist.
func (s *BookingService) AttachReview(ctx context.Context, bookingID, clientID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrValidation)
	}

	var review models.Review
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
			}
			return fmt.Errorf("failed to lock booking %d: %w", bookingID, err)
		}

		if booking.Status != models.StatusCompleted {
			return fmt.Errorf("reviews require a completed booking, status is %q: %w", booking.Status, ErrInvalidTransition)
		}
		if booking.ClientID != clientID {
			return fmt.Errorf("only the booking's client may review it: %w", ErrUnauthorized)
		}

		var count int64
		if err := tx.Model(&models.Review{}).Where("booking_id = ?", bookingID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing review: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("booking %d already has a review: %w", bookingID, ErrConflict)
		}

		review = models.Review{
			BookingID:  bookingID,
			ResourceID: booking.ResourceID,
			ClientID:   clientID,
			Rating:     rating,
			Comment:    strings.TrimSpace(comment),
		}
		if err := tx.Create(&review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &review, nil
}

// UpdateNote writes the note column belonging to the actor's role; each
// party's note is independent of the others.
func (s *BookingService) UpdateNote(ctx context.Context, bookingID, actorID uint, actorRole, note string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.WithContext(ctx).First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", bookingID, err)
	}

	var column string
	switch actorRole {
	case models.RoleClient:
		if booking.ClientID != actorID {
			return nil, fmt.Errorf("cannot edit another client's booking note: %w", ErrUnauthorized)
		}
		column = "client_note"
	case models.RoleProvider:
		if booking.BusinessID != actorID {
			return nil, fmt.Errorf("cannot edit another business's booking note: %w", ErrUnauthorized)
		}
		column = "business_note"
	case models.RoleAdmin:
		column = "internal_note"
	default:
		return nil, fmt.Errorf("unknown actor role %q: %w", actorRole, ErrUnauthorized)
	}

	if err := s.DB.WithContext(ctx).Model(&booking).Update(column, note).Error; err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return s.GetBooking(ctx, bookingID)
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.WithContext(ctx).
		Preload("Resource").
		Preload("Client").
		Preload("Business").
		Preload("Review").
		First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve booking %d: %w", bookingID, err)
	}
	return &booking, nil
}

type BookingFilter struct {
	BusinessID uint
	ResourceID uint
	ClientID   uint
	Status     string
}

func (s *BookingService) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).
		Preload("Resource").
		Preload("Client").
		Preload("Review").
		Order("start_time DESC")

	if f.BusinessID != 0 {
		q = q.Where("business_id = ?", f.BusinessID)
	}
	if f.ResourceID != 0 {
		q = q.Where("resource_id = ?", f.ResourceID)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var list []models.Booking
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

func authorizeActor(booking *models.Booking, actorID uint, actorRole string, allowed []string) error {
	permitted := false
	for _, role := range allowed {
		if role == actorRole {
			permitted = true
			break
		}
	}
	if !permitted {
		return fmt.Errorf("role %q may not perform this transition: %w", actorRole, ErrUnauthorized)
	}

	switch actorRole {
	case models.RoleClient:
		if booking.ClientID != actorID {
			return fmt.Errorf("clients may only act on their own bookings: %w", ErrUnauthorized)
		}
	case models.RoleProvider:
		if booking.BusinessID != actorID {
			return fmt.Errorf("providers may only act on their own resources' bookings: %w", ErrUnauthorized)
		}
	case models.RoleAdmin:
		// unrestricted
	default:
		return fmt.Errorf("unknown actor role %q: %w", actorRole, ErrUnauthorized)
	}
	return nil
}

func newReferenceCode() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
