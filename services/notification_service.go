package services

import (
	"context"
	"encoding/json"
	"fmt"

	"bookable-backend/models"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Mailer is the outbound transport. utils.SMTPMailer is the production
// implementation; tests substitute a recorder.
type Mailer interface {
	Send(to, subject, body string) error
}

// NotificationService formats and sends lifecycle emails. Dispatch is
// fire-and-forget with respect to the state change that triggered it: the
// transition is already committed, so a transport failure is recorded in
// notification_logs and the operator log, never bubbled to the caller.
type NotificationService struct {
	DB     *gorm.DB
	Mailer Mailer
	Logger zerolog.Logger
}

func NewNotificationService(db *gorm.DB, mailer Mailer, logger zerolog.Logger) *NotificationService {
	return &NotificationService{DB: db, Mailer: mailer, Logger: logger}
}

// Dispatch sends the email for one lifecycle event and records the attempt.
// At-most-once: a failed attempt is logged, not retried.
func (s *NotificationService) Dispatch(ctx context.Context, kind string, booking *models.Booking, recipient string) {
	if s == nil || s.Mailer == nil {
		return
	}

	entry := models.NotificationLog{
		Kind:      kind,
		BookingID: booking.ID,
		Recipient: recipient,
		Status:    models.NotifyStatusSent,
	}
	if snapshot, err := json.Marshal(map[string]interface{}{
		"reference_code": booking.ReferenceCode,
		"resource_id":    booking.ResourceID,
		"status":         booking.Status,
		"start_time":     booking.StartTime,
		"end_time":       booking.EndTime,
	}); err == nil {
		entry.Payload = datatypes.JSON(snapshot)
	}

	if recipient == "" {
		entry.Status = models.NotifyStatusFailed
		entry.Error = "no recipient email"
	} else {
		subject, body := s.compose(kind, booking)
		if err := s.Mailer.Send(recipient, subject, body); err != nil {
			entry.Status = models.NotifyStatusFailed
			entry.Error = err.Error()
			s.Logger.Error().
				Err(err).
				Str("kind", kind).
				Uint("booking_id", booking.ID).
				Str("recipient", recipient).
				Msg("notification send failed")
		}
	}

	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		s.Logger.Error().
			Err(err).
			Str("kind", kind).
			Uint("booking_id", booking.ID).
			Msg("failed to record notification attempt")
	}
}

func (s *NotificationService) compose(kind string, booking *models.Booking) (string, string) {
	resource := booking.Resource.Name
	window := fmt.Sprintf("%s – %s",
		booking.StartTime.Format("2006-01-02 15:04"),
		booking.EndTime.Format("15:04"))

	switch kind {
	case models.NotifyBookingCreated:
		return fmt.Sprintf("Booking received: %s", resource),
			fmt.Sprintf("We received your booking %s for %s (%s). You'll get another email once it is confirmed.",
				booking.ReferenceCode, resource, window)
	case models.NotifyBookingConfirmed:
		return fmt.Sprintf("Booking confirmed: %s", resource),
			fmt.Sprintf("Your booking %s for %s (%s) is confirmed. See you then!",
				booking.ReferenceCode, resource, window)
	case models.NotifyBookingCancelled:
		return fmt.Sprintf("Booking cancelled: %s", resource),
			fmt.Sprintf("Booking %s for %s (%s) was cancelled. Reason: %s",
				booking.ReferenceCode, resource, window, orDash(booking.CancelReason))
	case models.NotifyBookingCompleted:
		return fmt.Sprintf("How was %s?", resource),
			fmt.Sprintf("Your booking %s is complete. We'd love to hear how it went. Leave a review when you have a minute.",
				booking.ReferenceCode)
	}
	return fmt.Sprintf("Booking update: %s", resource),
		fmt.Sprintf("Booking %s for %s (%s) was updated.", booking.ReferenceCode, resource, window)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
