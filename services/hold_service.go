package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookable-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HoldService struct {
	DB *gorm.DB
}

func NewHoldService(db *gorm.DB) *HoldService {
	return &HoldService{DB: db}
}

type CreateHoldInput struct {
	ResourceID uint
	StartTime  time.Time
	EndTime    time.Time
	Reason     string
	CreatedBy  string

	// Optional self-expiry; nil holds block until released.
	ExpiresAt *time.Time
}

// CreateHold blocks a window administratively. It goes through the same
// lock-check-insert discipline as booking creation so a hold can't slip in
// next to a racing booking.
func (s *HoldService) CreateHold(ctx context.Context, businessID uint, in CreateHoldInput) (*models.Hold, error) {
	if err := ValidateWindow(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(time.Now()) {
		return nil, fmt.Errorf("hold expiry must be in the future: %w", ErrValidation)
	}

	var hold models.Hold
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resource models.Resource
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&resource, in.ResourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("resource %d: %w", in.ResourceID, ErrNotFound)
			}
			return fmt.Errorf("failed to lock resource %d: %w", in.ResourceID, err)
		}
		if resource.BusinessID != businessID {
			return fmt.Errorf("resource %d belongs to another business: %w", in.ResourceID, ErrUnauthorized)
		}

		checker := &AvailabilityService{DB: tx}
		bookings, holds, err := checker.overlappingRecords(ctx, &resource, in.StartTime, in.EndTime)
		if err != nil {
			return err
		}
		if len(bookings) > 0 || len(holds) > 0 {
			conflicts := make([]Conflict, 0, len(bookings)+len(holds))
			for _, b := range bookings {
				conflicts = append(conflicts, bookingConflict(b))
			}
			for _, h := range holds {
				conflicts = append(conflicts, Conflict{ID: h.ID, Type: "hold", StartTime: h.StartTime, EndTime: h.EndTime, Reason: h.Reason})
			}
			return &ConflictError{Conflicts: conflicts}
		}

		hold = models.Hold{
			ResourceID: resource.ID,
			BusinessID: businessID,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			Reason:     in.Reason,
			CreatedBy:  in.CreatedBy,
			ExpiresAt:  in.ExpiresAt,
		}
		if err := tx.Create(&hold).Error; err != nil {
			return fmt.Errorf("failed to create hold: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &hold, nil
}

func (s *HoldService) ListHolds(ctx context.Context, resourceID uint) ([]models.Hold, error) {
	var holds []models.Hold
	if err := s.DB.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("start_time ASC").
		Find(&holds).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve holds: %w", err)
	}
	return holds, nil
}

// ReleaseHold removes a hold. Unlike bookings, holds have no lifecycle; a
// released hold is simply gone.
func (s *HoldService) ReleaseHold(ctx context.Context, businessID, holdID uint) error {
	var hold models.Hold
	if err := s.DB.WithContext(ctx).First(&hold, holdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("hold %d: %w", holdID, ErrNotFound)
		}
		return fmt.Errorf("failed to load hold %d: %w", holdID, err)
	}
	if hold.BusinessID != businessID {
		return fmt.Errorf("hold %d belongs to another business: %w", holdID, ErrUnauthorized)
	}
	if err := s.DB.WithContext(ctx).Delete(&hold).Error; err != nil {
		return fmt.Errorf("failed to release hold %d: %w", holdID, err)
	}
	return nil
}
