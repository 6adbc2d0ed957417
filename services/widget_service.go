package services

import (
	"context"
	"errors"
	"fmt"

	"bookable-backend/models"
	"bookable-backend/utils"

	"gorm.io/gorm"
)

// WidgetService manages the API keys behind the embeddable booking widget.
type WidgetService struct {
	DB *gorm.DB
}

func NewWidgetService(db *gorm.DB) *WidgetService {
	return &WidgetService{DB: db}
}

func (s *WidgetService) IssueKey(ctx context.Context, businessID uint, label string) (*models.WidgetKey, error) {
	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate widget key: %w", err)
	}

	key := models.WidgetKey{
		BusinessID: businessID,
		Key:        token,
		Label:      label,
		Active:     true,
	}
	if err := s.DB.WithContext(ctx).Create(&key).Error; err != nil {
		return nil, fmt.Errorf("failed to store widget key: %w", err)
	}
	return &key, nil
}

func (s *WidgetService) RevokeKey(ctx context.Context, businessID, keyID uint) error {
	result := s.DB.WithContext(ctx).
		Model(&models.WidgetKey{}).
		Where("id = ? AND business_id = ?", keyID, businessID).
		Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke widget key %d: %w", keyID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("widget key %d: %w", keyID, ErrNotFound)
	}
	return nil
}

func (s *WidgetService) ListKeys(ctx context.Context, businessID uint) ([]models.WidgetKey, error) {
	var keys []models.WidgetKey
	if err := s.DB.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve widget keys: %w", err)
	}
	return keys, nil
}

// Resolve looks up an active key by its token value. Used by the widget auth
// middleware; an unknown or revoked key is unauthorized, not not-found, so
// the response doesn't leak which keys exist.
func (s *WidgetService) Resolve(ctx context.Context, token string) (*models.WidgetKey, error) {
	if token == "" {
		return nil, fmt.Errorf("missing widget key: %w", ErrUnauthorized)
	}
	var key models.WidgetKey
	err := s.DB.WithContext(ctx).Where("`key` = ? AND active = ?", token, true).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unknown widget key: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("db error resolving widget key: %w", err)
	}
	return &key, nil
}
