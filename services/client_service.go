package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookable-backend/models"

	"gorm.io/gorm"
)

type ClientService struct {
	DB *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{DB: db}
}

func (s *ClientService) CreateClient(ctx context.Context, fullName, email, phone string) (*models.Client, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if strings.TrimSpace(fullName) == "" || email == "" {
		return nil, fmt.Errorf("full name and email are required: %w", ErrValidation)
	}

	client := models.Client{
		FullName: strings.TrimSpace(fullName),
		Email:    email,
		Phone:    strings.TrimSpace(phone),
	}
	if err := s.DB.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &client, nil
}

// FindOrCreateByEmail backs the widget flow: an embedded booking form only
// collects name and email, so repeat bookers map to the same client row.
func (s *ClientService) FindOrCreateByEmail(ctx context.Context, fullName, email, phone string) (*models.Client, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", ErrValidation)
	}

	var client models.Client
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&client).Error
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db error looking up client: %w", err)
	}
	return s.CreateClient(ctx, fullName, email, phone)
}

func (s *ClientService) GetClient(ctx context.Context, clientID uint) (*models.Client, error) {
	var client models.Client
	if err := s.DB.WithContext(ctx).First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %d: %w", clientID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve client %d: %w", clientID, err)
	}
	return &client, nil
}
