package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookable-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type BusinessService struct {
	DB *gorm.DB
}

func NewBusinessService(db *gorm.DB) *BusinessService {
	return &BusinessService{DB: db}
}

type RegisterBusinessInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Timezone string
}

func (s *BusinessService) Register(ctx context.Context, in RegisterBusinessInput) (*models.Business, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("name and email are required: %w", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", ErrValidation)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Business{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("db error checking email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("email %s already registered: %w", email, ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = "UTC"
	}

	business := models.Business{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Timezone:     tz,
	}
	if err := s.DB.WithContext(ctx).Create(&business).Error; err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}
	return &business, nil
}

// Authenticate verifies credentials. It deliberately returns the same error
// for a missing account and a wrong password.
func (s *BusinessService) Authenticate(ctx context.Context, email, password string) (*models.Business, error) {
	var business models.Business
	err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&business).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
		}
		return nil, fmt.Errorf("db error during login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(business.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	return &business, nil
}

func (s *BusinessService) GetBusiness(ctx context.Context, businessID uint) (*models.Business, error) {
	var business models.Business
	if err := s.DB.WithContext(ctx).First(&business, businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("business %d: %w", businessID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve business %d: %w", businessID, err)
	}
	return &business, nil
}

func (s *BusinessService) AddStaff(ctx context.Context, businessID uint, fullName, email, role string) (*models.StaffMember, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("staff full name is required: %w", ErrValidation)
	}
	staff := models.StaffMember{
		BusinessID: businessID,
		FullName:   strings.TrimSpace(fullName),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Role:       strings.TrimSpace(role),
		Active:     true,
	}
	if err := s.DB.WithContext(ctx).Create(&staff).Error; err != nil {
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return &staff, nil
}

func (s *BusinessService) ListStaff(ctx context.Context, businessID uint) ([]models.StaffMember, error) {
	var staff []models.StaffMember
	if err := s.DB.WithContext(ctx).
		Where("business_id = ? AND active = ?", businessID, true).
		Order("full_name ASC").
		Find(&staff).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve staff: %w", err)
	}
	return staff, nil
}
