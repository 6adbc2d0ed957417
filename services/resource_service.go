package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bookable-backend/models"

	"gorm.io/gorm"
)

type ResourceService struct {
	DB *gorm.DB
}

func NewResourceService(db *gorm.DB) *ResourceService {
	return &ResourceService{DB: db}
}

type ResourceInput struct {
	Kind                 string
	Name                 string
	Description          string
	PriceAmount          int64
	Currency             string
	Capacity             int
	DurationMinutes      int
	BufferMinutes        int
	AdvanceNoticeMinutes int
}

func (s *ResourceService) CreateResource(ctx context.Context, businessID uint, in ResourceInput) (*models.Resource, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("resource name is required: %w", ErrValidation)
	}
	kind := in.Kind
	if kind == "" {
		kind = models.ResourceKindService
	}
	if kind != models.ResourceKindService && kind != models.ResourceKindVenue {
		return nil, fmt.Errorf("unknown resource kind %q: %w", kind, ErrValidation)
	}
	if in.Capacity < 1 {
		in.Capacity = 1
	}
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = 60
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	resource := models.Resource{
		BusinessID:           businessID,
		Kind:                 kind,
		Name:                 strings.TrimSpace(in.Name),
		Description:          in.Description,
		PriceAmount:          in.PriceAmount,
		Currency:             currency,
		Capacity:             in.Capacity,
		DurationMinutes:      in.DurationMinutes,
		BufferMinutes:        in.BufferMinutes,
		AdvanceNoticeMinutes: in.AdvanceNoticeMinutes,
		Active:               true,
	}
	if err := s.DB.WithContext(ctx).Create(&resource).Error; err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return &resource, nil
}

func (s *ResourceService) GetResource(ctx context.Context, resourceID uint) (*models.Resource, error) {
	var resource models.Resource
	if err := s.DB.WithContext(ctx).Preload("AvailabilityRules").First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource %d: %w", resourceID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve resource %d: %w", resourceID, err)
	}
	return &resource, nil
}

func (s *ResourceService) ListResources(ctx context.Context, businessID uint, activeOnly bool) ([]models.Resource, error) {
	q := s.DB.WithContext(ctx).Preload("AvailabilityRules").Where("business_id = ?", businessID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var list []models.Resource
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve resources: %w", err)
	}
	return list, nil
}

// UpdateResource applies a partial update. Price changes only affect future
// bookings; existing bookings keep the price copied at creation.
func (s *ResourceService) UpdateResource(ctx context.Context, businessID, resourceID uint, updates map[string]interface{}) (*models.Resource, error) {
	resource, err := s.ownedResource(ctx, businessID, resourceID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return resource, nil
	}
	if err := s.DB.WithContext(ctx).Model(resource).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update resource %d: %w", resourceID, err)
	}
	return s.GetResource(ctx, resourceID)
}

// SetActive pauses or resumes a resource. Paused resources reject new
// bookings but keep their existing ones.
func (s *ResourceService) SetActive(ctx context.Context, businessID, resourceID uint, active bool) (*models.Resource, error) {
	return s.UpdateResource(ctx, businessID, resourceID, map[string]interface{}{"active": active})
}

type RuleInput struct {
	RuleType string
	Weekday  *int
	Date     *time.Time
	Closed   bool
	OpensAt  int
	ClosesAt int
}

// AddRule appends an availability rule after validating it against the
// existing set: for capacity-1 resources the declared windows must stay
// non-overlapping.
func (s *ResourceService) AddRule(ctx context.Context, businessID, resourceID uint, in RuleInput) (*models.AvailabilityRule, error) {
	resource, err := s.ownedResource(ctx, businessID, resourceID)
	if err != nil {
		return nil, err
	}

	rule := models.AvailabilityRule{
		ResourceID: resourceID,
		RuleType:   in.RuleType,
		Weekday:    in.Weekday,
		Date:       in.Date,
		Closed:     in.Closed,
		OpensAt:    in.OpensAt,
		ClosesAt:   in.ClosesAt,
	}

	switch in.RuleType {
	case models.RuleTypeRecurring:
		if in.Weekday == nil || *in.Weekday < 0 || *in.Weekday > 6 {
			return nil, fmt.Errorf("recurring rule requires weekday 0-6: %w", ErrValidation)
		}
	case models.RuleTypeException:
		if in.Date == nil {
			return nil, fmt.Errorf("exception rule requires a date: %w", ErrValidation)
		}
		d := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, in.Date.Location())
		rule.Date = &d
	default:
		return nil, fmt.Errorf("unknown rule type %q: %w", in.RuleType, ErrValidation)
	}

	if !in.Closed {
		if in.OpensAt < 0 || in.ClosesAt > 1440 || in.ClosesAt <= in.OpensAt {
			return nil, fmt.Errorf("rule window must satisfy 0 <= opens < closes <= 1440: %w", ErrValidation)
		}
	}

	if resource.Capacity == 1 {
		if err := checkRuleOverlap(resource.AvailabilityRules, &rule); err != nil {
			return nil, err
		}
	}

	if err := s.DB.WithContext(ctx).Create(&rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create availability rule: %w", err)
	}
	return &rule, nil
}

func (s *ResourceService) RemoveRule(ctx context.Context, businessID, resourceID, ruleID uint) error {
	if _, err := s.ownedResource(ctx, businessID, resourceID); err != nil {
		return err
	}
	result := s.DB.WithContext(ctx).Where("id = ? AND resource_id = ?", ruleID, resourceID).Delete(&models.AvailabilityRule{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete rule %d: %w", ruleID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("rule %d: %w", ruleID, ErrNotFound)
	}
	return nil
}

func (s *ResourceService) ListReviews(ctx context.Context, resourceID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.DB.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return reviews, nil
}

func (s *ResourceService) ownedResource(ctx context.Context, businessID, resourceID uint) (*models.Resource, error) {
	resource, err := s.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if resource.BusinessID != businessID {
		return nil, fmt.Errorf("resource %d belongs to another business: %w", resourceID, ErrUnauthorized)
	}
	return resource, nil
}

// checkRuleOverlap rejects a new rule whose minute window intersects an
// existing rule on the same weekday or date. Closed exceptions never overlap.
func checkRuleOverlap(existing []models.AvailabilityRule, candidate *models.AvailabilityRule) error {
	if candidate.Closed {
		return nil
	}
	sameSlot := func(r models.AvailabilityRule) bool {
		if r.RuleType != candidate.RuleType || r.Closed {
			return false
		}
		switch candidate.RuleType {
		case models.RuleTypeRecurring:
			return r.Weekday != nil && candidate.Weekday != nil && *r.Weekday == *candidate.Weekday
		case models.RuleTypeException:
			return r.Date != nil && candidate.Date != nil &&
				r.Date.Year() == candidate.Date.Year() && r.Date.YearDay() == candidate.Date.YearDay()
		}
		return false
	}

	var windows [][2]int
	for _, r := range existing {
		if sameSlot(r) {
			windows = append(windows, [2]int{r.OpensAt, r.ClosesAt})
		}
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i][0] < windows[j][0] })
	for _, w := range windows {
		if candidate.OpensAt < w[1] && candidate.ClosesAt > w[0] {
			return fmt.Errorf("rule window %d-%d overlaps existing window %d-%d: %w",
				candidate.OpensAt, candidate.ClosesAt, w[0], w[1], ErrConflict)
		}
	}
	return nil
}
