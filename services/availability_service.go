package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"bookable-backend/models"

	"gorm.io/gorm"
)

// Unavailability reasons returned in AvailabilityResult.Reason.
const (
	ReasonOutsideHours  = "outside_hours"
	ReasonAdvanceNotice = "advance_notice"
	ReasonOverlap       = "overlap"
	ReasonCapacityFull  = "capacity_full"
)

// AvailabilityResult tells whether a window is free and, when it is not, which
// records block it.
type AvailabilityResult struct {
	Available bool       `json:"available"`
	Reason    string     `json:"reason,omitempty"`
	Conflicts []Conflict `json:"conflicts"`
}

// Slot is one free bookable window derived from a resource's rules.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// AvailabilityService answers "is [start, end) free on this resource?" by
// combining the resource's declared open windows with overlap queries against
// live bookings and holds. Windows are half-open: end-of-one equal to
// start-of-next is not a conflict.
type AvailabilityService struct {
	DB *gorm.DB

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db, Now: time.Now}
}

// CheckAvailability implements the conflict resolution contract:
//  1. the window must fall inside a declared open window (no rules = always open)
//  2. no pending/confirmed booking may overlap, with the resource's buffer
//     minutes appended to each existing booking's end
//  3. no hold may overlap, same buffer treatment
//
// For capacity > 1 resources, step 2 becomes a count check: the window is
// full when `capacity` bookings already occupy some instant of it. All
// overlapping records found are returned, not just a boolean.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, resourceID uint, start, end time.Time) (AvailabilityResult, error) {
	res := AvailabilityResult{Conflicts: []Conflict{}}

	if err := ValidateWindow(start, end); err != nil {
		return res, err
	}

	var resource models.Resource
	if err := s.DB.WithContext(ctx).Preload("AvailabilityRules").First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return res, fmt.Errorf("resource %d: %w", resourceID, ErrNotFound)
		}
		return res, fmt.Errorf("failed to load resource %d: %w", resourceID, err)
	}

	if resource.AdvanceNoticeMinutes > 0 {
		cutoff := s.now().Add(time.Duration(resource.AdvanceNoticeMinutes) * time.Minute)
		if start.Before(cutoff) {
			res.Reason = ReasonAdvanceNotice
			return res, nil
		}
	}

	if !windowWithinRules(resource.AvailabilityRules, start, end) {
		res.Reason = ReasonOutsideHours
		return res, nil
	}

	bookings, holds, err := s.overlappingRecords(ctx, &resource, start, end)
	if err != nil {
		return res, err
	}

	for _, h := range holds {
		res.Conflicts = append(res.Conflicts, Conflict{
			ID: h.ID, Type: "hold", StartTime: h.StartTime, EndTime: h.EndTime, Reason: h.Reason,
		})
	}

	if resource.Capacity > 1 {
		// Count check: how many bookings already occupy the busiest instant
		// of the requested window.
		peak := peakOccupancy(bookings, start, end, resource.BufferMinutes)
		if peak >= resource.Capacity {
			for _, b := range bookings {
				res.Conflicts = append(res.Conflicts, bookingConflict(b))
			}
			res.Reason = ReasonCapacityFull
			return res, nil
		}
		if len(res.Conflicts) > 0 {
			// A hold blocks a shared venue outright.
			res.Reason = ReasonOverlap
			return res, nil
		}
		res.Available = true
		return res, nil
	}

	for _, b := range bookings {
		res.Conflicts = append(res.Conflicts, bookingConflict(b))
	}
	if len(res.Conflicts) > 0 {
		res.Reason = ReasonOverlap
		return res, nil
	}

	res.Available = true
	return res, nil
}

// overlappingRecords runs the standard half-open interval overlap test
// `existing.start < windowEnd AND existing.end > windowStart` against
// bookings (pending/confirmed only) and holds. The buffer is folded into the
// comparison operand instead of the stored column so the query stays portable:
// existing.end + buffer > windowStart  <=>  existing.end > windowStart - buffer.
func (s *AvailabilityService) overlappingRecords(ctx context.Context, resource *models.Resource, start, end time.Time) ([]models.Booking, []models.Hold, error) {
	buffered := start.Add(-time.Duration(resource.BufferMinutes) * time.Minute)

	var bookings []models.Booking
	if err := s.DB.WithContext(ctx).
		Where("resource_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			resource.ID, models.OccupyingStatuses, end, buffered).
		Order("start_time ASC").
		Find(&bookings).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}

	var holds []models.Hold
	if err := s.DB.WithContext(ctx).
		Where("resource_id = ? AND start_time < ? AND end_time > ?", resource.ID, end, buffered).
		Where("expires_at IS NULL OR expires_at > ?", s.now()).
		Order("start_time ASC").
		Find(&holds).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to query overlapping holds: %w", err)
	}

	return bookings, holds, nil
}

// ListSlots enumerates free start slots on one calendar date, stepping through
// the resource's open windows by its duration. Slots that fail the conflict
// check (or the advance-notice cutoff) are skipped.
func (s *AvailabilityService) ListSlots(ctx context.Context, resourceID uint, date time.Time) ([]Slot, error) {
	var resource models.Resource
	if err := s.DB.WithContext(ctx).Preload("AvailabilityRules").First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource %d: %w", resourceID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load resource %d: %w", resourceID, err)
	}

	step := time.Duration(resource.DurationMinutes) * time.Minute
	if step <= 0 {
		step = time.Hour
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	windows := openWindowsForDate(resource.AvailabilityRules, day)
	if len(resource.AvailabilityRules) == 0 {
		// No declared hours means open around the clock, same as
		// CheckAvailability treats it.
		windows = []minuteWindow{{from: day, to: day.Add(24 * time.Hour)}}
	}

	slots := []Slot{}
	for _, w := range windows {
		for cursor := w.from; !cursor.Add(step).After(w.to); cursor = cursor.Add(step) {
			result, err := s.CheckAvailability(ctx, resourceID, cursor, cursor.Add(step))
			if err != nil {
				return nil, err
			}
			if result.Available {
				slots = append(slots, Slot{StartTime: cursor, EndTime: cursor.Add(step)})
			}
		}
	}
	return slots, nil
}

// ValidateWindow enforces the window invariants shared by bookings, holds and
// availability checks: both ends present, end strictly after start.
func ValidateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start and end times are required: %w", ErrInvalidWindow)
	}
	if !end.After(start) {
		return fmt.Errorf("end must be after start: %w", ErrInvalidWindow)
	}
	return nil
}

func (s *AvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func bookingConflict(b models.Booking) Conflict {
	return Conflict{ID: b.ID, Type: "booking", StartTime: b.StartTime, EndTime: b.EndTime}
}

type minuteWindow struct {
	from time.Time
	to   time.Time
}

// windowWithinRules reports whether [start, end) falls entirely inside a
// declared open window. A resource with no rules is open around the clock.
// When rules exist, windows crossing midnight are rejected.
func windowWithinRules(rules []models.AvailabilityRule, start, end time.Time) bool {
	if len(rules) == 0 {
		return true
	}

	last := end.Add(-time.Nanosecond)
	if start.Year() != last.Year() || start.YearDay() != last.YearDay() {
		return false
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for _, w := range openWindowsForDate(rules, day) {
		if !start.Before(w.from) && !end.After(w.to) {
			return true
		}
	}
	return false
}

// openWindowsForDate resolves the effective open windows for one date: a date
// exception overrides the weekday's recurring rules entirely.
func openWindowsForDate(rules []models.AvailabilityRule, day time.Time) []minuteWindow {
	var windows []minuteWindow

	for _, r := range rules {
		if r.RuleType != models.RuleTypeException || r.Date == nil {
			continue
		}
		d := *r.Date
		if d.Year() == day.Year() && d.YearDay() == day.YearDay() {
			if r.Closed {
				return nil
			}
			windows = append(windows, minuteWindowAt(day, r.OpensAt, r.ClosesAt))
		}
	}
	if len(windows) > 0 {
		sortWindows(windows)
		return windows
	}

	weekday := int(day.Weekday())
	for _, r := range rules {
		if r.RuleType != models.RuleTypeRecurring || r.Weekday == nil || *r.Weekday != weekday {
			continue
		}
		windows = append(windows, minuteWindowAt(day, r.OpensAt, r.ClosesAt))
	}
	sortWindows(windows)
	return windows
}

func minuteWindowAt(day time.Time, opensAt, closesAt int) minuteWindow {
	return minuteWindow{
		from: day.Add(time.Duration(opensAt) * time.Minute),
		to:   day.Add(time.Duration(closesAt) * time.Minute),
	}
}

func sortWindows(windows []minuteWindow) {
	sort.Slice(windows, func(i, j int) bool { return windows[i].from.Before(windows[j].from) })
}

// peakOccupancy sweeps the booking intervals (buffer applied to each end,
// clipped to the requested window) and returns the highest number occupying
// any single instant.
func peakOccupancy(bookings []models.Booking, start, end time.Time, bufferMinutes int) int {
	type event struct {
		at    time.Time
		delta int
	}
	buffer := time.Duration(bufferMinutes) * time.Minute

	var events []event
	for _, b := range bookings {
		from := b.StartTime
		if from.Before(start) {
			from = start
		}
		to := b.EndTime.Add(buffer)
		if to.After(end) {
			to = end
		}
		if !to.After(from) {
			continue
		}
		events = append(events, event{at: from, delta: 1}, event{at: to, delta: -1})
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			// Departures before arrivals keeps half-open semantics.
			return events[i].delta < events[j].delta
		}
		return events[i].at.Before(events[j].at)
	})

	peak, current := 0, 0
	for _, e := range events {
		current += e.delta
		if current > peak {
			peak = current
		}
	}
	return peak
}
