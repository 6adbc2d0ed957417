package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"bookable-backend/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Business{},
		&models.Client{},
		&models.StaffMember{},
		&models.Resource{},
		&models.AvailabilityRule{},
		&models.Booking{},
		&models.Review{},
		&models.Hold{},
		&models.NotificationLog{},
		&models.WidgetKey{},
	))
	return db
}

func createTestBusiness(t *testing.T, db *gorm.DB) *models.Business {
	t.Helper()
	business := &models.Business{
		Name:  "Test Studio",
		Email: fmt.Sprintf("owner-%s@example.com", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))),
	}
	require.NoError(t, db.Create(business).Error)
	return business
}

func createTestClient(t *testing.T, db *gorm.DB) *models.Client {
	t.Helper()
	client := &models.Client{
		FullName: "Jordan Client",
		Email:    fmt.Sprintf("client-%s@example.com", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))),
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func createTestResource(t *testing.T, db *gorm.DB, businessID uint, mutate ...func(*models.Resource)) *models.Resource {
	t.Helper()
	resource := &models.Resource{
		BusinessID:      businessID,
		Kind:            models.ResourceKindService,
		Name:            "Standard Session",
		PriceAmount:     5000,
		Currency:        "USD",
		Capacity:        1,
		DurationMinutes: 60,
		Active:          true,
	}
	for _, m := range mutate {
		m(resource)
	}
	require.NoError(t, db.Create(resource).Error)
	return resource
}

// recorderMailer captures sends in place of SMTP.
type recorderMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *recorderMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recorderMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *recorderMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

func newTestBookingService(db *gorm.DB, mailer Mailer) *BookingService {
	notifier := NewNotificationService(db, mailer, zerolog.Nop())
	return NewBookingService(db, notifier)
}

// futureDay returns midnight of a day far enough ahead that advance-notice
// defaults never interfere.
func futureDay() time.Time {
	now := time.Now().UTC().AddDate(0, 0, 30)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func at(day time.Time, hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}
