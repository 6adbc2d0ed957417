package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookable-backend/controllers"
	"bookable-backend/middleware"
	"bookable-backend/models"
	"bookable-backend/services"
)

type nopMailer struct{}

func (nopMailer) Send(to, subject, body string) error { return nil }

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	logger := zerolog.Nop()
	notifier := services.NewNotificationService(db, nopMailer{}, logger)

	availabilityService := services.NewAvailabilityService(db)
	bookingService := services.NewBookingService(db, notifier)
	holdService := services.NewHoldService(db)
	resourceService := services.NewResourceService(db)
	businessService := services.NewBusinessService(db)
	clientService := services.NewClientService(db)
	widgetService := services.NewWidgetService(db)

	router := SetupRouter(
		logger,
		controllers.NewBookingController(bookingService),
		controllers.NewAvailabilityController(availabilityService),
		controllers.NewResourceController(resourceService),
		controllers.NewHoldController(holdService),
		controllers.NewBusinessController(businessService),
		controllers.NewClientController(clientService),
		controllers.NewWidgetController(widgetService, resourceService, availabilityService, bookingService, clientService),
		middleware.NewWidgetAuth(widgetService, 0.01, 3),
	)

	return &testEnv{db: db, router: router}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(t *testing.T) (*models.Business, *models.Client, *models.Resource) {
	t.Helper()
	business := &models.Business{Name: "Route Studio", Email: "routes-" + strings.ToLower(t.Name()) + "@example.com"}
	require.NoError(t, e.db.Create(business).Error)
	client := &models.Client{FullName: "Route Client", Email: "routes-client-" + strings.ToLower(t.Name()) + "@example.com"}
	require.NoError(t, e.db.Create(client).Error)
	resource := &models.Resource{
		BusinessID:      business.ID,
		Kind:            models.ResourceKindService,
		Name:            "Session",
		PriceAmount:     4000,
		Currency:        "USD",
		Capacity:        1,
		DurationMinutes: 60,
		Active:          true,
	}
	require.NoError(t, e.db.Create(resource).Error)
	return business, client, resource
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func testWindow() (time.Time, time.Time) {
	start := time.Now().UTC().AddDate(0, 0, 21).Truncate(24 * time.Hour).Add(10 * time.Hour)
	return start, start.Add(time.Hour)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingConflictOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	_, client, resource := env.seed(t)
	start, end := testWindow()

	payload := map[string]interface{}{
		"resource_id": resource.ID,
		"client_id":   client.ID,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    end.Format(time.RFC3339),
	}

	w := env.do(t, http.MethodPost, "/api/bookings", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])

	// Same window again: rejected with the blocking booking listed.
	w = env.do(t, http.MethodPost, "/api/bookings", payload, nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	body = decodeBody(t, w)
	conflicts, ok := body["conflicts"].([]interface{})
	require.True(t, ok)
	assert.Len(t, conflicts, 1)

	// Adjacent window is fine.
	payload["start_time"] = end.Format(time.RFC3339)
	payload["end_time"] = end.Add(time.Hour).Format(time.RFC3339)
	w = env.do(t, http.MethodPost, "/api/bookings", payload, nil)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestAvailabilityCheckEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, _, resource := env.seed(t)
	start, end := testWindow()

	w := env.do(t, http.MethodPost, "/api/availability/check", map[string]interface{}{
		"resource_id": resource.ID,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    end.Format(time.RFC3339),
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["available"])

	// Inverted window maps to 400.
	w = env.do(t, http.MethodPost, "/api/availability/check", map[string]interface{}{
		"resource_id": resource.ID,
		"start_time":  end.Format(time.RFC3339),
		"end_time":    start.Format(time.RFC3339),
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestTransitionEndpointStatusCodes(t *testing.T) {
	env := newTestEnv(t)
	business, client, resource := env.seed(t)
	start, end := testWindow()

	w := env.do(t, http.MethodPost, "/api/bookings", map[string]interface{}{
		"resource_id": resource.ID,
		"client_id":   client.ID,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    end.Format(time.RFC3339),
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeBody(t, w)["data"].(map[string]interface{})
	bookingID := uint(data["id"].(float64))

	// Client may not confirm.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%d/transition", bookingID), map[string]interface{}{
		"actor_id": client.ID, "actor_role": "client", "target_status": "confirmed",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	// Provider confirms.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%d/transition", bookingID), map[string]interface{}{
		"actor_id": business.ID, "actor_role": "provider", "target_status": "confirmed",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Confirming twice is an invalid transition.
	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/bookings/%d/transition", bookingID), map[string]interface{}{
		"actor_id": business.ID, "actor_role": "provider", "target_status": "confirmed",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	// Unknown booking is a 404.
	w = env.do(t, http.MethodPost, "/api/bookings/999999/transition", map[string]interface{}{
		"actor_id": business.ID, "actor_role": "provider", "target_status": "confirmed",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestWidgetAuthAndRateLimit(t *testing.T) {
	env := newTestEnv(t)
	business, _, _ := env.seed(t)

	// No key, bad key.
	w := env.do(t, http.MethodGet, "/widget/resources", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(t, http.MethodGet, "/widget/resources", nil, map[string]string{"X-Widget-Key": "bogus"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Issue a key through the business API.
	w = env.do(t, http.MethodPost, "/api/widget-keys", map[string]interface{}{
		"business_id": business.ID, "label": "site",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	key := decodeBody(t, w)["data"].(map[string]interface{})["key"].(string)

	headers := map[string]string{"X-Widget-Key": key}
	w = env.do(t, http.MethodGet, "/widget/resources", nil, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Burst of 3 configured in newTestEnv; the 4th immediate call trips the
	// limiter for this key.
	env.do(t, http.MethodGet, "/widget/resources", nil, headers)
	env.do(t, http.MethodGet, "/widget/resources", nil, headers)
	w = env.do(t, http.MethodGet, "/widget/resources", nil, headers)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestWidgetBookingCrossTenantResource(t *testing.T) {
	env := newTestEnv(t)
	business, _, _ := env.seed(t)

	other := &models.Business{Name: "Other Tenant", Email: "other-tenant-" + strings.ToLower(t.Name()) + "@example.com"}
	require.NoError(t, env.db.Create(other).Error)
	foreign := &models.Resource{
		BusinessID: other.ID, Kind: models.ResourceKindService, Name: "Foreign",
		Capacity: 1, DurationMinutes: 60, Currency: "USD", Active: true,
	}
	require.NoError(t, env.db.Create(foreign).Error)

	w := env.do(t, http.MethodPost, "/api/widget-keys", map[string]interface{}{"business_id": business.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	key := decodeBody(t, w)["data"].(map[string]interface{})["key"].(string)

	start, end := testWindow()
	w = env.do(t, http.MethodPost, "/widget/bookings", map[string]interface{}{
		"resource_id": foreign.ID,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    end.Format(time.RFC3339),
		"full_name":   "Visitor",
		"email":       "visitor@example.com",
	}, map[string]string{"X-Widget-Key": key})

	// Another tenant's resource reads as not found, not forbidden.
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestWidgetBookingCreatesClient(t *testing.T) {
	env := newTestEnv(t)
	business, _, resource := env.seed(t)

	w := env.do(t, http.MethodPost, "/api/widget-keys", map[string]interface{}{"business_id": business.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	key := decodeBody(t, w)["data"].(map[string]interface{})["key"].(string)

	start, end := testWindow()
	w = env.do(t, http.MethodPost, "/widget/bookings", map[string]interface{}{
		"resource_id": resource.ID,
		"start_time":  start.Format(time.RFC3339),
		"end_time":    end.Format(time.RFC3339),
		"full_name":   "Walk In",
		"email":       "walkin@example.com",
	}, map[string]string{"X-Widget-Key": key})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.StatusPending, data["status"].(string))

	var created models.Client
	require.NoError(t, env.db.Where("email = ?", "walkin@example.com").First(&created).Error)
	assert.Equal(t, "Walk In", created.FullName)
}
