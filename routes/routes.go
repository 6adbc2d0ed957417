package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"bookable-backend/controllers"
	"bookable-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires controllers onto the route tree. The widget group sits
// behind key auth and per-key rate limiting; everything else is the business
// and admin API.
func SetupRouter(
	logger zerolog.Logger,
	bc *controllers.BookingController,
	ac *controllers.AvailabilityController,
	rc *controllers.ResourceController,
	hc *controllers.HoldController,
	buc *controllers.BusinessController,
	cc *controllers.ClientController,
	wc *controllers.WidgetController,
	widgetAuth *middleware.WidgetAuth,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Widget-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		businesses := api.Group("/businesses")
		{
			businesses.POST("/register", buc.Register)
			businesses.POST("/login", buc.Login)
			businesses.GET("/:id", buc.GetBusiness)
			businesses.POST("/:id/staff", buc.AddStaff)
			businesses.GET("/:id/staff", buc.ListStaff)
		}

		clients := api.Group("/clients")
		{
			clients.POST("", cc.CreateClient)
			clients.GET("/:id", cc.GetClient)
		}

		resources := api.Group("/resources")
		{
			resources.GET("", rc.ListResources)
			resources.POST("", rc.CreateResource)
			resources.GET("/:id", rc.GetResource)
			resources.PATCH("/:id", rc.UpdateResource)
			resources.POST("/:id/rules", rc.AddRule)
			resources.DELETE("/:id/rules/:ruleId", rc.RemoveRule)
			resources.GET("/:id/reviews", rc.ListReviews)
			resources.GET("/:id/slots", ac.Slots)
		}

		api.POST("/availability/check", ac.Check)

		bookings := api.Group("/bookings")
		{
			bookings.GET("", bc.ListBookings)
			bookings.POST("", bc.CreateBooking)
			bookings.GET("/:id", bc.GetBooking)
			bookings.POST("/:id/transition", bc.Transition)
			bookings.PATCH("/:id/note", bc.UpdateNote)
			bookings.POST("/:id/review", bc.AttachReview)
		}

		holds := api.Group("/holds")
		{
			holds.GET("", hc.ListHolds)
			holds.POST("", hc.CreateHold)
			holds.DELETE("/:id", hc.ReleaseHold)
		}

		widgetKeys := api.Group("/widget-keys")
		{
			widgetKeys.GET("", wc.ListKeys)
			widgetKeys.POST("", wc.IssueKey)
			widgetKeys.DELETE("/:id", wc.RevokeKey)
		}
	}

	widget := r.Group("/widget", widgetAuth.Handler())
	{
		widget.GET("/resources", wc.PublicResources)
		widget.GET("/slots", wc.PublicSlots)
		widget.POST("/bookings", wc.PublicCreateBooking)
	}

	return r
}
