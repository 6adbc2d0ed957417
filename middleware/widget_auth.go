package middleware

import (
	"net/http"
	"sync"

	"bookable-backend/services"
	"bookable-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ContextBusinessID is set on the gin context once a widget key resolves.
const ContextBusinessID = "widgetBusinessID"

// WidgetAuth validates the X-Widget-Key header against issued keys and
// applies a per-key rate limit so one embedded widget can't starve the rest.
type WidgetAuth struct {
	Widgets *services.WidgetService

	rps      rate.Limit
	burst    int
	limiters sync.Map
}

func NewWidgetAuth(widgets *services.WidgetService, rps float64, burst int) *WidgetAuth {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &WidgetAuth{Widgets: widgets, rps: rate.Limit(rps), burst: burst}
}

func (w *WidgetAuth) limiterFor(key string) *rate.Limiter {
	if v, ok := w.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}
	lim := rate.NewLimiter(w.rps, w.burst)
	actual, loaded := w.limiters.LoadOrStore(key, lim)
	if loaded {
		if existing, ok := actual.(*rate.Limiter); ok {
			return existing
		}
	}
	return lim
}

func (w *WidgetAuth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Widget-Key")
		key, err := w.Widgets.Resolve(c.Request.Context(), token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "error.invalidWidgetKey", "missing or invalid widget key")
			c.Abort()
			return
		}

		if !w.limiterFor(key.Key).Allow() {
			utils.JSONError(c, http.StatusTooManyRequests, "error.rateLimited", "too many requests for this widget key")
			c.Abort()
			return
		}

		c.Set(ContextBusinessID, key.BusinessID)
		c.Next()
	}
}
