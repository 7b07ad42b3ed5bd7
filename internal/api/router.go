package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"jabber-dashboard/config"
	"jabber-dashboard/internal/mw"
	"jabber-dashboard/internal/state"
	"jabber-dashboard/internal/store"
	"jabber-dashboard/internal/upstream"
)

// NewRouter creates and configures the dashboard's Gin router.
func NewRouter(cfg *config.Config, client *upstream.Client, ws *state.Workspace, st store.Store, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(client, ws, st, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// The classroom snapshot is identical for every caller, so those GETs
	// get a short response cache. Booking routes refetch by contract and
	// are never cached.
	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/classrooms", caching, handler.ListClassrooms)
		api.GET("/classrooms/:id", caching, handler.GetClassroom)
		api.GET("/classrooms/:id/usage", handler.GetUsageLogs)
		api.POST("/usage", handler.AddUsageLog)

		api.GET("/bookings", handler.ListBookings)
		api.POST("/bookings", handler.CreateBooking)
		api.PUT("/bookings/:id", handler.UpdateBooking)
		api.DELETE("/bookings/:id", handler.DeleteBooking)
		api.POST("/bookings/:id/finish", handler.FinishUsage)

		api.GET("/summary", handler.GetSummary)

		api.GET("/user", handler.GetUser)
		api.POST("/logout", handler.Logout)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)
	}

	return r
}
