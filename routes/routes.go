package routes

import (
	"net/http"
	"time"

	"chelmassage/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up availability and booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/available-days", hb.GetAvailableDays)
		api.GET("/availability", hb.GetAvailability)
		api.POST("/book", hb.BookAppointment)
	}
}

// RegisterIntakeRoutes sets up the intake form endpoint.
func RegisterIntakeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/submit-intake", hb.SubmitIntake)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Health != nil {
		r.GET("/health", hb.Health)
		return
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterPageRoutes serves the frontend pages and their assets.
func RegisterPageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.StaticDir != "" {
		r.Static("/static", hb.StaticDir)
	}
	if hb.Pages == nil {
		return
	}
	r.GET("/", hb.Pages.Page("index.html"))
	for _, page := range []string{"Booking.html", "intake.html", "BookingConfirm.html", "IntakeConfirm.html"} {
		r.GET("/"+page, hb.Pages.Page(page))
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", handlers.IdempotencyHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterBookingRoutes(r, hb)
	RegisterIntakeRoutes(r, hb)
	RegisterHealthRoute(r, hb)
	RegisterPageRoutes(r, hb)
}
