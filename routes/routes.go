package routes

import (
	"net/http"
	"time"

	"serenity/handlers"
	"serenity/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterScheduleRoutes registers the therapist-facing slot management endpoints.
func RegisterScheduleRoutes(r *gin.Engine, sh *handlers.ScheduleHandler) {
	api := r.Group("/api/schedule")
	{
		// Calendar navigation is public; it carries no therapist data.
		api.GET("/calendar", sh.GetCalendarMonthHandler)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(middleware.RoleTherapist))
		protected.POST("/select", sh.SelectWindowHandler)
		protected.PATCH("/selection/:sessionID", sh.EditSelectedHandler)
		protected.DELETE("/selection/:sessionID", sh.DeleteSelectedHandler)
		protected.POST("/selection/:sessionID/reset", sh.ResetSelectionHandler)
	}
}

// RegisterAvailabilityRoutes registers the patient-facing read endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, sh *handlers.ScheduleHandler) {
	api := r.Group("/api/therapists/:therapistID")
	{
		api.Use(middleware.JWTAuthMiddleware(middleware.RolePatient))
		api.GET("/availability", sh.GetAvailabilityHandler)
		api.GET("/conflict", sh.CheckConflictHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking commit flow.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware(middleware.RolePatient))
		bookingGroup.POST("/confirm", bh.ConfirmBookingHandler)
		bookingGroup.POST("/:bookingID/cancel", bh.CancelBookingHandler)
		bookingGroup.POST("/:bookingID/complete", bh.CompleteBookingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Serenity"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, sh *handlers.ScheduleHandler, bh *handlers.BookingHandler) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterScheduleRoutes(r, sh)
	RegisterAvailabilityRoutes(r, sh)
	RegisterBookingRoutes(r, bh)
}
