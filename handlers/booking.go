package handlers

import (
	"net/http"
	"time"

	"serenity/services/schedule"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking commit flow.
type BookingHandler struct {
	Service schedule.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(service schedule.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// ConfirmBookingHandler books a window for the authenticated patient. On a
// conflict the client is expected to re-fetch availability before retrying.
func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	patientIDValue, exists := c.Get("patientID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Patient not authenticated"})
		return
	}
	patientID, _ := patientIDValue.(string)

	var req struct {
		TherapistID string `json:"therapistId" binding:"required"`
		Date        string `json:"date" binding:"required"`
		Start       int    `json:"start"`
		End         int    `json:"end"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	booking, err := h.Service.ConfirmBooking(c.Request.Context(), req.TherapistID, patientID,
		req.Date, schedule.Window{Start: req.Start, End: req.End}, time.Now())
	if err != nil {
		h.Logger.Warn("Booking confirmation failed",
			zap.String("therapistID", req.TherapistID),
			zap.String("patientID", patientID),
			zap.String("date", req.Date),
			zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": "Booking confirmation failed", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session booked successfully",
		"booking": booking,
	})
}

// CancelBookingHandler cancels a confirmed session and releases its slot.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	bookingID := c.Param("bookingID")
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing booking ID in path"})
		return
	}

	if err := h.Service.CancelBooking(c.Request.Context(), bookingID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to cancel booking", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}

// CompleteBookingHandler marks a session completed after it took place.
func (h *BookingHandler) CompleteBookingHandler(c *gin.Context) {
	bookingID := c.Param("bookingID")
	if bookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing booking ID in path"})
		return
	}

	if err := h.Service.CompleteBooking(c.Request.Context(), bookingID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to complete booking", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking completed"})
}
