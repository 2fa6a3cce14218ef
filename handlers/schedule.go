package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"serenity/services/schedule"
	"serenity/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ScheduleHandler exposes the calendar, availability, and slot lifecycle
// endpoints. Availability and lifecycle responses are computed from fresh
// store reads; only the pure month calendar is served from cache.
type ScheduleHandler struct {
	Engine     schedule.SchedulingEngine
	Controller schedule.LifecycleController
	Cache      *redis.Client
	Logger     *zap.Logger
}

func NewScheduleHandler(engine schedule.SchedulingEngine, controller schedule.LifecycleController, cache *redis.Client, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{Engine: engine, Controller: controller, Cache: cache, Logger: logger}
}

// statusFor maps scheduling error codes onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case schedule.HasCode(err, schedule.CodeInvalidInput):
		return http.StatusBadRequest
	case schedule.HasCode(err, schedule.CodeInvalidState):
		return http.StatusUnprocessableEntity
	case schedule.HasCode(err, schedule.CodeSlotConflict),
		schedule.HasCode(err, schedule.CodeCannotDeleteBookedSlot):
		return http.StatusConflict
	case schedule.HasCode(err, schedule.CodeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GetCalendarMonthHandler returns the day descriptors for a month navigation.
func (h *ScheduleHandler) GetCalendarMonthHandler(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid month"})
		return
	}

	// The calendar depends only on (year, month, today), so identical
	// requests within a day are served from cache.
	ctx := c.Request.Context()
	key := fmt.Sprintf("%s%04d-%02d:%s", utils.CalendarCachePrefix, year, month, utils.DateOf(time.Now()))
	if h.Cache != nil {
		if cached, err := h.Cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		}
	}

	days, err := h.Engine.MonthCalendar(year, time.Month(month), time.Now())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to build calendar", "message": err.Error()})
		return
	}

	payload, err := json.Marshal(gin.H{"days": days})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build calendar", "message": err.Error()})
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Set(ctx, key, payload, utils.CalendarCacheTTL).Err(); err != nil {
			h.Logger.Warn("Failed to cache calendar month", zap.Error(err))
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// GetAvailabilityHandler resolves every template window for a therapist and date.
func (h *ScheduleHandler) GetAvailabilityHandler(c *gin.Context) {
	therapistID := c.Param("therapistID")
	date := c.Query("date")
	if therapistID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing therapist ID or date"})
		return
	}

	states, err := h.Engine.GetAvailability(c.Request.Context(), therapistID, date, time.Now())
	if err != nil {
		h.Logger.Error("Failed to resolve availability",
			zap.String("therapistID", therapistID), zap.String("date", date), zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": "Failed to resolve availability", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": states})
}

// SelectWindowHandler selects a window for the authenticated therapist,
// creating a slot record when none exists.
func (h *ScheduleHandler) SelectWindowHandler(c *gin.Context) {
	therapistID, ok := therapistFromContext(c)
	if !ok {
		return
	}

	// No required binding on the window bounds: 0 is a legitimate start
	// (midnight) and the engine rejects non-template windows anyway.
	var req struct {
		Date  string `json:"date" binding:"required"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	selection, err := h.Controller.SelectWindow(c.Request.Context(), therapistID, req.Date,
		schedule.Window{Start: req.Start, End: req.End}, time.Now())
	if err != nil {
		h.Logger.Warn("Window selection failed",
			zap.String("therapistID", therapistID), zap.String("date", req.Date), zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": "Window selection failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selection": selection})
}

// EditSelectedHandler adjusts the end time of the current selection.
func (h *ScheduleHandler) EditSelectedHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session ID in path"})
		return
	}

	var req struct {
		NewEnd int `json:"newEnd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	selection, err := h.Controller.EditSelected(c.Request.Context(), sessionID, req.NewEnd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to edit selected slot", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selection": selection})
}

// DeleteSelectedHandler removes the currently selected slot record.
func (h *ScheduleHandler) DeleteSelectedHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session ID in path"})
		return
	}

	if err := h.Controller.DeleteSelected(c.Request.Context(), sessionID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to delete selected slot", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted successfully"})
}

// ResetSelectionHandler abandons the current selection, used on date navigation.
func (h *ScheduleHandler) ResetSelectionHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session ID in path"})
		return
	}

	if err := h.Controller.ResetSelection(c.Request.Context(), sessionID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to reset selection", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Selection cleared"})
}

// CheckConflictHandler re-validates a candidate window against active bookings.
func (h *ScheduleHandler) CheckConflictHandler(c *gin.Context) {
	therapistID := c.Param("therapistID")
	date := c.Query("date")
	start, startErr := strconv.Atoi(c.Query("start"))
	end, endErr := strconv.Atoi(c.Query("end"))
	if therapistID == "" || date == "" || startErr != nil || endErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing therapist ID, date, or window bounds"})
		return
	}

	conflicts, bookingID, err := h.Engine.CheckConflict(c.Request.Context(), therapistID, date,
		schedule.Window{Start: start, End: end})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Conflict check failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts, "bookingId": bookingID})
}

func therapistFromContext(c *gin.Context) (string, bool) {
	therapistIDValue, exists := c.Get("therapistID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Therapist not authenticated"})
		return "", false
	}
	therapistID, ok := therapistIDValue.(string)
	if !ok || therapistID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid therapist ID in context"})
		return "", false
	}
	return therapistID, true
}
