package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"chelmassage/models"
	"chelmassage/services/booking"
	"chelmassage/services/calendar"
	"chelmassage/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeader lets a client retry POST /api/book without booking twice.
const IdempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	Service     booking.BookingService
	DefaultDays int
	Logger      *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, defaultDays int, logger *zap.Logger) *BookingHandler {
	if defaultDays <= 0 {
		defaultDays = booking.DefaultDaysToScan
	}
	return &BookingHandler{Service: svc, DefaultDays: defaultDays, Logger: logger}
}

// GetAvailableDays returns the dates in the scan range that have open time.
// A missing or invalid range falls back to DefaultDays.
func (h *BookingHandler) GetAvailableDays(c *gin.Context) {
	days := h.DefaultDays
	if raw := strings.TrimSpace(c.Query("range")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > booking.MaxDaysToScan {
			getLogger(c, h.Logger).Debug("ignoring invalid range", zap.String("range", raw), zap.Int("default", days))
		} else {
			days = n
		}
	}

	dates, err := h.Service.AvailableDays(c.Request.Context(), days)
	if err != nil {
		h.calendarError(c, err, "Failed to retrieve calendar events.")
		return
	}
	c.JSON(http.StatusOK, dates)
}

// GetAvailability returns every valid start time for a date and service duration.
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	req, err := booking.ParseSlotRequest(c.Query("date"), c.Query("duration"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, validationMessage(err), "")
		return
	}

	starts, err := h.Service.AvailableStarts(c.Request.Context(), req)
	if err != nil {
		if booking.IsValidationError(err) {
			utils.JSONError(c, http.StatusBadRequest, validationMessage(err), "")
			return
		}
		h.calendarError(c, err, "Failed to retrieve calendar events.")
		return
	}
	c.JSON(http.StatusOK, booking.FormatStarts(starts))
}

// BookAppointment validates the request, runs the overlap guard and creates the event.
func (h *BookingHandler) BookAppointment(c *gin.Context) {
	var input models.BookingRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid or missing data in request.", err.Error())
		return
	}
	req, err := booking.NewBookingRequest(input, c.GetHeader(IdempotencyHeader))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, validationMessage(err), "")
		return
	}

	conf, err := h.Service.Book(c.Request.Context(), req)
	switch {
	case err == nil:
		getLogger(c, h.Logger).Info("booking confirmed",
			zap.String("eventID", conf.EventID),
			zap.Time("start", req.Start),
			zap.Int("durationMinutes", req.DurationMinutes),
		)
		c.JSON(http.StatusOK, conf)
	case booking.IsConflict(err):
		utils.JSONError(c, http.StatusConflict, "The selected time slot is no longer available. Please choose another time.", "")
	case booking.IsValidationError(err):
		utils.JSONError(c, http.StatusBadRequest, validationMessage(err), "")
	default:
		h.calendarError(c, err, "Could not complete the booking. Please try again.")
	}
}

// calendarError maps collaborator failures: 503 when the calendar was never configured, 500 otherwise.
func (h *BookingHandler) calendarError(c *gin.Context, err error, message string) {
	if errors.Is(err, calendar.ErrNotConfigured) {
		utils.JSONError(c, http.StatusServiceUnavailable, "Could not connect to Google Calendar service.", err.Error())
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, message, err.Error())
}

func validationMessage(err error) string {
	var ve *booking.ValidationError
	if errors.As(err, &ve) {
		msg := ve.Message
		if msg != "" {
			msg = strings.ToUpper(msg[:1]) + msg[1:]
		}
		return msg + "."
	}
	return "Invalid request."
}
