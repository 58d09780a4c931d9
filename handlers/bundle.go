package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	GetAvailableDays gin.HandlerFunc
	GetAvailability  gin.HandlerFunc
	BookAppointment  gin.HandlerFunc

	// Intake endpoints
	SubmitIntake gin.HandlerFunc

	// Frontend
	Pages     *PageHandler
	StaticDir string

	Health gin.HandlerFunc
}
