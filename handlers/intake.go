package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chelmassage/models"
	"chelmassage/services/document"
	"chelmassage/services/notification"
	"chelmassage/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxIntakeBodyBytes fits the form fields plus two canvas drawings as data URLs.
const MaxIntakeBodyBytes = 10 << 20

type IntakeHandler struct {
	Renderer     document.Renderer
	Dispatcher   notification.Dispatcher
	Logger       *zap.Logger
	Now          func() time.Time
	MaxBodyBytes int64
}

func NewIntakeHandler(renderer document.Renderer, dispatcher notification.Dispatcher, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{Renderer: renderer, Dispatcher: dispatcher, Logger: logger, Now: time.Now, MaxBodyBytes: MaxIntakeBodyBytes}
}

// SubmitIntake renders the form synchronously and leaves mail, sheets and archive
// work to the dispatcher.
func (h *IntakeHandler) SubmitIntake(c *gin.Context) {
	logger := getLogger(c, h.Logger)

	if h.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes)
	}

	var form models.IntakeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.JSONError(c, http.StatusRequestEntityTooLarge, "Intake form is too large.", err.Error())
			return
		}
		utils.JSONError(c, http.StatusBadRequest, "Invalid JSON payload.", err.Error())
		return
	}

	pdf, err := h.Renderer.RenderIntake(form)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Server error while processing the form.", err.Error())
		return
	}

	note := models.IntakeNotification{
		JobID:       uuid.New().String(),
		Form:        form,
		PDF:         pdf,
		SubmittedAt: h.Now(),
	}
	if err := h.Dispatcher.DispatchIntake(context.WithoutCancel(c.Request.Context()), note); err != nil {
		logger.Error("failed to queue intake processing",
			zap.String("jobID", note.JobID), zap.String("client", form.ClientName()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Server error while processing the form.", err.Error())
		return
	}

	logger.Info("intake form accepted", zap.String("jobID", note.JobID), zap.String("client", form.ClientName()))
	c.JSON(http.StatusOK, gin.H{"message": "Intake form submitted successfully."})
}
