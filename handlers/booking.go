package handlers

import (
	"context"
	"errors"
	"net/http"

	"repairhub/models"
	"repairhub/services/booking"
	"repairhub/services/wizard"
	"repairhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingSubmitter persists a raw booking payload.
type BookingSubmitter interface {
	Submit(ctx context.Context, p *models.BookingPayload) (*models.BookingReceipt, error)
}

type BookingHandler struct {
	Sessions  *booking.SessionService
	Submitter BookingSubmitter
}

func NewBookingHandler(sessions *booking.SessionService, submitter BookingSubmitter) *BookingHandler {
	return &BookingHandler{Sessions: sessions, Submitter: submitter}
}

// sessionView is what the wizard endpoints return: the session plus what the
// client needs to render the current step.
type sessionView struct {
	*models.WizardSession
	Missing    []string        `json:"missing_fields"`
	CanProceed bool            `json:"can_proceed"`
	Pricing    *models.Pricing `json:"pricing,omitempty"`
}

func (h *BookingHandler) view(c *gin.Context, sess *models.WizardSession) sessionView {
	missing := wizard.Missing(sess.State.Form, sess.State.Step)
	v := sessionView{WizardSession: sess, Missing: missing, CanProceed: len(missing) == 0}
	if len(sess.State.Form.Device.Faults) > 0 {
		p, err := h.Sessions.Quote(c.Request.Context(), sess)
		if err != nil {
			getLogger(c).Warn("Failed to price session", zap.String("sessionID", sess.SessionID), zap.Error(err))
		} else {
			v.Pricing = &p
		}
	}
	return v
}

// writeBookingError maps service errors onto HTTP responses.
func writeBookingError(c *gin.Context, err error) {
	var stepErr *wizard.StepError
	var valErr *booking.ValidationError
	var fieldErr *booking.FieldError
	switch {
	case errors.As(err, &stepErr):
		utils.JSONValidationError(c, stepErr.Error(), stepErr.Fields)
	case errors.As(err, &valErr):
		c.JSON(http.StatusUnprocessableEntity, utils.ErrorResponse{
			Status: "error", Message: valErr.Message, Fields: []string{valErr.Field},
		})
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error()})
	case errors.Is(err, booking.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking session not found"})
	case errors.Is(err, booking.ErrSessionForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, booking.ErrNoDraft):
		c.JSON(http.StatusNotFound, gin.H{"error": "No saved booking to resume"})
	case errors.Is(err, wizard.ErrNotFinalStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		getLogger(c).Error("Booking request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, utils.TryAgainMessage, "")
	}
}

// CreateBookingHandler stores a booking payload posted directly by a client.
// The owner is always the authenticated user.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var payload models.BookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	payload.UserID = c.GetString(utils.CtxUserID)
	payload.BookingID = ""

	receipt, err := h.Submitter.Submit(c.Request.Context(), &payload)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// StartSessionHandler opens a wizard and offers a resumable draft, if any.
func (h *BookingHandler) StartSessionHandler(c *gin.Context) {
	sess, offer, err := h.Sessions.Start(c.Request.Context(), c.GetString(utils.CtxUserID), c.GetString(utils.CtxDeviceID))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": h.view(c, sess), "draft": offer})
}

func (h *BookingHandler) GetSessionHandler(c *gin.Context) {
	sess, err := h.Sessions.Get(c.Request.Context(), c.Param("id"), c.GetString(utils.CtxUserID))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c, sess))
}

func (h *BookingHandler) UpdateSessionHandler(c *gin.Context) {
	var patch models.FormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	sess, err := h.Sessions.Update(c.Request.Context(), c.Param("id"), c.GetString(utils.CtxUserID), patch)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c, sess))
}

func (h *BookingHandler) NextStepHandler(c *gin.Context) {
	sess, err := h.Sessions.Next(c.Request.Context(), c.Param("id"), c.GetString(utils.CtxUserID))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c, sess))
}

func (h *BookingHandler) PreviousStepHandler(c *gin.Context) {
	sess, err := h.Sessions.Previous(c.Request.Context(), c.Param("id"), c.GetString(utils.CtxUserID))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c, sess))
}

func (h *BookingHandler) ResumeHandler(c *gin.Context) {
	sess, err := h.Sessions.Resume(c.Request.Context(), c.Param("id"), c.GetString(utils.CtxUserID))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c, sess))
}

// RefreshAgentsHandler re-runs ranking for the session's current inputs.
func (h *BookingHandler) RefreshAgentsHandler(c *gin.Context) {
	sess, err := h.Sessions.RefreshAgents(c.Request.Context(), c.Param("id"), c.GetString(utils.CtxUserID))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(c, sess))
}

func (h *BookingHandler) SubmitHandler(c *gin.Context) {
	receipt, err := h.Sessions.Submit(c.Request.Context(), c.Param("id"), c.GetString(utils.CtxUserID))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *BookingHandler) CancelSessionHandler(c *gin.Context) {
	if err := h.Sessions.Cancel(c.Request.Context(), c.Param("id"), c.GetString(utils.CtxUserID)); err != nil {
		writeBookingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDraftHandler returns the device's resumable draft or 404.
func (h *BookingHandler) GetDraftHandler(c *gin.Context) {
	d := h.Sessions.Draft(c.Request.Context(), c.GetString(utils.CtxUserID), c.GetString(utils.CtxDeviceID))
	if d == nil {
		writeBookingError(c, booking.ErrNoDraft)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *BookingHandler) DiscardDraftHandler(c *gin.Context) {
	if err := h.Sessions.DiscardDraft(c.Request.Context(), c.GetString(utils.CtxDeviceID)); err != nil {
		writeBookingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
