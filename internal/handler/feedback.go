package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"complaintportal/internal/notify"
)

// Feedback mails a free-form submission to the portal team. Nothing is
// persisted; the job carries the rendered email plus any uploaded
// attachment keys.
func (h *Handler) Feedback(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var fb notify.Feedback
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid multipart form"})
			return
		}
		fb = feedbackFromForm(form)
		keys, err := h.storeAttachments(c.Request.Context(), "feedback", actor.Subject, form.File["attachments"])
		if err != nil {
			h.log.Error("attachment upload failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"message": "attachment upload failed"})
			return
		}
		fb.Attachments = keys
	} else {
		if err := c.ShouldBindJSON(&fb); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
	}

	fb.ScholarNumber = actor.Subject
	if fb.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please enter all details!"})
		return
	}

	if err := h.notifier.FeedbackReceived(c.Request.Context(), fb); err != nil {
		h.log.Error("feedback enqueue failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"message": "feedback could not be submitted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback submitted successfully!"})
}

func feedbackFromForm(form *multipart.Form) notify.Feedback {
	get := func(key string) string {
		if vals := form.Value[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}
	return notify.Feedback{
		Name:        get("name"),
		Stream:      get("stream"),
		Year:        get("year"),
		Department:  get("department"),
		Description: get("description"),
	}
}
