package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Osomudeya/retoucher-demo/internal/domain"
)

// ContactSaver persists a validated contact-form submission.
type ContactSaver interface {
	Save(ctx context.Context, c domain.ContactSubmission) error
}

type ContactHandler struct {
	store ContactSaver
}

func NewContactHandler(store ContactSaver) *ContactHandler {
	return &ContactHandler{store: store}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var submission domain.ContactSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields required"})
		return
	}

	if err := h.store.Save(c.Request.Context(), submission); err != nil {
		slog.Error("failed to save contact submission", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	slog.Info("contact form submitted",
		"name", submission.Name,
		"email", submission.Email,
		"project", submission.Project,
	)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contact form submitted",
	})
}
