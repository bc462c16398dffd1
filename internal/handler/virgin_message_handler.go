package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JDamianDelgado/ValleDePaz/internal/media"
	"github.com/JDamianDelgado/ValleDePaz/internal/middleware"
	"github.com/JDamianDelgado/ValleDePaz/internal/service"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VirginMessageHandler struct {
	messageService *service.VirginMessageService
	maxImageBytes  int64
}

func NewVirginMessageHandler(messageService *service.VirginMessageService, maxImageBytes int64) *VirginMessageHandler {
	return &VirginMessageHandler{
		messageService: messageService,
		maxImageBytes:  maxImageBytes,
	}
}

// List returns every message
// GET /api/mensajes-virgen
func (h *VirginMessageHandler) List(c *gin.Context) {
	messages, err := h.messageService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// ListApproved returns the public wall without author contact data
// GET /api/mensajes-virgen/aprobados
func (h *VirginMessageHandler) ListApproved(c *gin.Context) {
	messages, err := h.messageService.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Filter splits messages into approved and pending
// GET /api/mensajes-virgen/filter
func (h *VirginMessageHandler) Filter(c *gin.Context) {
	result, err := h.messageService.Filter(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create submits a message with an optional image
// POST /api/mensajes-virgen (multipart: texto, file)
func (h *VirginMessageHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	text := c.PostForm("texto")
	if strings.TrimSpace(text) == "" {
		respondError(c, service.ErrEmptyText)
		return
	}

	var imageURL *string
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		upload, err := media.ReadUpload(fh, h.maxImageBytes)
		if err != nil {
			respondError(c, err)
			return
		}
		url, err := h.messageService.UploadImage(c.Request.Context(), upload)
		if err != nil {
			respondError(c, err)
			return
		}
		imageURL = &url
	case !errors.Is(err, http.ErrMissingFile):
		logger.Log.Warn("Message upload parsing failed",
			zap.String("user_id", claims.UserID.String()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	id, err := h.messageService.Create(c.Request.Context(), claims.UserID, text, imageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Log.Info("Message submitted",
		zap.String("message_id", id.String()),
		zap.String("user_id", claims.UserID.String()),
		zap.String("ip", c.ClientIP()),
	)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Mensaje enviado, pendiente de aprobación",
		"id":      id,
	})
}

// Update edits a pending message
// PUT /api/mensajes-virgen/:id (JSON texto, or multipart texto + file)
func (h *VirginMessageHandler) Update(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.VirginMessageUpdate
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if text, exists := c.GetPostForm("texto"); exists {
			req.Texto = &text
		}
		fh, err := c.FormFile("file")
		switch {
		case err == nil:
			upload, err := media.ReadUpload(fh, h.maxImageBytes)
			if err != nil {
				respondError(c, err)
				return
			}
			req.Imagen = &upload
		case !errors.Is(err, http.ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	actor := service.Actor{UserID: claims.UserID, IsAdmin: claims.IsAdmin()}
	updatedID, err := h.messageService.Update(c.Request.Context(), id, req, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": updatedID})
}

// Approve publishes a message and emails its author
// PATCH /api/mensajes-virgen/:id/approve
func (h *VirginMessageHandler) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logger.Log.Info("Admin approving message",
		zap.String("admin_id", adminID(c)),
		zap.String("message_id", id.String()),
	)

	message, err := h.messageService.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

// Reject emails the author and deletes the message
// DELETE /api/mensajes-virgen/:id
func (h *VirginMessageHandler) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logger.Log.Info("Admin rejecting message",
		zap.String("admin_id", adminID(c)),
		zap.String("message_id", id.String()),
	)

	confirmation, err := h.messageService.Reject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": confirmation})
}

func adminID(c *gin.Context) string {
	if claims, ok := middleware.GetClaims(c); ok {
		return claims.UserID.String()
	}
	return ""
}
