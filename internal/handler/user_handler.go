package handler

import (
	"context"
	"net/http"

	"github.com/JDamianDelgado/ValleDePaz/internal/media"
	"github.com/JDamianDelgado/ValleDePaz/internal/service"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService   *service.UserService
	maxImageBytes int64
}

func NewUserHandler(userService *service.UserService, maxImageBytes int64) *UserHandler {
	return &UserHandler{
		userService:   userService,
		maxImageBytes: maxImageBytes,
	}
}

// List returns all users
// GET /api/user
func (h *UserHandler) List(c *gin.Context) {
	logger.Log.Info("Admin fetching all users",
		zap.String("admin_id", adminID(c)),
	)

	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Get returns one user
// GET /api/user/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetFullProfile returns the user with their messages
// GET /api/user/:id/datos
func (h *UserHandler) GetFullProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetFullProfile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update patches profile fields
// PATCH /api/user/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdatePreferences patches notification preferences
// PATCH /api/user/:id/preferences
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.PreferencesUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	prefs, err := h.userService.UpdatePreferences(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// UploadProfileImage sets the first profile image
// POST /api/user/:id/imagen-perfil
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	h.profileImage(c, h.userService.UploadProfileImage)
}

// ReplaceProfileImage replaces the profile image
// PUT /api/user/:id/imagen-perfil
func (h *UserHandler) ReplaceProfileImage(c *gin.Context) {
	h.profileImage(c, h.userService.ReplaceProfileImage)
}

// Delete removes a user that has no messages
// DELETE /api/user/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logger.Log.Info("Admin deleting user",
		zap.String("admin_id", adminID(c)),
		zap.String("target_user_id", id.String()),
	)

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// DeleteWithMessages removes a user and all their messages
// DELETE /api/user/:id/with-messages
func (h *UserHandler) DeleteWithMessages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logger.Log.Info("Admin deleting user with messages",
		zap.String("admin_id", adminID(c)),
		zap.String("target_user_id", id.String()),
	)

	removed, err := h.userService.DeleteWithMessages(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":          "User and messages deleted successfully",
		"deleted_messages": removed,
	})
}

func (h *UserHandler) profileImage(c *gin.Context, store func(ctx context.Context, id uuid.UUID, image media.Upload) (string, error)) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an image file is required"})
		return
	}
	upload, err := media.ReadUpload(fh, h.maxImageBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := store(c.Request.Context(), id, upload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imagen_perfil": url})
}
