package handler

import (
	"bytes"
	"net/http"

	"github.com/JDamianDelgado/ValleDePaz/internal/dashboard"
	"github.com/JDamianDelgado/ValleDePaz/internal/middleware"
	"github.com/JDamianDelgado/ValleDePaz/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	renderer        *dashboard.Renderer
	messageService  *service.VirginMessageService
	inhumadoService *service.InhumadoService
	userService     *service.UserService
}

func NewDashboardHandler(
	renderer *dashboard.Renderer,
	messageService *service.VirginMessageService,
	inhumadoService *service.InhumadoService,
	userService *service.UserService,
) *DashboardHandler {
	return &DashboardHandler{
		renderer:        renderer,
		messageService:  messageService,
		inhumadoService: inhumadoService,
		userService:     userService,
	}
}

// Home shows moderation and record counts
// GET /admin
func (h *DashboardHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()

	messages, err := h.messageService.Filter(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := h.inhumadoService.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	users, err := h.userService.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	h.render(c, dashboard.PageHome, dashboard.Summary{
		Pending:  len(messages.Pendientes),
		Approved: len(messages.Aprobados),
		Records:  len(records),
		Users:    len(users),
	})
}

// Messages lists pending and approved messages
// GET /admin/mensajes
func (h *DashboardHandler) Messages(c *gin.Context) {
	messages, err := h.messageService.Filter(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.render(c, dashboard.PageMessages, messages)
}

// Records lists memorial records
// GET /admin/inhumados
func (h *DashboardHandler) Records(c *gin.Context) {
	records, err := h.inhumadoService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.render(c, dashboard.PageRecords, records)
}

// Users lists accounts
// GET /admin/usuarios
func (h *DashboardHandler) Users(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.render(c, dashboard.PageUsers, users)
}

// render buffers the page so a template error never leaves a half written response
func (h *DashboardHandler) render(c *gin.Context, page string, data interface{}) {
	username := ""
	if claims, ok := middleware.GetClaims(c); ok {
		username = claims.Username
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, username, data); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
