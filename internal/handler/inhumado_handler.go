package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/media"
	"github.com/JDamianDelgado/ValleDePaz/internal/service"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type InhumadoHandler struct {
	inhumadoService *service.InhumadoService
	maxImageBytes   int64
}

func NewInhumadoHandler(inhumadoService *service.InhumadoService, maxImageBytes int64) *InhumadoHandler {
	return &InhumadoHandler{
		inhumadoService: inhumadoService,
		maxImageBytes:   maxImageBytes,
	}
}

// CreateInhumadoRequest is the multipart form of a new record
type CreateInhumadoRequest struct {
	Nombre             string `form:"nombre" binding:"required"`
	Apellido           string `form:"apellido" binding:"required"`
	Valle              string `form:"valle" binding:"required"`
	Sector             string `form:"sector"`
	Parcela            string `form:"parcela"`
	FechaNacimiento    string `form:"fecha_nacimiento"`
	FechaFallecimiento string `form:"fecha_fallecimiento"`
	Epitafio           string `form:"epitafio"`
	Biografia          string `form:"biografia"`
}

// List returns every record
// GET /api/inhumados
func (h *InhumadoHandler) List(c *gin.Context) {
	records, err := h.inhumadoService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Get returns one record
// GET /api/inhumados/:id
func (h *InhumadoHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := h.inhumadoService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetByName finds a record by name and surname
// GET /api/inhumados/nombre/:nombre/:apellido
func (h *InhumadoHandler) GetByName(c *gin.Context) {
	record, err := h.inhumadoService.GetByName(c.Request.Context(), c.Param("nombre"), c.Param("apellido"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListByValle returns the records of one valle
// GET /api/inhumados/valle/:valle
func (h *InhumadoHandler) ListByValle(c *gin.Context) {
	records, err := h.inhumadoService.ListByValle(c.Request.Context(), c.Param("valle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create stores a record with its required image. Every failure is a 400.
// POST /api/inhumados (multipart)
func (h *InhumadoHandler) Create(c *gin.Context) {
	var req CreateInhumadoRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nombre, apellido and valle are required"})
		return
	}

	input := service.InhumadoInput{
		Nombre:    req.Nombre,
		Apellido:  req.Apellido,
		Valle:     req.Valle,
		Sector:    req.Sector,
		Parcela:   req.Parcela,
		Epitafio:  req.Epitafio,
		Biografia: req.Biografia,
	}
	var err error
	if input.FechaNacimiento, err = parseDate("fecha_nacimiento", req.FechaNacimiento); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.FechaFallecimiento, err = parseDate("fecha_fallecimiento", req.FechaFallecimiento); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an image file is required"})
		return
	}
	upload, err := media.ReadUpload(fh, h.maxImageBytes)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.inhumadoService.Create(c.Request.Context(), input, upload)
	if err != nil {
		logger.Log.Warn("Record creation failed",
			zap.String("admin_id", adminID(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Log.Info("Record created by admin",
		zap.String("admin_id", adminID(c)),
		zap.String("inhumado_id", record.ID.String()),
	)
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Inhumado creado con exito",
		"inhumado": record,
	})
}

// Update applies the submitted fields and an optional new image
// PUT /api/inhumados/:id (multipart, optional "imagen")
func (h *InhumadoHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.InhumadoUpdate
	for key, target := range map[string]**string{
		"nombre":    &input.Nombre,
		"apellido":  &input.Apellido,
		"valle":     &input.Valle,
		"sector":    &input.Sector,
		"parcela":   &input.Parcela,
		"epitafio":  &input.Epitafio,
		"biografia": &input.Biografia,
	} {
		if value, exists := c.GetPostForm(key); exists {
			v := value
			*target = &v
		}
	}
	for key, target := range map[string]**time.Time{
		"fecha_nacimiento":    &input.FechaNacimiento,
		"fecha_fallecimiento": &input.FechaFallecimiento,
	} {
		if value, exists := c.GetPostForm(key); exists {
			date, err := parseDate(key, value)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			*target = date
		}
	}

	var image *media.Upload
	fh, err := c.FormFile("imagen")
	switch {
	case err == nil:
		upload, err := media.ReadUpload(fh, h.maxImageBytes)
		if err != nil {
			respondError(c, err)
			return
		}
		image = &upload
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	record, err := h.inhumadoService.Update(c.Request.Context(), id, input, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete removes a record
// DELETE /api/inhumados/:id
func (h *InhumadoHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.inhumadoService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	logger.Log.Info("Record deleted by admin",
		zap.String("admin_id", adminID(c)),
		zap.String("inhumado_id", id.String()),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Inhumado eliminado"})
}

// Seed loads the fixture records
// POST /api/inhumados/seed
func (h *InhumadoHandler) Seed(c *gin.Context) {
	inserted, err := h.inhumadoService.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Seeder ejecutado",
		"inserted": inserted,
	})
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty value means no date.
func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
}
