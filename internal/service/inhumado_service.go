package service

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/media"
	"github.com/JDamianDelgado/ValleDePaz/internal/models"
	"github.com/JDamianDelgado/ValleDePaz/internal/repository"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/inhumados.yaml
var inhumadoFixtures []byte

// InhumadoInput holds the fields of a new memorial record.
type InhumadoInput struct {
	Nombre             string
	Apellido           string
	Valle              string
	Sector             string
	Parcela            string
	FechaNacimiento    *time.Time
	FechaFallecimiento *time.Time
	Epitafio           string
	Biografia          string
}

// InhumadoUpdate lists the fields an edit may change. Nil fields are left alone.
type InhumadoUpdate struct {
	Nombre             *string
	Apellido           *string
	Valle              *string
	Sector             *string
	Parcela            *string
	FechaNacimiento    *time.Time
	FechaFallecimiento *time.Time
	Epitafio           *string
	Biografia          *string
}

type InhumadoService struct {
	repo          *repository.InhumadoRepository
	uploader      media.Uploader
	maxImageBytes int64
}

func NewInhumadoService(repo *repository.InhumadoRepository, uploader media.Uploader, maxImageBytes int64) *InhumadoService {
	return &InhumadoService{
		repo:          repo,
		uploader:      uploader,
		maxImageBytes: maxImageBytes,
	}
}

func (s *InhumadoService) List(ctx context.Context) ([]models.Inhumado, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		logger.Log.Error("Failed to list records", zap.Error(err))
		return nil, err
	}
	return records, nil
}

func (s *InhumadoService) Get(ctx context.Context, id uuid.UUID) (*models.Inhumado, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		logger.Log.Error("Failed to load record", zap.String("inhumado_id", id.String()), zap.Error(err))
		return nil, err
	}
	if record == nil {
		return nil, ErrInhumadoNotFound
	}
	return record, nil
}

// GetByName finds a record by name and surname, ignoring case.
func (s *InhumadoService) GetByName(ctx context.Context, nombre, apellido string) (*models.Inhumado, error) {
	record, err := s.repo.GetByName(strings.TrimSpace(nombre), strings.TrimSpace(apellido))
	if err != nil {
		logger.Log.Error("Failed to search record by name",
			zap.String("nombre", nombre),
			zap.String("apellido", apellido),
			zap.Error(err),
		)
		return nil, err
	}
	if record == nil {
		return nil, ErrInhumadoNotFound
	}
	return record, nil
}

// ListByValle returns the records buried in one valle. A valle with no
// records is reported as not found.
func (s *InhumadoService) ListByValle(ctx context.Context, valle string) ([]models.Inhumado, error) {
	records, err := s.repo.GetByValle(strings.TrimSpace(valle))
	if err != nil {
		logger.Log.Error("Failed to list records by valle", zap.String("valle", valle), zap.Error(err))
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records in valle %q", ErrInhumadoNotFound, valle)
	}
	return records, nil
}

// Create uploads the record's image and stores the record.
func (s *InhumadoService) Create(ctx context.Context, input InhumadoInput, image media.Upload) (*models.Inhumado, error) {
	start := time.Now()

	record := &models.Inhumado{
		FirstName: strings.TrimSpace(input.Nombre),
		LastName:  strings.TrimSpace(input.Apellido),
		Valle:     strings.TrimSpace(input.Valle),
		Sector:    input.Sector,
		Plot:      input.Parcela,
		BirthDate: input.FechaNacimiento,
		DeathDate: input.FechaFallecimiento,
		Epitaph:   input.Epitafio,
		Biography: input.Biografia,
	}
	if err := validateRecord(record); err != nil {
		logger.Log.Warn("Record validation failed", zap.Error(err))
		return nil, err
	}

	url, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}
	record.ImageURL = url

	if err := s.repo.Create(record); err != nil {
		logger.Log.Error("Failed to store record", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Record created",
		zap.String("inhumado_id", record.ID.String()),
		zap.String("valle", record.Valle),
		zap.Duration("duration", time.Since(start)),
	)
	return record, nil
}

// Update applies the non-nil fields of input. A non-nil image replaces the
// stored picture.
func (s *InhumadoService) Update(ctx context.Context, id uuid.UUID, input InhumadoUpdate, image *media.Upload) (*models.Inhumado, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	setText := func(column string, value *string, required bool) error {
		if value == nil {
			return nil
		}
		v := strings.TrimSpace(*value)
		if required && v == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, column)
		}
		fields[column] = v
		return nil
	}

	for _, f := range []struct {
		column   string
		value    *string
		required bool
	}{
		{"first_name", input.Nombre, true},
		{"last_name", input.Apellido, true},
		{"valle", input.Valle, true},
		{"sector", input.Sector, false},
		{"plot", input.Parcela, false},
		{"epitaph", input.Epitafio, false},
		{"biography", input.Biografia, false},
	} {
		if err := setText(f.column, f.value, f.required); err != nil {
			return nil, err
		}
	}
	if input.FechaNacimiento != nil {
		fields["birth_date"] = *input.FechaNacimiento
	}
	if input.FechaFallecimiento != nil {
		fields["death_date"] = *input.FechaFallecimiento
	}

	if image != nil {
		url, err := s.uploadImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		fields["image_url"] = url
	}

	if err := s.repo.UpdateFields(record.ID, fields); err != nil {
		logger.Log.Error("Failed to update record", zap.String("inhumado_id", id.String()), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Record updated",
		zap.String("inhumado_id", id.String()),
		zap.Int("fields", len(fields)),
	)
	return s.Get(ctx, id)
}

func (s *InhumadoService) Delete(ctx context.Context, id uuid.UUID) error {
	removed, err := s.repo.Delete(id)
	if err != nil {
		logger.Log.Error("Failed to delete record", zap.String("inhumado_id", id.String()), zap.Error(err))
		return err
	}
	if removed == 0 {
		return ErrInhumadoNotFound
	}

	logger.Log.Info("Record deleted", zap.String("inhumado_id", id.String()))
	return nil
}

// Seed inserts the embedded fixture records that are not stored yet and
// returns how many were added.
func (s *InhumadoService) Seed(ctx context.Context) (int, error) {
	var fixtures []models.Inhumado
	if err := yaml.Unmarshal(inhumadoFixtures, &fixtures); err != nil {
		return 0, fmt.Errorf("parse record fixtures: %w", err)
	}

	inserted := 0
	for i := range fixtures {
		record := fixtures[i]
		exists, err := s.repo.Exists(record.FirstName, record.LastName, record.Valle)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}
		if err := s.repo.Create(&record); err != nil {
			logger.Log.Error("Failed to seed record",
				zap.String("nombre", record.FirstName),
				zap.String("apellido", record.LastName),
				zap.Error(err),
			)
			return inserted, err
		}
		inserted++
	}

	logger.Log.Info("Record fixtures seeded",
		zap.Int("inserted", inserted),
		zap.Int("total", len(fixtures)),
	)
	return inserted, nil
}

func (s *InhumadoService) uploadImage(ctx context.Context, image media.Upload) (string, error) {
	file, err := image.Validate(s.maxImageBytes)
	if err != nil {
		logger.Log.Warn("Record image rejected",
			zap.String("filename", image.Name),
			zap.Error(err),
		)
		return "", err
	}

	url, err := s.uploader.Upload(ctx, media.FolderRecords, file)
	if err != nil {
		logger.Log.Error("Failed to upload record image", zap.Error(err))
		return "", fmt.Errorf("upload record image: %w", err)
	}
	return url, nil
}

func validateRecord(r *models.Inhumado) error {
	switch {
	case r.FirstName == "":
		return fmt.Errorf("%w: nombre is required", ErrInvalidInput)
	case r.LastName == "":
		return fmt.Errorf("%w: apellido is required", ErrInvalidInput)
	case r.Valle == "":
		return fmt.Errorf("%w: valle is required", ErrInvalidInput)
	}
	if r.BirthDate != nil && r.DeathDate != nil && r.DeathDate.Before(*r.BirthDate) {
		return fmt.Errorf("%w: fecha_fallecimiento is before fecha_nacimiento", ErrInvalidInput)
	}
	return nil
}
