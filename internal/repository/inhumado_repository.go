package repository

import (
	"errors"

	"github.com/JDamianDelgado/ValleDePaz/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InhumadoRepository struct {
	db *gorm.DB
}

func NewInhumadoRepository(db *gorm.DB) *InhumadoRepository {
	return &InhumadoRepository{db: db}
}

func (r *InhumadoRepository) Create(record *models.Inhumado) error {
	return r.db.Create(record).Error
}

func (r *InhumadoRepository) GetByID(id uuid.UUID) (*models.Inhumado, error) {
	var record models.Inhumado
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByName matches name and surname ignoring case
func (r *InhumadoRepository) GetByName(firstName, lastName string) (*models.Inhumado, error) {
	var record models.Inhumado
	err := r.db.
		Where("LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?)", firstName, lastName).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Exists reports whether a record with this name, surname and valle is stored
func (r *InhumadoRepository) Exists(firstName, lastName, valle string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Inhumado{}).
		Where("LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?) AND LOWER(valle) = LOWER(?)", firstName, lastName, valle).
		Count(&count).Error
	return count > 0, err
}

func (r *InhumadoRepository) GetAll() ([]models.Inhumado, error) {
	var records []models.Inhumado
	err := r.db.Order("last_name ASC, first_name ASC").Find(&records).Error
	return records, err
}

func (r *InhumadoRepository) GetByValle(valle string) ([]models.Inhumado, error) {
	var records []models.Inhumado
	err := r.db.
		Where("LOWER(valle) = LOWER(?)", valle).
		Order("last_name ASC, first_name ASC").
		Find(&records).Error
	return records, err
}

func (r *InhumadoRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&models.Inhumado{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a record and reports how many rows went away
func (r *InhumadoRepository) Delete(id uuid.UUID) (int64, error) {
	result := r.db.Delete(&models.Inhumado{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
