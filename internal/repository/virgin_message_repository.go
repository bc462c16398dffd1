package repository

import (
	"errors"

	"github.com/JDamianDelgado/ValleDePaz/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VirginMessageRepository struct {
	db *gorm.DB
}

func NewVirginMessageRepository(db *gorm.DB) *VirginMessageRepository {
	return &VirginMessageRepository{db: db}
}

func (r *VirginMessageRepository) Create(message *models.VirginMessage) error {
	return r.db.Create(message).Error
}

// GetByID retrieves a message with its author
func (r *VirginMessageRepository) GetByID(id uuid.UUID) (*models.VirginMessage, error) {
	var message models.VirginMessage
	err := r.db.Preload("User").Where("id = ?", id).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// GetAll retrieves every message, newest first
func (r *VirginMessageRepository) GetAll() ([]models.VirginMessage, error) {
	var messages []models.VirginMessage
	err := r.db.
		Preload("User").
		Order("published_at DESC").
		Find(&messages).Error

	return messages, err
}

// GetByApproval retrieves messages in one moderation state, newest first.
// Only the author's public name columns are loaded.
func (r *VirginMessageRepository) GetByApproval(approved bool) ([]models.VirginMessage, error) {
	var messages []models.VirginMessage
	err := r.db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "first_name")
		}).
		Where("approved = ?", approved).
		Order("published_at DESC").
		Find(&messages).Error

	return messages, err
}

func (r *VirginMessageRepository) SetApproved(id uuid.UUID) error {
	return r.db.Model(&models.VirginMessage{}).
		Where("id = ?", id).
		Update("approved", true).Error
}

// UpdateFields applies a column → value map to one message
func (r *VirginMessageRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&models.VirginMessage{}).Where("id = ?", id).Updates(fields).Error
}

func (r *VirginMessageRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.VirginMessage{}, "id = ?", id).Error
}
