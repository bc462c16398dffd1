package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VirginMessage is a user submission awaiting moderation. Approved=false
// means pending; rejection deletes the row.
type VirginMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Text        string    `gorm:"type:text;not null" json:"texto"`
	ImageURL    *string   `gorm:"type:text" json:"imagen_url,omitempty"`
	PublishedAt time.Time `gorm:"index" json:"fecha_publicacion"`
	Approved    bool      `gorm:"default:false;index" json:"estado"`

	// Foreign Key Relationship
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"usuario,omitempty"`
}

func (m *VirginMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
