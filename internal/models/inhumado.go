package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inhumado is a memorial record for a person buried in the cemetery.
type Inhumado struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id" yaml:"-"`
	FirstName string     `gorm:"type:varchar(100);not null;index:idx_inhumado_nombre" json:"nombre" yaml:"nombre"`
	LastName  string     `gorm:"type:varchar(100);not null;index:idx_inhumado_nombre" json:"apellido" yaml:"apellido"`
	Valle     string     `gorm:"type:varchar(100);not null;index" json:"valle" yaml:"valle"`
	Sector    string     `gorm:"type:varchar(50)" json:"sector" yaml:"sector"`
	Plot      string     `gorm:"type:varchar(50)" json:"parcela" yaml:"parcela"`
	BirthDate *time.Time `json:"fecha_nacimiento,omitempty" yaml:"fecha_nacimiento"`
	DeathDate *time.Time `json:"fecha_fallecimiento,omitempty" yaml:"fecha_fallecimiento"`
	Epitaph   string     `gorm:"type:text" json:"epitafio" yaml:"epitafio"`
	Biography string     `gorm:"type:text" json:"biografia" yaml:"biografia"`
	ImageURL  string     `gorm:"type:text" json:"imagen_url" yaml:"imagen_url"`
	CreatedAt time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"-"`
}

func (i *Inhumado) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
