package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// NotificationPreferences is stored inline on the users table with a pref_ prefix.
type NotificationPreferences struct {
	EmailNotifications bool `gorm:"default:true" json:"email_notifications"`
	ModerationUpdates  bool `gorm:"default:true" json:"moderation_updates"`
	Newsletter         bool `gorm:"default:false" json:"newsletter"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	Role         Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`

	FirstName    string `gorm:"type:varchar(100)" json:"nombre"`
	LastName     string `gorm:"type:varchar(100)" json:"apellido"`
	Phone        string `gorm:"type:varchar(30)" json:"telefono"`
	City         string `gorm:"type:varchar(100)" json:"ciudad"`
	ProfileImage string `gorm:"type:text" json:"imagen_perfil"`

	Preferences NotificationPreferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []VirginMessage `gorm:"foreignKey:UserID" json:"mensajes,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName is the name used to greet the user in emails.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
