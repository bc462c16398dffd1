package testutil

import (
	"testing"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/models"
	"github.com/JDamianDelgado/ValleDePaz/internal/utils"
	"gorm.io/gorm"
)

const (
	DefaultPassword = "Test123456"
	AdminPassword   = "Admin123456"
)

// CreateTestUser inserts a user with a hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string, role models.Role) *models.User {
	t.Helper()

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		Preferences: models.NotificationPreferences{
			EmailNotifications: true,
			ModerationUpdates:  true,
		},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

// DefaultTestUser inserts a regular user
func DefaultTestUser(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "testuser", "test@example.com", DefaultPassword, models.RoleUser)
}

// DefaultAdminUser inserts an admin user
func DefaultAdminUser(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "admin", "admin@example.com", AdminPassword, models.RoleAdmin)
}

// CreateTestMessage inserts a message owned by user with the given moderation state
func CreateTestMessage(t *testing.T, db *gorm.DB, user *models.User, text string, approved bool) *models.VirginMessage {
	t.Helper()

	message := &models.VirginMessage{
		UserID:      user.ID,
		Text:        text,
		PublishedAt: time.Now(),
	}
	if err := db.Create(message).Error; err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}
	// default:false would swallow a false value on insert, so approval is a separate write
	if approved {
		if err := db.Model(message).Update("approved", true).Error; err != nil {
			t.Fatalf("Failed to approve test message: %v", err)
		}
		message.Approved = true
	}
	return message
}

// CreateTestInhumado inserts a memorial record
func CreateTestInhumado(t *testing.T, db *gorm.DB, nombre, apellido, valle string) *models.Inhumado {
	t.Helper()

	record := &models.Inhumado{
		FirstName: nombre,
		LastName:  apellido,
		Valle:     valle,
		ImageURL:  "https://media.test/inhumados/" + nombre + ".png",
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("Failed to create test record: %v", err)
	}
	return record
}
