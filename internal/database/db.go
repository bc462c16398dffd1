package database

import (
	"log"

	"github.com/JDamianDelgado/ValleDePaz/internal/config"
	"github.com/JDamianDelgado/ValleDePaz/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}

	log.Println("Database connect successfully")
	return db
}

// Migrate creates or updates the tables for every domain model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Inhumado{}, &models.VirginMessage{})
}

func MustMigrate(db *gorm.DB) {
	if err := Migrate(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("Database migration completed")
}
