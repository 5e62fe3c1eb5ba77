package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/comptoir-lab/salesboard/internal/models"
)

// Migrate creates or updates the schema for all application tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.Profile{},
		&models.PaymentCredential{},
		&models.Sale{},
	)
}
