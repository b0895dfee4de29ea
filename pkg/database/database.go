package database

import (
	"fmt"

	"mailbrief-backend/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresConnection opens the application database.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey, which the summary pipeline relies on.
func NewPostgresConnection(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open postgres connection: %v", err)
	}
	return db, nil
}
