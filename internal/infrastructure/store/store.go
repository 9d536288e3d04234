package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mktu/recipe-app/internal/core/recipe"
	"github.com/mktu/recipe-app/internal/infrastructure/config"
)

// Store wraps the gorm connection and exposes the repositories.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and runs migrations.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(
		&Ingredient{},
		&IngredientAlias{},
		&Recipe{},
		&RecipeIngredient{},
		&UnmatchedIngredient{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing gorm connection (used by tests).
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies connectivity, used by the health endpoint.
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// outcomeOf classifies an insert error into the tagged result.
func outcomeOf(err error) recipe.InsertOutcome {
	switch {
	case err == nil:
		return recipe.Inserted
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return recipe.AlreadyExists
	default:
		return recipe.InsertFailed
	}
}

// nowPtr is a small helper for nullable timestamp columns.
func nowPtr() *time.Time {
	t := time.Now()
	return &t
}
