// Package database provides database connection management for the serp-radar
// search performance tracking system.
//
// This package includes:
//   - Database connection management using GORM and PostgreSQL
//   - A raw database/sql connection (lib/pq) for aggregation-heavy queries
//   - Shared error types for repository operations
//
// Data Models:
//
//	All data models (Keyword, MetricSample, GeoGroup, etc.) are defined in
//	the models_pkg package to avoid circular import dependencies.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "serp-radar/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance. It is the central connection point for all
// repository operations.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// InitSchema migrates all models
func (d *Database) InitSchema() error {
	if err := d.db.AutoMigrate(
		&models.Keyword{},
		&models.MetricSample{},
		&models.DailyTotal{},
		&models.GeoGroup{},
		&models.RankingSnapshot{},
	); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ============================================================================
// Type Aliases
// ============================================================================

// Core data models - type aliases so callers can keep importing a single
// database package.
type Keyword = models.Keyword
type MetricSample = models.MetricSample
type DailyTotal = models.DailyTotal
type GeoGroup = models.GeoGroup
type RankingSnapshot = models.RankingSnapshot
