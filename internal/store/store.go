// Package store keeps statistics about generation runs in Postgres.
// Progressions themselves are never stored.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GenerationRun is one finished or failed generation request
type GenerationRun struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	RunID        string    `gorm:"uniqueIndex;size:36;not null" json:"run_id"`
	RequestID    string    `gorm:"size:64;index" json:"request_id"`
	Preset       string    `gorm:"size:64;index" json:"preset"`
	Length       int       `gorm:"not null" json:"length"`
	BeamWidth    int       `json:"beam_width"`
	StageBudget  int       `json:"stage_budget"`
	Seed         int64     `json:"seed"`
	Cadence      bool      `json:"cadence"`
	Success      bool      `gorm:"index" json:"success"`
	Attempts     int       `json:"attempts"`
	Budget       int       `json:"budget"`
	Fallback     bool      `json:"fallback"`
	Rejections   int       `json:"rejections"`
	DurationMS   int64     `json:"duration_ms"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
}

// Store wraps a gorm connection
type Store struct {
	db *gorm.DB
}

// New wraps an existing connection, useful with other dialects in tests
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Connect opens a Postgres connection and migrates the schema
func Connect(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	log.Printf("🗄️  Database: ✅ CONNECTED (run log enabled)")
	return s, nil
}

// Migrate creates or updates the generation_runs table
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&GenerationRun{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// SaveRun inserts a run
func (s *Store) SaveRun(ctx context.Context, run *GenerationRun) error {
	return s.db.WithContext(ctx).Create(run).Error
}

// RecentRuns returns the newest runs first
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]GenerationRun, error) {
	var runs []GenerationRun
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// PresetStats aggregates runs per preset
type PresetStats struct {
	Preset      string  `json:"preset"`
	Runs        int64   `json:"runs"`
	Failures    int64   `json:"failures"`
	Fallbacks   int64   `json:"fallbacks"`
	AvgAttempts float64 `json:"avg_attempts"`
	AvgDuration float64 `json:"avg_duration_ms"`
}

// Stats aggregates runs created since the given time
func (s *Store) Stats(ctx context.Context, since time.Time) ([]PresetStats, error) {
	var out []PresetStats
	err := s.db.WithContext(ctx).Model(&GenerationRun{}).
		Select(`preset,
			COUNT(*) AS runs,
			SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures,
			SUM(CASE WHEN fallback THEN 1 ELSE 0 END) AS fallbacks,
			AVG(attempts) AS avg_attempts,
			AVG(duration_ms) AS avg_duration`).
		Where("created_at >= ?", since).
		Group("preset").
		Order("preset").
		Scan(&out).Error
	return out, err
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
