package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPortfolioStore implements property.PortfolioStore on a SQL database
type GormPortfolioStore struct {
	db *gorm.DB
}

// NewGormPortfolioStore creates a new store
func NewGormPortfolioStore(db *gorm.DB) *GormPortfolioStore {
	return &GormPortfolioStore{db: db}
}

// Save upserts the snapshot of sessionID
func (s *GormPortfolioStore) Save(ctx context.Context, sessionID string, records []*property.Record) error {
	var m models.PortfolioSnapshotModel
	m.FromDomain(sessionID, records)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"records", "record_count", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to save portfolio snapshot: %w", err)
	}
	return nil
}

// Load returns the records of sessionID
func (s *GormPortfolioStore) Load(ctx context.Context, sessionID string) ([]*property.Record, error) {
	var m models.PortfolioSnapshotModel
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []*property.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio snapshot: %w", err)
	}
	return m.ToDomain(), nil
}

// Delete removes the snapshot of sessionID
func (s *GormPortfolioStore) Delete(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.PortfolioSnapshotModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete portfolio snapshot: %w", err)
	}
	return nil
}

var _ property.PortfolioStore = (*GormPortfolioStore)(nil)
