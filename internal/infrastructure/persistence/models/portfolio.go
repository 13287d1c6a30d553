// Package models holds the gorm persistence models of the console.
package models

import (
	"time"

	"github.com/britrip/hotelier/internal/domain/property"
)

// PortfolioSnapshotModel stores the owned records of one session as JSON
type PortfolioSnapshotModel struct {
	SessionID   string             `gorm:"type:varchar(64);primaryKey"`
	Records     []*property.Record `gorm:"type:text;serializer:json;not null"`
	RecordCount int                `gorm:"not null"`
	CreatedAt   time.Time          `gorm:"not null"`
	UpdatedAt   time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PortfolioSnapshotModel) TableName() string {
	return "portfolio_snapshots"
}

// FromDomain fills the model from a session's records
func (m *PortfolioSnapshotModel) FromDomain(sessionID string, records []*property.Record) {
	m.SessionID = sessionID
	m.Records = make([]*property.Record, 0, len(records))
	for _, r := range records {
		m.Records = append(m.Records, r.Clone())
	}
	m.RecordCount = len(m.Records)
}

// ToDomain returns the stored records
func (m *PortfolioSnapshotModel) ToDomain() []*property.Record {
	if m.Records == nil {
		return []*property.Record{}
	}
	return m.Records
}
