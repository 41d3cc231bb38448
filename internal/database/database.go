package database

import (
	"encoding/json"
	"fmt"
	"time"

	"alphasignal-dashboard-go/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProfileSnapshot is one canonical profile as last fetched, stored as wire
// JSON so the cache never lags the record shape. FetchedAt groups the rows
// of one fetch batch.
type ProfileSnapshot struct {
	gorm.Model
	ProfileID string    `gorm:"index"`
	Payload   string
	FetchedAt time.Time
}

// MutationRecord is one dispatched mutation: what was sent, for which
// profile, and how it went. The audit trail lets an operator review what
// the dashboard asked the backend to do.
type MutationRecord struct {
	gorm.Model
	Operation string
	ProfileID string
	Patch     string
	Succeeded bool
	Error     string
}

// Database is the local cache behind the dashboard: last canonical snapshot
// plus the mutation audit log.
type Database struct {
	db *gorm.DB
}

// NewDatabase opens the cache database and migrates the schema.
func NewDatabase(dsn string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&ProfileSnapshot{}, &MutationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

// SaveSnapshot replaces the stored canonical list with the given one.
func (d *Database) SaveSnapshot(profiles []models.Profile) error {
	now := time.Now()

	rows := make([]ProfileSnapshot, 0, len(profiles))
	for _, p := range profiles {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode profile %s: %w", p.ID, err)
		}
		rows = append(rows, ProfileSnapshot{
			ProfileID: p.ID,
			Payload:   string(payload),
			FetchedAt: now,
		})
	}

	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ProfileSnapshot{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous snapshot: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		return nil
	})
}

// LoadLastSnapshot returns the cached canonical list in fetch order. An
// empty cache returns an empty slice, not an error.
func (d *Database) LoadLastSnapshot() ([]models.Profile, error) {
	var rows []ProfileSnapshot
	if err := d.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	profiles := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		var p models.Profile
		if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot for %s: %w", row.ProfileID, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// RecordMutation appends one entry to the audit log.
func (d *Database) RecordMutation(op, profileID string, patch models.ProfilePatch, outcome error) error {
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode patch: %w", err)
	}

	record := MutationRecord{
		Operation: op,
		ProfileID: profileID,
		Patch:     string(payload),
		Succeeded: outcome == nil,
	}
	if outcome != nil {
		record.Error = outcome.Error()
	}

	if err := d.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record mutation: %w", err)
	}
	return nil
}

// RecentMutations returns the newest audit entries first.
func (d *Database) RecentMutations(limit int) ([]MutationRecord, error) {
	var records []MutationRecord
	if err := d.db.Order("id desc").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load mutations: %w", err)
	}
	return records, nil
}
