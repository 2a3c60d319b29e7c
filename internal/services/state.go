package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/Conceptual-Machines/stimulus-api/internal/rng"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrStateNotFound = errors.New("saved state not found")

// StateService persists RNG snapshots, one row per tag
type StateService struct {
	db *gorm.DB
}

func NewStateService(db *gorm.DB) *StateService {
	return &StateService{db: db}
}

// Save upserts the snapshot stored under tag
func (s *StateService) Save(ctx context.Context, tag string, snap rng.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	record := models.RNGStateRecord{Tag: tag, Payload: string(payload)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tag"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at", "deleted_at"}),
	}).Create(&record).Error
}

// Load returns the snapshot stored under tag
func (s *StateService) Load(ctx context.Context, tag string) (rng.Snapshot, error) {
	var record models.RNGStateRecord
	if err := s.db.WithContext(ctx).Where("tag = ?", tag).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rng.Snapshot{}, fmt.Errorf("%w: %s", ErrStateNotFound, tag)
		}
		return rng.Snapshot{}, err
	}

	var snap rng.Snapshot
	if err := json.Unmarshal([]byte(record.Payload), &snap); err != nil {
		return rng.Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", tag, err)
	}
	return snap, nil
}
