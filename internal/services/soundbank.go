package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/stimulus-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSoundNotFound    = errors.New("sound model not found")
	ErrInvalidSoundName = errors.New("sound model name is required")
)

// SoundBankService manages the sound models that button voices are assigned to
type SoundBankService struct {
	db *gorm.DB
}

func NewSoundBankService(db *gorm.DB) *SoundBankService {
	return &SoundBankService{db: db}
}

// List returns every sound model ordered by name
func (s *SoundBankService) List(ctx context.Context) ([]models.SoundModel, error) {
	var sounds []models.SoundModel
	if err := s.db.WithContext(ctx).Order("name ASC, id ASC").Find(&sounds).Error; err != nil {
		return nil, err
	}
	return sounds, nil
}

func (s *SoundBankService) Get(ctx context.Context, id string) (*models.SoundModel, error) {
	var sound models.SoundModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sound).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSoundNotFound, id)
		}
		return nil, err
	}
	return &sound, nil
}

// Add creates a sound model with a fresh "sms-" id
func (s *SoundBankService) Add(ctx context.Context, name string, tags []string, source string) (*models.SoundModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidSoundName
	}

	sound := models.SoundModel{
		ID:     "sms-" + uuid.New().String(),
		Name:   name,
		Tags:   joinTags(tags),
		Source: source,
	}
	if err := s.db.WithContext(ctx).Create(&sound).Error; err != nil {
		return nil, err
	}
	return &sound, nil
}

func (s *SoundBankService) Rename(ctx context.Context, id, name string) (*models.SoundModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidSoundName
	}

	result := s.db.WithContext(ctx).Model(&models.SoundModel{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSoundNotFound, id)
	}
	return s.Get(ctx, id)
}

func (s *SoundBankService) Remove(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SoundModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrSoundNotFound, id)
	}
	return nil
}

func joinTags(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, ",")
}
