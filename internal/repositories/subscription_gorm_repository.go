package repositories

import (
	"fmt"

	"dailyflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSubscriptionRepository is a GORM implementation of SubscriptionRepository.
type GORMSubscriptionRepository struct {
	db *gorm.DB
}

// NewGORMSubscriptionRepository creates a new instance of GORMSubscriptionRepository.
func NewGORMSubscriptionRepository(db *gorm.DB) *GORMSubscriptionRepository {
	return &GORMSubscriptionRepository{
		db: db,
	}
}

// Upsert inserts a subscription, or refreshes the keys and owner when the
// endpoint is already registered.
func (r *GORMSubscriptionRepository) Upsert(sub *models.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "auth", "p256dh"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}
	return nil
}

// DeleteByEndpoint removes the subscription with the given endpoint, if any.
func (r *GORMSubscriptionRepository) DeleteByEndpoint(endpoint string) error {
	err := r.db.Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

// GetByUser retrieves all subscriptions registered for the given user.
func (r *GORMSubscriptionRepository) GetByUser(userID string) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := r.db.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions for user %s: %w", userID, err)
	}
	return subs, nil
}
