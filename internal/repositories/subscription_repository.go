package repositories

import "dailyflow/internal/models"

// SubscriptionRepository defines the interface for push subscription data
// access. Upsert keys on the endpoint so re-subscribing from the same
// device never accumulates duplicate rows.
type SubscriptionRepository interface {
	Upsert(sub *models.PushSubscription) error
	DeleteByEndpoint(endpoint string) error
	GetByUser(userID string) ([]models.PushSubscription, error)
}
