package repositories

import (
	"sync"
	"time"

	"dailyflow/internal/models"

	"github.com/google/uuid"
)

// MockSubscriptionRepository is an in-memory implementation of
// SubscriptionRepository, keyed by endpoint like the real table.
type MockSubscriptionRepository struct {
	subs map[string]models.PushSubscription // keyed by endpoint
	mu   sync.RWMutex
}

// NewMockSubscriptionRepository creates a new instance of MockSubscriptionRepository.
func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{
		subs: make(map[string]models.PushSubscription),
	}
}

// Upsert inserts or replaces the subscription for the given endpoint.
func (r *MockSubscriptionRepository) Upsert(sub *models.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.subs[sub.Endpoint]; ok {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		if sub.ID == "" {
			sub.ID = uuid.New().String()
		}
		sub.CreatedAt = time.Now()
	}
	r.subs[sub.Endpoint] = *sub
	return nil
}

// DeleteByEndpoint removes the subscription with the given endpoint, if any.
func (r *MockSubscriptionRepository) DeleteByEndpoint(endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subs, endpoint)
	return nil
}

// GetByUser returns all subscriptions registered for the given user.
func (r *MockSubscriptionRepository) GetByUser(userID string) ([]models.PushSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.PushSubscription, 0)
	for _, sub := range r.subs {
		if sub.UserID == userID {
			list = append(list, sub)
		}
	}
	return list, nil
}
