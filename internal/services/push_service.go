package services

import (
	"errors"
	"fmt"
	"net/http"

	"dailyflow/internal/models"
	"dailyflow/internal/repositories"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrSubscriptionGone is returned when the push service reports that an
// endpoint no longer exists. The dispatcher prunes such subscriptions.
var ErrSubscriptionGone = errors.New("push subscription gone")

// PushSender delivers a notification payload to a single subscription.
// The dispatcher depends on this interface so delivery can be faked in tests.
type PushSender interface {
	Send(sub models.PushSubscription, payload []byte) error
}

// WebPushSender sends notifications over the Web Push protocol using a
// VAPID key pair.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subject    string // mailto: address identifying the server to push services
}

// NewWebPushSender creates a new WebPushSender.
func NewWebPushSender(publicKey, privateKey, subject string) *WebPushSender {
	return &WebPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subject:    subject,
	}
}

// Send delivers the payload to the subscription's endpoint. A 404/410
// response maps to ErrSubscriptionGone; the transport's default timeout applies.
func (w *WebPushSender) Send(sub models.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		Subscriber:      w.subject,
		VAPIDPublicKey:  w.publicKey,
		VAPIDPrivateKey: w.privateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return ErrSubscriptionGone
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service responded with status %d", resp.StatusCode)
	}
	return nil
}

// PushService handles push subscription bookkeeping and exposes the VAPID
// public key clients need to subscribe.
type PushService struct {
	subRepo   repositories.SubscriptionRepository
	publicKey string
}

// NewPushService creates a new PushService.
func NewPushService(subRepo repositories.SubscriptionRepository, publicKey string) *PushService {
	return &PushService{
		subRepo:   subRepo,
		publicKey: publicKey,
	}
}

// PublicKey returns the VAPID public key.
func (s *PushService) PublicKey() string {
	return s.publicKey
}

// Subscribe registers a push endpoint for the user. Re-subscribing with an
// endpoint that is already registered refreshes its keys instead of adding
// a duplicate row.
func (s *PushService) Subscribe(userID, endpoint, auth, p256dh string) error {
	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		Auth:     auth,
		P256dh:   p256dh,
	}
	if err := s.subRepo.Upsert(sub); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Unsubscribe removes the subscription with the given endpoint.
func (s *PushService) Unsubscribe(endpoint string) error {
	if err := s.subRepo.DeleteByEndpoint(endpoint); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

// SubscriptionsFor returns the user's registered subscriptions.
func (s *PushService) SubscriptionsFor(userID string) ([]models.PushSubscription, error) {
	return s.subRepo.GetByUser(userID)
}
