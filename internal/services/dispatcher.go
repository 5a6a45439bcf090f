package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"dailyflow/internal/models"
	"dailyflow/internal/repositories"
	"dailyflow/pkg/rabbitmq"
)

// Dispatcher periodically scans for due reminders and delivers a push
// notification to each subscription of the owning user.
//
// A reminder is due when its stored date and time strings exactly match the
// current minute of the server-local clock. The match window is one minute
// wide: if the process is down or delayed past that minute, the reminder is
// never dispatched (no catch-up scan). The repeat field is not consulted, so
// a Daily/Weekly reminder fires at most once, on its stored date.
type Dispatcher struct {
	reminderRepo repositories.ReminderRepository
	subRepo      repositories.SubscriptionRepository
	sender       PushSender
	mqClient     *rabbitmq.Client // optional, nil-safe
	interval     time.Duration
	now          func() time.Time
	stop         chan struct{}
}

// NewDispatcher creates a new Dispatcher. A non-positive interval falls back
// to the standard 60-second period.
func NewDispatcher(reminderRepo repositories.ReminderRepository, subRepo repositories.SubscriptionRepository, sender PushSender, mqClient *rabbitmq.Client, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Dispatcher{
		reminderRepo: reminderRepo,
		subRepo:      subRepo,
		sender:       sender,
		mqClient:     mqClient,
		interval:     interval,
		now:          time.Now,
		stop:         make(chan struct{}),
	}
}

// Start runs the dispatch loop on its own goroutine until Stop is called.
// An initial check runs immediately, then once per interval.
func (d *Dispatcher) Start() {
	go func() {
		d.CheckDueReminders()

		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.CheckDueReminders()
			case <-d.stop:
				return
			}
		}
	}()
}

// Stop shuts down the dispatch loop. In-flight deliveries are not cancelled.
func (d *Dispatcher) Stop() {
	close(d.stop)
}

// CheckDueReminders performs a single dispatch tick: find reminders due this
// minute and attempt delivery to each of the owner's subscriptions.
func (d *Dispatcher) CheckDueReminders() {
	now := d.now()
	currentDate := now.Format("2006-01-02")
	currentTime := now.Format("15:04")

	due, err := d.reminderRepo.FindDue(currentDate, currentTime)
	if err != nil {
		log.Printf("Dispatcher: failed to query due reminders: %v", err)
		return
	}

	for _, reminder := range due {
		d.dispatch(reminder)
	}
}

// dispatch delivers one due reminder to every subscription of its owner.
// Delivery is fire-and-forget per subscription: a gone endpoint is pruned,
// any other failure is logged and skipped without retry.
func (d *Dispatcher) dispatch(reminder models.Reminder) {
	subs, err := d.subRepo.GetByUser(reminder.UserID)
	if err != nil {
		log.Printf("Dispatcher: failed to load subscriptions for user %s: %v", reminder.UserID, err)
		return
	}

	body := reminder.Notes
	if body == "" {
		body = "Time for your reminder!"
	}
	payload, err := json.Marshal(map[string]string{
		"title": reminder.Title,
		"body":  body,
		"tag":   reminder.ID,
	})
	if err != nil {
		log.Printf("Dispatcher: failed to marshal payload for reminder %s: %v", reminder.ID, err)
		return
	}

	for _, sub := range subs {
		if err := d.sender.Send(sub, payload); err != nil {
			if errors.Is(err, ErrSubscriptionGone) {
				if delErr := d.subRepo.DeleteByEndpoint(sub.Endpoint); delErr != nil {
					log.Printf("Dispatcher: failed to delete stale subscription %s: %v", sub.Endpoint, delErr)
				} else {
					log.Printf("Dispatcher: deleted expired subscription: %s", sub.Endpoint)
				}
			} else {
				log.Printf("Dispatcher: error sending push for reminder %s: %v", reminder.ID, err)
			}
			continue
		}
		log.Printf("Dispatcher: push sent for reminder: %s", reminder.Title)
	}

	if d.mqClient != nil {
		event := map[string]interface{}{
			"reminderID": reminder.ID,
			"userID":     reminder.UserID,
			"title":      reminder.Title,
			"date":       reminder.Date,
			"time":       reminder.Time,
		}
		if err := d.mqClient.PublishReminderDue(event); err != nil {
			log.Printf("Warning: failed to publish due event for reminder %s: %v", reminder.ID, err)
		}
	} else {
		log.Println("RabbitMQ client is not initialized. Skipping due event publication.")
	}
}
