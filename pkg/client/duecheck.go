package client

import (
	"sync"
	"time"

	"dailyflow/internal/models"
)

// Notifier raises a platform notification for a due reminder. Embedders
// plug in whatever their platform provides (browser Notification, native
// local notification).
type Notifier interface {
	Notify(reminder models.Reminder)
}

// Settings holds client-side preferences. Embedders persist them through
// the OnChange hook.
type Settings struct {
	NotificationsEnabled bool `json:"notifications_enabled"`

	OnChange func(Settings) `json:"-"`
}

// SetNotificationsEnabled updates the flag and fires the persistence hook.
func (s *Settings) SetNotificationsEnabled(enabled bool) {
	s.NotificationsEnabled = enabled
	if s.OnChange != nil {
		s.OnChange(*s)
	}
}

// DueChecker is the client-side fallback dispatch loop: while started, it
// scans the client's cached reminder list on a fixed period and notifies
// for reminders whose date and time match the local clock's current minute.
// It never re-queries the server on a tick, and a reminder is notified at
// most once per matched minute. This is best effort only; the server
// dispatcher is authoritative.
type DueChecker struct {
	client   *Client
	notifier Notifier
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	notified map[string]string // reminder id -> "date time" last notified
	stop     chan struct{}
}

// NewDueChecker creates a due checker with the standard 30-second period.
func NewDueChecker(client *Client, notifier Notifier) *DueChecker {
	return &DueChecker{
		client:   client,
		notifier: notifier,
		interval: 30 * time.Second,
		now:      time.Now,
		notified: make(map[string]string),
		stop:     make(chan struct{}),
	}
}

// Start runs the check loop on its own goroutine until Stop is called.
func (d *DueChecker) Start() {
	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.Check()
			case <-d.stop:
				return
			}
		}
	}()
}

// Stop shuts down the check loop. The checker cannot be restarted.
func (d *DueChecker) Stop() {
	close(d.stop)
}

// Check performs a single pass over the cached reminder list.
func (d *DueChecker) Check() {
	reminders, err := d.client.Reminders()
	if err != nil {
		return // best effort: skip the tick
	}

	now := d.now()
	currentDate := now.Format("2006-01-02")
	currentTime := now.Format("15:04")
	instant := currentDate + " " + currentTime

	for _, reminder := range reminders {
		if reminder.Completed || reminder.Date != currentDate || reminder.Time != currentTime {
			continue
		}

		d.mu.Lock()
		already := d.notified[reminder.ID] == instant
		if !already {
			d.notified[reminder.ID] = instant
		}
		d.mu.Unlock()

		if !already {
			d.notifier.Notify(reminder)
		}
	}
}
