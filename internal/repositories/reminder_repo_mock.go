package repositories

import (
	"sync"
	"time"

	"dailyflow/internal/models"

	"github.com/google/uuid"
)

// MockReminderRepository is an in-memory implementation of ReminderRepository.
type MockReminderRepository struct {
	reminders map[string]models.Reminder
	mu        sync.RWMutex
}

// NewMockReminderRepository creates a new instance of MockReminderRepository.
func NewMockReminderRepository() *MockReminderRepository {
	return &MockReminderRepository{
		reminders: make(map[string]models.Reminder),
	}
}

// GetAllByUser returns all reminders owned by the given user.
func (r *MockReminderRepository) GetAllByUser(userID string) ([]models.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Reminder, 0)
	for _, reminder := range r.reminders {
		if reminder.UserID == userID {
			list = append(list, reminder)
		}
	}
	return list, nil
}

// GetByID returns a reminder by its ID, scoped to the owning user.
func (r *MockReminderRepository) GetByID(id, userID string) (*models.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reminder, ok := r.reminders[id]
	if !ok || reminder.UserID != userID {
		return nil, ErrNotFound
	}
	return &reminder, nil
}

// Create adds a new reminder.
func (r *MockReminderRepository) Create(reminder *models.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	reminder.CreatedAt = time.Now()
	r.reminders[reminder.ID] = *reminder
	return nil
}

// Update applies a partial set of field updates.
func (r *MockReminderRepository) Update(id, userID string, updates map[string]interface{}) (*models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reminder, ok := r.reminders[id]
	if !ok || reminder.UserID != userID {
		return nil, ErrNotFound
	}
	for field, value := range updates {
		switch field {
		case "title":
			reminder.Title = value.(string)
		case "category":
			reminder.Category = value.(string)
		case "date":
			reminder.Date = value.(string)
		case "time":
			reminder.Time = value.(string)
		case "repeat":
			reminder.Repeat = value.(string)
		case "notes":
			reminder.Notes = value.(string)
		case "completed":
			reminder.Completed = value.(bool)
		}
	}
	r.reminders[id] = reminder
	return &reminder, nil
}

// ToggleComplete flips the completed flag.
func (r *MockReminderRepository) ToggleComplete(id, userID string) (*models.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reminder, ok := r.reminders[id]
	if !ok || reminder.UserID != userID {
		return nil, ErrNotFound
	}
	reminder.Completed = !reminder.Completed
	r.reminders[id] = reminder
	return &reminder, nil
}

// Delete removes a reminder, reporting whether a row was removed.
func (r *MockReminderRepository) Delete(id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reminder, ok := r.reminders[id]
	if !ok || reminder.UserID != userID {
		return false, nil
	}
	delete(r.reminders, id)
	return true, nil
}

// DeleteAllByUser removes every reminder owned by the given user.
func (r *MockReminderRepository) DeleteAllByUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, reminder := range r.reminders {
		if reminder.UserID == userID {
			delete(r.reminders, id)
		}
	}
	return nil
}

// FindDue returns non-completed reminders matching the date and time exactly.
func (r *MockReminderRepository) FindDue(date, timeOfDay string) ([]models.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	due := make([]models.Reminder, 0)
	for _, reminder := range r.reminders {
		if reminder.Date == date && reminder.Time == timeOfDay && !reminder.Completed {
			due = append(due, reminder)
		}
	}
	return due, nil
}
