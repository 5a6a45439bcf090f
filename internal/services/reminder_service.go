package services

import (
	"fmt"

	"dailyflow/internal/models"
	"dailyflow/internal/repositories"
)

// ReminderUpdate carries the optional fields of a partial reminder update.
// Nil fields are left untouched.
type ReminderUpdate struct {
	Title     *string
	Category  *string
	Date      *string
	Time      *string
	Repeat    *string
	Notes     *string
	Completed *bool
}

// ReminderService handles business logic for reminders. Every operation is
// scoped to the authenticated user.
type ReminderService struct {
	reminderRepo repositories.ReminderRepository
}

// NewReminderService creates a new ReminderService.
func NewReminderService(reminderRepo repositories.ReminderRepository) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
	}
}

// List retrieves all reminders for the user. No ordering guarantee; the
// client sorts by time.
func (s *ReminderService) List(userID string) ([]models.Reminder, error) {
	return s.reminderRepo.GetAllByUser(userID)
}

// Create stores a new reminder for the user. New reminders always start
// not completed.
func (s *ReminderService) Create(userID, title, category, date, timeOfDay, repeat, notes string) (*models.Reminder, error) {
	if repeat == "" {
		repeat = models.RepeatNone
	}

	reminder := &models.Reminder{
		UserID:    userID,
		Title:     title,
		Category:  category,
		Date:      date,
		Time:      timeOfDay,
		Repeat:    repeat,
		Notes:     notes,
		Completed: false,
	}
	if err := s.reminderRepo.Create(reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

// Update applies the non-nil fields of the update to the user's reminder.
func (s *ReminderService) Update(id, userID string, update ReminderUpdate) (*models.Reminder, error) {
	updates := make(map[string]interface{})
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Category != nil {
		updates["category"] = *update.Category
	}
	if update.Date != nil {
		updates["date"] = *update.Date
	}
	if update.Time != nil {
		updates["time"] = *update.Time
	}
	if update.Repeat != nil {
		updates["repeat"] = *update.Repeat
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}
	if update.Completed != nil {
		updates["completed"] = *update.Completed
	}

	if len(updates) == 0 {
		return s.reminderRepo.GetByID(id, userID)
	}
	return s.reminderRepo.Update(id, userID, updates)
}

// ToggleComplete flips the completed flag of the user's reminder.
func (s *ReminderService) ToggleComplete(id, userID string) (*models.Reminder, error) {
	return s.reminderRepo.ToggleComplete(id, userID)
}

// Delete removes the user's reminder, reporting whether a row was removed.
func (s *ReminderService) Delete(id, userID string) (bool, error) {
	return s.reminderRepo.Delete(id, userID)
}

// DeleteAll removes every reminder owned by the user.
func (s *ReminderService) DeleteAll(userID string) error {
	return s.reminderRepo.DeleteAllByUser(userID)
}
