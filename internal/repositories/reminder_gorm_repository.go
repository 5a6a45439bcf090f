package repositories

import (
	"errors"
	"fmt"

	"dailyflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReminderRepository is a GORM implementation of ReminderRepository.
type GORMReminderRepository struct {
	db *gorm.DB
}

// NewGORMReminderRepository creates a new instance of GORMReminderRepository.
func NewGORMReminderRepository(db *gorm.DB) *GORMReminderRepository {
	return &GORMReminderRepository{
		db: db,
	}
}

// GetAllByUser retrieves all reminders owned by the given user. No ordering
// is guaranteed; clients sort by time themselves.
func (r *GORMReminderRepository) GetAllByUser(userID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := r.db.Where("user_id = ?", userID).Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("failed to list reminders for user %s: %w", userID, err)
	}
	return reminders, nil
}

// GetByID retrieves a reminder by id, visible only to its owner.
func (r *GORMReminderRepository) GetByID(id, userID string) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.First(&reminder, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reminder %s: %w", id, err)
	}
	return &reminder, nil
}

// Create inserts a new reminder, assigning a fresh id when none is set.
func (r *GORMReminderRepository) Create(reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if err := r.db.Create(reminder).Error; err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// Update applies a partial set of column updates and returns the updated row.
func (r *GORMReminderRepository) Update(id, userID string, updates map[string]interface{}) (*models.Reminder, error) {
	result := r.db.Model(&models.Reminder{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update reminder %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(id, userID)
}

// ToggleComplete flips the completed flag in a single conditional UPDATE so
// two concurrent toggles cannot race on a read-then-write.
func (r *GORMReminderRepository) ToggleComplete(id, userID string) (*models.Reminder, error) {
	result := r.db.Model(&models.Reminder{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("completed", gorm.Expr("NOT completed"))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to toggle reminder %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(id, userID)
}

// Delete removes a reminder and reports whether a row was removed.
func (r *GORMReminderRepository) Delete(id, userID string) (bool, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Reminder{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete reminder %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteAllByUser removes every reminder owned by the given user.
func (r *GORMReminderRepository) DeleteAllByUser(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.Reminder{}).Error; err != nil {
		return fmt.Errorf("failed to delete reminders for user %s: %w", userID, err)
	}
	return nil
}

// FindDue returns all non-completed reminders whose stored date and time
// exactly match the given strings. The dispatcher calls this once per tick,
// so a reminder is only matched during the single minute it is observed.
func (r *GORMReminderRepository) FindDue(date, timeOfDay string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.Where("date = ? AND time = ? AND completed = ?", date, timeOfDay, false).
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find due reminders: %w", err)
	}
	return reminders, nil
}
