package repositories

import "dailyflow/internal/models"

// ReminderRepository defines the interface for reminder data access.
// Mutating operations are scoped by the owning user so a caller can never
// touch another user's rows; FindDue is the dispatcher's unscoped scan.
type ReminderRepository interface {
	GetAllByUser(userID string) ([]models.Reminder, error)
	GetByID(id, userID string) (*models.Reminder, error)
	Create(reminder *models.Reminder) error
	Update(id, userID string, updates map[string]interface{}) (*models.Reminder, error)
	ToggleComplete(id, userID string) (*models.Reminder, error)
	Delete(id, userID string) (bool, error)
	DeleteAllByUser(userID string) error
	FindDue(date, timeOfDay string) ([]models.Reminder, error)
}
