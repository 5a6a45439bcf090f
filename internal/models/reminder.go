package models

import "time"

// Reminder categories.
const (
	CategoryStudy  = "Study"
	CategoryWater  = "Water"
	CategoryHealth = "Health"
	CategoryCustom = "Custom"
)

// Repeat cadences. Repeat is stored but the dispatcher never consults it:
// a reminder fires at most once, on its stored date.
const (
	RepeatNone   = "None"
	RepeatDaily  = "Daily"
	RepeatWeekly = "Weekly"
)

// Reminder represents a user-scheduled task with a due date and time.
// Date and Time are kept as strings ("2006-01-02" / "15:04") and together
// denote a single wall-clock instant in server-local time.
type Reminder struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Title     string    `json:"title" gorm:"type:text;not null"`
	Category  string    `json:"category" gorm:"type:varchar(50);not null"`
	Date      string    `json:"date" gorm:"type:varchar(10);not null"`
	Time      string    `json:"time" gorm:"type:varchar(5);not null"`
	Repeat    string    `json:"repeat" gorm:"type:varchar(20);default:'None'"`
	Notes     string    `json:"notes"`
	Completed bool      `json:"completed" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
