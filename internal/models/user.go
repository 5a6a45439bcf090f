package models

import "time"

// User represents a registered user of the app.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(50);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Name      string    `json:"name" gorm:"type:varchar(100)"`
	CreatedAt time.Time `json:"created_at"`
}
