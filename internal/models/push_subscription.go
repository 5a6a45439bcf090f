package models

import "time"

// PushSubscription is a registered Web Push endpoint plus its encryption
// keys, through which a browser accepts notifications for a user. One row
// per distinct endpoint; stale endpoints are pruned when delivery reports
// the subscription gone.
type PushSubscription struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Endpoint  string    `json:"endpoint" gorm:"uniqueIndex;type:varchar(500);not null"`
	Auth      string    `json:"auth" gorm:"type:varchar(255);not null"`
	P256dh    string    `json:"p256dh" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
