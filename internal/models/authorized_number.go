package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthorizedNumber is an allow-list entry. Only numbers on this list
// receive automated replies from the bot.
type AuthorizedNumber struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Phone     string    `json:"phone" gorm:"uniqueIndex"` // normalized, digits only
	Label     string    `json:"label"`
	DateAdded time.Time `json:"dateAdded" gorm:"autoCreateTime"`
}

// BeforeCreate hook to auto-generate the ID and normalize the phone
func (n *AuthorizedNumber) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Phone = NormalizePhone(n.Phone)
	return nil
}
