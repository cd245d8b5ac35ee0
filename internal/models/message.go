package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message direction relative to the bot
const (
	DirectionReceived = "received"
	DirectionSent     = "sent"
)

// Message is an append-only log entry. Every inbound message is recorded,
// authorized or not, and every reply the bot sends.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Phone     string    `json:"phone" gorm:"index"`
	Content   string    `json:"content"`
	Direction string    `json:"direction"` // "received" or "sent"
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime;index"`
}

// BeforeCreate hook to auto-generate the ID
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
