package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/rfaria/vendaszap-backend/internal/storage"
)

// MessageHandler exposes the message log to the dashboard
type MessageHandler struct {
	store storage.Store
}

// NewMessageHandler creates a new message log handler
func NewMessageHandler(store storage.Store) *MessageHandler {
	return &MessageHandler{store: store}
}

// List returns the full message log, newest first
func (h *MessageHandler) List(c *fiber.Ctx) error {
	messages, err := h.store.GetAllMessages()
	if err != nil {
		log.Printf("Failed to list messages: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list messages",
		})
	}
	return c.JSON(messages)
}
