package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/storage"
)

// SettingsHandler manages the ERP credentials record
type SettingsHandler struct {
	store storage.Store
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store storage.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Get returns the current settings, or null when none are saved yet.
// The ERP password is never echoed back to the dashboard.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.store.GetSettings()
	if err != nil {
		if errors.Is(err, storage.ErrSettingsMissing) {
			return c.JSON(nil)
		}
		log.Printf("Failed to load settings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load settings",
		})
	}

	redacted := *settings
	redacted.Password = ""
	return c.JSON(redacted)
}

// Upsert replaces the active settings record
func (h *SettingsHandler) Upsert(c *fiber.Ctx) error {
	var input models.Settings
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if input.URL == "" || input.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL and username are required",
		})
	}
	if input.GrantType == "" {
		input.GrantType = "password"
	}

	settings, err := h.store.UpsertSettings(&input)
	if err != nil {
		log.Printf("Failed to save settings: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save settings",
		})
	}

	return c.JSON(settings)
}
