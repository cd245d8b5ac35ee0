package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/storage"
)

// NumberHandler manages the allow-list of authorized WhatsApp numbers
type NumberHandler struct {
	store storage.Store
}

// NewNumberHandler creates a new allow-list handler
func NewNumberHandler(store storage.Store) *NumberHandler {
	return &NumberHandler{store: store}
}

// List returns all authorized numbers
func (h *NumberHandler) List(c *fiber.Ctx) error {
	numbers, err := h.store.GetAllAuthorizedNumbers()
	if err != nil {
		log.Printf("Failed to list authorized numbers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list authorized numbers",
		})
	}
	return c.JSON(numbers)
}

type numberInput struct {
	Phone string `json:"phone"`
	Label string `json:"label"`
}

// Create adds a number to the allow-list
func (h *NumberHandler) Create(c *fiber.Ctx) error {
	var input numberInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if models.NormalizePhone(input.Phone) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid phone number is required",
		})
	}

	number, err := h.store.CreateAuthorizedNumber(input.Phone, input.Label)
	if err != nil {
		if errors.Is(err, storage.ErrPhoneExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Number is already authorized",
			})
		}
		log.Printf("Failed to create authorized number: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add authorized number",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(number)
}

// Delete removes a number from the allow-list
func (h *NumberHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.store.DeleteAuthorizedNumber(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Number not found",
			})
		}
		log.Printf("Failed to delete authorized number %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete authorized number",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
