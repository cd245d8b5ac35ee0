package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/rfaria/vendaszap-backend/internal/auth"
	"github.com/rfaria/vendaszap-backend/internal/models"
	"github.com/rfaria/vendaszap-backend/internal/storage"
)

// AuthHandler handles dashboard registration and login
type AuthHandler struct {
	store storage.Store
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store) *AuthHandler {
	return &AuthHandler{store: store}
}

type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a dashboard account and returns a session token
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if input.Username == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and password are required",
		})
	}

	hash, err := models.HashPassword(input.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register user",
		})
	}

	user, err := h.store.CreateUser(input.Username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "User already exists",
			})
		}
		log.Printf("Failed to create user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register user",
		})
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// Login verifies credentials and returns a session token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if input.Username == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and password are required",
		})
	}

	user, err := h.store.GetUserByUsername(input.Username)
	if err != nil || !user.CheckPassword(input.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	user, err := h.store.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
	})
}
