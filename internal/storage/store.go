package storage

import (
	"errors"

	"github.com/rfaria/vendaszap-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrUserExists is returned when the username is already taken
	ErrUserExists = errors.New("user already exists")
	// ErrPhoneExists is returned when the phone is already authorized
	ErrPhoneExists = errors.New("phone already authorized")
	// ErrSettingsMissing is returned when no settings record has been saved yet
	ErrSettingsMissing = errors.New("settings not configured")
)

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(username, passwordHash string) (*models.User, error)
	GetUser(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)

	// Authorized number operations
	GetAllAuthorizedNumbers() ([]*models.AuthorizedNumber, error)
	GetAuthorizedNumberByPhone(phone string) (*models.AuthorizedNumber, error)
	CreateAuthorizedNumber(phone, label string) (*models.AuthorizedNumber, error)
	DeleteAuthorizedNumber(id string) error

	// Message log operations (append-only)
	GetAllMessages() ([]*models.Message, error)
	CreateMessage(phone, content, direction string) (*models.Message, error)

	// Settings operations (singleton)
	GetSettings() (*models.Settings, error)
	UpsertSettings(settings *models.Settings) (*models.Settings, error)
}
