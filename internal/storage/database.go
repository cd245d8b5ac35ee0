package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rfaria/vendaszap-backend/internal/models"
)

// DatabaseStore persists everything in PostgreSQL through GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// User operations

func (s *DatabaseStore) CreateUser(username, passwordHash string) (*models.User, error) {
	if _, err := s.GetUserByUsername(username); err == nil {
		return nil, ErrUserExists
	}

	user := &models.User{
		Username: username,
		Password: passwordHash,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DatabaseStore) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Authorized number operations

func (s *DatabaseStore) GetAllAuthorizedNumbers() ([]*models.AuthorizedNumber, error) {
	var numbers []*models.AuthorizedNumber
	if err := s.db.Order("date_added asc").Find(&numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

func (s *DatabaseStore) GetAuthorizedNumberByPhone(phone string) (*models.AuthorizedNumber, error) {
	var number models.AuthorizedNumber
	err := s.db.First(&number, "phone = ?", models.NormalizePhone(phone)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &number, nil
}

func (s *DatabaseStore) CreateAuthorizedNumber(phone, label string) (*models.AuthorizedNumber, error) {
	if _, err := s.GetAuthorizedNumberByPhone(phone); err == nil {
		return nil, ErrPhoneExists
	}

	number := &models.AuthorizedNumber{
		Phone: phone, // normalized by the BeforeCreate hook
		Label: label,
	}
	if err := s.db.Create(number).Error; err != nil {
		return nil, err
	}
	return number, nil
}

func (s *DatabaseStore) DeleteAuthorizedNumber(id string) error {
	result := s.db.Delete(&models.AuthorizedNumber{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Message log operations

func (s *DatabaseStore) GetAllMessages() ([]*models.Message, error) {
	var messages []*models.Message
	if err := s.db.Order("timestamp desc").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *DatabaseStore) CreateMessage(phone, content, direction string) (*models.Message, error) {
	message := &models.Message{
		Phone:     models.NormalizePhone(phone),
		Content:   content,
		Direction: direction,
	}
	if err := s.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// Settings operations

func (s *DatabaseStore) GetSettings() (*models.Settings, error) {
	var settings models.Settings
	if err := s.db.First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsMissing
		}
		return nil, err
	}
	return &settings, nil
}

func (s *DatabaseStore) UpsertSettings(settings *models.Settings) (*models.Settings, error) {
	var existing models.Settings
	err := s.db.First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(settings).Error; err != nil {
			return nil, err
		}
		return settings, nil
	case err != nil:
		return nil, err
	default:
		settings.ID = existing.ID
		if err := s.db.Save(settings).Error; err != nil {
			return nil, err
		}
		return settings, nil
	}
}
