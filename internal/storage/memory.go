package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rfaria/vendaszap-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for development and tests;
// everything is lost on restart.
type MemoryStore struct {
	users    map[string]*models.User
	numbers  map[string]*models.AuthorizedNumber
	messages map[string]*models.Message
	settings *models.Settings

	userMu    sync.RWMutex
	numberMu  sync.RWMutex
	messageMu sync.RWMutex
	settingMu sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*models.User),
		numbers:  make(map[string]*models.AuthorizedNumber),
		messages: make(map[string]*models.Message),
	}
}

// User operations

func (m *MemoryStore) CreateUser(username, passwordHash string) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return nil, ErrUserExists
		}
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  passwordHash,
		CreatedAt: time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(id string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByUsername(username string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

// Authorized number operations

func (m *MemoryStore) GetAllAuthorizedNumbers() ([]*models.AuthorizedNumber, error) {
	m.numberMu.RLock()
	defer m.numberMu.RUnlock()

	numbers := make([]*models.AuthorizedNumber, 0, len(m.numbers))
	for _, n := range m.numbers {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool {
		return numbers[i].DateAdded.Before(numbers[j].DateAdded)
	})
	return numbers, nil
}

func (m *MemoryStore) GetAuthorizedNumberByPhone(phone string) (*models.AuthorizedNumber, error) {
	m.numberMu.RLock()
	defer m.numberMu.RUnlock()

	phone = models.NormalizePhone(phone)
	for _, n := range m.numbers {
		if n.Phone == phone {
			return n, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateAuthorizedNumber(phone, label string) (*models.AuthorizedNumber, error) {
	m.numberMu.Lock()
	defer m.numberMu.Unlock()

	phone = models.NormalizePhone(phone)
	for _, n := range m.numbers {
		if n.Phone == phone {
			return nil, ErrPhoneExists
		}
	}

	number := &models.AuthorizedNumber{
		ID:        uuid.NewString(),
		Phone:     phone,
		Label:     label,
		DateAdded: time.Now(),
	}
	m.numbers[number.ID] = number
	return number, nil
}

func (m *MemoryStore) DeleteAuthorizedNumber(id string) error {
	m.numberMu.Lock()
	defer m.numberMu.Unlock()

	if _, exists := m.numbers[id]; !exists {
		return ErrNotFound
	}
	delete(m.numbers, id)
	return nil
}

// Message log operations

func (m *MemoryStore) GetAllMessages() ([]*models.Message, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	messages := make([]*models.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		messages = append(messages, msg)
	}
	// Newest first for dashboard display
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})
	return messages, nil
}

func (m *MemoryStore) CreateMessage(phone, content, direction string) (*models.Message, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	message := &models.Message{
		ID:        uuid.NewString(),
		Phone:     models.NormalizePhone(phone),
		Content:   content,
		Direction: direction,
		Timestamp: time.Now(),
	}
	m.messages[message.ID] = message
	return message, nil
}

// Settings operations

func (m *MemoryStore) GetSettings() (*models.Settings, error) {
	m.settingMu.RLock()
	defer m.settingMu.RUnlock()

	if m.settings == nil {
		return nil, ErrSettingsMissing
	}
	return m.settings, nil
}

func (m *MemoryStore) UpsertSettings(settings *models.Settings) (*models.Settings, error) {
	m.settingMu.Lock()
	defer m.settingMu.Unlock()

	settings.ID = 1
	settings.UpdatedAt = time.Now()
	m.settings = settings
	return m.settings, nil
}
