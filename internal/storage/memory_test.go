package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfaria/vendaszap-backend/internal/models"
)

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.CreateUser("admin", "hash")
	require.NoError(t, err)

	_, err = store.CreateUser("admin", "other-hash")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestGetUserByUsername(t *testing.T) {
	store := NewMemoryStore()

	created, err := store.CreateUser("admin", "hash")
	require.NoError(t, err)

	found, err := store.GetUserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = store.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorizedNumbersNormalizeAndDeduplicate(t *testing.T) {
	store := NewMemoryStore()

	number, err := store.CreateAuthorizedNumber("+351 912 345 678", "Gerente")
	require.NoError(t, err)
	assert.Equal(t, "351912345678", number.Phone)

	// Same number in a different format is still a duplicate
	_, err = store.CreateAuthorizedNumber("whatsapp:+351912345678", "Outro")
	assert.ErrorIs(t, err, ErrPhoneExists)

	found, err := store.GetAuthorizedNumberByPhone("whatsapp:+351912345678")
	require.NoError(t, err)
	assert.Equal(t, number.ID, found.ID)
}

func TestDeleteAuthorizedNumber(t *testing.T) {
	store := NewMemoryStore()

	number, err := store.CreateAuthorizedNumber("351912345678", "Gerente")
	require.NoError(t, err)

	require.NoError(t, store.DeleteAuthorizedNumber(number.ID))
	assert.ErrorIs(t, store.DeleteAuthorizedNumber(number.ID), ErrNotFound)

	_, err = store.GetAuthorizedNumberByPhone("351912345678")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMessagesAreListedNewestFirst(t *testing.T) {
	store := NewMemoryStore()

	for _, content := range []string{"first", "second", "third"} {
		_, err := store.CreateMessage("351912345678", content, models.DirectionReceived)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	messages, err := store.GetAllMessages()
	require.NoError(t, err)

	require.Len(t, messages, 3)
	assert.Equal(t, "third", messages[0].Content)
	assert.Equal(t, "first", messages[2].Content)
}

func TestSettingsSingleton(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetSettings()
	assert.ErrorIs(t, err, ErrSettingsMissing)

	_, err = store.UpsertSettings(&models.Settings{Username: "a", URL: "http://erp"})
	require.NoError(t, err)
	_, err = store.UpsertSettings(&models.Settings{Username: "b", URL: "http://erp2"})
	require.NoError(t, err)

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, "b", settings.Username)
	assert.Equal(t, uint(1), settings.ID, "settings stay a single record")
}
