package repositories

import (
	"chat-live/errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	userID, err := repository.CreateUser("alice", "$argon2id$encoded-hash")
	req.NoError(err)
	req.NotEmpty(userID)

	user, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(userID, user.ID)
	req.Equal("alice", user.Username)
	req.Equal("$argon2id$encoded-hash", user.PasswordHash)
	req.False(user.CreatedAt.IsZero())
}

func TestUserRepository_Duplicate_Username(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice", "hash-1")
	req.NoError(err)

	// A second registration of the same username must fail
	_, err = repository.CreateUser("alice", "hash-2")
	req.ErrorIs(err, errors.ErrUsernameTaken)

	// And the original record is untouched
	user, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal("hash-1", user.PasswordHash)
}

func TestUserRepository_Unknown_Username(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByUsername("nobody")
	req.Error(err)
}
