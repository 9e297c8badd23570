//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-live/errors"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, hashedPassword string) (string, error)
	GetUserByUsername(username string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository-layer representation of an account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

// CreateUser persists the user in BadgerDB and returns the generated ID.
// The uniqueness check and the insert run in a single transaction, so two
// concurrent registrations of the same username cannot both succeed.
func (u UserRepository) CreateUser(username, hashedPassword string) (string, error) {
	record := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUsernameTaken
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return "", err
	}

	return record.ID, nil
}

// GetUserByUsername retrieves a user record from Badger.
func (u UserRepository) GetUserByUsername(username string) (User, error) {
	var record User

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err // Handled as ErrInvalidCredentials by the caller
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	if err != nil {
		return User{}, err
	}

	return record, nil
}
