package services

import (
	"chat-live/auth"
	"chat-live/errors"
	"chat-live/mocks"
	"chat-live/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "a_test_only_signing_secret_2026"

func newCodec() *auth.TokenCodec {
	return auth.NewTokenCodec(testSecret, time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	codec := newCodec()
	svc := NewAuthService(mockRepo, codec)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"
		password := "ComplexPass123"
		expectedUserID := "user-uuid"

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser(username, gomock.Any()).
			Return(expectedUserID, nil).
			Times(1)

		token, err := svc.Register(username, password)

		req.NoError(err)
		req.NotEmpty(token)

		identity, err := codec.Verify(string(token))
		req.NoError(err)
		req.Equal(expectedUserID, identity.UserID)
		req.Equal(username, identity.Username)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

		token, err := svc.Register("alice42", "simple")

		req.Error(err)
		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(token)
	})

	t.Run("should fail when username is already taken", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("duplicate1", gomock.Any()).
			Return("", errors.ErrUsernameTaken).
			Times(1)

		_, err := svc.Register("duplicate1", "ComplexPass123")

		req.ErrorIs(err, errors.ErrUsernameTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	codec := newCodec()
	svc := NewAuthService(mockRepo, codec)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"
		password := "Secret123456"

		hashedPassword, _ := auth.HashPassword(password)
		storedUser := repositories.User{
			ID:           "uuid-123",
			Username:     username,
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetUserByUsername(username).
			Return(storedUser, nil).
			Times(1)

		token, err := svc.Login(username, password)

		req.NoError(err)
		req.NotEmpty(token)

		identity, err := codec.Verify(string(token))
		req.NoError(err)
		req.Equal(storedUser.ID, identity.UserID)
		req.Equal(username, identity.Username)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)
		username := "alice42"

		hashedPassword, _ := auth.HashPassword("CorrectPassword123")
		storedUser := repositories.User{
			Username:     username,
			PasswordHash: hashedPassword,
		}

		mockRepo.EXPECT().
			GetUserByUsername(username).
			Return(storedUser, nil).
			Times(1)

		_, err := svc.Login(username, "WrongPassword123")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByUsername("unknown").
			Return(repositories.User{}, errors.ErrInvalidCredentials).
			Times(1)

		_, err := svc.Login("unknown", "anyPassword1")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
