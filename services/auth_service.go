package services

import (
	"chat-live/auth"
	"chat-live/domain"
	"chat-live/errors"
	"chat-live/repositories"
	"fmt"
)

type IAuthService interface {
	Login(username, password string) (Token, error)
	Register(username, password string) (Token, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	codec          *auth.TokenCodec
}

type Token string

func NewAuthService(repo repositories.IUserRepository, codec *auth.TokenCodec) IAuthService {
	return &AuthService{userRepository: repo, codec: codec}
}

func (s *AuthService) Register(username, password string) (Token, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Password: password,
	}

	// 1. Validate business rules (username shape, password complexity)
	// before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", err
	}

	// 2. Hash the password using Argon2id.
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash.
	userID, err := s.userRepository.CreateUser(username, hashedPassword)
	if err != nil {
		return "", err // Propagates ErrUsernameTaken if the name is taken
	}

	// 4. Issue the initial session token.
	token, err := s.codec.Issue(domain.Identity{UserID: userID, Username: username})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

func (s *AuthService) Login(username, password string) (Token, error) {
	// 1. Retrieve user by username from storage.
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash.
	// The salt lives inside the encoded hash.
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token.
	token, err := s.codec.Issue(domain.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
