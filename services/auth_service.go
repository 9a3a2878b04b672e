package services

import (
	"fmt"

	"messenger/auth"
	"messenger/domain"
	"messenger/errors"
	"messenger/repositories"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(username, email, password string) (domain.User, error)
	Login(username, password string) (Token, error)
	CurrentUser(token string) (domain.User, error)
	ListOthers(requesterID uuid.UUID) ([]domain.User, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenManager
}

type Token string

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenManager) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

// Register validates the input, hashes the password and persists the user.
// Uniqueness of username and email is enforced by the repository txn; the
// conflict it returns is authoritative, there is no pre-check here.
func (s *AuthService) Register(username, email, password string) (domain.User, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	// Checked before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens in the service layer so the repository never sees a
	// plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	return s.userRepository.CreateUser(username, email, hashedPassword)
}

// Login verifies the credentials and issues a bearer token. Lookup and
// comparison failures collapse into one generic error to prevent user
// enumeration.
func (s *AuthService) Login(username, password string) (Token, error) {
	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID.String(), user.Username)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

// CurrentUser resolves a bearer token to the account it belongs to. Any
// failure, from a bad signature to a deleted account, is the same
// ErrUnauthorized.
func (s *AuthService) CurrentUser(token string) (domain.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return domain.User{}, errors.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return domain.User{}, errors.ErrUnauthorized
	}

	user, err := s.userRepository.GetByID(userID)
	if err != nil {
		return domain.User{}, errors.ErrUnauthorized
	}

	return user, nil
}

// ListOthers returns every registered user except the requester, for the
// contact picker.
func (s *AuthService) ListOthers(requesterID uuid.UUID) ([]domain.User, error) {
	return s.userRepository.ListOthers(requesterID)
}
