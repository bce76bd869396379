package service

import (
	"errors"
	"log"

	"surgical-scheduling-backend/internal/models"
	"surgical-scheduling-backend/internal/repository"
	"surgical-scheduling-backend/pkg/utils"
)

// ErrInvalidCredentials is returned for unknown users and wrong passwords
// alike; login never reveals which one failed.
var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}
	return utils.GenerateAccessToken(user.ID, user.Role)
}

// EnsureAdmin creates the bootstrap admin account if no admin exists yet.
// Called once at startup with credentials from configuration.
func (s *AuthService) EnsureAdmin(username, password string) error {
	count, err := s.userRepo.CountByRole("admin")
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         "admin",
	}
	if err := s.userRepo.Create(admin); err != nil {
		return err
	}
	log.Printf("Bootstrap admin account %q created", username)
	return nil
}
