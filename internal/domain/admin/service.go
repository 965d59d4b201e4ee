package admin

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/granada-os/credits-api/internal/pkg/jwt"
)

// Service handles admin authentication
type Service struct {
	repo Repository
	jwt  *jwt.Service
}

// NewService creates admin service
func NewService(repo Repository, jwtService *jwt.Service) *Service {
	return &Service{repo: repo, jwt: jwtService}
}

// Login verifies credentials and issues an admin token
func (s *Service) Login(ctx context.Context, email, password string) (string, *Admin, error) {
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(admin.ID, admin.Email)
	if err != nil {
		return "", nil, ErrInternal
	}
	return token, admin, nil
}
