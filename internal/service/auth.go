package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leads-enricher/internal/auth"
)

// ErrInvalidCredentials signals a failed login attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService validates the operator credentials configured via environment
// and issues access tokens. The service runs with a single operator account;
// there is no user store.
type AuthService struct {
	operatorEmail string
	operatorHash  string
	jwt           *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(operatorEmail, operatorHash string, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		operatorEmail: strings.ToLower(strings.TrimSpace(operatorEmail)),
		operatorHash:  operatorHash,
		jwt:           jwtManager,
	}
}

// Login validates credentials and returns a JWT with the admin role.
func (s *AuthService) Login(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	if s.operatorEmail == "" || s.operatorHash == "" {
		return "", errors.New("operator credentials are not configured")
	}

	if strings.ToLower(strings.TrimSpace(email)) != s.operatorEmail {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.operatorHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken("operator", s.operatorEmail, "admin")
	if err != nil {
		return "", err
	}

	return token, nil
}
