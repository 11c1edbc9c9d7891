package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWrongPassword      = errors.New("wrong password")
	ErrAdminNotConfigured = errors.New("no admin password configured")
)

// AuthService checks the shared admin password.
type AuthService struct {
	hash []byte
}

// NewAuthService accepts a bcrypt hash, or a plain password that is hashed
// once here. The hash wins when both are set.
func NewAuthService(passwordHash, password string) (*AuthService, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("bcrypt.Cost -> %w", err)
		}
		return &AuthService{hash: []byte(passwordHash)}, nil
	}

	if password == "" {
		return &AuthService{}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return &AuthService{hash: hash}, nil
}

func (s *AuthService) Login(_ context.Context, password string) error {
	if len(s.hash) == 0 {
		return ErrAdminNotConfigured
	}

	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return ErrWrongPassword
	}

	return nil
}
