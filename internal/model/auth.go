package model

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotLoggedIn is returned by every service entry point when the session guard fails.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the guard consulted before any registration or reporting operation.
type Session interface {
	IsLoggedIn() bool
	Username() string
}

// StaffSession is the session carried by an authenticated request.
type StaffSession struct {
	User    string
	TokenID string
}

func (s *StaffSession) IsLoggedIn() bool {
	return s != nil && s.User != ""
}

func (s *StaffSession) Username() string {
	if s == nil {
		return ""
	}
	return s.User
}

// AnonymousSession is used when no valid token accompanies a request.
type AnonymousSession struct{}

func (AnonymousSession) IsLoggedIn() bool { return false }
func (AnonymousSession) Username() string { return "" }

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=4"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// StaffAccount is a login known to the clinic, configured with a bcrypt hash.
type StaffAccount struct {
	Username     string `mapstructure:"username" validate:"required"`
	PasswordHash string `mapstructure:"password_hash" validate:"required"`
}
