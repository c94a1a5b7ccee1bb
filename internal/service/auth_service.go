package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pokemon-tcg/internal/config"
	"github.com/pokemon-tcg/internal/models"
	"github.com/pokemon-tcg/internal/repository"
	"github.com/pokemon-tcg/internal/session"
	"github.com/pokemon-tcg/pkg/crypto"
	"github.com/pokemon-tcg/pkg/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

const tokenIssuer = "pokemon-tcg"

// AuthService handles signup, login and session tokens
type AuthService struct {
	userRepo  *repository.UserRepository
	sessions  session.Store
	jwtConfig config.JWTConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.UserRepository, sessions session.Store, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		sessions:  sessions,
		jwtConfig: jwtConfig,
	}
}

// SignupRequest represents the signup form
type SignupRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,password"`
}

// LoginRequest represents the login form
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionClaims is the payload of the session cookie. The token only points
// at a server-side session; deleting the session invalidates it.
type SessionClaims struct {
	UserID    uint   `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Signup creates a user with a hashed password
func (s *AuthService) Signup(req *SignupRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return nil, &ValidationError{Field: "password", Message: "password is too long"}
		}
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		ProfileImage: models.DefaultProfileImage,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	logger.Info("[Auth] New user %d (%s)", user.ID, user.Username)
	return user, nil
}

// Authenticate checks a username/password pair. ok is false for an unknown
// user and for a wrong password alike; err is only set when the store fails.
func (s *AuthService) Authenticate(username, password string) (user *models.User, ok bool, err error) {
	user, err = s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			crypto.BurnCompare(password)
			return nil, false, nil
		}
		return nil, false, err
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		return nil, false, nil
	}

	return user, true, nil
}

// Login authenticates the request and starts a session for the user
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*models.User, string, error) {
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	user, ok, err := s.Authenticate(req.Username, req.Password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.StartSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// StartSession creates a server-side session and returns the signed token for it
func (s *AuthService) StartSession(ctx context.Context, user *models.User) (string, error) {
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &SessionClaims{
		UserID:    user.ID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.SessionTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// Logout ends the session behind token. An unreadable token has no session to end.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.SessionID)
}

// ParseToken verifies the token signature and expiry
func (s *AuthService) ParseToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// ResolveToken returns the user a session token belongs to. Every failure
// other than a store outage is reported as ErrInvalidToken.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	userID, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if userID != claims.UserID {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return user, nil
}
