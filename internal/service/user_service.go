package service

import (
	"context"
	"errors"
	"strings"

	"github.com/pokemon-tcg/internal/models"
	"github.com/pokemon-tcg/internal/repository"
	"github.com/pokemon-tcg/internal/session"
	"github.com/pokemon-tcg/pkg/crypto"
	"github.com/pokemon-tcg/pkg/logger"
)

// UserService handles profile operations for a logged-in user
type UserService struct {
	userRepo     *repository.UserRepository
	favoriteRepo *repository.FavoriteRepository
	sessions     session.Store
}

// NewUserService creates a new UserService
func NewUserService(userRepo *repository.UserRepository, favoriteRepo *repository.FavoriteRepository, sessions session.Store) *UserService {
	return &UserService{
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
		sessions:     sessions,
	}
}

// UpdateProfileRequest represents the edit profile form. Password is the
// current password and is required to confirm the change.
type UpdateProfileRequest struct {
	Username     string `json:"username" validate:"required,max=50"`
	Email        string `json:"email" validate:"required,email,max=100"`
	ProfileImage string `json:"profile_image" validate:"omitempty,url,max=500"`
	Password     string `json:"password" validate:"required"`
}

// Profile returns the user along with their favorite cards
func (s *UserService) Profile(userID uint) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	favorites, err := s.favoriteRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []models.Card{}
	}

	return &models.Profile{User: user, Favorites: favorites}, nil
}

// UpdateProfile changes username, email and profile image after re-checking the password
func (s *UserService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.ProfileImage = strings.TrimSpace(req.ProfileImage)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	user.Username = req.Username
	user.Email = req.Email
	user.ProfileImage = req.ProfileImage
	if user.ProfileImage == "" {
		user.ProfileImage = models.DefaultProfileImage
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// DeleteAccount removes the user, their favorites and every session they hold
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.userRepo.Delete(userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.sessions.DeleteUser(ctx, userID); err != nil {
		logger.Error("[User] Deleted user %d but failed to drop sessions: %v", userID, err)
		return err
	}

	logger.Info("[User] Deleted user %d", userID)
	return nil
}
