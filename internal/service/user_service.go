package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/media"
	"github.com/JDamianDelgado/ValleDePaz/internal/models"
	"github.com/JDamianDelgado/ValleDePaz/internal/repository"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserUpdate lists the profile fields a user may change. Role and email
// are not patchable.
type UserUpdate struct {
	Nombre   *string `json:"nombre"`
	Apellido *string `json:"apellido"`
	Telefono *string `json:"telefono"`
	Ciudad   *string `json:"ciudad"`
	Username *string `json:"username"`
}

// PreferencesUpdate is a partial patch of the notification flags.
type PreferencesUpdate struct {
	EmailNotifications *bool `json:"email_notifications"`
	ModerationUpdates  *bool `json:"moderation_updates"`
	Newsletter         *bool `json:"newsletter"`
}

// UserProfile is a user together with every message they submitted.
// Mensajes is always serialized, as [] when there are none.
type UserProfile struct {
	*models.User
	Mensajes []models.VirginMessage `json:"mensajes"`
}

type UserService struct {
	userRepo      *repository.UserRepository
	uploader      media.Uploader
	maxImageBytes int64
}

func NewUserService(userRepo *repository.UserRepository, uploader media.Uploader, maxImageBytes int64) *UserService {
	return &UserService{
		userRepo:      userRepo,
		uploader:      uploader,
		maxImageBytes: maxImageBytes,
	}
}

// List returns all users, newest first
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	logger.Log.Debug("Fetching all users")

	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		logger.Log.Error("Failed to fetch all users", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Fetched all users", zap.Int("count", len(users)))
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		logger.Log.Error("Failed to load user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetFullProfile returns the user together with every message they submitted
func (s *UserService) GetFullProfile(ctx context.Context, id uuid.UUID) (*UserProfile, error) {
	user, err := s.userRepo.GetUserWithMessages(id)
	if err != nil {
		logger.Log.Error("Failed to load user profile", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile := &UserProfile{User: user, Mensajes: user.Messages}
	if profile.Mensajes == nil {
		profile.Mensajes = []models.VirginMessage{}
	}
	return profile, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UserUpdate) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Nombre != nil {
		fields["first_name"] = strings.TrimSpace(*input.Nombre)
	}
	if input.Apellido != nil {
		fields["last_name"] = strings.TrimSpace(*input.Apellido)
	}
	if input.Telefono != nil {
		fields["phone"] = strings.TrimSpace(*input.Telefono)
	}
	if input.Ciudad != nil {
		fields["city"] = strings.TrimSpace(*input.Ciudad)
	}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if len(username) < 3 || len(username) > 50 {
			return nil, fmt.Errorf("%w: username must be between 3 and 50 characters", ErrInvalidInput)
		}
		if username != user.Username {
			existing, err := s.userRepo.GetUserByUsername(username)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				logger.Log.Warn("Username already exists", zap.String("username", username))
				return nil, ErrUsernameAlreadyExists
			}
		}
		fields["username"] = username
	}

	if err := s.userRepo.UpdateFields(id, fields); err != nil {
		logger.Log.Error("Failed to update user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("User profile updated",
		zap.String("user_id", id.String()),
		zap.Int("fields", len(fields)),
	)
	return s.Get(ctx, id)
}

func (s *UserService) UpdatePreferences(ctx context.Context, id uuid.UUID, input PreferencesUpdate) (*models.NotificationPreferences, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.EmailNotifications != nil {
		fields["pref_email_notifications"] = *input.EmailNotifications
	}
	if input.ModerationUpdates != nil {
		fields["pref_moderation_updates"] = *input.ModerationUpdates
	}
	if input.Newsletter != nil {
		fields["pref_newsletter"] = *input.Newsletter
	}

	if err := s.userRepo.UpdateFields(id, fields); err != nil {
		logger.Log.Error("Failed to update preferences", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user.Preferences, nil
}

// UploadProfileImage sets the first profile image. Users that already have
// one must use ReplaceProfileImage.
func (s *UserService) UploadProfileImage(ctx context.Context, id uuid.UUID, image media.Upload) (string, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if user.ProfileImage != "" {
		return "", ErrProfileImageExists
	}
	return s.storeProfileImage(ctx, id, image)
}

// ReplaceProfileImage sets the profile image whether or not one exists.
func (s *UserService) ReplaceProfileImage(ctx context.Context, id uuid.UUID, image media.Upload) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	return s.storeProfileImage(ctx, id, image)
}

// Delete removes a user without messages. Users with messages must be
// removed with DeleteWithMessages.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.userRepo.CountMessages(id)
	if err != nil {
		logger.Log.Error("Failed to count user messages", zap.String("user_id", id.String()), zap.Error(err))
		return err
	}
	if count > 0 {
		logger.Log.Warn("Refusing to delete user with messages",
			zap.String("user_id", id.String()),
			zap.Int64("messages", count),
		)
		return ErrUserHasMessages
	}

	if err := s.userRepo.DeleteUser(id); err != nil {
		logger.Log.Error("Failed to delete user", zap.String("user_id", id.String()), zap.Error(err))
		return err
	}

	logger.Log.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// DeleteWithMessages removes the user and all their messages in one transaction.
func (s *UserService) DeleteWithMessages(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}

	removed, err := s.userRepo.DeleteUserWithMessages(id)
	if err != nil {
		logger.Log.Error("Failed to delete user with messages", zap.String("user_id", id.String()), zap.Error(err))
		return 0, err
	}

	logger.Log.Info("User deleted with messages",
		zap.String("user_id", id.String()),
		zap.Int64("messages", removed),
	)
	return removed, nil
}

func (s *UserService) storeProfileImage(ctx context.Context, id uuid.UUID, image media.Upload) (string, error) {
	start := time.Now()

	file, err := image.Validate(s.maxImageBytes)
	if err != nil {
		logger.Log.Warn("Profile image rejected",
			zap.String("user_id", id.String()),
			zap.Int("size", len(image.Data)),
			zap.Error(err),
		)
		return "", err
	}

	url, err := s.uploader.Upload(ctx, media.FolderProfiles, file)
	if err != nil {
		logger.Log.Error("Failed to upload profile image", zap.String("user_id", id.String()), zap.Error(err))
		return "", fmt.Errorf("upload profile image: %w", err)
	}

	if err := s.userRepo.UpdateFields(id, map[string]interface{}{"profile_image": url}); err != nil {
		logger.Log.Error("Failed to store profile image url", zap.String("user_id", id.String()), zap.Error(err))
		return "", err
	}

	logger.Log.Info("Profile image stored",
		zap.String("user_id", id.String()),
		zap.Duration("duration", time.Since(start)),
	)
	return url, nil
}
