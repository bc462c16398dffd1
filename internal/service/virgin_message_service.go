package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/media"
	"github.com/JDamianDelgado/ValleDePaz/internal/models"
	"github.com/JDamianDelgado/ValleDePaz/internal/notification"
	"github.com/JDamianDelgado/ValleDePaz/internal/repository"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModerationOptions tunes the moderation workflow.
type ModerationOptions struct {
	MaxImageBytes     int64
	ResendOnReapprove bool
}

// FilteredMessages splits messages by moderation state.
type FilteredMessages struct {
	Aprobados  []models.VirginMessage `json:"aprobados"`
	Pendientes []models.VirginMessage `json:"pendientes"`
}

// VirginMessageUpdate lists the fields an edit may change. Nil fields are left alone.
// A new picture can only arrive as an upload, never as a raw URL.
type VirginMessageUpdate struct {
	Texto  *string       `json:"texto"`
	Imagen *media.Upload `json:"-"`
}

// PublicMessage is an approved message as shown on the public wall. The
// author is reduced to a display name.
type PublicMessage struct {
	ID               uuid.UUID `json:"id"`
	Texto            string    `json:"texto"`
	ImagenURL        *string   `json:"imagen_url,omitempty"`
	FechaPublicacion time.Time `json:"fecha_publicacion"`
	Autor            string    `json:"autor"`
}

type VirginMessageService struct {
	messageRepo *repository.VirginMessageRepository
	userRepo    *repository.UserRepository
	uploader    media.Uploader
	notifier    notification.Notifier
	opts        ModerationOptions
}

func NewVirginMessageService(
	messageRepo *repository.VirginMessageRepository,
	userRepo *repository.UserRepository,
	uploader media.Uploader,
	notifier notification.Notifier,
	opts ModerationOptions,
) *VirginMessageService {
	return &VirginMessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		uploader:    uploader,
		notifier:    notifier,
		opts:        opts,
	}
}

// List returns every message, newest first, with its author.
func (s *VirginMessageService) List(ctx context.Context) ([]models.VirginMessage, error) {
	messages, err := s.messageRepo.GetAll()
	if err != nil {
		logger.Log.Error("Failed to list messages", zap.Error(err))
		return nil, err
	}
	return messages, nil
}

// ListApproved returns the messages visible on the public wall.
func (s *VirginMessageService) ListApproved(ctx context.Context) ([]PublicMessage, error) {
	messages, err := s.messageRepo.GetByApproval(true)
	if err != nil {
		logger.Log.Error("Failed to list approved messages", zap.Error(err))
		return nil, err
	}

	wall := make([]PublicMessage, 0, len(messages))
	for _, m := range messages {
		author := ""
		if m.User != nil {
			author = m.User.DisplayName()
		}
		wall = append(wall, PublicMessage{
			ID:               m.ID,
			Texto:            m.Text,
			ImagenURL:        m.ImageURL,
			FechaPublicacion: m.PublishedAt,
			Autor:            author,
		})
	}
	return wall, nil
}

// Filter partitions all messages into approved and pending. An empty store
// yields two empty sets.
func (s *VirginMessageService) Filter(ctx context.Context) (*FilteredMessages, error) {
	messages, err := s.messageRepo.GetAll()
	if err != nil {
		logger.Log.Error("Failed to load messages for filtering", zap.Error(err))
		return nil, err
	}

	result := &FilteredMessages{
		Aprobados:  []models.VirginMessage{},
		Pendientes: []models.VirginMessage{},
	}
	for _, m := range messages {
		if m.Approved {
			result.Aprobados = append(result.Aprobados, m)
		} else {
			result.Pendientes = append(result.Pendientes, m)
		}
	}

	logger.Log.Debug("Messages filtered",
		zap.Int("approved", len(result.Aprobados)),
		zap.Int("pending", len(result.Pendientes)),
	)
	return result, nil
}

// UploadImage validates an attachment and stores it under the messages folder.
func (s *VirginMessageService) UploadImage(ctx context.Context, upload media.Upload) (string, error) {
	start := time.Now()

	file, err := upload.Validate(s.opts.MaxImageBytes)
	if err != nil {
		logger.Log.Warn("Message image rejected",
			zap.String("filename", upload.Name),
			zap.Int("size", len(upload.Data)),
			zap.Error(err),
		)
		return "", err
	}

	url, err := s.uploader.Upload(ctx, media.FolderMessages, file)
	if err != nil {
		logger.Log.Error("Failed to upload message image",
			zap.String("filename", upload.Name),
			zap.Error(err),
		)
		return "", fmt.Errorf("upload message image: %w", err)
	}

	logger.Log.Info("Message image uploaded",
		zap.String("url", url),
		zap.Duration("duration", time.Since(start)),
	)
	return url, nil
}

// Create stores a new pending message for userID and returns its id.
func (s *VirginMessageService) Create(ctx context.Context, userID uuid.UUID, text string, imageURL *string) (uuid.UUID, error) {
	logger.Log.Debug("Creating message", zap.String("user_id", userID.String()))

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		logger.Log.Error("Failed to look up message author",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return uuid.Nil, err
	}
	if user == nil {
		logger.Log.Warn("Message author not found", zap.String("user_id", userID.String()))
		return uuid.Nil, ErrUserNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logger.Log.Warn("Empty message text", zap.String("user_id", userID.String()))
		return uuid.Nil, ErrEmptyText
	}

	message := &models.VirginMessage{
		UserID:      user.ID,
		Text:        text,
		ImageURL:    imageURL,
		PublishedAt: time.Now(),
		Approved:    false,
	}
	if err := s.messageRepo.Create(message); err != nil {
		logger.Log.Error("Failed to store message",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return uuid.Nil, err
	}

	logger.Log.Info("Message submitted for moderation",
		zap.String("message_id", message.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("has_image", imageURL != nil),
	)
	return message.ID, nil
}

// Approve publishes a pending message and emails its author. The email is
// sent before the write, so a failed send leaves the message pending.
func (s *VirginMessageService) Approve(ctx context.Context, id uuid.UUID) (*models.VirginMessage, error) {
	start := time.Now()

	message, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if message.Approved {
		if !s.opts.ResendOnReapprove {
			logger.Log.Debug("Message already approved", zap.String("message_id", id.String()))
			return message, nil
		}
		if err := s.notifyApproval(ctx, message); err != nil {
			return nil, err
		}
		logger.Log.Info("Approval email re-sent", zap.String("message_id", id.String()))
		return message, nil
	}

	if err := s.notifyApproval(ctx, message); err != nil {
		return nil, err
	}

	if err := s.messageRepo.SetApproved(id); err != nil {
		logger.Log.Error("Failed to approve message",
			zap.String("message_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	message.Approved = true

	logger.Log.Info("Message approved",
		zap.String("message_id", id.String()),
		zap.String("user_id", message.UserID.String()),
		zap.Duration("duration", time.Since(start)),
	)
	return message, nil
}

// Reject emails the author and deletes the message.
func (s *VirginMessageService) Reject(ctx context.Context, id uuid.UUID) (string, error) {
	message, err := s.load(id)
	if err != nil {
		return "", err
	}

	owner, err := s.owner(message)
	if err != nil {
		return "", err
	}
	if err := s.notifier.SendRejection(ctx, owner.Email, owner.DisplayName()); err != nil {
		logger.Log.Error("Failed to send rejection email",
			zap.String("message_id", id.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("send rejection email: %w", err)
	}

	if err := s.messageRepo.Delete(id); err != nil {
		logger.Log.Error("Failed to delete message",
			zap.String("message_id", id.String()),
			zap.Error(err),
		)
		return "", err
	}

	logger.Log.Info("Message rejected and deleted",
		zap.String("message_id", id.String()),
		zap.String("user_id", message.UserID.String()),
	)
	return fmt.Sprintf("eliminado mensaje %s", id), nil
}

// Update edits a pending message. Only the author or an admin may do so.
// A new image is validated and uploaded only after those checks pass.
func (s *VirginMessageService) Update(ctx context.Context, id uuid.UUID, input VirginMessageUpdate, actor Actor) (uuid.UUID, error) {
	message, err := s.load(id)
	if err != nil {
		return uuid.Nil, err
	}

	if message.Approved {
		logger.Log.Warn("Attempt to edit approved message", zap.String("message_id", id.String()))
		return uuid.Nil, ErrApprovedMessageLocked
	}
	if !actor.CanModify(message.UserID) {
		logger.Log.Warn("Unauthorized message edit",
			zap.String("message_id", id.String()),
			zap.String("actor_id", actor.UserID.String()),
		)
		return uuid.Nil, ErrForbidden
	}

	fields := map[string]interface{}{}
	if input.Texto != nil {
		text := strings.TrimSpace(*input.Texto)
		if text == "" {
			return uuid.Nil, ErrEmptyText
		}
		fields["text"] = text
	}
	if input.Imagen != nil {
		url, err := s.UploadImage(ctx, *input.Imagen)
		if err != nil {
			return uuid.Nil, err
		}
		fields["image_url"] = url
	}

	if err := s.messageRepo.UpdateFields(id, fields); err != nil {
		logger.Log.Error("Failed to update message",
			zap.String("message_id", id.String()),
			zap.Error(err),
		)
		return uuid.Nil, err
	}

	logger.Log.Info("Message updated",
		zap.String("message_id", id.String()),
		zap.Int("fields", len(fields)),
	)
	return id, nil
}

func (s *VirginMessageService) load(id uuid.UUID) (*models.VirginMessage, error) {
	message, err := s.messageRepo.GetByID(id)
	if err != nil {
		logger.Log.Error("Failed to load message",
			zap.String("message_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}
	return message, nil
}

func (s *VirginMessageService) owner(message *models.VirginMessage) (*models.User, error) {
	if message.User != nil {
		return message.User, nil
	}
	user, err := s.userRepo.GetUserByID(message.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *VirginMessageService) notifyApproval(ctx context.Context, message *models.VirginMessage) error {
	owner, err := s.owner(message)
	if err != nil {
		return err
	}
	if err := s.notifier.SendApproval(ctx, owner.Email, owner.DisplayName()); err != nil {
		logger.Log.Error("Failed to send approval email",
			zap.String("message_id", message.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("send approval email: %w", err)
	}
	return nil
}
