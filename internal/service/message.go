package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/models"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/upload"
)

// MessageService stores and retrieves direct messages. Delivery is
// pull-based: clients re-request conversations, nothing is pushed.
type MessageService struct {
	db       *gorm.DB
	uploader upload.Uploader
}

func NewMessageService(db *gorm.DB, uploader upload.Uploader) *MessageService {
	return &MessageService{db: db, uploader: uploader}
}

// MessageDTO is the wire shape of a stored message.
type MessageDTO struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toMessageDTO(m models.Message) MessageDTO {
	return MessageDTO{ID: m.ID, SenderID: m.SenderID, ReceiverID: m.ReceiverID, Content: m.Content, Image: m.Image, CreatedAt: m.CreatedAt}
}

// ListContacts returns every user projection except the caller's.
func (s *MessageService) ListContacts(ctx context.Context, selfID string) ([]UserDTO, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id <> ?", selfID).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out, nil
}

// ListBetween returns the conversation of the unordered pair
// {selfID, otherID}, oldest first. Symmetric in argument order.
func (s *MessageService) ListBetween(ctx context.Context, selfID, otherID string) ([]MessageDTO, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			selfID, otherID, otherID, selfID).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageDTO(m))
	}
	return out, nil
}

// Send persists a message from selfID to otherID. An image payload is
// uploaded to object storage first; at least one of content and image
// must be present.
func (s *MessageService) Send(ctx context.Context, selfID, otherID, content, imagePayload string) (*MessageDTO, error) {
	if content == "" && imagePayload == "" {
		return nil, ErrEmptyMessage
	}
	imageURL := ""
	if imagePayload != "" {
		data, contentType, err := upload.DecodePayload(imagePayload)
		if err != nil {
			return nil, ErrEmptyMessage
		}
		imageURL, err = s.uploader.Upload(ctx, data, contentType, "chat-app/messages")
		if err != nil {
			return nil, err
		}
	}
	msg := models.Message{SenderID: selfID, ReceiverID: otherID, Content: content, Image: imageURL}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	dto := toMessageDTO(msg)
	return &dto, nil
}
