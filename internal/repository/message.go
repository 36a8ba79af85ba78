package repository

import (
	"context"

	"tradepost/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByPurchase(ctx context.Context, purchaseID uint) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Omit("Sender").Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) ListByPurchase(ctx context.Context, purchaseID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("purchase_id = ?", purchaseID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}
