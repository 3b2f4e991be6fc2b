package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pocket-organizer/internal/events"
	"pocket-organizer/internal/model"
)

// ChatRepository is the registry of chats that receive scheduled digests.
type ChatRepository struct {
	db     *gorm.DB
	broker *events.Broker
}

func NewChatRepository(db *gorm.DB, broker *events.Broker) *ChatRepository {
	return &ChatRepository{db: db, broker: broker}
}

// Register records a chat on first contact. Registering a known chat is a
// no-op, so callers can register on every incoming message.
func (r *ChatRepository) Register(ctx context.Context, chatID int64) error {
	var chat model.Chat
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&chat).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		chat = model.Chat{ChatID: chatID}
		if err := r.db.WithContext(ctx).Create(&chat).Error; err != nil {
			return persistErr("register chat", err)
		}
		r.broker.Publish(events.Event{Entity: "chat", Op: events.OpInsert, ID: chat.ID})
		return nil
	default:
		return fmt.Errorf("find chat: %w", err)
	}
}

// List returns every registered chat id in registration order.
func (r *ChatRepository) List(ctx context.Context) ([]int64, error) {
	var chats []model.Chat
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	ids := make([]int64, len(chats))
	for i, c := range chats {
		ids[i] = c.ChatID
	}
	return ids, nil
}
