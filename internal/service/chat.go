package service

import (
	"synapo/backend/internal/models"
	"time"

	"gorm.io/gorm"
)

// ChatService resolves the chat channel backing a friendship or group and
// appends messages to it. Sending a direct message to a user without an
// existing friendship creates the friendship and its chat first, through the
// same transactional path friendship creation uses.
type ChatService struct {
	db *gorm.DB
}

// NewChatService creates a ChatService backed by the given database handle.
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

// MessageDetail is a message joined with its sender's name.
type MessageDetail struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	ChatID     uint      `json:"chat_id"`
	Text       string    `json:"text"`
	SentAt     time.Time `json:"sent_at"`
}

// SendDirectMessage appends a message to the chat between sender and
// receiver, establishing the friendship first if the pair has none.
func (s *ChatService) SendDirectMessage(senderID, receiverID uint, text string) (*MessageDetail, error) {
	if senderID == receiverID {
		return nil, ErrConflict
	}

	var sender, receiver models.User
	if err := s.db.First(&sender, senderID).Error; err != nil {
		return nil, notFoundOr("SendDirectMessage sender lookup", err, senderID)
	}
	if err := s.db.First(&receiver, receiverID).Error; err != nil {
		return nil, notFoundOr("SendDirectMessage receiver lookup", err, receiverID)
	}

	friendship, err := friendshipBetween(s.db, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()

	var chatID uint
	if friendship != nil {
		chatID = friendship.ChatID
	} else {
		detail, err := createFriendshipTx(tx, sender, receiver)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		chatID = detail.ChatID
	}

	message := models.Message{
		SenderID: senderID,
		ChatID:   chatID,
		Text:     text,
		SentAt:   time.Now(),
	}
	if err := tx.Create(&message).Error; err != nil {
		tx.Rollback()
		return nil, storageErr("SendDirectMessage insert", err, senderID, receiverID)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storageErr("SendDirectMessage commit", err, senderID, receiverID)
	}

	return &MessageDetail{
		ID:         message.ID,
		SenderID:   senderID,
		SenderName: sender.FullName,
		ChatID:     chatID,
		Text:       text,
		SentAt:     message.SentAt,
	}, nil
}

// SendGroupMessage appends a message to the group's chat. Only members may
// post; the text may be empty.
func (s *ChatService) SendGroupMessage(groupID, senderID uint, text string) (*MessageDetail, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return nil, notFoundOr("SendGroupMessage group lookup", err, groupID)
	}

	var sender models.User
	if err := s.db.First(&sender, senderID).Error; err != nil {
		return nil, notFoundOr("SendGroupMessage sender lookup", err, senderID)
	}

	var member int64
	err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, senderID).
		Count(&member).Error
	if err != nil {
		return nil, storageErr("SendGroupMessage membership check", err, groupID, senderID)
	}
	if member == 0 {
		return nil, ErrConflict
	}

	message := models.Message{
		SenderID: senderID,
		ChatID:   group.ChatID,
		Text:     text,
		SentAt:   time.Now(),
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, storageErr("SendGroupMessage insert", err, groupID, senderID)
	}

	return &MessageDetail{
		ID:         message.ID,
		SenderID:   senderID,
		SenderName: sender.FullName,
		ChatID:     group.ChatID,
		Text:       message.Text,
		SentAt:     message.SentAt,
	}, nil
}

// DirectMessages returns the full history of the chat between two users,
// oldest first. The pair must be friends.
func (s *ChatService) DirectMessages(userA, userB uint) ([]MessageDetail, error) {
	friendship, err := friendshipBetween(s.db, userA, userB)
	if err != nil {
		return nil, err
	}
	if friendship == nil {
		return nil, ErrNotFound
	}
	return s.chatMessages(friendship.ChatID)
}

// GroupMessages returns the full history of the group's chat, oldest first.
func (s *ChatService) GroupMessages(groupID uint) ([]MessageDetail, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		return nil, notFoundOr("GroupMessages group lookup", err, groupID)
	}
	return s.chatMessages(group.ChatID)
}

func (s *ChatService) chatMessages(chatID uint) ([]MessageDetail, error) {
	var messages []MessageDetail
	err := s.db.Table("messages AS m").
		Select("m.id, m.sender_id, u.full_name AS sender_name, m.chat_id, m.text, m.sent_at").
		Joins("JOIN users u ON m.sender_id = u.id").
		Where("m.chat_id = ?", chatID).
		Order("m.sent_at ASC, m.id ASC").
		Scan(&messages).Error
	if err != nil {
		return nil, storageErr("chat messages", err, chatID)
	}
	return messages, nil
}
