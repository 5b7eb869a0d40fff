package service

import (
	"errors"
	"fmt"
	"synapo/backend/internal/models"
	"time"

	"gorm.io/gorm"
)

// SocialService owns friendship creation, the friend-request lifecycle,
// group membership and the account-deletion cascade. Every multi-row write
// happens inside a single transaction; the store declares no foreign keys,
// so each operation re-checks existence and uniqueness before inserting.
type SocialService struct {
	db *gorm.DB
}

// NewSocialService creates a SocialService backed by the given database handle.
func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db}
}

// FriendshipDetail is a friendship joined with both user names and the chat
// backing it.
type FriendshipDetail struct {
	User1ID   uint   `json:"user1_id"`
	User2ID   uint   `json:"user2_id"`
	User1Name string `json:"user1_name"`
	User2Name string `json:"user2_name"`
	ChatID    uint   `json:"chat_id"`
	ChatName  string `json:"chat_name"`
}

// RequestDetail is a friend request joined with both user names.
type RequestDetail struct {
	ID           uint                 `json:"id"`
	SenderID     uint                 `json:"sender_id"`
	SenderName   string               `json:"sender_name"`
	ReceiverID   uint                 `json:"receiver_id"`
	ReceiverName string               `json:"receiver_name"`
	Status       models.RequestStatus `json:"status"`
	SentAt       time.Time            `json:"sent_at"`
}

// GroupDetail is a freshly created group joined with its chat.
type GroupDetail struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	InterestID uint   `json:"interest_id"`
	ChatID     uint   `json:"chat_id"`
	ChatName   string `json:"chat_name"`
}

// CreateFriendship links two users and creates the chat backing the
// friendship, atomically. A pair can be friends at most once, checked in
// both orders.
func (s *SocialService) CreateFriendship(userA, userB uint) (*FriendshipDetail, error) {
	if userA == userB {
		return nil, ErrConflict
	}

	a, err := s.getUser(userA)
	if err != nil {
		return nil, err
	}
	b, err := s.getUser(userB)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	detail, err := createFriendshipTx(tx, a, b)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, storageErr("CreateFriendship commit", err, userA, userB)
	}
	return detail, nil
}

// createFriendshipTx inserts the chat and friendship rows on the supplied
// transaction handle. The uniqueness check runs here so callers composing a
// larger transaction get it too.
func createFriendshipTx(tx *gorm.DB, a, b models.User) (*FriendshipDetail, error) {
	existing, err := friendshipBetween(tx, a.ID, b.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	chat := models.Chat{Name: fmt.Sprintf("Chat between %s and %s", a.FullName, b.FullName)}
	if err := tx.Create(&chat).Error; err != nil {
		return nil, storageErr("CreateFriendship chat insert", err, a.ID, b.ID)
	}

	friendship := models.Friendship{
		User1ID:   a.ID,
		User2ID:   b.ID,
		ChatID:    chat.ID,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(&friendship).Error; err != nil {
		return nil, storageErr("CreateFriendship insert", err, a.ID, b.ID)
	}

	return &FriendshipDetail{
		User1ID:   a.ID,
		User2ID:   b.ID,
		User1Name: a.FullName,
		User2Name: b.FullName,
		ChatID:    chat.ID,
		ChatName:  chat.Name,
	}, nil
}

// SendFriendRequest inserts a pending request from sender to receiver. A
// pending request in the reverse direction does not conflict; it is a
// separate in-flight request.
func (s *SocialService) SendFriendRequest(senderID, receiverID uint) (*RequestDetail, error) {
	if senderID == receiverID {
		return nil, ErrConflict
	}

	sender, err := s.getUser(senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.getUser(receiverID)
	if err != nil {
		return nil, err
	}

	existing, err := friendshipBetween(s.db, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	var pending int64
	err = s.db.Model(&models.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.StatusPending).
		Count(&pending).Error
	if err != nil {
		return nil, storageErr("SendFriendRequest pending check", err, senderID, receiverID)
	}
	if pending > 0 {
		return nil, ErrConflict
	}

	request := models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.StatusPending,
		SentAt:     time.Now(),
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, storageErr("SendFriendRequest insert", err, senderID, receiverID)
	}

	return &RequestDetail{
		ID:           request.ID,
		SenderID:     senderID,
		SenderName:   sender.FullName,
		ReceiverID:   receiverID,
		ReceiverName: receiver.FullName,
		Status:       request.Status,
		SentAt:       request.SentAt,
	}, nil
}

// ResolveFriendRequest moves the pending request for the ordered
// (sender, receiver) pair into a terminal state. Acceptance creates the
// friendship and its chat in the same transaction; if that cannot happen the
// status update rolls back too.
func (s *SocialService) ResolveFriendRequest(senderID, receiverID uint, decision models.RequestStatus) (*RequestDetail, error) {
	if decision != models.StatusAccepted && decision != models.StatusRejected {
		return nil, fmt.Errorf("invalid decision %q", decision)
	}

	var request models.FriendRequest
	err := s.db.Where("sender_id = ? AND receiver_id = ? AND status = ?",
		senderID, receiverID, models.StatusPending).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("ResolveFriendRequest lookup", err, senderID, receiverID)
	}

	sender, err := s.getUser(senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.getUser(receiverID)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if err := tx.Model(&request).Update("status", decision).Error; err != nil {
		tx.Rollback()
		return nil, storageErr("ResolveFriendRequest update", err, senderID, receiverID)
	}

	if decision == models.StatusAccepted {
		if _, err := createFriendshipTx(tx, sender, receiver); err != nil {
			tx.Rollback()
			if errors.Is(err, ErrConflict) {
				return nil, ErrConflict
			}
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storageErr("ResolveFriendRequest commit", err, senderID, receiverID)
	}

	return &RequestDetail{
		ID:           request.ID,
		SenderID:     senderID,
		SenderName:   sender.FullName,
		ReceiverID:   receiverID,
		ReceiverName: receiver.FullName,
		Status:       decision,
		SentAt:       request.SentAt,
	}, nil
}

// AddMember inserts a group membership. Already-members conflict; missing
// users or groups are not found.
func (s *SocialService) AddMember(userID, groupID uint) error {
	var count int64
	err := s.db.Model(&models.GroupMember{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	if err != nil {
		return storageErr("AddMember membership check", err, userID, groupID)
	}
	if count > 0 {
		return ErrConflict
	}

	if _, err := s.getGroup(groupID); err != nil {
		return err
	}
	if _, err := s.getUser(userID); err != nil {
		return err
	}

	member := models.GroupMember{UserID: userID, GroupID: groupID, JoinedAt: time.Now()}
	if err := s.db.Create(&member).Error; err != nil {
		return storageErr("AddMember insert", err, userID, groupID)
	}
	return nil
}

// RemoveMember deletes a group membership.
func (s *SocialService) RemoveMember(groupID, userID uint) error {
	if _, err := s.getGroup(groupID); err != nil {
		return err
	}

	result := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if result.Error != nil {
		return storageErr("RemoveMember delete", result.Error, groupID, userID)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateGroup creates a group, its chat and the founding membership in one
// transaction.
func (s *SocialService) CreateGroup(name string, createdByID, interestID uint) (*GroupDetail, error) {
	creator, err := s.getUser(createdByID)
	if err != nil {
		return nil, err
	}

	var interest models.Interest
	err = s.db.First(&interest, interestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("CreateGroup interest lookup", err, interestID)
	}

	tx := s.db.Begin()

	chat := models.Chat{Name: name}
	if err := tx.Create(&chat).Error; err != nil {
		tx.Rollback()
		return nil, storageErr("CreateGroup chat insert", err, createdByID)
	}

	group := models.Group{
		Name:        name,
		CreatedAt:   time.Now(),
		CreatedByID: creator.ID,
		InterestID:  interest.ID,
		ChatID:      chat.ID,
	}
	if err := tx.Create(&group).Error; err != nil {
		tx.Rollback()
		return nil, storageErr("CreateGroup insert", err, createdByID)
	}

	member := models.GroupMember{UserID: creator.ID, GroupID: group.ID, JoinedAt: time.Now()}
	if err := tx.Create(&member).Error; err != nil {
		tx.Rollback()
		return nil, storageErr("CreateGroup founder insert", err, createdByID, group.ID)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storageErr("CreateGroup commit", err, createdByID)
	}

	return &GroupDetail{
		ID:         group.ID,
		Name:       group.Name,
		InterestID: group.InterestID,
		ChatID:     chat.ID,
		ChatName:   chat.Name,
	}, nil
}

// DeleteAccount removes a user and everything that references them: friend
// requests, interest links, friendships and the chats those friendships
// owned, group memberships, groups the user founded (with their events,
// memberships and chats), events the user announced, and every message in a
// removed chat alongside the user's own messages elsewhere. Deletion order
// follows the foreign keys, child rows before the rows they reference, so
// the cascade also holds under an enforcing store. All of it commits or none
// of it does.
func (s *SocialService) DeleteAccount(userID uint) error {
	if _, err := s.getUser(userID); err != nil {
		return err
	}

	tx := s.db.Begin()

	if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.FriendRequest{}).Error; err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount requests", err, userID)
	}

	// The user's friendships own their chats; collect the chat ids before
	// the friendship rows disappear.
	var chatIDs []uint
	err := tx.Model(&models.Friendship{}).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Pluck("chat_id", &chatIDs).Error
	if err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount chat collect", err, userID)
	}

	// Groups the user founded go away entirely, their chats with them.
	var groupIDs []uint
	err = tx.Model(&models.Group{}).
		Where("created_by_id = ?", userID).
		Pluck("id", &groupIDs).Error
	if err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount group collect", err, userID)
	}
	if len(groupIDs) > 0 {
		var groupChatIDs []uint
		err = tx.Model(&models.Group{}).
			Where("id IN ?", groupIDs).
			Pluck("chat_id", &groupChatIDs).Error
		if err != nil {
			tx.Rollback()
			return storageErr("DeleteAccount group chat collect", err, userID)
		}
		chatIDs = append(chatIDs, groupChatIDs...)
	}

	if err := tx.Where("created_by_id = ? OR group_id IN ?", userID, groupIDs).
		Delete(&models.Event{}).Error; err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount events", err, userID)
	}

	// Every message in a removed chat goes, whoever sent it; the user's
	// messages in surviving group chats go too.
	if err := tx.Where("sender_id = ? OR chat_id IN ?", userID, chatIDs).
		Delete(&models.Message{}).Error; err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount messages", err, userID)
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.UserInterest{}).Error; err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount interests", err, userID)
	}

	if err := tx.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Delete(&models.Friendship{}).Error; err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount friendships", err, userID)
	}

	if err := tx.Where("user_id = ? OR group_id IN ?", userID, groupIDs).
		Delete(&models.GroupMember{}).Error; err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount memberships", err, userID)
	}

	if len(groupIDs) > 0 {
		if err := tx.Where("id IN ?", groupIDs).Delete(&models.Group{}).Error; err != nil {
			tx.Rollback()
			return storageErr("DeleteAccount groups", err, userID)
		}
	}

	if len(chatIDs) > 0 {
		if err := tx.Where("id IN ?", chatIDs).Delete(&models.Chat{}).Error; err != nil {
			tx.Rollback()
			return storageErr("DeleteAccount chats", err, userID)
		}
	}

	if err := tx.Delete(&models.User{}, userID).Error; err != nil {
		tx.Rollback()
		return storageErr("DeleteAccount user", err, userID)
	}

	if err := tx.Commit().Error; err != nil {
		return storageErr("DeleteAccount commit", err, userID)
	}
	return nil
}

// friendshipBetween returns the friendship row for the unordered pair, or
// nil if the pair has none.
func friendshipBetween(db *gorm.DB, a, b uint) (*models.Friendship, error) {
	var friendship models.Friendship
	err := db.Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)",
		a, b, b, a).First(&friendship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("friendship lookup", err, a, b)
	}
	return &friendship, nil
}

func (s *SocialService) getUser(id uint) (models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, storageErr("user lookup", err, id)
	}
	return user, nil
}

func (s *SocialService) getGroup(id uint) (models.Group, error) {
	var group models.Group
	err := s.db.First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return group, ErrNotFound
	}
	if err != nil {
		return group, storageErr("group lookup", err, id)
	}
	return group, nil
}
