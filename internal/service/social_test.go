package service_test

import (
	"testing"
	"time"

	"synapo/backend/internal/database"
	"synapo/backend/internal/models"
	"synapo/backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A second pooled connection would see a different empty in-memory DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// newEnforcingTestDB opens sqlite with foreign-key enforcement on, matching
// what postgres does in production.
func newEnforcingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=1"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, age int) models.User {
	t.Helper()
	user := models.User{FullName: name, Password: "secret-hash", Age: age, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createInterest(t *testing.T, db *gorm.DB, name string) models.Interest {
	t.Helper()
	interest := models.Interest{Name: name}
	require.NoError(t, db.Create(&interest).Error)
	return interest
}

func addInterest(t *testing.T, db *gorm.DB, userID, interestID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.UserInterest{UserID: userID, InterestID: interestID}).Error)
}

func TestCreateFriendship(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)

	detail, err := social.CreateFriendship(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, detail.User1ID)
	assert.Equal(t, bob.ID, detail.User2ID)
	assert.Contains(t, detail.ChatName, "Alice Chen")
	assert.Contains(t, detail.ChatName, "Bob Molina")

	// The chat row must exist and back the friendship
	var chat models.Chat
	require.NoError(t, db.First(&chat, detail.ChatID).Error)
	assert.Equal(t, detail.ChatName, chat.Name)

	// A second attempt conflicts in either order
	_, err = social.CreateFriendship(alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = social.CreateFriendship(bob.ID, alice.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	var count int64
	db.Model(&models.Friendship{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateFriendshipValidation(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)

	_, err := social.CreateFriendship(alice.ID, alice.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = social.CreateFriendship(alice.ID, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = social.CreateFriendship(999, alice.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// No partial writes survived the failures
	var chats int64
	db.Model(&models.Chat{}).Count(&chats)
	assert.EqualValues(t, 0, chats)
}

func TestSendFriendRequest(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)

	request, err := social.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, request.Status)
	assert.Equal(t, "Alice Chen", request.SenderName)
	assert.Equal(t, "Bob Molina", request.ReceiverName)

	// Same ordered pair conflicts while pending
	_, err = social.SendFriendRequest(alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	// The reverse direction is a separate in-flight request
	reverse, err := social.SendFriendRequest(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reverse.Status)

	var pending int64
	db.Model(&models.FriendRequest{}).Where("status = ?", models.StatusPending).Count(&pending)
	assert.EqualValues(t, 2, pending)
}

func TestSendFriendRequestToFriend(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)

	_, err := social.CreateFriendship(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = social.SendFriendRequest(alice.ID, bob.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = social.SendFriendRequest(bob.ID, alice.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = social.SendFriendRequest(alice.ID, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestResolveFriendRequestAccept(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)

	_, err := social.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	resolved, err := social.ResolveFriendRequest(alice.ID, bob.ID, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, resolved.Status)

	// Acceptance produced the friendship and its chat
	var friendship models.Friendship
	require.NoError(t, db.Where("user1_id = ? AND user2_id = ?", alice.ID, bob.ID).First(&friendship).Error)
	var chat models.Chat
	require.NoError(t, db.First(&chat, friendship.ChatID).Error)

	// No pending row is left; a second resolution finds nothing
	_, err = social.ResolveFriendRequest(alice.ID, bob.ID, models.StatusAccepted)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestResolveFriendRequestReject(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)

	_, err := social.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	resolved, err := social.ResolveFriendRequest(alice.ID, bob.ID, models.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, resolved.Status)

	// Rejection creates nothing
	var friendships int64
	db.Model(&models.Friendship{}).Count(&friendships)
	assert.EqualValues(t, 0, friendships)

	// The rejected row is terminal; a new request is a new row
	request, err := social.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.NotEqual(t, resolved.ID, request.ID)
}

func TestResolveFriendRequestRollsBackOnConflict(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)

	_, err := social.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	// The pair becomes friends through another path before acceptance
	_, err = social.CreateFriendship(bob.ID, alice.ID)
	require.NoError(t, err)

	_, err = social.ResolveFriendRequest(alice.ID, bob.ID, models.StatusAccepted)
	assert.ErrorIs(t, err, service.ErrConflict)

	// The status update rolled back with the failed friendship insert
	var request models.FriendRequest
	require.NoError(t, db.Where("sender_id = ? AND receiver_id = ?", alice.ID, bob.ID).First(&request).Error)
	assert.Equal(t, models.StatusPending, request.Status)
}

func TestResolveFriendRequestInvalidDecision(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)

	_, err := social.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = social.ResolveFriendRequest(alice.ID, bob.ID, models.StatusPending)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrNotFound)
}

func TestGroupMembership(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)
	hiking := createInterest(t, db, "Hiking")

	group, err := social.CreateGroup("Trail Crew", alice.ID, hiking.ID)
	require.NoError(t, err)

	// The founder joined on creation
	err = social.AddMember(alice.ID, group.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	require.NoError(t, social.AddMember(bob.ID, group.ID))
	err = social.AddMember(bob.ID, group.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	assert.ErrorIs(t, social.AddMember(999, group.ID), service.ErrNotFound)
	assert.ErrorIs(t, social.AddMember(bob.ID, 999), service.ErrNotFound)

	require.NoError(t, social.RemoveMember(group.ID, bob.ID))
	assert.ErrorIs(t, social.RemoveMember(group.ID, bob.ID), service.ErrNotFound)
	assert.ErrorIs(t, social.RemoveMember(999, bob.ID), service.ErrNotFound)
}

func TestCreateGroup(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	hiking := createInterest(t, db, "Hiking")

	group, err := social.CreateGroup("Trail Crew", alice.ID, hiking.ID)
	require.NoError(t, err)

	var chat models.Chat
	require.NoError(t, db.First(&chat, group.ChatID).Error)

	var member models.GroupMember
	require.NoError(t, db.Where("group_id = ? AND user_id = ?", group.ID, alice.ID).First(&member).Error)

	_, err = social.CreateGroup("Orphans", alice.ID, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = social.CreateGroup("Orphans", 999, hiking.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	db := newTestDB(t)
	social := service.NewSocialService(db)
	chats := service.NewChatService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)
	carol := createUser(t, db, "Carol Diaz", 30)
	hiking := createInterest(t, db, "Hiking")
	addInterest(t, db, alice.ID, hiking.ID)

	// Friendship with chat and messages both ways
	friendship, err := social.CreateFriendship(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = chats.SendDirectMessage(alice.ID, bob.ID, "hi bob")
	require.NoError(t, err)
	_, err = chats.SendDirectMessage(bob.ID, alice.ID, "hi alice")
	require.NoError(t, err)

	// Requests in both roles
	_, err = social.SendFriendRequest(alice.ID, carol.ID)
	require.NoError(t, err)
	_, err = social.SendFriendRequest(carol.ID, alice.ID)
	require.NoError(t, err)

	// Group membership
	group, err := social.CreateGroup("Trail Crew", bob.ID, hiking.ID)
	require.NoError(t, err)
	require.NoError(t, social.AddMember(alice.ID, group.ID))

	require.NoError(t, social.DeleteAccount(alice.ID))

	var count int64
	db.Model(&models.User{}).Where("id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "user row")
	db.Model(&models.FriendRequest{}).Where("sender_id = ? OR receiver_id = ?", alice.ID, alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "friend requests")
	db.Model(&models.Message{}).Where("sender_id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "authored messages")
	db.Model(&models.UserInterest{}).Where("user_id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "interest links")
	db.Model(&models.Friendship{}).Where("user1_id = ? OR user2_id = ?", alice.ID, alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "friendships")
	db.Model(&models.Chat{}).Where("id = ?", friendship.ChatID).Count(&count)
	assert.EqualValues(t, 0, count, "orphaned chat")
	db.Model(&models.GroupMember{}).Where("user_id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "group memberships")

	// Everyone else is untouched
	var bobRow models.User
	require.NoError(t, db.First(&bobRow, bob.ID).Error)
	db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	assert.ErrorIs(t, social.DeleteAccount(alice.ID), service.ErrNotFound)
}

func TestDeleteAccountUnderForeignKeys(t *testing.T) {
	db := newEnforcingTestDB(t)
	social := service.NewSocialService(db)
	chats := service.NewChatService(db)

	alice := createUser(t, db, "Alice Chen", 25)
	bob := createUser(t, db, "Bob Molina", 27)
	hiking := createInterest(t, db, "Hiking")

	// Friendship where the other party replied
	friendship, err := social.CreateFriendship(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = chats.SendDirectMessage(bob.ID, alice.ID, "hi alice")
	require.NoError(t, err)

	// A group Alice founded, with an event and a member who posted
	founded, err := social.CreateGroup("Trail Crew", alice.ID, hiking.ID)
	require.NoError(t, err)
	require.NoError(t, social.AddMember(bob.ID, founded.ID))
	require.NoError(t, db.Create(&models.Event{
		Name: "Saturday trail walk", GroupID: founded.ID, CreatedByID: alice.ID,
	}).Error)
	_, err = chats.SendGroupMessage(founded.ID, bob.ID, "see you there")
	require.NoError(t, err)

	// A group Alice only joined, where she posted and announced an event
	joined, err := social.CreateGroup("Chess Club", bob.ID, hiking.ID)
	require.NoError(t, err)
	require.NoError(t, social.AddMember(alice.ID, joined.ID))
	_, err = chats.SendGroupMessage(joined.ID, alice.ID, "anyone up for a game")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Event{
		Name: "Blitz night", GroupID: joined.ID, CreatedByID: alice.ID,
	}).Error)

	require.NoError(t, social.DeleteAccount(alice.ID))

	var count int64
	db.Model(&models.User{}).Where("id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "user row")

	// The direct chat and everything in it is gone, Bob's reply included
	db.Model(&models.Chat{}).Where("id = ?", friendship.ChatID).Count(&count)
	assert.EqualValues(t, 0, count, "direct chat")
	db.Model(&models.Message{}).Where("chat_id = ?", friendship.ChatID).Count(&count)
	assert.EqualValues(t, 0, count, "direct messages")

	// The founded group disappeared entirely
	db.Model(&models.Group{}).Where("id = ?", founded.ID).Count(&count)
	assert.EqualValues(t, 0, count, "founded group")
	db.Model(&models.Chat{}).Where("id = ?", founded.ChatID).Count(&count)
	assert.EqualValues(t, 0, count, "founded group chat")
	db.Model(&models.Message{}).Where("chat_id = ?", founded.ChatID).Count(&count)
	assert.EqualValues(t, 0, count, "founded group messages")
	db.Model(&models.Event{}).Where("group_id = ?", founded.ID).Count(&count)
	assert.EqualValues(t, 0, count, "founded group events")
	db.Model(&models.GroupMember{}).Where("group_id = ?", founded.ID).Count(&count)
	assert.EqualValues(t, 0, count, "founded group memberships")

	// The joined group survives, minus Alice's traces
	var chessClub models.Group
	require.NoError(t, db.First(&chessClub, joined.ID).Error)
	db.Model(&models.Message{}).Where("chat_id = ? AND sender_id = ?", joined.ChatID, alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "authored messages in surviving chat")
	db.Model(&models.Event{}).Where("created_by_id = ?", alice.ID).Count(&count)
	assert.EqualValues(t, 0, count, "announced events")
	db.Model(&models.GroupMember{}).Where("group_id = ?", joined.ID).Count(&count)
	assert.EqualValues(t, 1, count, "remaining member")

	var bobRow models.User
	require.NoError(t, db.First(&bobRow, bob.ID).Error)
}
