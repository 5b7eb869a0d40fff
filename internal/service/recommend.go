package service

import (
	"time"

	"gorm.io/gorm"
)

// RecommendService computes friend and group suggestions from current graph
// state. It is read-only; all counts are aggregated at query time, never
// persisted. A user id that resolves to nothing simply yields an empty list.
type RecommendService struct {
	db *gorm.DB
}

// NewRecommendService creates a RecommendService backed by the given
// database handle.
func NewRecommendService(db *gorm.DB) *RecommendService {
	return &RecommendService{db: db}
}

// FriendRecommendation is a candidate user ranked by interest overlap.
type FriendRecommendation struct {
	CandidateID     uint   `json:"candidate_id"`
	CandidateName   string `json:"candidate_name"`
	CommonInterests int    `json:"common_interests"`
	AgeDifference   int    `json:"age_difference"`
}

// GroupRecommendation is a candidate group ranked by size and, in the
// extended variant, by activity.
type GroupRecommendation struct {
	GroupID      uint   `json:"group_id"`
	GroupName    string `json:"group_name"`
	MemberCount  int    `json:"member_count"`
	MessageCount int    `json:"message_count,omitempty"`
	EventCount   int    `json:"event_count,omitempty"`
}

// ActiveGroup is a group ranked by recent message/event volume.
type ActiveGroup struct {
	GroupID      uint   `json:"group_id"`
	GroupName    string `json:"group_name"`
	MemberCount  int    `json:"member_count,omitempty"`
	MessageCount int    `json:"message_count"`
	EventCount   int    `json:"event_count"`
}

// FriendRecommendations returns up to 15 users sharing at least one interest
// with the given user, excluding the user and anyone already their friend.
// Ordered by shared interests descending, then age difference ascending,
// with candidate id as the deterministic tie-break.
func (s *RecommendService) FriendRecommendations(userID uint) ([]FriendRecommendation, error) {
	var recs []FriendRecommendation
	err := s.db.Table("user_interests AS ui1").
		Select("ui2.user_id AS candidate_id, u2.full_name AS candidate_name, "+
			"COUNT(ui1.interest_id) AS common_interests, ABS(u1.age - u2.age) AS age_difference").
		Joins("JOIN user_interests ui2 ON ui1.interest_id = ui2.interest_id AND ui1.user_id <> ui2.user_id").
		Joins("JOIN users u1 ON ui1.user_id = u1.id").
		Joins("JOIN users u2 ON ui2.user_id = u2.id").
		Joins("LEFT JOIN friendships f ON (f.user1_id = ui1.user_id AND f.user2_id = ui2.user_id) "+
			"OR (f.user2_id = ui1.user_id AND f.user1_id = ui2.user_id)").
		Where("ui1.user_id = ? AND f.user1_id IS NULL", userID).
		Group("ui2.user_id, u2.full_name, u1.age, u2.age").
		Order("common_interests DESC, age_difference ASC, candidate_id ASC").
		Limit(15).
		Scan(&recs).Error
	if err != nil {
		return nil, storageErr("FriendRecommendations", err, userID)
	}
	return recs, nil
}

// GroupRecommendations returns groups whose topic matches one of the user's
// interests, excluding groups already joined. The basic variant ranks by
// member count alone (cap 15); the extended variant also counts messages and
// events as tie-breaks (cap 10).
//
// Messages hang off the group's chat while events link to the group id
// directly; the two joins use those different keys on purpose.
func (s *RecommendService) GroupRecommendations(userID uint, extended bool) ([]GroupRecommendation, error) {
	query := s.db.Table("groups AS g").
		Joins("JOIN user_interests ui ON g.interest_id = ui.interest_id").
		Joins("LEFT JOIN group_members gm ON g.id = gm.group_id").
		Where("ui.user_id = ?", userID).
		Where("g.id NOT IN (SELECT group_id FROM group_members WHERE user_id = ?)", userID).
		Group("g.id, g.name")

	if extended {
		query = query.
			Select("g.id AS group_id, g.name AS group_name, "+
				"COUNT(DISTINCT gm.user_id) AS member_count, "+
				"COUNT(DISTINCT m.id) AS message_count, "+
				"COUNT(DISTINCT e.id) AS event_count").
			Joins("LEFT JOIN messages m ON g.chat_id = m.chat_id").
			Joins("LEFT JOIN events e ON g.id = e.group_id").
			Order("member_count DESC, message_count DESC, event_count DESC, group_id ASC").
			Limit(10)
	} else {
		query = query.
			Select("g.id AS group_id, g.name AS group_name, COUNT(gm.user_id) AS member_count").
			Order("member_count DESC, group_id ASC").
			Limit(15)
	}

	var recs []GroupRecommendation
	if err := query.Scan(&recs).Error; err != nil {
		return nil, storageErr("GroupRecommendations", err, userID)
	}
	return recs, nil
}

// ActiveGroups returns the 10 most active groups across the whole network,
// ranked by combined message and event volume.
func (s *RecommendService) ActiveGroups() ([]ActiveGroup, error) {
	var groups []ActiveGroup
	err := s.db.Table("groups AS g").
		Select("g.id AS group_id, g.name AS group_name, "+
			"COUNT(DISTINCT m.id) AS message_count, COUNT(DISTINCT e.id) AS event_count").
		Joins("LEFT JOIN messages m ON g.chat_id = m.chat_id").
		Joins("LEFT JOIN events e ON g.id = e.group_id").
		Group("g.id, g.name").
		Order("(COUNT(DISTINCT m.id) + COUNT(DISTINCT e.id)) DESC, g.id ASC").
		Limit(10).
		Scan(&groups).Error
	if err != nil {
		return nil, storageErr("ActiveGroups", err)
	}
	return groups, nil
}

// ActiveGroupsForUser ranks the user's own groups by messages sent since the
// given cutoff, then by event count. Groups with no recent traffic still
// appear, with zero counts.
func (s *RecommendService) ActiveGroupsForUser(userID uint, since time.Time) ([]ActiveGroup, error) {
	var groups []ActiveGroup
	err := s.db.Table("groups AS g").
		Select("g.id AS group_id, g.name AS group_name, "+
			"COUNT(DISTINCT gm2.user_id) AS member_count, "+
			"COUNT(DISTINCT m.id) AS message_count, COUNT(DISTINCT e.id) AS event_count").
		Joins("JOIN group_members gm ON g.id = gm.group_id AND gm.user_id = ?", userID).
		Joins("LEFT JOIN group_members gm2 ON g.id = gm2.group_id").
		Joins("LEFT JOIN messages m ON g.chat_id = m.chat_id AND m.sent_at >= ?", since).
		Joins("LEFT JOIN events e ON g.id = e.group_id").
		Group("g.id, g.name").
		Order("message_count DESC, event_count DESC, group_id ASC").
		Limit(10).
		Scan(&groups).Error
	if err != nil {
		return nil, storageErr("ActiveGroupsForUser", err, userID)
	}
	return groups, nil
}
