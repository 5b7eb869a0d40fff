package handler

import (
	"net/http"
	"strconv"
	"synapo/backend/internal/models"
	"synapo/backend/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GroupHandler serves group listings, membership changes, events and
// group-level recommendations.
type GroupHandler struct {
	DB        *gorm.DB
	Social    *service.SocialService
	Recommend *service.RecommendService
}

// region --- DTOs ---

// GroupInput defines the structure for creating a group.
type GroupInput struct {
	Name       string `json:"name" binding:"required" example:"Chicago Hikers"`
	InterestID uint   `json:"interest_id" binding:"required"`
}

// EventInput defines the structure for announcing a group event.
type EventInput struct {
	Name string `json:"name" binding:"required" example:"Saturday trail walk"`
}

// GroupResponse defines the structure for a group with its member count.
type GroupResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedByID uint      `json:"created_by"`
	InterestID  uint      `json:"interest_id"`
	ChatID      uint      `json:"chat_id"`
	MemberCount int       `json:"member_count"`
	IsMember    bool      `json:"is_member,omitempty"`
}

// MemberResponse defines the structure for a group member entry.
type MemberResponse struct {
	UserID   uint      `json:"user_id"`
	FullName string    `json:"full_name"`
	Location string    `json:"location,omitempty"`
	Bio      string    `json:"bio,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// EventResponse defines the structure for a group event entry.
type EventResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	GroupID     uint   `json:"group_id"`
	CreatedByID uint   `json:"created_by"`
	CreatorName string `json:"creator_name"`
}

// endregion

// groupQuery selects groups joined with their member counts.
func (h *GroupHandler) groupQuery() *gorm.DB {
	return h.DB.Table("groups AS g").
		Select("g.id, g.name, g.created_at, g.created_by_id, g.interest_id, g.chat_id, "+
			"COUNT(gm.user_id) AS member_count").
		Joins("LEFT JOIN group_members gm ON g.id = gm.group_id").
		Group("g.id, g.name, g.created_at, g.created_by_id, g.interest_id, g.chat_id")
}

// ListGroups godoc
// @Summary      List all groups
// @Description  Returns every group with its member count. No authentication required.
// @Tags         groups
// @Produce      json
// @Success      200  {array}   GroupResponse
// @Router       /groups [get]
func (h *GroupHandler) ListGroups(c *gin.Context) {
	var groups []GroupResponse
	if err := h.groupQuery().Order("g.id ASC").Scan(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

// SearchGroups godoc
// @Summary      Search for groups
// @Description  Searches groups by name. With a token, groups the caller belongs to are flagged.
// @Tags         groups
// @Produce      json
// @Param        q query string false "Search query for group name"
// @Success      200  {array}   GroupResponse
// @Router       /groups/search [get]
func (h *GroupHandler) SearchGroups(c *gin.Context) {
	// Anonymous viewers get is_member = false everywhere
	viewerID := uint(0)
	if v, ok := c.Get("userID"); ok {
		viewerID = v.(uint)
	}

	query := h.DB.Table("groups AS g").
		Select("g.id, g.name, g.created_at, g.created_by_id, g.interest_id, g.chat_id, "+
			"COUNT(gm.user_id) AS member_count, "+
			"CASE WHEN EXISTS (SELECT 1 FROM group_members WHERE group_id = g.id AND user_id = ?) "+
			"THEN TRUE ELSE FALSE END AS is_member", viewerID).
		Joins("LEFT JOIN group_members gm ON g.id = gm.group_id").
		Group("g.id, g.name, g.created_at, g.created_by_id, g.interest_id, g.chat_id")

	if q := c.Query("q"); q != "" {
		query = query.Where("LOWER(g.name) LIKE LOWER(?)", "%"+q+"%")
	}

	var groups []GroupResponse
	if err := query.Order("g.name ASC").Scan(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search groups"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GetGroupByID godoc
// @Summary      Get a group by ID
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} GroupResponse
// @Failure      404 {object} ErrorResponse "Group not found"
// @Router       /groups/{id} [get]
func (h *GroupHandler) GetGroupByID(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group GroupResponse
	result := h.groupQuery().Where("g.id = ?", uint(groupID)).Scan(&group)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}
	c.JSON(http.StatusOK, group)
}

// CreateGroup godoc
// @Summary      Create a group
// @Description  Creates a group with its chat, making the caller the first member.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GroupInput true "Group Info"
// @Success      201  {object}  service.GroupDetail
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Interest not found"
// @Router       /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.Social.CreateGroup(input.Name, viewerID.(uint), input.InterestID)
	if err != nil {
		respondError(c, err, "Interest not found", "")
		return
	}
	c.JSON(http.StatusCreated, group)
}

// GroupMembers godoc
// @Summary      List members of a group
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {array} MemberResponse
// @Failure      404 {object} ErrorResponse "Group not found"
// @Router       /groups/{id}/members [get]
func (h *GroupHandler) GroupMembers(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := h.DB.First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var members []MemberResponse
	err = h.DB.Table("group_members AS gm").
		Select("u.id AS user_id, u.full_name, u.location, u.bio, gm.joined_at").
		Joins("JOIN users u ON gm.user_id = u.id").
		Where("gm.group_id = ?", group.ID).
		Order("gm.joined_at DESC").
		Scan(&members).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	c.JSON(http.StatusOK, members)
}

// GroupEvents godoc
// @Summary      List events of a group
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {array} EventResponse
// @Failure      404 {object} ErrorResponse "Group not found"
// @Router       /groups/{id}/events [get]
func (h *GroupHandler) GroupEvents(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := h.DB.First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var events []EventResponse
	err = h.DB.Table("events AS e").
		Select("e.id, e.name, e.group_id, e.created_by_id, u.full_name AS creator_name").
		Joins("JOIN users u ON e.created_by_id = u.id").
		Where("e.group_id = ?", group.ID).
		Order("e.id DESC").
		Scan(&events).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// CreateEvent godoc
// @Summary      Announce a group event
// @Description  Creates an event in a group. Only members may announce events.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int        true "Group ID"
// @Param        input body EventInput true "Event Info"
// @Success      201 {object} EventResponse
// @Failure      404 {object} ErrorResponse "Group not found"
// @Failure      409 {object} ErrorResponse "Caller is not a member"
// @Router       /groups/{id}/events [post]
func (h *GroupHandler) CreateEvent(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var input EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var group models.Group
	if err := h.DB.First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var member int64
	h.DB.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", group.ID, viewerID).
		Count(&member)
	if member == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Only members can announce events"})
		return
	}

	event := models.Event{Name: input.Name, GroupID: group.ID, CreatedByID: viewerID.(uint)}
	if err := h.DB.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	var creator models.User
	h.DB.First(&creator, viewerID.(uint))
	c.JSON(http.StatusCreated, EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		GroupID:     event.GroupID,
		CreatedByID: event.CreatedByID,
		CreatorName: creator.FullName,
	})
}

// JoinGroup godoc
// @Summary      Join a group
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {object} map[string]string "{"message": "Joined group successfully"}"
// @Failure      404 {object} ErrorResponse "Group not found"
// @Failure      409 {object} ErrorResponse "Already a member"
// @Router       /groups/{id}/join [post]
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	if err := h.Social.AddMember(viewerID.(uint), uint(groupID)); err != nil {
		respondError(c, err, "Group not found", "Already a member of this group")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined group successfully"})
}

// LeaveGroup godoc
// @Summary      Leave a group
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {object} map[string]string "{"message": "Left group successfully"}"
// @Failure      404 {object} ErrorResponse "Group or membership not found"
// @Router       /groups/{id}/leave [post]
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	if err := h.Social.RemoveMember(uint(groupID), viewerID.(uint)); err != nil {
		respondError(c, err, "Group or membership not found", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Left group successfully"})
}

// UserGroups godoc
// @Summary      List the groups a user belongs to
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {array} GroupResponse
// @Router       /users/{id}/groups [get]
func (h *GroupHandler) UserGroups(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var groups []GroupResponse
	err = h.DB.Table("groups AS g").
		Select("g.id, g.name, g.created_at, g.created_by_id, g.interest_id, g.chat_id, "+
			"COUNT(gm2.user_id) AS member_count").
		Joins("JOIN group_members gm ON g.id = gm.group_id AND gm.user_id = ?", uint(userID)).
		Joins("LEFT JOIN group_members gm2 ON g.id = gm2.group_id").
		Group("g.id, g.name, g.created_at, g.created_by_id, g.interest_id, g.chat_id").
		Order("g.created_at DESC").
		Scan(&groups).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GroupRecommendations godoc
// @Summary      Group recommendations
// @Description  Ranks groups matching the caller's interests by member count; groups already joined are excluded. An unknown user simply gets an empty list.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        extended query bool false "Also rank by message and event activity (cap 10 instead of 15)"
// @Success      200 {array} service.GroupRecommendation
// @Router       /groups/recommendations [get]
func (h *GroupHandler) GroupRecommendations(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	extended := c.Query("extended") == "true"

	recs, err := h.Recommend.GroupRecommendations(viewerID.(uint), extended)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// ActiveGroups godoc
// @Summary      Most active groups
// @Description  Globally ranks groups by combined message and event volume. With mine=true, ranks only the caller's groups by messages from the last 7 days.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        mine query bool false "Restrict to the caller's own groups"
// @Success      200 {array} service.ActiveGroup
// @Router       /groups/active [get]
func (h *GroupHandler) ActiveGroups(c *gin.Context) {
	if c.Query("mine") == "true" {
		viewerID, _ := c.Get("userID")
		since := time.Now().AddDate(0, 0, -7)
		groups, err := h.Recommend.ActiveGroupsForUser(viewerID.(uint), since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active groups"})
			return
		}
		c.JSON(http.StatusOK, groups)
		return
	}

	groups, err := h.Recommend.ActiveGroups()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active groups"})
		return
	}
	c.JSON(http.StatusOK, groups)
}
