package handler

import (
	"net/http"
	"strconv"
	"synapo/backend/internal/models"
	"synapo/backend/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FriendHandler serves the friend-request lifecycle and direct friendship
// creation.
type FriendHandler struct {
	DB     *gorm.DB
	Social *service.SocialService
}

// SendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  service.RequestDetail
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Already friends or request already pending"
// @Router       /users/{id}/request [post]
func (h *FriendHandler) SendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	request, err := h.Social.SendFriendRequest(viewerID.(uint), uint(targetID))
	if err != nil {
		respondError(c, err, "User not found", "Already friends or request already pending")
		return
	}
	c.JSON(http.StatusCreated, request)
}

// AcceptRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request, creating the friendship and its chat.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  service.RequestDetail
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Pending request not found"
// @Failure      409  {object}  ErrorResponse "Friendship already exists"
// @Router       /users/{id}/accept [post]
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	requesterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requesting user ID"})
		return
	}

	request, err := h.Social.ResolveFriendRequest(uint(requesterID), viewerID.(uint), models.StatusAccepted)
	if err != nil {
		respondError(c, err, "Pending request not found", "Friendship already exists")
		return
	}
	c.JSON(http.StatusOK, request)
}

// DeclineRequest godoc
// @Summary      Decline friend request
// @Description  Rejects a pending friend request. The request stays on record; a retry is a new request.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  service.RequestDetail
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Pending request not found"
// @Router       /users/{id}/decline [post]
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	requesterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requesting user ID"})
		return
	}

	request, err := h.Social.ResolveFriendRequest(uint(requesterID), viewerID.(uint), models.StatusRejected)
	if err != nil {
		respondError(c, err, "Pending request not found", "")
		return
	}
	c.JSON(http.StatusOK, request)
}

// AddFriend godoc
// @Summary      Create a friendship directly
// @Description  Links the caller with another user and creates the chat backing the friendship.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  service.FriendshipDetail
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Friendship already exists"
// @Router       /users/{id}/friend [post]
func (h *FriendHandler) AddFriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	friendship, err := h.Social.CreateFriendship(viewerID.(uint), uint(targetID))
	if err != nil {
		respondError(c, err, "User not found", "Friendship already exists")
		return
	}
	c.JSON(http.StatusCreated, friendship)
}

// ListRequests godoc
// @Summary      List the caller's friend requests
// @Description  Fetches requests by direction (incoming, outgoing) and optional status.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        direction query     string  true   "incoming or outgoing"
// @Param        status    query     string  false  "Filter by status (pending, accepted, rejected)"
// @Success      200       {array}   service.RequestDetail
// @Failure      400       {object}  ErrorResponse
// @Router       /users/me/requests [get]
func (h *FriendHandler) ListRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var requests []models.FriendRequest
	query := h.DB

	switch c.Query("direction") {
	case "incoming":
		query = query.Where("receiver_id = ?", viewerID).Preload("Sender").Preload("Receiver")
	case "outgoing":
		query = query.Where("sender_id = ?", viewerID).Preload("Sender").Preload("Receiver")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'direction' query parameter (incoming or outgoing) is required"})
		return
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("sent_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	details := make([]service.RequestDetail, 0, len(requests))
	for _, r := range requests {
		details = append(details, service.RequestDetail{
			ID:           r.ID,
			SenderID:     r.SenderID,
			SenderName:   r.Sender.FullName,
			ReceiverID:   r.ReceiverID,
			ReceiverName: r.Receiver.FullName,
			Status:       r.Status,
			SentAt:       r.SentAt,
		})
	}
	c.JSON(http.StatusOK, details)
}

// ListFriends godoc
// @Summary      List the caller's friends
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   UserResponse
// @Router       /users/me/friends [get]
func (h *FriendHandler) ListFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var friendships []models.Friendship
	err := h.DB.Where("user1_id = ? OR user2_id = ?", viewerID, viewerID).
		Preload("User1").Preload("User2").
		Find(&friendships).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friendships"})
		return
	}

	friends := make([]UserResponse, 0, len(friendships))
	for _, f := range friendships {
		// The other side of the pair is the friend
		if f.User1ID == viewerID.(uint) {
			friends = append(friends, newUserResponse(f.User2))
		} else {
			friends = append(friends, newUserResponse(f.User1))
		}
	}
	c.JSON(http.StatusOK, friends)
}
