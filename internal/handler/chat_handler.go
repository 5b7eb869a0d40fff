package handler

import (
	"net/http"
	"strconv"
	"synapo/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves direct and group messaging.
type ChatHandler struct {
	Chats *service.ChatService
}

// MessageInput defines the structure for sending a message.
type MessageInput struct {
	Text string `json:"text"`
}

// DirectMessages godoc
// @Summary      Get the chat history with another user
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Other User ID"
// @Success      200 {array} service.MessageDetail
// @Failure      404 {object} ErrorResponse "No chat exists between these users"
// @Router       /chats/direct/{id} [get]
func (h *ChatHandler) DirectMessages(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	otherID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	messages, err := h.Chats.DirectMessages(viewerID.(uint), uint(otherID))
	if err != nil {
		respondError(c, err, "No chat exists between these users", "")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendDirectMessage godoc
// @Summary      Message another user
// @Description  Appends a message to the chat with the target user, creating the friendship and chat first if none exists.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Receiver User ID"
// @Param        input body MessageInput true "Message"
// @Success      201 {object} service.MessageDetail
// @Failure      404 {object} ErrorResponse "Receiver not found"
// @Router       /chats/direct/{id} [post]
func (h *ChatHandler) SendDirectMessage(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	receiverID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.Chats.SendDirectMessage(viewerID.(uint), uint(receiverID), input.Text)
	if err != nil {
		respondError(c, err, "User not found", "Cannot message yourself")
		return
	}
	c.JSON(http.StatusCreated, message)
}

// GroupMessages godoc
// @Summary      Get a group's chat history
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {array} service.MessageDetail
// @Failure      404 {object} ErrorResponse "Group not found"
// @Router       /groups/{id}/messages [get]
func (h *ChatHandler) GroupMessages(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	messages, err := h.Chats.GroupMessages(uint(groupID))
	if err != nil {
		respondError(c, err, "Group not found", "")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendGroupMessage godoc
// @Summary      Message a group
// @Description  Appends a message to the group's chat. The text may be empty. Only members may post.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Group ID"
// @Param        input body MessageInput true "Message"
// @Success      201 {object} service.MessageDetail
// @Failure      404 {object} ErrorResponse "Group not found"
// @Failure      409 {object} ErrorResponse "Caller is not a member"
// @Router       /groups/{id}/messages [post]
func (h *ChatHandler) SendGroupMessage(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.Chats.SendGroupMessage(uint(groupID), viewerID.(uint), input.Text)
	if err != nil {
		respondError(c, err, "Group not found", "Only members can post to the group chat")
		return
	}
	c.JSON(http.StatusCreated, message)
}
