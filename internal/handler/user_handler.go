package handler

import (
	"net/http"
	"strconv"
	"synapo/backend/internal/models"
	"synapo/backend/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler serves user profiles, interest selection, friend
// recommendations and account deletion.
type UserHandler struct {
	DB        *gorm.DB
	Social    *service.SocialService
	Recommend *service.RecommendService
}

// region --- DTOs ---

// UserResponse defines the structure for a user's public profile.
type UserResponse struct {
	ID        uint     `json:"id" example:"1"`
	FullName  string   `json:"full_name" example:"Jordan Reyes"`
	Gender    string   `json:"gender,omitempty"`
	Age       int      `json:"age,omitempty"`
	Location  string   `json:"location,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// InterestsInput defines the structure for replacing a user's interests.
type InterestsInput struct {
	InterestIDs []uint `json:"interest_ids" binding:"required"`
}

func newUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		FullName: user.FullName,
		Gender:   user.Gender,
		Age:      user.Age,
		Location: user.Location,
		Bio:      user.Bio,
	}
}

// endregion

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by name with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for name"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[UserResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	page, limit := pageParams(c)

	query := h.DB.Model(&models.User{}).Where("id <> ?", viewerID)
	if q := c.Query("q"); q != "" {
		query = query.Where("LOWER(full_name) LIKE LOWER(?)", "%"+q+"%")
	}

	result, err := Paginate[models.User](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	responses := make([]UserResponse, 0, len(result.Data))
	for _, user := range result.Data {
		responses = append(responses, newUserResponse(user))
	}

	c.JSON(http.StatusOK, PaginatedResponse[UserResponse]{Data: responses, Meta: result.Meta})
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the profile for a specific user, including their interests.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.DB.First(&user, uint(userID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var interests []string
	h.DB.Table("user_interests AS ui").
		Joins("JOIN interests i ON ui.interest_id = i.id").
		Where("ui.user_id = ?", user.ID).
		Pluck("i.name", &interests)

	response := newUserResponse(user)
	response.Interests = interests
	c.JSON(http.StatusOK, response)
}

// GetMe godoc
// @Summary      Get current user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := h.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var interests []string
	h.DB.Table("user_interests AS ui").
		Joins("JOIN interests i ON ui.interest_id = i.id").
		Where("ui.user_id = ?", user.ID).
		Pluck("i.name", &interests)

	response := newUserResponse(user)
	response.Interests = interests
	c.JSON(http.StatusOK, response)
}

// FriendRecommendations godoc
// @Summary      Friend recommendations
// @Description  Ranks other users by shared interests, excluding existing friends. An unknown user id yields an empty list.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {array}   service.FriendRecommendation
// @Failure      400  {object}  ErrorResponse
// @Router       /users/{id}/recommendations [get]
func (h *UserHandler) FriendRecommendations(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	recs, err := h.Recommend.FriendRecommendations(uint(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// UpdateInterests godoc
// @Summary      Replace the caller's interests
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body InterestsInput true "Interest IDs"
// @Success      200  {object}  map[string]string "{"message": "Interests updated"}"
// @Failure      400  {object}  ErrorResponse
// @Router       /users/me/interests [put]
func (h *UserHandler) UpdateInterests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input InterestsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var known int64
	if err := h.DB.Model(&models.Interest{}).Where("id IN ?", input.InterestIDs).Count(&known).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate interests"})
		return
	}
	if int(known) != len(input.InterestIDs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown interest ID"})
		return
	}

	// Replace the full set atomically
	tx := h.DB.Begin()
	if err := tx.Where("user_id = ?", viewerID).Delete(&models.UserInterest{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update interests"})
		return
	}
	for _, interestID := range input.InterestIDs {
		link := models.UserInterest{UserID: viewerID.(uint), InterestID: interestID}
		if err := tx.Create(&link).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update interests"})
			return
		}
	}
	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Interests updated"})
}

// ListInterests godoc
// @Summary      List the interest catalog
// @Tags         users
// @Produce      json
// @Success      200  {array}  models.Interest
// @Router       /interests [get]
func (h *UserHandler) ListInterests(c *gin.Context) {
	var interests []models.Interest
	if err := h.DB.Order("name ASC").Find(&interests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch interests"})
		return
	}
	c.JSON(http.StatusOK, interests)
}

// DeleteMe godoc
// @Summary      Delete the caller's account
// @Description  Removes the account and everything referencing it, atomically.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string "{"message": "Account deleted"}"
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	if err := h.Social.DeleteAccount(viewerID.(uint)); err != nil {
		respondError(c, err, "User not found", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
