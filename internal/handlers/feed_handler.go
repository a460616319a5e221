package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/internal/repositories"
)

// FeedHandler serves the friend feed: feedback written by the caller's
// accepted friends, newest first.
type FeedHandler struct {
	feedbackRepository   repositories.FeedbackRepository
	friendshipRepository repositories.FriendshipRepository
	userRepository       repositories.UserRepository // To embed author info
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedbackRepo repositories.FeedbackRepository, friendshipRepo repositories.FriendshipRepository, userRepo repositories.UserRepository) *FeedHandler {
	return &FeedHandler{
		feedbackRepository:   feedbackRepo,
		friendshipRepository: friendshipRepo,
		userRepository:       userRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFriendFeed)
}

// GetFriendFeed retrieves paginated feedback authored by the authenticated
// user's friends. A user with no friends gets an empty feed, not an error.
func (h *FeedHandler) GetFriendFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	friends, err := h.friendshipRepository.GetUserFriends(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	friendIDs := make([]uint, len(friends))
	for i := range friends {
		friendIDs[i] = friends[i].ID
	}

	var items []models.Feedback
	if len(friendIDs) > 0 {
		items, err = h.feedbackRepository.GetFeedbackByUserIDs(
			c.Request().Context(), friendIDs, int64((page-1)*limit), int64(limit))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"items": enrichFeedback(h.userRepository, items),
		"page":  page,
		"limit": limit,
	})
}
