package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/internal/realtime"
	"github.com/ratewell/backend/internal/repositories"
	"gorm.io/gorm"
)

// FriendshipHandler handles HTTP requests related to friendships. Writes
// that concern another user push a notification into that user's mailbox
// after the database write commits.
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
	userRepository       repositories.UserRepository // To fetch names for notification titles
	store                *realtime.Store
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipRepo repositories.FriendshipRepository, userRepo repositories.UserRepository, store *realtime.Store) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipRepository: friendshipRepo,
		userRepository:       userRepo,
		store:                store,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friends/request", h.SendFriendRequest)
	g.GET("/friends/requests/pending", h.GetPendingFriendRequests)
	g.PUT("/friends/request/:id/status", h.UpdateFriendRequestStatus)
	g.GET("/friends", h.GetFriends)
	g.DELETE("/friends/:id", h.DeleteFriend) // Unfriend
}

// SendFriendRequest handles sending a friend request
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if currentUserID == req.AddresseeID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot send a friend request to yourself")
	}

	requester, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}

	// Check if addressee exists
	if _, err := h.userRepository.GetUserByID(req.AddresseeID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Addressee user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// An already accepted friendship between the pair cannot be re-requested
	if existing, err := h.friendshipRepository.GetFriendshipBetween(currentUserID, req.AddresseeID); err == nil {
		if existing.Status == models.FriendshipAccepted {
			return echo.NewHTTPError(http.StatusConflict, "Users are already friends")
		}
	}

	friendship, err := h.friendshipRepository.UpsertFriendRequest(currentUserID, req.AddresseeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.store.Push(req.AddresseeID, realtime.NotificationInput{
		Type:        realtime.NotificationFriendRequest,
		Title:       fmt.Sprintf("%s sent you a friend request", requester.Name),
		Href:        "/friends/requests",
		ActorUserID: requester.ID,
		EntityID:    strconv.FormatUint(uint64(friendship.ID), 10),
	})

	return c.JSON(http.StatusCreated, friendship)
}

// GetPendingFriendRequests retrieves pending friend requests for the
// authenticated user. direction=outgoing lists the ones they sent; the
// default lists the ones addressed to them.
func (h *FriendshipHandler) GetPendingFriendRequests(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var (
		requests []models.Friendship
		err      error
	)
	if c.QueryParam("direction") == "outgoing" {
		requests, err = h.friendshipRepository.GetPendingOutgoing(currentUserID)
	} else {
		requests, err = h.friendshipRepository.GetPendingIncoming(currentUserID)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, requests)
}

// UpdateFriendRequestStatus updates the status of a friend request
// (accept/reject). Only the addressee may respond.
func (h *FriendshipHandler) UpdateFriendRequestStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	var req models.RespondFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	friendship, err := h.friendshipRepository.GetFriendshipByID(uint(requestID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Friend request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Ensure the authenticated user is the addressee of the request
	if friendship.AddresseeID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this friend request")
	}

	if friendship.Status != models.FriendshipPending {
		return echo.NewHTTPError(http.StatusConflict, "Friend request has already been responded to")
	}

	updated, err := h.friendshipRepository.UpdateStatus(uint(requestID), req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Status == models.FriendshipAccepted {
		addressee, err := h.userRepository.GetUserByID(currentUserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
		}
		h.store.Push(updated.RequesterID, realtime.NotificationInput{
			Type:        realtime.NotificationFriendAccept,
			Title:       fmt.Sprintf("%s accepted your friend request", addressee.Name),
			Href:        "/friends",
			ActorUserID: addressee.ID,
			EntityID:    strconv.FormatUint(uint64(updated.ID), 10),
		})
	}

	return c.JSON(http.StatusOK, updated)
}

// GetFriends retrieves the list of accepted friends for the authenticated user
func (h *FriendshipHandler) GetFriends(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	friends, err := h.friendshipRepository.GetUserFriends(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	compact := make([]models.UserCompact, len(friends))
	for i := range friends {
		compact[i] = friends[i].ToCompact()
	}

	return c.JSON(http.StatusOK, compact)
}

// DeleteFriend handles unfriending (deleting the accepted friendship row)
func (h *FriendshipHandler) DeleteFriend(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	friendUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid friend user ID")
	}

	friendship, err := h.friendshipRepository.GetFriendshipBetween(currentUserID, uint(friendUserID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Friendship not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if friendship.Status != models.FriendshipAccepted {
		return echo.NewHTTPError(http.StatusBadRequest, "Users are not friends")
	}

	if err := h.friendshipRepository.DeleteFriendship(friendship.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
