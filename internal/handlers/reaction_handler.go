package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/internal/realtime"
	"github.com/ratewell/backend/internal/repositories"
	"gorm.io/gorm"
)

// ReactionHandler handles HTTP requests related to quick reactions on
// feedback. Every successful write recomputes the counts snapshot for the
// feedback item and broadcasts it on the reaction event bus.
type ReactionHandler struct {
	reactionRepository repositories.ReactionRepository
	feedbackRepository repositories.FeedbackRepository // To verify feedback exists and find its author
	bus                *realtime.Bus
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactionRepo repositories.ReactionRepository, feedbackRepo repositories.FeedbackRepository, bus *realtime.Bus) *ReactionHandler {
	return &ReactionHandler{
		reactionRepository: reactionRepo,
		feedbackRepository: feedbackRepo,
		bus:                bus,
	}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/feedback/:feedback_id/reactions", h.ToggleReaction)
	g.DELETE("/feedback/:feedback_id/reactions", h.RemoveReaction)
	g.GET("/feedback/:feedback_id/reactions", h.GetReactionCounts)
}

// ToggleReaction sets, changes or removes the caller's reaction. Posting the
// type the caller already holds removes it; any other type overwrites it.
func (h *ReactionHandler) ToggleReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	feedbackID := c.Param("feedback_id")

	var req models.CreateReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	feedback, err := h.feedbackRepository.GetFeedbackByID(c.Request().Context(), feedbackID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feedback not found")
	}

	if feedback.UserID == currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot react to your own feedback")
	}

	existing, err := h.reactionRepository.GetReaction(feedbackID, currentUserID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var myReaction *string
	kind := realtime.ReactionUpserted
	if existing != nil && existing.Type == req.Type {
		// Same type again toggles the reaction off
		if err := h.reactionRepository.DeleteReaction(feedbackID, currentUserID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		kind = realtime.ReactionDeleted
	} else {
		if _, err := h.reactionRepository.UpsertReaction(feedbackID, currentUserID, req.Type); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		reactionType := req.Type
		myReaction = &reactionType
	}

	counts, err := h.reactionRepository.CountsByFeedbackID(feedbackID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.bus.Publish(realtime.ReactionEvent{
		FeedbackID: feedbackID,
		BusinessID: feedback.BusinessID,
		MyReaction: myReaction,
		Kind:       kind,
		Counts:     counts,
		TS:         time.Now().UTC(),
	})

	return c.JSON(http.StatusOK, echo.Map{"myReaction": myReaction, "counts": counts})
}

// RemoveReaction removes the caller's reaction regardless of its type
func (h *ReactionHandler) RemoveReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	feedbackID := c.Param("feedback_id")

	feedback, err := h.feedbackRepository.GetFeedbackByID(c.Request().Context(), feedbackID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feedback not found")
	}

	if err := h.reactionRepository.DeleteReaction(feedbackID, currentUserID); err != nil {
		if err.Error() == "reaction not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Reaction not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	counts, err := h.reactionRepository.CountsByFeedbackID(feedbackID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.bus.Publish(realtime.ReactionEvent{
		FeedbackID: feedbackID,
		BusinessID: feedback.BusinessID,
		MyReaction: nil,
		Kind:       realtime.ReactionDeleted,
		Counts:     counts,
		TS:         time.Now().UTC(),
	})

	return c.JSON(http.StatusOK, echo.Map{"myReaction": nil, "counts": counts})
}

// GetReactionCounts returns the counts snapshot for a feedback item plus the
// caller's current reaction, if any
func (h *ReactionHandler) GetReactionCounts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	feedbackID := c.Param("feedback_id")

	if _, err := h.feedbackRepository.GetFeedbackByID(c.Request().Context(), feedbackID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feedback not found")
	}

	counts, err := h.reactionRepository.CountsByFeedbackID(feedbackID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var myReaction *string
	if existing, err := h.reactionRepository.GetReaction(feedbackID, currentUserID); err == nil && existing != nil {
		myReaction = &existing.Type
	}

	return c.JSON(http.StatusOK, echo.Map{"myReaction": myReaction, "counts": counts})
}
