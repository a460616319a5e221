package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/internal/repositories"
	"github.com/ratewell/backend/pkg/id"
)

// FeedbackHandler handles HTTP requests related to reviews and tips
type FeedbackHandler struct {
	feedbackRepository repositories.FeedbackRepository
	businessRepository repositories.BusinessRepository // To verify the business exists
	userRepository     repositories.UserRepository     // To embed author info in responses
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(feedbackRepo repositories.FeedbackRepository, businessRepo repositories.BusinessRepository, userRepo repositories.UserRepository) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackRepository: feedbackRepo,
		businessRepository: businessRepo,
		userRepository:     userRepo,
	}
}

// RegisterFeedbackRoutes registers feedback-related routes
func (h *FeedbackHandler) RegisterFeedbackRoutes(g *echo.Group) {
	g.POST("/feedback", h.CreateFeedback)
	g.GET("/feedback/:feedback_id", h.GetFeedback)
	g.GET("/businesses/:business_id/feedback", h.GetFeedbackForBusiness)
}

// EnrichedFeedback includes author info
type EnrichedFeedback struct {
	models.Feedback
	Author models.UserCompact `json:"author"`
}

func enrichFeedback(userRepo repositories.UserRepository, items []models.Feedback) []EnrichedFeedback {
	enriched := make([]EnrichedFeedback, len(items))
	userCache := make(map[uint]models.UserCompact)

	for i, f := range items {
		enriched[i] = EnrichedFeedback{Feedback: f}
		if author, ok := userCache[f.UserID]; ok {
			enriched[i].Author = author
		} else {
			user, err := userRepo.GetUserByID(f.UserID)
			if err == nil {
				compact := user.ToCompact()
				userCache[f.UserID] = compact
				enriched[i].Author = compact
			}
		}
	}
	return enriched
}

// CreateFeedback handles posting a review or tip on a business. Reviews
// require a 1-5 rating; tips must not carry one.
func (h *FeedbackHandler) CreateFeedback(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Type == models.FeedbackReview && req.Rating == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Reviews require a rating")
	}
	if req.Type == models.FeedbackTip && req.Rating != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Tips cannot carry a rating")
	}

	if _, err := h.businessRepository.GetBusinessByID(c.Request().Context(), req.BusinessID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Business not found")
	}

	feedback := &models.Feedback{
		BusinessID: req.BusinessID,
		UserID:     currentUserID,
		Type:       req.Type,
		Rating:     req.Rating,
		Text:       req.Text,
	}

	if err := h.feedbackRepository.CreateFeedback(c.Request().Context(), feedback); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, feedback)
}

// GetFeedback retrieves a single feedback item by ID
func (h *FeedbackHandler) GetFeedback(c echo.Context) error {
	feedbackID := c.Param("feedback_id")
	if !id.Valid(feedbackID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid feedback ID")
	}

	feedback, err := h.feedbackRepository.GetFeedbackByID(c.Request().Context(), feedbackID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Feedback not found")
	}

	enriched := enrichFeedback(h.userRepository, []models.Feedback{*feedback})
	return c.JSON(http.StatusOK, enriched[0])
}

// GetFeedbackForBusiness retrieves feedback on a business, newest first
func (h *FeedbackHandler) GetFeedbackForBusiness(c echo.Context) error {
	businessID := c.Param("business_id")
	if !id.Valid(businessID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid business ID")
	}

	if _, err := h.businessRepository.GetBusinessByID(c.Request().Context(), businessID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Business not found")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	items, err := h.feedbackRepository.GetFeedbackByBusinessID(
		c.Request().Context(), businessID, int64((page-1)*limit), int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"items": enrichFeedback(h.userRepository, items), "page": page, "limit": limit})
}
