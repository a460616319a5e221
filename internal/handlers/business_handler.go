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

// BusinessHandler handles HTTP requests related to business listings
type BusinessHandler struct {
	businessRepository repositories.BusinessRepository
}

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(businessRepo repositories.BusinessRepository) *BusinessHandler {
	return &BusinessHandler{businessRepository: businessRepo}
}

// RegisterBusinessRoutes registers business-related routes
func (h *BusinessHandler) RegisterBusinessRoutes(g *echo.Group) {
	g.POST("/businesses", h.CreateBusiness)
	g.GET("/businesses", h.ListBusinesses)
	g.GET("/businesses/:business_id", h.GetBusiness)
}

// CreateBusiness handles listing a new business
func (h *BusinessHandler) CreateBusiness(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateBusinessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	business := &models.Business{
		Name:       req.Name,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
	}

	if err := h.businessRepository.CreateBusiness(c.Request().Context(), business); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, business)
}

// ListBusinesses retrieves businesses with optional name/city filters and
// pagination
func (h *BusinessHandler) ListBusinesses(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	businesses, err := h.businessRepository.ListBusinesses(
		c.Request().Context(),
		c.QueryParam("name"),
		c.QueryParam("city"),
		int64((page-1)*limit),
		int64(limit),
	)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"items": businesses, "page": page, "limit": limit})
}

// GetBusiness retrieves a single business by ID
func (h *BusinessHandler) GetBusiness(c echo.Context) error {
	businessID := c.Param("business_id")
	if !id.Valid(businessID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid business ID")
	}

	business, err := h.businessRepository.GetBusinessByID(c.Request().Context(), businessID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Business not found")
	}

	return c.JSON(http.StatusOK, business)
}
