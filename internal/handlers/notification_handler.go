package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/realtime"
)

// NotificationHandler serves the per-user notification mailbox over REST.
// The mailbox is in-memory only; nothing here touches a database.
type NotificationHandler struct {
	store *realtime.Store
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(store *realtime.Store) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread", h.GetUnreadFlag)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns the newest notifications for the authenticated
// user, newest first. The limit query parameter is clamped by the store.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	items := h.store.List(currentUserID, limit)
	hasUnread := h.store.HasUnread(currentUserID)

	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"hasUnread": hasUnread,
	})
}

// GetUnreadFlag reports whether the authenticated user has any unread
// notifications
func (h *NotificationHandler) GetUnreadFlag(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	return c.JSON(http.StatusOK, echo.Map{"hasUnread": h.store.HasUnread(currentUserID)})
}

// MarkAsRead marks a single notification as read. Unknown IDs are ignored,
// so the operation always succeeds.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	h.store.MarkRead(currentUserID, c.Param("id"))

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// MarkAllAsRead marks every notification in the user's mailbox as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	h.store.MarkAllRead(currentUserID)

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
