package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/realtime"
	"github.com/ratewell/backend/pkg/id"
)

// StreamHandler serves the server-sent-event endpoints backed by the
// realtime core.
type StreamHandler struct {
	store     *realtime.Store
	bus       *realtime.Bus
	keepalive time.Duration
}

// NewStreamHandler creates a new StreamHandler. keepalive <= 0 falls back to
// the default interval.
func NewStreamHandler(store *realtime.Store, bus *realtime.Bus, keepalive time.Duration) *StreamHandler {
	if keepalive <= 0 {
		keepalive = realtime.DefaultKeepaliveInterval
	}
	return &StreamHandler{store: store, bus: bus, keepalive: keepalive}
}

// RegisterStreamRoutes registers the authenticated notification stream
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/realtime/notifications", h.StreamNotifications)
}

// RegisterPublicStreamRoutes registers the unauthenticated reaction stream
func (h *StreamHandler) RegisterPublicStreamRoutes(g *echo.Group) {
	g.GET("/realtime/reactions", h.StreamReactions)
}

// sseWriter adapts an HTTP response to the realtime.Sink interface. Writes
// are already serialized by the session loop, so no locking here.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported by response writer")
	}

	header := w.Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-cache, no-transform")
	header.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) Send(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return nil
}

func (s *sseWriter) Comment(text string) error {
	_, err := fmt.Fprintf(s.w, ": %s\n\n", text)
	return err
}

func (s *sseWriter) Flush() {
	s.flusher.Flush()
}

// StreamNotifications pushes the authenticated user's notifications as they
// arrive. Requires a valid JWT; the stream is scoped to that user only.
func (h *StreamHandler) StreamNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	sink, err := newSSEWriter(c.Response().Writer)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	realtime.StreamNotifications(c.Request().Context(), sink, h.store, currentUserID, h.keepalive)
	return nil
}

// StreamReactions pushes reaction count changes, optionally narrowed to one
// business or one feedback item. No auth: reaction counts are public data.
func (h *StreamHandler) StreamReactions(c echo.Context) error {
	filter := realtime.ReactionFilter{
		BusinessID: c.QueryParam("businessId"),
		FeedbackID: c.QueryParam("feedbackId"),
	}
	if filter.BusinessID != "" && !id.Valid(filter.BusinessID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid businessId filter")
	}
	if filter.FeedbackID != "" && !id.Valid(filter.FeedbackID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid feedbackId filter")
	}

	sink, err := newSSEWriter(c.Response().Writer)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	realtime.StreamReactions(c.Request().Context(), sink, h.bus, filter, h.keepalive)
	return nil
}
