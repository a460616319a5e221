package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/internal/realtime"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamHandler() *StreamHandler {
	store := realtime.NewStore(realtime.DefaultMailboxSize, zerolog.Nop())
	bus := realtime.NewBus(zerolog.Nop())
	return NewStreamHandler(store, bus, time.Minute)
}

// cancelledStreamContext builds a context whose request context is already
// cancelled, so the session writes its ready block and tears down at once.
func cancelledStreamContext(t *testing.T, target string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func TestStreamReactionsRejectsBadFilters(t *testing.T) {
	h := newStreamHandler()

	for _, target := range []string{
		"/api/v1/realtime/reactions?businessId=short",
		"/api/v1/realtime/reactions?feedbackId=has+invalid+chars+aa",
		"/api/v1/realtime/reactions?businessId=waaaaaay-toooo-loooooooong",
	} {
		c, _ := cancelledStreamContext(t, target, 0)
		err := h.StreamReactions(c)
		require.Error(t, err, target)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestStreamReactionsWritesReadyBlock(t *testing.T) {
	h := newStreamHandler()

	c, rec := cancelledStreamContext(t, "/api/v1/realtime/reactions", 0)
	require.NoError(t, h.StreamReactions(c))

	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "no-cache, no-transform", rec.Header().Get("Cache-Control"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: ready\n")
	assert.Contains(t, body, `"ok":true`)
}

func TestStreamReactionsAcceptsValidFilters(t *testing.T) {
	h := newStreamHandler()

	c, rec := cancelledStreamContext(t,
		"/api/v1/realtime/reactions?businessId=AAAAAAAAAAAAAAAAAAAAAA&feedbackId=BBBBBBBBBBBBBBBBBBBBBB", 0)
	require.NoError(t, h.StreamReactions(c))
	assert.Contains(t, rec.Body.String(), "event: ready\n")
}

func TestStreamNotificationsRequiresAuth(t *testing.T) {
	h := newStreamHandler()

	c, _ := cancelledStreamContext(t, "/api/v1/realtime/notifications", 0)
	err := h.StreamNotifications(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestStreamNotificationsReadyReportsUnread(t *testing.T) {
	h := newStreamHandler()
	h.store.Push(7, realtime.NotificationInput{Type: realtime.NotificationFriendRequest, Title: "hi"})

	c, rec := cancelledStreamContext(t, "/api/v1/realtime/notifications", 7)
	require.NoError(t, h.StreamNotifications(c))

	body := rec.Body.String()
	assert.Contains(t, body, "event: ready\n")
	assert.Contains(t, body, `"hasUnread":true`)
}
