package handlers

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/internal/realtime"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUserRepo serves a fixed set of users
type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	for _, user := range f.users {
		if user.FirebaseUID == firebaseUID {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateUser(user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) SearchUsers(query string) ([]models.User, error) {
	return nil, nil
}

// fakeFriendshipRepo keeps friendship rows in a slice
type fakeFriendshipRepo struct {
	rows    []*models.Friendship
	nextID  uint
	friends []models.User
}

func (f *fakeFriendshipRepo) UpsertFriendRequest(requesterID, addresseeID uint) (*models.Friendship, error) {
	for _, row := range f.rows {
		if row.RequesterID == requesterID && row.AddresseeID == addresseeID {
			row.Status = models.FriendshipPending
			row.RespondedAt = nil
			return row, nil
		}
	}
	f.nextID++
	row := &models.Friendship{RequesterID: requesterID, AddresseeID: addresseeID, Status: models.FriendshipPending}
	row.ID = f.nextID
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeFriendshipRepo) GetFriendshipByID(id uint) (*models.Friendship, error) {
	for _, row := range f.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFriendshipRepo) GetFriendshipBetween(userA, userB uint) (*models.Friendship, error) {
	for _, row := range f.rows {
		if (row.RequesterID == userA && row.AddresseeID == userB) ||
			(row.RequesterID == userB && row.AddresseeID == userA) {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFriendshipRepo) GetPendingIncoming(userID uint) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, row := range f.rows {
		if row.AddresseeID == userID && row.Status == models.FriendshipPending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeFriendshipRepo) GetPendingOutgoing(userID uint) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, row := range f.rows {
		if row.RequesterID == userID && row.Status == models.FriendshipPending {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeFriendshipRepo) GetUserFriends(userID uint) ([]models.User, error) {
	return f.friends, nil
}

func (f *fakeFriendshipRepo) UpdateStatus(id uint, status string) (*models.Friendship, error) {
	row, err := f.GetFriendshipByID(id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	row.Status = status
	row.RespondedAt = &now
	return row, nil
}

func (f *fakeFriendshipRepo) DeleteFriendship(id uint) error {
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func newFriendshipFixture() (*FriendshipHandler, *fakeFriendshipRepo, *realtime.Store) {
	userRepo := &fakeUserRepo{users: map[uint]*models.User{}}
	alice := &models.User{Name: "Alice", Email: "alice@example.com"}
	alice.ID = 1
	bob := &models.User{Name: "Bob", Email: "bob@example.com"}
	bob.ID = 2
	userRepo.users[1] = alice
	userRepo.users[2] = bob

	friendshipRepo := &fakeFriendshipRepo{}
	store := realtime.NewStore(realtime.DefaultMailboxSize, zerolog.Nop())
	return NewFriendshipHandler(friendshipRepo, userRepo, store), friendshipRepo, store
}

func TestSendFriendRequestPushesNotification(t *testing.T) {
	h, _, store := newFriendshipFixture()

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/friends/request", `{"addressee_id":2}`, 1)
	require.NoError(t, h.SendFriendRequest(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	items := store.List(2, 0)
	require.Len(t, items, 1)
	assert.Equal(t, realtime.NotificationFriendRequest, items[0].Type)
	assert.Equal(t, "Alice sent you a friend request", items[0].Title)
	assert.Equal(t, uint(1), items[0].ActorUserID)
	assert.False(t, items[0].Read)

	// Nothing lands in the requester's own mailbox
	assert.Empty(t, store.List(1, 0))
}

func TestSendFriendRequestToSelfRejected(t *testing.T) {
	h, _, _ := newFriendshipFixture()

	c, _ := newTestContext(t, http.MethodPost, "/api/v1/friends/request", `{"addressee_id":1}`, 1)
	err := h.SendFriendRequest(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestSendFriendRequestUnknownAddressee(t *testing.T) {
	h, _, _ := newFriendshipFixture()

	c, _ := newTestContext(t, http.MethodPost, "/api/v1/friends/request", `{"addressee_id":99}`, 1)
	err := h.SendFriendRequest(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestAcceptFriendRequestNotifiesRequester(t *testing.T) {
	h, friendshipRepo, store := newFriendshipFixture()
	row, err := friendshipRepo.UpsertFriendRequest(1, 2)
	require.NoError(t, err)

	target := "/api/v1/friends/request/" + strconv.Itoa(int(row.ID)) + "/status"
	c, rec := newTestContext(t, http.MethodPut, target, `{"status":"accepted"}`, 2)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(row.ID)))
	require.NoError(t, h.UpdateFriendRequestStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	items := store.List(1, 0)
	require.Len(t, items, 1)
	assert.Equal(t, realtime.NotificationFriendAccept, items[0].Type)
	assert.Equal(t, "Bob accepted your friend request", items[0].Title)
	assert.Equal(t, uint(2), items[0].ActorUserID)
}

func TestRejectFriendRequestStaysSilent(t *testing.T) {
	h, friendshipRepo, store := newFriendshipFixture()
	row, err := friendshipRepo.UpsertFriendRequest(1, 2)
	require.NoError(t, err)

	c, rec := newTestContext(t, http.MethodPut, "/api/v1/friends/request/1/status", `{"status":"rejected"}`, 2)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(row.ID)))
	require.NoError(t, h.UpdateFriendRequestStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Rejections are not broadcast to the requester
	assert.Empty(t, store.List(1, 0))
}

func TestRespondForbiddenForNonAddressee(t *testing.T) {
	h, friendshipRepo, _ := newFriendshipFixture()
	row, err := friendshipRepo.UpsertFriendRequest(1, 2)
	require.NoError(t, err)

	// The requester cannot accept their own request
	c, _ := newTestContext(t, http.MethodPut, "/api/v1/friends/request/1/status", `{"status":"accepted"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(row.ID)))
	respondErr := h.UpdateFriendRequestStatus(c)
	require.Error(t, respondErr)
	he, ok := respondErr.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestRespondTwiceConflicts(t *testing.T) {
	h, friendshipRepo, _ := newFriendshipFixture()
	row, err := friendshipRepo.UpsertFriendRequest(1, 2)
	require.NoError(t, err)
	_, err = friendshipRepo.UpdateStatus(row.ID, models.FriendshipAccepted)
	require.NoError(t, err)

	c, _ := newTestContext(t, http.MethodPut, "/api/v1/friends/request/1/status", `{"status":"accepted"}`, 2)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(row.ID)))
	respondErr := h.UpdateFriendRequestStatus(c)
	require.Error(t, respondErr)
	he, ok := respondErr.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}
