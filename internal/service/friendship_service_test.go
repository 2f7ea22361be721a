package service

import (
	"errors"
	"testing"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"gorm.io/gorm"
)

type mockFriendshipRepo struct {
	nextID      uint
	friendships map[uint]*models.Friendship
}

func newMockFriendshipRepo() *mockFriendshipRepo {
	return &mockFriendshipRepo{nextID: 1, friendships: map[uint]*models.Friendship{}}
}

func (m *mockFriendshipRepo) Create(friendship *models.Friendship) error {
	friendship.ID = m.nextID
	m.nextID++
	m.friendships[friendship.ID] = friendship
	return nil
}

func (m *mockFriendshipRepo) FindBetween(userA, userB uint) (*models.Friendship, error) {
	low, high := models.OrderPair(userA, userB)
	for _, f := range m.friendships {
		if f.UserLowID == low && f.UserHighID == high {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFriendshipRepo) FindByID(id uint) (*models.Friendship, error) {
	f, ok := m.friendships[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (m *mockFriendshipRepo) UpdateStatus(id uint, status models.FriendshipStatus, actionUserID uint) error {
	f, ok := m.friendships[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.Status = status
	f.ActionUserID = actionUserID
	return nil
}

func (m *mockFriendshipRepo) Delete(userA, userB uint) error {
	low, high := models.OrderPair(userA, userB)
	for id, f := range m.friendships {
		if f.UserLowID == low && f.UserHighID == high {
			delete(m.friendships, id)
			return nil
		}
	}
	return nil
}

func (m *mockFriendshipRepo) ListForUser(userID uint, status models.FriendshipStatus) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, f := range m.friendships {
		if f.Status != status {
			continue
		}
		if f.UserLowID == userID || f.UserHighID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *mockFriendshipRepo) AcceptedFriendIDs(userID uint) ([]uint, error) {
	var out []uint
	for _, f := range m.friendships {
		if f.Status != models.FriendshipAccepted {
			continue
		}
		if f.UserLowID == userID {
			out = append(out, f.UserHighID)
		} else if f.UserHighID == userID {
			out = append(out, f.UserLowID)
		}
	}
	return out, nil
}

func newFriendshipFixture() (*FriendshipService, *mockFriendshipRepo, *mockUserRepo, *mockMessageRepo) {
	friendshipRepo := newMockFriendshipRepo()
	userRepo := newMockUserRepo()
	for _, name := range []string{"alice", "bob", "carol"} {
		_ = userRepo.Create(&models.User{Username: name, Email: name + "@example.com"})
	}
	readRepo := newMockReadStateRepo()
	messageRepo := newMockMessageRepo()
	readStateSvc := NewReadStateService(readRepo, messageRepo)
	return NewFriendshipService(friendshipRepo, userRepo, readStateSvc), friendshipRepo, userRepo, messageRepo
}

func TestSendRequestCreatesPendingEdge(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()

	friendship, err := svc.SendRequest(1, 2)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if friendship.Status != models.FriendshipPending {
		t.Fatalf("status = %s", friendship.Status)
	}
	if friendship.UserLowID != 1 || friendship.UserHighID != 2 {
		t.Fatalf("pair = (%d,%d), want ordered (1,2)", friendship.UserLowID, friendship.UserHighID)
	}
	if friendship.ActionUserID != 1 {
		t.Fatalf("action user = %d", friendship.ActionUserID)
	}
}

func TestSendRequestRejections(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()

	if _, err := svc.SendRequest(1, 1); !errors.Is(err, ErrSelfFriendship) {
		t.Fatalf("self request error = %v", err)
	}
	if _, err := svc.SendRequest(1, 99); err == nil {
		t.Fatal("request to unknown user accepted")
	}

	if _, err := svc.SendRequest(1, 2); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := svc.SendRequest(2, 1); !errors.Is(err, ErrFriendshipExists) {
		t.Fatalf("duplicate request error = %v", err)
	}
}

func TestRespondOnlyTargetMayAccept(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()

	friendship, err := svc.SendRequest(1, 2)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// The requester cannot accept their own request.
	if _, err := svc.Respond(1, friendship.ID, true); !errors.Is(err, ErrNotRequestTarget) {
		t.Fatalf("self-accept error = %v", err)
	}
	// An uninvolved user sees nothing.
	if _, err := svc.Respond(3, friendship.ID, true); !errors.Is(err, ErrFriendshipNotFound) {
		t.Fatalf("outsider error = %v", err)
	}

	accepted, err := svc.Respond(2, friendship.ID, true)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if accepted.Status != models.FriendshipAccepted {
		t.Fatalf("status = %s", accepted.Status)
	}

	ok, err := svc.AreFriends(1, 2)
	if err != nil || !ok {
		t.Fatalf("AreFriends = %v, %v", ok, err)
	}
}

func TestDeclinedRequestCanBeResent(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()

	friendship, err := svc.SendRequest(1, 2)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := svc.Respond(2, friendship.ID, false); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	resent, err := svc.SendRequest(1, 2)
	if err != nil {
		t.Fatalf("re-request after decline: %v", err)
	}
	if resent.Status != models.FriendshipPending {
		t.Fatalf("status = %s", resent.Status)
	}
}

func acceptPair(t *testing.T, svc *FriendshipService, requester, target uint) {
	t.Helper()
	friendship, err := svc.SendRequest(requester, target)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := svc.Respond(target, friendship.ID, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}
}

func TestRemoveDeletesAcceptedFriendship(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()
	acceptPair(t, svc, 1, 2)

	if err := svc.Remove(1, 2); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := svc.AreFriends(1, 2); ok {
		t.Fatal("still friends after removal")
	}

	// The pair starts over: a fresh request must succeed.
	if _, err := svc.SendRequest(2, 1); err != nil {
		t.Fatalf("request after removal: %v", err)
	}
}

func TestRemoveRequiresAcceptedFriendship(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()

	if err := svc.Remove(1, 2); !errors.Is(err, ErrFriendshipNotFound) {
		t.Fatalf("remove without record: err = %v", err)
	}

	if _, err := svc.SendRequest(1, 2); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if err := svc.Remove(1, 2); !errors.Is(err, ErrNotFriends) {
		t.Fatalf("remove of pending request: err = %v", err)
	}
}

func TestBlockReplacesFriendshipAndGatesRequests(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()
	acceptPair(t, svc, 1, 2)

	blocked, err := svc.Block(1, 2)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if blocked.Status != models.FriendshipBlocked || blocked.ActionUserID != 1 {
		t.Fatalf("block record = %+v", blocked)
	}
	if ok, _ := svc.AreFriends(1, 2); ok {
		t.Fatal("blocked pair still reports friends")
	}

	// Neither side can open a new request while the block stands.
	if _, err := svc.SendRequest(2, 1); !errors.Is(err, ErrFriendshipBlocked) {
		t.Fatalf("blocked user's request: err = %v", err)
	}
	if _, err := svc.SendRequest(1, 2); !errors.Is(err, ErrFriendshipBlocked) {
		t.Fatalf("blocker's request: err = %v", err)
	}

	// The blocked side cannot take over the block.
	if _, err := svc.Block(2, 1); !errors.Is(err, ErrFriendshipBlocked) {
		t.Fatalf("counter-block: err = %v", err)
	}
}

func TestUnblockOnlyByBlocker(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()

	if _, err := svc.Block(1, 2); err != nil {
		t.Fatalf("Block: %v", err)
	}

	if err := svc.Unblock(2, 1); !errors.Is(err, ErrNotBlocker) {
		t.Fatalf("unblock by blocked side: err = %v", err)
	}
	if err := svc.Unblock(1, 2); err != nil {
		t.Fatalf("Unblock: %v", err)
	}

	// Unblocking clears the record entirely; requests flow again.
	if _, err := svc.SendRequest(2, 1); err != nil {
		t.Fatalf("request after unblock: %v", err)
	}
}

func TestListBlockedHidesForeignBlocks(t *testing.T) {
	svc, _, _, _ := newFriendshipFixture()

	if _, err := svc.Block(1, 2); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if _, err := svc.Block(3, 1); err != nil {
		t.Fatalf("Block: %v", err)
	}

	mine, err := svc.ListBlocked(1)
	if err != nil {
		t.Fatalf("ListBlocked: %v", err)
	}
	if len(mine) != 1 || mine[0].Peer.ID != 2 {
		t.Fatalf("blocked list = %+v, want only user 2", mine)
	}

	// User 1 never learns that user 3 blocked them.
	theirs, err := svc.ListBlocked(3)
	if err != nil {
		t.Fatalf("ListBlocked: %v", err)
	}
	if len(theirs) != 1 || theirs[0].Peer.ID != 1 {
		t.Fatalf("blocked list for blocker 3 = %+v", theirs)
	}
}

func TestListFriendsEnrichesUnreadCounts(t *testing.T) {
	svc, _, _, messageRepo := newFriendshipFixture()

	friendship, err := svc.SendRequest(1, 2)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if _, err := svc.Respond(2, friendship.ID, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	// Two messages from the peer are unread for user 1.
	peer := uint(2)
	for i := 0; i < 2; i++ {
		sid := peer
		_ = messageRepo.Create(&models.Message{
			SenderID:     &sid,
			ReceiverType: models.ReceiverUser,
			ReceiverID:   1,
			ContentType:  models.ContentText,
			Content:      "hi",
		})
	}

	friends, err := svc.ListFriends(1)
	if err != nil {
		t.Fatalf("ListFriends: %v", err)
	}
	if len(friends) != 1 {
		t.Fatalf("friend count = %d", len(friends))
	}
	if friends[0].Peer.ID != 2 {
		t.Fatalf("peer = %d", friends[0].Peer.ID)
	}
	if friends[0].UnreadCount != 2 {
		t.Fatalf("unread = %d, want 2", friends[0].UnreadCount)
	}
}
