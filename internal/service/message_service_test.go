package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"gorm.io/gorm"
)

type mockMessageRepo struct {
	nextID   uint
	stored   map[uint]*models.Message
	pages    map[uint][]models.Message // keyed by beforeID for paging tests
	lastPage struct {
		beforeID uint
		limit    int
	}
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{nextID: 1, stored: map[uint]*models.Message{}}
}

func (m *mockMessageRepo) Create(message *models.Message) error {
	// (sender_id, client_message_id) carries a unique index in storage.
	if message.ClientMessageID != nil && message.SenderID != nil {
		if _, err := m.FindByClientID(*message.ClientMessageID, *message.SenderID); err == nil {
			return errors.New(`duplicate key value violates unique constraint "idx_sender_client"`)
		}
	}
	message.ID = m.nextID
	m.nextID++
	copied := *message
	m.stored[message.ID] = &copied
	return nil
}

func (m *mockMessageRepo) FindByID(id uint) (*models.Message, error) {
	msg, ok := m.stored[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return msg, nil
}

func (m *mockMessageRepo) FindByClientID(clientMessageID string, senderID uint) (*models.Message, error) {
	for _, msg := range m.stored {
		if msg.ClientMessageID != nil && *msg.ClientMessageID == clientMessageID &&
			msg.SenderID != nil && *msg.SenderID == senderID {
			return msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) FindDirectPage(userID1, userID2 uint, beforeID uint, limit int) ([]models.Message, error) {
	m.lastPage.beforeID = beforeID
	m.lastPage.limit = limit
	return m.pages[beforeID], nil
}

func (m *mockMessageRepo) FindGroupPage(groupID uint, beforeID uint, limit int) ([]models.Message, error) {
	m.lastPage.beforeID = beforeID
	m.lastPage.limit = limit
	return m.pages[beforeID], nil
}

func (m *mockMessageRepo) CountUnread(userID uint, chatType models.ReceiverType, chatID uint, afterID uint) (int64, error) {
	var count int64
	for _, msg := range m.stored {
		if msg.ID <= afterID || msg.ReceiverType != chatType {
			continue
		}
		if msg.SenderID != nil && *msg.SenderID == userID {
			continue
		}
		switch chatType {
		case models.ReceiverUser:
			if msg.SenderID == nil || *msg.SenderID != chatID || msg.ReceiverID != userID {
				continue
			}
		case models.ReceiverGroup:
			if msg.ReceiverID != chatID {
				continue
			}
		}
		count++
	}
	return count, nil
}

type mockGroupRepo struct {
	activeMembers map[uint][]uint
	memberCalls   int
}

func (m *mockGroupRepo) Create(*models.Group) error                  { return nil }
func (m *mockGroupRepo) FindByID(uint) (*models.Group, error)        { return nil, gorm.ErrRecordNotFound }
func (m *mockGroupRepo) AddMember(uint, uint, models.GroupRole) error { return nil }
func (m *mockGroupRepo) UpdateMemberStatus(groupID, userID uint, status models.MemberStatus) error {
	members := m.activeMembers[groupID]
	kept := members[:0]
	for _, id := range members {
		if id != userID {
			kept = append(kept, id)
		}
	}
	m.activeMembers[groupID] = kept
	return nil
}
func (m *mockGroupRepo) GetMembers(uint, models.MemberStatus) ([]models.GroupMember, error) {
	return nil, nil
}
func (m *mockGroupRepo) ActiveMemberIDs(groupID uint) ([]uint, error) {
	m.memberCalls++
	return m.activeMembers[groupID], nil
}
func (m *mockGroupRepo) IsActiveMember(groupID, userID uint) (bool, error) {
	for _, id := range m.activeMembers[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
func (m *mockGroupRepo) GetMemberRole(uint, uint) (models.GroupRole, error) {
	return models.RoleMember, nil
}
func (m *mockGroupRepo) GetUserGroups(uint) ([]models.Group, error) { return nil, nil }

type mockMediaRepo struct {
	media map[uint]models.MediaAttachment
}

func (m *mockMediaRepo) Create(media *models.MediaAttachment) error { return nil }
func (m *mockMediaRepo) FindByID(id uint) (*models.MediaAttachment, error) {
	item, ok := m.media[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}
func (m *mockMediaRepo) FindByIDs(ids []uint) (map[uint]models.MediaAttachment, error) {
	out := map[uint]models.MediaAttachment{}
	for _, id := range ids {
		if item, ok := m.media[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

type mockStickerRepo struct {
	stickers map[uint]models.Sticker
}

func (m *mockStickerRepo) FindByID(id uint) (*models.Sticker, error) {
	item, ok := m.stickers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}
func (m *mockStickerRepo) FindByIDs(ids []uint) (map[uint]models.Sticker, error) {
	out := map[uint]models.Sticker{}
	for _, id := range ids {
		if item, ok := m.stickers[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}
func (m *mockStickerRepo) List(string, int) ([]models.Sticker, error) { return nil, nil }

func newMessageFixture() (*MessageService, *mockMessageRepo, *mockGroupRepo) {
	messageRepo := newMockMessageRepo()
	groupRepo := &mockGroupRepo{activeMembers: map[uint][]uint{
		9: {1, 2, 3},
	}}
	mediaRepo := &mockMediaRepo{media: map[uint]models.MediaAttachment{
		5: {ID: 5, FileName: "pic.png", FilePath: "https://cdn.example.com/media/pic.png", MimeType: "image/png", SizeBytes: 1024},
	}}
	stickerRepo := &mockStickerRepo{stickers: map[uint]models.Sticker{
		7: {ID: 7, Name: "wave", MediaID: 5, Media: models.MediaAttachment{ID: 5, FilePath: "https://cdn.example.com/media/wave.webp", MimeType: "image/webp"}},
	}}
	svc := NewMessageService(messageRepo, groupRepo, mediaRepo, stickerRepo, nil)
	return svc, messageRepo, groupRepo
}

func TestSubmitTextDirect(t *testing.T) {
	svc, messageRepo, _ := newMessageFixture()

	resp, recipients, err := svc.Submit(1, SubmitInput{
		ReceiverType: models.ReceiverUser,
		ReceiverID:   2,
		Content:      TextContent{Body: "  hello  "},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Content != "hello" {
		t.Fatalf("content = %q, want trimmed %q", resp.Content, "hello")
	}
	if len(recipients) != 2 || recipients[0] != 2 || recipients[1] != 1 {
		t.Fatalf("recipients = %v, want [2 1]", recipients)
	}
	if len(messageRepo.stored) != 1 {
		t.Fatalf("stored %d messages, want 1", len(messageRepo.stored))
	}
}

func TestSubmitSelfChatSingleRecipient(t *testing.T) {
	svc, _, _ := newMessageFixture()

	_, recipients, err := svc.Submit(1, SubmitInput{
		ReceiverType: models.ReceiverUser,
		ReceiverID:   1,
		Content:      TextContent{Body: "note to self"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(recipients) != 1 || recipients[0] != 1 {
		t.Fatalf("recipients = %v, want [1]", recipients)
	}
}

func TestSubmitGroupResolvesMembersFresh(t *testing.T) {
	svc, _, groupRepo := newMessageFixture()

	_, recipients, err := svc.Submit(1, SubmitInput{
		ReceiverType: models.ReceiverGroup,
		ReceiverID:   9,
		Content:      TextContent{Body: "hi group"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(recipients) != 3 {
		t.Fatalf("recipients = %v, want 3 members", recipients)
	}

	// Member 3 is kicked between sends; the next fanout must not include it.
	if err := groupRepo.UpdateMemberStatus(9, 3, models.MemberBanned); err != nil {
		t.Fatal(err)
	}
	_, recipients, err = svc.Submit(1, SubmitInput{
		ReceiverType: models.ReceiverGroup,
		ReceiverID:   9,
		Content:      TextContent{Body: "hi again"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for _, id := range recipients {
		if id == 3 {
			t.Fatal("kicked member still in recipient set")
		}
	}
	if groupRepo.memberCalls != 2 {
		t.Fatalf("membership fetched %d times, want once per send", groupRepo.memberCalls)
	}
}

func TestSubmitRejectsReusedClientMessageID(t *testing.T) {
	svc, messageRepo, _ := newMessageFixture()

	clientID := "c-1a2b"
	first, _, err := svc.Submit(1, SubmitInput{
		ReceiverType:    models.ReceiverUser,
		ReceiverID:      2,
		Content:         TextContent{Body: "hello"},
		ClientMessageID: &clientID,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// A resubmission with the same client id is reported as a duplicate, not
	// silently accepted and not surfaced as a storage failure.
	_, _, err = svc.Submit(1, SubmitInput{
		ReceiverType:    models.ReceiverUser,
		ReceiverID:      2,
		Content:         TextContent{Body: "hello again"},
		ClientMessageID: &clientID,
	})
	if !errors.Is(err, ErrDuplicateClientID) {
		t.Fatalf("resubmission error = %v, want ErrDuplicateClientID", err)
	}
	if len(messageRepo.stored) != 1 {
		t.Fatalf("stored %d messages, want 1", len(messageRepo.stored))
	}

	// A different sender may reuse the token.
	if _, _, err := svc.Submit(2, SubmitInput{
		ReceiverType:    models.ReceiverUser,
		ReceiverID:      1,
		Content:         TextContent{Body: "mine"},
		ClientMessageID: &clientID,
	}); err != nil {
		t.Fatalf("other sender's Submit: %v", err)
	}
	if first == nil || first.ID == 0 {
		t.Fatal("first message missing id")
	}
}

func TestSubmitValidationFailuresDoNotPersist(t *testing.T) {
	svc, messageRepo, _ := newMessageFixture()

	tests := []struct {
		name  string
		input SubmitInput
		want  error
	}{
		{
			"invalid receiver type",
			SubmitInput{ReceiverType: "channel", ReceiverID: 2, Content: TextContent{Body: "x"}},
			ErrInvalidReceiverType,
		},
		{
			"empty content",
			SubmitInput{ReceiverType: models.ReceiverUser, ReceiverID: 2, Content: TextContent{Body: "   "}},
			ErrEmptyContent,
		},
		{
			"oversized content",
			SubmitInput{ReceiverType: models.ReceiverUser, ReceiverID: 2, Content: TextContent{Body: strings.Repeat("a", 5000)}},
			ErrMessageTooLong,
		},
		{
			"invalid media kind",
			SubmitInput{ReceiverType: models.ReceiverUser, ReceiverID: 2, Content: MediaContent{Kind: models.ContentText, MediaID: 5}},
			ErrInvalidMediaKind,
		},
		{
			"unresolved media",
			SubmitInput{ReceiverType: models.ReceiverUser, ReceiverID: 2, Content: MediaContent{Kind: models.ContentImage, MediaID: 999}},
			ErrMediaNotFound,
		},
		{
			"unresolved sticker",
			SubmitInput{ReceiverType: models.ReceiverUser, ReceiverID: 2, Content: StickerContent{StickerID: 999}},
			ErrStickerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Submit(1, tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if len(messageRepo.stored) != 0 {
		t.Fatalf("validation failure persisted %d messages", len(messageRepo.stored))
	}
}

func TestSubmitMediaResolvesReference(t *testing.T) {
	svc, _, _ := newMessageFixture()

	resp, _, err := svc.Submit(1, SubmitInput{
		ReceiverType: models.ReceiverUser,
		ReceiverID:   2,
		Content:      MediaContent{Kind: models.ContentImage, MediaID: 5},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ref, ok := resp.Content.(models.MediaContentRef)
	if !ok {
		t.Fatalf("content = %T, want MediaContentRef", resp.Content)
	}
	if ref.ID != 5 || ref.URL == "" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if resp.ContentType != models.ContentImage {
		t.Fatalf("content type = %s", resp.ContentType)
	}
}

func TestSubmitStickerResolvesReference(t *testing.T) {
	svc, _, _ := newMessageFixture()

	resp, _, err := svc.Submit(1, SubmitInput{
		ReceiverType: models.ReceiverUser,
		ReceiverID:   2,
		Content:      StickerContent{StickerID: 7},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ref, ok := resp.Content.(models.StickerContentRef)
	if !ok {
		t.Fatalf("content = %T, want StickerContentRef", resp.Content)
	}
	if ref.StickerID != 7 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestGetHistoryPassesCursorAndClampsLimit(t *testing.T) {
	svc, messageRepo, _ := newMessageFixture()
	sender := uint(2)
	messageRepo.pages = map[uint][]models.Message{
		100: {
			{ID: 97, SenderID: &sender, ReceiverType: models.ReceiverUser, ReceiverID: 1, ContentType: models.ContentText, Content: "a"},
			{ID: 98, SenderID: &sender, ReceiverType: models.ReceiverUser, ReceiverID: 1, ContentType: models.ContentText, Content: "b"},
		},
	}

	page, err := svc.GetHistory(1, models.ReceiverUser, 2, 100, 0)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(page) != 2 || page[0].ID != 97 || page[1].ID != 98 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if messageRepo.lastPage.beforeID != 100 {
		t.Fatalf("beforeID = %d, want 100", messageRepo.lastPage.beforeID)
	}
	if messageRepo.lastPage.limit != 50 {
		t.Fatalf("default limit = %d, want 50", messageRepo.lastPage.limit)
	}

	if _, err := svc.GetHistory(1, models.ReceiverUser, 2, 100, 500); err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if messageRepo.lastPage.limit != 50 {
		t.Fatalf("oversized limit clamped to %d, want 50", messageRepo.lastPage.limit)
	}

	if _, err := svc.GetHistory(1, "channel", 2, 0, 10); !errors.Is(err, ErrInvalidReceiverType) {
		t.Fatalf("invalid chat type error = %v", err)
	}
}

func TestGetHistoryEnrichesReferences(t *testing.T) {
	svc, messageRepo, _ := newMessageFixture()
	sender := uint(2)
	messageRepo.pages = map[uint][]models.Message{
		0: {
			{ID: 1, SenderID: &sender, ReceiverType: models.ReceiverUser, ReceiverID: 1, ContentType: models.ContentText, Content: "hello"},
			{ID: 2, SenderID: &sender, ReceiverType: models.ReceiverUser, ReceiverID: 1, ContentType: models.ContentImage, Content: "5"},
			{ID: 3, SenderID: &sender, ReceiverType: models.ReceiverUser, ReceiverID: 1, ContentType: models.ContentSticker, Content: "7"},
		},
	}

	page, err := svc.GetHistory(1, models.ReceiverUser, 2, 0, 10)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page length = %d", len(page))
	}
	if page[0].Content != "hello" {
		t.Fatalf("text content = %v", page[0].Content)
	}
	if _, ok := page[1].Content.(models.MediaContentRef); !ok {
		t.Fatalf("media content = %T", page[1].Content)
	}
	if _, ok := page[2].Content.(models.StickerContentRef); !ok {
		t.Fatalf("sticker content = %T", page[2].Content)
	}
}
