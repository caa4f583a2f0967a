package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/presence"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/ratelimit"
	ws "github.com/Adnan8101/bharatverse/internal/infrastructure/websocket"
	"github.com/Adnan8101/bharatverse/pkg/errors"
)

type stubChatRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation // keyed by pair key (= ID)
	messages      map[string][]*entity.Message
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (r *stubChatRepo) GetOrCreate(_ context.Context, a, b string) (*entity.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := entity.ConversationPairKey(a, b)
	if existing, ok := r.conversations[key]; ok {
		clone := *existing
		return &clone, false, nil
	}

	now := time.Now().UTC()
	conversation := &entity.Conversation{
		ID:           key,
		Participants: []string{a, b},
		PairKey:      key,
		UnreadCounts: map[string]int{a: 0, b: 0},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.conversations[key] = conversation
	clone := *conversation
	return &clone, true, nil
}

func (r *stubChatRepo) GetByID(_ context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	clone := *conversation
	return &clone, nil
}

func (r *stubChatRepo) ListByParticipant(_ context.Context, participantID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Conversation
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(participantID) {
			clone := *conversation
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *stubChatRepo) AppendMessage(_ context.Context, message *entity.Message, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[message.ConversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}

	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], message)
	conversation.LastMessage = message.Content
	conversation.LastMessageAt = message.CreatedAt
	conversation.UpdatedAt = message.CreatedAt
	if conversation.UnreadCounts == nil {
		conversation.UnreadCounts = map[string]int{}
	}
	conversation.UnreadCounts[recipientID]++
	return nil
}

func (r *stubChatRepo) ListMessages(_ context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.messages[conversationID]
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *stubChatRepo) MarkMessagesRead(_ context.Context, conversationID, viewerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[conversationID]
	if !ok {
		return 0, errors.NotFound("Conversation", nil)
	}

	changed := 0
	for _, message := range r.messages[conversationID] {
		if !message.IsRead && message.SenderID != viewerID {
			message.IsRead = true
			changed++
		}
	}
	if conversation.UnreadCounts != nil {
		conversation.UnreadCounts[viewerID] = 0
	}
	return changed, nil
}

type stubStoreRepo struct {
	mu     sync.Mutex
	stores map[string]*entity.Store
}

func newStubStoreRepo(stores ...*entity.Store) *stubStoreRepo {
	r := &stubStoreRepo{stores: make(map[string]*entity.Store)}
	for _, store := range stores {
		r.stores[store.ID] = store
	}
	return r
}

func (r *stubStoreRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[id]
	if !ok {
		return nil, errors.NotFound("Store", nil)
	}
	return store, nil
}

func (r *stubStoreRepo) List(_ context.Context, _ string, _ int) ([]*entity.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Store
	for _, store := range r.stores {
		result = append(result, store)
	}
	return result, nil
}

type stubMailer struct {
	sent chan string // receives recipient addresses
	fail bool
}

func newStubMailer() *stubMailer {
	return &stubMailer{sent: make(chan string, 8)}
}

func (m *stubMailer) SendNewMessageNotification(_ context.Context, to, _, _ string) error {
	m.sent <- to
	if m.fail {
		return errors.Internal("smtp down", nil)
	}
	return nil
}

func activeStore(id string) *entity.Store {
	return &entity.Store{
		ID:           id,
		Name:         "Store " + id,
		Username:     id,
		ContactEmail: id + "@example.com",
		Status:       entity.StoreStatusActive,
	}
}

type fixture struct {
	uc       *ChatUseCase
	chatRepo *stubChatRepo
	mailer   *stubMailer
}

func newFixture(stores ...*entity.Store) *fixture {
	chatRepo := newStubChatRepo()
	mailer := newStubMailer()
	uc := NewChatUseCase(
		chatRepo,
		newStubStoreRepo(stores...),
		ws.NewManager(),
		mailer,
		presence.NewTracker(100*time.Millisecond),
		ratelimit.NewRateLimiter(),
		"Platform Admin",
	)
	return &fixture{uc: uc, chatRepo: chatRepo, mailer: mailer}
}

func TestGetOrCreateConversationIsIdempotentPerPair(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	first, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("first GetOrCreateConversation: %v", err)
	}
	second, err := f.uc.GetOrCreateConversation(ctx, "store-1", entity.AdminParticipantID)
	if err != nil {
		t.Fatalf("second GetOrCreateConversation: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected both orderings to land on one conversation, got %q and %q", first.ID, second.ID)
	}
	if first.Counterparty.ID != "store-1" {
		t.Fatalf("expected admin view counterparty store-1, got %q", first.Counterparty.ID)
	}
	if second.Counterparty.Name != "Platform Admin" {
		t.Fatalf("expected store view counterparty name from config, got %q", second.Counterparty.Name)
	}
}

func TestGetOrCreateConversationConcurrentFirstContact(t *testing.T) {
	f := newFixture(activeStore("store-1"))

	const callers = 8
	ids := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := f.uc.GetOrCreateConversation(context.Background(), entity.AdminParticipantID, "store-1")
			if err != nil {
				t.Errorf("GetOrCreateConversation: %v", err)
				return
			}
			ids <- view.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Fatalf("expected all callers to converge on one conversation, got %d distinct IDs", len(seen))
	}
}

func TestGetOrCreateConversationRejectsSelfAndUnknownAndSuspended(t *testing.T) {
	suspended := activeStore("store-2")
	suspended.Status = entity.StoreStatusSuspended
	f := newFixture(activeStore("store-1"), suspended)
	ctx := context.Background()

	if _, err := f.uc.GetOrCreateConversation(ctx, "store-1", "store-1"); !errors.Is(err, "BAD_REQUEST") {
		t.Fatalf("self pair: expected BAD_REQUEST, got %v", err)
	}
	if _, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "ghost"); !errors.Is(err, "NOT_FOUND") {
		t.Fatalf("unknown store: expected NOT_FOUND, got %v", err)
	}
	if _, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-2"); !errors.Is(err, "FORBIDDEN") {
		t.Fatalf("suspended store: expected FORBIDDEN, got %v", err)
	}
	if _, err := f.uc.GetOrCreateConversation(ctx, "store-1", "store-2"); !errors.Is(err, "FORBIDDEN") {
		t.Fatalf("store messaging suspended store: expected FORBIDDEN, got %v", err)
	}
}

func TestStoreToStoreFirstContact(t *testing.T) {
	f := newFixture(activeStore("store-a"), activeStore("store-b"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, "store-a", "store-b")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}
	if view.Counterparty.ID != "store-b" || view.Counterparty.Type != entity.SenderTypeStore {
		t.Fatalf("unexpected counterparty: %+v", view.Counterparty)
	}

	if _, err := f.uc.SendMessage(ctx, "store-a", view.ID, SendMessageInput{
		Content: "Interested in bulk order", Type: entity.MessageTypeText,
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	// Store B's list carries the preview and an unread badge; no mail is
	// sent for store-to-store messages.
	views, err := f.uc.ListConversations(ctx, "store-b", "")
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 conversation for store-b, got %d", len(views))
	}
	if views[0].LastMessage != "Interested in bulk order" || views[0].UnreadCount != 1 {
		t.Fatalf("unexpected view: %+v", views[0])
	}
	if views[0].Counterparty.ID != "store-a" {
		t.Fatalf("expected counterparty store-a, got %q", views[0].Counterparty.ID)
	}

	select {
	case to := <-f.mailer.sent:
		t.Fatalf("unexpected mail %q for a store-to-store message", to)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSendMessageUpdatesRollupAndUnread(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	for _, body := range []string{"first", "second", "third"} {
		if _, err := f.uc.SendMessage(ctx, entity.AdminParticipantID, view.ID, SendMessageInput{
			Content: body, Type: entity.MessageTypeText,
		}); err != nil {
			t.Fatalf("SendMessage %q: %v", body, err)
		}
	}

	conversation, err := f.chatRepo.GetByID(ctx, view.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if conversation.LastMessage != "third" {
		t.Fatalf("expected rollup preview %q, got %q", "third", conversation.LastMessage)
	}
	if got := conversation.UnreadFor("store-1"); got != 3 {
		t.Fatalf("expected store unread 3, got %d", got)
	}
	if got := conversation.UnreadFor(entity.AdminParticipantID); got != 0 {
		t.Fatalf("expected sender unread 0, got %d", got)
	}

	messages, total, err := f.uc.ListMessages(ctx, "store-1", view.ID, 1, 50)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if total != 3 || len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d (total %d)", len(messages), total)
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Fatalf("messages out of chronological order at index %d", i)
		}
	}
	if messages[0].SenderType != entity.SenderTypeAdmin {
		t.Fatalf("expected sender type admin, got %q", messages[0].SenderType)
	}
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	cases := []struct {
		name  string
		input SendMessageInput
	}{
		{"empty text", SendMessageInput{Content: "   ", Type: entity.MessageTypeText}},
		{"media without url", SendMessageInput{Type: entity.MessageTypeMedia}},
		{"unknown type", SendMessageInput{Content: "hi", Type: "voice"}},
	}
	for _, tc := range cases {
		if _, err := f.uc.SendMessage(ctx, entity.AdminParticipantID, view.ID, tc.input); !errors.Is(err, "BAD_REQUEST") {
			t.Fatalf("%s: expected BAD_REQUEST, got %v", tc.name, err)
		}
	}

	if _, err := f.uc.SendMessage(ctx, "intruder", view.ID, SendMessageInput{
		Content: "hi", Type: entity.MessageTypeText,
	}); !errors.Is(err, "FORBIDDEN") {
		t.Fatalf("non-participant: expected FORBIDDEN, got %v", err)
	}
	if _, err := f.uc.SendMessage(ctx, entity.AdminParticipantID, "missing-conversation", SendMessageInput{
		Content: "hi", Type: entity.MessageTypeText,
	}); !errors.Is(err, "NOT_FOUND") {
		t.Fatalf("missing conversation: expected NOT_FOUND, got %v", err)
	}
}

func TestSendMediaMessagePreservesAttachment(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, "store-1", entity.AdminParticipantID)
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	sent, err := f.uc.SendMessage(ctx, "store-1", view.ID, SendMessageInput{
		Content:   "invoice attached",
		Type:      entity.MessageTypeMedia,
		MediaURL:  "https://storage.googleapis.com/bucket/chat-media/" + uuid.New().String() + ".pdf",
		MediaType: "application/pdf",
		MediaSize: 2048,
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	messages, _, err := f.uc.ListMessages(ctx, entity.AdminParticipantID, view.ID, 1, 50)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	got := messages[len(messages)-1]
	if got.MediaURL != sent.MediaURL || got.MediaType != "application/pdf" || got.MediaSize != 2048 {
		t.Fatalf("media fields not preserved: %+v", got)
	}
	if got.SenderType != entity.SenderTypeStore {
		t.Fatalf("expected sender type store, got %q", got.SenderType)
	}
}

func TestMarkConversationReadIsIdempotent(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := f.uc.SendMessage(ctx, entity.AdminParticipantID, view.ID, SendMessageInput{
			Content: "ping", Type: entity.MessageTypeText,
		}); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}
	if _, err := f.uc.SendMessage(ctx, "store-1", view.ID, SendMessageInput{
		Content: "pong", Type: entity.MessageTypeText,
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	changed, err := f.uc.MarkConversationRead(ctx, "store-1", view.ID)
	if err != nil {
		t.Fatalf("MarkConversationRead: %v", err)
	}
	if changed != 2 {
		t.Fatalf("expected 2 messages flipped, got %d", changed)
	}

	changed, err = f.uc.MarkConversationRead(ctx, "store-1", view.ID)
	if err != nil {
		t.Fatalf("repeat MarkConversationRead: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected repeat call to be a no-op, got %d", changed)
	}

	// The store's own message stays unread until the admin reads it.
	messages, _, err := f.uc.ListMessages(ctx, "store-1", view.ID, 1, 50)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	for _, message := range messages {
		wantRead := message.SenderID == entity.AdminParticipantID
		if message.IsRead != wantRead {
			t.Fatalf("message %q: IsRead=%v, want %v", message.Content, message.IsRead, wantRead)
		}
	}

	conversation, _ := f.chatRepo.GetByID(ctx, view.ID)
	if got := conversation.UnreadFor("store-1"); got != 0 {
		t.Fatalf("expected store unread reset, got %d", got)
	}
	if got := conversation.UnreadFor(entity.AdminParticipantID); got != 1 {
		t.Fatalf("expected admin unread untouched at 1, got %d", got)
	}
}

func TestAdminSendTriggersMailNotification(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	if _, err := f.uc.SendMessage(ctx, entity.AdminParticipantID, view.ID, SendMessageInput{
		Content: "policy update", Type: entity.MessageTypeText,
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	select {
	case to := <-f.mailer.sent:
		if to != "store-1@example.com" {
			t.Fatalf("expected mail to store contact, got %q", to)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a mail notification for an admin message")
	}

	// Store replies never trigger mail.
	if _, err := f.uc.SendMessage(ctx, "store-1", view.ID, SendMessageInput{
		Content: "ack", Type: entity.MessageTypeText,
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	select {
	case to := <-f.mailer.sent:
		t.Fatalf("unexpected mail %q for a store message", to)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestMailFailureDoesNotFailSend(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	f.mailer.fail = true
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	message, err := f.uc.SendMessage(ctx, entity.AdminParticipantID, view.ID, SendMessageInput{
		Content: "hello", Type: entity.MessageTypeText,
	})
	if err != nil {
		t.Fatalf("expected send to succeed despite mail failure, got %v", err)
	}
	if message.ID == "" {
		t.Fatal("expected a persisted message")
	}
	<-f.mailer.sent
}

func TestListConversationsOrderUnreadAndSearch(t *testing.T) {
	f := newFixture(activeStore("alpha"), activeStore("beta"), activeStore("gamma"))
	ctx := context.Background()

	alpha, _ := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "alpha")
	beta, _ := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "beta")
	if _, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "gamma"); err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	if _, err := f.uc.SendMessage(ctx, "alpha", alpha.ID, SendMessageInput{Content: "older", Type: entity.MessageTypeText}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := f.uc.SendMessage(ctx, "beta", beta.ID, SendMessageInput{Content: "newer", Type: entity.MessageTypeText}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	views, err := f.uc.ListConversations(ctx, entity.AdminParticipantID, "")
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(views))
	}
	if views[0].ID != beta.ID || views[1].ID != alpha.ID {
		t.Fatalf("expected newest activity first, got %q then %q", views[0].ID, views[1].ID)
	}
	if views[2].LastMessageAt != nil {
		t.Fatal("expected the empty conversation to sort last with no activity timestamp")
	}
	if views[0].UnreadCount != 1 || views[0].LastMessage != "newer" {
		t.Fatalf("unexpected top view: %+v", views[0])
	}

	filtered, err := f.uc.ListConversations(ctx, entity.AdminParticipantID, "ALP")
	if err != nil {
		t.Fatalf("ListConversations search: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Counterparty.ID != "alpha" {
		t.Fatalf("expected search to match alpha only, got %d results", len(filtered))
	}
}

func TestSetTypingLifecycle(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	if err := f.uc.SetTyping(ctx, "intruder", view.ID, true); !errors.Is(err, "FORBIDDEN") {
		t.Fatalf("non-participant typing: expected FORBIDDEN, got %v", err)
	}

	if err := f.uc.SetTyping(ctx, "store-1", view.ID, true); err != nil {
		t.Fatalf("SetTyping start: %v", err)
	}
	typers := f.uc.ActiveTypers(view.ID)
	if len(typers) != 1 || typers[0] != "store-1" {
		t.Fatalf("expected store-1 typing, got %v", typers)
	}

	if err := f.uc.SetTyping(ctx, "store-1", view.ID, false); err != nil {
		t.Fatalf("SetTyping stop: %v", err)
	}
	if typers := f.uc.ActiveTypers(view.ID); len(typers) != 0 {
		t.Fatalf("expected stop to clear the signal, got %v", typers)
	}

	// Without an explicit stop the signal expires on its own.
	if err := f.uc.SetTyping(ctx, "store-1", view.ID, true); err != nil {
		t.Fatalf("SetTyping restart: %v", err)
	}
	time.Sleep(150 * time.Millisecond)
	if typers := f.uc.ActiveTypers(view.ID); len(typers) != 0 {
		t.Fatalf("expected the signal to expire, got %v", typers)
	}
}

func TestSendingClearsTypingSignal(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	if err := f.uc.SetTyping(ctx, "store-1", view.ID, true); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}
	if _, err := f.uc.SendMessage(ctx, "store-1", view.ID, SendMessageInput{
		Content: "done typing", Type: entity.MessageTypeText,
	}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if typers := f.uc.ActiveTypers(view.ID); len(typers) != 0 {
		t.Fatalf("expected send to clear typing, got %v", typers)
	}
}

func TestListMessagesPagination(t *testing.T) {
	f := newFixture(activeStore("store-1"))
	ctx := context.Background()

	view, err := f.uc.GetOrCreateConversation(ctx, entity.AdminParticipantID, "store-1")
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := f.uc.SendMessage(ctx, entity.AdminParticipantID, view.ID, SendMessageInput{
			Content: string(rune('a' + i)), Type: entity.MessageTypeText,
		}); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}

	page1, total, err := f.uc.ListMessages(ctx, "store-1", view.ID, 1, 2)
	if err != nil {
		t.Fatalf("ListMessages page 1: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Fatalf("page 1: got %d items, total %d", len(page1), total)
	}
	page3, _, err := f.uc.ListMessages(ctx, "store-1", view.ID, 3, 2)
	if err != nil {
		t.Fatalf("ListMessages page 3: %v", err)
	}
	if len(page3) != 1 || page3[0].Content != "e" {
		t.Fatalf("expected last page to hold the newest message, got %+v", page3)
	}

	if _, _, err := f.uc.ListMessages(ctx, "intruder", view.ID, 1, 10); !errors.Is(err, "FORBIDDEN") {
		t.Fatalf("non-participant list: expected FORBIDDEN, got %v", err)
	}
}
