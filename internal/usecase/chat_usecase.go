package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
	"github.com/Adnan8101/bharatverse/internal/domain/repository"
	"github.com/Adnan8101/bharatverse/internal/domain/service"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/presence"
	"github.com/Adnan8101/bharatverse/internal/infrastructure/ratelimit"
	ws "github.com/Adnan8101/bharatverse/internal/infrastructure/websocket"
	"github.com/Adnan8101/bharatverse/pkg/errors"
	"github.com/Adnan8101/bharatverse/pkg/logger"
)

// ParticipantInfo is the display shape of one side of a conversation.
type ParticipantInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // "admin" or "store"
	LogoURL string `json:"logo_url,omitempty"`
}

// ConversationView is a conversation annotated for one viewer: the other
// side's display info plus the viewer's own unread count.
type ConversationView struct {
	ID            string          `json:"id"`
	Counterparty  ParticipantInfo `json:"counterparty"`
	LastMessage   string          `json:"last_message,omitempty"`
	LastMessageAt *time.Time      `json:"last_message_at,omitempty"`
	UnreadCount   int             `json:"unread_count"`
	CreatedAt     time.Time       `json:"created_at"`

	// Populated on get-or-create so the UI can render without a second call.
	RecentMessages []*entity.Message `json:"recent_messages,omitempty"`
}

type SendMessageInput struct {
	Content   string `json:"content" validate:"omitempty,max=4000"`
	Type      string `json:"type" validate:"required,oneof=text media"`
	MediaURL  string `json:"media_url" validate:"omitempty,url"`
	MediaType string `json:"media_type" validate:"omitempty,max=100"`
	MediaSize int64  `json:"media_size" validate:"omitempty,min=0"`
}

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	storeRepo   repository.StoreRepository
	wsManager   *ws.Manager
	mailer      service.MailService
	typing      *presence.Tracker
	rateLimiter *ratelimit.RateLimiter
	adminName   string
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	storeRepo repository.StoreRepository,
	wsManager *ws.Manager,
	mailer service.MailService,
	typing *presence.Tracker,
	rateLimiter *ratelimit.RateLimiter,
	adminName string,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		storeRepo:   storeRepo,
		wsManager:   wsManager,
		mailer:      mailer,
		typing:      typing,
		rateLimiter: rateLimiter,
		adminName:   adminName,
	}
}

// GetOrCreateConversation resolves the single conversation between the
// requester and the counterparty, creating it on first contact. Repeat calls
// for the same pair always land on the same conversation.
func (uc *ChatUseCase) GetOrCreateConversation(ctx context.Context, requesterID, counterpartyID string) (*ConversationView, error) {
	if counterpartyID == "" {
		return nil, errors.BadRequest("Counterparty ID is required", nil)
	}
	if counterpartyID == requesterID {
		return nil, errors.BadRequest("Cannot open a conversation with yourself", nil)
	}

	// Both Admin<->Store and Store<->Store pairs are allowed. A store-side
	// counterparty must exist and not be suspended.
	if counterpartyID != entity.AdminParticipantID {
		store, err := uc.storeRepo.GetByID(ctx, counterpartyID)
		if err != nil {
			return nil, err
		}
		if store.Status == entity.StoreStatusSuspended {
			return nil, errors.Forbidden("Store is suspended", nil)
		}
	}

	if allowed, waitTime := uc.rateLimiter.Allow(requesterID, "create_conversation"); !allowed {
		return nil, errors.TooManyRequests(
			fmt.Sprintf("Too many new conversations. Try again in %v", waitTime.Round(time.Second)), waitTime)
	}

	conversation, created, err := uc.chatRepo.GetOrCreate(ctx, requesterID, counterpartyID)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("Chat: conversation %s created between %s and %s", conversation.ID, requesterID, counterpartyID)
	}

	view := uc.viewFor(ctx, conversation, requesterID)
	view.RecentMessages, err = uc.recentMessages(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// recentMessages returns the newest page of history, in chronological order.
func (uc *ChatUseCase) recentMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	const recentLimit = 50

	messages, total, err := uc.chatRepo.ListMessages(ctx, conversationID, recentLimit, 0)
	if err != nil {
		return nil, err
	}
	if total > recentLimit {
		messages, _, err = uc.chatRepo.ListMessages(ctx, conversationID, recentLimit, int(total)-recentLimit)
		if err != nil {
			return nil, err
		}
	}
	return messages, nil
}

// GetConversation returns one conversation annotated for the viewer.
func (uc *ChatUseCase) GetConversation(ctx context.Context, viewerID, conversationID string) (*ConversationView, error) {
	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(viewerID) {
		return nil, errors.Forbidden("You are not a participant of this conversation", nil)
	}
	return uc.viewFor(ctx, conversation, viewerID), nil
}

// ListConversations returns the viewer's conversations newest-activity-first.
// Conversations that never carried a message sort last. An optional search
// term filters on the counterparty store's name or username.
func (uc *ChatUseCase) ListConversations(ctx context.Context, viewerID, search string) ([]*ConversationView, error) {
	conversations, err := uc.chatRepo.ListByParticipant(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		if a.LastMessageAt.IsZero() != b.LastMessageAt.IsZero() {
			return !a.LastMessageAt.IsZero()
		}
		if a.LastMessageAt.IsZero() {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.LastMessageAt.After(b.LastMessageAt)
	})

	search = strings.ToLower(strings.TrimSpace(search))

	views := make([]*ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		view := uc.viewFor(ctx, conversation, viewerID)
		if search != "" &&
			!strings.Contains(strings.ToLower(view.Counterparty.Name), search) &&
			!strings.Contains(strings.ToLower(view.Counterparty.ID), search) {
			continue
		}
		views = append(views, view)
	}

	return views, nil
}

// SendMessage appends a message and updates the conversation rollup in one
// atomic write, then fans out push hints. The poll API remains authoritative;
// a lost push only delays delivery until the next poll.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID, conversationID string, input SendMessageInput) (*entity.Message, error) {
	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, errors.Forbidden("You are not a participant of this conversation", nil)
	}

	content := strings.TrimSpace(input.Content)
	switch input.Type {
	case entity.MessageTypeText:
		if content == "" {
			return nil, errors.BadRequest("Message content cannot be empty", nil)
		}
	case entity.MessageTypeMedia:
		if input.MediaURL == "" {
			return nil, errors.BadRequest("Media messages require a media URL", nil)
		}
	default:
		return nil, errors.BadRequest("Message type must be text or media", nil)
	}

	if allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message"); !allowed {
		return nil, errors.TooManyRequests(
			fmt.Sprintf("Sending too fast. Try again in %v", waitTime.Round(time.Second)), waitTime)
	}

	message := &entity.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     entity.SenderTypeFor(senderID),
		Content:        content,
		Type:           input.Type,
		MediaURL:       input.MediaURL,
		MediaType:      input.MediaType,
		MediaSize:      input.MediaSize,
		IsRead:         false,
		CreatedAt:      time.Now().UTC(),
	}

	recipientID := conversation.Counterparty(senderID)
	if err := uc.chatRepo.AppendMessage(ctx, message, recipientID); err != nil {
		return nil, err
	}

	// Sending implies the sender stopped typing.
	uc.typing.Stop(conversationID, senderID)

	uc.wsManager.SendToRoom(conversationID, ws.NewEvent(ws.EventNewMessage, conversationID, message).Encode(), senderID)
	uc.wsManager.SendToParticipant(recipientID, ws.NewEvent(ws.EventConversationUpdate, conversationID, map[string]interface{}{
		"last_message":    message.Content,
		"last_message_at": message.CreatedAt,
		"sender_id":       senderID,
	}).Encode())

	if senderID == entity.AdminParticipantID {
		go uc.notifyStore(recipientID, message)
	}

	return message, nil
}

// notifyStore emails the store about a new admin message. Best-effort: a mail
// failure is logged and never surfaces to the sender.
func (uc *ChatUseCase) notifyStore(storeID string, message *entity.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		logger.Warn("Chat: skipping mail notification, store %s lookup failed: %v", storeID, err)
		return
	}
	if store.ContactEmail == "" {
		return
	}

	preview := message.Content
	if message.Type == entity.MessageTypeMedia && preview == "" {
		preview = "[attachment]"
	}
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}

	if err := uc.mailer.SendNewMessageNotification(ctx, store.ContactEmail, store.Name, preview); err != nil {
		logger.Warn("Chat: mail notification to %s failed: %v", store.ContactEmail, err)
	}
}

// ListMessages returns one page of a conversation's history in chronological
// order, oldest first.
func (uc *ChatUseCase) ListMessages(ctx context.Context, viewerID, conversationID string, page, pageSize int) ([]*entity.Message, int64, error) {
	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if !conversation.HasParticipant(viewerID) {
		return nil, 0, errors.Forbidden("You are not a participant of this conversation", nil)
	}

	offset := (page - 1) * pageSize
	return uc.chatRepo.ListMessages(ctx, conversationID, pageSize, offset)
}

// MarkConversationRead flips every message from the other side to read and
// zeroes the viewer's unread counter. Safe to repeat; the second call is a
// no-op and pushes nothing.
func (uc *ChatUseCase) MarkConversationRead(ctx context.Context, viewerID, conversationID string) (int, error) {
	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conversation.HasParticipant(viewerID) {
		return 0, errors.Forbidden("You are not a participant of this conversation", nil)
	}

	changed, err := uc.chatRepo.MarkMessagesRead(ctx, conversationID, viewerID)
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		uc.wsManager.SendToRoom(conversationID, ws.NewEvent(ws.EventMessagesRead, conversationID, map[string]interface{}{
			"reader_id": viewerID,
			"count":     changed,
		}).Encode(), viewerID)
	}

	return changed, nil
}

// SetTyping records or clears a typing signal and fans it out to the other
// side. The signal expires on its own if the client never sends a stop.
func (uc *ChatUseCase) SetTyping(ctx context.Context, participantID, conversationID string, isTyping bool) error {
	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(participantID) {
		return errors.Forbidden("You are not a participant of this conversation", nil)
	}

	if isTyping {
		if allowed, _ := uc.rateLimiter.Allow(participantID, "typing"); !allowed {
			// Dropping a typing signal is harmless; never error on it.
			return nil
		}
		uc.typing.Start(conversationID, participantID)
	} else {
		uc.typing.Stop(conversationID, participantID)
	}

	uc.wsManager.SendToRoom(conversationID, ws.NewEvent(ws.EventTypingIndicator, conversationID, map[string]interface{}{
		"participant_id": participantID,
		"is_typing":      isTyping,
	}).Encode(), participantID)

	return nil
}

// ActiveTypers returns who is currently typing in a conversation, for
// clients that poll instead of holding a socket.
func (uc *ChatUseCase) ActiveTypers(conversationID string) []string {
	return uc.typing.Typing(conversationID)
}

// OnTyping and OnMarkRead let the WebSocket manager forward client frames
// into the chat layer without importing it.

func (uc *ChatUseCase) OnTyping(participantID, conversationID string, isTyping bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := uc.SetTyping(ctx, participantID, conversationID, isTyping); err != nil {
		logger.Warn("Chat: typing event from %s rejected: %v", participantID, err)
	}
}

func (uc *ChatUseCase) OnMarkRead(participantID, conversationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := uc.MarkConversationRead(ctx, participantID, conversationID); err != nil {
		logger.Warn("Chat: mark_read event from %s rejected: %v", participantID, err)
	}
}

// viewFor builds the viewer-specific shape of a conversation. A failed store
// lookup degrades to an ID-only display name rather than failing the list.
func (uc *ChatUseCase) viewFor(ctx context.Context, conversation *entity.Conversation, viewerID string) *ConversationView {
	counterpartyID := conversation.Counterparty(viewerID)

	info := ParticipantInfo{ID: counterpartyID, Type: entity.SenderTypeFor(counterpartyID)}
	if counterpartyID == entity.AdminParticipantID {
		info.Name = uc.adminName
	} else if store, err := uc.storeRepo.GetByID(ctx, counterpartyID); err == nil {
		info.Name = store.Name
		info.LogoURL = store.LogoURL
	} else {
		info.Name = counterpartyID
	}

	view := &ConversationView{
		ID:           conversation.ID,
		Counterparty: info,
		LastMessage:  conversation.LastMessage,
		UnreadCount:  conversation.UnreadFor(viewerID),
		CreatedAt:    conversation.CreatedAt,
	}
	if !conversation.LastMessageAt.IsZero() {
		at := conversation.LastMessageAt
		view.LastMessageAt = &at
	}

	return view
}
