package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session state values.
const (
	StateIdle    = "idle"
	StateLoading = "loading"
	StateSynced  = "synced"
)

// Pending send status values.
const (
	PendingSending = "sending"
	PendingFailed  = "failed"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultPageSize     = 50
)

// PendingMessage is a locally-echoed send that the server has not confirmed
// yet. It carries a temporary ID and is dropped, never mutated, once the
// server's copy arrives or the send fails permanently.
type PendingMessage struct {
	TempID  string
	Message Message
	Status  string
	Err     error
}

// Snapshot is one consistent view of a conversation: confirmed history plus
// the pending overlay, in display order.
type Snapshot struct {
	State    string
	Messages []Message
	Pending  []PendingMessage
	Total    int64
	LastSync time.Time
}

// Session keeps one conversation's view fresh by polling. The server remains
// the source of truth; the session only ever replaces its confirmed slice
// with what the server returned.
type Session struct {
	client         *Client
	conversationID string
	pollInterval   time.Duration
	pageSize       int
	onUpdate       func(Snapshot)

	mu       sync.Mutex
	state    string
	messages []Message
	total    int64
	pending  []PendingMessage
	lastSync time.Time
	cancel   context.CancelFunc
}

type SessionOption func(*Session)

func WithPollInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

func WithPageSize(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithOnUpdate registers a callback fired after every state change, with the
// snapshot that resulted. Called from the session's goroutine.
func WithOnUpdate(fn func(Snapshot)) SessionOption {
	return func(s *Session) { s.onUpdate = fn }
}

func NewSession(c *Client, conversationID string, opts ...SessionOption) *Session {
	s := &Session{
		client:         c,
		conversationID: conversationID,
		pollInterval:   defaultPollInterval,
		pageSize:       defaultPageSize,
		state:          StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start performs the initial fetch and begins polling. It returns once the
// first fetch settles; polling continues until ctx is cancelled or Stop is
// called.
func (s *Session) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.state = StateLoading
	s.mu.Unlock()

	if err := s.poll(ctx); err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.cancel = nil
		s.mu.Unlock()
		cancel()
		return err
	}

	go s.run(ctx)
	return nil
}

// Stop halts polling. The last snapshot stays readable.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// A failed poll keeps the stale snapshot; the next tick retries.
			_ = s.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) lastPage(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(s.pageSize) - 1) / int64(s.pageSize))
}

// poll fetches the newest page and replaces the confirmed slice wholesale.
// Pending entries whose server copy arrived are dropped.
func (s *Session) poll(ctx context.Context) error {
	// The previous poll's total locates the newest page; every response
	// carries a fresh total, so a stale guess costs one follow-up fetch at
	// most, and steady state is a single request per tick.
	s.mu.Lock()
	page := s.lastPage(s.total)
	s.mu.Unlock()

	messages, total, err := s.client.ListMessages(ctx, s.conversationID, page, s.pageSize)
	if err != nil {
		return err
	}
	if fresh := s.lastPage(total); fresh != page {
		messages, total, err = s.client.ListMessages(ctx, s.conversationID, fresh, s.pageSize)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.state = StateSynced
	s.messages = deref(messages)
	s.total = total
	s.lastSync = time.Now()
	s.prunePendingLocked()
	snapshot := s.snapshotLocked()
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
	return nil
}

// Send performs an optimistic send: the message appears in the snapshot's
// pending overlay immediately and the network call runs inline. On success
// the confirmed copy is appended and the overlay entry dropped; on failure
// the entry is marked failed so the UI can offer a retry.
func (s *Session) Send(ctx context.Context, req SendMessageRequest) (*Message, error) {
	tempID := "temp-" + uuid.New().String()

	s.mu.Lock()
	s.pending = append(s.pending, PendingMessage{
		TempID: tempID,
		Message: Message{
			ID:             tempID,
			ConversationID: s.conversationID,
			Content:        req.Content,
			Type:           req.Type,
			MediaURL:       req.MediaURL,
			MediaType:      req.MediaType,
			MediaSize:      req.MediaSize,
			CreatedAt:      time.Now(),
		},
		Status: PendingSending,
	})
	s.mu.Unlock()

	confirmed, err := s.client.SendMessage(ctx, s.conversationID, req)

	s.mu.Lock()
	if err != nil {
		for i := range s.pending {
			if s.pending[i].TempID == tempID {
				s.pending[i].Status = PendingFailed
				s.pending[i].Err = err
				break
			}
		}
		s.mu.Unlock()
		return nil, err
	}

	s.dropPendingLocked(tempID)
	s.appendConfirmedLocked(*confirmed)
	snapshot := s.snapshotLocked()
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
	return confirmed, nil
}

// Retry re-sends a failed pending message under a fresh temp ID.
func (s *Session) Retry(ctx context.Context, tempID string) (*Message, error) {
	s.mu.Lock()
	var req *SendMessageRequest
	for _, p := range s.pending {
		if p.TempID == tempID && p.Status == PendingFailed {
			req = &SendMessageRequest{
				Content:   p.Message.Content,
				Type:      p.Message.Type,
				MediaURL:  p.Message.MediaURL,
				MediaType: p.Message.MediaType,
				MediaSize: p.Message.MediaSize,
			}
			break
		}
	}
	if req != nil {
		s.dropPendingLocked(tempID)
	}
	s.mu.Unlock()

	if req == nil {
		return nil, &APIError{Code: "NOT_FOUND", Message: "no failed send with that ID"}
	}
	return s.Send(ctx, *req)
}

// MarkRead marks the conversation read on the server.
func (s *Session) MarkRead(ctx context.Context) (int, error) {
	return s.client.MarkRead(ctx, s.conversationID)
}

// SetTyping forwards a typing signal.
func (s *Session) SetTyping(ctx context.Context, isTyping bool) error {
	_, err := s.client.SetTyping(ctx, s.conversationID, isTyping)
	return err
}

// Snapshot returns the current merged view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Connected reports whether the last poll landed recently enough to trust
// the snapshot: within two poll intervals.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSync.IsZero() {
		return false
	}
	return time.Since(s.lastSync) <= 2*s.pollInterval
}

func (s *Session) snapshotLocked() Snapshot {
	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)
	pending := make([]PendingMessage, len(s.pending))
	copy(pending, s.pending)

	return Snapshot{
		State:    s.state,
		Messages: messages,
		Pending:  pending,
		Total:    s.total,
		LastSync: s.lastSync,
	}
}

func (s *Session) appendConfirmedLocked(message Message) {
	for _, m := range s.messages {
		if m.ID == message.ID {
			return
		}
	}
	s.messages = append(s.messages, message)
	sort.SliceStable(s.messages, func(i, j int) bool {
		return s.messages[i].CreatedAt.Before(s.messages[j].CreatedAt)
	})
	s.total++
}

// prunePendingLocked drops pending entries whose confirmed copy is already
// in the fetched history. Matching is by content and type; the temp entry is
// discarded, never rewritten.
func (s *Session) prunePendingLocked() {
	if len(s.pending) == 0 {
		return
	}

	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.Status == PendingSending && s.confirmedLocked(p) {
			continue
		}
		kept = append(kept, p)
	}
	s.pending = kept
}

// dropPendingLocked removes the pending entry whose TempID matches.
func (s *Session) dropPendingLocked(tempID string) {
	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.TempID == tempID {
			continue
		}
		kept = append(kept, p)
	}
	s.pending = kept
}

func (s *Session) confirmedLocked(p PendingMessage) bool {
	for _, m := range s.messages {
		if m.Content == p.Message.Content && m.Type == p.Message.Type &&
			m.MediaURL == p.Message.MediaURL && !m.CreatedAt.Before(p.Message.CreatedAt.Add(-time.Minute)) {
			return true
		}
	}
	return false
}

func deref(messages []*Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}
