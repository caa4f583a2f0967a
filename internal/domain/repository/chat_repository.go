package repository

import (
	"context"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
)

type ChatRepository interface {
	// GetOrCreate resolves the conversation for an unordered participant
	// pair, creating it if absent. The bool reports whether a new row was
	// created. Concurrent calls for the same pair must return the same row.
	GetOrCreate(ctx context.Context, participantA, participantB string) (*entity.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListByParticipant(ctx context.Context, participantID string) ([]*entity.Conversation, error)

	// AppendMessage persists the message and the owning conversation's
	// rollup state (preview, lastMessageAt, recipient unread bump) as one
	// atomic unit: either both land or neither does.
	AppendMessage(ctx context.Context, message *entity.Message, recipientID string) error
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)

	// MarkMessagesRead flips isRead on every unread message not authored by
	// the viewer and zeroes the viewer's unread counter in the same write.
	// Returns how many messages changed; zero on a repeat call.
	MarkMessagesRead(ctx context.Context, conversationID, viewerID string) (int, error)
}
