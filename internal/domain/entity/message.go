package entity

import "time"

const (
	MessageTypeText  = "text"
	MessageTypeMedia = "media"

	SenderTypeAdmin = "admin"
	SenderTypeStore = "store"
)

// Message is one immutable unit of chat content. Only IsRead ever changes
// after creation, and only through the read-state tracker.
type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	SenderType     string    `json:"sender_type" firestore:"senderType"` // "admin" or "store"
	Content        string    `json:"content" firestore:"content"`        // text body, or caption for media
	Type           string    `json:"type" firestore:"type"`              // "text" or "media"
	MediaURL       string    `json:"media_url,omitempty" firestore:"mediaUrl,omitempty"`
	MediaType      string    `json:"media_type,omitempty" firestore:"mediaType,omitempty"`
	MediaSize      int64     `json:"media_size,omitempty" firestore:"mediaSize,omitempty"`
	IsRead         bool      `json:"is_read" firestore:"isRead"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}

// SenderTypeFor maps a participant ID to its sender role.
func SenderTypeFor(participantID string) string {
	if participantID == AdminParticipantID {
		return SenderTypeAdmin
	}
	return SenderTypeStore
}
