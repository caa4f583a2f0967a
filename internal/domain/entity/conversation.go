package entity

import (
	"sort"
	"strings"
	"time"
)

// AdminParticipantID is the fixed identity of the platform admin in chat.
// Store participants use their store ID; conversations may pair the admin
// with a store or two stores with each other.
const AdminParticipantID = "admin"

type Conversation struct {
	ID            string         `json:"id" firestore:"id"`
	Participants  []string       `json:"participants" firestore:"participants"`
	PairKey       string         `json:"-" firestore:"pairKey"`
	LastMessage   string         `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	UnreadCounts  map[string]int `json:"unread_counts" firestore:"unreadCounts"` // participant ID -> unread messages
	CreatedAt     time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// ConversationPairKey builds the canonical key for an unordered participant
// pair. One conversation exists per key; using it as the document ID makes
// concurrent first-contact creates converge on the same row.
func ConversationPairKey(participantA, participantB string) string {
	pair := []string{participantA, participantB}
	sort.Strings(pair)
	return strings.Join(pair, "__")
}

// Counterparty returns the other side of the conversation for the given
// viewer, or "" if the viewer is not a participant.
func (c *Conversation) Counterparty(viewerID string) string {
	for _, p := range c.Participants {
		if p != viewerID {
			return p
		}
	}
	return ""
}

// HasParticipant reports whether id is one of the two sides.
func (c *Conversation) HasParticipant(id string) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// UnreadFor returns the viewer's own unread count.
func (c *Conversation) UnreadFor(viewerID string) int {
	if c.UnreadCounts == nil {
		return 0
	}
	return c.UnreadCounts[viewerID]
}
