package entity

import "time"

const (
	StoreStatusActive    = "active"
	StoreStatusSuspended = "suspended"
)

// Store is a vendor storefront as the chat core sees it: identity plus the
// display metadata the conversation list needs.
type Store struct {
	ID           string    `json:"id" firestore:"id"`
	Name         string    `json:"name" firestore:"name"`
	Username     string    `json:"username" firestore:"username"`
	ContactEmail string    `json:"contact_email" firestore:"contactEmail"`
	LogoURL      string    `json:"logo_url,omitempty" firestore:"logoUrl,omitempty"`
	Status       string    `json:"status" firestore:"status"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}
