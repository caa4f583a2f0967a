// Package client is a Go client for the BharatVerse chat API. It wraps the
// REST surface with typed calls and layers a polling Session on top for
// callers that want a live conversation view without holding a socket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Wire shapes. These mirror the server's JSON; the client stays decoupled
// from the server's internal types.

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderType     string    `json:"sender_type"`
	Content        string    `json:"content"`
	Type           string    `json:"type"`
	MediaURL       string    `json:"media_url,omitempty"`
	MediaType      string    `json:"media_type,omitempty"`
	MediaSize      int64     `json:"media_size,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	LogoURL string `json:"logo_url,omitempty"`
}

type Conversation struct {
	ID            string      `json:"id"`
	Counterparty  Participant `json:"counterparty"`
	LastMessage   string      `json:"last_message,omitempty"`
	LastMessageAt *time.Time  `json:"last_message_at,omitempty"`
	UnreadCount   int         `json:"unread_count"`
	CreatedAt     time.Time   `json:"created_at"`
}

type SendMessageRequest struct {
	Content   string `json:"content,omitempty"`
	Type      string `json:"type"`
	MediaURL  string `json:"media_url,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	MediaSize int64  `json:"media_size,omitempty"`
}

// APIError is a structured error returned by the server.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
}

type messagePage struct {
	Items      []*Message `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// Client issues authenticated calls against one chat backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateConversation resolves (or creates) the conversation with a
// counterparty. Repeat calls return the same conversation.
func (c *Client) CreateConversation(ctx context.Context, counterpartyID string) (*Conversation, error) {
	var conversation Conversation
	err := c.do(ctx, http.MethodPost, "/v1/conversations", map[string]string{
		"counterparty_id": counterpartyID,
	}, &conversation)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (c *Client) ListConversations(ctx context.Context, search string) ([]*Conversation, error) {
	path := "/v1/conversations"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	var conversations []*Conversation
	if err := c.do(ctx, http.MethodGet, path, nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// ListMessages fetches one page of history, oldest first. Total is the
// conversation's full message count.
func (c *Client) ListMessages(ctx context.Context, conversationID string, page, limit int) ([]*Message, int64, error) {
	path := fmt.Sprintf("/v1/conversations/%s/messages?page=%s&limit=%s",
		url.PathEscape(conversationID), strconv.Itoa(page), strconv.Itoa(limit))

	var pageData messagePage
	if err := c.do(ctx, http.MethodGet, path, nil, &pageData); err != nil {
		return nil, 0, err
	}
	return pageData.Items, pageData.Total, nil
}

func (c *Client) SendMessage(ctx context.Context, conversationID string, req SendMessageRequest) (*Message, error) {
	var message Message
	path := fmt.Sprintf("/v1/conversations/%s/messages", url.PathEscape(conversationID))
	if err := c.do(ctx, http.MethodPost, path, req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkRead marks all counterpart messages read; returns how many changed.
func (c *Client) MarkRead(ctx context.Context, conversationID string) (int, error) {
	var result struct {
		Updated int `json:"updated"`
	}
	path := fmt.Sprintf("/v1/conversations/%s/read", url.PathEscape(conversationID))
	if err := c.do(ctx, http.MethodPut, path, nil, &result); err != nil {
		return 0, err
	}
	return result.Updated, nil
}

// SetTyping signals typing state; returns who is currently typing.
func (c *Client) SetTyping(ctx context.Context, conversationID string, isTyping bool) ([]string, error) {
	var result struct {
		Typing []string `json:"typing"`
	}
	path := fmt.Sprintf("/v1/conversations/%s/typing", url.PathEscape(conversationID))
	if err := c.do(ctx, http.MethodPost, path, map[string]bool{"is_typing": isTyping}, &result); err != nil {
		return nil, err
	}
	return result.Typing, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		if env.Error != nil {
			env.Error.StatusCode = resp.StatusCode
			return env.Error
		}
		return &APIError{Code: "UNKNOWN", Message: "request failed", StatusCode: resp.StatusCode}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}

	return nil
}
