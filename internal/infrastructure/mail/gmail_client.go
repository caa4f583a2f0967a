package mail

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailClient sends notification mail through the Gmail API using an OAuth2
// refresh token. Credentials come from the platform's Gmail account.
type GmailClient struct {
	service *gmail.Service
	sender  string
}

func NewGmailClient(ctx context.Context, clientID, clientSecret, refreshToken, sender string) (*GmailClient, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %v", err)
	}

	return &GmailClient{
		service: service,
		sender:  sender,
	}, nil
}

func (g *GmailClient) SendNewMessageNotification(ctx context.Context, to, storeName, preview string) error {
	subject := "New message from BharatVerse support"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYou have a new message from the BharatVerse team:\r\n\r\n%s\r\n\r\nOpen your seller dashboard to reply.\r\n",
		storeName, preview,
	)

	raw := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		g.sender, to, subject, body,
	)

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	_, err := g.service.Users.Messages.Send("me", message).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send notification mail: %v", err)
	}

	return nil
}
