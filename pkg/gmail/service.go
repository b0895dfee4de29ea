package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	summarydomain "mailbrief-backend/internal/summary/domain"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	// maxBodyChars bounds the plain-text body handed to the summarizer.
	maxBodyChars = 5000
	// snippetChars bounds the fallback snippet built from the body.
	snippetChars = 200
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// newGmailClient creates a Gmail API client from a decrypted access token.
// Token refresh is not handled here; the refresh coordinator keeps stored
// tokens fresh on its own cadence.
func (s *Service) newGmailClient(ctx context.Context, accessToken string) (*gmail.Service, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	srv, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// GetUnreadMessages retrieves up to maxResults unread messages with subject,
// sender, snippet and a truncated plain-text body, in the order Gmail returns
// them. Any provider error surfaces as a fetch failure.
func (s *Service) GetUnreadMessages(ctx context.Context, email, accessToken string, maxResults int64) ([]*summarydomain.EmailDigest, error) {
	srv, err := s.newGmailClient(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user := "me"

	if maxResults <= 0 {
		maxResults = 50
	}
	if maxResults > 500 {
		maxResults = 500 // Gmail API maximum
	}

	listResp, err := srv.Users.Messages.List(user).Q("is:unread").MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %v", err)
	}

	if len(listResp.Messages) == 0 {
		return []*summarydomain.EmailDigest{}, nil
	}

	digests := make([]*summarydomain.EmailDigest, 0, len(listResp.Messages))
	for _, msg := range listResp.Messages {
		fullMsg, err := srv.Users.Messages.Get(user, msg.Id).Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve message %s: %v", msg.Id, err)
		}
		digests = append(digests, convertMessageToDigest(fullMsg))
	}

	return digests, nil
}

// Helper functions

func convertMessageToDigest(msg *gmail.Message) *summarydomain.EmailDigest {
	subject := getHeader(msg.Payload.Headers, "Subject")
	if subject == "" {
		subject = "No Subject"
	}
	from := getHeader(msg.Payload.Headers, "From")
	if from == "" {
		from = "Unknown"
	}

	body := getPlainTextBody(msg.Payload)
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}

	snippet := msg.Snippet
	if snippet == "" && body != "" {
		snippet = strings.Join(strings.Fields(body), " ")
		if len(snippet) > snippetChars {
			snippet = snippet[:snippetChars]
		}
	}

	return &summarydomain.EmailDigest{
		MessageID:  msg.Id,
		ThreadID:   msg.ThreadId,
		Subject:    subject,
		From:       from,
		Snippet:    snippet,
		Body:       body,
		ReceivedAt: time.Unix(msg.InternalDate/1000, 0),
	}
}

func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

// getPlainTextBody returns the flattened plain-text body of a message.
// If the payload itself is text/plain its body is used; otherwise the first
// text/plain part found in a recursive walk wins. A message with no plain
// part yields an empty body, which is not an error.
func getPlainTextBody(payload *gmail.MessagePart) string {
	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			return string(data)
		}
	}

	var plainBody string

	var findBody func(parts []*gmail.MessagePart) bool
	findBody = func(parts []*gmail.MessagePart) bool {
		for _, part := range parts {
			if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
				data, err := base64.URLEncoding.DecodeString(part.Body.Data)
				if err == nil {
					plainBody = string(data)
					return true
				}
			}
			if len(part.Parts) > 0 && findBody(part.Parts) {
				return true
			}
		}
		return false
	}

	findBody(payload.Parts)
	return plainBody
}
