// Package imapfetch is the IMAP alternative to the Gmail REST fetcher. It
// authenticates with SASL OAUTHBEARER using the same decrypted access token
// and returns the same digest shape, so the summary pipeline does not care
// which fetch path is configured.
package imapfetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"

	summarydomain "mailbrief-backend/internal/summary/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
)

const (
	defaultAddr = "imap.gmail.com:993"

	maxBodyChars = 5000
	snippetChars = 200
)

type Service struct {
	addr string
}

func NewService(addr string) *Service {
	if addr == "" {
		addr = defaultAddr
	}
	return &Service{addr: addr}
}

// GetUnreadMessages fetches up to maxResults unseen INBOX messages. The
// mailbox is opened read-only so fetching bodies does not flip \Seen flags.
func (s *Service) GetUnreadMessages(ctx context.Context, email, accessToken string, maxResults int64) ([]*summarydomain.EmailDigest, error) {
	host := s.addr
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}

	c, err := client.DialTLS(s.addr, &tls.Config{ServerName: host})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to IMAP server: %v", err)
	}
	defer c.Logout()

	saslClient := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
		Username: email,
		Token:    accessToken,
		Host:     host,
		Port:     993,
	})
	if err := c.Authenticate(saslClient); err != nil {
		return nil, fmt.Errorf("IMAP authentication failed: %v", err)
	}

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("unable to select INBOX: %v", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("unable to search unread messages: %v", err)
	}

	if len(uids) == 0 {
		return []*summarydomain.EmailDigest{}, nil
	}

	// Keep only the most recent maxResults UIDs, preserving server order.
	if maxResults > 0 && int64(len(uids)) > maxResults {
		uids = uids[int64(len(uids))-maxResults:]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, imap.FetchInternalDate, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	digests := make([]*summarydomain.EmailDigest, 0, len(uids))
	for msg := range messages {
		digests = append(digests, convertImapMessage(msg, section))
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("unable to fetch messages: %v", err)
	}

	return digests, nil
}

func convertImapMessage(msg *imap.Message, section *imap.BodySectionName) *summarydomain.EmailDigest {
	subject := "No Subject"
	from := "Unknown"
	if msg.Envelope != nil {
		if msg.Envelope.Subject != "" {
			subject = msg.Envelope.Subject
		}
		if len(msg.Envelope.From) > 0 {
			from = formatAddress(msg.Envelope.From[0])
		}
	}

	body := extractPlainText(msg.GetBody(section))
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}

	snippet := strings.Join(strings.Fields(body), " ")
	if len(snippet) > snippetChars {
		snippet = snippet[:snippetChars]
	}

	return &summarydomain.EmailDigest{
		MessageID:  fmt.Sprintf("%d", msg.Uid),
		Subject:    subject,
		From:       from,
		Snippet:    snippet,
		Body:       body,
		ReceivedAt: msg.InternalDate,
	}
}

func formatAddress(addr *imap.Address) string {
	if addr.PersonalName != "" {
		return fmt.Sprintf("%s <%s>", addr.PersonalName, addr.Address())
	}
	return addr.Address()
}

// extractPlainText reads the first text/plain inline part of the message.
// Messages without a plain part yield an empty body, which is not an error.
func extractPlainText(body io.Reader) string {
	if body == nil {
		return ""
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		return ""
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ""
		}

		if h, ok := p.Header.(*mail.InlineHeader); ok {
			contentType, _, err := h.ContentType()
			if err == nil && contentType == "text/plain" {
				data, err := io.ReadAll(p.Body)
				if err == nil {
					return string(data)
				}
			}
		}
	}

	return ""
}
