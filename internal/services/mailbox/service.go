// -----------------------------------------------------------------------
// Mailbox Intake - Polls an IMAP folder for emailed run requests
// Matching messages carry preferences in the body and a resume PDF attached
// -----------------------------------------------------------------------

package mailbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/jobhunter/internal/common"
)

// IntakeRequest is one emailed run request: the message body becomes the
// preferences text, the first PDF attachment becomes the resume, and the
// sender receives the result.
type IntakeRequest struct {
	UID             uint32
	From            string
	ReplyTo         string
	Subject         string
	PreferencesText string
	ResumePDF       []byte
	ResumeFilename  string
	ReceivedAt      time.Time
}

// Service reads run requests from an IMAP mailbox. Connections are opened
// per call and closed before returning, matching the poll cadence.
type Service struct {
	config *common.Config
	logger arbor.ILogger
}

// NewService creates the mailbox intake service.
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// IsConfigured reports whether the mailbox has the minimum settings to poll.
func (s *Service) IsConfigured() bool {
	cfg := s.config.Mailbox
	return cfg.Enabled && cfg.Host != "" && cfg.Username != "" && cfg.Password != ""
}

// FetchRequests returns the unseen messages whose subject carries the
// configured prefix, parsed into intake requests. Messages stay unseen
// until MarkProcessed; a crashed run leaves its request in the mailbox.
func (s *Service) FetchRequests(ctx context.Context) ([]IntakeRequest, error) {
	cfg := s.config.Mailbox
	if !s.IsConfigured() {
		return nil, fmt.Errorf("mailbox is not configured")
	}

	c, err := s.connect(cfg)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	mbox, err := c.Select(s.folder(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to select folder %s: %w", s.folder(), err)
	}
	if mbox.Messages == 0 {
		s.logger.Debug().Str("folder", s.folder()).Msg("Mailbox is empty")
		return nil, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search for unseen messages: %w", err)
	}
	if len(uids) == 0 {
		s.logger.Debug().Str("folder", s.folder()).Msg("No unseen messages")
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	var requests []IntakeRequest
	for msg := range messages {
		if msg == nil || msg.Envelope == nil {
			continue
		}

		subject := msg.Envelope.Subject
		if !matchesPrefix(subject, cfg.SubjectPrefix) {
			continue
		}

		body := msg.GetBody(section)
		if body == nil {
			s.logger.Warn().Int64("uid", int64(msg.Uid)).Msg("Message has no body section")
			continue
		}

		parsed, err := parseMessage(body)
		if err != nil {
			s.logger.Warn().Err(err).Int64("uid", int64(msg.Uid)).Msg("Failed to parse message")
			continue
		}

		requests = append(requests, IntakeRequest{
			UID:             msg.Uid,
			From:            firstAddress(msg.Envelope.From),
			ReplyTo:         replyAddress(msg.Envelope),
			Subject:         subject,
			PreferencesText: parsed.bodyText,
			ResumePDF:       parsed.pdfContent,
			ResumeFilename:  parsed.pdfFilename,
			ReceivedAt:      msg.Envelope.Date,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	s.logger.Info().
		Int("unseen", len(uids)).
		Int("requests", len(requests)).
		Str("folder", s.folder()).
		Msg("Fetched mailbox run requests")

	return requests, nil
}

// MarkProcessed flags a request's message as seen so the next poll skips
// it. Called after the run finished, whatever its status; the outcome has
// already been mailed back.
func (s *Service) MarkProcessed(ctx context.Context, uid uint32) error {
	cfg := s.config.Mailbox
	if !s.IsConfigured() {
		return fmt.Errorf("mailbox is not configured")
	}

	c, err := s.connect(cfg)
	if err != nil {
		return err
	}
	defer c.Logout()

	if _, err := c.Select(s.folder(), false); err != nil {
		return fmt.Errorf("failed to select folder %s: %w", s.folder(), err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}

	if err := c.UidStore(seqSet, item, flags, nil); err != nil {
		return fmt.Errorf("failed to mark message as seen: %w", err)
	}

	s.logger.Debug().Int64("uid", int64(uid)).Msg("Marked run request as processed")
	return nil
}

// connect dials the IMAP server and logs in. Port 993 is implicit TLS;
// anything else connects in the clear.
func (s *Service) connect(cfg common.MailboxConfig) (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var c *client.Client
	var err error
	if cfg.Port == 993 {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(cfg.Username, cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	return c, nil
}

func (s *Service) folder() string {
	if folder := s.config.Mailbox.Folder; folder != "" {
		return folder
	}
	return "INBOX"
}

// matchesPrefix checks the subject against the configured prefix,
// case-insensitively. An empty prefix matches everything.
func matchesPrefix(subject, prefix string) bool {
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(
		strings.ToLower(strings.TrimSpace(subject)),
		strings.ToLower(prefix),
	)
}

func firstAddress(addrs []*imap.Address) string {
	if len(addrs) == 0 {
		return ""
	}
	return addrs[0].Address()
}

// replyAddress prefers the Reply-To header over From.
func replyAddress(env *imap.Envelope) string {
	if addr := firstAddress(env.ReplyTo); addr != "" {
		return addr
	}
	return firstAddress(env.From)
}
