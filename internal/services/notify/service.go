// -----------------------------------------------------------------------
// Last Modified: Tuesday, 12th August 2026 3:05:41 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package notify

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ternarybob/jobhunter/internal/common"
	"github.com/ternarybob/jobhunter/internal/interfaces"
	"github.com/ternarybob/jobhunter/internal/models"
	"github.com/ternarybob/jobhunter/internal/services/report"
)

// Service emails the finished run result to the configured recipient. The
// mail body is the run report rendered as plain markdown plus an HTML
// alternative, with the CSV and PDF artifacts attached. Delivery problems
// are recorded on state and never fail the run.
type Service struct {
	config *common.Config
	logger arbor.ILogger

	// send delivers an assembled RFC 5322 message. Swapped in tests.
	send func(cfg common.NotifyConfig, to string, msg []byte) error
}

// Compile-time assertion
var _ interfaces.NotifyService = (*Service)(nil)

// attachment is a file carried in the multipart/mixed message.
type attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// NewService creates the notify stage service.
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	s := &Service{
		config: config,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

// SendResult emails the run result. It is a no-op when notifications are
// disabled or no recipient is configured, and returns nil even on delivery
// failure so a broken mail setup never spoils a finished run.
func (s *Service) SendResult(ctx context.Context, state *models.PipelineState) error {
	cfg := s.config.Notify
	if !cfg.Enabled {
		s.logger.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	to := strings.TrimSpace(state.Config.NotifyTo)
	if to == "" {
		to = strings.TrimSpace(cfg.To)
	}
	if to == "" {
		s.logger.Debug().Msg("No notification recipient configured, skipping")
		return nil
	}

	if state.Result == nil {
		s.logger.Warn().Str("run_id", state.RunID).Msg("No run result to notify about, skipping")
		return nil
	}

	if cfg.SMTPHost == "" {
		s.recordNotifyError(state, fmt.Errorf("SMTP host not configured"))
		return nil
	}
	if cfg.From == "" {
		s.recordNotifyError(state, fmt.Errorf("from address not configured"))
		return nil
	}

	markdown, err := report.RenderMarkdown(state.Result)
	if err != nil {
		s.recordNotifyError(state, fmt.Errorf("report rendering failed: %w", err))
		return nil
	}

	htmlBody, err := renderHTML(markdown)
	if err != nil {
		s.recordNotifyError(state, fmt.Errorf("HTML rendering failed: %w", err))
		return nil
	}

	subject := common.ReplacePlaceholders(cfg.SubjectTemplate, map[string]string{
		"run-id":  state.RunID,
		"matched": strconv.Itoa(len(state.Result.TopJobs)),
		"status":  state.Result.Status.String(),
	}, s.logger)

	attachments := s.collectAttachments(state.Result)

	msg := buildMessage(cfg.From, to, subject, markdown, htmlBody, attachments)

	if err := s.send(cfg, to, msg); err != nil {
		s.recordNotifyError(state, fmt.Errorf("mail delivery failed: %w", err))
		return nil
	}

	s.logger.Info().
		Str("run_id", state.RunID).
		Str("to", to).
		Int("attachments", len(attachments)).
		Msg("Run notification sent")
	return nil
}

// recordNotifyError logs the failure and appends a non-fatal error record.
func (s *Service) recordNotifyError(state *models.PipelineState, err error) {
	s.logger.Warn().Err(err).Str("run_id", state.RunID).Msg("Run notification failed")
	state.AddError(models.AgentError{
		Stage:   models.StageNotify,
		Kind:    models.ErrKindNotify,
		Message: err.Error(),
	})
}

// collectAttachments loads the CSV and PDF artifacts from the run output.
// The markdown report already travels in the mail body and the JSON result
// stays on disk. An unreadable file is skipped, not fatal.
func (s *Service) collectAttachments(result *models.RunResult) []attachment {
	var attachments []attachment
	for _, path := range result.OutputFiles {
		var contentType string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			contentType = "text/csv"
		case ".pdf":
			contentType = "application/pdf"
		default:
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable attachment")
			continue
		}

		attachments = append(attachments, attachment{
			Filename:    filepath.Base(path),
			ContentType: contentType,
			Content:     content,
		})
	}
	return attachments
}

// htmlConverter renders the markdown report for the HTML alternative part.
// Same extension set as the PDF renderer so both views agree on tables.
var htmlConverter = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
)

const htmlStyle = `body{font-family:Arial,Helvetica,sans-serif;font-size:14px;color:#222}` +
	`table{border-collapse:collapse}` +
	`th,td{border:1px solid #ccc;padding:4px 8px;text-align:left}`

func renderHTML(markdown string) (string, error) {
	var body strings.Builder
	if err := htmlConverter.Convert([]byte(markdown), &body); err != nil {
		return "", err
	}
	return fmt.Sprintf("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><style>%s</style></head><body>\n%s</body></html>\n",
		htmlStyle, body.String()), nil
}

// buildMessage assembles the full multipart/mixed message: a
// multipart/alternative body (plain text plus HTML) followed by base64
// attachments. Both body parts are base64 encoded; RFC 5322 caps lines at
// 998 chars and rendered HTML routinely exceeds that.
func buildMessage(from, to, subject, textBody, htmlBody string, attachments []attachment) []byte {
	mixedBoundary := generateBoundary()
	altBoundary := generateBoundary()

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", mixedBoundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", altBoundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", altBoundary))
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(encodeBase64WithLineBreaks([]byte(textBody)))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", altBoundary))
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(encodeBase64WithLineBreaks([]byte(htmlBody)))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s--\r\n", altBoundary))

	for _, att := range attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		msg.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
		msg.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", contentType, att.Filename))
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", att.Filename))
		msg.WriteString("\r\n")
		msg.WriteString(encodeBase64WithLineBreaks(att.Content))
		msg.WriteString("\r\n")
	}

	msg.WriteString(fmt.Sprintf("--%s--\r\n", mixedBoundary))

	return []byte(msg.String())
}

// generateBoundary creates a unique MIME boundary string. Random so it
// cannot collide with message content.
func generateBoundary() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "jobhunter_boundary_fallback"
	}
	return fmt.Sprintf("jobhunter_%x", b)
}

// encodeBase64WithLineBreaks encodes content as base64 broken into 76-char
// lines per RFC 2045.
func encodeBase64WithLineBreaks(content []byte) string {
	encoded := base64.StdEncoding.EncodeToString(content)

	var result strings.Builder
	const lineLen = 76
	for i := 0; i < len(encoded); i += lineLen {
		end := min(i+lineLen, len(encoded))
		result.WriteString(encoded[i:end])
		if end < len(encoded) {
			result.WriteString("\r\n")
		}
	}
	return result.String()
}

// sendSMTP delivers the message. Port 465 means implicit TLS (Gmail and
// friends); anything else goes through the stdlib client, which upgrades
// with STARTTLS when the server offers it.
func (s *Service) sendSMTP(cfg common.NotifyConfig, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}

	if cfg.SMTPPort == 465 {
		return s.sendWithTLS(addr, cfg.SMTPHost, auth, cfg.From, to, msg)
	}

	return smtp.SendMail(addr, auth, cfg.From, []string{to}, msg)
}

// sendWithTLS opens a direct TLS connection. Falls back to STARTTLS when
// the TLS dial is refused.
func (s *Service) sendWithTLS(addr, host string, auth smtp.Auth, from, to string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return s.sendWithSTARTTLS(addr, host, auth, from, to, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return transact(client, auth, from, to, msg)
}

// sendWithSTARTTLS connects in the clear and upgrades before
// authenticating.
func (s *Service) sendWithSTARTTLS(addr, host string, auth smtp.Auth, from, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	return transact(client, auth, from, to, msg)
}

// transact runs the SMTP envelope exchange on an established client.
func transact(client *smtp.Client, auth smtp.Auth, from, to string, msg []byte) error {
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set mail recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
