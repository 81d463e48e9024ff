package mailbox

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
)

// parsedMessage holds what a run request needs from one email.
type parsedMessage struct {
	bodyText    string
	pdfContent  []byte
	pdfFilename string
}

// parseMessage walks the MIME parts of a raw message. The first text/plain
// part becomes the preferences text and the first PDF attachment becomes
// the resume. Everything else is ignored.
func parseMessage(r io.Reader) (*parsedMessage, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail reader: %w", err)
	}

	parsed := &parsedMessage{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read next part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			if parsed.bodyText != "" {
				continue
			}
			contentType, _, _ := h.ContentType()
			if strings.HasPrefix(contentType, "text/plain") {
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return nil, fmt.Errorf("failed to read body: %w", err)
				}
				parsed.bodyText = strings.TrimSpace(string(b))
			}
		case *mail.AttachmentHeader:
			if parsed.pdfContent != nil {
				continue
			}
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			if !isPDF(contentType, filename) {
				continue
			}
			b, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to read attachment %s: %w", filename, err)
			}
			parsed.pdfContent = b
			parsed.pdfFilename = filename
		}
	}

	return parsed, nil
}

func isPDF(contentType, filename string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
