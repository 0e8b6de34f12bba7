package core

import (
	"net/mail"
	"strings"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain content
		Link    string // optional, path relative to the frontend

		TextContent string
		HTMLContent string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render builds the text content from BodyStr and Link, resolving the link against frontendBaseURL.
func (m *EmailMessage) Render(frontendBaseURL string) {
	var b strings.Builder
	b.WriteString(m.BodyStr)
	if m.Link != "" {
		if b.Len() > 0 {
			b.WriteString("\r\n\r\n")
		}
		b.WriteString(strings.TrimRight(frontendBaseURL, "/") + m.Link)
	}
	m.TextContent = b.String()
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
