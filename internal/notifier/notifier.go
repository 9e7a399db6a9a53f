package notifier

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/ricirt/sender-queue/internal/config"
)

// Message is one plain-text mail.
type Message struct {
	Recipients []string
	Subject    string
	Body       string
}

// Notifier delivers operator notifications.
// Mocking this interface in tests avoids talking to a real mail relay.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

const defaultBody = `{{.Subject}} Historical Loading for {{.TesterType}} is complete !

{{.Message}}

Please kindly help to validate.

Thank you,

Data Integration Team`

type bodyData struct {
	Subject    string
	TesterType string
	Message    string
}

// EmptyListMessage renders the mail sent once every list entry has been
// handed to the queue. cfg.BodyTemplate, when set, replaces the built-in body.
func EmptyListMessage(cfg config.EmailConfig, testerType string) (Message, error) {
	text := cfg.BodyTemplate
	if strings.TrimSpace(text) == "" {
		text = defaultBody
	}
	tmpl, err := template.New("body").Option("missingkey=error").Parse(text)
	if err != nil {
		return Message{}, fmt.Errorf("parse email template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, bodyData{
		Subject:    cfg.Subject,
		TesterType: testerType,
		Message:    cfg.Message,
	}); err != nil {
		return Message{}, fmt.Errorf("render email template: %w", err)
	}

	return Message{
		Recipients: cfg.Recipients,
		Subject:    cfg.HeaderSubject,
		Body:       buf.String(),
	}, nil
}
