// Package mailer delivers outgoing email through Resend.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

const defaultResendURL = "https://api.resend.com/"

// ErrNotConfigured is returned when no provider API key is set.
var ErrNotConfigured = errors.New("mailer: email provider is not configured")

// Message is one outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Sender delivers a message and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// New returns a Resend sender, or a DisabledSender when apiKey is empty.
func New(apiKey, from string) Sender {
	if strings.TrimSpace(apiKey) == "" {
		return DisabledSender{}
	}
	return NewResendSender(apiKey, from, defaultResendURL)
}

// DisabledSender fails every send with ErrNotConfigured.
type DisabledSender struct{}

func (DisabledSender) Send(context.Context, Message) (string, error) {
	return "", ErrNotConfigured
}

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mailer: provider returned %d: %s", e.Status, e.Message)
}

// ResendSender sends messages with the Resend SDK.
type ResendSender struct {
	from   string
	client *resend.Client
}

// NewResendSender creates a sender against baseURL.
func NewResendSender(apiKey, from, baseURL string) *ResendSender {
	httpClient := &http.Client{
		Timeout:   15 * time.Second,
		Transport: statusTransport{next: http.DefaultTransport},
	}
	client := resend.NewCustomClient(httpClient, apiKey)
	if u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/"); err == nil {
		client.BaseURL = u
	}
	return &ResendSender{from: from, client: client}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", errors.New("mailer: message has no recipient")
	}

	status := new(int)
	sent, err := s.client.Emails.SendWithContext(context.WithValue(ctx, statusKey{}, status), &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		if *status >= http.StatusBadRequest {
			return "", &ProviderError{Status: *status, Message: strings.TrimPrefix(err.Error(), "[ERROR]: ")}
		}
		return "", fmt.Errorf("mailer: send: %w", err)
	}
	return sent.Id, nil
}

type statusKey struct{}

// statusTransport reports the provider's HTTP status back to Send, since the
// SDK folds error responses into plain errors.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.next.RoundTrip(req)
	if err == nil {
		if status, ok := req.Context().Value(statusKey{}).(*int); ok {
			*status = res.StatusCode
		}
	}
	return res, err
}
