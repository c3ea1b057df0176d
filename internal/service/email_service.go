package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/mailer"
	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
)

// EmailService sends email through the provider and keeps an email_logs
// row for every attempt, successful or not.
type EmailService struct {
	sender   mailer.Sender
	logs     repository.EmailLogRepository
	contacts contactLookup
	audit    auditor
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// contactLookup resolves the lead an admin email is linked to.
type contactLookup interface {
	GetByID(ctx context.Context, id string) (*model.Contact, error)
}

// NewEmailService creates a new EmailService.
func NewEmailService(sender mailer.Sender, logs repository.EmailLogRepository, contacts contactLookup, rec ActivityRecorder, m *metrics.Metrics, log zerolog.Logger) *EmailService {
	return &EmailService{
		sender:   sender,
		logs:     logs,
		contacts: contacts,
		audit:    auditor{rec: rec, resource: model.ResourceEmail},
		metrics:  m,
		log:      log.With().Str("component", "email_service").Logger(),
	}
}

// Deliver sends msg and records the outcome. A provider failure returns the
// failed log entry together with an error wrapping ErrUpstream.
func (s *EmailService) Deliver(ctx context.Context, msg mailer.Message, contactID, sentBy *string) (*model.EmailLog, error) {
	providerID, sendErr := s.sender.Send(ctx, msg)

	body := msg.Text
	if body == "" {
		body = msg.HTML
	}
	recipient := ""
	if len(msg.To) > 0 {
		recipient = msg.To[0]
	}
	entry := &model.EmailLog{
		ContactID: contactID,
		Recipient: recipient,
		Subject:   msg.Subject,
		Body:      body,
		Status:    model.EmailStatusSent,
		SentBy:    sentBy,
	}
	if sendErr != nil {
		reason := sendErr.Error()
		entry.Status = model.EmailStatusFailed
		entry.Error = &reason
	} else if providerID != "" {
		entry.ProviderID = &providerID
	}

	s.metrics.ObserveEmail(string(entry.Status))
	if err := s.logs.Create(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("recipient", recipient).Str("status", string(entry.Status)).
			Msg("Failed to write email log")
	}

	if sendErr != nil {
		s.log.Warn().Err(sendErr).Str("recipient", recipient).Msg("Email delivery failed")
		return entry, fmt.Errorf("%w: %v", ErrUpstream, sendErr)
	}
	return entry, nil
}

// Send delivers an email composed by an admin. A contact_id must name an
// existing lead; it is checked before anything goes out.
func (s *EmailService) Send(ctx context.Context, actor Actor, req model.SendEmailRequest) (*model.EmailLog, error) {
	if req.ContactID != nil && s.contacts != nil {
		if _, err := s.contacts.GetByID(ctx, *req.ContactID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &FieldsError{Fields: []FieldIssue{{Field: "contact_id", Message: "does not match any contact"}}}
			}
			return nil, err
		}
	}

	msg := mailer.Message{
		To:      []string{req.To},
		Subject: req.Subject,
		Text:    req.Body,
	}
	sentBy := actor.AdminID
	entry, err := s.Deliver(ctx, msg, req.ContactID, &sentBy)
	if err != nil {
		return entry, err
	}
	s.audit.record(ctx, actor, model.ActivityCreate, entry.ID, nil, map[string]any{
		"to":      req.To,
		"subject": req.Subject,
	})
	return entry, nil
}

// ListLogs returns one filtered page of the email log.
func (s *EmailService) ListLogs(ctx context.Context, query url.Values) ([]model.EmailLog, filter.Page, error) {
	spec, err := filter.Parse(repository.EmailLogSchema, query)
	if err != nil {
		return nil, filter.Page{}, err
	}
	items, total, err := s.logs.List(ctx, spec)
	if err != nil {
		return nil, filter.Page{}, err
	}
	return items, filter.NewPage(spec, total), nil
}
