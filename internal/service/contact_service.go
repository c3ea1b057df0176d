package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/mailer"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ContactService stores leads from the public forms and lets admins work them.
type ContactService struct {
	repo     repository.ContactRepository
	email    *EmailService
	notifyTo string
	audit    auditor
	log      zerolog.Logger
}

// NewContactService creates a new ContactService. Lead notifications go to notifyTo.
func NewContactService(repo repository.ContactRepository, email *EmailService, notifyTo string, rec ActivityRecorder, log zerolog.Logger) *ContactService {
	return &ContactService{
		repo:     repo,
		email:    email,
		notifyTo: notifyTo,
		audit:    auditor{rec: rec, resource: model.ResourceContact},
		log:      log.With().Str("component", "contact_service").Logger(),
	}
}

// SubmitContact stores a contact-form lead and notifies the team.
func (s *ContactService) SubmitContact(ctx context.Context, req model.ContactRequest) (*model.Contact, error) {
	c := &model.Contact{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		CompanyName: strings.TrimSpace(req.CompanyName),
		Message:     strings.TrimSpace(req.Message),
		Source:      model.ContactSourceContactForm,
		Status:      model.ContactStatusNew,
	}
	return s.submit(ctx, c)
}

// SubmitCustomRequest stores a custom-solution lead and notifies the team.
func (s *ContactService) SubmitCustomRequest(ctx context.Context, req model.CustomRequest) (*model.Contact, error) {
	details := map[string]string{"location_type": strings.TrimSpace(req.LocationType)}
	if v := strings.TrimSpace(req.EstimatedTraffic); v != "" {
		details["estimated_traffic"] = v
	}
	if len(req.MachineTypes) > 0 {
		details["machine_types"] = strings.Join(req.MachineTypes, ", ")
	}
	if v := strings.TrimSpace(req.Timeline); v != "" {
		details["timeline"] = v
	}

	c := &model.Contact{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		CompanyName: strings.TrimSpace(req.CompanyName),
		Message:     strings.TrimSpace(req.Message),
		Source:      model.ContactSourceCustomRequest,
		Status:      model.ContactStatusNew,
		Details:     details,
	}
	return s.submit(ctx, c)
}

// submit persists the lead first; the notification is a side effect whose
// failure is logged and recorded in email_logs but never returned.
func (s *ContactService) submit(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, translate(err)
	}

	s.log.Info().Str("contact_id", c.ID).Str("source", string(c.Source)).Msg("Lead received")
	s.notify(ctx, c)
	return c, nil
}

func (s *ContactService) notify(ctx context.Context, c *model.Contact) {
	if s.email == nil || s.notifyTo == "" {
		return
	}
	msg, err := mailer.LeadNotification(c)
	if err != nil {
		s.log.Error().Err(err).Str("contact_id", c.ID).Msg("Failed to render lead notification")
		return
	}
	msg.To = []string{s.notifyTo}

	contactID := c.ID
	if _, err := s.email.Deliver(context.WithoutCancel(ctx), msg, &contactID, nil); err != nil {
		s.log.Warn().Err(err).Str("contact_id", c.ID).Msg("Lead notification not delivered")
	}
}

func (s *ContactService) List(ctx context.Context, query url.Values) ([]model.Contact, filter.Page, error) {
	spec, err := filter.Parse(repository.ContactSchema, query)
	if err != nil {
		return nil, filter.Page{}, err
	}
	items, total, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, filter.Page{}, err
	}
	return items, filter.NewPage(spec, total), nil
}

func (s *ContactService) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	return c, translate(err)
}

// Update changes the lead status and/or notes.
func (s *ContactService) Update(ctx context.Context, actor Actor, id string, req model.UpdateContactRequest) (*model.Contact, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	before := *c

	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, translate(err)
	}

	s.audit.record(ctx, actor, model.ActivityUpdate, c.ID,
		map[string]any{"status": before.Status, "notes": before.Notes},
		map[string]any{"status": c.Status, "notes": c.Notes})
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, actor Actor, id string) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.audit.record(ctx, actor, model.ActivityDelete, id, c, nil)
	return nil
}
