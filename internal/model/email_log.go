package model

import "time"

// EmailStatus is the delivery outcome recorded for an outgoing email.
type EmailStatus string

const (
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// EmailStatuses lists every email status.
var EmailStatuses = []string{string(EmailStatusSent), string(EmailStatusFailed)}

// EmailLog records one outgoing email, successful or not.
type EmailLog struct {
	ID         string      `json:"id"`
	ContactID  *string     `json:"contact_id,omitempty"`
	Recipient  string      `json:"recipient"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Status     EmailStatus `json:"status"`
	Error      *string     `json:"error,omitempty"`
	ProviderID *string     `json:"provider_id,omitempty"`
	SentBy     *string     `json:"sent_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SendEmailRequest is the admin payload for sending an email.
type SendEmailRequest struct {
	To        string  `json:"to" binding:"required,email,max=255"`
	Subject   string  `json:"subject" binding:"required,max=200"`
	Body      string  `json:"body" binding:"required,max=50000"`
	ContactID *string `json:"contact_id" binding:"omitempty,uuid"`
}
