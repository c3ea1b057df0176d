package model

import "time"

// ContactStatus tracks a lead through follow-up.
type ContactStatus string

const (
	ContactStatusNew        ContactStatus = "new"
	ContactStatusContacted  ContactStatus = "contacted"
	ContactStatusInProgress ContactStatus = "in_progress"
	ContactStatusResolved   ContactStatus = "resolved"
	ContactStatusClosed     ContactStatus = "closed"
)

// ContactStatuses lists every lead status.
var ContactStatuses = []string{
	string(ContactStatusNew),
	string(ContactStatusContacted),
	string(ContactStatusInProgress),
	string(ContactStatusResolved),
	string(ContactStatusClosed),
}

// ContactSource records which public form produced a lead.
type ContactSource string

const (
	ContactSourceContactForm   ContactSource = "contact_form"
	ContactSourceCustomRequest ContactSource = "custom_request"
)

// ContactSources lists every lead source.
var ContactSources = []string{string(ContactSourceContactForm), string(ContactSourceCustomRequest)}

// Contact is a lead submitted through the public site.
type Contact struct {
	ID          string            `json:"id"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	CompanyName string            `json:"company_name"`
	Message     string            `json:"message"`
	Source      ContactSource     `json:"source"`
	Status      ContactStatus     `json:"status"`
	Notes       string            `json:"notes"`
	Details     map[string]string `json:"details,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FullName joins first and last name.
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ContactRequest is the public contact form.
type ContactRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	Email       string `json:"email" binding:"required,email,max=255"`
	Phone       string `json:"phone" binding:"omitempty,max=30"`
	CompanyName string `json:"company_name" binding:"omitempty,max=200"`
	Message     string `json:"message" binding:"required,max=5000"`
}

// CustomRequest is the public "custom vending solution" form.
type CustomRequest struct {
	FirstName        string   `json:"first_name" binding:"required,max=100"`
	LastName         string   `json:"last_name" binding:"required,max=100"`
	Email            string   `json:"email" binding:"required,email,max=255"`
	Phone            string   `json:"phone" binding:"required,max=30"`
	CompanyName      string   `json:"company_name" binding:"required,max=200"`
	LocationType     string   `json:"location_type" binding:"required,max=100"`
	EstimatedTraffic string   `json:"estimated_traffic" binding:"omitempty,max=100"`
	MachineTypes     []string `json:"machine_types" binding:"omitempty,max=10,dive,oneof=snack beverage combo healthy coffee specialty"`
	Timeline         string   `json:"timeline" binding:"omitempty,max=100"`
	Message          string   `json:"message" binding:"omitempty,max=5000"`
}

// UpdateContactRequest lets admins move a lead along and keep notes.
type UpdateContactRequest struct {
	Status *ContactStatus `json:"status" binding:"omitempty,oneof=new contacted in_progress resolved closed"`
	Notes  *string        `json:"notes" binding:"omitempty,max=5000"`
}
