package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"

	"github.com/ampvending/amp-backend/internal/model"
)

var leadTemplate = template.Must(template.New("lead").Parse(`<h2>New {{.Kind}} from {{.Contact.FullName}}</h2>
<table cellpadding="4">
<tr><td><strong>Email</strong></td><td>{{.Contact.Email}}</td></tr>
{{- if .Contact.Phone}}<tr><td><strong>Phone</strong></td><td>{{.Contact.Phone}}</td></tr>{{end}}
{{- if .Contact.CompanyName}}<tr><td><strong>Company</strong></td><td>{{.Contact.CompanyName}}</td></tr>{{end}}
{{- range .Details}}<tr><td><strong>{{.Label}}</strong></td><td>{{.Value}}</td></tr>{{end}}
</table>
{{- if .Contact.Message}}
<p><strong>Message</strong></p>
<p style="white-space: pre-wrap">{{.Contact.Message}}</p>
{{- end}}`))

type detailRow struct {
	Label string
	Value string
}

// LeadNotification renders the internal notification for a new lead.
// All contact fields are HTML-escaped.
func LeadNotification(c *model.Contact) (Message, error) {
	kind := "contact request"
	if c.Source == model.ContactSourceCustomRequest {
		kind = "custom vending request"
	}

	keys := make([]string, 0, len(c.Details))
	for k := range c.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	details := make([]detailRow, 0, len(keys))
	for _, k := range keys {
		details = append(details, detailRow{Label: k, Value: c.Details[k]})
	}

	var buf bytes.Buffer
	err := leadTemplate.Execute(&buf, struct {
		Kind    string
		Contact *model.Contact
		Details []detailRow
	}{kind, c, details})
	if err != nil {
		return Message{}, err
	}

	return Message{
		Subject: fmt.Sprintf("New %s: %s", kind, c.FullName()),
		HTML:    buf.String(),
		ReplyTo: c.Email,
	}, nil
}
