package model

import "time"

// BusinessInfo is one key/value entry of the company profile shown on the site.
type BusinessInfo struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BusinessInfoKeys is the allow-list of editable business info keys.
var BusinessInfoKeys = []string{
	"company_name",
	"tagline",
	"phone",
	"email",
	"address",
	"city",
	"state",
	"zip",
	"hours",
	"service_area",
	"facebook_url",
	"instagram_url",
	"linkedin_url",
}

// IsBusinessInfoKey reports whether key is in the allow-list.
func IsBusinessInfoKey(key string) bool {
	for _, k := range BusinessInfoKeys {
		if k == key {
			return true
		}
	}
	return false
}

// UpdateBusinessInfoRequest is the payload for bulk updating business info.
type UpdateBusinessInfoRequest struct {
	Entries map[string]string `json:"entries" binding:"required,min=1,dive,max=2000"`
}
