package model

import (
	"encoding/json"
	"time"
)

// ActivityAction is the kind of admin mutation recorded in the audit trail.
type ActivityAction string

const (
	ActivityCreate ActivityAction = "create"
	ActivityUpdate ActivityAction = "update"
	ActivityDelete ActivityAction = "delete"
)

// ActivityActions lists every action.
var ActivityActions = []string{string(ActivityCreate), string(ActivityUpdate), string(ActivityDelete)}

// ResourceType names the kind of record an activity touched.
type ResourceType string

const (
	ResourceMachine      ResourceType = "machine"
	ResourceMachineImage ResourceType = "machine_image"
	ResourceProduct      ResourceType = "product"
	ResourceContact      ResourceType = "contact"
	ResourceBusinessInfo ResourceType = "business_info"
	ResourceSEOSetting   ResourceType = "seo_setting"
	ResourceEmail        ResourceType = "email"
	ResourceMedia        ResourceType = "media"
)

// ResourceTypes lists every resource type.
var ResourceTypes = []string{
	string(ResourceMachine),
	string(ResourceMachineImage),
	string(ResourceProduct),
	string(ResourceContact),
	string(ResourceBusinessInfo),
	string(ResourceSEOSetting),
	string(ResourceEmail),
	string(ResourceMedia),
}

// ActivityLog is an append-only audit entry for an admin mutation.
type ActivityLog struct {
	ID           string          `json:"id"`
	AdminID      string          `json:"admin_id"`
	AdminEmail   string          `json:"admin_email,omitempty"`
	Action       ActivityAction  `json:"action"`
	ResourceType ResourceType    `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	OldValues    json.RawMessage `json:"old_values,omitempty"`
	NewValues    json.RawMessage `json:"new_values,omitempty"`
	IPAddress    string          `json:"ip_address,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
