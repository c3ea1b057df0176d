package model

// Role is the enumerated admin role stored on each admin account.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
)

// Capability represents a string code for a specific admin action.
type Capability string

const (
	// CapabilityDashboardRead allows viewing dashboard counts.
	CapabilityDashboardRead Capability = "dashboard:read"

	// CapabilityMachinesRead allows viewing vending machines in the admin.
	CapabilityMachinesRead Capability = "machines:read"

	// CapabilityMachinesWrite allows creating, updating and deleting machines and their images.
	CapabilityMachinesWrite Capability = "machines:write"

	// CapabilityProductsRead allows viewing products.
	CapabilityProductsRead Capability = "products:read"

	// CapabilityProductsWrite allows creating, updating and deleting products.
	CapabilityProductsWrite Capability = "products:write"

	// CapabilityContactsRead allows viewing contact and custom-request leads.
	CapabilityContactsRead Capability = "contacts:read"

	// CapabilityContactsWrite allows updating lead status/notes and deleting leads.
	CapabilityContactsWrite Capability = "contacts:write"

	// CapabilityBusinessWrite allows editing business information.
	CapabilityBusinessWrite Capability = "business:write"

	// CapabilitySEORead allows viewing SEO settings.
	CapabilitySEORead Capability = "seo:read"

	// CapabilitySEOWrite allows creating, updating and deleting SEO settings.
	CapabilitySEOWrite Capability = "seo:write"

	// CapabilityEmailSend allows sending email and viewing email logs.
	CapabilityEmailSend Capability = "email:send"

	// CapabilityMediaUpload allows uploading media files.
	CapabilityMediaUpload Capability = "media:upload"

	// CapabilityActivityRead allows viewing the audit trail.
	CapabilityActivityRead Capability = "activity:read"
)

// AllCapabilities is a slice of all available capabilities.
var AllCapabilities = []Capability{
	CapabilityDashboardRead,
	CapabilityMachinesRead,
	CapabilityMachinesWrite,
	CapabilityProductsRead,
	CapabilityProductsWrite,
	CapabilityContactsRead,
	CapabilityContactsWrite,
	CapabilityBusinessWrite,
	CapabilitySEORead,
	CapabilitySEOWrite,
	CapabilityEmailSend,
	CapabilityMediaUpload,
	CapabilityActivityRead,
}

var editorCapabilities = []Capability{
	CapabilityDashboardRead,
	CapabilityMachinesRead,
	CapabilityMachinesWrite,
	CapabilityProductsRead,
	CapabilityProductsWrite,
	CapabilityContactsRead,
	CapabilitySEORead,
	CapabilitySEOWrite,
	CapabilityMediaUpload,
}

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleSuperAdmin: capabilitySet(AllCapabilities...),
	RoleAdmin:      capabilitySet(withoutCapability(AllCapabilities, CapabilityActivityRead)...),
	RoleEditor:     capabilitySet(editorCapabilities...),
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability. Unknown roles grant nothing.
func (r Role) Can(c Capability) bool {
	set, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = set[c]
	return ok
}

// Capabilities lists the role's capabilities in AllCapabilities order.
func (r Role) Capabilities() []Capability {
	out := make([]Capability, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if r.Can(c) {
			out = append(out, c)
		}
	}
	return out
}

func capabilitySet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

func withoutCapability(caps []Capability, drop Capability) []Capability {
	out := make([]Capability, 0, len(caps))
	for _, c := range caps {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}
