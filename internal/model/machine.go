package model

import "time"

// MachineCategory groups vending machines on the public catalog.
type MachineCategory string

const (
	MachineCategorySnack     MachineCategory = "snack"
	MachineCategoryBeverage  MachineCategory = "beverage"
	MachineCategoryCombo     MachineCategory = "combo"
	MachineCategoryHealthy   MachineCategory = "healthy"
	MachineCategoryCoffee    MachineCategory = "coffee"
	MachineCategorySpecialty MachineCategory = "specialty"
)

// MachineCategories lists every category in display order.
var MachineCategories = []string{
	string(MachineCategorySnack),
	string(MachineCategoryBeverage),
	string(MachineCategoryCombo),
	string(MachineCategoryHealthy),
	string(MachineCategoryCoffee),
	string(MachineCategorySpecialty),
}

// Machine is a vending machine model offered to customers.
type Machine struct {
	ID               string            `json:"id"`
	Slug             string            `json:"slug"`
	Name             string            `json:"name"`
	Model            string            `json:"model"`
	Category         MachineCategory   `json:"category"`
	ShortDescription string            `json:"short_description"`
	Description      string            `json:"description"`
	Features         []string          `json:"features"`
	Specifications   map[string]string `json:"specifications"`
	DisplayOrder     int               `json:"display_order"`
	IsActive         bool              `json:"is_active"`
	PrimaryImageURL  *string           `json:"primary_image_url,omitempty"`
	Images           []MachineImage    `json:"images,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// MachineImage is one photo of a machine. At most one image per machine is primary.
type MachineImage struct {
	ID           string    `json:"id"`
	MachineID    string    `json:"machine_id"`
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text"`
	IsPrimary    bool      `json:"is_primary"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateMachineRequest is the payload for creating a machine.
type CreateMachineRequest struct {
	Name             string            `json:"name" binding:"required,max=200"`
	Slug             string            `json:"slug" binding:"omitempty,max=200"`
	Model            string            `json:"model" binding:"max=100"`
	Category         MachineCategory   `json:"category" binding:"required,oneof=snack beverage combo healthy coffee specialty"`
	ShortDescription string            `json:"short_description" binding:"max=500"`
	Description      string            `json:"description" binding:"max=10000"`
	Features         []string          `json:"features" binding:"max=50,dive,max=200"`
	Specifications   map[string]string `json:"specifications"`
	DisplayOrder     int               `json:"display_order" binding:"min=0"`
	IsActive         *bool             `json:"is_active"`
}

// UpdateMachineRequest is a partial update; nil fields are left unchanged.
type UpdateMachineRequest struct {
	Name             *string           `json:"name" binding:"omitempty,min=1,max=200"`
	Slug             *string           `json:"slug" binding:"omitempty,min=1,max=200"`
	Model            *string           `json:"model" binding:"omitempty,max=100"`
	Category         *MachineCategory  `json:"category" binding:"omitempty,oneof=snack beverage combo healthy coffee specialty"`
	ShortDescription *string           `json:"short_description" binding:"omitempty,max=500"`
	Description      *string           `json:"description" binding:"omitempty,max=10000"`
	Features         []string          `json:"features" binding:"omitempty,max=50,dive,max=200"`
	Specifications   map[string]string `json:"specifications"`
	DisplayOrder     *int              `json:"display_order" binding:"omitempty,min=0"`
	IsActive         *bool             `json:"is_active"`
}

// AddMachineImageRequest attaches an already uploaded image URL to a machine.
type AddMachineImageRequest struct {
	URL          string `json:"url" binding:"required,max=500"`
	AltText      string `json:"alt_text" binding:"max=200"`
	IsPrimary    bool   `json:"is_primary"`
	DisplayOrder int    `json:"display_order" binding:"min=0"`
}
