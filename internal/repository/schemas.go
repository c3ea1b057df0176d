package repository

import (
	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
)

// ─── List schemas ──────────────────────────────────────────────────────
// Each schema is the allow-list of filterable columns for one list endpoint.

var MachineSchema = filter.Schema{
	Resource: "machines",
	Fields: []filter.Field{
		{Key: "category", Column: "m.category", Kind: filter.KindEnum, Enum: model.MachineCategories},
		{Key: "is_active", Column: "m.is_active", Kind: filter.KindBool},
		{Key: "date_from", Column: "m.created_at", Kind: filter.KindDate, Op: filter.OpGte},
		{Key: "date_to", Column: "m.created_at", Kind: filter.KindDate, Op: filter.OpLte},
	},
	SearchColumns: []string{"m.name", "m.model", "m.short_description"},
	Order:         []filter.Order{{Column: "m.display_order"}, {Column: "m.name"}, {Column: "m.id"}},
	DefaultLimit:  20,
	MaxLimit:      100,
}

// PublicMachineSchema only ever returns active machines.
var PublicMachineSchema = filter.Schema{
	Resource: "public_machines",
	Fields: []filter.Field{
		{Key: "category", Column: "m.category", Kind: filter.KindEnum, Enum: model.MachineCategories},
	},
	SearchColumns: []string{"m.name", "m.model", "m.short_description"},
	Fixed:         []filter.Predicate{{Key: "is_active", Column: "m.is_active", Op: filter.OpEq, Value: true}},
	Order:         []filter.Order{{Column: "m.display_order"}, {Column: "m.name"}, {Column: "m.id"}},
	DefaultLimit:  20,
	MaxLimit:      100,
}

var ProductSchema = filter.Schema{
	Resource: "products",
	Fields: []filter.Field{
		{Key: "category", Column: "category", Kind: filter.KindEnum, Enum: model.ProductCategories},
		{Key: "is_active", Column: "is_active", Kind: filter.KindBool},
	},
	SearchColumns: []string{"name", "description", "brand"},
	Order:         []filter.Order{{Column: "display_order"}, {Column: "name"}, {Column: "id"}},
	DefaultLimit:  50,
	MaxLimit:      200,
}

// PublicProductSchema only ever returns active products.
var PublicProductSchema = filter.Schema{
	Resource: "public_products",
	Fields: []filter.Field{
		{Key: "category", Column: "category", Kind: filter.KindEnum, Enum: model.ProductCategories},
	},
	SearchColumns: []string{"name", "description", "brand"},
	Fixed:         []filter.Predicate{{Key: "is_active", Column: "is_active", Op: filter.OpEq, Value: true}},
	Order:         []filter.Order{{Column: "display_order"}, {Column: "name"}, {Column: "id"}},
	DefaultLimit:  50,
	MaxLimit:      200,
}

var ContactSchema = filter.Schema{
	Resource: "contacts",
	Fields: []filter.Field{
		{Key: "status", Column: "status", Kind: filter.KindEnum, Enum: model.ContactStatuses},
		{Key: "source", Column: "source", Kind: filter.KindEnum, Enum: model.ContactSources},
		{Key: "date_from", Column: "created_at", Kind: filter.KindDate, Op: filter.OpGte},
		{Key: "date_to", Column: "created_at", Kind: filter.KindDate, Op: filter.OpLte},
	},
	SearchColumns: []string{"first_name", "last_name", "email", "company_name"},
	Order:         []filter.Order{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
	DefaultLimit:  20,
	MaxLimit:      100,
}

var SEOSchema = filter.Schema{
	Resource: "seo_settings",
	Fields: []filter.Field{
		{Key: "is_active", Column: "is_active", Kind: filter.KindBool},
	},
	SearchColumns: []string{"page_path", "title"},
	Order:         []filter.Order{{Column: "page_path"}},
	DefaultLimit:  50,
	MaxLimit:      100,
}

var EmailLogSchema = filter.Schema{
	Resource: "email_logs",
	Fields: []filter.Field{
		{Key: "status", Column: "status", Kind: filter.KindEnum, Enum: model.EmailStatuses},
		{Key: "contact_id", Column: "contact_id", Kind: filter.KindUUID},
		{Key: "date_from", Column: "created_at", Kind: filter.KindDate, Op: filter.OpGte},
		{Key: "date_to", Column: "created_at", Kind: filter.KindDate, Op: filter.OpLte},
	},
	SearchColumns: []string{"recipient", "subject"},
	Order:         []filter.Order{{Column: "created_at", Desc: true}, {Column: "id", Desc: true}},
	DefaultLimit:  20,
	MaxLimit:      100,
}

var ActivitySchema = filter.Schema{
	Resource: "activity_logs",
	Fields: []filter.Field{
		{Key: "admin_id", Column: "l.admin_id", Kind: filter.KindUUID},
		{Key: "action", Column: "l.action", Kind: filter.KindEnum, Enum: model.ActivityActions},
		{Key: "resource_type", Column: "l.resource_type", Kind: filter.KindEnum, Enum: model.ResourceTypes},
		{Key: "date_from", Column: "l.created_at", Kind: filter.KindDate, Op: filter.OpGte},
		{Key: "date_to", Column: "l.created_at", Kind: filter.KindDate, Op: filter.OpLte},
	},
	Order:        []filter.Order{{Column: "l.created_at", Desc: true}, {Column: "l.id", Desc: true}},
	DefaultLimit: 50,
	MaxLimit:     200,
}
