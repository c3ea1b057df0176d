// Package catalog holds the static machine and product catalog that ships
// with the binary. It seeds the database and backs the public catalog when
// the database is unreachable.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/google/uuid"
)

//go:embed data/*.json
var files embed.FS

// namespace derives stable ids for static entries.
var namespace = uuid.MustParse("8c1c7f1e-5a3b-4d7e-9a41-2b6f0d3e9c10")

// Static is an immutable, in-memory catalog.
type Static struct {
	machines []model.Machine
	products []model.Product
}

// Load decodes the embedded catalog.
func Load() (*Static, error) {
	var machines []model.Machine
	if err := decode("data/machines.json", &machines); err != nil {
		return nil, err
	}
	var products []model.Product
	if err := decode("data/products.json", &products); err != nil {
		return nil, err
	}

	for i := range machines {
		m := &machines[i]
		if m.Slug == "" {
			return nil, fmt.Errorf("catalog: machine %q has no slug", m.Name)
		}
		m.ID = uuid.NewSHA1(namespace, []byte("machine:"+m.Slug)).String()
		if m.Features == nil {
			m.Features = []string{}
		}
		if m.Specifications == nil {
			m.Specifications = map[string]string{}
		}
	}
	for i := range products {
		p := &products[i]
		p.ID = uuid.NewSHA1(namespace, []byte("product:"+p.Name)).String()
	}

	sort.SliceStable(machines, func(i, j int) bool {
		return less(machines[i].DisplayOrder, machines[j].DisplayOrder, machines[i].Name, machines[j].Name, machines[i].ID, machines[j].ID)
	})
	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i].DisplayOrder, products[j].DisplayOrder, products[i].Name, products[j].Name, products[i].ID, products[j].ID)
	})

	return &Static{machines: machines, products: products}, nil
}

func decode(name string, dst any) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", name, err)
	}
	return nil
}

// less orders by display order, then name, then id, matching the database order.
func less(orderA, orderB int, nameA, nameB, idA, idB string) bool {
	if orderA != orderB {
		return orderA < orderB
	}
	if nameA != nameB {
		return nameA < nameB
	}
	return idA < idB
}

// Machines returns a copy of every machine, active or not.
func (s *Static) Machines() []model.Machine {
	return append([]model.Machine(nil), s.machines...)
}

// Products returns a copy of every product.
func (s *Static) Products() []model.Product {
	return append([]model.Product(nil), s.products...)
}

// ListMachines applies the public machine filters to the static catalog and
// returns the requested window plus the total match count.
func (s *Static) ListMachines(spec filter.Spec) ([]model.Machine, int) {
	category, hasCategory := spec.Value("category")
	search := strings.ToLower(spec.Search())

	matched := make([]model.Machine, 0, len(s.machines))
	for _, m := range s.machines {
		if !m.IsActive {
			continue
		}
		if hasCategory && string(m.Category) != category {
			continue
		}
		if search != "" && !containsAny(search, m.Name, m.Model, m.ShortDescription) {
			continue
		}
		matched = append(matched, m)
	}

	start, end := spec.Window(len(matched))
	return matched[start:end], len(matched)
}

// MachineBySlug returns an active machine by slug.
func (s *Static) MachineBySlug(slug string) (*model.Machine, bool) {
	for _, m := range s.machines {
		if m.Slug == slug && m.IsActive {
			out := m
			return &out, true
		}
	}
	return nil, false
}

// ListProducts applies the public product filters to the static catalog.
func (s *Static) ListProducts(spec filter.Spec) ([]model.Product, int) {
	category, hasCategory := spec.Value("category")
	search := strings.ToLower(spec.Search())

	matched := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if hasCategory && string(p.Category) != category {
			continue
		}
		if search != "" && !containsAny(search, p.Name, p.Description, p.Brand) {
			continue
		}
		matched = append(matched, p)
	}

	start, end := spec.Window(len(matched))
	return matched[start:end], len(matched)
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
