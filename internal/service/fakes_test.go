package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ampvending/amp-backend/internal/activity"
	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/mailer"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// ─── Activity ──────────────────────────────────────────────────────────

type recordedEvents struct {
	mu     sync.Mutex
	events []activity.Event
}

func (r *recordedEvents) Record(_ context.Context, e activity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) last() activity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// ─── Admins ────────────────────────────────────────────────────────────

type memAdmins struct {
	byID     map[string]*model.Admin
	err      error
	logins   []string
	loginErr error
}

func newMemAdmins(admins ...*model.Admin) *memAdmins {
	m := &memAdmins{byID: map[string]*model.Admin{}}
	for _, a := range admins {
		m.byID[a.ID] = a
	}
	return m
}

func (m *memAdmins) GetByID(_ context.Context, id string) (*model.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m *memAdmins) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range m.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAdmins) Create(_ context.Context, a *model.Admin) error {
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return fmt.Errorf("%w: admin_users_email_key", repository.ErrDuplicate)
		}
	}
	a.ID = fmt.Sprintf("admin-%d", len(m.byID)+1)
	a.CreatedAt = time.Now()
	m.byID[a.ID] = a
	return nil
}

func (m *memAdmins) RecordLogin(_ context.Context, id string, _ *string) error {
	m.logins = append(m.logins, id)
	return m.loginErr
}

// ─── Machines ──────────────────────────────────────────────────────────

type memMachines struct {
	machines map[string]*model.Machine
	images   map[string][]model.MachineImage
	listErr  error
	getErr   error
	seq      int
}

func newMemMachines() *memMachines {
	return &memMachines{machines: map[string]*model.Machine{}, images: map[string][]model.MachineImage{}}
}

func (m *memMachines) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memMachines) List(_ context.Context, spec filter.Spec, _ filter.Schema) ([]model.Machine, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := []model.Machine{}
	for _, v := range m.machines {
		out = append(out, *v)
	}
	start, end := spec.Window(len(out))
	return out[start:end], len(out), nil
}

func (m *memMachines) GetByID(_ context.Context, id string) (*model.Machine, error) {
	v, ok := m.machines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memMachines) GetBySlug(_ context.Context, slug string, activeOnly bool) (*model.Machine, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, v := range m.machines {
		if v.Slug == slug && (v.IsActive || !activeOnly) {
			cp := *v
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memMachines) slugTaken(slug, except string) bool {
	for id, v := range m.machines {
		if v.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (m *memMachines) Create(_ context.Context, v *model.Machine) error {
	if m.slugTaken(v.Slug, "") {
		return fmt.Errorf("%w: machines_slug_key", repository.ErrDuplicate)
	}
	v.ID = m.nextID("machine")
	cp := *v
	m.machines[v.ID] = &cp
	return nil
}

func (m *memMachines) Update(_ context.Context, v *model.Machine) error {
	if _, ok := m.machines[v.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.slugTaken(v.Slug, v.ID) {
		return fmt.Errorf("%w: machines_slug_key", repository.ErrDuplicate)
	}
	cp := *v
	m.machines[v.ID] = &cp
	return nil
}

func (m *memMachines) Delete(_ context.Context, id string) error {
	if _, ok := m.machines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.machines, id)
	delete(m.images, id)
	return nil
}

func (m *memMachines) Upsert(ctx context.Context, v *model.Machine) error {
	for id, existing := range m.machines {
		if existing.Slug == v.Slug {
			v.ID = id
			return m.Update(ctx, v)
		}
	}
	return m.Create(ctx, v)
}

func (m *memMachines) ListImages(_ context.Context, machineID string) ([]model.MachineImage, error) {
	return append([]model.MachineImage{}, m.images[machineID]...), nil
}

func (m *memMachines) AddImage(_ context.Context, img *model.MachineImage) error {
	if _, ok := m.machines[img.MachineID]; !ok {
		return repository.ErrNotFound
	}
	images := m.images[img.MachineID]
	if len(images) == 0 {
		img.IsPrimary = true
	}
	if img.IsPrimary {
		for i := range images {
			images[i].IsPrimary = false
		}
	}
	img.ID = m.nextID("image")
	m.images[img.MachineID] = append(images, *img)
	return nil
}

func (m *memMachines) DeleteImage(_ context.Context, machineID, imageID string) (*model.MachineImage, error) {
	images := m.images[machineID]
	for i, img := range images {
		if img.ID == imageID {
			m.images[machineID] = append(images[:i:i], images[i+1:]...)
			if img.IsPrimary && len(m.images[machineID]) > 0 {
				m.images[machineID][0].IsPrimary = true
			}
			return &img, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memMachines) SetPrimaryImage(_ context.Context, machineID, imageID string) (*model.MachineImage, error) {
	if _, ok := m.machines[machineID]; !ok {
		return nil, repository.ErrNotFound
	}
	images := m.images[machineID]
	found := -1
	for i := range images {
		if images[i].ID == imageID {
			found = i
		}
	}
	if found < 0 {
		return nil, repository.ErrNotFound
	}
	for i := range images {
		images[i].IsPrimary = i == found
	}
	img := images[found]
	return &img, nil
}

// ─── Products ──────────────────────────────────────────────────────────

type memProducts struct {
	products map[string]*model.Product
	listErr  error
}

func newMemProducts() *memProducts {
	return &memProducts{products: map[string]*model.Product{}}
}

func (m *memProducts) List(_ context.Context, spec filter.Spec, _ filter.Schema) ([]model.Product, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := []model.Product{}
	for _, v := range m.products {
		out = append(out, *v)
	}
	start, end := spec.Window(len(out))
	return out[start:end], len(out), nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*model.Product, error) {
	v, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memProducts) Create(_ context.Context, p *model.Product) error {
	for _, v := range m.products {
		if v.Name == p.Name {
			return fmt.Errorf("%w: products_name_key", repository.ErrDuplicate)
		}
	}
	p.ID = fmt.Sprintf("product-%d", len(m.products)+1)
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProducts) Update(_ context.Context, p *model.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memProducts) Upsert(ctx context.Context, p *model.Product) error {
	for id, v := range m.products {
		if v.Name == p.Name {
			p.ID = id
			return m.Update(ctx, p)
		}
	}
	return m.Create(ctx, p)
}

// ─── Contacts ──────────────────────────────────────────────────────────

type memContacts struct {
	contacts  map[string]*model.Contact
	createErr error
}

func newMemContacts() *memContacts {
	return &memContacts{contacts: map[string]*model.Contact{}}
}

func (m *memContacts) List(_ context.Context, spec filter.Spec) ([]model.Contact, int, error) {
	out := []model.Contact{}
	for _, v := range m.contacts {
		if status, ok := spec.Value("status"); ok && string(v.Status) != status {
			continue
		}
		out = append(out, *v)
	}
	start, end := spec.Window(len(out))
	return out[start:end], len(out), nil
}

func (m *memContacts) GetByID(_ context.Context, id string) (*model.Contact, error) {
	v, ok := m.contacts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memContacts) Create(_ context.Context, c *model.Contact) error {
	if m.createErr != nil {
		return m.createErr
	}
	c.ID = fmt.Sprintf("contact-%d", len(m.contacts)+1)
	cp := *c
	m.contacts[c.ID] = &cp
	return nil
}

func (m *memContacts) Update(_ context.Context, c *model.Contact) error {
	if _, ok := m.contacts[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	m.contacts[c.ID] = &cp
	return nil
}

func (m *memContacts) Delete(_ context.Context, id string) error {
	if _, ok := m.contacts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

// ─── Business info ─────────────────────────────────────────────────────

type memBusinessInfo struct {
	entries map[string]string
}

func (m *memBusinessInfo) GetAll(_ context.Context) ([]model.BusinessInfo, error) {
	out := []model.BusinessInfo{}
	for k, v := range m.entries {
		out = append(out, model.BusinessInfo{Key: k, Value: v})
	}
	return out, nil
}

func (m *memBusinessInfo) UpsertMany(_ context.Context, entries map[string]string) error {
	for k, v := range entries {
		m.entries[k] = v
	}
	return nil
}

// ─── Email ─────────────────────────────────────────────────────────────

type memEmailLogs struct {
	logs []*model.EmailLog
	err  error
}

func (m *memEmailLogs) Create(_ context.Context, l *model.EmailLog) error {
	if m.err != nil {
		return m.err
	}
	l.ID = fmt.Sprintf("email-%d", len(m.logs)+1)
	m.logs = append(m.logs, l)
	return nil
}

func (m *memEmailLogs) List(_ context.Context, spec filter.Spec) ([]model.EmailLog, int, error) {
	out := []model.EmailLog{}
	for _, l := range m.logs {
		out = append(out, *l)
	}
	start, end := spec.Window(len(out))
	return out[start:end], len(out), nil
}

type stubSender struct {
	sent []mailer.Message
	err  error
}

func (s *stubSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return fmt.Sprintf("re_%d", len(s.sent)), nil
}
