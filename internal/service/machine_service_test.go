package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var editor = Actor{AdminID: "a1", IP: "203.0.113.7"}

func newMachineFixture() (*MachineService, *memMachines, *recordedEvents) {
	repo := newMemMachines()
	rec := &recordedEvents{}
	return NewMachineService(repo, rec, zerolog.Nop()), repo, rec
}

func TestMachineCreateDerivesSlug(t *testing.T) {
	svc, _, rec := newMachineFixture()

	m, err := svc.Create(context.Background(), editor, model.CreateMachineRequest{
		Name:     "AMP Snack Pro 5000!",
		Category: model.MachineCategorySnack,
	})
	require.NoError(t, err)
	assert.Equal(t, "amp-snack-pro-5000", m.Slug)
	assert.True(t, m.IsActive)
	assert.NotNil(t, m.Features)
	assert.NotNil(t, m.Specifications)

	e := rec.last()
	assert.Equal(t, model.ActivityCreate, e.Action)
	assert.Equal(t, model.ResourceMachine, e.ResourceType)
	assert.Equal(t, m.ID, e.ResourceID)
	assert.Equal(t, "203.0.113.7", e.IPAddress)
}

func TestMachineCreateRejectsUnusableSlug(t *testing.T) {
	svc, _, rec := newMachineFixture()

	_, err := svc.Create(context.Background(), editor, model.CreateMachineRequest{Name: "Machine", Slug: "!!!", Category: model.MachineCategorySnack})
	var fe *FieldsError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "slug", fe.Fields[0].Field)
	assert.Empty(t, rec.events)
}

func TestMachineCreateDuplicateSlugIsConflict(t *testing.T) {
	svc, _, _ := newMachineFixture()
	req := model.CreateMachineRequest{Name: "Duo Combo", Category: model.MachineCategoryCombo}

	_, err := svc.Create(context.Background(), editor, req)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), editor, req)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMachineUpdateIsPartial(t *testing.T) {
	svc, _, rec := newMachineFixture()
	m, err := svc.Create(context.Background(), editor, model.CreateMachineRequest{
		Name: "Fresh Fit", Model: "FF-1", Category: model.MachineCategoryHealthy,
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), editor, m.ID, model.UpdateMachineRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "FF-1", updated.Model)
	assert.Equal(t, "fresh-fit", updated.Slug)

	e := rec.last()
	assert.Equal(t, model.ActivityUpdate, e.Action)
	before, ok := e.Old.(model.Machine)
	require.True(t, ok)
	assert.True(t, before.IsActive)
}

func TestMachineNotFound(t *testing.T) {
	svc, _, _ := newMachineFixture()

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(context.Background(), editor, "missing", model.UpdateMachineRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), editor, "missing"), ErrNotFound)
}

func TestMachineListRejectsBadFilter(t *testing.T) {
	svc, _, _ := newMachineFixture()

	_, _, err := svc.List(context.Background(), url.Values{"limit": {"abc"}})
	var ve *filter.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestMachineImages(t *testing.T) {
	svc, _, _ := newMachineFixture()
	ctx := context.Background()
	m, err := svc.Create(ctx, editor, model.CreateMachineRequest{Name: "Barista One", Category: model.MachineCategoryCoffee})
	require.NoError(t, err)
	other, err := svc.Create(ctx, editor, model.CreateMachineRequest{Name: "Chill 45", Category: model.MachineCategoryBeverage})
	require.NoError(t, err)

	first, err := svc.AddImage(ctx, editor, m.ID, model.AddMachineImageRequest{URL: "/uploads/a.png"})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)
	second, err := svc.AddImage(ctx, editor, m.ID, model.AddMachineImageRequest{URL: "/uploads/b.png"})
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)

	_, err = svc.SetPrimaryImage(ctx, editor, other.ID, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetPrimaryImage(ctx, editor, m.ID, second.ID)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	primaries := 0
	for _, img := range got.Images {
		if img.IsPrimary {
			primaries++
			assert.Equal(t, second.ID, img.ID)
		}
	}
	assert.Equal(t, 1, primaries)

	require.NoError(t, svc.DeleteImage(ctx, editor, m.ID, second.ID))
	images, err := svc.ListImages(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.True(t, images[0].IsPrimary)

	assert.ErrorIs(t, svc.DeleteImage(ctx, editor, m.ID, "missing"), ErrNotFound)
	_, err = svc.ListImages(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductCreateAndConflict(t *testing.T) {
	rec := &recordedEvents{}
	svc := NewProductService(newMemProducts(), rec, zerolog.Nop())

	p, err := svc.Create(context.Background(), editor, model.CreateProductRequest{Name: "Trail Mix", Category: model.ProductCategorySnacks})
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.Equal(t, model.ResourceProduct, rec.last().ResourceType)

	_, err = svc.Create(context.Background(), editor, model.CreateProductRequest{Name: "Trail Mix", Category: model.ProductCategorySnacks})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
