package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/ampvending/amp-backend/internal/catalog"
	"github.com/ampvending/amp-backend/internal/filter"
	"github.com/ampvending/amp-backend/internal/metrics"
	"github.com/ampvending/amp-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *memMachines, *memProducts) {
	t.Helper()
	static, err := catalog.Load()
	require.NoError(t, err)
	machines, products := newMemMachines(), newMemProducts()
	return NewCatalogService(machines, products, static, metrics.New(), zerolog.Nop()), machines, products
}

func TestCatalogServesDatabase(t *testing.T) {
	svc, machines, _ := newCatalogFixture(t)
	require.NoError(t, machines.Create(context.Background(), &model.Machine{Slug: "db-only", Name: "DB Only", IsActive: true}))

	items, page, source, err := svc.ListMachines(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, source)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "db-only", items[0].Slug)
}

func TestCatalogFallsBackOnDatabaseError(t *testing.T) {
	svc, machines, products := newCatalogFixture(t)
	machines.listErr = errStoreDown
	products.listErr = errStoreDown

	items, page, source, err := svc.ListMachines(context.Background(), url.Values{"category": {"coffee"}})
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, source)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "amp-barista-one", items[0].Slug)

	prods, _, source, err := svc.ListProducts(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, source)
	assert.NotEmpty(t, prods)
}

func TestCatalogNeverMasksFilterErrors(t *testing.T) {
	svc, machines, _ := newCatalogFixture(t)
	machines.listErr = errStoreDown

	_, _, _, err := svc.ListMachines(context.Background(), url.Values{"category": {"jukebox"}})
	var ve *filter.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestCatalogGetMachine(t *testing.T) {
	svc, machines, _ := newCatalogFixture(t)
	ctx := context.Background()
	m := &model.Machine{Slug: "amp-duo-combo", Name: "Duo (db)", IsActive: true}
	require.NoError(t, machines.Create(ctx, m))
	require.NoError(t, machines.AddImage(ctx, &model.MachineImage{MachineID: m.ID, URL: "/uploads/duo.png"}))

	got, source, err := svc.GetMachine(ctx, "amp-duo-combo")
	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, source)
	assert.Len(t, got.Images, 1)

	_, _, err = svc.GetMachine(ctx, "amp-fresh-fit")
	assert.ErrorIs(t, err, ErrNotFound, "a machine missing from the database is not served from the static catalog")

	machines.getErr = errStoreDown
	got, source, err = svc.GetMachine(ctx, "amp-fresh-fit")
	require.NoError(t, err)
	assert.Equal(t, SourceStatic, source)
	assert.Equal(t, "amp-fresh-fit", got.Slug)

	_, _, err = svc.GetMachine(ctx, "no-such-machine")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogWithoutStaticReturnsError(t *testing.T) {
	machines := newMemMachines()
	machines.listErr = errStoreDown
	svc := NewCatalogService(machines, newMemProducts(), nil, nil, zerolog.Nop())

	_, _, _, err := svc.ListMachines(context.Background(), url.Values{})
	assert.ErrorIs(t, err, errStoreDown)
}
