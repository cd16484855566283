package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludapartners/luda-mind/internal/core/partner"
)

// fakeBookingStore returns canned adherence lists and records the window it
// was asked for.
type fakeBookingStore struct {
	allTime  []string
	windowed []string
	lastTR   *TimeRange
	calls    int
}

func (f *fakeBookingStore) DistinctPharmacies(ctx context.Context, partnerID string, tr *TimeRange) ([]string, error) {
	f.calls++
	f.lastTR = tr
	if tr == nil {
		return f.allTime, nil
	}
	return f.windowed, nil
}

func newPharmacySetResolver(t *testing.T, store BookingStore) (*Resolver, *partner.Registry) {
	t.Helper()
	registry, err := partner.Default()
	require.NoError(t, err)
	return NewResolver(registry, nil, store), registry
}

func TestResolvePharmacySetTagged(t *testing.T) {
	store := &fakeBookingStore{}
	r, registry := newPharmacySetResolver(t, store)

	glovo, ok := registry.ByID("glovo")
	require.True(t, ok)

	spec, err := r.ResolvePharmacySet(context.Background(), glovo, nil, "")
	require.NoError(t, err)
	assert.Equal(t, FilterTags, spec.Kind)
	assert.Equal(t, []string{"GLOVO"}, spec.TagValues)
	assert.Zero(t, store.calls, "tagged partners never touch bookings")
}

func TestResolvePharmacySetTaggedVariant(t *testing.T) {
	store := &fakeBookingStore{}
	r, registry := newPharmacySetResolver(t, store)

	amazon, ok := registry.ByID("amazon")
	require.True(t, ok)

	// Without a qualifier every variant counts.
	spec, err := r.ResolvePharmacySet(context.Background(), amazon, nil, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"AMAZON_2H", "AMAZON_48H"}, spec.TagValues)

	// An explicit window qualifier narrows to the matching variant.
	spec, err = r.ResolvePharmacySet(context.Background(), amazon, nil, "2H")
	require.NoError(t, err)
	assert.Equal(t, []string{"AMAZON_2H"}, spec.TagValues)

	spec, err = r.ResolvePharmacySet(context.Background(), amazon, nil, "48H")
	require.NoError(t, err)
	assert.Equal(t, []string{"AMAZON_48H"}, spec.TagValues)
}

func TestResolvePharmacySetUnknownVariantRejected(t *testing.T) {
	store := &fakeBookingStore{}
	r, registry := newPharmacySetResolver(t, store)

	glovo, ok := registry.ByID("glovo")
	require.True(t, ok)

	// Glovo has no windowed variants, so an explicit qualifier must surface
	// instead of silently widening back to every tag.
	_, err := r.ResolvePharmacySet(context.Background(), glovo, nil, "48H")
	require.Error(t, err)
	var unresolved *UnresolvedEntityError
	assert.ErrorAs(t, err, &unresolved)
}

func TestResolvePharmacySetOrderDerived(t *testing.T) {
	store := &fakeBookingStore{
		allTime:  []string{"ph1", "ph2", "ph3", "ph4"},
		windowed: []string{"ph2", "ph3"},
	}
	r, registry := newPharmacySetResolver(t, store)

	uber, ok := registry.ByID("uber")
	require.True(t, ok)

	// No time qualifier means the full historical adherence list.
	spec, err := r.ResolvePharmacySet(context.Background(), uber, nil, "")
	require.NoError(t, err)
	assert.Equal(t, FilterPharmacyIDs, spec.Kind)
	assert.Equal(t, []string{"ph1", "ph2", "ph3", "ph4"}, spec.PharmacyIDs)
	assert.Nil(t, store.lastTR)

	// A window strictly narrows the set.
	tr := &TimeRange{Start: anchor.AddDate(0, 0, -7), End: anchor}
	spec, err = r.ResolvePharmacySet(context.Background(), uber, tr, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ph2", "ph3"}, spec.PharmacyIDs)
	require.NotNil(t, store.lastTR)
	assert.True(t, store.lastTR.Start.Equal(tr.Start))
}

func TestDetectTagVariant(t *testing.T) {
	assert.Equal(t, "48H", DetectTagVariant("farmacias de amazon 48h"))
	assert.Equal(t, "48H", DetectTagVariant("amazon en 48 horas"))
	assert.Equal(t, "2H", DetectTagVariant("farmacias amazon 2h en madrid"))
	assert.Equal(t, "", DetectTagVariant("farmacias de amazon"))
}
