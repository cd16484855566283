package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludapartners/luda-mind/internal/core/partner"
)

// fakeCatalog is an in-memory ProductCatalog fixture.
type fakeCatalog struct {
	products []ProductMatch
}

func (f *fakeCatalog) ByCode(ctx context.Context, code string) (*ProductMatch, error) {
	for _, p := range f.products {
		if p.Code == code {
			match := p
			return &match, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) ByEAN(ctx context.Context, ean string) (*ProductMatch, error) {
	for _, p := range f.products {
		if p.EAN == ean {
			match := p
			return &match, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) SearchByDescription(ctx context.Context, text string) ([]ProductMatch, error) {
	norm := StripAccents(text)
	var out []ProductMatch
	for _, p := range f.products {
		if strings.Contains(StripAccents(p.Description), norm) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newProductResolver(t *testing.T, catalog ProductCatalog) *Resolver {
	t.Helper()
	registry, err := partner.Default()
	require.NoError(t, err)
	return NewResolver(registry, catalog, nil)
}

func TestResolveProductByNationalCode(t *testing.T) {
	catalog := &fakeCatalog{products: []ProductMatch{
		{Code: "712345", EAN: "8470007123456", Description: "IBUPROFENO CINFA 600MG"},
	}}
	r := newProductResolver(t, catalog)

	match, err := r.ResolveProduct(context.Background(), "712345")
	require.NoError(t, err)
	assert.Equal(t, "712345", match.Code)
	assert.Equal(t, 3, match.Quality)
}

func TestResolveProductByEAN(t *testing.T) {
	catalog := &fakeCatalog{products: []ProductMatch{
		{Code: "712345", EAN: "8470007123456", Description: "IBUPROFENO CINFA 600MG"},
	}}
	r := newProductResolver(t, catalog)

	match, err := r.ResolveProduct(context.Background(), "8470007123456")
	require.NoError(t, err)
	assert.Equal(t, "8470007123456", match.EAN)
	assert.Equal(t, 3, match.Quality)
}

func TestResolveProductSingleDescriptionMatch(t *testing.T) {
	catalog := &fakeCatalog{products: []ProductMatch{
		{Code: "712345", EAN: "8470007123456", Description: "IBUPROFENO CINFA 600MG"},
		{Code: "998877", EAN: "8470009988776", Description: "PARACETAMOL STADA 1G"},
	}}
	r := newProductResolver(t, catalog)

	match, err := r.ResolveProduct(context.Background(), "paracetamol")
	require.NoError(t, err)
	assert.Equal(t, "998877", match.Code)
}

func TestResolveProductAmbiguousNeverAutoResolved(t *testing.T) {
	catalog := &fakeCatalog{products: []ProductMatch{
		{Code: "100001", EAN: "8470001000011", Description: "OZEMPIC 0.25MG PLUMA"},
		{Code: "100002", EAN: "8470001000028", Description: "OZEMPIC 0.5MG PLUMA"},
		{Code: "100003", EAN: "8470001000035", Description: "OZEMPIC 1MG PLUMA"},
		{Code: "100004", EAN: "8470001000042", Description: "OZEMPIC 2MG PLUMA"},
		{Code: "100005", EAN: "8470001000059", Description: "AGUJAS PARA OZEMPIC"},
	}}
	r := newProductResolver(t, catalog)

	_, err := r.ResolveProduct(context.Background(), "ozempic")
	require.Error(t, err)

	var ambiguous *AmbiguousEntityError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Candidates, 5)

	// Prefix matches rank above the mid-description occurrence, shortest
	// description first among equals.
	assert.Equal(t, "100003", ambiguous.Candidates[0].ID)
	assert.Equal(t, "100005", ambiguous.Candidates[4].ID)
}

func TestResolveProductUnknown(t *testing.T) {
	r := newProductResolver(t, &fakeCatalog{})

	for _, input := range []string{"712345", "8470007123456", "inexistente", ""} {
		_, err := r.ResolveProduct(context.Background(), input)
		require.Error(t, err, "input %q", input)
		var unresolved *UnresolvedEntityError
		assert.ErrorAs(t, err, &unresolved, "input %q", input)
	}
}

func TestRankProductMatchesPrefersPrefixThenShorter(t *testing.T) {
	matches := []ProductMatch{
		{Code: "c", Description: "crema con ozempic xl"},
		{Code: "a", Description: "ozempic 1mg"},
		{Code: "b", Description: "ozempic 0.25mg pluma"},
	}
	rankProductMatches(matches, "ozempic")

	assert.Equal(t, "a", matches[0].Code)
	assert.Equal(t, "b", matches[1].Code)
	assert.Equal(t, "c", matches[2].Code)
}
