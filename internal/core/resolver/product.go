package resolver

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ProductMatch is one catalog candidate for a product reference.
type ProductMatch struct {
	Code        string
	EAN         string
	Description string
	// Quality orders candidates: 3 exact code/EAN, 2 description prefix,
	// 1 word-boundary match, 0 plain substring.
	Quality int
}

// ProductCatalog is the collaborator boundary for catalog lookups. Backed by
// the analytics MySQL products table in production, by fixtures in tests.
type ProductCatalog interface {
	ByCode(ctx context.Context, code string) (*ProductMatch, error)
	ByEAN(ctx context.Context, ean string) (*ProductMatch, error)
	SearchByDescription(ctx context.Context, text string) ([]ProductMatch, error)
}

var (
	nationalCodeRe = regexp.MustCompile(`^\d{6}$`)
	eanRe          = regexp.MustCompile(`^\d{13}$`)
)

// ResolveProduct classifies the token as a 6-digit national code, a 13-digit
// EAN, or a free-text name. Free text matching more than one candidate returns
// AmbiguousEntityError with all candidates ranked — the user disambiguates by
// code, the resolver never picks for them.
func (r *Resolver) ResolveProduct(ctx context.Context, text string) (*ProductMatch, error) {
	token := strings.TrimSpace(text)
	if token == "" {
		return nil, &UnresolvedEntityError{Kind: "product", Input: text}
	}

	switch {
	case nationalCodeRe.MatchString(token):
		match, err := r.catalog.ByCode(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("catalog lookup by code: %w", err)
		}
		if match == nil {
			return nil, &UnresolvedEntityError{Kind: "product", Input: text}
		}
		match.Quality = 3
		return match, nil

	case eanRe.MatchString(token):
		match, err := r.catalog.ByEAN(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("catalog lookup by ean: %w", err)
		}
		if match == nil {
			return nil, &UnresolvedEntityError{Kind: "product", Input: text}
		}
		match.Quality = 3
		return match, nil
	}

	matches, err := r.catalog.SearchByDescription(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	if len(matches) == 0 {
		return nil, &UnresolvedEntityError{Kind: "product", Input: text}
	}

	rankProductMatches(matches, token)
	if len(matches) > 1 {
		candidates := make([]Candidate, len(matches))
		for i, m := range matches {
			candidates[i] = Candidate{ID: m.Code, Label: m.Description}
		}
		return nil, &AmbiguousEntityError{Kind: "product", Input: text, Candidates: candidates}
	}
	return &matches[0], nil
}

// rankProductMatches scores matches against the query and sorts best-first,
// with shorter descriptions breaking ties.
func rankProductMatches(matches []ProductMatch, query string) {
	normQuery := StripAccents(query)
	for i := range matches {
		normDesc := StripAccents(matches[i].Description)
		switch {
		case strings.HasPrefix(normDesc, normQuery):
			matches[i].Quality = 2
		case strings.Contains(normDesc, " "+normQuery):
			matches[i].Quality = 1
		default:
			matches[i].Quality = 0
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Quality != matches[j].Quality {
			return matches[i].Quality > matches[j].Quality
		}
		return len(matches[i].Description) < len(matches[j].Description)
	})
}
