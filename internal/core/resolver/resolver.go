package resolver

import (
	"strings"

	"github.com/ludapartners/luda-mind/internal/core/partner"
)

// minPartnerMatchLen is the containment threshold: shorter normalized inputs
// match too many aliases to be trusted.
const minPartnerMatchLen = 3

// Resolver maps free-text fragments to canonical domain values. It holds only
// read-only registries and collaborator boundaries, so it is safe to share
// across requests.
type Resolver struct {
	partners *partner.Registry
	catalog  ProductCatalog
	bookings BookingStore
}

func NewResolver(partners *partner.Registry, catalog ProductCatalog, bookings BookingStore) *Resolver {
	return &Resolver{
		partners: partners,
		catalog:  catalog,
		bookings: bookings,
	}
}

// ResolvePartner matches free text against partner ids and aliases: exact
// match first, then two-way containment, longest alias winning ties. Below the
// threshold it returns UnresolvedEntityError — the caller asks, never guesses.
func (r *Resolver) ResolvePartner(text string) (partner.Partner, error) {
	norm := Normalize(text)
	if norm == "" {
		return partner.Partner{}, &UnresolvedEntityError{Kind: "partner", Input: text}
	}

	// Exact id or alias match
	for _, p := range r.partners.All() {
		if norm == Normalize(p.ID) {
			return p, nil
		}
		for _, alias := range p.Aliases {
			if norm == Normalize(alias) {
				return p, nil
			}
		}
	}

	if len(norm) < minPartnerMatchLen {
		return partner.Partner{}, &UnresolvedEntityError{Kind: "partner", Input: text}
	}

	// Containment in either direction, longest alias wins
	var best partner.Partner
	bestLen := -1
	found := false
	for _, p := range r.partners.All() {
		for _, alias := range append([]string{p.ID, p.DisplayName}, p.Aliases...) {
			normAlias := Normalize(alias)
			if len(normAlias) < minPartnerMatchLen {
				continue
			}
			if contains(norm, normAlias) || contains(normAlias, norm) {
				if len(normAlias) > bestLen {
					best = p
					bestLen = len(normAlias)
					found = true
				}
			}
		}
	}
	if !found {
		return partner.Partner{}, &UnresolvedEntityError{Kind: "partner", Input: text}
	}
	return best, nil
}

// DetectPartner scans a full question for any partner reference. Used by the
// classifier, which receives whole sentences rather than isolated tokens.
// Aliases must line up with whole words: "dia" matches the token "DIA" but
// never the tail of "días", and multi-word aliases match across separators
// ("just eat", "just-eat"). Longest alias wins.
func (r *Resolver) DetectPartner(question string) (partner.Partner, bool) {
	tokens := questionTokens(question)
	var best partner.Partner
	bestLen := -1
	for _, p := range r.partners.All() {
		for _, alias := range append([]string{p.ID, p.DisplayName}, p.Aliases...) {
			normAlias := Normalize(alias)
			if len(normAlias) >= minPartnerMatchLen && len(normAlias) > bestLen && matchesTokens(tokens, normAlias) {
				best = p
				bestLen = len(normAlias)
			}
		}
	}
	return best, bestLen >= 0
}

// questionTokens splits a question into accent-stripped lowercase words with
// surrounding punctuation removed.
func questionTokens(question string) []string {
	fields := strings.Fields(StripAccents(question))
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "¿?¡!.,;:()")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// matchesTokens reports whether a run of consecutive tokens, separators
// collapsed, equals the normalized alias exactly.
func matchesTokens(tokens []string, normAlias string) bool {
	for i := range tokens {
		var joined strings.Builder
		for j := i; j < len(tokens); j++ {
			joined.WriteString(separatorReplacer.Replace(tokens[j]))
			if joined.Len() > len(normAlias) {
				break
			}
			if joined.String() == normAlias {
				return true
			}
		}
	}
	return false
}

func contains(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}
