package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ludapartners/luda-mind/internal/core/partner"
)

// FilterKind selects how a pharmacy set is expressed.
type FilterKind string

const (
	// FilterTags filters pharmacies.tags directly (tagged partners).
	FilterTags FilterKind = "tags"
	// FilterPharmacyIDs carries an explicit id list derived from booking
	// activity (order-derived partners).
	FilterPharmacyIDs FilterKind = "pharmacy-ids"
)

// FilterSpec is the resolved pharmacy-set filter a template embeds.
type FilterSpec struct {
	Kind        FilterKind
	TagValues   []string
	PharmacyIDs []string
}

// BookingStore is the collaborator boundary for order-derived adherence. A nil
// time range means the partner's full booking history.
type BookingStore interface {
	DistinctPharmacies(ctx context.Context, partnerID string, tr *TimeRange) ([]string, error)
}

// ResolvePharmacySet branches on the partner's tag scheme.
//
// Tagged partners filter pharmacies.tags with every time-suffixed variant
// unless the user named one (tagVariant, e.g. "2H"). Order-derived partners
// (Uber, Just Eat) are resolved by scanning bookings; without a time qualifier
// that means the full historical adherence list, not a windowed count. The
// asymmetry versus tagged partners is intentional.
func (r *Resolver) ResolvePharmacySet(ctx context.Context, p partner.Partner, tr *TimeRange, tagVariant string) (FilterSpec, error) {
	switch p.TagScheme {
	case partner.SchemeTagged:
		tags := p.Tags
		if tagVariant != "" {
			suffix := "_" + strings.ToUpper(tagVariant)
			var filtered []string
			for _, tag := range tags {
				if strings.HasSuffix(tag, suffix) {
					filtered = append(filtered, tag)
				}
			}
			// An explicit qualifier the partner does not offer is a user
			// mistake, not a cue to widen the filter back to every variant.
			if len(filtered) == 0 {
				return FilterSpec{}, &UnresolvedEntityError{Kind: "tag_variant", Input: p.DisplayName + " " + tagVariant}
			}
			tags = filtered
		}
		if len(tags) == 0 {
			return FilterSpec{}, &UnresolvedEntityError{Kind: "pharmacy_set", Input: p.ID}
		}
		return FilterSpec{Kind: FilterTags, TagValues: tags}, nil

	case partner.SchemeOrderDerived:
		ids, err := r.bookings.DistinctPharmacies(ctx, p.ID, tr)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("booking scan for %s: %w", p.ID, err)
		}
		return FilterSpec{Kind: FilterPharmacyIDs, PharmacyIDs: ids}, nil

	default:
		return FilterSpec{}, fmt.Errorf("unknown tag scheme %q for partner %s", p.TagScheme, p.ID)
	}
}

// DetectTagVariant finds an explicit delivery-window qualifier ("2h", "48h")
// in the question.
func DetectTagVariant(question string) string {
	norm := NormalizeQuestion(question)
	switch {
	case strings.Contains(norm, "48h") || strings.Contains(norm, "48 horas"):
		return "48H"
	case strings.Contains(norm, "2h") || strings.Contains(norm, "2 horas"):
		return "2H"
	}
	return ""
}
