package intent

import "strings"

// Template identifiers. These are the reviewed, trusted shapes; everything
// else falls through to the synthesizer.
const (
	TemplateProductStockPharmacies  = "product_stock_pharmacies"
	TemplateTopPharmaciesGMV        = "top_pharmacies_gmv"
	TemplateTopProducts             = "top_products"
	TemplatePartnerGMVSummary       = "partner_gmv_summary"
	TemplatePartnerActivePharmacies = "partner_active_pharmacies"
)

// Matcher pairs a template id with its pattern predicate. Matchers run in
// priority order and the first hit wins.
type Matcher struct {
	ID    string
	Match func(norm string, e *Entities) bool
}

func defaultMatchers() []Matcher {
	return []Matcher{
		{
			ID: TemplateProductStockPharmacies,
			Match: func(norm string, e *Entities) bool {
				return strings.Contains(norm, "stock") && e.Product != nil
			},
		},
		{
			ID: TemplateTopPharmaciesGMV,
			Match: func(norm string, e *Entities) bool {
				return hasTopMarker(norm) && strings.Contains(norm, "farmacia")
			},
		},
		{
			ID: TemplateTopProducts,
			Match: func(norm string, e *Entities) bool {
				return hasTopMarker(norm) && strings.Contains(norm, "producto")
			},
		},
		{
			ID: TemplatePartnerGMVSummary,
			Match: func(norm string, e *Entities) bool {
				if e.Partner == nil || e.TimeRange == nil {
					return false
				}
				return strings.Contains(norm, "gmv") ||
					strings.Contains(norm, "facturacion") ||
					strings.Contains(norm, "ventas") ||
					strings.Contains(norm, "pedidos") ||
					strings.Contains(norm, "reservas")
			},
		},
		{
			ID: TemplatePartnerActivePharmacies,
			Match: func(norm string, e *Entities) bool {
				return e.Partner != nil && strings.Contains(norm, "farmacia")
			},
		},
	}
}

func hasTopMarker(norm string) bool {
	return strings.Contains(norm, "top") ||
		strings.Contains(norm, "mejores") ||
		strings.Contains(norm, "mas vendidos")
}
