package partner

// Category classifies the external sales channel.
type Category string

const (
	CategoryDelivery    Category = "delivery"
	CategoryMarketplace Category = "marketplace"
	CategoryRetail      Category = "retail"
	CategoryLab         Category = "lab"
)

// TagScheme is how a pharmacy's adherence to the partner is recorded.
type TagScheme string

const (
	// SchemeTagged partners mark adhered pharmacies with explicit tags on the
	// pharmacy record (possibly time-variant: AMAZON_2H, AMAZON_48H).
	SchemeTagged TagScheme = "tagged"
	// SchemeOrderDerived partners (Uber, Just Eat) have no tags; adherence is
	// inferred from booking activity.
	SchemeOrderDerived TagScheme = "order-derived"
)

// Partner is one external sales channel. The ID is the canonical filter value
// no matter how the user typed the name.
type Partner struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Category    Category  `json:"category"`
	TagScheme   TagScheme `json:"tag_scheme"`
	Tags        []string  `json:"tags"`
	Aliases     []string  `json:"aliases"`
}
