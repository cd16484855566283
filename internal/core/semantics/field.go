package semantics

// AggregationHint tells the synthesizer how a field is usually aggregated.
type AggregationHint string

const (
	HintCount AggregationHint = "count"
	HintSum   AggregationHint = "sum"
	HintAvg   AggregationHint = "avg"
	HintList  AggregationHint = "list"
)

// Field maps natural-language vocabulary onto a concrete database field path.
// Fields are loaded once at startup and never mutated.
type Field struct {
	FieldPath       string          `json:"field_path"`
	Collection      string          `json:"collection"`
	Keywords        []string        `json:"keywords"`
	Synonyms        []string        `json:"synonyms"`
	AggregationHint AggregationHint `json:"aggregation_hint"`
	BusinessRule    string          `json:"business_rule,omitempty"`
}
