package intent

import (
	"github.com/ludapartners/luda-mind/internal/core/partner"
	"github.com/ludapartners/luda-mind/internal/core/pipeline"
	"github.com/ludapartners/luda-mind/internal/core/resolver"
)

// Mode is the query mode the dashboard sends with each question.
type Mode string

const (
	ModePharmacy       Mode = "pharmacy"
	ModeProduct        Mode = "product"
	ModePartner        Mode = "partner"
	ModeConversational Mode = "conversational"
)

// OutputShape decides how results are presented.
type OutputShape string

const (
	ShapeCount       OutputShape = "count"
	ShapeList        OutputShape = "list"
	ShapeAggregation OutputShape = "aggregation"
)

// Entities is the typed bag of everything resolved out of the question.
type Entities struct {
	Partner    *partner.Partner
	Province   string
	TimeRange  *resolver.TimeRange
	Product    *resolver.ProductMatch
	TagVariant string
	TopN       int
}

// QueryIntent is created per incoming question, consumed immediately by the
// template engine or the synthesizer, never persisted.
type QueryIntent struct {
	RawQuestion     string
	Normalized      string
	Mode            Mode
	TargetSystem    pipeline.TargetSystem
	OutputShape     OutputShape
	MatchedTemplate string
	Entities        Entities
}
