package synthesizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ludapartners/luda-mind/internal/core/intent"
	"github.com/ludapartners/luda-mind/internal/core/semantics"
)

// buildMongoSystemPrompt grounds the model with only the semantic fields
// relevant to the question, to bound prompt size and keep it from inventing
// field names.
func buildMongoSystemPrompt(fields []semantics.Field) string {
	var sb strings.Builder

	sb.WriteString("You translate Spanish analytics questions about a pharmacy network into MongoDB aggregation pipelines.\n\n")
	sb.WriteString("=== AVAILABLE FIELDS ===\n")
	writeFieldContext(&sb, fields, "mongodb")
	sb.WriteString("\nRules:\n")
	sb.WriteString("- Use ONLY the fields listed above. Do not invent fields.\n")
	sb.WriteString("- Date filters on bookings use the createdDate field.\n")
	sb.WriteString("- Dates must be written as {\"$date\": \"2006-01-02T15:04:05Z\"}.\n")
	sb.WriteString("- Respond ONLY with JSON, no prose, in this shape:\n")
	sb.WriteString(`  {"collection": "<collection>", "stages": [{"$match": {...}}, ...]}` + "\n")
	sb.WriteString("- Allowed stages: $match, $group, $sort, $limit, $lookup, $unwind, $project, $count.\n")

	return sb.String()
}

// buildSQLSystemPrompt is the MySQL counterpart for analytics/historical
// questions.
func buildSQLSystemPrompt(fields []semantics.Field) string {
	var sb strings.Builder

	sb.WriteString("You translate Spanish analytics questions about a pharmacy network into a single MySQL SELECT statement.\n\n")
	sb.WriteString("=== AVAILABLE COLUMNS ===\n")
	writeFieldContext(&sb, fields, "mysql")
	sb.WriteString("\nRules:\n")
	sb.WriteString("- One SELECT statement only. No INSERT, UPDATE, DELETE, DDL or semicolons.\n")
	sb.WriteString("- Use ONLY the tables and columns listed above.\n")
	sb.WriteString("- Respond ONLY with JSON, no prose: {\"sql\": \"SELECT ...\"}.\n")

	return sb.String()
}

func writeFieldContext(sb *strings.Builder, fields []semantics.Field, _ string) {
	for _, f := range fields {
		sb.WriteString(fmt.Sprintf("- %s.%s (hint: %s", f.Collection, f.FieldPath, f.AggregationHint))
		if len(f.Keywords) > 0 {
			sb.WriteString(fmt.Sprintf("; matches: %s", strings.Join(f.Keywords, ", ")))
		}
		sb.WriteString(")\n")
		if f.BusinessRule != "" {
			sb.WriteString(fmt.Sprintf("  rule: %s\n", f.BusinessRule))
		}
	}
}

// buildUserMessage carries the question plus every entity already resolved, so
// the model substitutes canonical values instead of re-deriving them.
func buildUserMessage(qi *intent.QueryIntent) string {
	var sb strings.Builder

	sb.WriteString("Question: " + qi.RawQuestion + "\n")

	e := qi.Entities
	if e.Partner != nil {
		sb.WriteString(fmt.Sprintf("Resolved partner: id=%s (filter value)\n", e.Partner.ID))
	}
	if e.Province != "" {
		sb.WriteString(fmt.Sprintf("Resolved province: %s\n", e.Province))
	}
	if e.TimeRange != nil {
		sb.WriteString(fmt.Sprintf("Resolved time range: %s .. %s\n",
			e.TimeRange.Start.Format(time.RFC3339), e.TimeRange.End.Format(time.RFC3339)))
	}
	if e.Product != nil {
		sb.WriteString(fmt.Sprintf("Resolved product: code=%s ean=%s\n", e.Product.Code, e.Product.EAN))
	}
	sb.WriteString(fmt.Sprintf("Expected output shape: %s\n", qi.OutputShape))

	return sb.String()
}

// buildRepairMessage is the single permitted repair attempt: the original
// request plus the validator's complaint and the rejected output.
func buildRepairMessage(qi *intent.QueryIntent, previous, complaint string) string {
	var sb strings.Builder
	sb.WriteString(buildUserMessage(qi))
	sb.WriteString("\nYour previous answer was rejected:\n")
	sb.WriteString(previous + "\n")
	sb.WriteString("Problem: " + complaint + "\n")
	sb.WriteString("Produce a corrected answer in the same JSON shape.\n")
	return sb.String()
}
