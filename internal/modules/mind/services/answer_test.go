package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ludapartners/luda-mind/internal/core/intent"
	"github.com/ludapartners/luda-mind/internal/core/partner"
	"github.com/ludapartners/luda-mind/internal/core/resolver"
)

func TestFormatPartnerGMVSummaryAnswer(t *testing.T) {
	glovo := partner.Partner{ID: "glovo", DisplayName: "Glovo"}
	qi := &intent.QueryIntent{
		MatchedTemplate: intent.TemplatePartnerGMVSummary,
		OutputShape:     intent.ShapeAggregation,
		Entities:        intent.Entities{Partner: &glovo},
	}

	rows := []map[string]interface{}{
		{"_id": false, "gmv": 1534.20, "bookings": int32(120)},
		{"_id": true, "gmv": 89.50, "bookings": int32(7)},
	}

	answer := formatAnswer(qi, rows)
	assert.Contains(t, answer, "Glovo")
	assert.Contains(t, answer, "1534.20 €")
	assert.Contains(t, answer, "120 pedidos")
	assert.Contains(t, answer, "Cancelados: 89.50 €")
}

func TestFormatAnswerAggregatesRawOrdersThroughHybridRule(t *testing.T) {
	qi := &intent.QueryIntent{OutputShape: intent.ShapeAggregation}

	rows := []map[string]interface{}{
		{
			"_id":       "o1",
			"partner":   "glovo",
			"thirdUser": bson.M{"price": 48.70},
			"items": bson.A{
				bson.M{"unitPrice": 10.0, "quantity": int32(2)},
			},
		},
		{
			"_id": "o2",
			"items": bson.A{
				bson.M{"unitPrice": 10.0, "quantity": int32(2)},
				bson.M{"unitPrice": 5.0, "quantity": int32(1)},
			},
		},
	}

	answer := formatAnswer(qi, rows)
	// 48.70 verbatim for o1 (line items ignored), 25.00 summed for o2.
	assert.Contains(t, answer, "73.70 €")
	assert.Contains(t, answer, "(2 pedidos)")
	assert.Contains(t, answer, "Ecommerce: 48.70 €")
	assert.Contains(t, answer, "Desabastecimientos: 25.00 €")
}

func TestFormatAnswerCountShapes(t *testing.T) {
	qi := &intent.QueryIntent{OutputShape: intent.ShapeCount}

	assert.Equal(t, "**42** resultados.",
		formatAnswer(qi, []map[string]interface{}{{"count": int32(42)}}))
	assert.Equal(t, "**9** resultados.",
		formatAnswer(qi, []map[string]interface{}{{"total": int64(9)}}))
	// A single-key row counts even under a nonstandard name.
	assert.Equal(t, "**3** resultados.",
		formatAnswer(qi, []map[string]interface{}{{"farmacias": 3}}))
}

func TestFormatAnswerListTable(t *testing.T) {
	qi := &intent.QueryIntent{OutputShape: intent.ShapeList}

	rows := []map[string]interface{}{
		{"description": "Farmacia Sol", "province": "Madrid"},
		{"description": "Farmacia Mar", "province": "Valencia"},
	}

	answer := formatAnswer(qi, rows)
	assert.Contains(t, answer, "| description | province |")
	assert.Contains(t, answer, "| Farmacia Sol | Madrid |")
	assert.Contains(t, answer, "| Farmacia Mar | Valencia |")
}

func TestFormatAnswerTableTruncation(t *testing.T) {
	qi := &intent.QueryIntent{OutputShape: intent.ShapeList}

	rows := make([]map[string]interface{}, 50)
	for i := range rows {
		rows[i] = map[string]interface{}{"n": i}
	}

	answer := formatAnswer(qi, rows)
	assert.Contains(t, answer, "Mostrando 30 de 50 resultados")
}

func TestClarificationAnswers(t *testing.T) {
	msg, ok := clarificationAnswer(&resolver.AmbiguousEntityError{
		Kind:  "product",
		Input: "ozempic",
		Candidates: []resolver.Candidate{
			{ID: "100001", Label: "OZEMPIC 0.25MG PLUMA"},
			{ID: "100002", Label: "OZEMPIC 1MG PLUMA"},
		},
	})
	require.True(t, ok)
	assert.Contains(t, msg, "ozempic")
	assert.Contains(t, msg, "OZEMPIC 0.25MG PLUMA")
	assert.Contains(t, msg, "código 100001")

	msg, ok = clarificationAnswer(&resolver.UnresolvedEntityError{Kind: "partner", Input: "deliveroo"})
	require.True(t, ok)
	assert.Contains(t, msg, "deliveroo")

	_, ok = clarificationAnswer(assert.AnError)
	assert.False(t, ok)
}
