package templates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ludapartners/luda-mind/internal/core/gmv"
	"github.com/ludapartners/luda-mind/internal/core/intent"
	"github.com/ludapartners/luda-mind/internal/core/partner"
	"github.com/ludapartners/luda-mind/internal/core/pipeline"
	"github.com/ludapartners/luda-mind/internal/core/resolver"
)

type stubBookings struct {
	ids []string
}

func (s stubBookings) DistinctPharmacies(ctx context.Context, partnerID string, tr *resolver.TimeRange) ([]string, error) {
	return s.ids, nil
}

func newTestEngine(t *testing.T, bookings resolver.BookingStore) (*Engine, *partner.Registry) {
	t.Helper()
	registry, err := partner.Default()
	require.NoError(t, err)
	if bookings == nil {
		bookings = stubBookings{}
	}
	return NewEngine(resolver.NewResolver(registry, nil, bookings)), registry
}

func testTimeRange() *resolver.TimeRange {
	return &resolver.TimeRange{
		Start:       time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 11, 30, 23, 59, 59, 999999999, time.UTC),
		Granularity: resolver.GranularityMonth,
	}
}

func TestPartnerGMVSummaryEmbedsCanonicalExpression(t *testing.T) {
	engine, registry := newTestEngine(t, nil)
	glovo, _ := registry.ByID("glovo")

	qi := &intent.QueryIntent{
		MatchedTemplate: intent.TemplatePartnerGMVSummary,
		Entities: intent.Entities{
			Partner:   &glovo,
			TimeRange: testTimeRange(),
		},
	}

	plan, err := engine.Render(context.Background(), qi)
	require.NoError(t, err)
	require.Equal(t, pipeline.TargetMongoDB, plan.Target)
	require.NotNil(t, plan.Mongo)
	assert.Equal(t, "bookings", plan.Mongo.Collection)

	match, ok := plan.Mongo.Stages[0].(pipeline.Match)
	require.True(t, ok)
	assert.Equal(t, "partner", match.Filter[0].Key)
	assert.Equal(t, "glovo", match.Filter[0].Value)
	assert.Equal(t, "createdDate", match.Filter[1].Key)

	group, ok := plan.Mongo.Stages[1].(pipeline.Group)
	require.True(t, ok)
	assert.Equal(t, "$cancelled", group.ID)
	assert.Equal(t, "gmv", group.Accumulators[0].Key)
	assert.True(t, gmv.IsCanonicalAccumulator(group.Accumulators[0].Value),
		"templates must embed the exact canonical GMV expression")
}

func TestPartnerGMVSummaryRequiresEntities(t *testing.T) {
	engine, registry := newTestEngine(t, nil)
	glovo, _ := registry.ByID("glovo")

	qi := &intent.QueryIntent{
		MatchedTemplate: intent.TemplatePartnerGMVSummary,
		Entities:        intent.Entities{Partner: &glovo},
	}
	_, err := engine.Render(context.Background(), qi)
	assert.Error(t, err)
}

func TestTopPharmaciesGMVHonorsTopN(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	qi := &intent.QueryIntent{
		MatchedTemplate: intent.TemplateTopPharmaciesGMV,
		Entities:        intent.Entities{TopN: 5, TimeRange: testTimeRange()},
	}

	plan, err := engine.Render(context.Background(), qi)
	require.NoError(t, err)

	var limit *pipeline.Limit
	var group *pipeline.Group
	for _, s := range plan.Mongo.Stages {
		switch st := s.(type) {
		case pipeline.Limit:
			l := st
			limit = &l
		case pipeline.Group:
			g := st
			group = &g
		}
	}
	require.NotNil(t, limit)
	assert.Equal(t, int64(5), limit.N)
	require.NotNil(t, group)
	assert.Equal(t, "$pharmacyId", group.ID)
	assert.True(t, gmv.IsCanonicalAccumulator(group.Accumulators[0].Value))
}

func TestTopProductsSortsByUnitsOrAmount(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	byUnits := &intent.QueryIntent{
		MatchedTemplate: intent.TemplateTopProducts,
		Normalized:      "top productos mas vendidos",
	}
	plan, err := engine.Render(context.Background(), byUnits)
	require.NoError(t, err)
	assert.Equal(t, "units", findSortKey(t, plan))

	byAmount := &intent.QueryIntent{
		MatchedTemplate: intent.TemplateTopProducts,
		Normalized:      "top productos por gmv",
	}
	plan, err = engine.Render(context.Background(), byAmount)
	require.NoError(t, err)
	assert.Equal(t, "amount", findSortKey(t, plan))
}

func findSortKey(t *testing.T, plan *pipeline.Plan) string {
	t.Helper()
	for _, s := range plan.Mongo.Stages {
		if sort, ok := s.(pipeline.Sort); ok {
			return sort.Keys[0].Key
		}
	}
	t.Fatal("no sort stage in plan")
	return ""
}

func TestProductStockPharmaciesRequiresEAN(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	qi := &intent.QueryIntent{
		MatchedTemplate: intent.TemplateProductStockPharmacies,
		Entities: intent.Entities{
			Product: &resolver.ProductMatch{Code: "712345", EAN: "8470007123456"},
		},
	}
	plan, err := engine.Render(context.Background(), qi)
	require.NoError(t, err)
	assert.Equal(t, "stock", plan.Mongo.Collection)

	match := plan.Mongo.Stages[0].(pipeline.Match)
	assert.Equal(t, "ean", match.Filter[0].Key)
	assert.Equal(t, "8470007123456", match.Filter[0].Value)

	qi.Entities.Product = &resolver.ProductMatch{Code: "712345"}
	_, err = engine.Render(context.Background(), qi)
	assert.Error(t, err, "a product without EAN cannot be matched against stock")
}

func TestPartnerActivePharmaciesTagged(t *testing.T) {
	engine, registry := newTestEngine(t, nil)
	glovo, _ := registry.ByID("glovo")

	qi := &intent.QueryIntent{
		MatchedTemplate: intent.TemplatePartnerActivePharmacies,
		OutputShape:     intent.ShapeCount,
		Entities:        intent.Entities{Partner: &glovo},
	}

	plan, err := engine.Render(context.Background(), qi)
	require.NoError(t, err)
	assert.Equal(t, "pharmacies", plan.Mongo.Collection)

	match := plan.Mongo.Stages[0].(pipeline.Match)
	assert.Equal(t, "tags", match.Filter[0].Key)
	assert.Equal(t, "active", match.Filter[1].Key)

	_, isCount := plan.Mongo.Stages[1].(pipeline.Count)
	assert.True(t, isCount)
}

func TestPartnerActivePharmaciesOrderDerived(t *testing.T) {
	engine, registry := newTestEngine(t, stubBookings{ids: []string{"ph1", "ph2"}})
	uber, _ := registry.ByID("uber")

	qi := &intent.QueryIntent{
		MatchedTemplate: intent.TemplatePartnerActivePharmacies,
		OutputShape:     intent.ShapeList,
		Entities:        intent.Entities{Partner: &uber},
	}

	plan, err := engine.Render(context.Background(), qi)
	require.NoError(t, err)

	match := plan.Mongo.Stages[0].(pipeline.Match)
	assert.Equal(t, "_id", match.Filter[0].Key)
	in := match.Filter[0].Value.(bson.D)
	assert.Equal(t, "$in", in[0].Key)
	assert.Equal(t, []string{"ph1", "ph2"}, in[0].Value)

	assert.True(t, plan.Mongo.HasLimit(), "list shape must be bounded")
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	_, err := engine.Render(context.Background(), &intent.QueryIntent{MatchedTemplate: "nope"})
	assert.Error(t, err)
}
