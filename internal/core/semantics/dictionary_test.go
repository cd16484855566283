package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDictionaryLoads(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, d.All())

	for _, collection := range []string{"bookings", "pharmacies", "products", "stock", "partner_monthly_metrics"} {
		assert.True(t, d.HasCollection(collection), collection)
	}
	assert.False(t, d.HasCollection("users"))
}

func TestHasFieldDottedPaths(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.True(t, d.HasField("bookings", "thirdUser.price"))
	// A prefix of a declared dotted path is addressable too.
	assert.True(t, d.HasField("bookings", "thirdUser"))
	assert.True(t, d.HasField("bookings", "items"))

	assert.False(t, d.HasField("bookings", "createdAt"))
	assert.False(t, d.HasField("bookings", "totalAmount"))
	assert.False(t, d.HasField("pharmacies", "thirdUser.price"))
}

func TestCanonicalDateField(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "createdDate", d.CanonicalDateField("bookings"))
	assert.Equal(t, "month", d.CanonicalDateField("partner_monthly_metrics"))
}

func TestRelevantFieldsFiltersByMention(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	fields := d.RelevantFields("gmv de glovo este mes")
	require.NotEmpty(t, fields)

	paths := make(map[string]bool)
	for _, f := range fields {
		paths[f.Collection+"."+f.FieldPath] = true
	}
	assert.True(t, paths["bookings.thirdUser.price"], "gmv keyword must pull in the hybrid rule field")
	assert.True(t, paths["bookings.partner"])
	assert.False(t, paths["stock.quantity"], "stock fields are irrelevant to a gmv question")

	assert.Empty(t, d.RelevantFields("xyzzy"))
}

func TestNewDictionaryRejectsBadInput(t *testing.T) {
	_, err := NewDictionary([]byte("not json"))
	assert.Error(t, err)

	_, err = NewDictionary([]byte("[]"))
	assert.Error(t, err)

	_, err = NewDictionary([]byte(`[{"field_path":"","collection":"bookings"}]`))
	assert.Error(t, err)
}
