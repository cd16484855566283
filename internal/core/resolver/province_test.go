package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProvince(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		input string
		want  string
	}{
		{"madrid", "Madrid"},
		{"Madrid", "Madrid"},
		{"MÁLAGA", "Málaga"},
		{"malaga", "Málaga"},
		{"bilbao", "Vizcaya"},
		{"bizkaia", "Vizcaya"},
		{"vigo", "Pontevedra"},
		{"gijon", "Asturias"},
		{"la coruña", "A Coruña"},
		{"tenerife", "Santa Cruz de Tenerife"},
		{"mallorca", "Baleares"},
		{"logroño", "La Rioja"},
		{"jerez", "Cádiz"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := r.ResolveProvince(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveProvinceUnknown(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.ResolveProvince("lisboa")
	require.Error(t, err)
	var unresolved *UnresolvedEntityError
	assert.ErrorAs(t, err, &unresolved)
}

func TestDetectProvinceInQuestion(t *testing.T) {
	r := newTestResolver(t)

	province, ok := r.DetectProvince("¿Cuántas farmacias activas hay en Bilbao?")
	require.True(t, ok)
	assert.Equal(t, "Vizcaya", province)

	// Two-word names resolve as bigrams.
	province, ok = r.DetectProvince("farmacias en Ciudad Real con stock")
	require.True(t, ok)
	assert.Equal(t, "Ciudad Real", province)

	province, ok = r.DetectProvince("stock en San Sebastián")
	require.True(t, ok)
	assert.Equal(t, "Guipúzcoa", province)

	_, ok = r.DetectProvince("GMV de Glovo este mes")
	assert.False(t, ok)
}
