package intent

import (
	"strings"

	"github.com/ludapartners/luda-mind/internal/core/pipeline"
)

// Disjoint keyword sets for datastore routing. Analytics and historical
// vocabulary lives in MySQL; operational, real-time vocabulary in MongoDB.
var (
	mysqlKeywords = []string{
		"historico", "evolucion", "tendencia", "crecimiento", "comparativa",
		"mensual", "trimestral", "anual", "acumulado", "serie", "variacion",
		"interanual", "media mensual",
	}
	mongoKeywords = []string{
		"hoy", "ahora", "stock", "disponible", "activas", "activa",
		"pedidos", "reservas", "farmacias", "farmacia", "producto", "productos",
		"tiempo real", "pendiente", "cancelados",
	}
)

// routeTargetSystem scores the question against both sets. Only a strictly
// greater MySQL score routes to MySQL; ties go to MongoDB because operational
// data is the common case.
func routeTargetSystem(norm string) pipeline.TargetSystem {
	mysqlScore := scoreKeywords(norm, mysqlKeywords)
	mongoScore := scoreKeywords(norm, mongoKeywords)
	if mysqlScore > mongoScore {
		return pipeline.TargetMySQL
	}
	return pipeline.TargetMongoDB
}

func scoreKeywords(norm string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(norm, kw) {
			score++
		}
	}
	return score
}

// Listing verbs flip the output shape to list. Without one the shape defaults
// to count even when the question names a filter — the model biases toward
// counts for terse questions and the system standardizes on that bias.
var listingVerbs = []string{
	"listame", "lista", "listado", "muestrame", "muestra", "ensename",
	"cuales son", "que farmacias", "que productos", "dime cuales",
	"dame la lista", "dame las", "dame los",
}

var aggregationWords = []string{
	"gmv", "facturacion", "total", "suma", "media", "promedio", "importe",
	"ingresos", "valor",
}

func resolveOutputShape(norm string) OutputShape {
	for _, verb := range listingVerbs {
		if hasPhrase(norm, verb) {
			return ShapeList
		}
	}
	for _, word := range aggregationWords {
		if hasPhrase(norm, word) {
			return ShapeAggregation
		}
	}
	return ShapeCount
}

// hasPhrase matches whole words so "lista" does not fire inside "analista" or
// "revista".
func hasPhrase(haystack, phrase string) bool {
	offset := 0
	for {
		i := strings.Index(haystack[offset:], phrase)
		if i < 0 {
			return false
		}
		i += offset
		after := i + len(phrase)
		beforeOK := i == 0 || !isWordByte(haystack[i-1])
		afterOK := after == len(haystack) || !isWordByte(haystack[after])
		if beforeOK && afterOK {
			return true
		}
		offset = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
