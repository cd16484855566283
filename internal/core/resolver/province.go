package resolver

import "strings"

// provinceByCity maps cities and informal names to the official province name
// used in pharmacies.province. Keys are normalized (lowercase, no accents).
var provinceByCity = map[string]string{
	"madrid":        "Madrid",
	"barcelona":     "Barcelona",
	"valencia":      "Valencia",
	"sevilla":       "Sevilla",
	"zaragoza":      "Zaragoza",
	"malaga":        "Málaga",
	"bilbao":        "Vizcaya",
	"vizcaya":       "Vizcaya",
	"bizkaia":       "Vizcaya",
	"murcia":        "Murcia",
	"palma":         "Baleares",
	"mallorca":      "Baleares",
	"baleares":      "Baleares",
	"laspalmas":     "Las Palmas",
	"grancanaria":   "Las Palmas",
	"tenerife":      "Santa Cruz de Tenerife",
	"santacruz":     "Santa Cruz de Tenerife",
	"alicante":      "Alicante",
	"cordoba":       "Córdoba",
	"valladolid":    "Valladolid",
	"vigo":          "Pontevedra",
	"pontevedra":    "Pontevedra",
	"gijon":         "Asturias",
	"oviedo":        "Asturias",
	"asturias":      "Asturias",
	"lacoruna":      "A Coruña",
	"acoruna":       "A Coruña",
	"coruna":        "A Coruña",
	"granada":       "Granada",
	"donostia":      "Guipúzcoa",
	"sansebastian":  "Guipúzcoa",
	"guipuzcoa":     "Guipúzcoa",
	"vitoria":       "Álava",
	"alava":         "Álava",
	"pamplona":      "Navarra",
	"navarra":       "Navarra",
	"santander":     "Cantabria",
	"cantabria":     "Cantabria",
	"toledo":        "Toledo",
	"badajoz":       "Badajoz",
	"salamanca":     "Salamanca",
	"burgos":        "Burgos",
	"albacete":      "Albacete",
	"castellon":     "Castellón",
	"cadiz":         "Cádiz",
	"jerez":         "Cádiz",
	"huelva":        "Huelva",
	"almeria":       "Almería",
	"jaen":          "Jaén",
	"leon":          "León",
	"lleida":        "Lleida",
	"lerida":        "Lleida",
	"girona":        "Girona",
	"gerona":        "Girona",
	"tarragona":     "Tarragona",
	"zamora":        "Zamora",
	"segovia":       "Segovia",
	"soria":         "Soria",
	"avila":         "Ávila",
	"cuenca":        "Cuenca",
	"guadalajara":   "Guadalajara",
	"ciudadreal":    "Ciudad Real",
	"caceres":       "Cáceres",
	"lugo":          "Lugo",
	"ourense":       "Ourense",
	"orense":        "Ourense",
	"huesca":        "Huesca",
	"teruel":        "Teruel",
	"larioja":       "La Rioja",
	"logrono":       "La Rioja",
	"palencia":      "Palencia",
	"ceuta":         "Ceuta",
	"melilla":       "Melilla",
	"lanzarote":     "Las Palmas",
	"fuerteventura": "Las Palmas",
	"ibiza":         "Baleares",
	"menorca":       "Baleares",
}

// ResolveProvince maps a city or province reference onto the official
// province name, case- and accent-insensitive.
func (r *Resolver) ResolveProvince(text string) (string, error) {
	norm := Normalize(text)
	if province, ok := provinceByCity[norm]; ok {
		return province, nil
	}
	return "", &UnresolvedEntityError{Kind: "province", Input: text}
}

// DetectProvince scans a full question for any known city/province reference.
// Two-word names ("ciudad real", "san sebastian") are checked as bigrams.
func (r *Resolver) DetectProvince(question string) (string, bool) {
	words := strings.Fields(StripAccents(question))
	for i := range words {
		words[i] = strings.Trim(words[i], "¿?¡!.,;:")
	}
	for i, word := range words {
		if i+1 < len(words) {
			if province, ok := provinceByCity[Normalize(word+words[i+1])]; ok {
				return province, true
			}
		}
		if province, ok := provinceByCity[Normalize(word)]; ok {
			return province, true
		}
	}
	return "", false
}
