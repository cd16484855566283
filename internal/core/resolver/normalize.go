package resolver

import "strings"

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "ä", "a", "â", "a",
	"é", "e", "è", "e", "ë", "e", "ê", "e",
	"í", "i", "ì", "i", "ï", "i", "î", "i",
	"ó", "o", "ò", "o", "ö", "o", "ô", "o",
	"ú", "u", "ù", "u", "ü", "u", "û", "u",
	"ñ", "n", "ç", "c",
)

var separatorReplacer = strings.NewReplacer("-", "", "_", "", " ", "")

// StripAccents lowercases and removes Spanish diacritics.
func StripAccents(s string) string {
	return accentReplacer.Replace(strings.ToLower(s))
}

// Normalize lowercases, strips accents and removes separators, so "Just-Eat",
// "just_eat" and "JUST EAT" all compare equal.
func Normalize(s string) string {
	return separatorReplacer.Replace(StripAccents(s))
}

// NormalizeQuestion lowercases and strips accents but keeps word boundaries,
// for keyword scanning over full questions.
func NormalizeQuestion(s string) string {
	return strings.Join(strings.Fields(StripAccents(s)), " ")
}
