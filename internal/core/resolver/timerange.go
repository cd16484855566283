package resolver

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Granularity of a resolved time range.
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
	GranularityCustom  Granularity = "custom"
)

// TimeRange is a concrete date window derived from a relative expression,
// anchored to the question's execution timestamp. Start <= End always.
type TimeRange struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
}

var (
	lastNDaysRe   = regexp.MustCompile(`ultim[oa]s (\d+) dias`)
	customRangeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:\.\.|al|a|hasta)\s*(\d{4}-\d{2}-\d{2})`)
)

// ResolveTimeRange parses the closed grammar of relative expressions. "este X"
// is the current, not-yet-complete period ending at now; "último/pasado X" is
// the most recently completed period. "mes pasado" is always the full previous
// calendar month, never a rolling 30-day window.
func (r *Resolver) ResolveTimeRange(text string, now time.Time) (TimeRange, error) {
	if tr, ok := parseTimeRange(text, now); ok {
		return tr, nil
	}
	return TimeRange{}, &UnresolvedEntityError{Kind: "time_range", Input: text}
}

// DetectTimeRange scans a full question for a time expression.
func (r *Resolver) DetectTimeRange(question string, now time.Time) (TimeRange, bool) {
	return parseTimeRange(question, now)
}

func parseTimeRange(text string, now time.Time) (TimeRange, bool) {
	norm := NormalizeQuestion(text)

	if m := customRangeRe.FindStringSubmatch(norm); m != nil {
		start, err1 := time.ParseInLocation("2006-01-02", m[1], now.Location())
		end, err2 := time.ParseInLocation("2006-01-02", m[2], now.Location())
		if err1 == nil && err2 == nil && !end.Before(start) {
			return TimeRange{Start: start, End: endOfDay(end), Granularity: GranularityCustom}, true
		}
	}

	if m := lastNDaysRe.FindStringSubmatch(norm); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return TimeRange{Start: now.AddDate(0, 0, -n), End: now, Granularity: GranularityCustom}, true
		}
	}

	switch {
	case containsPhrase(norm, "hoy"):
		return TimeRange{Start: startOfDay(now), End: endOfDay(now), Granularity: GranularityDay}, true

	case containsPhrase(norm, "ayer"):
		y := now.AddDate(0, 0, -1)
		return TimeRange{Start: startOfDay(y), End: endOfDay(y), Granularity: GranularityDay}, true

	case containsPhrase(norm, "esta semana"):
		return TimeRange{Start: startOfWeek(now), End: now, Granularity: GranularityWeek}, true

	case containsPhrase(norm, "semana pasada"), containsPhrase(norm, "ultima semana"):
		start := startOfWeek(now).AddDate(0, 0, -7)
		return TimeRange{Start: start, End: endOfDay(start.AddDate(0, 0, 6)), Granularity: GranularityWeek}, true

	case containsPhrase(norm, "este mes"):
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return TimeRange{Start: start, End: now, Granularity: GranularityMonth}, true

	case containsPhrase(norm, "mes pasado"), containsPhrase(norm, "ultimo mes"):
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Add(-time.Nanosecond)
		return TimeRange{Start: start, End: end, Granularity: GranularityMonth}, true

	case containsPhrase(norm, "este trimestre"):
		return TimeRange{Start: startOfQuarter(now), End: now, Granularity: GranularityQuarter}, true

	case containsPhrase(norm, "trimestre pasado"), containsPhrase(norm, "ultimo trimestre"):
		start := startOfQuarter(now).AddDate(0, -3, 0)
		end := startOfQuarter(now).Add(-time.Nanosecond)
		return TimeRange{Start: start, End: end, Granularity: GranularityQuarter}, true

	case containsPhrase(norm, "este ano"):
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return TimeRange{Start: start, End: now, Granularity: GranularityYear}, true

	case containsPhrase(norm, "ano pasado"), containsPhrase(norm, "ultimo ano"):
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()).Add(-time.Nanosecond)
		return TimeRange{Start: start, End: end, Granularity: GranularityYear}, true
	}

	return TimeRange{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// Weeks start Monday.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return startOfDay(t.AddDate(0, 0, -weekday+1))
}

func startOfQuarter(t time.Time) time.Time {
	month := time.Month(((int(t.Month())-1)/3)*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, t.Location())
}

// containsPhrase matches whole words so "hoy" does not fire inside other
// tokens, whatever punctuation surrounds the phrase.
func containsPhrase(haystack, phrase string) bool {
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
