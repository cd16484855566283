package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ludapartners/luda-mind/internal/core/resolver"
)

// Classifier decides the execution path for an incoming question: target
// datastore, output shape, resolved entities and, when a reviewed pattern
// matches, the hardcoded template to use.
type Classifier struct {
	resolver *resolver.Resolver
	matchers []Matcher
}

func NewClassifier(res *resolver.Resolver) *Classifier {
	return &Classifier{
		resolver: res,
		matchers: defaultMatchers(),
	}
}

var (
	productCodeTokenRe = regexp.MustCompile(`\b(\d{13}|\d{6})\b`)
	topNRe             = regexp.MustCompile(`top\s+(\d+)`)
	stockOfRe          = regexp.MustCompile(`stock\s+de(?:l)?\s+(.+?)(?:\s+en\s+|\?|$)`)
)

// Classify builds the QueryIntent for a question. Ambiguous or unresolved
// entity references propagate as typed errors so the caller can turn them into
// clarification requests instead of guessing.
func (c *Classifier) Classify(ctx context.Context, question string, mode Mode, now time.Time) (*QueryIntent, error) {
	norm := resolver.NormalizeQuestion(question)

	qi := &QueryIntent{
		RawQuestion:  question,
		Normalized:   norm,
		Mode:         mode,
		TargetSystem: routeTargetSystem(norm),
		OutputShape:  resolveOutputShape(norm),
	}

	if p, ok := c.resolver.DetectPartner(question); ok {
		qi.Entities.Partner = &p
	}
	if province, ok := c.resolver.DetectProvince(question); ok {
		qi.Entities.Province = province
	}
	if tr, ok := c.resolver.DetectTimeRange(question, now); ok {
		qi.Entities.TimeRange = &tr
	}
	qi.Entities.TagVariant = resolver.DetectTagVariant(question)

	if m := topNRe.FindStringSubmatch(norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			qi.Entities.TopN = n
		}
	}

	if ref := extractProductReference(norm); ref != "" {
		product, err := c.resolver.ResolveProduct(ctx, ref)
		if err != nil {
			return nil, err
		}
		qi.Entities.Product = product
	}

	for _, m := range c.matchers {
		if m.Match(norm, &qi.Entities) {
			qi.MatchedTemplate = m.ID
			break
		}
	}

	return qi, nil
}

// extractProductReference pulls an explicit product reference out of the
// question: a 6-digit national code, a 13-digit EAN, or the phrase after
// "stock de". Anything subtler is left to the synthesizer.
func extractProductReference(norm string) string {
	if m := productCodeTokenRe.FindStringSubmatch(norm); m != nil {
		return m[1]
	}
	if m := stockOfRe.FindStringSubmatch(norm); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
