package synthesizer

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ludapartners/luda-mind/internal/core/gmv"
	"github.com/ludapartners/luda-mind/internal/core/intent"
	"github.com/ludapartners/luda-mind/internal/core/pipeline"
	"github.com/ludapartners/luda-mind/internal/core/semantics"
)

const injectedLimit = 100

// Validator checks synthesized plans against the semantic dictionary and
// repairs the known model failure modes before anything reaches the executor.
// Rewrites are silent self-healing: logged by the caller, never surfaced as
// failures.
type Validator struct {
	dict *semantics.Dictionary
}

func NewValidator(dict *semantics.Dictionary) *Validator {
	return &Validator{dict: dict}
}

// ValidateMongo runs the full gauntlet on a synthesized pipeline. It returns
// the list of rewrites applied, or an error when the pipeline cannot be
// repaired.
func (v *Validator) ValidateMongo(p *pipeline.Pipeline, shape intent.OutputShape) ([]string, error) {
	if !v.dict.HasCollection(p.Collection) {
		return nil, fmt.Errorf("unknown collection %q", p.Collection)
	}

	var rewrites []string

	// Known confusable: the model writes createdAt, bookings only have
	// createdDate. Rewrite before field validation so the corrected name is
	// what gets checked.
	canonicalDate := v.dict.CanonicalDateField(p.Collection)
	for i, stage := range p.Stages {
		n := 0
		switch s := stage.(type) {
		case pipeline.Match:
			n = rewriteFieldName(s.Filter, "createdAt", canonicalDate)
			p.Stages[i] = s
		case pipeline.Group:
			n = rewriteExprRefs(s.ID, "createdAt", canonicalDate)
			n += rewriteFieldName(s.Accumulators, "createdAt", canonicalDate)
			p.Stages[i] = s
		case pipeline.Sort:
			n = rewriteFieldName(s.Keys, "createdAt", canonicalDate)
			p.Stages[i] = s
		case pipeline.Project:
			n = rewriteFieldName(s.Spec, "createdAt", canonicalDate)
			p.Stages[i] = s
		}
		if n > 0 {
			rewrites = append(rewrites, fmt.Sprintf("rewrote createdAt to %s (%d occurrences)", canonicalDate, n))
		}
	}

	// Monetary correctness: a GMV-shaped accumulator that is not byte-for-byte
	// the canonical hybrid expression gets substituted, not trusted.
	for i, stage := range p.Stages {
		group, ok := stage.(pipeline.Group)
		if !ok {
			continue
		}
		for j, acc := range group.Accumulators {
			if gmv.LooksLikeGMV(acc.Value) && !gmv.IsCanonicalAccumulator(acc.Value) {
				group.Accumulators[j].Value = gmv.CanonicalAccumulator()
				rewrites = append(rewrites, fmt.Sprintf("substituted canonical GMV expression for accumulator %q", acc.Key))
			}
		}
		p.Stages[i] = group
	}

	if err := v.checkFieldPaths(p); err != nil {
		return rewrites, err
	}

	// Bound response size: list-shaped pipelines must carry an explicit limit.
	if shape == intent.ShapeList && !p.HasLimit() {
		p.Stages = append(p.Stages, pipeline.Limit{N: injectedLimit})
		rewrites = append(rewrites, fmt.Sprintf("injected row limit %d", injectedLimit))
	}

	return rewrites, nil
}

// checkFieldPaths verifies every referenced field exists in the dictionary for
// the target collection. Fields computed by earlier $group/$lookup stages are
// tracked so downstream stages validate against the reshaped document.
func (v *Validator) checkFieldPaths(p *pipeline.Pipeline) error {
	computed := map[string]bool{}
	grouped := false
	var unknown []string

	known := func(field string) bool {
		root := strings.SplitN(field, ".", 2)[0]
		if field == "_id" || root == "_id" || computed[root] {
			return true
		}
		if grouped {
			return false
		}
		return v.dict.HasField(p.Collection, field)
	}

	report := func(field string) {
		if !known(field) {
			unknown = append(unknown, field)
		}
	}

	for _, stage := range p.Stages {
		switch s := stage.(type) {
		case pipeline.Match:
			collectFilterFields(s.Filter, report)

		case pipeline.Group:
			collectExprRefs(s.ID, report)
			for _, acc := range s.Accumulators {
				collectExprRefs(acc.Value, report)
			}
			// The group reshapes the document: only _id and the accumulator
			// outputs survive.
			computed = map[string]bool{}
			for _, acc := range s.Accumulators {
				computed[acc.Key] = true
			}
			grouped = true

		case pipeline.Sort:
			for _, key := range s.Keys {
				report(key.Key)
			}

		case pipeline.Unwind:
			report(strings.TrimPrefix(s.Path, "$"))

		case pipeline.Lookup:
			report(s.LocalField)
			computed[s.As] = true

		case pipeline.Project:
			// Projections may rename and compute freely; only validate the
			// field refs inside expressions.
			next := map[string]bool{}
			for _, e := range s.Spec {
				collectExprRefs(e.Value, report)
				next[strings.SplitN(e.Key, ".", 2)[0]] = true
			}
			for k := range next {
				computed[k] = true
			}
		}
	}

	if len(unknown) > 0 {
		return fmt.Errorf("unknown fields for collection %s: %s", p.Collection, strings.Join(dedupe(unknown), ", "))
	}
	return nil
}

var (
	sqlFromRe      = regexp.MustCompile(`(?i)\bfrom\s+([a-z_][a-z0-9_]*)`)
	sqlJoinRe      = regexp.MustCompile(`(?i)\bjoin\s+([a-z_][a-z0-9_]*)`)
	sqlLimitRe     = regexp.MustCompile(`(?i)\blimit\s+\d+`)
	sqlForbiddenRe = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|grant)\b`)
)

// ValidateSQL applies the MySQL counterpart of the gauntlet: SELECT-only,
// single statement, declared tables, bounded rows.
func (v *Validator) ValidateSQL(q *pipeline.SQLQuery, shape intent.OutputShape) ([]string, error) {
	var rewrites []string

	sql := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(q.SQL), ";"))
	if !strings.HasPrefix(strings.ToUpper(sql), "SELECT") {
		return nil, fmt.Errorf("only SELECT statements are allowed")
	}
	if strings.Contains(sql, ";") {
		return nil, fmt.Errorf("multiple statements are not allowed")
	}
	if sqlForbiddenRe.MatchString(sql) {
		return nil, fmt.Errorf("statement contains a forbidden keyword")
	}

	for _, re := range []*regexp.Regexp{sqlFromRe, sqlJoinRe} {
		for _, m := range re.FindAllStringSubmatch(sql, -1) {
			if !v.dict.HasCollection(m[1]) {
				return nil, fmt.Errorf("unknown table %q", m[1])
			}
		}
	}

	if shape == intent.ShapeList && !sqlLimitRe.MatchString(sql) {
		sql = fmt.Sprintf("%s LIMIT %d", sql, injectedLimit)
		rewrites = append(rewrites, fmt.Sprintf("injected row limit %d", injectedLimit))
	}

	q.SQL = sql
	return rewrites, nil
}

// rewriteFieldName renames keys and "$"-refs in place across a document tree.
// Returns the number of occurrences rewritten.
func rewriteFieldName(doc bson.D, from, to string) int {
	n := 0
	for i := range doc {
		if doc[i].Key == from {
			doc[i].Key = to
			n++
		} else if strings.HasPrefix(doc[i].Key, from+".") {
			doc[i].Key = to + strings.TrimPrefix(doc[i].Key, from)
			n++
		}
		if s, ok := doc[i].Value.(string); ok && s == "$"+from {
			doc[i].Value = "$" + to
			n++
			continue
		}
		n += rewriteExprRefs(doc[i].Value, from, to)
	}
	return n
}

func rewriteExprRefs(v interface{}, from, to string) int {
	n := 0
	switch t := v.(type) {
	case bson.D:
		n += rewriteFieldName(t, from, to)
	case bson.A:
		for i := range t {
			if s, ok := t[i].(string); ok && s == "$"+from {
				t[i] = "$" + to
				n++
				continue
			}
			n += rewriteExprRefs(t[i], from, to)
		}
	}
	return n
}

// collectFilterFields reports the field names a $match filter touches,
// recursing through $and/$or/$nor.
func collectFilterFields(filter bson.D, report func(string)) {
	for _, e := range filter {
		if strings.HasPrefix(e.Key, "$") {
			if arr, ok := e.Value.(bson.A); ok {
				for _, item := range arr {
					if sub, ok := item.(bson.D); ok {
						collectFilterFields(sub, report)
					}
				}
			}
			continue
		}
		report(e.Key)
	}
}

// collectExprRefs reports "$field" references inside aggregation expressions.
// "$$variable" references are skipped.
func collectExprRefs(v interface{}, report func(string)) {
	switch t := v.(type) {
	case string:
		if strings.HasPrefix(t, "$") && !strings.HasPrefix(t, "$$") {
			report(strings.TrimPrefix(t, "$"))
		}
	case bson.D:
		for _, e := range t {
			collectExprRefs(e.Value, report)
		}
	case bson.A:
		for _, item := range t {
			collectExprRefs(item, report)
		}
	}
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
