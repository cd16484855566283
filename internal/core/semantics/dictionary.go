package semantics

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed data/fields.json
var defaultFields []byte

// Dictionary is the read-only semantic knowledge base. It is constructed once
// at startup and injected into the classifier and synthesizer.
type Dictionary struct {
	fields       []Field
	byCollection map[string]map[string]Field
}

// NewDictionary builds a dictionary from raw JSON field definitions.
func NewDictionary(data []byte) (*Dictionary, error) {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse semantic fields: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("semantic dictionary is empty")
	}

	byCollection := make(map[string]map[string]Field)
	for _, f := range fields {
		if f.FieldPath == "" || f.Collection == "" {
			return nil, fmt.Errorf("semantic field missing field_path or collection: %+v", f)
		}
		if byCollection[f.Collection] == nil {
			byCollection[f.Collection] = make(map[string]Field)
		}
		byCollection[f.Collection][f.FieldPath] = f
	}

	return &Dictionary{fields: fields, byCollection: byCollection}, nil
}

// Default loads the embedded production dictionary.
func Default() (*Dictionary, error) {
	return NewDictionary(defaultFields)
}

// All returns every field definition.
func (d *Dictionary) All() []Field {
	return d.fields
}

// HasField reports whether a field path is declared for a collection. Dotted
// prefixes of declared paths are accepted too ("thirdUser" for
// "thirdUser.price").
func (d *Dictionary) HasField(collection, path string) bool {
	cols, ok := d.byCollection[collection]
	if !ok {
		return false
	}
	if _, ok := cols[path]; ok {
		return true
	}
	for declared := range cols {
		if strings.HasPrefix(declared, path+".") || strings.HasPrefix(path, declared+".") {
			return true
		}
	}
	return false
}

// HasCollection reports whether the collection/table is declared at all.
func (d *Dictionary) HasCollection(collection string) bool {
	_, ok := d.byCollection[collection]
	return ok
}

// CanonicalDateField returns the date field the given collection must be
// filtered on. Bookings use createdDate; the LLM keeps inventing createdAt.
func (d *Dictionary) CanonicalDateField(collection string) string {
	switch collection {
	case "bookings":
		return "createdDate"
	case "partner_monthly_metrics":
		return "month"
	default:
		return "createdDate"
	}
}

// RelevantFields selects only the fields whose keywords or synonyms appear in
// the question, so synthesis prompts stay small and grounded.
func (d *Dictionary) RelevantFields(normalizedQuestion string) []Field {
	var out []Field
	for _, f := range d.fields {
		if fieldMentioned(f, normalizedQuestion) {
			out = append(out, f)
		}
	}
	return out
}

func fieldMentioned(f Field, question string) bool {
	for _, kw := range f.Keywords {
		if strings.Contains(question, kw) {
			return true
		}
	}
	for _, syn := range f.Synonyms {
		if strings.Contains(question, syn) {
			return true
		}
	}
	return false
}
