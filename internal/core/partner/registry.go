package partner

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/partners.json
var defaultPartners []byte

// Registry holds the active partners. Loaded once at startup, immutable,
// injected into the resolver and classifier.
type Registry struct {
	partners []Partner
	byID     map[string]Partner
}

// NewRegistry builds a registry from raw JSON partner definitions.
func NewRegistry(data []byte) (*Registry, error) {
	var partners []Partner
	if err := json.Unmarshal(data, &partners); err != nil {
		return nil, fmt.Errorf("failed to parse partners: %w", err)
	}
	if len(partners) == 0 {
		return nil, fmt.Errorf("partner registry is empty")
	}

	byID := make(map[string]Partner, len(partners))
	for _, p := range partners {
		if p.ID == "" {
			return nil, fmt.Errorf("partner missing id: %+v", p)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate partner id %q", p.ID)
		}
		byID[p.ID] = p
	}

	return &Registry{partners: partners, byID: byID}, nil
}

// Default loads the embedded production registry.
func Default() (*Registry, error) {
	return NewRegistry(defaultPartners)
}

// All returns every registered partner.
func (r *Registry) All() []Partner {
	return r.partners
}

// ByID looks up a partner by canonical id.
func (r *Registry) ByID(id string) (Partner, bool) {
	p, ok := r.byID[id]
	return p, ok
}
