package models

// AskRequest is the single logical contract the HTTP layer forwards.
type AskRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode"`
	Debug    bool   `json:"debug"`
}

// AskResponse always carries answer/success. Debug mode adds the remaining
// fields as an additive superset — never a different shape, so callers can
// always read answer/success safely.
type AskResponse struct {
	Answer  string `json:"answer"`
	Success bool   `json:"success"`

	// Debug-only fields
	DatabaseType    string      `json:"database_type,omitempty"`
	DatabaseName    string      `json:"database_name,omitempty"`
	Confidence      float64     `json:"confidence,omitempty"`
	QueryExecuted   interface{} `json:"query_executed,omitempty"`
	MatchedTemplate string      `json:"matched_template,omitempty"`
}
