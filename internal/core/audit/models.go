package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QueryLog records every interpreted question for observability: which path
// answered it, what actually ran, and which silent rewrites the validator
// applied. Rewrites are self-healing, not failures, but they must stay
// visible somewhere.
type QueryLog struct {
	ID uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`

	// Question context
	Question string `json:"question" gorm:"type:text;not null"`
	Mode     string `json:"mode" gorm:"type:varchar(32);index"`

	// Execution path
	DatabaseType    string `json:"database_type" gorm:"type:varchar(16);index"`
	MatchedTemplate string `json:"matched_template,omitempty" gorm:"type:varchar(64);index"`
	Synthesized     bool   `json:"synthesized"`

	// What ran and what was fixed up
	QueryExecuted datatypes.JSON `json:"query_executed,omitempty" gorm:"type:json"`
	Rewrites      datatypes.JSON `json:"rewrites,omitempty" gorm:"type:json"`

	// Outcome
	Success     bool   `json:"success"`
	FailureKind string `json:"failure_kind,omitempty" gorm:"type:varchar(32)"`
	DurationMs  int64  `json:"duration_ms"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (QueryLog) TableName() string {
	return "mind_query_logs"
}
