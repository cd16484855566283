package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ludapartners/luda-mind/internal/shared/logger"
)

// Service persists query logs to the analytics database.
type Service struct {
	db *gorm.DB
}

// NewService creates the audit service and ensures its table exists. The
// query log is the only table this core owns.
func NewService(db *gorm.DB) (*Service, error) {
	if err := db.AutoMigrate(&QueryLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate query log table: %w", err)
	}
	return &Service{db: db}, nil
}

// Record writes one query log entry. Best-effort: a failed write is logged
// and swallowed so observability never breaks answering.
func (s *Service) Record(ctx context.Context, entry *QueryLog) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.LogError("failed to record query log", err, map[string]interface{}{
			"question": entry.Question,
		})
	}
}

// Recent returns the newest entries, for the debug endpoint.
func (s *Service) Recent(ctx context.Context, limit int) ([]QueryLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []QueryLog
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	return logs, nil
}

// ToJSON serializes a value for a JSON column, returning null on failure.
func ToJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
