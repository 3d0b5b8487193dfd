package audit

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"instra/internal/domain/audit"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/logger"
)

// GormRecorder writes audit records on a detached goroutine. A lost record
// is logged, never surfaced; audit must not block or fail mutations. Writes
// deliberately use the root connection, not the caller's transaction, so a
// rolled-back mutation still leaves its attempt on record.
type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) audit.Recorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) Record(ctx context.Context, record audit.Record) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("audit recorder panicked", "panic", rec)
			}
		}()

		var detail datatypes.JSON
		if record.Detail != nil {
			raw, err := json.Marshal(record.Detail)
			if err != nil {
				logger.Warn("failed to marshal audit detail",
					"action", record.Action, "error", err)
			} else {
				detail = datatypes.JSON(raw)
			}
		}

		model := &models.AuditLogModel{
			ActorID:    record.ActorID,
			Action:     record.Action,
			EntityType: record.EntityType,
			EntityID:   record.EntityID,
			Detail:     detail,
			IP:         record.IP,
		}

		if err := r.db.Create(model).Error; err != nil {
			logger.Warn("failed to write audit record",
				"action", record.Action, "error", err)
		}
	}()
}
