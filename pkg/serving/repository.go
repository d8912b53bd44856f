package serving

import (
	"context"
	"time"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DiagnosisLog is the audit record of one diagnosis.
type DiagnosisLog struct {
	ID            uuid.UUID         `gorm:"primaryKey;column:id" json:"id"`
	Label         string            `gorm:"column:label;index" json:"label"`
	Code          int               `gorm:"column:code" json:"code"`
	IMC           float64           `gorm:"column:imc" json:"imc"`
	Features      datatypes.JSONMap `gorm:"column:features" json:"features"`
	Probabilities datatypes.JSONMap `gorm:"column:probabilities" json:"probabilities,omitempty"`
	LatencyMs     float64           `gorm:"column:latency_ms" json:"latency_ms"`
	CreatedAt     time.Time         `gorm:"column:created_at;index" json:"created_at"`
}

func (DiagnosisLog) TableName() string {
	return "diagnosis_logs"
}

// Repository stores diagnosis audit records.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&DiagnosisLog{})
}

func (r *Repository) RecordDiagnosis(ctx context.Context, features map[string]interface{}, result models.DiagnosisResult) error {
	log := newDiagnosisLog(features, result)
	return r.db.WithContext(ctx).Create(&log).Error
}

func newDiagnosisLog(features map[string]interface{}, result models.DiagnosisResult) DiagnosisLog {
	id, err := uuid.Parse(result.ID)
	if err != nil {
		id = uuid.New()
	}
	probs := make(datatypes.JSONMap, len(result.Probabilities))
	for k, v := range result.Probabilities {
		probs[k] = v
	}
	return DiagnosisLog{
		ID:            id,
		Label:         result.Label,
		Code:          result.Code,
		IMC:           result.IMC,
		Features:      datatypes.JSONMap(features),
		Probabilities: probs,
		LatencyMs:     result.LatencyMs,
		CreatedAt:     result.CreatedAt,
	}
}

// Recent returns the most recent diagnoses up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]DiagnosisLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []DiagnosisLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
