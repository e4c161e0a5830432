package postgres

import (
	"time"

	"deces-backend/vars"
)

// BulkJob 对应数据库里的 bulk_jobs 表
type BulkJob struct {
	// JobID 不使用 gorm.Model 的自增 ID，而是 sha256(key) 的 hex
	JobID        string     `gorm:"column:job_id;primaryKey;type:char(64)"`
	Status       string     `gorm:"column:status;type:varchar(16);not null;index"`
	Rows         int        `gorm:"column:rows"`
	Processed    int        `gorm:"column:processed"`
	Progress     float64    `gorm:"column:progress"`
	Sep          string     `gorm:"column:sep;type:varchar(4)"`
	Header       []string   `gorm:"column:header;serializer:json"`
	Result       []byte     `gorm:"column:result;type:bytea"` // 加密后的结果
	ErrorMessage string     `gorm:"column:error_message;type:text"`
	CompletedAt  *time.Time `gorm:"column:completed_at;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 强制指定表名
func (BulkJob) TableName() string {
	return "bulk_jobs"
}

// IsFinished 任务不会再变化
func (j *BulkJob) IsFinished() bool {
	switch j.Status {
	case vars.JobCompleted, vars.JobFailed, vars.JobCancelled:
		return true
	}
	return false
}
