package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"deces-backend/vars"
)

// ErrJobNotFound 任务不存在或已被清理
var ErrJobNotFound = errors.New("job not found")

// BulkJobRepo 封装对 BulkJob 表的所有操作
type BulkJobRepo struct {
	db *gorm.DB
}

// NewBulkJobRepo 构造函数
func NewBulkJobRepo(db *gorm.DB) *BulkJobRepo {
	return &BulkJobRepo{db: db}
}

// Create 创建新任务记录
func (r *BulkJobRepo) Create(ctx context.Context, job *BulkJob) error {
	// WithContext 允许你在超时的时候取消数据库操作
	return r.db.WithContext(ctx).Create(job).Error
}

// Get 根据 JobID 查询任务
func (r *BulkJobRepo) Get(ctx context.Context, jobID string) (*BulkJob, error) {
	var job BulkJob
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkActive 排队 -> 处理中，记录总行数
func (r *BulkJobRepo) MarkActive(ctx context.Context, jobID string, rows int) error {
	return r.update(ctx, jobID, map[string]interface{}{
		"status": vars.JobActive,
		"rows":   rows,
	})
}

// UpdateProgress 每处理完一个分块更新一次
func (r *BulkJobRepo) UpdateProgress(ctx context.Context, jobID string, processed int, progress float64) error {
	return r.update(ctx, jobID, map[string]interface{}{
		"processed": processed,
		"progress":  progress,
	})
}

// Complete 写入加密结果
func (r *BulkJobRepo) Complete(ctx context.Context, jobID string, result []byte) error {
	now := time.Now()
	return r.update(ctx, jobID, map[string]interface{}{
		"status":       vars.JobCompleted,
		"progress":     100,
		"result":       result,
		"completed_at": &now,
	})
}

func (r *BulkJobRepo) Fail(ctx context.Context, jobID string, cause error) error {
	now := time.Now()
	return r.update(ctx, jobID, map[string]interface{}{
		"status":        vars.JobFailed,
		"error_message": cause.Error(),
		"completed_at":  &now,
	})
}

func (r *BulkJobRepo) Cancel(ctx context.Context, jobID string) error {
	now := time.Now()
	return r.update(ctx, jobID, map[string]interface{}{
		"status":       vars.JobCancelled,
		"completed_at": &now,
	})
}

func (r *BulkJobRepo) Delete(ctx context.Context, jobID string) error {
	return r.db.WithContext(ctx).Where("job_id = ?", jobID).Delete(&BulkJob{}).Error
}

func (r *BulkJobRepo) update(ctx context.Context, jobID string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&BulkJob{}).
		Where("job_id = ?", jobID).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update job %s: %w", jobID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// PurgeExpired 用于定时任务批量删除过期任务
func (r *BulkJobRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("completed_at IS NOT NULL AND completed_at < ?", before).
		Delete(&BulkJob{})
	return result.RowsAffected, result.Error
}
