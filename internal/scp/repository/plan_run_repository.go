package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/entity"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// PlanRunRepository 排产记录仓储
type PlanRunRepository struct {
	db *gorm.DB
}

// NewPlanRunRepository 创建排产记录仓储
func NewPlanRunRepository(db *gorm.DB) *PlanRunRepository {
	return &PlanRunRepository{db: db}
}

// Create 创建排产记录
func (r *PlanRunRepository) Create(ctx context.Context, run *entity.PlanRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// FindByID 根据ID查找排产记录
func (r *PlanRunRepository) FindByID(ctx context.Context, id string) (*entity.PlanRun, error) {
	var run entity.PlanRun
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// List 获取排产记录列表
func (r *PlanRunRepository) List(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.PlanRun, int64, error) {
	var runs []entity.PlanRun
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PlanRun{})

	// 应用过滤条件
	if productCode, ok := filters["product_code"].(string); ok && productCode != "" {
		query = query.Where("product_code = ?", productCode)
	}
	if mode, ok := filters["mode"].(string); ok && mode != "" {
		query = query.Where("mode = ?", mode)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

// FindLatestByProduct 获取某产品最近一次排产记录
func (r *PlanRunRepository) FindLatestByProduct(ctx context.Context, productCode string) (*entity.PlanRun, error) {
	var run entity.PlanRun
	err := r.db.WithContext(ctx).
		Where("product_code = ? AND status = ?", productCode, entity.PlanRunStatusCompleted).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// GenerateRunCode 生成排产记录编码
func (r *PlanRunRepository) GenerateRunCode(ctx context.Context) (string, error) {
	var count int64
	today := time.Now().Format("20060102")
	dayStart := time.Now().Truncate(24 * time.Hour)
	if err := r.db.WithContext(ctx).
		Model(&entity.PlanRun{}).
		Where("created_at >= ?", dayStart).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("PLAN-%s-%04d", today, count+1), nil
}
