package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/ontology"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/planner"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/entity"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/repository"
)

// ScheduleRequest 排产请求
// BOMTree 与 ProductCode 二选一：前者直接使用内联BOM，
// 后者从知识网络快照构建BOM树
type ScheduleRequest struct {
	ProductCode string             `json:"product_code"`
	BOMTree     *planner.BOMNode   `json:"bom_tree"`
	Quantity    int                `json:"quantity"`
	Mode        planner.PlanMode   `json:"mode"`
	StartDate   string             `json:"start_date"` // YYYY-MM-DD，缺省为当天
	Inventory   map[string]float64 `json:"inventory"`
	LeadTimes   map[string]int     `json:"lead_times"`
}

// ScheduleResponse 排产响应
type ScheduleResponse struct {
	RunID  string              `json:"run_id,omitempty"`
	Result *planner.PlanResult `json:"result"`
}

// PlanService 排产服务
// planRunRepo 和 redisClient 允许为 nil（降级运行，不持久化、不缓存）
type PlanService struct {
	loader      *ontology.Loader
	planRunRepo *repository.PlanRunRepository
	redisClient *redis.Client
	snapshotTTL time.Duration
	networkID   string
	logger      *zap.Logger
}

// NewPlanService 创建排产服务
func NewPlanService(
	loader *ontology.Loader,
	planRunRepo *repository.PlanRunRepository,
	redisClient *redis.Client,
	snapshotTTL time.Duration,
	networkID string,
	logger *zap.Logger,
) *PlanService {
	if snapshotTTL <= 0 {
		snapshotTTL = 10 * time.Minute
	}
	return &PlanService{
		loader:      loader,
		planRunRepo: planRunRepo,
		redisClient: redisClient,
		snapshotTTL: snapshotTTL,
		networkID:   networkID,
		logger:      logger,
	}
}

// Schedule 执行排产计算
// token 为上游透传的知识网络访问令牌，仅在需要拉取快照时使用
func (s *PlanService) Schedule(ctx context.Context, token string, req *ScheduleRequest, createdBy string) (*ScheduleResponse, error) {
	started := time.Now()

	input, productName, err := s.buildPlanInput(ctx, token, req)
	if err != nil {
		return nil, err
	}

	result, err := planner.ComputeSchedule(input)
	if err != nil {
		s.recordRun(ctx, req, productName, nil, err, createdBy, time.Since(started))
		return nil, err
	}

	s.logger.Info("排产计算完成",
		zap.String("product_code", input.Root.Code),
		zap.String("mode", string(result.Mode)),
		zap.Int("quantity", input.Quantity),
		zap.Int("total_cycle_days", result.TotalCycleDays),
		zap.Int("risks", len(result.Risks)),
		zap.Duration("elapsed", time.Since(started)))

	runID := s.recordRun(ctx, req, productName, result, nil, createdBy, time.Since(started))
	return &ScheduleResponse{RunID: runID, Result: result}, nil
}

// buildPlanInput 组装排程引擎输入：内联BOM优先，否则从快照构建
func (s *PlanService) buildPlanInput(ctx context.Context, token string, req *ScheduleRequest) (*planner.PlanInput, string, error) {
	start, err := parseStartDate(req.StartDate)
	if err != nil {
		return nil, "", err
	}

	input := &planner.PlanInput{
		Quantity:  req.Quantity,
		Inventory: req.Inventory,
		LeadTimes: req.LeadTimes,
		Start:     start,
		Mode:      req.Mode,
	}

	if req.BOMTree != nil {
		input.Root = req.BOMTree
		return input, req.BOMTree.Name, nil
	}

	if req.ProductCode == "" {
		return nil, "", fmt.Errorf("product_code 和 bom_tree 至少提供一项")
	}

	snapshot, err := s.Snapshot(ctx, token)
	if err != nil {
		return nil, "", err
	}
	tree, err := ontology.BuildTree(snapshot, req.ProductCode)
	if err != nil {
		return nil, "", err
	}
	input.Root = tree.ToPlanningNode()

	// 未显式提供库存时用快照的可用库存
	if input.Inventory == nil {
		input.Inventory = snapshot.AvailableStockMap()
	}
	return input, tree.ProductName, nil
}

// Snapshot 获取供应链数据快照，优先读Redis缓存
func (s *PlanService) Snapshot(ctx context.Context, token string) (*ontology.Snapshot, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("知识网络服务未配置")
	}

	cacheKey := "scp:snapshot:" + s.networkID
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var snapshot ontology.Snapshot
			if err := json.Unmarshal(cached, &snapshot); err == nil {
				snapshot.Reindex()
				return &snapshot, nil
			}
			s.logger.Warn("快照缓存解析失败，重新拉取", zap.Error(err))
		} else if err != redis.Nil {
			s.logger.Warn("读取快照缓存失败", zap.Error(err))
		}
	}

	snapshot, err := s.loader.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, data, s.snapshotTTL).Err(); err != nil {
				s.logger.Warn("写入快照缓存失败", zap.Error(err))
			}
		}
	}
	return snapshot, nil
}

// BOMTree 构建产品BOM树（仪表盘展示用）
func (s *PlanService) BOMTree(ctx context.Context, token, productCode string) (*ontology.Tree, error) {
	snapshot, err := s.Snapshot(ctx, token)
	if err != nil {
		return nil, err
	}
	return ontology.BuildTree(snapshot, productCode)
}

// Products 列出快照中的全部产品
func (s *PlanService) Products(ctx context.Context, token string) ([]ontology.Material, error) {
	snapshot, err := s.Snapshot(ctx, token)
	if err != nil {
		return nil, err
	}
	return snapshot.Products, nil
}

// ListRuns 查询排产历史
func (s *PlanService) ListRuns(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.PlanRun, int64, error) {
	if s.planRunRepo == nil {
		return []entity.PlanRun{}, 0, nil
	}
	return s.planRunRepo.List(ctx, page, pageSize, filters)
}

// GetRun 查询单条排产记录
func (s *PlanService) GetRun(ctx context.Context, id string) (*entity.PlanRun, error) {
	if s.planRunRepo == nil {
		return nil, repository.ErrNotFound
	}
	return s.planRunRepo.FindByID(ctx, id)
}

// recordRun 持久化排产记录，失败仅记日志不影响排产结果
func (s *PlanService) recordRun(ctx context.Context, req *ScheduleRequest, productName string, result *planner.PlanResult, calcErr error, createdBy string, elapsed time.Duration) string {
	if s.planRunRepo == nil {
		return ""
	}

	runCode, err := s.planRunRepo.GenerateRunCode(ctx)
	if err != nil {
		s.logger.Warn("生成排产记录编码失败", zap.Error(err))
		runCode = "PLAN-" + uuid.New().String()[:8]
	}

	productCode := req.ProductCode
	if productCode == "" && req.BOMTree != nil {
		productCode = req.BOMTree.Code
	}

	run := &entity.PlanRun{
		ID:          uuid.New().String(),
		RunCode:     runCode,
		ProductCode: productCode,
		ProductName: productName,
		Mode:        string(req.Mode),
		Quantity:    req.Quantity,
		StartDate:   time.Now(),
		Status:      entity.PlanRunStatusCompleted,
		DurationMS:  elapsed.Milliseconds(),
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}
	if start, err := parseStartDate(req.StartDate); err == nil {
		run.StartDate = start
	}

	if calcErr != nil {
		run.Status = entity.PlanRunStatusFailed
		run.ErrorMessage = calcErr.Error()
	} else if result != nil {
		completion := result.CompletionDate
		run.CompletionDate = &completion
		run.TotalCycleDays = result.TotalCycleDays
		run.RiskCount = len(result.Risks)
		for _, row := range result.MaterialAnalysis {
			if row.Shortage > 0 {
				run.ShortageCount++
			}
		}
		run.Summary = entity.JSONB{
			"mode":                string(result.Mode),
			"material_ready_date": result.MaterialReadyDate,
			"phases":              len(result.Phases),
		}
	}

	if err := s.planRunRepo.Create(ctx, run); err != nil {
		s.logger.Warn("保存排产记录失败", zap.Error(err))
		return ""
	}
	return run.ID
}

// parseStartDate 解析开始日期，空串取当天零点（UTC）
func parseStartDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	start, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("开始日期格式错误（期望 YYYY-MM-DD）: %s", value)
	}
	return start, nil
}
