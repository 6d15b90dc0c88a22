package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlanMode 排程策略
type PlanMode string

const (
	ModeDefault          PlanMode = "default"           // 快速预览，忽略物料可用性
	ModeMaterialReady    PlanMode = "material-ready"    // 齐套后连续装配
	ModeDeliveryPriority PlanMode = "delivery-priority" // 现有库存先行投产，缺料到齐后续产
)

// TaskStatus 排程节点状态
type TaskStatus string

const (
	StatusNormal  TaskStatus = "normal"
	StatusWarning TaskStatus = "warning"
)

// ScheduleNode 甘特任务节点，与BOM节点一一对应
type ScheduleNode struct {
	ID           string               `json:"id"`
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	Kind         ItemKind             `json:"kind"`
	Level        int                  `json:"level"` // 根成品为0层
	Start        time.Time            `json:"start"`
	End          time.Time            `json:"end"`
	DurationDays int                  `json:"duration_days"`
	Status       TaskStatus           `json:"status"`
	Mode         PlanMode             `json:"mode"`
	Phase        string               `json:"phase,omitempty"` // 交付优先模式的子跨度标记
	Children     []*ScheduleNode      `json:"children,omitempty"`
	Parent       *ScheduleNode        `json:"-"`
	Source       *BOMNode             `json:"-"`
	Requirement  *MaterialRequirement `json:"requirement,omitempty"`
}

// RiskAlert 风险提示
type RiskAlert struct {
	Kind         string `json:"kind"`     // material_shortage
	Severity     string `json:"severity"` // warning | critical
	Message      string `json:"message"`
	MaterialCode string `json:"material_code"`
	MaterialName string `json:"material_name"`
	Suggestion   string `json:"suggestion"`
}

// PlanPhase 交付优先模式的阶段（带各自数量与起止时间）
type PlanPhase struct {
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// PlanInput 排程输入。引擎接收已就绪的快照数据，不做任何IO。
type PlanInput struct {
	Root      *BOMNode           `json:"root"`
	Quantity  int                `json:"quantity"`
	Inventory map[string]float64 `json:"inventory"`
	LeadTimes map[string]int     `json:"lead_times"`
	Start     time.Time          `json:"start"`
	Mode      PlanMode           `json:"mode"`
}

// PlanResult 排程结果
type PlanResult struct {
	Mode              PlanMode               `json:"mode"`
	TotalCycleDays    int                    `json:"total_cycle_days"`
	Tasks             []*ScheduleNode        `json:"tasks"`
	Risks             []RiskAlert            `json:"risks"`
	MaterialAnalysis  []*MaterialRequirement `json:"material_analysis"`
	CompletionDate    time.Time              `json:"completion_date"`
	MaterialReadyDate time.Time              `json:"material_ready_date"`
	Phases            []PlanPhase            `json:"phases,omitempty"`
}

// ModeScheduler 单一模式的排程算法
type ModeScheduler interface {
	Schedule(in *PlanInput) (*PlanResult, error)
}

// NewModeScheduler 按模式枚举返回对应的排程器
func NewModeScheduler(mode PlanMode) (ModeScheduler, error) {
	switch mode {
	case ModeDefault, "":
		return &defaultScheduler{}, nil
	case ModeMaterialReady:
		return &materialReadyScheduler{}, nil
	case ModeDeliveryPriority:
		return &deliveryPriorityScheduler{}, nil
	default:
		return nil, fmt.Errorf("不支持的排程模式: %s", mode)
	}
}

// ComputeSchedule 排程入口：校验输入后分发到具体模式。
// 相同输入（含参考开始时间）的结果是确定的。
func ComputeSchedule(in *PlanInput) (*PlanResult, error) {
	if in == nil || in.Root == nil {
		return nil, fmt.Errorf("BOM树不能为空")
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("计划生产数量必须为正整数: %d", in.Quantity)
	}
	if err := detectCycle(in.Root); err != nil {
		return nil, err
	}
	s, err := NewModeScheduler(in.Mode)
	if err != nil {
		return nil, err
	}
	return s.Schedule(in)
}

func newScheduleNode(n *BOMNode, level int, mode PlanMode) *ScheduleNode {
	return &ScheduleNode{
		ID:     uuid.New().String(),
		Code:   n.Code,
		Name:   n.Name,
		Kind:   n.Kind,
		Level:  level,
		Status: StatusNormal,
		Mode:   mode,
		Source: n,
	}
}

// daysBetween 向上取整的天数差
func daysBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
