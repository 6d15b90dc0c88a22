package planner

import (
	"testing"
	"time"
)

func computePlan(t *testing.T, in *PlanInput) *PlanResult {
	t.Helper()
	result, err := ComputeSchedule(in)
	if err != nil {
		t.Fatalf("ComputeSchedule(%s): %v", in.Mode, err)
	}
	return result
}

func TestDefaultModeBackwardChaining(t *testing.T) {
	result := computePlan(t, &PlanInput{
		Root:     testBOM(),
		Quantity: 10,
		Start:    testStart(),
		Mode:     ModeDefault,
	})

	// 倒排不变式：每对父子节点满足 子件完成时间 == 父件开始时间
	var check func(n *ScheduleNode)
	check = func(n *ScheduleNode) {
		for _, c := range n.Children {
			if !c.End.Equal(n.Start) {
				t.Errorf("%s: 子件完成 %v != 父件开始 %v", c.Code, c.End, n.Start)
			}
			check(c)
		}
	}
	if len(result.Tasks) != 1 {
		t.Fatalf("根任务数 = %d, want 1", len(result.Tasks))
	}
	check(result.Tasks[0])
}

func TestDefaultModeTotalCycle(t *testing.T) {
	result := computePlan(t, &PlanInput{
		Root:     testBOM(),
		Quantity: 10,
		Start:    testStart(),
		Mode:     ModeDefault,
	})

	// 估算周期 = 深度2 × 部件默认3天 + 总装默认7天 = 13天
	if result.TotalCycleDays != 13 {
		t.Errorf("TotalCycleDays = %d, want 13", result.TotalCycleDays)
	}
	if want := testStart().AddDate(0, 0, 13); !result.CompletionDate.Equal(want) {
		t.Errorf("CompletionDate = %v, want %v", result.CompletionDate, want)
	}
}

func TestDefaultModeIgnoresMaterials(t *testing.T) {
	// 默认模式刻意忽略物料可用性：零库存也不产生分析行与风险
	result := computePlan(t, &PlanInput{
		Root:      testBOM(),
		Quantity:  100,
		Inventory: map[string]float64{"M001": 0},
		Start:     testStart(),
		Mode:      ModeDefault,
	})
	if len(result.MaterialAnalysis) != 0 {
		t.Errorf("MaterialAnalysis 应为空, got %d 行", len(result.MaterialAnalysis))
	}
	if len(result.Risks) != 0 {
		t.Errorf("Risks 应为空, got %d", len(result.Risks))
	}
}

func TestDefaultModeNodeDurations(t *testing.T) {
	result := computePlan(t, &PlanInput{
		Root:     testBOMWithDurations(),
		Quantity: 1,
		Start:    testStart(),
		Mode:     ModeDefault,
	})
	root := result.Tasks[0]
	if root.DurationDays != 3 {
		t.Errorf("根节点周期 = %d, want 3", root.DurationDays)
	}
	if got := root.End.Sub(root.Start); got != 3*24*time.Hour {
		t.Errorf("根节点跨度 = %v, want 72h", got)
	}
	child := root.Children[0]
	if child.DurationDays != 4 {
		t.Errorf("部件周期 = %d, want 4", child.DurationDays)
	}
}

func TestComputeScheduleValidation(t *testing.T) {
	if _, err := ComputeSchedule(&PlanInput{Root: testBOM(), Quantity: 0, Mode: ModeDefault}); err == nil {
		t.Error("数量为0应返回错误")
	}
	if _, err := ComputeSchedule(&PlanInput{Root: testBOM(), Quantity: -5, Mode: ModeDefault}); err == nil {
		t.Error("负数数量应返回错误")
	}
	if _, err := ComputeSchedule(&PlanInput{Root: nil, Quantity: 1, Mode: ModeDefault}); err == nil {
		t.Error("空BOM应返回错误")
	}
	if _, err := ComputeSchedule(&PlanInput{Root: cyclicBOM(), Quantity: 1, Mode: ModeDefault}); err == nil {
		t.Error("循环BOM应返回错误")
	}
	if _, err := ComputeSchedule(&PlanInput{Root: testBOM(), Quantity: 1, Mode: "optimal"}); err == nil {
		t.Error("未知模式应返回错误")
	}
}
