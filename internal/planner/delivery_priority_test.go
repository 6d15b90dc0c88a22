package planner

import (
	"testing"
)

func TestDeliveryPriorityThreePhases(t *testing.T) {
	// 库存可支撑8台，计划10台：阶段1投产8台（装配9天），
	// 等待至缺料20天到齐，阶段3续产2台
	result := computePlan(t, &PlanInput{
		Root:      testBOMWithDurations(),
		Quantity:  10,
		Inventory: map[string]float64{"M001": 50},
		LeadTimes: map[string]int{"M001": 20},
		Start:     testStart(),
		Mode:      ModeDeliveryPriority,
	})

	if len(result.Phases) != 3 {
		t.Fatalf("阶段数 = %d, want 3", len(result.Phases))
	}

	stock := result.Phases[0]
	if stock.Name != PhaseStock || stock.Quantity != 8 {
		t.Errorf("阶段1 = %s/%d, want stock/8", stock.Name, stock.Quantity)
	}
	if !stock.Start.Equal(testStart()) {
		t.Errorf("阶段1应从开始日立即投产, got %v", stock.Start)
	}
	if want := testStart().AddDate(0, 0, 9); !stock.End.Equal(want) {
		t.Errorf("阶段1完成 = %v, want %v", stock.End, want)
	}

	wait := result.Phases[1]
	if wait.Name != PhaseWait || wait.Quantity != 2 {
		t.Errorf("阶段2 = %s/%d, want wait/2", wait.Name, wait.Quantity)
	}
	if want := testStart().AddDate(0, 0, 20); !wait.End.Equal(want) {
		t.Errorf("阶段2应等待至齐套 %v, got %v", want, wait.End)
	}

	continued := result.Phases[2]
	if continued.Name != PhaseContinued || continued.Quantity != 2 {
		t.Errorf("阶段3 = %s/%d, want continued/2", continued.Name, continued.Quantity)
	}
	if !continued.Start.Equal(result.MaterialReadyDate) {
		t.Errorf("阶段3应从齐套日开工, got %v", continued.Start)
	}
	if want := testStart().AddDate(0, 0, 29); !continued.End.Equal(want) {
		t.Errorf("阶段3完成 = %v, want %v", continued.End, want)
	}

	if !result.CompletionDate.Equal(continued.End) {
		t.Errorf("完工日 = %v, want %v", result.CompletionDate, continued.End)
	}
	if result.TotalCycleDays != 29 {
		t.Errorf("TotalCycleDays = %d, want 29", result.TotalCycleDays)
	}
}

func TestDeliveryPriorityNoShortage(t *testing.T) {
	// 库存充足：仅阶段1，无等待与续产
	result := computePlan(t, &PlanInput{
		Root:      testBOMWithDurations(),
		Quantity:  10,
		Inventory: map[string]float64{"M001": 100},
		LeadTimes: map[string]int{"M001": 20},
		Start:     testStart(),
		Mode:      ModeDeliveryPriority,
	})

	if len(result.Phases) != 1 {
		t.Fatalf("阶段数 = %d, want 1", len(result.Phases))
	}
	if result.Phases[0].Quantity != 10 {
		t.Errorf("阶段1数量 = %d, want 10", result.Phases[0].Quantity)
	}
	if want := testStart().AddDate(0, 0, 9); !result.CompletionDate.Equal(want) {
		t.Errorf("完工日 = %v, want %v", result.CompletionDate, want)
	}
	if len(result.Risks) != 0 {
		t.Errorf("无缺料时 Risks 应为空, got %d", len(result.Risks))
	}
	if !result.MaterialReadyDate.Equal(testStart()) {
		t.Errorf("无缺料时齐套日应为开始日, got %v", result.MaterialReadyDate)
	}
}

func TestDeliveryPriorityZeroStock(t *testing.T) {
	// 零库存：无阶段1，等待后一次性投产全部数量
	result := computePlan(t, &PlanInput{
		Root:      testBOMWithDurations(),
		Quantity:  10,
		Inventory: map[string]float64{"M001": 0},
		LeadTimes: map[string]int{"M001": 20},
		Start:     testStart(),
		Mode:      ModeDeliveryPriority,
	})

	if len(result.Phases) != 2 {
		t.Fatalf("阶段数 = %d, want 2", len(result.Phases))
	}
	if result.Phases[0].Name != PhaseWait || result.Phases[0].Quantity != 10 {
		t.Errorf("阶段1 = %s/%d, want wait/10", result.Phases[0].Name, result.Phases[0].Quantity)
	}
	if result.Phases[1].Name != PhaseContinued {
		t.Errorf("阶段2 = %s, want continued", result.Phases[1].Name)
	}
	if want := testStart().AddDate(0, 0, 29); !result.CompletionDate.Equal(want) {
		t.Errorf("完工日 = %v, want %v", result.CompletionDate, want)
	}
}

func TestDeliveryPriorityLeafSubSpans(t *testing.T) {
	result := computePlan(t, &PlanInput{
		Root:      testBOMWithDurations(),
		Quantity:  10,
		Inventory: map[string]float64{"M001": 50},
		LeadTimes: map[string]int{"M001": 20},
		Start:     testStart(),
		Mode:      ModeDeliveryPriority,
	})

	leaf := result.Tasks[0].Children[0].Children[0]
	if leaf.Requirement == nil || leaf.Requirement.Shortage == 0 {
		t.Fatal("测试前提：叶子应存在缺口")
	}
	// 缺料叶子拆分为库存投产与采购在途两段子跨度
	if len(leaf.Children) != 2 {
		t.Fatalf("缺料叶子子跨度数 = %d, want 2", len(leaf.Children))
	}
	if leaf.Children[0].Phase != PhaseStock {
		t.Errorf("子跨度1 = %s, want stock", leaf.Children[0].Phase)
	}
	if leaf.Children[1].Phase != PhaseProcurement {
		t.Errorf("子跨度2 = %s, want procurement", leaf.Children[1].Phase)
	}
	if !leaf.Children[1].End.Equal(result.MaterialReadyDate) {
		t.Errorf("采购在途应收于齐套日, got %v", leaf.Children[1].End)
	}
	if leaf.Children[1].Status != StatusWarning {
		t.Errorf("采购在途状态 = %s, want warning", leaf.Children[1].Status)
	}
}

func TestDeliveryPriorityZeroStockSingleSubSpan(t *testing.T) {
	// 零库存时缺料叶子只有采购在途一段
	result := computePlan(t, &PlanInput{
		Root:      testBOMWithDurations(),
		Quantity:  10,
		Inventory: map[string]float64{"M001": 0},
		LeadTimes: map[string]int{"M001": 20},
		Start:     testStart(),
		Mode:      ModeDeliveryPriority,
	})
	leaf := result.Tasks[0].Children[0].Children[0]
	if len(leaf.Children) != 1 || leaf.Children[0].Phase != PhaseProcurement {
		t.Fatalf("零库存叶子子跨度 = %+v, want 仅procurement", leaf.Children)
	}
}
