package planner

import "time"

// 交付优先模式的阶段名
const (
	PhaseStock       = "stock"       // 阶段1：现有库存投产
	PhaseWait        = "wait"        // 阶段2：等待缺料到齐
	PhaseContinued   = "continued"   // 阶段3：余量续产
	PhaseProcurement = "procurement" // 叶子子跨度：采购在途
)

// deliveryPriorityScheduler 交付优先模式：先用现有库存立即投产可支撑的数量，
// 缺料到齐后再续产余量。按显式的三阶段状态机推进。
type deliveryPriorityScheduler struct{}

func (s *deliveryPriorityScheduler) Schedule(in *PlanInput) (*PlanResult, error) {
	rows, err := AnalyzeRequirements(in.Root, in.Quantity, in.Inventory, in.LeadTimes, in.Start)
	if err != nil {
		return nil, err
	}

	assembly := TotalAssemblyDays(in.Root)
	stockQty := stockFundedQuantity(rows, in.Quantity)
	remainder := in.Quantity - stockQty
	ready := materialReadyDate(rows, in.Start)

	// 阶段推进：stock → wait → continued，各阶段携带自身数量与起止
	phases := []PlanPhase{}
	phase1End := in.Start
	if stockQty > 0 {
		phase1End = in.Start.AddDate(0, 0, assembly)
		phases = append(phases, PlanPhase{Name: PhaseStock, Quantity: stockQty, Start: in.Start, End: phase1End})
	}
	completion := phase1End
	if remainder > 0 {
		waitEnd := ready
		if waitEnd.Before(phase1End) {
			waitEnd = phase1End
		}
		phases = append(phases, PlanPhase{Name: PhaseWait, Quantity: remainder, Start: phase1End, End: waitEnd})

		phase3End := waitEnd.AddDate(0, 0, assembly)
		phases = append(phases, PlanPhase{Name: PhaseContinued, Quantity: remainder, Start: waitEnd, End: phase3End})
		completion = phase3End
	}

	bounds := levelEndBounds(completion, LevelMaxProcessingDays(in.Root))
	cursor := &rowCursor{rows: rows}
	root := buildLevelTree(in.Root, 0, ModeDeliveryPriority, in.Start, ready, bounds, cursor)
	attachPhaseSpans(root, in.Start, phase1End, ready, stockQty)

	return &PlanResult{
		Mode:              ModeDeliveryPriority,
		TotalCycleDays:    daysBetween(in.Start, completion),
		Tasks:             []*ScheduleNode{root},
		Risks:             BuildShortageRisks(rows),
		MaterialAnalysis:  rows,
		CompletionDate:    completion,
		MaterialReadyDate: ready,
		Phases:            phases,
	}, nil
}

// stockFundedQuantity 仅凭现有库存可投产的数量：全部物料可支撑数的最小值，
// 封顶于计划数量。无叶子物料时视为无约束。
func stockFundedQuantity(rows []*MaterialRequirement, planned int) int {
	qty := planned
	for _, row := range rows {
		if row.Supportable < qty {
			qty = row.Supportable
		}
	}
	if qty < 0 {
		return 0
	}
	return qty
}

// attachPhaseSpans 为缺料叶子物料挂接两段子跨度：
// 库存部分支撑阶段1投产，缺口部分处于采购在途直至齐套。
func attachPhaseSpans(node *ScheduleNode, start, phase1End, ready time.Time, stockQty int) {
	if node.Requirement != nil && node.Requirement.Shortage > 0 {
		if stockQty > 0 {
			stock := &ScheduleNode{
				ID:           node.ID + "-stock",
				Code:         node.Code,
				Name:         node.Name + "（库存投产）",
				Kind:         node.Kind,
				Level:        node.Level + 1,
				Start:        start,
				End:          phase1End,
				DurationDays: daysBetween(start, phase1End),
				Status:       StatusNormal,
				Mode:         ModeDeliveryPriority,
				Phase:        PhaseStock,
				Parent:       node,
			}
			node.Children = append(node.Children, stock)
		}
		procurement := &ScheduleNode{
			ID:           node.ID + "-procurement",
			Code:         node.Code,
			Name:         node.Name + "（采购在途）",
			Kind:         node.Kind,
			Level:        node.Level + 1,
			Start:        start,
			End:          ready,
			DurationDays: daysBetween(start, ready),
			Status:       StatusWarning,
			Mode:         ModeDeliveryPriority,
			Phase:        PhaseProcurement,
			Parent:       node,
		}
		node.Children = append(node.Children, procurement)
		return
	}
	for _, c := range node.Children {
		attachPhaseSpans(c, start, phase1End, ready, stockQty)
	}
}
