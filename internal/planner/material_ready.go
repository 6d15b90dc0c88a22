package planner

import "time"

// materialReadyScheduler 齐套模式：等全部缺料到齐后一次性连续装配。
// 不同缺料的采购并行进行，齐套时间取最长交期而非交期之和。
type materialReadyScheduler struct{}

func (s *materialReadyScheduler) Schedule(in *PlanInput) (*PlanResult, error) {
	rows, err := AnalyzeRequirements(in.Root, in.Quantity, in.Inventory, in.LeadTimes, in.Start)
	if err != nil {
		return nil, err
	}

	ready := materialReadyDate(rows, in.Start)

	levels := LevelMaxProcessingDays(in.Root)
	assembly := 0
	for _, d := range levels {
		assembly += d
	}
	completion := ready.AddDate(0, 0, assembly)

	// 各层完成边界：根层收于completion，向下逐层减去上层的并行最大周期
	bounds := levelEndBounds(completion, levels)

	cursor := &rowCursor{rows: rows}
	root := buildLevelTree(in.Root, 0, ModeMaterialReady, in.Start, ready, bounds, cursor)

	return &PlanResult{
		Mode:              ModeMaterialReady,
		TotalCycleDays:    daysBetween(in.Start, completion),
		Tasks:             []*ScheduleNode{root},
		Risks:             BuildShortageRisks(rows),
		MaterialAnalysis:  rows,
		CompletionDate:    completion,
		MaterialReadyDate: ready,
	}, nil
}

// materialReadyDate 齐套日：无缺料时即为开始日，否则为开始日加缺料中最长交期
func materialReadyDate(rows []*MaterialRequirement, start time.Time) time.Time {
	maxCycle := 0
	for _, row := range rows {
		if row.Shortage > 0 && row.DeliveryCycle > maxCycle {
			maxCycle = row.DeliveryCycle
		}
	}
	return start.AddDate(0, 0, maxCycle)
}

// levelEndBounds bounds[L]为第L层的完成边界日期
func levelEndBounds(completion time.Time, levels []int) []time.Time {
	bounds := make([]time.Time, len(levels))
	for l := range levels {
		if l == 0 {
			bounds[0] = completion
			continue
		}
		bounds[l] = bounds[l-1].AddDate(0, 0, -levels[l-1])
	}
	return bounds
}

// rowCursor 按分析器的DFS发射顺序逐个对齐叶子行
type rowCursor struct {
	rows []*MaterialRequirement
	i    int
}

func (c *rowCursor) next() *MaterialRequirement {
	if c.i >= len(c.rows) {
		return nil
	}
	row := c.rows[c.i]
	c.i++
	return row
}

// buildLevelTree 自顶向下映射BOM形状：非叶节点收于所在层边界、
// 开工时间为边界减去自身加工周期；叶子物料占据[开始, 齐套]区间。
func buildLevelTree(n *BOMNode, level int, mode PlanMode, start, ready time.Time, bounds []time.Time, cursor *rowCursor) *ScheduleNode {
	node := newScheduleNode(n, level, mode)

	if n.IsLeaf() {
		node.Start = start
		node.End = ready
		node.DurationDays = daysBetween(start, ready)
		node.Requirement = cursor.next()
		if node.Requirement != nil && node.Requirement.Shortage > 0 {
			node.Status = StatusWarning
		}
		return node
	}

	node.End = bounds[level]
	node.DurationDays = n.ResolveProcessingDays()
	node.Start = node.End.AddDate(0, 0, -node.DurationDays)
	for _, c := range n.Children {
		child := buildLevelTree(c, level+1, mode, start, ready, bounds, cursor)
		child.Parent = node
		node.Children = append(node.Children, child)
	}
	return node
}
