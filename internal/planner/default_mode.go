package planner

import "time"

// defaultScheduler 默认模式：忽略物料可用性的快速预览。
// 纯倒排：子节点的完成时间恒等于父节点的开始时间。
type defaultScheduler struct{}

func (s *defaultScheduler) Schedule(in *PlanInput) (*PlanResult, error) {
	// 总周期估算：深度 × 部件默认周期 + 总装默认周期
	estimate := Depth(in.Root)*defaultComponentDays + defaultAssemblyDays
	rootEnd := in.Start.AddDate(0, 0, estimate)

	root, maxEnd := s.buildNode(in.Root, 0, rootEnd)

	return &PlanResult{
		Mode:              ModeDefault,
		TotalCycleDays:    daysBetween(in.Start, maxEnd),
		Tasks:             []*ScheduleNode{root},
		Risks:             []RiskAlert{},
		MaterialAnalysis:  []*MaterialRequirement{},
		CompletionDate:    maxEnd,
		MaterialReadyDate: in.Start,
	}, nil
}

// buildNode 倒排构建子树，同时返回子树内观察到的最大完成时间。
// 最大值由每层递归显式返回、调用方合并，不走闭包累计变量。
func (s *defaultScheduler) buildNode(n *BOMNode, level int, end time.Time) (*ScheduleNode, time.Time) {
	node := newScheduleNode(n, level, ModeDefault)
	node.End = end
	node.DurationDays = n.ResolveProcessingDays()
	node.Start = end.AddDate(0, 0, -node.DurationDays)

	maxEnd := end
	for _, c := range n.Children {
		// 子件完成即父件开工
		child, childMax := s.buildNode(c, level+1, node.Start)
		child.Parent = node
		node.Children = append(node.Children, child)
		if childMax.After(maxEnd) {
			maxEnd = childMax
		}
	}
	return node, maxEnd
}
