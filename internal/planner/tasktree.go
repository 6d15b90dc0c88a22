package planner

// InitializeExpandedState 初始展开状态：仅根节点展开
func InitializeExpandedState(tasks []*ScheduleNode) map[string]bool {
	expanded := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		expanded[t.ID] = true
	}
	return expanded
}

// VisibleTasks 按深度优先顺序返回当前可见的节点。
// 节点可见当且仅当其全部祖先均已展开——任一祖先折叠时，
// 无论节点自身的展开标记如何都不可见。
func VisibleTasks(tasks []*ScheduleNode, expanded map[string]bool) []*ScheduleNode {
	visible := []*ScheduleNode{}
	var walk func(n *ScheduleNode)
	walk = func(n *ScheduleNode) {
		visible = append(visible, n)
		if !expanded[n.ID] {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, t := range tasks {
		walk(t)
	}
	return visible
}
