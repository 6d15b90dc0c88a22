package planner

import "fmt"

// ItemKind 物料层级类型
type ItemKind string

const (
	KindProduct   ItemKind = "product"   // 成品
	KindModule    ItemKind = "module"    // 模组
	KindComponent ItemKind = "component" // 部件
	KindMaterial  ItemKind = "material"  // 原材料
)

// 各层级的默认加工/处理周期（天），节点未显式指定时使用
const (
	defaultProductDays   = 7
	defaultModuleDays    = 5
	defaultComponentDays = 3
	defaultMaterialDays  = 2

	// 默认模式的总装配周期估算项
	defaultAssemblyDays = 7

	// DefaultLeadTimeDays 交期表缺失条目时的默认采购交期（天）
	DefaultLeadTimeDays = 15
)

// AlternativePart 替代料信息（来自BOM替代组）
type AlternativePart struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Priority int     `json:"priority"`
}

// BOMNode BOM树节点。父节点独占子节点（树而非共享图），
// 一次排程内只读，不在计算过程中修改。
type BOMNode struct {
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Quantity       float64           `json:"quantity"`  // 单台父件用量
	LossRate       float64           `json:"loss_rate"` // 损耗率（小数），缺省0
	Kind           ItemKind          `json:"kind"`
	ProcessingDays *int              `json:"processing_days,omitempty"` // 显式加工周期覆盖
	Children       []*BOMNode        `json:"children,omitempty"`
	Alternatives   []AlternativePart `json:"alternatives,omitempty"`
}

// IsLeaf 叶子判定：无子件，或显式标记为原材料
func (n *BOMNode) IsLeaf() bool {
	return len(n.Children) == 0 || n.Kind == KindMaterial
}

// ResolveProcessingDays 解析节点加工周期：显式覆盖优先，否则按层级类型取默认值。
// 层级默认值集中在这里，避免类型判断散落在各调用点。
func (n *BOMNode) ResolveProcessingDays() int {
	if n.ProcessingDays != nil {
		return *n.ProcessingDays
	}
	switch n.Kind {
	case KindProduct:
		return defaultProductDays
	case KindModule:
		return defaultModuleDays
	case KindMaterial:
		return defaultMaterialDays
	default:
		return defaultComponentDays
	}
}

// Depth 返回BOM树最大嵌套深度（根为0层）
func Depth(root *BOMNode) int {
	if root == nil {
		return 0
	}
	max := 0
	var walk func(n *BOMNode, level int)
	walk = func(n *BOMNode, level int) {
		if level > max {
			max = level
		}
		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	walk(root, 0)
	return max
}

// LevelMaxProcessingDays 逐层统计同层节点中最大的加工周期，下标即层号。
// 模型假设：同层兄弟并行推进，该层完成时间取决于最慢的成员。
func LevelMaxProcessingDays(root *BOMNode) []int {
	if root == nil {
		return nil
	}
	levels := make([]int, Depth(root)+1)
	var walk func(n *BOMNode, level int)
	walk = func(n *BOMNode, level int) {
		if d := n.ResolveProcessingDays(); d > levels[level] {
			levels[level] = d
		}
		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	walk(root, 0)
	return levels
}

// MaxProcessingDaysAtLevel 指定层中各节点解析后加工周期的最大值
func MaxProcessingDaysAtLevel(root *BOMNode, level int) int {
	levels := LevelMaxProcessingDays(root)
	if level < 0 || level >= len(levels) {
		return 0
	}
	return levels[level]
}

// TotalAssemblyDays 自叶向根逐层并行最大值求和，得到并行装配假设下的总装配周期
func TotalAssemblyDays(root *BOMNode) int {
	total := 0
	for _, d := range LevelMaxProcessingDays(root) {
		total += d
	}
	return total
}

func errCycle(code string) error {
	return fmt.Errorf("BOM存在循环引用: %s", code)
}

// detectCycle 沿单条下降路径检查物料编码重复。
// 访问集随递归下传、回溯时清除，同一物料出现在两条独立分支里是合法的。
func detectCycle(root *BOMNode) error {
	var walk func(n *BOMNode, path map[string]bool) error
	walk = func(n *BOMNode, path map[string]bool) error {
		if path[n.Code] {
			return errCycle(n.Code)
		}
		path[n.Code] = true
		for _, c := range n.Children {
			if err := walk(c, path); err != nil {
				return err
			}
		}
		delete(path, n.Code)
		return nil
	}
	return walk(root, make(map[string]bool))
}
