package planner

import (
	"math"
	"time"
)

// MaterialRequirement 物料需求分析行，对应展开过程中遇到的一个叶子物料。
// 同一物料出现在多条独立分支时会产生多行（按出现次序），不做合并——
// 合并会改变上报的缺口口径，调用方如需汇总可按编码自行聚合。
type MaterialRequirement struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Required      int       `json:"required"`       // 需求数量，向上取整
	Inventory     float64   `json:"inventory"`      // 当前库存
	Shortage      float64   `json:"shortage"`       // 缺口 = max(0, required - inventory)
	DeliveryCycle int       `json:"delivery_cycle"` // 采购交期（天）
	ArrivalDate   time.Time `json:"arrival_date"`   // 预计到货日
	Supportable   int       `json:"supportable"`    // 仅凭现有库存可支撑的成品数量
	EffectiveQty  float64   `json:"effective_qty"`  // 单台成品的有效用量（含损耗累乘）
}

// AnalyzeRequirements 展开BOM树得到逐叶子物料的需求分析。
// 深度优先携带累计用量倍数：根为1，每下一层乘以 用量×(1+损耗率)。
// 纯函数，无副作用；遇到单路径内的编码重复返回循环错误。
func AnalyzeRequirements(root *BOMNode, quantity int, inventory map[string]float64, leadTimes map[string]int, start time.Time) ([]*MaterialRequirement, error) {
	if root == nil {
		return nil, nil
	}

	var rows []*MaterialRequirement
	var walk func(n *BOMNode, mult float64, path map[string]bool) error
	walk = func(n *BOMNode, mult float64, path map[string]bool) error {
		if path[n.Code] {
			return errCycle(n.Code)
		}
		if n.IsLeaf() {
			rows = append(rows, buildRequirementRow(n, mult, quantity, inventory, leadTimes, start))
			return nil
		}
		path[n.Code] = true
		for _, c := range n.Children {
			if err := walk(c, mult*c.Quantity*(1+c.LossRate), path); err != nil {
				return err
			}
		}
		delete(path, n.Code)
		return nil
	}
	if err := walk(root, 1, make(map[string]bool)); err != nil {
		return nil, err
	}
	return rows, nil
}

func buildRequirementRow(n *BOMNode, mult float64, quantity int, inventory map[string]float64, leadTimes map[string]int, start time.Time) *MaterialRequirement {
	required := int(math.Ceil(float64(quantity) * mult))
	inv := inventory[n.Code]

	shortage := float64(required) - inv
	if shortage < 0 {
		shortage = 0
	}

	cycle, ok := leadTimes[n.Code]
	if !ok {
		cycle = DefaultLeadTimeDays
	}

	supportable := 0
	if mult > 0 {
		supportable = int(math.Floor(inv / mult))
	}

	return &MaterialRequirement{
		Code:          n.Code,
		Name:          n.Name,
		Required:      required,
		Inventory:     inv,
		Shortage:      shortage,
		DeliveryCycle: cycle,
		ArrivalDate:   start.AddDate(0, 0, cycle),
		Supportable:   supportable,
		EffectiveQty:  mult,
	}
}
