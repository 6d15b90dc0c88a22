package ontology

import (
	"fmt"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/planner"
)

// SubstituteInfo 替代料及其库存情况
type SubstituteInfo struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Priority       int     `json:"priority"`
	Ratio          float64 `json:"ratio"`
	CurrentStock   float64 `json:"current_stock"`
	AvailableStock float64 `json:"available_stock"`
}

// TreeNode BOM树节点，附带库存与库龄信息
type TreeNode struct {
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Level          int              `json:"level"`
	Quantity       float64          `json:"quantity"`
	Unit           string           `json:"unit"`
	CurrentStock   float64          `json:"current_stock"`
	AvailableStock float64          `json:"available_stock"`
	StockStatus    StockStatus      `json:"stock_status"`
	StorageDays    int              `json:"storage_days"`
	UnitPrice      float64          `json:"unit_price"`
	MOQ            int              `json:"moq"`
	Children       []*TreeNode      `json:"children"`
	Substitutes    []SubstituteInfo `json:"substitutes"`
}

// TreeStatistics BOM树统计
type TreeStatistics struct {
	TotalMaterials      int     `json:"total_materials"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
	StagnantCount       int     `json:"stagnant_count"`
	InsufficientCount   int     `json:"insufficient_count"`
}

// Tree 单个产品的完整BOM树
type Tree struct {
	ProductCode string         `json:"product_code"`
	ProductName string         `json:"product_name"`
	Root        *TreeNode      `json:"root_node"`
	Statistics  TreeStatistics `json:"statistics"`
}

// BuildTree 从快照构建产品BOM树
// 循环引用的分支静默截断，不影响其余分支
func BuildTree(snapshot *Snapshot, productCode string) (*Tree, error) {
	product := snapshot.MaterialByCode(productCode)
	if product == nil || product.GroupName != productGroupName {
		return nil, fmt.Errorf("产品不存在: %s", productCode)
	}

	root := buildTreeNode(snapshot, productCode, 1, 0, map[string]bool{})
	tree := &Tree{
		ProductCode: productCode,
		ProductName: product.Name,
		Root:        root,
	}
	collectStats(root, &tree.Statistics)
	return tree, nil
}

func buildTreeNode(snapshot *Snapshot, code string, quantity float64, level int, visited map[string]bool) *TreeNode {
	if visited[code] {
		return nil
	}
	visited[code] = true
	defer delete(visited, code)

	material := snapshot.MaterialByCode(code)
	inventory := snapshot.Inventory[code]

	node := &TreeNode{
		Code:     code,
		Name:     code,
		Level:    level,
		Quantity: quantity,
		Unit:     "个",
	}
	if material != nil {
		node.Name = material.Name
		node.Unit = material.Unit
		node.MOQ = material.MOQ
	}
	if inventory != nil {
		node.CurrentStock = inventory.CurrentStock
		node.AvailableStock = inventory.AvailableStock
		node.StorageDays = inventory.StorageDays
		node.UnitPrice = inventory.UnitPrice
	}
	node.StockStatus = StockStatusOf(node.StorageDays, node.AvailableStock)

	for _, childBOM := range snapshot.ChildrenOf(code) {
		child := buildTreeNode(snapshot, childBOM.ChildCode, childBOM.Quantity, level+1, visited)
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}

	if relation, ok := snapshot.Substitutions[code+"_"+code]; ok {
		for _, sub := range relation.Substitutes {
			subInv := snapshot.Inventory[sub.ChildCode]
			info := SubstituteInfo{
				Code:     sub.ChildCode,
				Name:     sub.ChildName,
				Quantity: sub.Quantity,
				Priority: sub.AltPriority,
				Ratio:    1,
			}
			if quantity > 0 {
				info.Ratio = sub.Quantity / quantity
			}
			if subInv != nil {
				info.CurrentStock = subInv.CurrentStock
				info.AvailableStock = subInv.AvailableStock
			}
			node.Substitutes = append(node.Substitutes, info)
		}
	}

	return node
}

func collectStats(node *TreeNode, stats *TreeStatistics) {
	if node == nil {
		return
	}
	stats.TotalMaterials++
	stats.TotalInventoryValue += node.CurrentStock * node.UnitPrice
	switch node.StockStatus {
	case StockStagnant:
		stats.StagnantCount++
	case StockInsufficient:
		stats.InsufficientCount++
	}
	for _, child := range node.Children {
		collectStats(child, stats)
	}
}

// ToPlanningNode 将BOM树转换为排产引擎的输入结构
// 类型推断规则：根节点为成品，叶节点为原材料，一级非叶为模组，更深的非叶为组件
func (t *Tree) ToPlanningNode() *planner.BOMNode {
	return toPlanningNode(t.Root)
}

func toPlanningNode(node *TreeNode) *planner.BOMNode {
	if node == nil {
		return nil
	}
	out := &planner.BOMNode{
		Code:     node.Code,
		Name:     node.Name,
		Quantity: node.Quantity,
		Kind:     planningKind(node),
	}
	for _, sub := range node.Substitutes {
		out.Alternatives = append(out.Alternatives, planner.AlternativePart{
			Code:     sub.Code,
			Name:     sub.Name,
			Quantity: sub.Quantity,
			Priority: sub.Priority,
		})
	}
	for _, child := range node.Children {
		if converted := toPlanningNode(child); converted != nil {
			out.Children = append(out.Children, converted)
		}
	}
	return out
}

func planningKind(node *TreeNode) planner.ItemKind {
	switch {
	case node.Level == 0:
		return planner.KindProduct
	case len(node.Children) == 0:
		return planner.KindMaterial
	case node.Level == 1:
		return planner.KindModule
	default:
		return planner.KindComponent
	}
}

// AvailableStockMap 提取快照中全部物料的可用库存
func (s *Snapshot) AvailableStockMap() map[string]float64 {
	stocks := make(map[string]float64, len(s.Inventory))
	for code, item := range s.Inventory {
		stocks[code] = item.AvailableStock
	}
	return stocks
}
