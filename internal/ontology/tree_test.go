package ontology

import (
	"testing"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/planner"
)

// 智能手环 → 主板组件 → PCB基板，主板组件另带替代组
func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	materials := []Entry{
		{"material_code": "P001", "material_name": "智能手环", "group_name": "库存商品-产成品"},
		{"material_code": "C001", "material_name": "主板组件"},
		{"material_code": "M001", "material_name": "PCB基板", "unit_price": 12.5},
		{"material_code": "M002", "material_name": "PCB基板B", "unit_price": 11.0},
	}
	boms := []Entry{
		{"bom_material_code": "P001", "material_code": "C001", "material_name": "主板组件", "standard_usage": 2.0},
		{"bom_material_code": "C001", "material_code": "M001", "material_name": "PCB基板", "standard_usage": 3.0, "alt_group_no": "G1"},
		{"bom_material_code": "C001", "material_code": "M002", "material_name": "PCB基板B", "standard_usage": 3.0, "alt_group_no": "G1", "alt_part": "替代", "alt_priority": 1.0},
	}
	inventory := []Entry{
		{"material_code": "M001", "available_base_qty": 50.0, "base_qty": 60.0, "batch_no": "20260201", "unit_price": 12.5},
		{"material_code": "M002", "available_base_qty": 80.0, "base_qty": 80.0, "batch_no": "20260201"},
	}
	return BuildSnapshot(materials, boms, inventory, testNow)
}

func TestBuildTree(t *testing.T) {
	snapshot := testSnapshot(t)

	tree, err := BuildTree(snapshot, "P001")
	if err != nil {
		t.Fatalf("构建BOM树失败: %v", err)
	}
	if tree.ProductName != "智能手环" {
		t.Errorf("产品名 = %s, 期望 智能手环", tree.ProductName)
	}

	root := tree.Root
	if root.Level != 0 || len(root.Children) != 1 {
		t.Fatalf("根节点 level=%d children=%d, 期望 0/1", root.Level, len(root.Children))
	}

	comp := root.Children[0]
	if comp.Code != "C001" || comp.Quantity != 2 || comp.Level != 1 {
		t.Errorf("组件节点 = %s qty=%.0f level=%d", comp.Code, comp.Quantity, comp.Level)
	}
	// 替代料行不作为常规子项
	if len(comp.Children) != 1 {
		t.Fatalf("组件子项数 = %d, 期望 1", len(comp.Children))
	}

	leaf := comp.Children[0]
	if leaf.Code != "M001" || leaf.AvailableStock != 50 {
		t.Errorf("叶节点 = %s stock=%.0f, 期望 M001/50", leaf.Code, leaf.AvailableStock)
	}
	if leaf.StockStatus != StockSufficient {
		t.Errorf("叶节点库存状态 = %s, 期望 %s", leaf.StockStatus, StockSufficient)
	}
	if len(leaf.Substitutes) != 1 || leaf.Substitutes[0].Code != "M002" {
		t.Fatalf("叶节点替代料 = %+v, 期望 M002", leaf.Substitutes)
	}
	if leaf.Substitutes[0].AvailableStock != 80 {
		t.Errorf("替代料库存 = %.0f, 期望 80", leaf.Substitutes[0].AvailableStock)
	}
}

func TestBuildTreeStatistics(t *testing.T) {
	snapshot := testSnapshot(t)

	tree, err := BuildTree(snapshot, "P001")
	if err != nil {
		t.Fatalf("构建BOM树失败: %v", err)
	}

	stats := tree.Statistics
	if stats.TotalMaterials != 3 {
		t.Errorf("物料总数 = %d, 期望 3", stats.TotalMaterials)
	}
	// 只有 M001 有单价和在库数量: 60 * 12.5
	if stats.TotalInventoryValue != 750 {
		t.Errorf("库存总值 = %.2f, 期望 750", stats.TotalInventoryValue)
	}
	// P001 与 C001 无库存
	if stats.InsufficientCount != 2 {
		t.Errorf("缺货节点数 = %d, 期望 2", stats.InsufficientCount)
	}
}

func TestBuildTreeUnknownProduct(t *testing.T) {
	snapshot := testSnapshot(t)
	if _, err := BuildTree(snapshot, "P999"); err == nil {
		t.Fatal("不存在的产品应返回错误")
	}
	// 普通物料编码不是产品
	if _, err := BuildTree(snapshot, "M001"); err == nil {
		t.Fatal("物料编码不应作为产品构树")
	}
}

func TestToPlanningNode(t *testing.T) {
	snapshot := testSnapshot(t)

	tree, err := BuildTree(snapshot, "P001")
	if err != nil {
		t.Fatalf("构建BOM树失败: %v", err)
	}

	root := tree.ToPlanningNode()
	if root.Kind != planner.KindProduct {
		t.Errorf("根节点类型 = %s, 期望 %s", root.Kind, planner.KindProduct)
	}

	comp := root.Children[0]
	if comp.Kind != planner.KindModule {
		t.Errorf("一级节点类型 = %s, 期望 %s", comp.Kind, planner.KindModule)
	}

	leaf := comp.Children[0]
	if leaf.Kind != planner.KindMaterial {
		t.Errorf("叶节点类型 = %s, 期望 %s", leaf.Kind, planner.KindMaterial)
	}
	if len(leaf.Alternatives) != 1 || leaf.Alternatives[0].Code != "M002" {
		t.Errorf("替代料转换 = %+v", leaf.Alternatives)
	}
}

func TestAvailableStockMap(t *testing.T) {
	snapshot := testSnapshot(t)
	stocks := snapshot.AvailableStockMap()
	if stocks["M001"] != 50 || stocks["M002"] != 80 {
		t.Errorf("可用库存映射 = %v", stocks)
	}
}
