package ontology

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestStorageDays(t *testing.T) {
	cases := []struct {
		batchNo string
		want    int
	}{
		{"20260201-A01", 29},
		{"20260302", 0},
		{"20251202X7", 90},
		{"B20260201", 0}, // 非日期前缀
		{"", 0},
		{"2026", 0},     // 长度不足
		{"20269999", 0}, // 非法日期
	}
	for _, c := range cases {
		if got := StorageDays(c.batchNo, testNow); got != c.want {
			t.Errorf("StorageDays(%q) = %d, 期望 %d", c.batchNo, got, c.want)
		}
	}
}

func TestStorageDaysFutureBatch(t *testing.T) {
	// 未来日期的批次号视为库龄0
	if got := StorageDays("20260401", testNow); got != 0 {
		t.Errorf("未来批次库龄 = %d, 期望 0", got)
	}
}

func TestStockStatusOf(t *testing.T) {
	cases := []struct {
		days  int
		stock float64
		want  StockStatus
	}{
		{0, 100, StockSufficient},
		{59, 100, StockSufficient},
		{60, 100, StockWarning},
		{89, 100, StockWarning},
		{90, 100, StockStagnant},
		{120, 100, StockStagnant},
		{0, 0, StockInsufficient},
		{120, 0, StockInsufficient}, // 无库存优先于库龄
	}
	for _, c := range cases {
		if got := StockStatusOf(c.days, c.stock); got != c.want {
			t.Errorf("StockStatusOf(%d, %.0f) = %s, 期望 %s", c.days, c.stock, got, c.want)
		}
	}
}

func TestUsageQuantity(t *testing.T) {
	if got := usageQuantity(Entry{"standard_usage": 2.5}); got != 2.5 {
		t.Errorf("standard_usage 单耗 = %v, 期望 2.5", got)
	}
	if got := usageQuantity(Entry{"usage_numerator": 3.0, "usage_denominator": 2.0}); got != 1.5 {
		t.Errorf("分数单耗 = %v, 期望 1.5", got)
	}
	if got := usageQuantity(Entry{"usage_denominator": 4.0}); got != 0.25 {
		t.Errorf("缺分子单耗 = %v, 期望 0.25", got)
	}
	if got := usageQuantity(Entry{}); got != 0 {
		t.Errorf("空记录单耗 = %v, 期望 0", got)
	}
	// 字符串编码的数值
	if got := usageQuantity(Entry{"standard_usage": "4"}); got != 4 {
		t.Errorf("字符串单耗 = %v, 期望 4", got)
	}
}

func TestParseSubstitutions(t *testing.T) {
	boms := []BOMRecord{
		{ParentCode: "P001", ChildCode: "M001", ChildName: "钽电容", Quantity: 2, AltGroupNo: "G1"},
		{ParentCode: "P001", ChildCode: "M002", ChildName: "陶瓷电容", Quantity: 2, AltGroupNo: "G1", AltPart: "替代", AltPriority: 2},
		{ParentCode: "P001", ChildCode: "M003", ChildName: "聚合物电容", Quantity: 2, AltGroupNo: "G1", AltPart: "替代", AltPriority: 1},
		{ParentCode: "P001", ChildCode: "M010", ChildName: "螺丝", Quantity: 8}, // 无替代组
	}

	relations := ParseSubstitutions(boms)
	if len(relations) != 1 {
		t.Fatalf("替代关系组数 = %d, 期望 1", len(relations))
	}

	relation, ok := relations["P001_M001"]
	if !ok {
		t.Fatal("缺少 P001_M001 替代关系")
	}
	if relation.Primary.ChildCode != "M001" {
		t.Errorf("主料 = %s, 期望 M001", relation.Primary.ChildCode)
	}
	if len(relation.Substitutes) != 2 {
		t.Fatalf("替代料数 = %d, 期望 2", len(relation.Substitutes))
	}
	// 按优先级升序
	if relation.Substitutes[0].ChildCode != "M003" || relation.Substitutes[1].ChildCode != "M002" {
		t.Errorf("替代料顺序 = [%s %s], 期望 [M003 M002]",
			relation.Substitutes[0].ChildCode, relation.Substitutes[1].ChildCode)
	}
}

func TestParseSubstitutionsNoPrimary(t *testing.T) {
	// 只有替代料没有主料的组不产生关系
	boms := []BOMRecord{
		{ParentCode: "P001", ChildCode: "M002", AltGroupNo: "G1", AltPart: "替代"},
	}
	if relations := ParseSubstitutions(boms); len(relations) != 0 {
		t.Errorf("无主料组产生了 %d 条关系", len(relations))
	}
}

func TestBuildSnapshot(t *testing.T) {
	materials := []Entry{
		{"material_code": "P001", "material_name": "智能手环", "group_name": "库存商品-产成品"},
		{"material_code": "M001", "material_name": "PCB基板", "unit_price": 12.5, "baseunit_name": "片"},
	}
	boms := []Entry{
		{"bom_material_code": "P001", "material_code": "M001", "material_name": "PCB基板", "standard_usage": 2.0},
		{"bom_material_code": "", "material_code": "M002"}, // 无父项，丢弃
	}
	inventory := []Entry{
		{"material_code": "M001", "available_base_qty": 30.0, "base_qty": 50.0, "batch_no": "2025120201", "unit_price": 12.5},
		{"material_code": "M001", "available_base_qty": 20.0, "base_qty": 20.0, "batch_no": "2026020102"},
	}

	snapshot := BuildSnapshot(materials, boms, inventory, testNow)

	if len(snapshot.Products) != 1 || len(snapshot.Materials) != 1 {
		t.Fatalf("产品/物料数 = %d/%d, 期望 1/1", len(snapshot.Products), len(snapshot.Materials))
	}
	if len(snapshot.BOMs) != 1 {
		t.Fatalf("BOM记录数 = %d, 期望 1", len(snapshot.BOMs))
	}

	children := snapshot.ChildrenOf("P001")
	if len(children) != 1 || children[0].ChildCode != "M001" || children[0].Quantity != 2 {
		t.Errorf("P001 子项 = %+v, 期望 M001 单耗2", children)
	}

	item := snapshot.Inventory["M001"]
	if item == nil {
		t.Fatal("缺少 M001 库存聚合")
	}
	if item.CurrentStock != 70 || item.AvailableStock != 50 {
		t.Errorf("库存聚合 = %.0f/%.0f, 期望 70/50", item.CurrentStock, item.AvailableStock)
	}
	// 库龄取最老批次：2025-12-02 距今 90 天
	if item.StorageDays != 90 {
		t.Errorf("库龄 = %d, 期望 90", item.StorageDays)
	}
	if item.Status != StockStagnant {
		t.Errorf("库存状态 = %s, 期望 %s", item.Status, StockStagnant)
	}
}
