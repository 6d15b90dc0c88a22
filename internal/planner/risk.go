package planner

import "fmt"

// BuildShortageRisks 依据需求分析的缺口行生成风险提示。
// 缺口超过需求量一半时升级为critical。
func BuildShortageRisks(rows []*MaterialRequirement) []RiskAlert {
	risks := []RiskAlert{}
	for _, row := range rows {
		if row.Shortage <= 0 {
			continue
		}
		severity := "warning"
		if row.Shortage > 0.5*float64(row.Required) {
			severity = "critical"
		}
		risks = append(risks, RiskAlert{
			Kind:         "material_shortage",
			Severity:     severity,
			Message:      fmt.Sprintf("物料 %s(%s) 缺口 %.0f，需等待 %d 天到货", row.Name, row.Code, row.Shortage, row.DeliveryCycle),
			MaterialCode: row.Code,
			MaterialName: row.Name,
			Suggestion:   "建议启用替代料或提前下达采购订单",
		})
	}
	return risks
}
