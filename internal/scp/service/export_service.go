package service

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/planner"
)

// ExportService 排产结果导出
type ExportService struct{}

// NewExportService 创建导出服务
func NewExportService() *ExportService {
	return &ExportService{}
}

var analysisExportHeaders = []string{
	"物料编码", "物料名称", "需求数量", "当前库存", "缺口数量",
	"可支持数量", "采购交期(天)", "预计到货日", "单台有效用量",
}

var riskExportHeaders = []string{
	"风险类型", "级别", "物料编码", "物料名称", "说明", "建议",
}

// ExportPlanResult 导出排产结果为xlsx（物料分析 + 风险提示两个sheet）
func (s *ExportService) ExportPlanResult(result *planner.PlanResult, productCode string) (*excelize.File, string, error) {
	if result == nil {
		return nil, "", fmt.Errorf("排产结果不能为空")
	}

	f := excelize.NewFile()
	analysisSheet := "物料分析"
	f.SetSheetName("Sheet1", analysisSheet)

	// 表头样式: 加粗
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	// 写入表头
	for i, h := range analysisExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(analysisSheet, cell, h)
		f.SetCellStyle(analysisSheet, cell, cell, boldStyle)
	}

	// 写入物料分析行
	var shortageCount int
	for rowIdx, item := range result.MaterialAnalysis {
		row := rowIdx + 2
		f.SetCellValue(analysisSheet, fmt.Sprintf("A%d", row), item.Code)
		f.SetCellValue(analysisSheet, fmt.Sprintf("B%d", row), item.Name)
		f.SetCellValue(analysisSheet, fmt.Sprintf("C%d", row), item.Required)
		f.SetCellValue(analysisSheet, fmt.Sprintf("D%d", row), item.Inventory)
		f.SetCellValue(analysisSheet, fmt.Sprintf("E%d", row), item.Shortage)
		f.SetCellValue(analysisSheet, fmt.Sprintf("F%d", row), item.Supportable)
		f.SetCellValue(analysisSheet, fmt.Sprintf("G%d", row), item.DeliveryCycle)
		if item.Shortage > 0 {
			f.SetCellValue(analysisSheet, fmt.Sprintf("H%d", row), item.ArrivalDate.Format("2006-01-02"))
			shortageCount++
		}
		f.SetCellValue(analysisSheet, fmt.Sprintf("I%d", row), item.EffectiveQty)
	}

	// 底部汇总行
	summaryRow := len(result.MaterialAnalysis) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellValue(analysisSheet, fmt.Sprintf("A%d", summaryRow), "汇总")
	f.SetCellValue(analysisSheet, fmt.Sprintf("B%d", summaryRow),
		fmt.Sprintf("物料数: %d, 缺料数: %d, 总周期: %d天", len(result.MaterialAnalysis), shortageCount, result.TotalCycleDays))
	f.SetCellStyle(analysisSheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("I%d", summaryRow), summaryStyle)

	colWidths := []float64{16, 22, 10, 10, 10, 12, 12, 14, 14}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(analysisSheet, col, col, w)
	}

	// 风险提示sheet
	riskSheet := "风险提示"
	f.NewSheet(riskSheet)
	for i, h := range riskExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(riskSheet, cell, h)
		f.SetCellStyle(riskSheet, cell, cell, boldStyle)
	}
	for rowIdx, risk := range result.Risks {
		row := rowIdx + 2
		f.SetCellValue(riskSheet, fmt.Sprintf("A%d", row), risk.Kind)
		f.SetCellValue(riskSheet, fmt.Sprintf("B%d", row), risk.Severity)
		f.SetCellValue(riskSheet, fmt.Sprintf("C%d", row), risk.MaterialCode)
		f.SetCellValue(riskSheet, fmt.Sprintf("D%d", row), risk.MaterialName)
		f.SetCellValue(riskSheet, fmt.Sprintf("E%d", row), risk.Message)
		f.SetCellValue(riskSheet, fmt.Sprintf("F%d", row), risk.Suggestion)
	}
	riskWidths := []float64{18, 10, 16, 22, 50, 40}
	for i, w := range riskWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(riskSheet, col, col, w)
	}

	filename := fmt.Sprintf("排产分析_%s_%s_%s.xlsx", productCode, result.Mode, time.Now().Format("20060102"))
	return f, filename, nil
}
