package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/planner"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/repository"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/service"
)

// PlanHandler 排产处理器
type PlanHandler struct {
	svc       *service.PlanService
	exportSvc *service.ExportService
}

// NewPlanHandler 创建排产处理器
func NewPlanHandler(svc *service.PlanService, exportSvc *service.ExportService) *PlanHandler {
	return &PlanHandler{svc: svc, exportSvc: exportSvc}
}

// Schedule 执行排产计算
// POST /api/v1/plan/schedule
func (h *PlanHandler) Schedule(c *gin.Context) {
	var req service.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求体解析失败: "+err.Error())
		return
	}

	resp, err := h.svc.Schedule(c.Request.Context(), GetAccessToken(c), &req, c.GetHeader("X-User"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, resp)
}

// Export 导出排产分析为xlsx
// POST /api/v1/plan/schedule/export
func (h *PlanHandler) Export(c *gin.Context) {
	var req service.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求体解析失败: "+err.Error())
		return
	}

	resp, err := h.svc.Schedule(c.Request.Context(), GetAccessToken(c), &req, c.GetHeader("X-User"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	productCode := req.ProductCode
	if productCode == "" && req.BOMTree != nil {
		productCode = req.BOMTree.Code
	}
	f, filename, err := h.exportSvc.ExportPlanResult(resp.Result, productCode)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}

// flattenRequest 任务树展开请求
type flattenRequest struct {
	Tasks    []*planner.ScheduleNode `json:"tasks"`
	Expanded map[string]bool         `json:"expanded"`
}

// FlattenTasks 按展开状态拍平任务树（甘特图增量渲染用）
// POST /api/v1/plan/tasks/flatten
func (h *PlanHandler) FlattenTasks(c *gin.Context) {
	var req flattenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求体解析失败: "+err.Error())
		return
	}
	if req.Expanded == nil {
		req.Expanded = planner.InitializeExpandedState(req.Tasks)
	}
	Success(c, gin.H{
		"items":    planner.VisibleTasks(req.Tasks, req.Expanded),
		"expanded": req.Expanded,
	})
}

// ListRuns 查询排产历史
// GET /api/v1/plan/runs
func (h *PlanHandler) ListRuns(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]interface{}{
		"product_code": c.Query("product_code"),
		"mode":         c.Query("mode"),
		"status":       c.Query("status"),
	}

	runs, total, err := h.svc.ListRuns(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "查询排产历史失败: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, gin.H{
		"items": runs,
		"pagination": &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// GetRun 查询单条排产记录
// GET /api/v1/plan/runs/:id
func (h *PlanHandler) GetRun(c *gin.Context) {
	run, err := h.svc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "排产记录不存在")
			return
		}
		InternalError(c, "查询排产记录失败: "+err.Error())
		return
	}
	Success(c, run)
}
