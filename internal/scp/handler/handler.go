package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/forecast"
	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/service"
)

// Handlers 处理器集合
type Handlers struct {
	Plan     *PlanHandler
	BOM      *BOMHandler
	Forecast *ForecastHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(planSvc *service.PlanService, exportSvc *service.ExportService, forecastClient *forecast.Client) *Handlers {
	h := &Handlers{
		Plan: NewPlanHandler(planSvc, exportSvc),
		BOM:  NewBOMHandler(planSvc),
	}
	if forecastClient != nil {
		h.Forecast = NewForecastHandler(forecastClient)
	}
	return h
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetAccessToken 从上下文获取透传的访问令牌
func GetAccessToken(c *gin.Context) string {
	token, _ := c.Get("access_token")
	if t, ok := token.(string); ok {
		return t
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
