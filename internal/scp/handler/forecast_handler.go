package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/forecast"
)

// ForecastHandler 需求预测处理器，转发到独立的预测服务
type ForecastHandler struct {
	client *forecast.Client
}

// NewForecastHandler 创建需求预测处理器
func NewForecastHandler(client *forecast.Client) *ForecastHandler {
	return &ForecastHandler{client: client}
}

// Forecast 月度需求预测
// POST /api/v1/forecast
func (h *ForecastHandler) Forecast(c *gin.Context) {
	var req forecast.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求体解析失败: "+err.Error())
		return
	}

	result, err := h.client.Forecast(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, result)
}
