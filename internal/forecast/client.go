package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// =============================================================================
// Client — 需求预测服务客户端
// 预测计算由独立的Prophet服务完成，这里只做请求转发
// =============================================================================

// HistoricalPoint 历史需求数据点（月度）
type HistoricalPoint struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Quantity float64 `json:"quantity"`
}

// ConfidenceInterval 预测置信区间
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Metrics 预测精度指标
type Metrics struct {
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
}

// Request 预测请求
type Request struct {
	ProductCode     string            `json:"product_code"`
	HistoricalData  []HistoricalPoint `json:"historical_data"`
	ForecastPeriods int               `json:"forecast_periods"`
}

// Result 预测结果
type Result struct {
	ProductCode         string               `json:"product_code"`
	ForecastValues      []int                `json:"forecast_values"`
	ConfidenceIntervals []ConfidenceInterval `json:"confidence_intervals"`
	Metrics             Metrics              `json:"metrics"`
	Model               string               `json:"model"` // prophet / holt-winters
}

// Client 预测服务客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建预测服务客户端实例
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Forecast 请求月度需求预测
func (c *Client) Forecast(ctx context.Context, req *Request) (*Result, error) {
	if len(req.HistoricalData) == 0 {
		return nil, fmt.Errorf("历史数据不能为空")
	}
	if req.ForecastPeriods <= 0 {
		return nil, fmt.Errorf("预测期数必须为正整数")
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("序列化预测请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/forecast", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("创建预测请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求预测服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("预测服务错误[%d]: %s", resp.StatusCode, resp.Status)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析预测响应失败: %w", err)
	}
	return &result, nil
}
