package ontology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// Client — 知识网络查询客户端
// 通过对象类型接口分页拉取物料、BOM、库存实例数据
// =============================================================================

// Entry 对象实例，字段结构由知识网络的对象类型定义决定
type Entry map[string]interface{}

// GetString 读取字符串字段，缺失返回空串
func (e Entry) GetString(keys ...string) string {
	for _, key := range keys {
		if v, ok := e[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// GetFloat 读取数值字段，兼容字符串编码的数字
func (e Entry) GetFloat(keys ...string) float64 {
	for _, key := range keys {
		v, ok := e[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// GetInt 读取整数字段
func (e Entry) GetInt(keys ...string) int {
	return int(e.GetFloat(keys...))
}

// queryResponse 对象实例查询响应
type queryResponse struct {
	Entries     []Entry       `json:"entries"`
	SearchAfter []interface{} `json:"search_after"`
}

// Client 知识网络API客户端
type Client struct {
	baseURL    string
	networkID  string
	pageSize   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient 创建知识网络客户端实例
func NewClient(baseURL, networkID string, pageSize int, timeout time.Duration, logger *zap.Logger) *Client {
	if pageSize <= 0 {
		pageSize = 2000
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		networkID: networkID,
		pageSize:  pageSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// queryPage 查询单页对象实例
// token 为上游透传的访问令牌，本服务不做解析
func (c *Client) queryPage(ctx context.Context, token, objectTypeID string, searchAfter []interface{}) (*queryResponse, error) {
	endpoint := fmt.Sprintf("%s/api/ontology-query/v1/knowledge-networks/%s/object-types/%s",
		c.baseURL, c.networkID, objectTypeID)

	params := url.Values{}
	params.Set("include_type_info", "true")
	params.Set("include_logic_params", "false")
	params.Set("limit", strconv.Itoa(c.pageSize))
	if searchAfter != nil {
		cursor, err := json.Marshal(searchAfter)
		if err != nil {
			return nil, fmt.Errorf("序列化分页游标失败: %w", err)
		}
		params.Set("search_after", string(cursor))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("创建查询请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求知识网络失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("知识网络查询错误[%d]: %s (object_type=%s)", resp.StatusCode, resp.Status, objectTypeID)
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析查询响应失败: %w", err)
	}
	return &result, nil
}

// LoadAllPages 分页加载某对象类型的全部实例
// 使用 search_after 游标翻页，单页不足 pageSize 视为末页
func (c *Client) LoadAllPages(ctx context.Context, token, objectTypeID string) ([]Entry, error) {
	var all []Entry
	var searchAfter []interface{}
	page := 1

	for {
		resp, err := c.queryPage(ctx, token, objectTypeID, searchAfter)
		if err != nil {
			return nil, err
		}
		if len(resp.Entries) == 0 {
			break
		}

		all = append(all, resp.Entries...)
		c.logger.Debug("加载对象实例分页",
			zap.String("object_type", objectTypeID),
			zap.Int("page", page),
			zap.Int("entries", len(resp.Entries)),
			zap.Int("total", len(all)))

		if resp.SearchAfter == nil || len(resp.Entries) < c.pageSize {
			break
		}
		searchAfter = resp.SearchAfter
		page++
	}

	return all, nil
}
