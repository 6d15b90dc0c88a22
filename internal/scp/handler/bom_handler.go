package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yanmengling/dip-for-supply-chain-sub001/internal/scp/service"
)

// BOMHandler BOM查询处理器
type BOMHandler struct {
	svc *service.PlanService
}

// NewBOMHandler 创建BOM查询处理器
func NewBOMHandler(svc *service.PlanService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

// ListProducts 列出全部产品
// GET /api/v1/bom/products
func (h *BOMHandler) ListProducts(c *gin.Context) {
	products, err := h.svc.Products(c.Request.Context(), GetAccessToken(c))
	if err != nil {
		InternalError(c, "加载产品列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": products})
}

// GetTree 构建产品BOM树
// GET /api/v1/bom/tree/:productCode
func (h *BOMHandler) GetTree(c *gin.Context) {
	productCode := c.Param("productCode")
	if productCode == "" {
		BadRequest(c, "产品编码不能为空")
		return
	}

	tree, err := h.svc.BOMTree(c.Request.Context(), GetAccessToken(c), productCode)
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, tree)
}
