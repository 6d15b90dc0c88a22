package ontology

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// 产成品的物料分组名，用于从物料主数据中分离产品
const productGroupName = "库存商品-产成品"

// StockStatus 库存状态
type StockStatus string

const (
	StockSufficient   StockStatus = "sufficient"
	StockWarning      StockStatus = "warning"      // 库龄超过60天
	StockStagnant     StockStatus = "stagnant"     // 库龄超过90天
	StockInsufficient StockStatus = "insufficient" // 可用库存为零
)

// Material 物料主数据
type Material struct {
	Code      string  `json:"material_code"`
	Name      string  `json:"material_name"`
	GroupName string  `json:"group_name"`
	MOQ       int     `json:"moq"`
	UnitPrice float64 `json:"unit_price"`
	Unit      string  `json:"unit"`
}

// BOMRecord 单条BOM用量关系
type BOMRecord struct {
	ParentCode  string  `json:"parent_code"`
	ChildCode   string  `json:"child_code"`
	ChildName   string  `json:"child_name"`
	Quantity    float64 `json:"child_quantity"`
	Unit        string  `json:"unit"`
	AltGroupNo  string  `json:"alt_group_no"`
	AltPart     string  `json:"alt_part"`
	AltPriority int     `json:"alt_priority"`
}

// InventoryItem 按物料编码聚合后的库存
type InventoryItem struct {
	MaterialCode   string      `json:"material_code"`
	CurrentStock   float64     `json:"current_stock"`
	AvailableStock float64     `json:"available_stock"`
	StorageDays    int         `json:"storage_days"`
	UnitPrice      float64     `json:"unit_price"`
	Status         StockStatus `json:"stock_status"`
}

// SubstitutionRelation 主料与其替代料
type SubstitutionRelation struct {
	Primary     BOMRecord   `json:"primary"`
	Substitutes []BOMRecord `json:"substitutes"`
}

// Snapshot 一次完整拉取的供应链数据快照
type Snapshot struct {
	Products      []Material                      `json:"products"`
	Materials     []Material                      `json:"materials"`
	BOMs          []BOMRecord                     `json:"boms"`
	Inventory     map[string]*InventoryItem       `json:"inventory"`
	Substitutions map[string]SubstitutionRelation `json:"substitutions"`

	materialIndex map[string]*Material
	bomChildren   map[string][]BOMRecord
}

// MaterialByCode 按编码查物料（含产品）
func (s *Snapshot) MaterialByCode(code string) *Material {
	return s.materialIndex[code]
}

// Reindex 重建内部索引。从缓存反序列化快照后必须调用。
func (s *Snapshot) Reindex() {
	s.materialIndex = make(map[string]*Material, len(s.Products)+len(s.Materials))
	for i := range s.Products {
		s.materialIndex[s.Products[i].Code] = &s.Products[i]
	}
	for i := range s.Materials {
		s.materialIndex[s.Materials[i].Code] = &s.Materials[i]
	}
	s.bomChildren = make(map[string][]BOMRecord)
	for _, record := range s.BOMs {
		if record.AltPart != "替代" {
			s.bomChildren[record.ParentCode] = append(s.bomChildren[record.ParentCode], record)
		}
	}
}

// ChildrenOf 查某编码的直接子项用量（不含替代料行）
func (s *Snapshot) ChildrenOf(code string) []BOMRecord {
	return s.bomChildren[code]
}

// LoaderConfig 快照加载配置
type LoaderConfig struct {
	MaterialTypeID  string
	BOMTypeID       string
	InventoryTypeID string
}

// Loader 快照加载器
type Loader struct {
	client *Client
	cfg    LoaderConfig
	logger *zap.Logger
}

// NewLoader 创建快照加载器
func NewLoader(client *Client, cfg LoaderConfig, logger *zap.Logger) *Loader {
	return &Loader{client: client, cfg: cfg, logger: logger}
}

// Load 拉取物料、BOM、库存三类对象并建立索引
func (l *Loader) Load(ctx context.Context, token string) (*Snapshot, error) {
	materialEntries, err := l.client.LoadAllPages(ctx, token, l.cfg.MaterialTypeID)
	if err != nil {
		return nil, fmt.Errorf("加载物料数据失败: %w", err)
	}
	bomEntries, err := l.client.LoadAllPages(ctx, token, l.cfg.BOMTypeID)
	if err != nil {
		return nil, fmt.Errorf("加载BOM数据失败: %w", err)
	}
	inventoryEntries, err := l.client.LoadAllPages(ctx, token, l.cfg.InventoryTypeID)
	if err != nil {
		return nil, fmt.Errorf("加载库存数据失败: %w", err)
	}

	snapshot := BuildSnapshot(materialEntries, bomEntries, inventoryEntries, time.Now())
	l.logger.Info("快照加载完成",
		zap.Int("products", len(snapshot.Products)),
		zap.Int("materials", len(snapshot.Materials)),
		zap.Int("boms", len(snapshot.BOMs)),
		zap.Int("inventory", len(snapshot.Inventory)),
		zap.Int("substitutions", len(snapshot.Substitutions)))
	return snapshot, nil
}

// BuildSnapshot 从原始实例数据构建快照索引
func BuildSnapshot(materialEntries, bomEntries, inventoryEntries []Entry, now time.Time) *Snapshot {
	snapshot := &Snapshot{
		Inventory:     make(map[string]*InventoryItem),
		Substitutions: make(map[string]SubstitutionRelation),
	}

	// 物料主数据，按分组名分离产品和物料
	for _, e := range materialEntries {
		code := e.GetString("material_code", "number")
		if code == "" {
			continue
		}
		m := Material{
			Code:      code,
			Name:      e.GetString("material_name", "name"),
			GroupName: e.GetString("group_name"),
			MOQ:       e.GetInt("purchase_huid_minlotsize"),
			UnitPrice: e.GetFloat("unit_price"),
			Unit:      unitOrDefault(e.GetString("baseunit_name")),
		}
		if m.GroupName == productGroupName {
			snapshot.Products = append(snapshot.Products, m)
		} else {
			snapshot.Materials = append(snapshot.Materials, m)
		}
	}
	// BOM用量关系
	for _, e := range bomEntries {
		record := BOMRecord{
			ParentCode:  e.GetString("bom_material_code", "parent_code"),
			ChildCode:   e.GetString("material_code", "child_code"),
			ChildName:   e.GetString("material_name", "child_name"),
			Quantity:    usageQuantity(e),
			Unit:        unitOrDefault(e.GetString("unit")),
			AltGroupNo:  e.GetString("alt_group_no"),
			AltPart:     e.GetString("alt_part"),
			AltPriority: altPriority(e),
		}
		if record.ParentCode == "" || record.ChildCode == "" {
			continue
		}
		snapshot.BOMs = append(snapshot.BOMs, record)
	}
	snapshot.Reindex()

	// 库存按物料编码聚合，多仓库累加，库龄取最老批次
	for _, e := range inventoryEntries {
		code := e.GetString("material_code", "item_code")
		if code == "" {
			continue
		}
		available := e.GetFloat("available_base_qty", "available_quantity")
		base := e.GetFloat("base_qty", "quantity")
		storageDays := StorageDays(e.GetString("batch_no"), now)

		item, ok := snapshot.Inventory[code]
		if !ok {
			item = &InventoryItem{MaterialCode: code, UnitPrice: e.GetFloat("unit_price")}
			snapshot.Inventory[code] = item
		}
		item.CurrentStock += base
		item.AvailableStock += available
		if storageDays > item.StorageDays {
			item.StorageDays = storageDays
		}
	}
	for _, item := range snapshot.Inventory {
		item.Status = StockStatusOf(item.StorageDays, item.AvailableStock)
	}

	snapshot.Substitutions = ParseSubstitutions(snapshot.BOMs)
	return snapshot
}

// usageQuantity 计算单耗：优先standard_usage，否则用分子/分母
func usageQuantity(e Entry) float64 {
	if usage := e.GetFloat("standard_usage"); usage > 0 {
		return usage
	}
	numerator := e.GetFloat("usage_numerator")
	if numerator == 0 {
		numerator = 1
	}
	denominator := e.GetFloat("usage_denominator")
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func altPriority(e Entry) int {
	if p := e.GetInt("alt_priority"); p > 0 {
		return p
	}
	return 999
}

func unitOrDefault(unit string) string {
	if unit == "" {
		return "个"
	}
	return unit
}

// StorageDays 从批次号前8位（YYYYMMDD）计算库龄天数
// 非日期前缀的批次号视为库龄未知，返回0
func StorageDays(batchNo string, now time.Time) int {
	if len(batchNo) < 8 || batchNo[:3] != "202" {
		return 0
	}
	inbound, err := time.Parse("20060102", batchNo[:8])
	if err != nil {
		return 0
	}
	days := int(now.Sub(inbound).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// StockStatusOf 根据库龄和可用库存判定库存状态
func StockStatusOf(storageDays int, availableStock float64) StockStatus {
	if availableStock <= 0 {
		return StockInsufficient
	}
	if storageDays >= 90 {
		return StockStagnant
	}
	if storageDays >= 60 {
		return StockWarning
	}
	return StockSufficient
}

// ParseSubstitutions 解析替代料关系
// 同一父项同一替代组内，alt_part为空的行是主料，标记"替代"的行是替代料
func ParseSubstitutions(boms []BOMRecord) map[string]SubstitutionRelation {
	groups := make(map[string][]BOMRecord)
	for _, bom := range boms {
		if bom.AltGroupNo == "" {
			continue
		}
		key := bom.ParentCode + "_" + bom.AltGroupNo
		groups[key] = append(groups[key], bom)
	}

	relations := make(map[string]SubstitutionRelation)
	for _, items := range groups {
		var primary *BOMRecord
		var substitutes []BOMRecord
		for i := range items {
			if items[i].AltPart == "" && primary == nil {
				primary = &items[i]
			} else if items[i].AltPart == "替代" {
				substitutes = append(substitutes, items[i])
			}
		}
		if primary == nil || len(substitutes) == 0 {
			continue
		}
		sort.Slice(substitutes, func(i, j int) bool {
			return substitutes[i].AltPriority < substitutes[j].AltPriority
		})
		relations[primary.ParentCode+"_"+primary.ChildCode] = SubstitutionRelation{
			Primary:     *primary,
			Substitutes: substitutes,
		}
	}
	return relations
}
