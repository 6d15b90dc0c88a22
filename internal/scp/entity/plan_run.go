package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB JSONB类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// 排产记录状态
const (
	PlanRunStatusCompleted = "completed"
	PlanRunStatusFailed    = "failed"
)

// PlanRun 排产计算历史记录
type PlanRun struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	RunCode        string     `json:"run_code" gorm:"size:64;not null;uniqueIndex"`
	ProductCode    string     `json:"product_code" gorm:"size:64;not null;index"`
	ProductName    string     `json:"product_name" gorm:"size:256"`
	Mode           string     `json:"mode" gorm:"size:32;not null"`
	Quantity       int        `json:"quantity" gorm:"not null"`
	StartDate      time.Time  `json:"start_date" gorm:"not null"`
	CompletionDate *time.Time `json:"completion_date"`
	TotalCycleDays int        `json:"total_cycle_days"`
	ShortageCount  int        `json:"shortage_count"`
	RiskCount      int        `json:"risk_count"`
	Status         string     `json:"status" gorm:"size:16;not null;default:completed"`
	ErrorMessage   string     `json:"error_message" gorm:"type:text"`
	Summary        JSONB      `json:"summary" gorm:"type:jsonb"`
	DurationMS     int64      `json:"duration_ms"`
	CreatedBy      string     `json:"created_by" gorm:"size:64"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (PlanRun) TableName() string {
	return "plan_runs"
}
