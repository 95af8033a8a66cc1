package models

import "time"

// CallLog represents one recorded function-call event from the external
// caller. Rows are append-only: written once by the ingestion handler and
// never updated or deleted afterwards.
type CallLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FunctionName string    `gorm:"size:255;not null;index;index:idx_function_date,priority:1" json:"function_name"`
	Data         string    `gorm:"type:text" json:"data"`
	IPAddress    string    `gorm:"size:45;index" json:"ip_address"`
	HTTPMethod   string    `gorm:"size:10;default:POST" json:"http_method"`
	Headers      string    `gorm:"type:text" json:"headers"`
	CreatedAt    time.Time `gorm:"index;index:idx_function_date,priority:2" json:"created_at"`
}

func (CallLog) TableName() string { return "api_logs" }
