package models

import (
	"time"
)

// NetFundsSnapshot 净资金快照
// 表只做追加：注资和支出变动都追加一条新快照，id 最大的记录即当前余额，
// 历史记录同时构成余额变动的审计轨迹
type NetFundsSnapshot struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	NetFunds  float64   `json:"net_funds" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (NetFundsSnapshot) TableName() string {
	return "net_funds"
}
