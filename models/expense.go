package models

import (
	"time"
)

// Expense 支出记录模型
// Day 字段是按 Date 派生的冗余星期名称（英文），便于前端直接展示，
// 每次写入时必须重新计算
type Expense struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Date        Date      `json:"date" gorm:"type:date;not null;index"`
	Day         string    `json:"day" gorm:"size:16;not null"`
	Description string    `json:"description" gorm:"size:255;not null"`
	Amount      float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}
