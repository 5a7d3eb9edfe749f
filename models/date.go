package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateFormat 日期的统一格式
const DateFormat = "2006-01-02"

// Date 只含日期部分的时间类型，数据库存储为 DATE，JSON 序列化为 YYYY-MM-DD
type Date struct {
	time.Time
}

// ParseDate 解析 YYYY-MM-DD 格式的日期字符串
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.Local)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// NewDate 构造指定年月日的日期
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// String 返回 YYYY-MM-DD 格式字符串
func (d Date) String() string {
	return d.Format(DateFormat)
}

// MarshalJSON 序列化为 "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

// UnmarshalJSON 从 "YYYY-MM-DD" 反序列化
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("日期格式错误: %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value 实现 driver.Valuer，写入数据库
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan 实现 sql.Scanner，从数据库读取 DATE 列
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("无法将 %T 扫描为 Date", value)
	}
}
