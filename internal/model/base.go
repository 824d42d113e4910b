package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xmustafa5/TimeClass-sub001/internal/timetable"
)

// ── PostgreSQL TEXT[] 自定义类型 ──

// WeekDayArray 对应 PostgreSQL TEXT[] 类型，实现 GORM Scanner/Valuer 接口。
type WeekDayArray []timetable.WeekDay

// Scan 将 PostgreSQL 返回的 {sunday,monday} 文本解析为教学日列表。
func (a *WeekDayArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("WeekDayArray.Scan: unsupported type %T", src)
	}
	s = strings.Trim(s, "{}")
	if s == "" {
		*a = WeekDayArray{}
		return nil
	}
	parts := strings.Split(s, ",")
	arr := make(WeekDayArray, 0, len(parts))
	for _, p := range parts {
		d, ok := timetable.ParseWeekDay(strings.Trim(strings.TrimSpace(p), `"`))
		if !ok {
			return fmt.Errorf("WeekDayArray.Scan: invalid element %q", p)
		}
		arr = append(arr, d)
	}
	*a = arr
	return nil
}

// Value 将教学日列表序列化为 PostgreSQL {sunday,monday} 文本。
func (a WeekDayArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	parts := make([]string, len(a))
	for i, d := range a {
		parts[i] = string(d)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Contains 是否包含指定教学日
func (a WeekDayArray) Contains(day timetable.WeekDay) bool {
	for _, d := range a {
		if d == day {
			return true
		}
	}
	return false
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
