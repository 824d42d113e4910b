package model

// 教室类型
const (
	RoomTypeRegular  = "regular"
	RoomTypeLab      = "lab"
	RoomTypeComputer = "computer"
)

// Room 教室表，对应 rooms
type Room struct {
	ID       string `gorm:"type:uuid;primaryKey"      json:"id"`
	Name     string `gorm:"type:varchar(50);not null" json:"name"`
	Capacity int    `gorm:"not null"                  json:"capacity"`
	Type     string `gorm:"type:varchar(20);not null" json:"type"`
	SoftDeleteModel
}

// TableName 指定表名
func (Room) TableName() string { return "rooms" }
