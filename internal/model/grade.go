package model

// Grade 年级表，对应 grades
type Grade struct {
	ID   string `gorm:"type:uuid;primaryKey"      json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`
	SoftDeleteModel

	// 关联
	Sections []Section `gorm:"foreignKey:GradeID;references:ID" json:"sections,omitempty"`
}

// TableName 指定表名
func (Grade) TableName() string { return "grades" }

// Section 班级表，对应 sections，隶属于唯一年级
type Section struct {
	ID      string `gorm:"type:uuid;primaryKey"      json:"id"`
	Name    string `gorm:"type:varchar(50);not null" json:"name"`
	GradeID string `gorm:"type:uuid;not null"        json:"grade_id"`
	SoftDeleteModel

	// 关联
	Grade *Grade `gorm:"foreignKey:GradeID;references:ID" json:"grade,omitempty"`
}

// TableName 指定表名
func (Section) TableName() string { return "sections" }
