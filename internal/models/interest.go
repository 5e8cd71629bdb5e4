package models

// Interest справочная запись интереса
type Interest struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null;uniqueIndex:idx_interests_name_category" json:"name"`
	Category string `gorm:"not null;index;uniqueIndex:idx_interests_name_category" json:"category"`
}

// TableName устанавливает имя таблицы для модели Interest
func (Interest) TableName() string {
	return "interests"
}
