package mission

import "time"

type Mission struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)"`
	OwnerID   int64      `gorm:"column:owner_id;not null;index"`
	Name      string     `gorm:"column:name;not null"`
	Status    string     `gorm:"column:status;not null;default:active"`
	StartDate time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate   *time.Time `gorm:"column:end_date;type:date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Mission) TableName() string {
	return "missions"
}
