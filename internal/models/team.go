package models

type Team struct {
	ID   string `gorm:"primaryKey;size:20" json:"id"`
	Name string `gorm:"not null;size:40" json:"name"`
	URL  string `gorm:"not null;size:100;default:#" json:"url"`
}
