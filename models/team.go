package models

import "time"

// Team is a member of a competition's configured team list.
// The list itself is managed upstream; teams are only deactivated,
// never deleted, while a competition is running.
type Team struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	CompetitionID string    `json:"competition_id" gorm:"not null;index"`
	Name          string    `json:"name" gorm:"not null"`
	ShortCode     string    `json:"short_code" gorm:"not null"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
